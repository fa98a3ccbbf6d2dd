package provider

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a counterparty.
type Kind string

const (
	KindNaviera   Kind = "naviera"
	KindAgente    Kind = "agente"
	KindAerolinea Kind = "aerolinea"
	KindTransport Kind = "transporte"
	KindAduana    Kind = "aduana"
	KindOtro      Kind = "otro"
)

func (k Kind) Valid() bool {
	switch k {
	case KindNaviera, KindAgente, KindAerolinea, KindTransport, KindAduana, KindOtro:
		return true
	}

	return false
}

// Provider is a counterparty that bills costs: carrier, agent, trucker.
type Provider struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	TaxID      *string    `json:"tax_id,omitempty"`
	Kind       Kind       `json:"kind"`
	Category   string     `json:"category"`
	CreditDays int        `json:"credit_days"`
	Email      string     `json:"email"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// normalize trims the name and uppercases the tax id; an empty tax id is
// stored as null so it does not collide on the unique index.
func (p *Provider) normalize() {
	p.Name = strings.Join(strings.Fields(p.Name), " ")
	p.Email = strings.TrimSpace(p.Email)
	p.Category = strings.TrimSpace(p.Category)

	if p.TaxID != nil {
		t := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(*p.TaxID), " ", ""))
		if t == "" {
			p.TaxID = nil
		} else {
			p.TaxID = &t
		}
	}

	if p.Kind == "" {
		p.Kind = KindOtro
	}
}
