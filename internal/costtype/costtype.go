package costtype

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

// Category groups cost types for reporting.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CostType classifies the nature of an invoice. When LinkedToOT is set, the
// provision state of its invoices mirrors the parent work order.
type CostType struct {
	ID         uuid.UUID  `json:"id"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Color      string     `json:"color"`
	LinkedToOT bool       `json:"is_linked_to_ot"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Linked reports whether invoices of this type follow the work order,
// honouring the legacy codes that predate the flag.
func (c *CostType) Linked() bool {
	return provision.IsLinked(c.LinkedToOT, c.Code)
}
