package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/textnorm"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=provider
type Repository interface {
	Create(ctx context.Context, p *Provider) error
	Get(ctx context.Context, id uuid.UUID) (*Provider, error)
	List(ctx context.Context, filter ListFilter) ([]*Provider, error)
	Update(ctx context.Context, p *Provider) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrDuplicate is returned by stores when a live row already holds the name
// or tax id.
var ErrDuplicate = errors.New("duplicate provider")

type ListFilter struct {
	Search string
	Kind   Kind
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type Params struct {
	Name       string  `json:"name" validate:"required,max=200"`
	TaxID      *string `json:"tax_id" validate:"omitempty,max=32"`
	Kind       Kind    `json:"kind"`
	Category   string  `json:"category" validate:"max=100"`
	CreditDays int     `json:"credit_days" validate:"gte=0,lte=365"`
	Email      string  `json:"email" validate:"omitempty,email"`
}

func (s *Service) validate(p Params) (*Provider, error) {
	out := &Provider{
		Name:       p.Name,
		TaxID:      p.TaxID,
		Kind:       p.Kind,
		Category:   p.Category,
		CreditDays: p.CreditDays,
		Email:      p.Email,
	}
	out.normalize()

	p.Name = out.Name
	if err := apperr.Struct(p); err != nil {
		return nil, err
	}

	if !out.Kind.Valid() {
		return nil, apperr.Validation("kind", "unknown provider kind")
	}

	return out, nil
}

func (s *Service) Create(ctx context.Context, params Params) (*Provider, error) {
	p, err := s.validate(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, duplicateToValidation(err)
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Provider, error) {
	return s.repo.List(ctx, filter)
}

// FindByName returns the live provider whose name matches ignoring case,
// accents and spacing, or nil when there is none.
func (s *Service) FindByName(ctx context.Context, name string) (*Provider, error) {
	want := textnorm.Name(name)
	if want == "" {
		return nil, nil
	}

	candidates, err := s.repo.List(ctx, ListFilter{Search: strings.TrimSpace(name)})
	if err != nil {
		return nil, err
	}

	for _, p := range candidates {
		if textnorm.Name(p.Name) == want {
			return p, nil
		}
	}

	return nil, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params Params) (*Provider, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.validate(params)
	if err != nil {
		return nil, err
	}

	p.ID = current.ID
	p.CreatedAt = current.CreatedAt

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, duplicateToValidation(err)
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func duplicateToValidation(err error) error {
	if errors.Is(err, ErrDuplicate) {
		return apperr.Validation("name", "a provider with this name or tax id already exists")
	}

	return err
}
