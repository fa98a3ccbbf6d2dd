package costtype

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/textnorm"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=costtype
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	CountTypesInCategory(ctx context.Context, id uuid.UUID) (int, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	Create(ctx context.Context, c *CostType) error
	Update(ctx context.Context, c *CostType) error
	Get(ctx context.Context, id uuid.UUID) (*CostType, error)
	GetByCode(ctx context.Context, code string) (*CostType, error)
	List(ctx context.Context) ([]*CostType, error)
	CountInvoices(ctx context.Context, id uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetCode(ctx context.Context, id uuid.UUID, code string) error
}

// ErrDuplicateCode is returned by stores when a live row already uses a code.
var ErrDuplicateCode = errors.New("duplicate code")

var colorRe = regexp.MustCompile(`^(#[0-9A-Fa-f]{6})?$`)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CategoryParams struct {
	Code  string `json:"code"`
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color"`
}

type Params struct {
	CategoryID *uuid.UUID `json:"category_id"`
	Code       string     `json:"code"`
	Name       string     `json:"name" validate:"required,max=100"`
	Color      string     `json:"color"`
	LinkedToOT bool       `json:"is_linked_to_ot"`
}

// validateCode derives the code from name when empty and checks both.
func validateCode(code, name, color string) (string, error) {
	var fields apperr.Fields

	if code == "" {
		code = name
	}

	code = textnorm.Code(code)
	if code == "" {
		fields.Add("code", "is required")
	}

	if !colorRe.MatchString(color) {
		fields.Add("color", "must be a #RRGGBB hex color")
	}

	return code, fields.Err()
}

func (s *Service) CreateCategory(ctx context.Context, params CategoryParams) (*Category, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	code, err := validateCode(params.Code, params.Name, params.Color)
	if err != nil {
		return nil, err
	}

	c := &Category{Code: code, Name: params.Name, Color: params.Color}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, duplicate(err)
	}

	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, params CategoryParams) (*Category, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	code, err := validateCode(params.Code, params.Name, params.Color)
	if err != nil {
		return nil, err
	}

	c.Code, c.Name, c.Color = code, params.Name, params.Color
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, duplicate(err)
	}

	return c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

// DeleteCategory refuses while any live cost type belongs to the category.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.CountTypesInCategory(ctx, id)
	if err != nil {
		return err
	}

	if n > 0 {
		return apperr.Validation("id", fmt.Sprintf("category is used by %d cost types", n))
	}

	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) Create(ctx context.Context, params Params) (*CostType, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	code, err := validateCode(params.Code, params.Name, params.Color)
	if err != nil {
		return nil, err
	}

	c := &CostType{
		CategoryID: params.CategoryID,
		Code:       code,
		Name:       params.Name,
		Color:      params.Color,
		LinkedToOT: params.LinkedToOT,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, duplicate(err)
	}

	return c, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params Params) (*CostType, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	code, err := validateCode(params.Code, params.Name, params.Color)
	if err != nil {
		return nil, err
	}

	c.CategoryID = params.CategoryID
	c.Code, c.Name, c.Color = code, params.Name, params.Color
	c.LinkedToOT = params.LinkedToOT

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, duplicate(err)
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*CostType, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*CostType, error) {
	return s.repo.GetByCode(ctx, textnorm.Code(code))
}

func (s *Service) List(ctx context.Context) ([]*CostType, error) {
	return s.repo.List(ctx)
}

// Delete refuses while any live invoice uses the cost type.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.CountInvoices(ctx, id)
	if err != nil {
		return err
	}

	if n > 0 {
		return apperr.Validation("id", fmt.Sprintf("cost type is used by %d invoices", n))
	}

	return s.repo.Delete(ctx, id)
}

// NormalizeCodes rewrites every stored code into upper snake-case. Codes
// that would collide after normalization are left untouched and reported.
func (s *Service) NormalizeCodes(ctx context.Context) (changed int, skipped []string, err error) {
	types, err := s.repo.List(ctx)
	if err != nil {
		return 0, nil, err
	}

	taken := make(map[string]bool, len(types))
	for _, t := range types {
		taken[t.Code] = true
	}

	for _, t := range types {
		code := textnorm.Code(t.Code)
		if code == t.Code || code == "" {
			continue
		}

		if taken[code] {
			skipped = append(skipped, t.Code)
			continue
		}

		if err := s.repo.SetCode(ctx, t.ID, code); err != nil {
			return changed, skipped, fmt.Errorf("normalizing cost type %s: %w", t.Code, err)
		}

		delete(taken, t.Code)
		taken[code] = true
		changed++
	}

	return changed, skipped, nil
}

func duplicate(err error) error {
	if errors.Is(err, ErrDuplicateCode) {
		return apperr.Validation("code", "code already in use")
	}

	return err
}
