package pattern

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=pattern
type Repository interface {
	CreateGroup(ctx context.Context, g *Group) error
	UpdateGroup(ctx context.Context, g *Group) error
	GetGroup(ctx context.Context, id uuid.UUID) (*Group, error)
	ListGroups(ctx context.Context, filter GroupFilter) ([]*Group, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	SystemGroup(ctx context.Context) (*Group, error)

	Create(ctx context.Context, p *Pattern) error
	Update(ctx context.Context, p *Pattern) error
	Get(ctx context.Context, id uuid.UUID) (*Pattern, error)
	List(ctx context.Context, filter ListFilter) ([]*Pattern, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ActiveCandidates loads active patterns of active groups. A nil
	// provider loads system patterns only; all=true loads every group.
	ActiveCandidates(ctx context.Context, providerID *uuid.UUID, all bool) ([]Candidate, error)
	RecordUsage(ctx context.Context, attempts []Attempt) error
}

type GroupFilter struct {
	ProviderID *uuid.UUID
	Tipo       Tipo
}

type ListFilter struct {
	GroupID     *uuid.UUID
	TargetField string
}

type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

type GroupParams struct {
	Name          string     `json:"name" validate:"required,max=120"`
	Tipo          Tipo       `json:"tipo_patron" validate:"required,oneof=costo venta"`
	ProviderID    *uuid.UUID `json:"provider_id"`
	TipoDocumento string     `json:"tipo_documento" validate:"max=60"`
	Priority      int        `json:"priority"`
	Active        *bool      `json:"is_active"`
}

func (s *Service) validateGroup(params GroupParams) error {
	if err := apperr.Struct(params); err != nil {
		return err
	}

	if strings.EqualFold(strings.TrimSpace(params.Name), SystemGroupName) {
		return apperr.Validation("name", SystemGroupName+" is reserved")
	}

	if params.Tipo == TipoCosto && params.ProviderID == nil {
		return apperr.Validation("provider_id", "is required for costo groups")
	}

	if params.Tipo == TipoVenta && params.ProviderID != nil {
		return apperr.Validation("provider_id", "must be empty for venta groups")
	}

	return nil
}

func (s *Service) CreateGroup(ctx context.Context, params GroupParams) (*Group, error) {
	if err := s.validateGroup(params); err != nil {
		return nil, err
	}

	g := &Group{
		Name:          strings.TrimSpace(params.Name),
		Tipo:          params.Tipo,
		ProviderID:    params.ProviderID,
		TipoDocumento: strings.TrimSpace(params.TipoDocumento),
		Priority:      params.Priority,
		Active:        params.Active == nil || *params.Active,
	}

	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) UpdateGroup(ctx context.Context, id uuid.UUID, params GroupParams) (*Group, error) {
	g, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	if g.System {
		// Only priority and activation of the reserved group are editable.
		g.Priority = params.Priority
		if params.Active != nil {
			g.Active = *params.Active
		}
	} else {
		if err := s.validateGroup(params); err != nil {
			return nil, err
		}

		g.Name = strings.TrimSpace(params.Name)
		g.Tipo = params.Tipo
		g.ProviderID = params.ProviderID
		g.TipoDocumento = strings.TrimSpace(params.TipoDocumento)
		g.Priority = params.Priority

		if params.Active != nil {
			g.Active = *params.Active
		}
	}

	if err := s.repo.UpdateGroup(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) GetGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	return s.repo.GetGroup(ctx, id)
}

func (s *Service) ListGroups(ctx context.Context, filter GroupFilter) ([]*Group, error) {
	return s.repo.ListGroups(ctx, filter)
}

func (s *Service) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	g, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return err
	}

	if g.System {
		return apperr.Validation("id", "the system group cannot be deleted")
	}

	return s.repo.DeleteGroup(ctx, id)
}

type Params struct {
	GroupID       uuid.UUID  `json:"group_id" validate:"required"`
	Name          string     `json:"name" validate:"max=120"`
	TargetField   string     `json:"target_field" validate:"required"`
	Regex         string     `json:"regex" validate:"required"`
	CaseSensitive bool       `json:"case_sensitive"`
	Priority      int        `json:"priority"`
	Active        *bool      `json:"is_active"`
	TestCases     []TestCase `json:"test_cases"`
}

// SaveResult pairs a stored pattern with the outcome of its test cases.
// Failing test cases never block a save.
type SaveResult struct {
	Pattern *Pattern   `json:"pattern"`
	Tests   TestReport `json:"tests"`
}

func (s *Service) validate(params Params) (TestReport, error) {
	var fields apperr.Fields

	if err := apperr.Struct(params); err != nil {
		return TestReport{}, err
	}

	if !validField(params.TargetField) {
		fields.Add("target_field", "must be one of "+strings.Join(TargetFields, ", "))
	}

	re, err := Compile(params.Regex, params.CaseSensitive)
	if err != nil {
		fields.Add("regex", err.Error())
	}

	if err := fields.Err(); err != nil {
		return TestReport{}, err
	}

	return RunTests(re, params.TestCases), nil
}

func (s *Service) Create(ctx context.Context, params Params) (*SaveResult, error) {
	report, err := s.validate(params)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetGroup(ctx, params.GroupID); err != nil {
		return nil, err
	}

	p := &Pattern{
		GroupID:       params.GroupID,
		Name:          strings.TrimSpace(params.Name),
		TargetField:   params.TargetField,
		Regex:         params.Regex,
		CaseSensitive: params.CaseSensitive,
		Priority:      params.Priority,
		Active:        params.Active == nil || *params.Active,
		TestCases:     params.TestCases,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return &SaveResult{Pattern: p, Tests: report}, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params Params) (*SaveResult, error) {
	report, err := s.validate(params)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.GroupID != p.GroupID {
		if _, err := s.repo.GetGroup(ctx, params.GroupID); err != nil {
			return nil, err
		}
	}

	p.GroupID = params.GroupID
	p.Name = strings.TrimSpace(params.Name)
	p.TargetField = params.TargetField
	p.Regex = params.Regex
	p.CaseSensitive = params.CaseSensitive
	p.Priority = params.Priority
	p.TestCases = params.TestCases

	if params.Active != nil {
		p.Active = *params.Active
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.cache.Invalidate(id)

	return &SaveResult{Pattern: p, Tests: report}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Pattern, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Pattern, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(id)

	return nil
}

// Test runs ad-hoc input against a stored pattern without touching its
// statistics.
func (s *Service) Test(ctx context.Context, id uuid.UUID, cases []TestCase) (TestReport, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return TestReport{}, err
	}

	if len(cases) == 0 {
		cases = p.TestCases
	}

	re, err := s.cache.Get(*p)
	if err != nil {
		return TestReport{}, apperr.Validation("regex", err.Error())
	}

	return RunTests(re, cases), nil
}

// ApplyForProvider extracts fields from text with the provider's patterns
// plus the system ones, and records usage statistics. A nil provider uses
// system patterns only.
func (s *Service) ApplyForProvider(ctx context.Context, text string, providerID *uuid.UUID) (Extraction, error) {
	candidates, err := s.repo.ActiveCandidates(ctx, providerID, false)
	if err != nil {
		return Extraction{}, fmt.Errorf("loading patterns: %w", err)
	}

	ext := Evaluate(s.logger, s.cache, candidates, text)

	for _, a := range ext.Attempts {
		metrics.RecordPatternAttempt(a.Field, a.Success)
	}

	if len(ext.Attempts) > 0 {
		if err := s.repo.RecordUsage(ctx, ext.Attempts); err != nil {
			return ext, fmt.Errorf("recording pattern usage: %w", err)
		}
	}

	return ext, nil
}

// IdentifyProvider ranks providers by how many of their patterns match text.
func (s *Service) IdentifyProvider(ctx context.Context, text string) ([]ProviderScore, error) {
	candidates, err := s.repo.ActiveCandidates(ctx, nil, true)
	if err != nil {
		return nil, fmt.Errorf("loading patterns: %w", err)
	}

	return Score(s.cache, candidates, text), nil
}

// EnsureSystemGroup returns the reserved group, creating it on first use.
func (s *Service) EnsureSystemGroup(ctx context.Context) (*Group, error) {
	g, err := s.repo.SystemGroup(ctx)
	if err == nil {
		return g, nil
	}

	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	g = &Group{Name: SystemGroupName, Tipo: TipoCosto, Active: true, System: true, Priority: -1}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("created system pattern group", "id", g.ID)

	return g, nil
}
