package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
	"github.com/MrJamesThe3rd/forwarder/internal/pattern"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const groupColumns = `SELECT id, name, tipo_patron, provider_id, tipo_documento, priority, is_active, is_system, created_at, updated_at FROM pattern_groups`

func scanGroup(s scanner) (*pattern.Group, error) {
	var (
		g    pattern.Group
		tipo string
	)

	if err := s.Scan(&g.ID, &g.Name, &tipo, &g.ProviderID, &g.TipoDocumento, &g.Priority,
		&g.Active, &g.System, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}

	g.Tipo = pattern.Tipo(tipo)

	return &g, nil
}

func (s *Store) CreateGroup(ctx context.Context, g *pattern.Group) error {
	query := `
		INSERT INTO pattern_groups (name, tipo_patron, provider_id, tipo_documento, priority, is_active, is_system)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		g.Name, g.Tipo, g.ProviderID, g.TipoDocumento, g.Priority, g.Active, g.System,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting pattern group: %w", err)
	}

	return nil
}

func (s *Store) UpdateGroup(ctx context.Context, g *pattern.Group) error {
	query := `
		UPDATE pattern_groups
		SET name = $2, tipo_patron = $3, provider_id = $4, tipo_documento = $5,
		    priority = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		g.ID, g.Name, g.Tipo, g.ProviderID, g.TipoDocumento, g.Priority, g.Active,
	).Scan(&g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("pattern group")
	}

	if err != nil {
		return fmt.Errorf("updating pattern group: %w", err)
	}

	return nil
}

func (s *Store) GetGroup(ctx context.Context, id uuid.UUID) (*pattern.Group, error) {
	g, err := scanGroup(database.Conn(ctx, s.db).QueryRowContext(ctx,
		groupColumns+` WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("pattern group")
	}

	if err != nil {
		return nil, fmt.Errorf("getting pattern group: %w", err)
	}

	return g, nil
}

func (s *Store) SystemGroup(ctx context.Context) (*pattern.Group, error) {
	g, err := scanGroup(database.Conn(ctx, s.db).QueryRowContext(ctx,
		groupColumns+` WHERE is_system = TRUE AND is_deleted = FALSE ORDER BY created_at LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("pattern group")
	}

	if err != nil {
		return nil, fmt.Errorf("getting system pattern group: %w", err)
	}

	return g, nil
}

func (s *Store) ListGroups(ctx context.Context, filter pattern.GroupFilter) ([]*pattern.Group, error) {
	var (
		conds = []string{"is_deleted = FALSE"}
		args  []any
	)

	if filter.ProviderID != nil {
		args = append(args, *filter.ProviderID)
		conds = append(conds, fmt.Sprintf("provider_id = $%d", len(args)))
	}

	if filter.Tipo != "" {
		args = append(args, filter.Tipo)
		conds = append(conds, fmt.Sprintf("tipo_patron = $%d", len(args)))
	}

	query := groupColumns + ` WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY is_system DESC, priority DESC, name`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pattern groups: %w", err)
	}
	defer rows.Close()

	var groups []*pattern.Group

	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pattern group: %w", err)
		}

		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// DeleteGroup soft-deletes the group together with its patterns.
func (s *Store) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	conn := database.Conn(ctx, s.db)

	res, err := conn.ExecContext(ctx,
		`UPDATE pattern_groups SET is_deleted = TRUE, deleted_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("deleting pattern group: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("pattern group")
	}

	if _, err := conn.ExecContext(ctx,
		`UPDATE patterns SET is_deleted = TRUE, deleted_at = NOW() WHERE group_id = $1 AND is_deleted = FALSE`, id); err != nil {
		return fmt.Errorf("deleting group patterns: %w", err)
	}

	return nil
}

const patternColumns = `p.id, p.group_id, p.name, p.target_field, p.regex, p.case_sensitive, p.priority, p.is_active,
	p.test_cases, p.uso_count, p.exito_count, p.ultima_uso, p.created_at, p.updated_at`

func scanPattern(s scanner, extra ...any) (*pattern.Pattern, error) {
	var (
		p     pattern.Pattern
		cases []byte
	)

	dest := []any{&p.ID, &p.GroupID, &p.Name, &p.TargetField, &p.Regex, &p.CaseSensitive, &p.Priority, &p.Active,
		&cases, &p.UsoCount, &p.ExitoCount, &p.UltimaUso, &p.CreatedAt, &p.UpdatedAt}

	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if len(cases) > 0 {
		if err := json.Unmarshal(cases, &p.TestCases); err != nil {
			return nil, fmt.Errorf("decoding test cases: %w", err)
		}
	}

	return &p, nil
}

func encodeCases(cases []pattern.TestCase) ([]byte, error) {
	if cases == nil {
		cases = []pattern.TestCase{}
	}

	return json.Marshal(cases)
}

func (s *Store) Create(ctx context.Context, p *pattern.Pattern) error {
	cases, err := encodeCases(p.TestCases)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO patterns (group_id, name, target_field, regex, case_sensitive, priority, is_active, test_cases)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err = database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		p.GroupID, p.Name, p.TargetField, p.Regex, p.CaseSensitive, p.Priority, p.Active, cases,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting pattern: %w", err)
	}

	return nil
}

func (s *Store) Update(ctx context.Context, p *pattern.Pattern) error {
	cases, err := encodeCases(p.TestCases)
	if err != nil {
		return err
	}

	query := `
		UPDATE patterns
		SET group_id = $2, name = $3, target_field = $4, regex = $5, case_sensitive = $6,
		    priority = $7, is_active = $8, test_cases = $9, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`

	err = database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		p.ID, p.GroupID, p.Name, p.TargetField, p.Regex, p.CaseSensitive, p.Priority, p.Active, cases,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("pattern")
	}

	if err != nil {
		return fmt.Errorf("updating pattern: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*pattern.Pattern, error) {
	p, err := scanPattern(database.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+patternColumns+` FROM patterns p WHERE p.id = $1 AND p.is_deleted = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("pattern")
	}

	if err != nil {
		return nil, fmt.Errorf("getting pattern: %w", err)
	}

	return p, nil
}

func (s *Store) List(ctx context.Context, filter pattern.ListFilter) ([]*pattern.Pattern, error) {
	var (
		conds = []string{"p.is_deleted = FALSE"}
		args  []any
	)

	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		conds = append(conds, fmt.Sprintf("p.group_id = $%d", len(args)))
	}

	if filter.TargetField != "" {
		args = append(args, filter.TargetField)
		conds = append(conds, fmt.Sprintf("p.target_field = $%d", len(args)))
	}

	query := `SELECT ` + patternColumns + ` FROM patterns p WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY p.target_field, p.priority DESC, p.uso_count DESC`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*pattern.Pattern

	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pattern: %w", err)
		}

		patterns = append(patterns, p)
	}

	return patterns, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE patterns SET is_deleted = TRUE, deleted_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("deleting pattern: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("pattern")
	}

	return nil
}

func (s *Store) ActiveCandidates(ctx context.Context, providerID *uuid.UUID, all bool) ([]pattern.Candidate, error) {
	var (
		scope string
		args  []any
	)

	switch {
	case all:
		scope = "TRUE"
	case providerID != nil:
		args = append(args, *providerID)
		scope = "(g.is_system OR g.provider_id = $1)"
	default:
		scope = "g.is_system"
	}

	query := `
		SELECT ` + patternColumns + `, g.provider_id, g.is_system
		FROM patterns p
		JOIN pattern_groups g ON g.id = p.group_id
		WHERE p.is_active AND NOT p.is_deleted AND g.is_active AND NOT g.is_deleted AND ` + scope

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading active patterns: %w", err)
	}
	defer rows.Close()

	var out []pattern.Candidate

	for rows.Next() {
		var c pattern.Candidate

		p, err := scanPattern(rows, &c.ProviderID, &c.System)
		if err != nil {
			return nil, fmt.Errorf("scanning pattern: %w", err)
		}

		c.Pattern = *p
		out = append(out, c)
	}

	return out, rows.Err()
}

// RecordUsage bumps usage counters for a batch of attempts in one statement
// so concurrent extractions never lose increments.
func (s *Store) RecordUsage(ctx context.Context, attempts []pattern.Attempt) error {
	if len(attempts) == 0 {
		return nil
	}

	payload, err := json.Marshal(attempts)
	if err != nil {
		return fmt.Errorf("encoding attempts: %w", err)
	}

	query := `
		UPDATE patterns p
		SET uso_count = p.uso_count + a.n,
		    exito_count = p.exito_count + a.ok,
		    ultima_uso = CASE WHEN a.ok > 0 THEN NOW() ELSE p.ultima_uso END
		FROM (
			SELECT (e->>'pattern_id')::uuid AS id,
			       COUNT(*) AS n,
			       COUNT(*) FILTER (WHERE (e->>'success')::boolean) AS ok
			FROM jsonb_array_elements($1::jsonb) e
			GROUP BY 1
		) a
		WHERE p.id = a.id`

	if _, err := database.Conn(ctx, s.db).ExecContext(ctx, query, payload); err != nil {
		return fmt.Errorf("recording pattern usage: %w", err)
	}

	return nil
}
