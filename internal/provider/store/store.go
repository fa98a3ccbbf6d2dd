package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
	"github.com/MrJamesThe3rd/forwarder/internal/provider"
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

const selectColumns = `SELECT id, name, tax_id, kind, category, credit_days, email, created_at, updated_at, deleted_at FROM providers`

func scanProvider(s scanner) (*provider.Provider, error) {
	var (
		p    provider.Provider
		kind string
	)

	if err := s.Scan(&p.ID, &p.Name, &p.TaxID, &kind, &p.Category, &p.CreditDays, &p.Email,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return nil, err
	}

	p.Kind = provider.Kind(kind)

	return &p, nil
}

func (s *Store) Create(ctx context.Context, p *provider.Provider) error {
	query := `
		INSERT INTO providers (name, tax_id, kind, category, credit_days, email)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		p.Name, p.TaxID, p.Kind, p.Category, p.CreditDays, p.Email,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return provider.ErrDuplicate
	}

	if err != nil {
		return fmt.Errorf("inserting provider: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*provider.Provider, error) {
	p, err := scanProvider(database.Conn(ctx, s.db).QueryRowContext(ctx,
		selectColumns+` WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("provider")
	}

	if err != nil {
		return nil, fmt.Errorf("getting provider: %w", err)
	}

	return p, nil
}

func (s *Store) List(ctx context.Context, filter provider.ListFilter) ([]*provider.Provider, error) {
	var (
		conditions = []string{"is_deleted = FALSE"}
		args       []any
	)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR tax_id ILIKE $%d)", len(args), len(args)))
	}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}

	query := selectColumns + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY name"

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing providers: %w", err)
	}
	defer rows.Close()

	var out []*provider.Provider

	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning provider: %w", err)
		}

		out = append(out, p)
	}

	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, p *provider.Provider) error {
	query := `
		UPDATE providers
		SET name = $1, tax_id = $2, kind = $3, category = $4, credit_days = $5, email = $6, updated_at = NOW()
		WHERE id = $7 AND is_deleted = FALSE
		RETURNING updated_at`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		p.Name, p.TaxID, p.Kind, p.Category, p.CreditDays, p.Email, p.ID,
	).Scan(&p.UpdatedAt)

	switch {
	case database.IsUniqueViolation(err):
		return provider.ErrDuplicate
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("provider")
	case err != nil:
		return fmt.Errorf("updating provider: %w", err)
	}

	return nil
}

// Delete soft-deletes the provider, freeing its name and tax id for reuse.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE providers SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("deleting provider: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("provider")
	}

	return nil
}
