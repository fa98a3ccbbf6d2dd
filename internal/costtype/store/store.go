package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/costtype"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
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

func scanCategory(s scanner) (*costtype.Category, error) {
	var c costtype.Category
	if err := s.Scan(&c.ID, &c.Code, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	return &c, nil
}

func scanCostType(s scanner) (*costtype.CostType, error) {
	var c costtype.CostType
	if err := s.Scan(&c.ID, &c.CategoryID, &c.Code, &c.Name, &c.Color, &c.LinkedToOT, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	return &c, nil
}

const (
	categoryColumns = `SELECT id, code, name, color, created_at, updated_at FROM cost_categories`
	typeColumns     = `SELECT id, category_id, code, name, color, is_linked_to_ot, created_at, updated_at FROM cost_types`
)

func (s *Store) CreateCategory(ctx context.Context, c *costtype.Category) error {
	err := database.Conn(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO cost_categories (code, name, color) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		c.Code, c.Name, c.Color,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	return writeErr("inserting cost category", err)
}

func (s *Store) UpdateCategory(ctx context.Context, c *costtype.Category) error {
	err := database.Conn(ctx, s.db).QueryRowContext(ctx,
		`UPDATE cost_categories SET code = $1, name = $2, color = $3, updated_at = NOW()
		WHERE id = $4 AND is_deleted = FALSE RETURNING updated_at`,
		c.Code, c.Name, c.Color, c.ID,
	).Scan(&c.UpdatedAt)

	return writeErr("updating cost category", err)
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*costtype.Category, error) {
	c, err := scanCategory(database.Conn(ctx, s.db).QueryRowContext(ctx,
		categoryColumns+` WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("cost category")
	}

	if err != nil {
		return nil, fmt.Errorf("getting cost category: %w", err)
	}

	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*costtype.Category, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, categoryColumns+` WHERE is_deleted = FALSE ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing cost categories: %w", err)
	}
	defer rows.Close()

	var out []*costtype.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cost category: %w", err)
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Store) CountTypesInCategory(ctx context.Context, id uuid.UUID) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM cost_types WHERE category_id = $1 AND is_deleted = FALSE`, id)
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.softDelete(ctx, "cost_categories", "cost category", id)
}

func (s *Store) Create(ctx context.Context, c *costtype.CostType) error {
	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO cost_types (category_id, code, name, color, is_linked_to_ot)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		c.CategoryID, c.Code, c.Name, c.Color, c.LinkedToOT,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	return writeErr("inserting cost type", err)
}

func (s *Store) Update(ctx context.Context, c *costtype.CostType) error {
	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		UPDATE cost_types
		SET category_id = $1, code = $2, name = $3, color = $4, is_linked_to_ot = $5, updated_at = NOW()
		WHERE id = $6 AND is_deleted = FALSE
		RETURNING updated_at`,
		c.CategoryID, c.Code, c.Name, c.Color, c.LinkedToOT, c.ID,
	).Scan(&c.UpdatedAt)

	return writeErr("updating cost type", err)
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*costtype.CostType, error) {
	return s.getOne(ctx, typeColumns+` WHERE id = $1 AND is_deleted = FALSE`, id)
}

func (s *Store) GetByCode(ctx context.Context, code string) (*costtype.CostType, error) {
	return s.getOne(ctx, typeColumns+` WHERE code = $1 AND is_deleted = FALSE`, code)
}

func (s *Store) getOne(ctx context.Context, query string, arg any) (*costtype.CostType, error) {
	c, err := scanCostType(database.Conn(ctx, s.db).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("cost type")
	}

	if err != nil {
		return nil, fmt.Errorf("getting cost type: %w", err)
	}

	return c, nil
}

func (s *Store) List(ctx context.Context) ([]*costtype.CostType, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, typeColumns+` WHERE is_deleted = FALSE ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing cost types: %w", err)
	}
	defer rows.Close()

	var out []*costtype.CostType

	for rows.Next() {
		c, err := scanCostType(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cost type: %w", err)
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Store) CountInvoices(ctx context.Context, id uuid.UUID) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM invoices WHERE cost_type_id = $1 AND is_deleted = FALSE`, id)
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return s.softDelete(ctx, "cost_types", "cost type", id)
}

func (s *Store) SetCode(ctx context.Context, id uuid.UUID, code string) error {
	_, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE cost_types SET code = $1, updated_at = NOW() WHERE id = $2`, code, id)

	return writeErr("updating cost type code", err)
}

func (s *Store) count(ctx context.Context, query string, id uuid.UUID) (int, error) {
	var n int
	if err := database.Conn(ctx, s.db).QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting references: %w", err)
	}

	return n, nil
}

func (s *Store) softDelete(ctx context.Context, table, entity string, id uuid.UUID) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE `+table+` SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", entity, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return apperr.NotFound(entity)
	}

	return nil
}

func writeErr(action string, err error) error {
	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err):
		return costtype.ErrDuplicateCode
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("cost type")
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
