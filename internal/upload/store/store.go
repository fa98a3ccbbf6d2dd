package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectColumns = `SELECT id, sha256, path, filename, size, mime, created_at, updated_at FROM uploaded_files`

func scan(row *sql.Row) (*upload.File, error) {
	var f upload.File

	err := row.Scan(&f.ID, &f.SHA256, &f.Path, &f.Filename, &f.Size, &f.Mime, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("uploaded file")
	}

	if err != nil {
		return nil, fmt.Errorf("getting uploaded file: %w", err)
	}

	return &f, nil
}

func (s *Store) Create(ctx context.Context, f *upload.File) error {
	query := `
		INSERT INTO uploaded_files (sha256, path, filename, size, mime)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		f.SHA256, f.Path, f.Filename, f.Size, f.Mime,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return upload.ErrDuplicate
	}

	if err != nil {
		return fmt.Errorf("inserting uploaded file: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*upload.File, error) {
	return scan(database.Conn(ctx, s.db).QueryRowContext(ctx,
		selectColumns+` WHERE id = $1 AND is_deleted = FALSE`, id))
}

func (s *Store) GetByHash(ctx context.Context, sha string) (*upload.File, error) {
	return scan(database.Conn(ctx, s.db).QueryRowContext(ctx,
		selectColumns+` WHERE sha256 = $1 AND is_deleted = FALSE`, sha))
}
