package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
	"github.com/MrJamesThe3rd/forwarder/internal/importer"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ProcessedFileExists(ctx context.Context, hash string) (bool, error) {
	var exists bool

	err := database.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_files WHERE file_hash = $1)`, hash,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking processed file: %w", err)
	}

	return exists, nil
}

func (s *Store) CreateProcessedFile(ctx context.Context, f *importer.ProcessedFile) error {
	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO processed_files (
			file_hash, filename, created_count, updated_count, skipped_count, operation_type, processed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		f.FileHash, f.Filename, f.Created, f.Updated, f.Skipped, f.OperationType, f.ProcessedBy,
	).Scan(&f.ID, &f.CreatedAt)
	if database.IsUniqueViolation(err) {
		return importer.ErrAlreadyProcessed
	}

	if err != nil {
		return fmt.Errorf("inserting processed file: %w", err)
	}

	return nil
}

func (s *Store) ListProcessedFiles(ctx context.Context, limit, offset int) ([]*importer.ProcessedFile, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT id, file_hash, filename, created_count, updated_count, skipped_count,
			operation_type, processed_by, created_at
		FROM processed_files
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing processed files: %w", err)
	}
	defer rows.Close()

	var out []*importer.ProcessedFile

	for rows.Next() {
		var f importer.ProcessedFile
		if err := rows.Scan(&f.ID, &f.FileHash, &f.Filename, &f.Created, &f.Updated, &f.Skipped,
			&f.OperationType, &f.ProcessedBy, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning processed file: %w", err)
		}

		out = append(out, &f)
	}

	return out, rows.Err()
}

func (s *Store) CreateBatch(ctx context.Context, b *importer.Batch) error {
	payload, err := json.Marshal(b.Payload)
	if err != nil {
		return fmt.Errorf("encoding batch payload: %w", err)
	}

	err = database.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO import_batches (file_hash, filename, operation_type, processed_by, payload, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		b.FileHash, b.Filename, b.OperationType, b.ProcessedBy, payload, b.ExpiresAt,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting import batch: %w", err)
	}

	return nil
}

func (s *Store) GetBatch(ctx context.Context, id uuid.UUID, now time.Time) (*importer.Batch, error) {
	var (
		b       importer.Batch
		payload []byte
	)

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, file_hash, filename, operation_type, processed_by, payload, expires_at, created_at
		FROM import_batches
		WHERE id = $1 AND expires_at > $2`, id, now,
	).Scan(&b.ID, &b.FileHash, &b.Filename, &b.OperationType, &b.ProcessedBy, &payload, &b.ExpiresAt, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("import batch")
	}

	if err != nil {
		return nil, fmt.Errorf("getting import batch: %w", err)
	}

	if err := json.Unmarshal(payload, &b.Payload); err != nil {
		return nil, fmt.Errorf("decoding batch payload: %w", err)
	}

	return &b, nil
}

func (s *Store) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM import_batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting import batch: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("import batch")
	}

	return nil
}

func (s *Store) DeleteExpiredBatches(ctx context.Context, now time.Time) (int, error) {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM import_batches WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired batches: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(n), nil
}
