package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
	"github.com/MrJamesThe3rd/forwarder/internal/email"
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

// jsonList decodes a JSONB array column, tolerating NULL.
func jsonList[T any](raw []byte, dst *[]T) error {
	if len(raw) == 0 {
		return nil
	}

	return json.Unmarshal(raw, dst)
}

func marshalList[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}

	return json.Marshal(v)
}

func (s *Store) GetConfig(ctx context.Context) (*email.Config, error) {
	var (
		cfg                        email.Config
		folders, subjects, senders []byte
	)

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT is_active, interval_minutes, target_folders, subject_filters, sender_whitelist,
			max_emails_per_run, last_run_at, last_run_status, updated_at
		FROM email_auto_processing_config
		WHERE id = 1`,
	).Scan(&cfg.Active, &cfg.IntervalMinutes, &folders, &subjects, &senders,
		&cfg.MaxEmailsPerRun, &cfg.LastRunAt, &cfg.LastRunStatus, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("email auto-processing config")
	}

	if err != nil {
		return nil, fmt.Errorf("getting email config: %w", err)
	}

	for _, l := range []struct {
		raw []byte
		dst *[]string
	}{{folders, &cfg.TargetFolders}, {subjects, &cfg.SubjectFilters}, {senders, &cfg.SenderWhitelist}} {
		if err := jsonList(l.raw, l.dst); err != nil {
			return nil, fmt.Errorf("decoding email config: %w", err)
		}
	}

	return &cfg, nil
}

func (s *Store) UpdateConfig(ctx context.Context, cfg *email.Config) error {
	folders, err := marshalList(cfg.TargetFolders)
	if err != nil {
		return err
	}

	subjects, err := marshalList(cfg.SubjectFilters)
	if err != nil {
		return err
	}

	senders, err := marshalList(cfg.SenderWhitelist)
	if err != nil {
		return err
	}

	err = database.Conn(ctx, s.db).QueryRowContext(ctx, `
		UPDATE email_auto_processing_config
		SET is_active = $1, interval_minutes = $2, target_folders = $3, subject_filters = $4,
			sender_whitelist = $5, max_emails_per_run = $6, updated_at = NOW()
		WHERE id = 1
		RETURNING updated_at`,
		cfg.Active, cfg.IntervalMinutes, folders, subjects, senders, cfg.MaxEmailsPerRun,
	).Scan(&cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating email config: %w", err)
	}

	return nil
}

func (s *Store) SaveRun(ctx context.Context, at time.Time, status string) error {
	_, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE email_auto_processing_config SET last_run_at = $1, last_run_status = $2 WHERE id = 1`, at, status)
	if err != nil {
		return fmt.Errorf("saving email run: %w", err)
	}

	return nil
}

func (s *Store) LogExists(ctx context.Context, messageID string) (bool, error) {
	var exists bool

	err := database.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM email_processing_logs WHERE message_id = $1)`, messageID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email log: %w", err)
	}

	return exists, nil
}

func (s *Store) CreateLog(ctx context.Context, l *email.Log) error {
	filenames, err := marshalList(l.AttachmentFilenames)
	if err != nil {
		return err
	}

	invoices, err := marshalList(l.InvoicesCreated)
	if err != nil {
		return err
	}

	err = database.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO email_processing_logs (
			message_id, subject, sender, received_at, folder, attachment_filenames,
			status, reason, invoices_created, ots_matched, processing_ms, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		l.MessageID, l.Subject, l.Sender, l.ReceivedAt, l.Folder, filenames,
		l.Status, l.Reason, invoices, l.OTsMatched, l.ProcessingMS, l.Error,
	).Scan(&l.ID, &l.CreatedAt)
	if database.IsUniqueViolation(err) {
		return email.ErrAlreadyLogged
	}

	if err != nil {
		return fmt.Errorf("inserting email log: %w", err)
	}

	return nil
}

const logColumns = `
	SELECT id, message_id, subject, sender, received_at, folder, attachment_filenames,
		status, reason, invoices_created, ots_matched, processing_ms, error, created_at
	FROM email_processing_logs`

func scanLog(s scanner) (*email.Log, error) {
	var (
		l                   email.Log
		status              string
		filenames, invoices []byte
	)

	if err := s.Scan(&l.ID, &l.MessageID, &l.Subject, &l.Sender, &l.ReceivedAt, &l.Folder, &filenames,
		&status, &l.Reason, &invoices, &l.OTsMatched, &l.ProcessingMS, &l.Error, &l.CreatedAt); err != nil {
		return nil, err
	}

	l.Status = email.Status(status)

	if err := jsonList(filenames, &l.AttachmentFilenames); err != nil {
		return nil, fmt.Errorf("decoding attachment names: %w", err)
	}

	if err := jsonList(invoices, &l.InvoicesCreated); err != nil {
		return nil, fmt.Errorf("decoding created invoices: %w", err)
	}

	return &l, nil
}

func (s *Store) GetLog(ctx context.Context, id uuid.UUID) (*email.Log, error) {
	l, err := scanLog(database.Conn(ctx, s.db).QueryRowContext(ctx, logColumns+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("email log")
	}

	if err != nil {
		return nil, fmt.Errorf("getting email log: %w", err)
	}

	return l, nil
}

func (s *Store) ListLogs(ctx context.Context, filter email.LogFilter) ([]*email.Log, error) {
	var (
		conds []string
		args  []any
	)

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if filter.Since != nil {
		args = append(args, *filter.Since)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	query := logColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing email logs: %w", err)
	}
	defer rows.Close()

	var out []*email.Log

	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning email log: %w", err)
		}

		out = append(out, l)
	}

	return out, rows.Err()
}
