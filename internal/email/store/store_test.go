package store_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/email"
	"github.com/MrJamesThe3rd/forwarder/internal/email/store"
)

func TestStore_GetConfig(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM email_auto_processing_config")).
		WillReturnRows(sqlmock.NewRows([]string{
			"is_active", "interval_minutes", "target_folders", "subject_filters", "sender_whitelist",
			"max_emails_per_run", "last_run_at", "last_run_status", "updated_at",
		}).AddRow(true, 15, []byte(`["Inbox"]`), []byte(`["factura"]`), nil, 50, nil, "", now))

	cfg, err := store.New(db).GetConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.Active)
	assert.Equal(t, []string{"Inbox"}, cfg.TargetFolders)
	assert.Equal(t, []string{"factura"}, cfg.SubjectFilters)
	assert.Empty(t, cfg.SenderWhitelist)
	assert.Nil(t, cfg.LastRunAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateLogDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO email_processing_logs")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = store.New(db).CreateLog(context.Background(), &email.Log{
		MessageID: "<m1@mail>",
		Status:    email.StatusSkipped,
		Reason:    email.ReasonNoAttachments,
	})
	assert.ErrorIs(t, err, email.ErrAlreadyLogged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetLogMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM email_processing_logs")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = store.New(db).GetLog(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListLogs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	id, invID := uuid.New(), uuid.New()
	status := email.StatusSuccess

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("success", 100, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "message_id", "subject", "sender", "received_at", "folder", "attachment_filenames",
			"status", "reason", "invoices_created", "ots_matched", "processing_ms", "error", "created_at",
		}).AddRow(
			id.String(), "<m1@mail>", "Factura", "billing@carrier.com", now, "Inbox", []byte(`["f.pdf"]`),
			"success", "", []byte(`["`+invID.String()+`"]`), 1, 420, "", now,
		))

	logs, err := store.New(db).ListLogs(context.Background(), email.LogFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, email.StatusSuccess, logs[0].Status)
	assert.Equal(t, []uuid.UUID{invID}, logs[0].InvoicesCreated)
	assert.Equal(t, []string{"f.pdf"}, logs[0].AttachmentFilenames)
	assert.NoError(t, mock.ExpectationsWereMet())
}
