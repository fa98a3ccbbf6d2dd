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
	"github.com/MrJamesThe3rd/forwarder/internal/importer"
	"github.com/MrJamesThe3rd/forwarder/internal/importer/store"
	"github.com/MrJamesThe3rd/forwarder/internal/importer/sheet"
)

func TestStore_CreateProcessedFileDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO processed_files")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = store.New(db).CreateProcessedFile(context.Background(), &importer.ProcessedFile{FileHash: "abc"})
	assert.ErrorIs(t, err, importer.ErrAlreadyProcessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	payload := `{"format":"csv","records":[{"line":2,"number":"25OT001","client":"ACME"}],` +
		`"conflicts":[{"ot":"25OT001","field":"cliente","current_value":"OLD","new_value":"ACME","current_source":"manual"}],` +
		`"warnings":null,"skipped":1}`

	mock.ExpectQuery(regexp.QuoteMeta("FROM import_batches")).
		WithArgs(id, now).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "file_hash", "filename", "operation_type", "processed_by", "payload", "expires_at", "created_at",
		}).AddRow(id.String(), "abc", "ots.csv", "import", "ana", []byte(payload), now.Add(time.Hour), now))

	b, err := store.New(db).GetBatch(context.Background(), id, now)
	require.NoError(t, err)

	assert.Equal(t, sheet.FormatCSV, b.Payload.Format)
	require.Len(t, b.Payload.Records, 1)
	assert.Equal(t, "25OT001", b.Payload.Records[0].Number)
	require.Len(t, b.Payload.Conflicts, 1)
	assert.Equal(t, 1, b.Payload.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetBatchExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("expires_at > $2")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = store.New(db).GetBatch(context.Background(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_DeleteExpiredBatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM import_batches WHERE expires_at <= $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.New(db).DeleteExpiredBatches(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
