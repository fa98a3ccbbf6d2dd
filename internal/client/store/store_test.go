package store_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/client"
	"github.com/MrJamesThe3rd/forwarder/internal/client/store"
)

func TestStore_FindResolutionMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT resolved_to FROM client_resolutions")).
		WithArgs("Agrícola Sur Ltda").
		WillReturnRows(sqlmock.NewRows([]string{"resolved_to"}))

	got, err := store.New(db).FindResolution(context.Background(), "Agrícola Sur Ltda")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindResolutionLatestWins(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs("AGRICOLA SUR").
		WillReturnRows(sqlmock.NewRows([]string{"resolved_to"}).AddRow(id.String()))

	got, err := store.New(db).FindResolution(context.Background(), "AGRICOLA SUR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertResolutionIgnoresDuplicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	to := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (original_name, resolved_to) DO NOTHING")).
		WithArgs("Agricola Sur", "AGRICOLA SUR", to, client.ResolutionManual).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = store.New(db).InsertResolution(context.Background(), client.Resolution{
		OriginalName:   "Agricola Sur",
		NormalizedName: "AGRICOLA SUR",
		ResolvedTo:     to,
		Kind:           client.ResolutionManual,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertMatchReportsKnownPair(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, b := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO similarity_matches")).
		WithArgs(a, b, 91).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := store.New(db).InsertMatch(context.Background(), a, b, 91)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetMatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var (
		id   = uuid.New()
		a    = uuid.New()
		b    = uuid.New()
		now  = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		cols = []string{"id", "alias_a", "alias_b", "name_a", "name_b", "score", "status", "notes", "reviewed_at", "created_at"}
	)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE m.id = $1 FOR UPDATE OF m")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			id.String(), a.String(), b.String(), "Agricola Sur", "Agrícola del Sur", 88, "pending", "", nil, now,
		))

	m, err := store.New(db).GetMatch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, client.MatchPending, m.Status)
	assert.Equal(t, "Agrícola del Sur", m.NameB)
	assert.Equal(t, 88, m.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetMatchMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM similarity_matches m")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = store.New(db).GetMatch(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RejectObsoleteMatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("a.merged_into IS NOT NULL OR b.merged_into IS NOT NULL")).
		WithArgs("alias removed").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := store.New(db).RejectObsoleteMatches(context.Background(), "alias removed")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RepointResolutionsDropsDuplicatesFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from, to := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM client_resolutions r")).
		WithArgs(from, to).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE client_resolutions SET resolved_to = $1 WHERE resolved_to = $2")).
		WithArgs(to, from).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, store.New(db).RepointResolutions(context.Background(), from, to))
	assert.NoError(t, mock.ExpectationsWereMet())
}
