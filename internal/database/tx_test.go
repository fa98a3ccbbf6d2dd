package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/database"
)

func TestTransactor_InTx_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invoices").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tr := database.NewTransactor(db)
	err = tr.InTx(context.Background(), func(ctx context.Context) error {
		assert.True(t, database.InTransaction(ctx))

		_, err := database.Conn(ctx, db).ExecContext(ctx, "UPDATE invoices SET monto = 0")

		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_InTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")

	tr := database.NewTransactor(db)
	err = tr.InTx(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_InTx_Nested(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	tr := database.NewTransactor(db)
	err = tr.InTx(context.Background(), func(ctx context.Context) error {
		return tr.InTx(ctx, func(ctx context.Context) error {
			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestXactLock_RequiresTransaction(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = database.XactLock(context.Background(), db, "import")
	assert.Error(t, err)
}

func TestLockKey_Stable(t *testing.T) {
	assert.Equal(t, database.LockKey("mailbox"), database.LockKey("mailbox"))
	assert.NotEqual(t, database.LockKey("mailbox"), database.LockKey("import"))
}
