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
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder/store"
)

var columns = []string{
	"id", "number", "client_id", "client_name", "provider_id", "provider_name",
	"tipo_operacion", "master_bl", "house_bls", "containers", "etd", "eta", "estado",
	"estado_provision", "fecha_provision", "fecha_facturacion", "provision", "sources", "row_hash",
	"created_at", "updated_at", "deleted_at",
}

func TestStore_FindByContainer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("w.containers ? $1")).
		WithArgs("MSCU1234567").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			id.String(), "25OT001", nil, "", nil, "",
			"import", "MBL001", []byte(`["HBL1"]`), []byte(`["MSCU1234567"]`), nil, nil, "abierta",
			"provisionada", now, nil, []byte(`{"total":"150.5","items":[],"source":"excel","locked":true}`),
			[]byte(`{"master_bl":"csv"}`), "abc",
			now, now, nil,
		))

	got, err := store.New(db).FindBy(context.Background(), workorder.MatchContainer, "MSCU1234567")
	require.NoError(t, err)
	require.Len(t, got, 1)

	wo := got[0]
	assert.Equal(t, id, wo.ID)
	assert.Equal(t, []string{"HBL1"}, wo.HouseBLs)
	assert.Equal(t, []string{"MSCU1234567"}, wo.Containers)
	assert.Equal(t, provision.StateProvisionada, wo.EstadoProvision)
	require.NotNil(t, wo.Provision)
	assert.True(t, wo.Provision.Locked)
	assert.Equal(t, "150.5", wo.Provision.Total.String())
	assert.Equal(t, workorder.SourceCSV, wo.SourceOf(workorder.FieldMasterBL))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE work_orders SET is_deleted = TRUE")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = store.New(db).Delete(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
