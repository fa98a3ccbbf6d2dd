package store_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice/store"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

var columns = []string{
	"id", "numero", "provider_id", "provider_name", "work_order_id", "work_order_number",
	"cost_type_id", "cost_type_code", "is_linked_to_ot", "uploaded_file_id", "source",
	"fecha_emision", "fecha_vencimiento", "fecha_provision", "fecha_facturacion", "moneda",
	"monto", "monto_aplicable", "monto_pagado", "estado_provision", "estado_pago", "tipo_pago",
	"alerta_vencimiento", "ot_extraido", "mbl", "hbl", "contenedor", "notas", "user_fields",
	"created_at", "updated_at",
}

func TestStore_GetForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id, woID, ctID := uuid.New(), uuid.New(), uuid.New()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF i")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			id.String(), "F-001", nil, "", woID.String(), "25OT001",
			ctID.String(), "FLETE", false, nil, "upload",
			now, nil, now, nil, "USD",
			"1000.00", "800.00", "300.00", "provisionada", "pagado_parcial", "credito",
			false, "25OT001", "MSCU1", "", "", "", []byte(`["numero","monto"]`),
			now, now,
		))

	inv, err := store.New(db).GetForUpdate(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, woID, *inv.WorkOrderID)
	assert.Equal(t, provision.StateProvisionada, inv.EstadoProvision)
	assert.Equal(t, invoice.PagoParcial, inv.EstadoPago)
	assert.Equal(t, invoice.TipoCredito, inv.TipoPago)
	assert.True(t, decimal.RequireFromString("500").Equal(inv.Pendiente()))
	assert.True(t, inv.Linked(), "legacy FLETE code links to the work order")
	assert.Equal(t, []string{"numero", "monto"}, inv.UserFields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices i")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = store.New(db).Get(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateDuplicateFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	fileID := uuid.New()
	err = store.New(db).Create(context.Background(), &invoice.Invoice{UploadedFileID: &fileID})
	assert.ErrorIs(t, err, apperr.ErrDuplicateFile)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SumPaymentLinks(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(l.monto_pagado_factura), 0)")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("450.25"))

	sum, err := store.New(db).SumPaymentLinks(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "450.25", sum.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetDueAlert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET alerta_vencimiento = $2")).
		WithArgs(id, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.New(db).SetDueAlert(context.Background(), id, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListEmittedRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("i.fecha_emision >= $1::date AND i.fecha_emision <= $2::date")).
		WithArgs("2025-05-01", "2025-05-31").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = store.New(db).List(context.Background(), invoice.ListFilter{EmittedFrom: &from, EmittedTo: &to})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
