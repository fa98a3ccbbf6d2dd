package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// linkedCondition matches cost types whose invoices mirror into the OT.
var linkedCondition = func() string {
	quoted := make([]string, len(provision.LegacyLinkedCodes))
	for i, c := range provision.LegacyLinkedCodes {
		quoted[i] = "'" + c + "'"
	}

	return "(ct.is_linked_to_ot OR ct.code IN (" + strings.Join(quoted, ", ") + "))"
}()

func (s *Store) ListLinkedInvoices(ctx context.Context, workOrderID uuid.UUID) ([]provision.LinkedInvoice, error) {
	query := `
		SELECT i.id, i.work_order_id, i.estado_provision, i.fecha_provision, i.fecha_facturacion
		FROM invoices i
		JOIN cost_types ct ON ct.id = i.cost_type_id
		WHERE i.work_order_id = $1 AND i.is_deleted = FALSE AND ` + linkedCondition + `
		ORDER BY i.created_at ASC
		FOR UPDATE OF i`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("listing linked invoices: %w", err)
	}
	defer rows.Close()

	var out []provision.LinkedInvoice

	for rows.Next() {
		var (
			li    provision.LinkedInvoice
			state string
		)

		if err := rows.Scan(&li.ID, &li.WorkOrderID, &state, &li.Stamp.FechaProvision, &li.Stamp.FechaFacturacion); err != nil {
			return nil, fmt.Errorf("scanning linked invoice: %w", err)
		}

		li.Stamp.State = provision.State(state)
		out = append(out, li)
	}

	return out, rows.Err()
}

func (s *Store) SetInvoiceStamp(ctx context.Context, invoiceID uuid.UUID, st provision.Stamp) error {
	query := `
		UPDATE invoices
		SET estado_provision = $1, fecha_provision = $2, fecha_facturacion = $3, updated_at = NOW()
		WHERE id = $4 AND is_deleted = FALSE`

	if _, err := database.Conn(ctx, s.db).ExecContext(ctx, query,
		st.State, st.FechaProvision, st.FechaFacturacion, invoiceID,
	); err != nil {
		return fmt.Errorf("updating invoice stamp: %w", err)
	}

	return nil
}

func (s *Store) GetWorkOrderStamp(ctx context.Context, workOrderID uuid.UUID) (provision.Stamp, error) {
	query := `
		SELECT estado_provision, fecha_provision, fecha_facturacion
		FROM work_orders
		WHERE id = $1 AND is_deleted = FALSE`

	var (
		st    provision.Stamp
		state string
	)

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query, workOrderID).
		Scan(&state, &st.FechaProvision, &st.FechaFacturacion)
	if errors.Is(err, sql.ErrNoRows) {
		return st, apperr.NotFound("work order")
	}

	if err != nil {
		return st, fmt.Errorf("getting work order stamp: %w", err)
	}

	st.State = provision.State(state)

	return st, nil
}

func (s *Store) SetWorkOrderStamp(ctx context.Context, workOrderID uuid.UUID, st provision.Stamp) error {
	query := `
		UPDATE work_orders
		SET estado_provision = $1, fecha_provision = $2, fecha_facturacion = $3, updated_at = NOW()
		WHERE id = $4 AND is_deleted = FALSE`

	if _, err := database.Conn(ctx, s.db).ExecContext(ctx, query,
		st.State, st.FechaProvision, st.FechaFacturacion, workOrderID,
	); err != nil {
		return fmt.Errorf("updating work order stamp: %w", err)
	}

	return nil
}

func (s *Store) ListWorkOrdersWithLinkedInvoices(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT i.work_order_id
		FROM invoices i
		JOIN cost_types ct ON ct.id = i.cost_type_id
		JOIN work_orders w ON w.id = i.work_order_id AND w.is_deleted = FALSE
		WHERE i.is_deleted = FALSE AND ` + linkedCondition

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing linked work orders: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning work order id: %w", err)
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}
