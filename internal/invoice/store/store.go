package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
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

const selectColumns = `
	SELECT i.id, i.numero, i.provider_id, COALESCE(p.name, ''), i.work_order_id, COALESCE(w.number, ''),
		i.cost_type_id, COALESCE(ct.code, ''), COALESCE(ct.is_linked_to_ot, FALSE), i.uploaded_file_id, i.source,
		i.fecha_emision, i.fecha_vencimiento, i.fecha_provision, i.fecha_facturacion, i.moneda,
		i.monto, i.monto_aplicable, i.monto_pagado, i.estado_provision, i.estado_pago, i.tipo_pago,
		i.alerta_vencimiento, i.ot_extraido, i.mbl, i.hbl, i.contenedor, i.notas, i.user_fields,
		i.created_at, i.updated_at
	FROM invoices i
	LEFT JOIN providers p ON p.id = i.provider_id
	LEFT JOIN work_orders w ON w.id = i.work_order_id
	LEFT JOIN cost_types ct ON ct.id = i.cost_type_id`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var (
		inv                                  invoice.Invoice
		source, estadoProv, estadoPago, tipo string
		userFields                           []byte
	)

	if err := s.Scan(
		&inv.ID, &inv.Numero, &inv.ProviderID, &inv.ProviderName, &inv.WorkOrderID, &inv.WorkOrderNumber,
		&inv.CostTypeID, &inv.CostTypeCode, &inv.CostTypeLinked, &inv.UploadedFileID, &source,
		&inv.FechaEmision, &inv.FechaVencimiento, &inv.FechaProvision, &inv.FechaFacturacion, &inv.Moneda,
		&inv.Monto, &inv.MontoAplicable, &inv.MontoPagado, &estadoProv, &estadoPago, &tipo,
		&inv.AlertaVencimiento, &inv.OTExtraido, &inv.MBL, &inv.HBL, &inv.Contenedor, &inv.Notas, &userFields,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Source = invoice.Source(source)
	inv.EstadoProvision = provision.State(estadoProv)
	inv.EstadoPago = invoice.EstadoPago(estadoPago)
	inv.TipoPago = invoice.TipoPago(tipo)

	if len(userFields) > 0 {
		if err := json.Unmarshal(userFields, &inv.UserFields); err != nil {
			return nil, fmt.Errorf("decoding user fields: %w", err)
		}
	}

	return &inv, nil
}

func userFieldsJSON(fields []string) ([]byte, error) {
	if fields == nil {
		fields = []string{}
	}

	return json.Marshal(fields)
}

func (s *Store) Create(ctx context.Context, inv *invoice.Invoice) error {
	userFields, err := userFieldsJSON(inv.UserFields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO invoices (
			numero, provider_id, work_order_id, cost_type_id, uploaded_file_id, source,
			fecha_emision, fecha_vencimiento, fecha_provision, fecha_facturacion, moneda,
			monto, monto_aplicable, monto_pagado, estado_provision, estado_pago, tipo_pago,
			alerta_vencimiento, ot_extraido, mbl, hbl, contenedor, notas, user_fields
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id, created_at, updated_at`

	err = database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		inv.Numero, inv.ProviderID, inv.WorkOrderID, inv.CostTypeID, inv.UploadedFileID, inv.Source,
		inv.FechaEmision, inv.FechaVencimiento, inv.FechaProvision, inv.FechaFacturacion, inv.Moneda,
		inv.Monto, inv.MontoAplicable, inv.MontoPagado, inv.EstadoProvision, inv.EstadoPago, inv.TipoPago,
		inv.AlertaVencimiento, inv.OTExtraido, inv.MBL, inv.HBL, inv.Contenedor, inv.Notas, userFields,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return apperr.New(apperr.ErrDuplicateFile, "file already has an invoice")
	}

	if err != nil {
		return fmt.Errorf("inserting invoice: %w", err)
	}

	return nil
}

func (s *Store) get(ctx context.Context, id uuid.UUID, suffix string) (*invoice.Invoice, error) {
	inv, err := scanInvoice(database.Conn(ctx, s.db).QueryRowContext(ctx,
		selectColumns+` WHERE i.id = $1 AND i.is_deleted = FALSE`+suffix, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("invoice")
	}

	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return s.get(ctx, id, "")
}

func (s *Store) GetForUpdate(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return s.get(ctx, id, ` FOR UPDATE OF i`)
}

func (s *Store) LockMany(ctx context.Context, ids []uuid.UUID) ([]*invoice.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := make([]string, len(ids))
	args := make([]any, len(ids))

	for i, id := range ids {
		params[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := selectColumns + ` WHERE i.id IN (` + strings.Join(params, ", ") + `) AND i.is_deleted = FALSE
		ORDER BY i.id
		FOR UPDATE OF i`

	return s.query(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*invoice.Invoice, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var out []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		out = append(out, inv)
	}

	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, inv *invoice.Invoice) error {
	userFields, err := userFieldsJSON(inv.UserFields)
	if err != nil {
		return err
	}

	query := `
		UPDATE invoices SET
			numero = $2, provider_id = $3, work_order_id = $4, cost_type_id = $5,
			fecha_emision = $6, fecha_vencimiento = $7, fecha_provision = $8, fecha_facturacion = $9,
			moneda = $10, monto = $11, monto_aplicable = $12, monto_pagado = $13,
			estado_provision = $14, estado_pago = $15, tipo_pago = $16, alerta_vencimiento = $17,
			ot_extraido = $18, mbl = $19, hbl = $20, contenedor = $21, notas = $22, user_fields = $23,
			updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`

	err = database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		inv.ID, inv.Numero, inv.ProviderID, inv.WorkOrderID, inv.CostTypeID,
		inv.FechaEmision, inv.FechaVencimiento, inv.FechaProvision, inv.FechaFacturacion,
		inv.Moneda, inv.Monto, inv.MontoAplicable, inv.MontoPagado,
		inv.EstadoProvision, inv.EstadoPago, inv.TipoPago, inv.AlertaVencimiento,
		inv.OTExtraido, inv.MBL, inv.HBL, inv.Contenedor, inv.Notas, userFields,
	).Scan(&inv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("invoice")
	}

	if err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE invoices SET is_deleted = TRUE, deleted_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("invoice")
	}

	return nil
}

func (s *Store) List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	var (
		conds = []string{"i.is_deleted = FALSE"}
		args  []any
	)

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ProviderID != nil {
		add("i.provider_id = $%d", *filter.ProviderID)
	}

	if filter.WorkOrderID != nil {
		add("i.work_order_id = $%d", *filter.WorkOrderID)
	}

	if filter.EstadoProvision != nil {
		add("i.estado_provision = $%d", *filter.EstadoProvision)
	}

	if filter.EstadoPago != nil {
		add("i.estado_pago = $%d", *filter.EstadoPago)
	}

	if filter.DueAlert != nil {
		add("i.alerta_vencimiento = $%d", *filter.DueAlert)
	}

	if filter.Overdue {
		add("i.tipo_pago = 'credito' AND i.monto_aplicable > i.monto_pagado AND i.fecha_vencimiento < $%d::date",
			filter.Today.Format("2006-01-02"))
	}

	if filter.EmittedFrom != nil {
		add("i.fecha_emision >= $%d::date", filter.EmittedFrom.Format("2006-01-02"))
	}

	if filter.EmittedTo != nil {
		add("i.fecha_emision <= $%d::date", filter.EmittedTo.Format("2006-01-02"))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(i.numero ILIKE $%d OR i.mbl ILIKE $%d OR i.hbl ILIKE $%d OR w.number ILIKE $%d OR p.name ILIKE $%d)",
			n, n, n, n, n))
	}

	query := selectColumns + ` WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY i.created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return s.query(ctx, query, args...)
}

func (s *Store) ExistsForFile(ctx context.Context, fileID uuid.UUID) (bool, error) {
	var exists bool

	err := database.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoices WHERE uploaded_file_id = $1 AND is_deleted = FALSE)`, fileID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking invoice for file: %w", err)
	}

	return exists, nil
}

func (s *Store) CountPaymentLinks(ctx context.Context, id uuid.UUID) (int, error) {
	var n int

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM supplier_payment_links l
		JOIN supplier_payments sp ON sp.id = l.payment_id AND sp.is_deleted = FALSE
		WHERE l.invoice_id = $1`, id,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting payment links: %w", err)
	}

	return n, nil
}

func (s *Store) SumPaymentLinks(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(l.monto_pagado_factura), 0)
		FROM supplier_payment_links l
		JOIN supplier_payments sp ON sp.id = l.payment_id AND sp.is_deleted = FALSE
		WHERE l.invoice_id = $1`, id,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing payment links: %w", err)
	}

	return sum, nil
}

const creditNoteColumns = `SELECT id, invoice_id, numero, fecha_emision, monto, estado, motivo, uploaded_file_id, created_at, updated_at FROM credit_notes`

func scanCreditNote(s scanner) (*invoice.CreditNote, error) {
	var (
		n      invoice.CreditNote
		estado string
	)

	if err := s.Scan(&n.ID, &n.InvoiceID, &n.Numero, &n.FechaEmision, &n.Monto, &estado, &n.Motivo,
		&n.UploadedFileID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}

	n.Estado = invoice.CreditNoteEstado(estado)

	return &n, nil
}

func (s *Store) ListCreditNotes(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.CreditNote, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx,
		creditNoteColumns+` WHERE invoice_id = $1 AND is_deleted = FALSE ORDER BY fecha_emision, created_at`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing credit notes: %w", err)
	}
	defer rows.Close()

	var out []*invoice.CreditNote

	for rows.Next() {
		n, err := scanCreditNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning credit note: %w", err)
		}

		out = append(out, n)
	}

	return out, rows.Err()
}

func (s *Store) CreateCreditNote(ctx context.Context, n *invoice.CreditNote) error {
	query := `
		INSERT INTO credit_notes (invoice_id, numero, fecha_emision, monto, estado, motivo, uploaded_file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		n.InvoiceID, n.Numero, n.FechaEmision, n.Monto, n.Estado, n.Motivo, n.UploadedFileID,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting credit note: %w", err)
	}

	return nil
}

func (s *Store) GetCreditNote(ctx context.Context, id uuid.UUID) (*invoice.CreditNote, error) {
	n, err := scanCreditNote(database.Conn(ctx, s.db).QueryRowContext(ctx,
		creditNoteColumns+` WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("credit note")
	}

	if err != nil {
		return nil, fmt.Errorf("getting credit note: %w", err)
	}

	return n, nil
}

func (s *Store) UpdateCreditNote(ctx context.Context, n *invoice.CreditNote) error {
	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		UPDATE credit_notes SET estado = $2, motivo = $3, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`, n.ID, n.Estado, n.Motivo,
	).Scan(&n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("credit note")
	}

	if err != nil {
		return fmt.Errorf("updating credit note: %w", err)
	}

	return nil
}

const disputeColumns = `SELECT id, invoice_id, motivo, monto_disputa, estado, resultado, monto_recuperado, resolved_at, created_at, updated_at FROM disputes`

func scanDispute(s scanner) (*invoice.Dispute, error) {
	var (
		d                 invoice.Dispute
		estado, resultado string
	)

	if err := s.Scan(&d.ID, &d.InvoiceID, &d.Motivo, &d.MontoDisputa, &estado, &resultado, &d.MontoRecuperado,
		&d.ResolvedAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}

	d.Estado = invoice.DisputeEstado(estado)
	d.Resultado = invoice.Resultado(resultado)

	return &d, nil
}

func (s *Store) ListDisputes(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.Dispute, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx,
		disputeColumns+` WHERE invoice_id = $1 AND is_deleted = FALSE ORDER BY created_at`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing disputes: %w", err)
	}
	defer rows.Close()

	var out []*invoice.Dispute

	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dispute: %w", err)
		}

		out = append(out, d)
	}

	return out, rows.Err()
}

func (s *Store) CreateDispute(ctx context.Context, d *invoice.Dispute) error {
	query := `
		INSERT INTO disputes (invoice_id, motivo, monto_disputa, estado, resultado, monto_recuperado)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		d.InvoiceID, d.Motivo, d.MontoDisputa, d.Estado, d.Resultado, d.MontoRecuperado,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting dispute: %w", err)
	}

	return nil
}

func (s *Store) GetDispute(ctx context.Context, id uuid.UUID) (*invoice.Dispute, error) {
	d, err := scanDispute(database.Conn(ctx, s.db).QueryRowContext(ctx,
		disputeColumns+` WHERE id = $1 AND is_deleted = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("dispute")
	}

	if err != nil {
		return nil, fmt.Errorf("getting dispute: %w", err)
	}

	return d, nil
}

func (s *Store) UpdateDispute(ctx context.Context, d *invoice.Dispute) error {
	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		UPDATE disputes
		SET motivo = $2, estado = $3, resultado = $4, monto_recuperado = $5, resolved_at = $6, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		d.ID, d.Motivo, d.Estado, d.Resultado, d.MontoRecuperado, d.ResolvedAt,
	).Scan(&d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("dispute")
	}

	if err != nil {
		return fmt.Errorf("updating dispute: %w", err)
	}

	return nil
}

func (s *Store) ListDueCandidates(ctx context.Context) ([]*invoice.Invoice, error) {
	return s.query(ctx, selectColumns+`
		WHERE i.is_deleted = FALSE
		  AND ((i.tipo_pago = 'credito' AND i.fecha_vencimiento IS NOT NULL) OR i.alerta_vencimiento)
		ORDER BY i.fecha_vencimiento NULLS LAST`)
}

func (s *Store) SetDueAlert(ctx context.Context, id uuid.UUID, on bool) error {
	if _, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE invoices SET alerta_vencimiento = $2, updated_at = NOW() WHERE id = $1`, id, on,
	); err != nil {
		return fmt.Errorf("setting due alert: %w", err)
	}

	return nil
}
