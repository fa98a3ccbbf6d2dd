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
	"github.com/MrJamesThe3rd/forwarder/internal/payment"
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
	SELECT sp.id, sp.provider_id, COALESCE(p.name, ''), sp.fecha_pago, sp.monto_total,
		sp.referencia, sp.notas, sp.receipt_path, sp.created_at, sp.updated_at
	FROM supplier_payments sp
	LEFT JOIN providers p ON p.id = sp.provider_id`

func scanPayment(s scanner) (*payment.Payment, error) {
	var p payment.Payment

	if err := s.Scan(
		&p.ID, &p.ProviderID, &p.ProviderName, &p.FechaPago, &p.MontoTotal,
		&p.Referencia, &p.Notas, &p.ReceiptPath, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) Create(ctx context.Context, p *payment.Payment) error {
	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO supplier_payments (provider_id, fecha_pago, monto_total, referencia, notas)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		p.ProviderID, p.FechaPago, p.MontoTotal, p.Referencia, p.Notas,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting supplier payment: %w", err)
	}

	return nil
}

func (s *Store) CreateLinks(ctx context.Context, paymentID uuid.UUID, links []payment.Link) error {
	if len(links) == 0 {
		return nil
	}

	values := make([]string, len(links))
	args := []any{paymentID}

	for i, l := range links {
		values[i] = fmt.Sprintf("($1, $%d, $%d)", len(args)+1, len(args)+2)
		args = append(args, l.InvoiceID, l.Monto)
	}

	_, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO supplier_payment_links (payment_id, invoice_id, monto_pagado_factura) VALUES `+
			strings.Join(values, ", "), args...)
	if database.IsUniqueViolation(err) {
		return apperr.Validation("allocations", "invoice is allocated more than once")
	}

	if err != nil {
		return fmt.Errorf("inserting payment links: %w", err)
	}

	return nil
}

func (s *Store) get(ctx context.Context, id uuid.UUID, suffix string) (*payment.Payment, error) {
	p, err := scanPayment(database.Conn(ctx, s.db).QueryRowContext(ctx,
		selectColumns+` WHERE sp.id = $1 AND sp.is_deleted = FALSE`+suffix, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("supplier payment")
	}

	if err != nil {
		return nil, fmt.Errorf("getting supplier payment: %w", err)
	}

	if p.Links, err = s.ListLinks(ctx, id); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return s.get(ctx, id, "")
}

func (s *Store) GetForUpdate(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return s.get(ctx, id, ` FOR UPDATE OF sp`)
}

func (s *Store) List(ctx context.Context, filter payment.ListFilter) ([]*payment.Payment, error) {
	var (
		conds = []string{"sp.is_deleted = FALSE"}
		args  []any
	)

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ProviderID != nil {
		add("sp.provider_id = $%d", *filter.ProviderID)
	}

	if filter.From != nil {
		add("sp.fecha_pago >= $%d", *filter.From)
	}

	if filter.To != nil {
		add("sp.fecha_pago <= $%d", *filter.To)
	}

	query := selectColumns + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY sp.fecha_pago DESC, sp.created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing supplier payments: %w", err)
	}
	defer rows.Close()

	var out []*payment.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning supplier payment: %w", err)
		}

		out = append(out, p)
	}

	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, p *payment.Payment) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE supplier_payments
		SET fecha_pago = $2, monto_total = $3, referencia = $4, notas = $5, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`,
		p.ID, p.FechaPago, p.MontoTotal, p.Referencia, p.Notas,
	)
	if err != nil {
		return fmt.Errorf("updating supplier payment: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("supplier payment")
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	conn := database.Conn(ctx, s.db)

	if _, err := conn.ExecContext(ctx, `DELETE FROM supplier_payment_links WHERE payment_id = $1`, id); err != nil {
		return fmt.Errorf("deleting payment links: %w", err)
	}

	res, err := conn.ExecContext(ctx,
		`UPDATE supplier_payments SET is_deleted = TRUE, deleted_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("deleting supplier payment: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("supplier payment")
	}

	return nil
}

const linkColumns = `
	SELECT l.id, l.payment_id, l.invoice_id, COALESCE(i.numero, ''), l.monto_pagado_factura, l.created_at
	FROM supplier_payment_links l
	JOIN supplier_payments sp ON sp.id = l.payment_id AND sp.is_deleted = FALSE
	LEFT JOIN invoices i ON i.id = l.invoice_id`

func (s *Store) links(ctx context.Context, where string, arg uuid.UUID) ([]payment.Link, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, linkColumns+" WHERE "+where+" ORDER BY l.created_at, l.id", arg)
	if err != nil {
		return nil, fmt.Errorf("listing payment links: %w", err)
	}
	defer rows.Close()

	var out []payment.Link

	for rows.Next() {
		var l payment.Link
		if err := rows.Scan(&l.ID, &l.PaymentID, &l.InvoiceID, &l.InvoiceNumero, &l.Monto, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment link: %w", err)
		}

		out = append(out, l)
	}

	return out, rows.Err()
}

func (s *Store) ListLinks(ctx context.Context, paymentID uuid.UUID) ([]payment.Link, error) {
	return s.links(ctx, "l.payment_id = $1", paymentID)
}

func (s *Store) ListLinksForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]payment.Link, error) {
	return s.links(ctx, "l.invoice_id = $1", invoiceID)
}

func (s *Store) SetReceipt(ctx context.Context, id uuid.UUID, path string) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE supplier_payments SET receipt_path = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id, path)
	if err != nil {
		return fmt.Errorf("setting payment receipt: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("supplier payment")
	}

	return nil
}
