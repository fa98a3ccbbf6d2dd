package payment_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/payment"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// ledger is an in-memory payment store that also plays the invoice engine,
// recomputing monto_pagado from the live links the way the real one does.
type ledger struct {
	payments map[uuid.UUID]*payment.Payment
	invoices map[uuid.UUID]*invoice.Invoice
}

func newLedger() *ledger {
	return &ledger{payments: map[uuid.UUID]*payment.Payment{}, invoices: map[uuid.UUID]*invoice.Invoice{}}
}

func (l *ledger) invoice(numero string, provider uuid.UUID, aplicable string) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID: uuid.New(), Numero: numero, ProviderID: &provider,
		Monto: dec(aplicable), MontoAplicable: dec(aplicable),
		EstadoProvision: provision.StateProvisionada, EstadoPago: invoice.PagoPendiente,
	}
	l.invoices[inv.ID] = inv

	return inv
}

func (l *ledger) Create(_ context.Context, p *payment.Payment) error {
	p.ID = uuid.New()
	cp := *p
	l.payments[p.ID] = &cp

	return nil
}

func (l *ledger) CreateLinks(_ context.Context, paymentID uuid.UUID, links []payment.Link) error {
	p := l.payments[paymentID]
	for _, link := range links {
		link.ID = uuid.New()
		link.PaymentID = paymentID
		p.Links = append(p.Links, link)
	}

	return nil
}

func (l *ledger) Get(_ context.Context, id uuid.UUID) (*payment.Payment, error) {
	p, ok := l.payments[id]
	if !ok {
		return nil, apperr.NotFound("supplier payment")
	}

	cp := *p

	return &cp, nil
}

func (l *ledger) GetForUpdate(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return l.Get(ctx, id)
}

func (l *ledger) List(context.Context, payment.ListFilter) ([]*payment.Payment, error) {
	return nil, nil
}

func (l *ledger) Update(_ context.Context, p *payment.Payment) error {
	cp := *p
	l.payments[p.ID] = &cp

	return nil
}

func (l *ledger) Delete(_ context.Context, id uuid.UUID) error {
	delete(l.payments, id)
	return nil
}

func (l *ledger) ListLinks(_ context.Context, paymentID uuid.UUID) ([]payment.Link, error) {
	return l.payments[paymentID].Links, nil
}

func (l *ledger) ListLinksForInvoice(_ context.Context, invoiceID uuid.UUID) ([]payment.Link, error) {
	var out []payment.Link

	for _, p := range l.payments {
		for _, link := range p.Links {
			if link.InvoiceID == invoiceID {
				out = append(out, link)
			}
		}
	}

	return out, nil
}

func (l *ledger) SetReceipt(_ context.Context, id uuid.UUID, path string) error {
	l.payments[id].ReceiptPath = path
	return nil
}

func (l *ledger) LockForPayment(_ context.Context, ids []uuid.UUID) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice

	for _, id := range ids {
		if inv, ok := l.invoices[id]; ok {
			cp := *inv
			out = append(out, &cp)
		}
	}

	return out, nil
}

func (l *ledger) RecomputePaid(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	links, _ := l.ListLinksForInvoice(ctx, id)

	paid := decimal.Zero
	for _, link := range links {
		paid = paid.Add(link.Monto)
	}

	inv := l.invoices[id]
	if paid.GreaterThan(inv.MontoAplicable) {
		return nil, apperr.LinkageBlocked("over-allocated")
	}

	inv.MontoPagado = paid
	inv.EstadoPago = invoice.PaymentStateFor(inv.MontoAplicable, paid)

	return inv, nil
}

func TestService_BulkPayment(t *testing.T) {
	ctx := context.Background()
	provider := uuid.New()
	fecha := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	l := newLedger()
	fa := l.invoice("F-A", provider, "500")
	fb := l.invoice("F-B", provider, "300")
	fc := l.invoice("F-C", provider, "200")

	svc := payment.NewService(l, inlineTx{}, l, nil, discard)

	p, err := svc.Create(ctx, payment.CreateParams{
		ProviderID: provider,
		FechaPago:  fecha,
		MontoTotal: dec("800"),
		Allocations: []payment.Allocation{
			{InvoiceID: fa.ID, Monto: dec("500")},
			{InvoiceID: fb.ID, Monto: dec("300")},
		},
	})
	require.NoError(t, err)
	assert.True(t, dec("800").Equal(p.Allocated()))

	assert.Equal(t, invoice.PagoTotal, fa.EstadoPago)
	assert.Equal(t, invoice.PagoTotal, fb.EstadoPago)
	assert.Equal(t, invoice.PagoPendiente, fc.EstadoPago)

	_, err = svc.Create(ctx, payment.CreateParams{
		ProviderID:  provider,
		FechaPago:   fecha,
		Allocations: []payment.Allocation{{InvoiceID: fa.ID, Monto: dec("300")}},
	})
	assert.ErrorIs(t, err, apperr.ErrLinkageBlocked)
	assert.True(t, dec("500").Equal(fa.MontoPagado))

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.True(t, fa.MontoPagado.IsZero())
	assert.Equal(t, invoice.PagoPendiente, fa.EstadoPago)
	assert.Equal(t, invoice.PagoPendiente, fb.EstadoPago)
}

func TestService_CreateGuards(t *testing.T) {
	provider := uuid.New()
	fecha := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name    string
		setup   func(l *ledger) payment.CreateParams
		wantErr error
		check   func(t *testing.T, p *payment.Payment)
	}

	tests := []testCase{
		{
			name: "zero total takes the allocated sum",
			setup: func(l *ledger) payment.CreateParams {
				a := l.invoice("A", provider, "120.50")
				b := l.invoice("B", provider, "79.50")

				return payment.CreateParams{ProviderID: provider, FechaPago: fecha, Allocations: []payment.Allocation{
					{InvoiceID: a.ID, Monto: dec("100")},
					{InvoiceID: b.ID, Monto: dec("79.50")},
				}}
			},
			check: func(t *testing.T, p *payment.Payment) {
				assert.True(t, dec("179.50").Equal(p.MontoTotal))
			},
		},
		{
			name: "allocations above total",
			setup: func(l *ledger) payment.CreateParams {
				a := l.invoice("A", provider, "500")

				return payment.CreateParams{ProviderID: provider, FechaPago: fecha, MontoTotal: dec("100"),
					Allocations: []payment.Allocation{{InvoiceID: a.ID, Monto: dec("150")}}}
			},
			wantErr: apperr.ErrLinkageBlocked,
		},
		{
			name: "non-positive allocation",
			setup: func(l *ledger) payment.CreateParams {
				a := l.invoice("A", provider, "500")

				return payment.CreateParams{ProviderID: provider, FechaPago: fecha,
					Allocations: []payment.Allocation{{InvoiceID: a.ID, Monto: dec("0")}}}
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "same invoice twice",
			setup: func(l *ledger) payment.CreateParams {
				a := l.invoice("A", provider, "500")

				return payment.CreateParams{ProviderID: provider, FechaPago: fecha, Allocations: []payment.Allocation{
					{InvoiceID: a.ID, Monto: dec("10")},
					{InvoiceID: a.ID, Monto: dec("10")},
				}}
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "invoice of another provider",
			setup: func(l *ledger) payment.CreateParams {
				a := l.invoice("A", uuid.New(), "500")

				return payment.CreateParams{ProviderID: provider, FechaPago: fecha,
					Allocations: []payment.Allocation{{InvoiceID: a.ID, Monto: dec("10")}}}
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "invoice not provisioned",
			setup: func(l *ledger) payment.CreateParams {
				a := l.invoice("A", provider, "500")
				a.EstadoProvision = provision.StateDisputada

				return payment.CreateParams{ProviderID: provider, FechaPago: fecha,
					Allocations: []payment.Allocation{{InvoiceID: a.ID, Monto: dec("10")}}}
			},
			wantErr: apperr.ErrLinkageBlocked,
		},
		{
			name: "unknown invoice",
			setup: func(*ledger) payment.CreateParams {
				return payment.CreateParams{ProviderID: provider, FechaPago: fecha,
					Allocations: []payment.Allocation{{InvoiceID: uuid.New(), Monto: dec("10")}}}
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name: "nothing allocated and no total",
			setup: func(*ledger) payment.CreateParams {
				return payment.CreateParams{ProviderID: provider, FechaPago: fecha}
			},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger()
			svc := payment.NewService(l, inlineTx{}, l, nil, discard)

			p, err := svc.Create(context.Background(), tt.setup(l))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, l.payments)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name       string
		params     payment.UpdateParams
		setupMock  func(repo *payment.MockRepository)
		wantErr    error
		wantTotal  string
		wantRefStr string
	}

	allocated := &payment.Payment{ID: id, MontoTotal: dec("800"), Links: []payment.Link{{InvoiceID: uuid.New(), Monto: dec("800")}}}

	tests := []testCase{
		{
			name:   "monto_total frozen once allocated",
			params: payment.UpdateParams{MontoTotal: new(dec("900"))},
			setupMock: func(repo *payment.MockRepository) {
				repo.EXPECT().GetForUpdate(gomock.Any(), id).Return(allocated, nil)
			},
			wantErr: apperr.ErrLinkageBlocked,
		},
		{
			name:   "same monto_total with header edits",
			params: payment.UpdateParams{MontoTotal: new(dec("800.00")), Referencia: new(" TRF-991 ")},
			setupMock: func(repo *payment.MockRepository) {
				repo.EXPECT().GetForUpdate(gomock.Any(), id).Return(&payment.Payment{
					ID: id, MontoTotal: dec("800"), Links: allocated.Links,
				}, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantTotal:  "800",
			wantRefStr: "TRF-991",
		},
		{
			name:   "unallocated payment changes total",
			params: payment.UpdateParams{MontoTotal: new(dec("50"))},
			setupMock: func(repo *payment.MockRepository) {
				repo.EXPECT().GetForUpdate(gomock.Any(), id).Return(&payment.Payment{ID: id, MontoTotal: dec("40")}, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantTotal: "50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := payment.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := payment.NewService(repo, inlineTx{}, payment.NewMockInvoices(ctrl), nil, discard)

			got, err := svc.Update(context.Background(), id, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, dec(tt.wantTotal).Equal(got.MontoTotal))

			if tt.wantRefStr != "" {
				assert.Equal(t, tt.wantRefStr, got.Referencia)
			}
		})
	}
}

func TestService_AttachReceipt(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := payment.NewMockRepository(ctrl)
	receipts := payment.NewMockReceipts(ctrl)

	id := uuid.New()
	key := "supplier_payments/2025/06/comprobante.pdf"

	gomock.InOrder(
		repo.EXPECT().Get(gomock.Any(), id).Return(&payment.Payment{ID: id}, nil),
		receipts.EXPECT().StoreReceipt(gomock.Any(), "comprobante.pdf", gomock.Any()).Return(key, nil),
		repo.EXPECT().SetReceipt(gomock.Any(), id, key).Return(nil),
		repo.EXPECT().Get(gomock.Any(), id).Return(&payment.Payment{ID: id, ReceiptPath: key}, nil),
	)

	svc := payment.NewService(repo, inlineTx{}, payment.NewMockInvoices(ctrl), receipts, discard)

	got, err := svc.AttachReceipt(context.Background(), id, "comprobante.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, key, got.ReceiptPath)
}
