package invoice_test

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeRepo keeps invoices, their ledgers and work-order stamps in memory.
// It serves both the invoice service and the provision engine so linkage
// can be exercised end to end.
type fakeRepo struct {
	invoices   map[uuid.UUID]invoice.Invoice
	notes      map[uuid.UUID]invoice.CreditNote
	disputes   map[uuid.UUID]invoice.Dispute
	links      map[uuid.UUID][]decimal.Decimal
	workOrders map[uuid.UUID]provision.Stamp
	clock      time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		invoices:   map[uuid.UUID]invoice.Invoice{},
		notes:      map[uuid.UUID]invoice.CreditNote{},
		disputes:   map[uuid.UUID]invoice.Dispute{},
		links:      map[uuid.UUID][]decimal.Decimal{},
		workOrders: map[uuid.UUID]provision.Stamp{},
		clock:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeRepo) put(inv invoice.Invoice) *invoice.Invoice {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}

	if inv.EstadoProvision == "" {
		inv.EstadoProvision = provision.StatePendiente
	}

	inv.UserFields = slices.Clone(inv.UserFields)
	f.invoices[inv.ID] = inv

	return &inv
}

func (f *fakeRepo) Create(_ context.Context, inv *invoice.Invoice) error {
	inv.ID = uuid.New()
	inv.CreatedAt = f.tick()
	f.put(*inv)

	return nil
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, apperr.NotFound("invoice")
	}

	inv.UserFields = slices.Clone(inv.UserFields)

	return &inv, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return f.Get(ctx, id)
}

func (f *fakeRepo) LockMany(ctx context.Context, ids []uuid.UUID) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice

	for _, id := range ids {
		if inv, err := f.Get(ctx, id); err == nil {
			out = append(out, inv)
		}
	}

	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, inv *invoice.Invoice) error {
	if _, ok := f.invoices[inv.ID]; !ok {
		return apperr.NotFound("invoice")
	}

	f.put(*inv)

	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.invoices, id)
	return nil
}

func (f *fakeRepo) List(context.Context, invoice.ListFilter) ([]*invoice.Invoice, error) {
	return nil, nil
}

func (f *fakeRepo) ExistsForFile(_ context.Context, fileID uuid.UUID) (bool, error) {
	for _, inv := range f.invoices {
		if inv.UploadedFileID != nil && *inv.UploadedFileID == fileID {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeRepo) CountPaymentLinks(_ context.Context, id uuid.UUID) (int, error) {
	return len(f.links[id]), nil
}

func (f *fakeRepo) SumPaymentLinks(_ context.Context, id uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range f.links[id] {
		sum = sum.Add(l)
	}

	return sum, nil
}

func (f *fakeRepo) ListCreditNotes(_ context.Context, invoiceID uuid.UUID) ([]*invoice.CreditNote, error) {
	var out []*invoice.CreditNote

	for _, n := range f.notes {
		if n.InvoiceID == invoiceID {
			out = append(out, &n)
		}
	}

	return out, nil
}

func (f *fakeRepo) CreateCreditNote(_ context.Context, n *invoice.CreditNote) error {
	n.ID = uuid.New()
	n.CreatedAt = f.tick()
	f.notes[n.ID] = *n

	return nil
}

func (f *fakeRepo) GetCreditNote(_ context.Context, id uuid.UUID) (*invoice.CreditNote, error) {
	n, ok := f.notes[id]
	if !ok {
		return nil, apperr.NotFound("credit note")
	}

	return &n, nil
}

func (f *fakeRepo) UpdateCreditNote(_ context.Context, n *invoice.CreditNote) error {
	f.notes[n.ID] = *n
	return nil
}

func (f *fakeRepo) ListDisputes(_ context.Context, invoiceID uuid.UUID) ([]*invoice.Dispute, error) {
	var out []*invoice.Dispute

	for _, d := range f.disputes {
		if d.InvoiceID == invoiceID {
			out = append(out, &d)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

func (f *fakeRepo) CreateDispute(_ context.Context, d *invoice.Dispute) error {
	d.ID = uuid.New()
	d.CreatedAt = f.tick()
	f.disputes[d.ID] = *d

	return nil
}

func (f *fakeRepo) GetDispute(_ context.Context, id uuid.UUID) (*invoice.Dispute, error) {
	d, ok := f.disputes[id]
	if !ok {
		return nil, apperr.NotFound("dispute")
	}

	return &d, nil
}

func (f *fakeRepo) UpdateDispute(_ context.Context, d *invoice.Dispute) error {
	f.disputes[d.ID] = *d
	return nil
}

func (f *fakeRepo) ListDueCandidates(context.Context) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice

	for _, inv := range f.invoices {
		if (inv.TipoPago == invoice.TipoCredito && inv.FechaVencimiento != nil) || inv.AlertaVencimiento {
			out = append(out, &inv)
		}
	}

	return out, nil
}

func (f *fakeRepo) SetDueAlert(_ context.Context, id uuid.UUID, on bool) error {
	inv := f.invoices[id]
	inv.AlertaVencimiento = on
	f.invoices[id] = inv

	return nil
}

// provision.Store

func (f *fakeRepo) ListLinkedInvoices(_ context.Context, workOrderID uuid.UUID) ([]provision.LinkedInvoice, error) {
	var out []provision.LinkedInvoice

	for _, inv := range f.invoices {
		if inv.WorkOrderID != nil && *inv.WorkOrderID == workOrderID && inv.Linked() {
			out = append(out, provision.LinkedInvoice{ID: inv.ID, WorkOrderID: workOrderID, Stamp: inv.Stamp()})
		}
	}

	return out, nil
}

func (f *fakeRepo) SetInvoiceStamp(_ context.Context, id uuid.UUID, s provision.Stamp) error {
	inv := f.invoices[id]
	inv.SetStamp(s)
	f.invoices[id] = inv

	return nil
}

func (f *fakeRepo) GetWorkOrderStamp(_ context.Context, id uuid.UUID) (provision.Stamp, error) {
	s, ok := f.workOrders[id]
	if !ok {
		return s, apperr.NotFound("work order")
	}

	return s, nil
}

func (f *fakeRepo) SetWorkOrderStamp(_ context.Context, id uuid.UUID, s provision.Stamp) error {
	f.workOrders[id] = s
	return nil
}

func (f *fakeRepo) ListWorkOrdersWithLinkedInvoices(context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id := range f.workOrders {
		ids = append(ids, id)
	}

	return ids, nil
}
