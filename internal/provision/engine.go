package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// LinkedInvoice is an OT-linked, live invoice attached to a work order.
type LinkedInvoice struct {
	ID          uuid.UUID
	WorkOrderID uuid.UUID
	Stamp       Stamp
}

// InvoiceRef describes an invoice that was just written.
type InvoiceRef struct {
	ID          uuid.UUID
	WorkOrderID *uuid.UUID
	Linked      bool
	Stamp       Stamp
}

//go:generate mockgen -source=engine.go -destination=store_mock.go -package=provision
type Store interface {
	// ListLinkedInvoices returns the live OT-linked invoices of a work order,
	// annulled ones included.
	ListLinkedInvoices(ctx context.Context, workOrderID uuid.UUID) ([]LinkedInvoice, error)
	SetInvoiceStamp(ctx context.Context, invoiceID uuid.UUID, s Stamp) error
	GetWorkOrderStamp(ctx context.Context, workOrderID uuid.UUID) (Stamp, error)
	SetWorkOrderStamp(ctx context.Context, workOrderID uuid.UUID, s Stamp) error
	ListWorkOrdersWithLinkedInvoices(ctx context.Context) ([]uuid.UUID, error)
}

// Engine is the only place where invoice and work-order provision state is
// reconciled. Its writes go straight to the store and never re-enter the
// engine, which is what keeps a single save from cycling.
type Engine struct {
	store  Store
	logger *slog.Logger
}

func NewEngine(store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{store: store, logger: logger}
}

// OnWorkOrderSaved pushes the work order's stamp into every linked invoice
// that is not annulled. It returns how many invoices changed.
func (e *Engine) OnWorkOrderSaved(ctx context.Context, workOrderID uuid.UUID, stamp Stamp) (int, error) {
	return e.propagate(ctx, workOrderID, stamp, uuid.Nil)
}

func (e *Engine) propagate(ctx context.Context, workOrderID uuid.UUID, stamp Stamp, skip uuid.UUID) (int, error) {
	invoices, err := e.store.ListLinkedInvoices(ctx, workOrderID)
	if err != nil {
		return 0, fmt.Errorf("list linked invoices: %w", err)
	}

	changed := 0

	for _, inv := range invoices {
		if inv.ID == skip || inv.Stamp.State.Annulled() {
			continue
		}

		next := Mirror(inv.Stamp, stamp)
		if next.Equal(inv.Stamp) {
			continue
		}

		if err := e.store.SetInvoiceStamp(ctx, inv.ID, next); err != nil {
			return changed, fmt.Errorf("set invoice %s stamp: %w", inv.ID, err)
		}

		changed++
	}

	return changed, nil
}

// Mirror returns the invoice stamp after inheriting from the work order.
func Mirror(inv, ot Stamp) Stamp {
	out := inv
	out.State = ot.State

	if ot.State == StateProvisionada && ot.FechaProvision != nil {
		out.FechaProvision = ot.FechaProvision
	}

	if ot.FechaFacturacion != nil {
		out.FechaFacturacion = ot.FechaFacturacion
	}

	return out
}

// OnInvoiceSaved drives the parent work order from a linked invoice and then
// re-aligns the invoice's siblings with the new work-order stamp.
func (e *Engine) OnInvoiceSaved(ctx context.Context, inv InvoiceRef) error {
	if !inv.Linked || inv.WorkOrderID == nil || inv.Stamp.State.Annulled() {
		return nil
	}

	current, err := e.store.GetWorkOrderStamp(ctx, *inv.WorkOrderID)
	if err != nil {
		return fmt.Errorf("get work order stamp: %w", err)
	}

	next := current
	next.State = inv.Stamp.State

	if inv.Stamp.State == StateProvisionada && inv.Stamp.FechaProvision != nil {
		next.FechaProvision = inv.Stamp.FechaProvision
	}

	if inv.Stamp.FechaFacturacion != nil && current.FechaFacturacion == nil {
		next.FechaFacturacion = inv.Stamp.FechaFacturacion
	}

	if next.Equal(current) {
		return nil
	}

	if err := e.store.SetWorkOrderStamp(ctx, *inv.WorkOrderID, next); err != nil {
		return fmt.Errorf("set work order stamp: %w", err)
	}

	e.logger.Info("work order driven by linked invoice",
		"work_order_id", *inv.WorkOrderID, "invoice_id", inv.ID,
		"from", current.State, "to", next.State)

	if _, err := e.propagate(ctx, *inv.WorkOrderID, next, inv.ID); err != nil {
		return err
	}

	return nil
}

// Inherit returns the stamp an invoice takes when it is attached to a work
// order as a linked invoice.
func (e *Engine) Inherit(ctx context.Context, workOrderID uuid.UUID, inv Stamp) (Stamp, error) {
	ot, err := e.store.GetWorkOrderStamp(ctx, workOrderID)
	if err != nil {
		return inv, fmt.Errorf("get work order stamp: %w", err)
	}

	return Mirror(inv, ot), nil
}

type SyncReport struct {
	WorkOrders int `json:"work_orders"`
	Invoices   int `json:"invoices"`
}

// SyncAll re-applies the work-order-to-invoice rule across every work order
// that has linked invoices.
func (e *Engine) SyncAll(ctx context.Context) (SyncReport, error) {
	var report SyncReport

	ids, err := e.store.ListWorkOrdersWithLinkedInvoices(ctx)
	if err != nil {
		return report, fmt.Errorf("list work orders: %w", err)
	}

	for _, id := range ids {
		stamp, err := e.store.GetWorkOrderStamp(ctx, id)
		if err != nil {
			return report, fmt.Errorf("get work order stamp: %w", err)
		}

		n, err := e.OnWorkOrderSaved(ctx, id, stamp)
		if err != nil {
			return report, err
		}

		report.WorkOrders++
		report.Invoices += n
	}

	return report, nil
}
