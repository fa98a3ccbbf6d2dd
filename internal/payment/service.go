package payment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/money"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	CreateLinks(ctx context.Context, paymentID uuid.UUID, links []Link) error
	Get(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]*Payment, error)
	Update(ctx context.Context, p *Payment) error
	// Delete soft-deletes the payment and removes its links.
	Delete(ctx context.Context, id uuid.UUID) error
	ListLinks(ctx context.Context, paymentID uuid.UUID) ([]Link, error)
	ListLinksForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Link, error)
	SetReceipt(ctx context.Context, id uuid.UUID, path string) error
}

type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Invoices is the part of the invoice engine an allocation needs. Both
// calls must run inside the allocation's transaction.
type Invoices interface {
	LockForPayment(ctx context.Context, ids []uuid.UUID) ([]*invoice.Invoice, error)
	RecomputePaid(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
}

type Receipts interface {
	StoreReceipt(ctx context.Context, filename string, r io.Reader) (string, error)
}

type Service struct {
	repo     Repository
	tx       TxRunner
	invoices Invoices
	receipts Receipts
	logger   *slog.Logger
}

func NewService(repo Repository, tx TxRunner, invoices Invoices, receipts Receipts, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{repo: repo, tx: tx, invoices: invoices, receipts: receipts, logger: logger}
}

type Allocation struct {
	InvoiceID uuid.UUID       `json:"invoice_id" validate:"required"`
	Monto     decimal.Decimal `json:"monto"`
}

type CreateParams struct {
	ProviderID  uuid.UUID       `json:"provider_id" validate:"required"`
	FechaPago   time.Time       `json:"fecha_pago" validate:"required"`
	MontoTotal  decimal.Decimal `json:"monto_total"`
	Referencia  string          `json:"referencia" validate:"max=120"`
	Notas       string          `json:"notas"`
	Allocations []Allocation    `json:"allocations" validate:"dive"`
}

type ListFilter struct {
	ProviderID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Payment, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Link, error) {
	return s.repo.ListLinksForInvoice(ctx, invoiceID)
}

// validateAllocations checks the amounts on their own and returns the links
// to write plus their sum.
func validateAllocations(allocs []Allocation) ([]Link, decimal.Decimal, error) {
	var (
		fields apperr.Fields
		links  = make([]Link, 0, len(allocs))
		seen   = make(map[uuid.UUID]bool, len(allocs))
	)

	for i, a := range allocs {
		field := fmt.Sprintf("allocations[%d]", i)

		amount := money.Round2(a.Monto)
		if !amount.IsPositive() {
			fields.Add(field+".monto", "must be greater than 0")
		}

		if seen[a.InvoiceID] {
			fields.Add(field+".invoice_id", "invoice is allocated more than once")
		}

		seen[a.InvoiceID] = true
		links = append(links, Link{InvoiceID: a.InvoiceID, Monto: amount})
	}

	if err := fields.Err(); err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	for _, l := range links {
		total = total.Add(l.Monto)
	}

	return links, total, nil
}

// Create records a payment and allocates it. Every invoice must belong to
// the payment's provider, be provisionada and still owe at least the
// allocated amount. A zero monto_total takes the sum of the allocations.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Payment, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	links, allocated, err := validateAllocations(params.Allocations)
	if err != nil {
		return nil, err
	}

	total := money.Round2(params.MontoTotal)

	switch {
	case total.IsNegative():
		return nil, apperr.Validation("monto_total", "must be greater than or equal to 0")
	case total.IsZero() && len(links) == 0:
		return nil, apperr.Validation("monto_total", "is required when nothing is allocated")
	case total.IsZero():
		total = allocated
	case allocated.GreaterThan(total):
		return nil, apperr.LinkageBlocked("allocations %s exceed the payment total %s",
			money.Format(allocated), money.Format(total))
	}

	p := &Payment{
		ProviderID: params.ProviderID,
		FechaPago:  params.FechaPago,
		MontoTotal: total,
		Referencia: strings.TrimSpace(params.Referencia),
		Notas:      params.Notas,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.checkInvoices(ctx, params.ProviderID, links); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}

		if len(links) == 0 {
			return nil
		}

		if err := s.repo.CreateLinks(ctx, p.ID, links); err != nil {
			return err
		}

		return s.recompute(ctx, links)
	})
	if err != nil {
		return nil, err
	}

	for i := range links {
		links[i].PaymentID = p.ID
	}

	p.Links = links

	s.logger.Info("supplier payment created",
		"payment_id", p.ID, "provider_id", p.ProviderID,
		"monto_total", money.Format(p.MontoTotal), "invoices", len(links))

	return p, nil
}

// checkInvoices locks the allocated invoices and applies the allocation
// guards against their current amounts.
func (s *Service) checkInvoices(ctx context.Context, providerID uuid.UUID, links []Link) error {
	if len(links) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(links))
	for i, l := range links {
		ids[i] = l.InvoiceID
	}

	locked, err := s.invoices.LockForPayment(ctx, ids)
	if err != nil {
		return fmt.Errorf("locking invoices: %w", err)
	}

	byID := make(map[uuid.UUID]*invoice.Invoice, len(locked))
	for _, inv := range locked {
		byID[inv.ID] = inv
	}

	for i, l := range links {
		inv, ok := byID[l.InvoiceID]
		if !ok {
			return apperr.New(apperr.ErrNotFound, "invoice %s not found", l.InvoiceID)
		}

		links[i].InvoiceNumero = inv.Numero

		if inv.ProviderID == nil || *inv.ProviderID != providerID {
			return apperr.Validation(fmt.Sprintf("allocations[%d].invoice_id", i),
				"invoice "+inv.Numero+" belongs to another provider")
		}

		if inv.EstadoProvision != provision.StateProvisionada {
			return apperr.LinkageBlocked("invoice %s is %s, only provisionada invoices can be paid",
				inv.Numero, inv.EstadoProvision)
		}

		if l.Monto.GreaterThan(inv.Pendiente()) {
			return apperr.LinkageBlocked("allocation %s exceeds the %s pending on invoice %s",
				money.Format(l.Monto), money.Format(inv.Pendiente()), inv.Numero)
		}
	}

	return nil
}

func (s *Service) recompute(ctx context.Context, links []Link) error {
	for _, l := range links {
		if _, err := s.invoices.RecomputePaid(ctx, l.InvoiceID); err != nil {
			return fmt.Errorf("recomputing invoice %s: %w", l.InvoiceID, err)
		}
	}

	return nil
}

type UpdateParams struct {
	FechaPago  *time.Time       `json:"fecha_pago"`
	MontoTotal *decimal.Decimal `json:"monto_total"`
	Referencia *string          `json:"referencia" validate:"omitempty,max=120"`
	Notas      *string          `json:"notas"`
}

// Update edits the payment header. monto_total is frozen once the payment
// has allocations.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Payment, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	var out *Payment

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if params.MontoTotal != nil {
			total := money.Round2(*params.MontoTotal)

			if !total.Equal(p.MontoTotal) {
				if len(p.Links) > 0 {
					return apperr.LinkageBlocked("monto_total cannot change once the payment is allocated")
				}

				if !total.IsPositive() {
					return apperr.Validation("monto_total", "must be greater than 0")
				}

				p.MontoTotal = total
			}
		}

		if params.FechaPago != nil {
			p.FechaPago = *params.FechaPago
		}

		if params.Referencia != nil {
			p.Referencia = strings.TrimSpace(*params.Referencia)
		}

		if params.Notas != nil {
			p.Notas = *params.Notas
		}

		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}

		out = p

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes a payment with its allocations and recomputes what each
// touched invoice has been paid.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(p.Links))
		for i, l := range p.Links {
			ids[i] = l.InvoiceID
		}

		if len(ids) > 0 {
			if _, err := s.invoices.LockForPayment(ctx, ids); err != nil {
				return fmt.Errorf("locking invoices: %w", err)
			}
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}

		return s.recompute(ctx, p.Links)
	})
}

// AttachReceipt stores a receipt file and points the payment at it.
func (s *Service) AttachReceipt(ctx context.Context, id uuid.UUID, filename string, r io.Reader) (*Payment, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	path, err := s.receipts.StoreReceipt(ctx, filename, r)
	if err != nil {
		return nil, fmt.Errorf("storing receipt: %w", err)
	}

	if err := s.repo.SetReceipt(ctx, id, path); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}
