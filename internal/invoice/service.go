package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/costtype"
	"github.com/MrJamesThe3rd/forwarder/internal/money"
	"github.com/MrJamesThe3rd/forwarder/internal/pattern"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/textextract"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

const defaultCurrency = "USD"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id uuid.UUID) (*Invoice, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// LockMany locks the given invoices in id order.
	LockMany(ctx context.Context, ids []uuid.UUID) ([]*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	ExistsForFile(ctx context.Context, fileID uuid.UUID) (bool, error)
	CountPaymentLinks(ctx context.Context, id uuid.UUID) (int, error)
	SumPaymentLinks(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)

	ListCreditNotes(ctx context.Context, invoiceID uuid.UUID) ([]*CreditNote, error)
	CreateCreditNote(ctx context.Context, n *CreditNote) error
	GetCreditNote(ctx context.Context, id uuid.UUID) (*CreditNote, error)
	UpdateCreditNote(ctx context.Context, n *CreditNote) error

	ListDisputes(ctx context.Context, invoiceID uuid.UUID) ([]*Dispute, error)
	CreateDispute(ctx context.Context, d *Dispute) error
	GetDispute(ctx context.Context, id uuid.UUID) (*Dispute, error)
	UpdateDispute(ctx context.Context, d *Dispute) error

	// ListDueCandidates returns live credit invoices with a due date, plus
	// any invoice still carrying the alert flag.
	ListDueCandidates(ctx context.Context) ([]*Invoice, error)
	SetDueAlert(ctx context.Context, id uuid.UUID, on bool) error
}

type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Linker keeps OT-linked invoices and their work order in step.
type Linker interface {
	OnInvoiceSaved(ctx context.Context, ref provision.InvoiceRef) error
	Inherit(ctx context.Context, workOrderID uuid.UUID, inv provision.Stamp) (provision.Stamp, error)
}

type CostTypes interface {
	Get(ctx context.Context, id uuid.UUID) (*costtype.CostType, error)
}

type WorkOrders interface {
	Get(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error)
	FindBy(ctx context.Context, key workorder.MatchKey, value string) ([]*workorder.WorkOrder, error)
}

type Files interface {
	ReadAll(ctx context.Context, id uuid.UUID) (*upload.File, []byte, error)
}

type Patterns interface {
	IdentifyProvider(ctx context.Context, text string) ([]pattern.ProviderScore, error)
	ApplyForProvider(ctx context.Context, text string, providerID *uuid.UUID) (pattern.Extraction, error)
}

type Deps struct {
	Repo       Repository
	Tx         TxRunner
	Linker     Linker
	CostTypes  CostTypes
	WorkOrders WorkOrders
	Files      Files
	Patterns   Patterns
	Logger     *slog.Logger
}

type Options struct {
	// ProviderConfidence is the minimum share of a provider's patterns that
	// must match before a file is attributed to it.
	ProviderConfidence float64
	DueWindowDays      int
	Now                func() time.Time
}

type Service struct {
	Deps
	opts  Options
	clock func() time.Time
}

func NewService(deps Deps, opts Options) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	if opts.ProviderConfidence <= 0 {
		opts.ProviderConfidence = 0.5
	}

	if opts.DueWindowDays <= 0 {
		opts.DueWindowDays = 7
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{Deps: deps, opts: opts, clock: opts.Now}
}

type ListFilter struct {
	ProviderID      *uuid.UUID
	WorkOrderID     *uuid.UUID
	EstadoProvision *provision.State
	EstadoPago      *EstadoPago
	DueAlert        *bool
	// Overdue keeps credit invoices past due with an amount pending.
	Overdue bool
	Today   time.Time
	// EmittedFrom and EmittedTo bound fecha_emision, both inclusive.
	EmittedFrom *time.Time
	EmittedTo   *time.Time
	Search      string
	Limit       int
	Offset      int
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	if filter.Overdue && filter.Today.IsZero() {
		filter.Today = s.clock()
	}

	return s.Repo.List(ctx, filter)
}

type CreateParams struct {
	Numero           string          `json:"numero" validate:"max=60"`
	ProviderID       *uuid.UUID      `json:"provider_id"`
	WorkOrderID      *uuid.UUID      `json:"work_order_id"`
	CostTypeID       *uuid.UUID      `json:"cost_type_id"`
	FechaEmision     *time.Time      `json:"fecha_emision"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento"`
	Moneda           string          `json:"moneda" validate:"omitempty,len=3"`
	Monto            decimal.Decimal `json:"monto"`
	TipoPago         TipoPago        `json:"tipo_pago" validate:"omitempty,oneof=contado credito"`
	MBL              string          `json:"mbl" validate:"max=60"`
	HBL              string          `json:"hbl" validate:"max=60"`
	Contenedor       string          `json:"contenedor" validate:"max=20"`
	Notas            string          `json:"notas"`
}

func validateMonto(m decimal.Decimal) error {
	if m.IsNegative() {
		return apperr.Validation("monto", "must be greater than or equal to 0")
	}

	return nil
}

// Create registers a manual invoice.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	if err := validateMonto(params.Monto); err != nil {
		return nil, err
	}

	inv := &Invoice{
		Numero:           strings.TrimSpace(params.Numero),
		ProviderID:       params.ProviderID,
		Source:           SourceManual,
		FechaEmision:     params.FechaEmision,
		FechaVencimiento: params.FechaVencimiento,
		Moneda:           strings.ToUpper(params.Moneda),
		Monto:            money.Round2(params.Monto),
		EstadoProvision:  provision.StatePendiente,
		TipoPago:         params.TipoPago,
		MBL:              workorder.NormalizeRef(params.MBL),
		HBL:              workorder.NormalizeRef(params.HBL),
		Contenedor:       workorder.NormalizeRef(params.Contenedor),
		Notas:            params.Notas,
	}

	if inv.Moneda == "" {
		inv.Moneda = defaultCurrency
	}

	if inv.TipoPago == "" {
		inv.TipoPago = TipoContado
	}

	for field, set := range map[string]bool{
		FieldNumero:           inv.Numero != "",
		FieldProvider:         inv.ProviderID != nil,
		FieldFechaEmision:     inv.FechaEmision != nil,
		FieldFechaVencimiento: inv.FechaVencimiento != nil,
		FieldMonto:            !inv.Monto.IsZero(),
		FieldMoneda:           params.Moneda != "",
		FieldMBL:              inv.MBL != "",
		FieldHBL:              inv.HBL != "",
		FieldContenedor:       inv.Contenedor != "",
	} {
		if set {
			inv.markUser(field)
		}
	}

	slices.Sort(inv.UserFields)

	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.setCostType(ctx, inv, params.CostTypeID); err != nil {
			return err
		}

		if params.WorkOrderID != nil {
			if err := s.link(ctx, inv, *params.WorkOrderID); err != nil {
				return err
			}
		}

		rederive(inv, nil, nil)
		inv.AlertaVencimiento = DueAlert(inv.TipoPago, inv.FechaVencimiento, s.clock(), s.opts.DueWindowDays)

		return s.Repo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) setCostType(ctx context.Context, inv *Invoice, id *uuid.UUID) error {
	if id == nil {
		inv.CostTypeID, inv.CostTypeCode, inv.CostTypeLinked = nil, "", false
		return nil
	}

	ct, err := s.CostTypes.Get(ctx, *id)
	if err != nil {
		return err
	}

	inv.CostTypeID = &ct.ID
	inv.CostTypeCode = ct.Code
	inv.CostTypeLinked = ct.LinkedToOT

	return nil
}

// link attaches inv to a work order and, when the invoice is OT-linked and
// not annulled, inherits the work order's provision stamp.
func (s *Service) link(ctx context.Context, inv *Invoice, workOrderID uuid.UUID) error {
	wo, err := s.WorkOrders.Get(ctx, workOrderID)
	if err != nil {
		return err
	}

	inv.WorkOrderID = &wo.ID
	inv.WorkOrderNumber = wo.Number

	return s.inherit(ctx, inv)
}

func (s *Service) inherit(ctx context.Context, inv *Invoice) error {
	if inv.WorkOrderID == nil || !inv.Linked() || inv.EstadoProvision.Annulled() {
		return nil
	}

	stamp, err := s.Linker.Inherit(ctx, *inv.WorkOrderID, inv.Stamp())
	if err != nil {
		return err
	}

	inv.SetStamp(stamp)

	return nil
}

type UpdateParams struct {
	Numero           *string          `json:"numero" validate:"omitempty,max=60"`
	ProviderID       *uuid.UUID       `json:"provider_id"`
	CostTypeID       *uuid.UUID       `json:"cost_type_id"`
	ClearCostType    bool             `json:"clear_cost_type"`
	FechaEmision     *time.Time       `json:"fecha_emision"`
	FechaVencimiento *time.Time       `json:"fecha_vencimiento"`
	FechaFacturacion *time.Time       `json:"fecha_facturacion"`
	Moneda           *string          `json:"moneda" validate:"omitempty,len=3"`
	Monto            *decimal.Decimal `json:"monto"`
	TipoPago         *TipoPago        `json:"tipo_pago" validate:"omitempty,oneof=contado credito"`
	MBL              *string          `json:"mbl"`
	HBL              *string          `json:"hbl"`
	Contenedor       *string          `json:"contenedor"`
	Notas            *string          `json:"notas"`
}

// Update applies user edits. A new monto re-derives the applicable amount
// and is refused when that would leave less than what was already paid.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Invoice, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	if params.Monto != nil {
		if err := validateMonto(*params.Monto); err != nil {
			return nil, err
		}
	}

	var out *Invoice

	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		inv, err := s.Repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		setText := func(field string, dst *string, v *string, norm func(string) string) {
			if v == nil {
				return
			}

			*dst = norm(*v)
			inv.markUser(field)
		}

		setText(FieldNumero, &inv.Numero, params.Numero, strings.TrimSpace)
		setText(FieldMBL, &inv.MBL, params.MBL, workorder.NormalizeRef)
		setText(FieldHBL, &inv.HBL, params.HBL, workorder.NormalizeRef)
		setText(FieldContenedor, &inv.Contenedor, params.Contenedor, workorder.NormalizeRef)
		setText(FieldMoneda, &inv.Moneda, params.Moneda, strings.ToUpper)

		if params.Notas != nil {
			inv.Notas = *params.Notas
		}

		if params.ProviderID != nil {
			inv.ProviderID = params.ProviderID
			inv.markUser(FieldProvider)
		}

		if params.FechaEmision != nil {
			inv.FechaEmision = params.FechaEmision
			inv.markUser(FieldFechaEmision)
		}

		if params.FechaVencimiento != nil {
			inv.FechaVencimiento = params.FechaVencimiento
			inv.markUser(FieldFechaVencimiento)
		}

		if params.TipoPago != nil {
			inv.TipoPago = *params.TipoPago
		}

		switch {
		case params.ClearCostType:
			if err := s.setCostType(ctx, inv, nil); err != nil {
				return err
			}
		case params.CostTypeID != nil:
			if err := s.setCostType(ctx, inv, params.CostTypeID); err != nil {
				return err
			}

			if err := s.inherit(ctx, inv); err != nil {
				return err
			}
		}

		if params.Monto != nil {
			inv.Monto = money.Round2(*params.Monto)
			inv.markUser(FieldMonto)

			if err := s.rederive(ctx, inv); err != nil {
				return err
			}
		}

		billed := params.FechaFacturacion != nil
		if billed {
			inv.FechaFacturacion = params.FechaFacturacion
		}

		inv.AlertaVencimiento = DueAlert(inv.TipoPago, inv.FechaVencimiento, s.clock(), s.opts.DueWindowDays)

		if err := s.Repo.Update(ctx, inv); err != nil {
			return err
		}

		if billed {
			if err := s.Linker.OnInvoiceSaved(ctx, inv.Ref()); err != nil {
				return fmt.Errorf("sync work order: %w", err)
			}
		}

		out = inv

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// rederive reloads credit notes and disputes and recomputes the derived
// amounts, refusing any result below what was already paid.
func (s *Service) rederive(ctx context.Context, inv *Invoice) error {
	notes, err := s.Repo.ListCreditNotes(ctx, inv.ID)
	if err != nil {
		return err
	}

	disputes, err := s.Repo.ListDisputes(ctx, inv.ID)
	if err != nil {
		return err
	}

	rederive(inv, notes, disputes)

	if inv.MontoAplicable.LessThan(inv.MontoPagado) {
		return apperr.LinkageBlocked("applicable amount %s would drop below the %s already paid",
			money.Format(inv.MontoAplicable), money.Format(inv.MontoPagado))
	}

	return nil
}

// Delete soft-deletes an invoice without payment allocations.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.Repo.GetForUpdate(ctx, id); err != nil {
			return err
		}

		n, err := s.Repo.CountPaymentLinks(ctx, id)
		if err != nil {
			return err
		}

		if n > 0 {
			return apperr.LinkageBlocked("invoice has %d payment allocations", n)
		}

		return s.Repo.Delete(ctx, id)
	})
}

func (s *Service) AttachWorkOrder(ctx context.Context, id, workOrderID uuid.UUID) (*Invoice, error) {
	return s.mutate(ctx, id, func(ctx context.Context, inv *Invoice) error {
		return s.link(ctx, inv, workOrderID)
	})
}

func (s *Service) DetachWorkOrder(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.mutate(ctx, id, func(_ context.Context, inv *Invoice) error {
		inv.WorkOrderID = nil
		inv.WorkOrderNumber = ""

		return nil
	})
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, inv *Invoice) error) (*Invoice, error) {
	var out *Invoice

	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		inv, err := s.Repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := fn(ctx, inv); err != nil {
			return err
		}

		if err := s.Repo.Update(ctx, inv); err != nil {
			return err
		}

		out = inv

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

type TransitionParams struct {
	To               provision.State `json:"estado_provision"`
	FechaProvision   *time.Time      `json:"fecha_provision"`
	FechaFacturacion *time.Time      `json:"fecha_facturacion"`
}

// Transition moves the invoice's provision state. An OT-linked invoice
// drives its work order, and through it its linked siblings.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, params TransitionParams) (*Invoice, error) {
	return s.mutateAndSync(ctx, id, func(_ context.Context, inv *Invoice) error {
		if err := provision.Check(inv.EstadoProvision, params.To); err != nil {
			return err
		}

		stamp := inv.Stamp().Apply(params.To, params.FechaProvision, s.clock())
		if params.FechaFacturacion != nil {
			stamp.FechaFacturacion = params.FechaFacturacion
		}

		inv.SetStamp(stamp)

		return nil
	})
}

func (s *Service) mutateAndSync(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, inv *Invoice) error) (*Invoice, error) {
	var out *Invoice

	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		inv, err := s.mutate(ctx, id, fn)
		if err != nil {
			return err
		}

		if err := s.Linker.OnInvoiceSaved(ctx, inv.Ref()); err != nil {
			return fmt.Errorf("sync work order: %w", err)
		}

		out = inv

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

type CreditNoteParams struct {
	Numero         string          `json:"numero" validate:"required,max=60"`
	FechaEmision   time.Time       `json:"fecha_emision" validate:"required"`
	Monto          decimal.Decimal `json:"monto"`
	Motivo         string          `json:"motivo"`
	UploadedFileID *uuid.UUID      `json:"uploaded_file_id"`
}

// ApplyCreditNote records an applied credit note and lowers the invoice's
// applicable amount by it.
func (s *Service) ApplyCreditNote(ctx context.Context, invoiceID uuid.UUID, params CreditNoteParams) (*CreditNote, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	if !params.Monto.IsPositive() {
		return nil, apperr.Validation("monto", "must be greater than 0")
	}

	note := &CreditNote{
		InvoiceID:      invoiceID,
		Numero:         strings.TrimSpace(params.Numero),
		FechaEmision:   params.FechaEmision,
		Monto:          money.Round2(params.Monto),
		Estado:         NotaAplicada,
		Motivo:         params.Motivo,
		UploadedFileID: params.UploadedFileID,
	}

	_, err := s.mutate(ctx, invoiceID, func(ctx context.Context, inv *Invoice) error {
		if note.Monto.GreaterThan(inv.MontoAplicable) {
			return apperr.Validation("monto", "exceeds the applicable amount "+money.Format(inv.MontoAplicable))
		}

		if err := s.Repo.CreateCreditNote(ctx, note); err != nil {
			return err
		}

		return s.rederive(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

// AnnulCreditNote voids an applied credit note, restoring the amount it took
// off the invoice.
func (s *Service) AnnulCreditNote(ctx context.Context, noteID uuid.UUID) (*CreditNote, error) {
	var out *CreditNote

	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		note, err := s.Repo.GetCreditNote(ctx, noteID)
		if err != nil {
			return err
		}

		_, err = s.mutate(ctx, note.InvoiceID, func(ctx context.Context, inv *Invoice) error {
			if note.Estado == NotaAnulada {
				return apperr.New(apperr.ErrStateTransition, "credit note %s is already annulled", note.Numero)
			}

			note.Estado = NotaAnulada
			if err := s.Repo.UpdateCreditNote(ctx, note); err != nil {
				return err
			}

			return s.rederive(ctx, inv)
		})

		out = note

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Service) ListCreditNotes(ctx context.Context, invoiceID uuid.UUID) ([]*CreditNote, error) {
	return s.Repo.ListCreditNotes(ctx, invoiceID)
}

type DisputeParams struct {
	Motivo       string          `json:"motivo" validate:"max=500"`
	MontoDisputa decimal.Decimal `json:"monto_disputa"`
}

// OpenDispute registers a disagreement and marks the invoice disputada.
func (s *Service) OpenDispute(ctx context.Context, invoiceID uuid.UUID, params DisputeParams) (*Dispute, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	if params.MontoDisputa.IsNegative() {
		return nil, apperr.Validation("monto_disputa", "must be greater than or equal to 0")
	}

	d := &Dispute{
		InvoiceID:       invoiceID,
		Motivo:          strings.TrimSpace(params.Motivo),
		MontoDisputa:    money.Round2(params.MontoDisputa),
		Estado:          DisputaAbierta,
		Resultado:       ResultadoPendiente,
		MontoRecuperado: decimal.Zero,
	}

	_, err := s.mutateAndSync(ctx, invoiceID, func(ctx context.Context, inv *Invoice) error {
		if d.MontoDisputa.GreaterThan(inv.Monto) {
			return apperr.Validation("monto_disputa", "exceeds the invoice amount "+money.Format(inv.Monto))
		}

		existing, err := s.Repo.ListDisputes(ctx, invoiceID)
		if err != nil {
			return err
		}

		for _, e := range existing {
			if e.Estado == DisputaAbierta || e.Estado == DisputaRevision {
				return apperr.Validation("invoice_id", "invoice already has an open dispute")
			}
		}

		if err := s.Repo.CreateDispute(ctx, d); err != nil {
			return err
		}

		s.moveTo(inv, provision.StateDisputada)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

// moveTo changes the invoice's provision state when the state machine
// allows it and leaves it alone otherwise.
func (s *Service) moveTo(inv *Invoice, to provision.State) {
	if inv.EstadoProvision == to || !provision.CanTransition(inv.EstadoProvision, to) {
		return
	}

	inv.SetStamp(inv.Stamp().Apply(to, nil, s.clock()))
}

// ReviewDispute puts an open dispute under review.
func (s *Service) ReviewDispute(ctx context.Context, disputeID uuid.UUID) (*Dispute, error) {
	return s.disputeStep(ctx, disputeID, func(_ context.Context, d *Dispute, inv *Invoice) error {
		if d.Estado != DisputaAbierta {
			return apperr.New(apperr.ErrStateTransition, "cannot review a dispute in state %s", d.Estado)
		}

		d.Estado = DisputaRevision
		s.moveTo(inv, provision.StateRevision)

		return nil
	})
}

type ResolveParams struct {
	Resultado       Resultado       `json:"resultado" validate:"required"`
	MontoRecuperado decimal.Decimal `json:"monto_recuperado"`
}

// ResolveDispute records the outcome, re-derives the applicable amount and
// moves the invoice to the provision state the outcome implies.
func (s *Service) ResolveDispute(ctx context.Context, disputeID uuid.UUID, params ResolveParams) (*Dispute, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	if !params.Resultado.Valid() {
		return nil, apperr.Validation("resultado", "must be one of aprobada_total aprobada_parcial rechazada anulada")
	}

	return s.disputeStep(ctx, disputeID, func(_ context.Context, d *Dispute, inv *Invoice) error {
		if d.Estado != DisputaAbierta && d.Estado != DisputaRevision {
			return apperr.New(apperr.ErrStateTransition, "cannot resolve a dispute in state %s", d.Estado)
		}

		recovered := money.Round2(params.MontoRecuperado)
		if params.Resultado == ResultadoAprobadaParcial &&
			(!recovered.IsPositive() || recovered.GreaterThan(d.MontoDisputa)) {
			return apperr.Validation("monto_recuperado", "must be greater than 0 and at most "+money.Format(d.MontoDisputa))
		}

		if params.Resultado != ResultadoAprobadaParcial {
			recovered = decimal.Zero
		}

		now := s.clock().UTC()
		d.Estado = DisputaResuelta
		d.Resultado = params.Resultado
		d.MontoRecuperado = recovered
		d.ResolvedAt = &now

		s.moveTo(inv, ProvisionStateForDispute(d, inv.Monto))

		return nil
	})
}

// CloseDispute archives a resolved dispute.
func (s *Service) CloseDispute(ctx context.Context, disputeID uuid.UUID) (*Dispute, error) {
	return s.disputeStep(ctx, disputeID, func(_ context.Context, d *Dispute, _ *Invoice) error {
		if d.Estado != DisputaResuelta {
			return apperr.New(apperr.ErrStateTransition, "cannot close a dispute in state %s", d.Estado)
		}

		d.Estado = DisputaCerrada

		return nil
	})
}

// disputeStep runs fn against a dispute and its locked invoice, saves the
// dispute, re-derives the invoice amounts and syncs the work order.
func (s *Service) disputeStep(ctx context.Context, disputeID uuid.UUID, fn func(ctx context.Context, d *Dispute, inv *Invoice) error) (*Dispute, error) {
	var out *Dispute

	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		d, err := s.Repo.GetDispute(ctx, disputeID)
		if err != nil {
			return err
		}

		_, err = s.mutateAndSync(ctx, d.InvoiceID, func(ctx context.Context, inv *Invoice) error {
			if err := fn(ctx, d, inv); err != nil {
				return err
			}

			if err := s.Repo.UpdateDispute(ctx, d); err != nil {
				return err
			}

			return s.rederive(ctx, inv)
		})

		out = d

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Service) ListDisputes(ctx context.Context, invoiceID uuid.UUID) ([]*Dispute, error) {
	return s.Repo.ListDisputes(ctx, invoiceID)
}

type FromFileParams struct {
	UploadedFileID uuid.UUID
	Source         Source
	AutoParse      bool
}

type FromFileResult struct {
	Invoice          *Invoice               `json:"invoice"`
	Provider         *pattern.ProviderScore `json:"provider,omitempty"`
	Extracted        []string               `json:"extracted"`
	MatchedWorkOrder bool                   `json:"matched_work_order"`
}

// analysis is what a file yields before anything is written.
type analysis struct {
	fields   map[string]string
	provider *pattern.ProviderScore
}

// CreateFromFile drafts an invoice for an uploaded file. Parsing problems
// never prevent the draft from being created.
func (s *Service) CreateFromFile(ctx context.Context, params FromFileParams) (*FromFileResult, error) {
	exists, err := s.Repo.ExistsForFile(ctx, params.UploadedFileID)
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, apperr.New(apperr.ErrDuplicateFile, "file %s already has an invoice", params.UploadedFileID)
	}

	if params.Source == "" {
		params.Source = SourceUpload
	}

	inv := &Invoice{
		UploadedFileID:  &params.UploadedFileID,
		Source:          params.Source,
		Moneda:          defaultCurrency,
		EstadoProvision: provision.StatePendiente,
		TipoPago:        TipoContado,
	}

	var a analysis
	if params.AutoParse {
		a = s.analyze(ctx, params.UploadedFileID, nil)
	}

	res := &FromFileResult{Invoice: inv, Provider: a.provider}

	err = s.Tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := s.Repo.ExistsForFile(ctx, params.UploadedFileID)
		if err != nil {
			return err
		}

		if exists {
			return apperr.New(apperr.ErrDuplicateFile, "file %s already has an invoice", params.UploadedFileID)
		}

		res.Extracted, res.MatchedWorkOrder, err = s.applyAnalysis(ctx, inv, a)
		if err != nil {
			return err
		}

		rederive(inv, nil, nil)
		inv.AlertaVencimiento = DueAlert(inv.TipoPago, inv.FechaVencimiento, s.clock(), s.opts.DueWindowDays)

		return s.Repo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Reparse runs extraction again over an invoice's file, filling only the
// fields that are still empty.
func (s *Service) Reparse(ctx context.Context, id uuid.UUID) (*FromFileResult, error) {
	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.UploadedFileID == nil {
		return nil, apperr.Validation("uploaded_file_id", "invoice has no file to parse")
	}

	a := s.analyze(ctx, *current.UploadedFileID, current.ProviderID)
	res := &FromFileResult{Provider: a.provider}

	res.Invoice, err = s.mutateAndSync(ctx, id, func(ctx context.Context, inv *Invoice) error {
		var err error

		res.Extracted, res.MatchedWorkOrder, err = s.applyAnalysis(ctx, inv, a)
		if err != nil {
			return err
		}

		if slices.Contains(res.Extracted, FieldMonto) {
			if err := s.rederive(ctx, inv); err != nil {
				return err
			}
		}

		inv.AlertaVencimiento = DueAlert(inv.TipoPago, inv.FechaVencimiento, s.clock(), s.opts.DueWindowDays)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// analyze extracts text from a file and runs the pattern catalog over it.
// Failures are logged and yield an empty analysis.
func (s *Service) analyze(ctx context.Context, fileID uuid.UUID, providerID *uuid.UUID) analysis {
	var a analysis

	file, data, err := s.Files.ReadAll(ctx, fileID)
	if err != nil {
		s.Logger.Warn("failed to read invoice file", "file_id", fileID, "error", err)
		return a
	}

	text := textextract.Extract(data, file.Mime, file.Filename)
	if text.Failed() {
		s.Logger.Warn("no text extracted from invoice file",
			"file_id", fileID, "kind", text.Kind, "detail", text.Detail)

		return a
	}

	if providerID == nil {
		scores, err := s.Patterns.IdentifyProvider(ctx, text.Text)
		if err != nil {
			s.Logger.Warn("failed to identify provider", "file_id", fileID, "error", err)
		} else if len(scores) > 0 && scores[0].Hits > 0 && scores[0].Confidence >= s.opts.ProviderConfidence {
			a.provider = &scores[0]
			providerID = &scores[0].ProviderID
		}
	}

	ext, err := s.Patterns.ApplyForProvider(ctx, text.Text, providerID)
	if err != nil {
		s.Logger.Warn("failed to apply patterns", "file_id", fileID, "error", err)
	}

	a.fields = ext.Fields

	return a
}

func (s *Service) applyAnalysis(ctx context.Context, inv *Invoice, a analysis) ([]string, bool, error) {
	var written []string

	if a.provider != nil && inv.ProviderID == nil && !inv.userSet(FieldProvider) {
		inv.ProviderID = &a.provider.ProviderID
		written = append(written, FieldProvider)
	}

	written = append(written, fill(inv, a.fields)...)

	if inv.WorkOrderID != nil {
		return written, false, nil
	}

	matched, err := s.autoMatch(ctx, inv)
	if err != nil {
		return written, false, err
	}

	return written, matched, nil
}

// autoMatch links the invoice to the single work order found by the first
// reference that yields any match. An ambiguous reference links nothing.
func (s *Service) autoMatch(ctx context.Context, inv *Invoice) (bool, error) {
	for _, k := range matchKeys(inv) {
		if k.value == "" {
			continue
		}

		found, err := s.WorkOrders.FindBy(ctx, k.key, k.value)
		if err != nil {
			return false, fmt.Errorf("matching work order by %s: %w", k.key, err)
		}

		switch len(found) {
		case 0:
			continue
		case 1:
			inv.WorkOrderID = &found[0].ID
			inv.WorkOrderNumber = found[0].Number

			return true, s.inherit(ctx, inv)
		default:
			s.Logger.Info("ambiguous work order match",
				"key", k.key, "value", k.value, "candidates", len(found))

			return false, nil
		}
	}

	return false, nil
}

// LockForPayment locks invoices for allocation, in id order.
func (s *Service) LockForPayment(ctx context.Context, ids []uuid.UUID) ([]*Invoice, error) {
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })

	return s.Repo.LockMany(ctx, slices.Compact(sorted))
}

// RecomputePaid sets monto_pagado to the sum of the invoice's payment links
// and re-derives estado_pago. It must run inside the caller's transaction.
func (s *Service) RecomputePaid(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.mutate(ctx, id, func(ctx context.Context, inv *Invoice) error {
		paid, err := s.Repo.SumPaymentLinks(ctx, id)
		if err != nil {
			return err
		}

		if paid.GreaterThan(inv.MontoAplicable) {
			return apperr.LinkageBlocked("allocations %s exceed the applicable amount %s of invoice %s",
				money.Format(paid), money.Format(inv.MontoAplicable), inv.Numero)
		}

		inv.MontoPagado = paid
		inv.EstadoPago = PaymentStateFor(inv.MontoAplicable, paid)

		return nil
	})
}

type DueReport struct {
	Checked int `json:"checked"`
	Flagged int `json:"flagged"`
	Cleared int `json:"cleared"`
	Overdue int `json:"overdue"`
}

// RefreshDueAlerts recomputes alerta_vencimiento for every candidate and
// logs overdue credit invoices that still owe money.
func (s *Service) RefreshDueAlerts(ctx context.Context) (DueReport, error) {
	var report DueReport

	invoices, err := s.Repo.ListDueCandidates(ctx)
	if err != nil {
		return report, fmt.Errorf("listing due candidates: %w", err)
	}

	today := s.clock()

	for _, inv := range invoices {
		report.Checked++

		want := DueAlert(inv.TipoPago, inv.FechaVencimiento, today, s.opts.DueWindowDays)
		if want != inv.AlertaVencimiento {
			if err := s.Repo.SetDueAlert(ctx, inv.ID, want); err != nil {
				return report, err
			}

			if want {
				report.Flagged++
			} else {
				report.Cleared++
			}
		}

		if inv.Overdue(today) {
			report.Overdue++
			s.Logger.Warn("invoice overdue",
				"invoice_id", inv.ID, "numero", inv.Numero,
				"fecha_vencimiento", inv.FechaVencimiento.Format(time.DateOnly),
				"pendiente", money.Format(inv.Pendiente()))
		}
	}

	return report, nil
}

// IsDuplicateFile reports whether err means the file already has an invoice.
func IsDuplicateFile(err error) bool {
	return errors.Is(err, apperr.ErrDuplicateFile)
}
