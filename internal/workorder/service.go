package workorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=workorder
type Repository interface {
	Create(ctx context.Context, wo *WorkOrder) error
	Get(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	GetByNumbers(ctx context.Context, numbers []string) (map[string]*WorkOrder, error)
	Update(ctx context.Context, wo *WorkOrder) error
	List(ctx context.Context, filter ListFilter) ([]*WorkOrder, error)
	FindBy(ctx context.Context, key MatchKey, value string) ([]*WorkOrder, error)
	CountLiveInvoices(ctx context.Context, id uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Syncer propagates a work order's provision stamp to its linked invoices.
type Syncer interface {
	OnWorkOrderSaved(ctx context.Context, workOrderID uuid.UUID, stamp provision.Stamp) (int, error)
}

// Clients maps a client alias to the alias that absorbed it through merges.
type Clients interface {
	Canonical(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	repo    Repository
	tx      TxRunner
	sync    Syncer
	clients Clients
	clock   func() time.Time
}

func NewService(repo Repository, tx TxRunner, sync Syncer, clients Clients) *Service {
	return &Service{repo: repo, tx: tx, sync: sync, clients: clients, clock: time.Now}
}

// canonicalClient replaces a merged alias with the one that absorbed it.
func (s *Service) canonicalClient(ctx context.Context, id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}

	canonical, err := s.clients.Canonical(ctx, *id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("client_id", "unknown client")
		}

		return nil, fmt.Errorf("resolving client: %w", err)
	}

	return &canonical, nil
}

type ListFilter struct {
	Search          string
	ClientID        *uuid.UUID
	EstadoProvision *provision.State
	Limit           int
	Offset          int
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WorkOrder, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*WorkOrder, error) {
	number = NormalizeNumber(number)

	found, err := s.repo.GetByNumbers(ctx, []string{number})
	if err != nil {
		return nil, err
	}

	wo, ok := found[number]
	if !ok {
		return nil, apperr.NotFound("work order")
	}

	return wo, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*WorkOrder, error) {
	return s.repo.List(ctx, filter)
}

// FindBy returns every live work order matching value on key.
func (s *Service) FindBy(ctx context.Context, key MatchKey, value string) ([]*WorkOrder, error) {
	if value == "" {
		return nil, nil
	}

	switch key {
	case MatchNumber:
		value = NormalizeNumber(value)
	case MatchContainer:
		containers := ExtractContainers(value)
		if len(containers) == 0 {
			return nil, nil
		}

		value = containers[0]
	default:
		value = NormalizeRef(value)
	}

	return s.repo.FindBy(ctx, key, value)
}

type CreateParams struct {
	Number        string
	ClientID      *uuid.UUID
	ProviderID    *uuid.UUID
	TipoOperacion TipoOperacion
	MasterBL      string
	HouseBLs      []string
	Containers    string
	ETD           *time.Time
	ETA           *time.Time
}

// Create registers a work order by hand; every field is stamped manual.
func (s *Service) Create(ctx context.Context, params CreateParams) (*WorkOrder, error) {
	number := NormalizeNumber(params.Number)

	var fields apperr.Fields
	if _, err := ParseNumber(number); err != nil {
		fields.Add("number", "must look like YYOTNNN")
	}

	if params.TipoOperacion == "" {
		params.TipoOperacion = TipoImport
	}

	if !params.TipoOperacion.Valid() {
		fields.Add("tipo_operacion", "must be import or export")
	}

	if err := fields.Err(); err != nil {
		return nil, err
	}

	clientID, err := s.canonicalClient(ctx, params.ClientID)
	if err != nil {
		return nil, err
	}

	wo := &WorkOrder{
		Number:          number,
		ClientID:        clientID,
		ProviderID:      params.ProviderID,
		TipoOperacion:   params.TipoOperacion,
		MasterBL:        NormalizeRef(params.MasterBL),
		HouseBLs:        normalizeRefs(params.HouseBLs),
		Containers:      ExtractContainers(params.Containers),
		ETD:             params.ETD,
		ETA:             params.ETA,
		Estado:          "abierta",
		EstadoProvision: provision.StatePendiente,
		Sources:         Sources{},
	}

	for _, f := range TrackedFields {
		if f != FieldProvision {
			wo.SetSource(f, SourceManual)
		}
	}

	if err := s.repo.Create(ctx, wo); err != nil {
		return nil, err
	}

	return wo, nil
}

type UpdateParams struct {
	ClientID      *uuid.UUID
	ProviderID    *uuid.UUID
	TipoOperacion *TipoOperacion
	MasterBL      *string
	HouseBLs      *[]string
	Containers    *string
	ETD           *time.Time
	ETA           *time.Time
	Estado        *string
}

// Update applies a manual edit. Every touched field is stamped manual so
// later spreadsheet imports cannot silently overwrite it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*WorkOrder, error) {
	var out *WorkOrder

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		wo, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if params.TipoOperacion != nil && !params.TipoOperacion.Valid() {
			return apperr.Validation("tipo_operacion", "must be import or export")
		}

		set := func(f Field, apply func()) {
			apply()
			wo.SetSource(f, SourceManual)
		}

		if params.ClientID != nil {
			clientID, err := s.canonicalClient(ctx, params.ClientID)
			if err != nil {
				return err
			}

			set(FieldCliente, func() { wo.ClientID = clientID })
		}

		if params.ProviderID != nil {
			set(FieldProveedor, func() { wo.ProviderID = params.ProviderID })
		}

		if params.TipoOperacion != nil {
			set(FieldTipoOperacion, func() { wo.TipoOperacion = *params.TipoOperacion })
		}

		if params.MasterBL != nil {
			set(FieldMasterBL, func() { wo.MasterBL = NormalizeRef(*params.MasterBL) })
		}

		if params.HouseBLs != nil {
			set(FieldHouseBLs, func() { wo.HouseBLs = normalizeRefs(*params.HouseBLs) })
		}

		if params.Containers != nil {
			set(FieldContainers, func() { wo.Containers = ExtractContainers(*params.Containers) })
		}

		if params.ETD != nil {
			set(FieldETD, func() { wo.ETD = params.ETD })
		}

		if params.ETA != nil {
			set(FieldETA, func() { wo.ETA = params.ETA })
		}

		if params.Estado != nil {
			wo.Estado = *params.Estado
		}

		if err := s.repo.Update(ctx, wo); err != nil {
			return err
		}

		out = wo

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ErrProvisionLocked is returned when a snapshot write is refused by the lock.
var ErrProvisionLocked = apperr.New(apperr.ErrValidation, "provision snapshot is locked")

type ProvisionParams struct {
	Items  []ProvisionItem
	Total  *decimal.Decimal
	Source FieldSource
	// Unlock lifts an existing lock before writing.
	Unlock bool
	Lock   bool
}

// SetProvision writes the expected cost snapshot. A locked snapshot refuses
// writes from a source that does not outrank the one that locked it.
func (s *Service) SetProvision(ctx context.Context, id uuid.UUID, params ProvisionParams) (*WorkOrder, error) {
	if params.Source == "" {
		params.Source = SourceManual
	}

	var out *WorkOrder

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		wo, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		next, err := ApplyProvision(wo.Provision, params)
		if err != nil {
			return err
		}

		wo.Provision = next
		wo.SetSource(FieldProvision, params.Source)

		if err := s.repo.Update(ctx, wo); err != nil {
			return err
		}

		out = wo

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ApplyProvision computes the snapshot that results from params, enforcing
// the lock.
func ApplyProvision(current *ProvisionSnapshot, params ProvisionParams) (*ProvisionSnapshot, error) {
	if current != nil && current.Locked && !params.Unlock &&
		params.Source.Rank() <= current.Source.Rank() {
		return nil, ErrProvisionLocked
	}

	total := decimal.Zero
	for _, it := range params.Items {
		total = total.Add(it.Amount)
	}

	if params.Total != nil {
		total = *params.Total
	}

	if total.IsNegative() {
		return nil, apperr.Validation("total", "must not be negative")
	}

	return &ProvisionSnapshot{
		Total:  total.Round(2),
		Items:  params.Items,
		Source: params.Source,
		Locked: params.Lock,
	}, nil
}

type TransitionParams struct {
	To               provision.State
	FechaProvision   *time.Time
	FechaFacturacion *time.Time
}

// Transition moves the work order's provision state and mirrors it into
// every OT-linked invoice in the same transaction.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, params TransitionParams) (*WorkOrder, error) {
	var out *WorkOrder

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		wo, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := provision.Check(wo.EstadoProvision, params.To); err != nil {
			return err
		}

		stamp := wo.Stamp().Apply(params.To, params.FechaProvision, s.clock())
		if params.FechaFacturacion != nil {
			stamp.FechaFacturacion = params.FechaFacturacion
		}

		wo.SetStamp(stamp)

		if err := s.repo.Update(ctx, wo); err != nil {
			return err
		}

		if _, err := s.sync.OnWorkOrderSaved(ctx, wo.ID, stamp); err != nil {
			return fmt.Errorf("sync linked invoices: %w", err)
		}

		out = wo

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Delete soft-deletes a work order that has no live invoices.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := s.repo.CountLiveInvoices(ctx, id)
		if err != nil {
			return err
		}

		if n > 0 {
			return apperr.Validation("id", fmt.Sprintf("work order has %d invoices attached", n))
		}

		return s.repo.Delete(ctx, id)
	})
}

func normalizeRefs(refs []string) []string {
	var out []string

	seen := map[string]bool{}

	for _, r := range refs {
		n := NormalizeRef(r)
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	return out
}
