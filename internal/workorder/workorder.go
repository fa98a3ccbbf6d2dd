package workorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

// TipoOperacion is the shipment direction.
type TipoOperacion string

const (
	TipoImport TipoOperacion = "import"
	TipoExport TipoOperacion = "export"
)

func (t TipoOperacion) Valid() bool {
	return t == TipoImport || t == TipoExport
}

// Field names a mutable, provenance-tracked work-order field.
type Field string

const (
	FieldCliente       Field = "cliente"
	FieldProveedor     Field = "proveedor"
	FieldTipoOperacion Field = "tipo_operacion"
	FieldMasterBL      Field = "master_bl"
	FieldHouseBLs      Field = "house_bls"
	FieldContainers    Field = "containers"
	FieldETD           Field = "etd"
	FieldETA           Field = "eta"
	FieldProvision     Field = "provision"
)

// TrackedFields lists every field carrying a source tag, in canonical order.
var TrackedFields = []Field{
	FieldCliente, FieldProveedor, FieldTipoOperacion, FieldMasterBL,
	FieldHouseBLs, FieldContainers, FieldETD, FieldETA, FieldProvision,
}

// Sources maps each tracked field to the origin of its current value.
type Sources map[Field]FieldSource

// WorkOrder (OT) is the shipment of record.
type WorkOrder struct {
	ID               uuid.UUID
	Number           string
	ClientID         *uuid.UUID
	ClientName       string // Loaded via JOIN
	ProviderID       *uuid.UUID
	ProviderName     string // Loaded via JOIN
	TipoOperacion    TipoOperacion
	MasterBL         string
	HouseBLs         []string
	Containers       []string
	ETD              *time.Time
	ETA              *time.Time
	Estado           string
	EstadoProvision  provision.State
	FechaProvision   *time.Time
	FechaFacturacion *time.Time
	Provision        *ProvisionSnapshot
	Sources          Sources
	RowHash          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

func (w *WorkOrder) Stamp() provision.Stamp {
	return provision.Stamp{
		State:            w.EstadoProvision,
		FechaProvision:   w.FechaProvision,
		FechaFacturacion: w.FechaFacturacion,
	}
}

func (w *WorkOrder) SetStamp(s provision.Stamp) {
	w.EstadoProvision = s.State
	w.FechaProvision = s.FechaProvision
	w.FechaFacturacion = s.FechaFacturacion
}

// SourceOf returns the source of f; fields never written have no source.
func (w *WorkOrder) SourceOf(f Field) FieldSource {
	if w.Sources == nil {
		return ""
	}

	return w.Sources[f]
}

func (w *WorkOrder) SetSource(f Field, s FieldSource) {
	if w.Sources == nil {
		w.Sources = Sources{}
	}

	w.Sources[f] = s
}

// ProvisionSnapshot is the expected cost breakdown of a shipment.
type ProvisionSnapshot struct {
	Total  decimal.Decimal `json:"total"`
	Items  []ProvisionItem `json:"items"`
	Source FieldSource     `json:"source"`
	Locked bool            `json:"locked"`
}

type ProvisionItem struct {
	Concept  string          `json:"concept"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

// MatchKey selects the column used to find work orders for an invoice.
type MatchKey string

const (
	MatchNumber    MatchKey = "number"
	MatchMasterBL  MatchKey = "master_bl"
	MatchHouseBL   MatchKey = "house_bl"
	MatchContainer MatchKey = "container"
)
