package invoice

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

// Source records how an invoice entered the system.
type Source string

const (
	SourceManual Source = "manual"
	SourceUpload Source = "upload"
	SourceEmail  Source = "email"
)

type EstadoPago string

const (
	PagoPendiente EstadoPago = "pendiente"
	PagoParcial   EstadoPago = "pagado_parcial"
	PagoTotal     EstadoPago = "pagado_total"
)

type TipoPago string

const (
	TipoContado TipoPago = "contado"
	TipoCredito TipoPago = "credito"
)

func (t TipoPago) Valid() bool {
	return t == TipoContado || t == TipoCredito
}

// Fields a user can set and that extraction must then leave alone.
const (
	FieldNumero           = "numero"
	FieldProvider         = "provider_id"
	FieldFechaEmision     = "fecha_emision"
	FieldFechaVencimiento = "fecha_vencimiento"
	FieldMonto            = "monto"
	FieldMoneda           = "moneda"
	FieldOT               = "ot_extraido"
	FieldMBL              = "mbl"
	FieldHBL              = "hbl"
	FieldContenedor       = "contenedor"
)

// Invoice is a supplier cost invoice.
type Invoice struct {
	ID                uuid.UUID       `json:"id"`
	Numero            string          `json:"numero"`
	ProviderID        *uuid.UUID      `json:"provider_id,omitempty"`
	ProviderName      string          `json:"provider_name,omitempty"`
	WorkOrderID       *uuid.UUID      `json:"work_order_id,omitempty"`
	WorkOrderNumber   string          `json:"work_order_number,omitempty"`
	CostTypeID        *uuid.UUID      `json:"cost_type_id,omitempty"`
	CostTypeCode      string          `json:"cost_type_code,omitempty"`
	CostTypeLinked    bool            `json:"-"`
	UploadedFileID    *uuid.UUID      `json:"uploaded_file_id,omitempty"`
	Source            Source          `json:"source"`
	FechaEmision      *time.Time      `json:"fecha_emision,omitempty"`
	FechaVencimiento  *time.Time      `json:"fecha_vencimiento,omitempty"`
	FechaProvision    *time.Time      `json:"fecha_provision,omitempty"`
	FechaFacturacion  *time.Time      `json:"fecha_facturacion,omitempty"`
	Moneda            string          `json:"moneda"`
	Monto             decimal.Decimal `json:"monto"`
	MontoAplicable    decimal.Decimal `json:"monto_aplicable"`
	MontoPagado       decimal.Decimal `json:"monto_pagado"`
	EstadoProvision   provision.State `json:"estado_provision"`
	EstadoPago        EstadoPago      `json:"estado_pago"`
	TipoPago          TipoPago        `json:"tipo_pago"`
	AlertaVencimiento bool            `json:"alerta_vencimiento"`
	OTExtraido        string          `json:"ot_extraido"`
	MBL               string          `json:"mbl"`
	HBL               string          `json:"hbl"`
	Contenedor        string          `json:"contenedor"`
	Notas             string          `json:"notas"`
	// UserFields lists the fields a user wrote by hand.
	UserFields []string  `json:"user_fields"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Pendiente is the amount still owed.
func (i *Invoice) Pendiente() decimal.Decimal {
	return i.MontoAplicable.Sub(i.MontoPagado)
}

// Linked reports whether the invoice mirrors its work order's provision.
func (i *Invoice) Linked() bool {
	return i.CostTypeID != nil && provision.IsLinked(i.CostTypeLinked, i.CostTypeCode)
}

func (i *Invoice) Stamp() provision.Stamp {
	return provision.Stamp{
		State:            i.EstadoProvision,
		FechaProvision:   i.FechaProvision,
		FechaFacturacion: i.FechaFacturacion,
	}
}

func (i *Invoice) SetStamp(s provision.Stamp) {
	i.EstadoProvision = s.State
	i.FechaProvision = s.FechaProvision
	i.FechaFacturacion = s.FechaFacturacion
}

func (i *Invoice) Ref() provision.InvoiceRef {
	return provision.InvoiceRef{ID: i.ID, WorkOrderID: i.WorkOrderID, Linked: i.Linked(), Stamp: i.Stamp()}
}

func (i *Invoice) userSet(field string) bool {
	return slices.Contains(i.UserFields, field)
}

func (i *Invoice) markUser(field string) {
	if !i.userSet(field) {
		i.UserFields = append(i.UserFields, field)
	}
}

type CreditNoteEstado string

const (
	NotaAplicada CreditNoteEstado = "aplicada"
	NotaAnulada  CreditNoteEstado = "anulada"
)

type CreditNote struct {
	ID             uuid.UUID        `json:"id"`
	InvoiceID      uuid.UUID        `json:"invoice_id"`
	Numero         string           `json:"numero"`
	FechaEmision   time.Time        `json:"fecha_emision"`
	Monto          decimal.Decimal  `json:"monto"`
	Estado         CreditNoteEstado `json:"estado"`
	Motivo         string           `json:"motivo"`
	UploadedFileID *uuid.UUID       `json:"uploaded_file_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type DisputeEstado string

const (
	DisputaAbierta  DisputeEstado = "abierta"
	DisputaRevision DisputeEstado = "en_revision"
	DisputaResuelta DisputeEstado = "resuelta"
	DisputaCerrada  DisputeEstado = "cerrada"
)

type Resultado string

const (
	ResultadoPendiente       Resultado = "pendiente"
	ResultadoAprobadaTotal   Resultado = "aprobada_total"
	ResultadoAprobadaParcial Resultado = "aprobada_parcial"
	ResultadoRechazada       Resultado = "rechazada"
	ResultadoAnulada         Resultado = "anulada"
)

func (r Resultado) Valid() bool {
	switch r {
	case ResultadoAprobadaTotal, ResultadoAprobadaParcial, ResultadoRechazada, ResultadoAnulada:
		return true
	}

	return false
}

type Dispute struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	Motivo          string          `json:"motivo"`
	MontoDisputa    decimal.Decimal `json:"monto_disputa"`
	Estado          DisputeEstado   `json:"estado"`
	Resultado       Resultado       `json:"resultado"`
	MontoRecuperado decimal.Decimal `json:"monto_recuperado"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
