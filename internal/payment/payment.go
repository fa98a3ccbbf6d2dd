// Package payment records outgoing supplier payments and their allocation
// across provisioned invoices.
package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/money"
)

// Payment is one outgoing bank transfer to a provider.
type Payment struct {
	ID           uuid.UUID       `json:"id"`
	ProviderID   uuid.UUID       `json:"provider_id"`
	ProviderName string          `json:"provider_name,omitempty"`
	FechaPago    time.Time       `json:"fecha_pago"`
	MontoTotal   decimal.Decimal `json:"monto_total"`
	Referencia   string          `json:"referencia"`
	Notas        string          `json:"notas"`
	ReceiptPath  string          `json:"receipt_path,omitempty"`
	Links        []Link          `json:"links"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Allocated is the part of the payment spread over invoices.
func (p *Payment) Allocated() decimal.Decimal {
	amounts := make([]decimal.Decimal, len(p.Links))
	for i, l := range p.Links {
		amounts[i] = l.Monto
	}

	return money.Sum(amounts...)
}

// Link allocates part of a payment to one invoice.
type Link struct {
	ID            uuid.UUID       `json:"id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumero string          `json:"invoice_numero,omitempty"`
	Monto         decimal.Decimal `json:"monto_pagado_factura"`
	CreatedAt     time.Time       `json:"created_at"`
}
