package workorder

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

type workOrderResponse struct {
	ID               uuid.UUID                    `json:"id"`
	Number           string                       `json:"numero_ot"`
	ClientID         *uuid.UUID                   `json:"client_id,omitempty"`
	ClientName       string                       `json:"cliente,omitempty"`
	ProviderID       *uuid.UUID                   `json:"provider_id,omitempty"`
	ProviderName     string                       `json:"proveedor,omitempty"`
	TipoOperacion    workorder.TipoOperacion      `json:"tipo_operacion"`
	MasterBL         string                       `json:"master_bl"`
	HouseBLs         []string                     `json:"house_bls"`
	Containers       []string                     `json:"contenedores"`
	ETD              *time.Time                   `json:"etd,omitempty"`
	ETA              *time.Time                   `json:"eta,omitempty"`
	Estado           string                       `json:"estado"`
	EstadoProvision  provision.State              `json:"estado_provision"`
	FechaProvision   *time.Time                   `json:"fecha_provision,omitempty"`
	FechaFacturacion *time.Time                   `json:"fecha_facturacion,omitempty"`
	Provision        *workorder.ProvisionSnapshot `json:"provision,omitempty"`
	Sources          workorder.Sources            `json:"sources"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

func toResponse(wo *workorder.WorkOrder) workOrderResponse {
	resp := workOrderResponse{
		ID:               wo.ID,
		Number:           wo.Number,
		ClientID:         wo.ClientID,
		ClientName:       wo.ClientName,
		ProviderID:       wo.ProviderID,
		ProviderName:     wo.ProviderName,
		TipoOperacion:    wo.TipoOperacion,
		MasterBL:         wo.MasterBL,
		HouseBLs:         wo.HouseBLs,
		Containers:       wo.Containers,
		ETD:              wo.ETD,
		ETA:              wo.ETA,
		Estado:           wo.Estado,
		EstadoProvision:  wo.EstadoProvision,
		FechaProvision:   wo.FechaProvision,
		FechaFacturacion: wo.FechaFacturacion,
		Provision:        wo.Provision,
		Sources:          wo.Sources,
		CreatedAt:        wo.CreatedAt,
		UpdatedAt:        wo.UpdatedAt,
	}

	if resp.HouseBLs == nil {
		resp.HouseBLs = []string{}
	}

	if resp.Containers == nil {
		resp.Containers = []string{}
	}

	if resp.Sources == nil {
		resp.Sources = workorder.Sources{}
	}

	return resp
}

func toResponseList(wos []*workorder.WorkOrder) []workOrderResponse {
	resp := make([]workOrderResponse, len(wos))
	for i, wo := range wos {
		resp[i] = toResponse(wo)
	}

	return resp
}
