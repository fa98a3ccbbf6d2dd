package workorder

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

type WorkOrders interface {
	Get(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error)
	GetByNumber(ctx context.Context, number string) (*workorder.WorkOrder, error)
	List(ctx context.Context, filter workorder.ListFilter) ([]*workorder.WorkOrder, error)
	FindBy(ctx context.Context, key workorder.MatchKey, value string) ([]*workorder.WorkOrder, error)
	Create(ctx context.Context, params workorder.CreateParams) (*workorder.WorkOrder, error)
	Update(ctx context.Context, id uuid.UUID, params workorder.UpdateParams) (*workorder.WorkOrder, error)
	SetProvision(ctx context.Context, id uuid.UUID, params workorder.ProvisionParams) (*workorder.WorkOrder, error)
	Transition(ctx context.Context, id uuid.UUID, params workorder.TransitionParams) (*workorder.WorkOrder, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	svc WorkOrders
}

func NewHandler(svc WorkOrders) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/search", h.search)
	r.Get("/by-number/{number}", h.getByNumber)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Put("/{id}/provision", h.setProvision)
	r.Post("/{id}/transition", h.transition)
}

type createRequest struct {
	Number        string                  `json:"numero_ot"`
	ClientID      *uuid.UUID              `json:"client_id"`
	ProviderID    *uuid.UUID              `json:"provider_id"`
	TipoOperacion workorder.TipoOperacion `json:"tipo_operacion"`
	MasterBL      string                  `json:"master_bl"`
	HouseBLs      []string                `json:"house_bls"`
	Containers    string                  `json:"contenedores"`
	ETD           *time.Time              `json:"etd"`
	ETA           *time.Time              `json:"eta"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	wo, err := h.svc.Create(r.Context(), workorder.CreateParams{
		Number:        req.Number,
		ClientID:      req.ClientID,
		ProviderID:    req.ProviderID,
		TipoOperacion: req.TipoOperacion,
		MasterBL:      req.MasterBL,
		HouseBLs:      req.HouseBLs,
		Containers:    req.Containers,
		ETD:           req.ETD,
		ETA:           req.ETA,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(wo))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := workorder.ListFilter{Search: strings.TrimSpace(r.URL.Query().Get("q"))}

	var (
		fields apperr.Fields
		err    error
	)

	if filter.ClientID, err = respond.OptionalID(r, "client_id"); err != nil {
		fields.Add("client_id", "must be a UUID")
	}

	if s := r.URL.Query().Get("estado_provision"); s != "" {
		filter.EstadoProvision = new(provision.State(s))
	}

	if filter.Limit, filter.Offset, err = respond.Page(r); err != nil {
		fields.Add("limit", "must be a non-negative integer")
	}

	if err := fields.Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	wos, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(wos))
}

// search finds work orders by one reference: number, MBL, HBL or container.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	key := workorder.MatchKey(r.URL.Query().Get("by"))
	switch key {
	case workorder.MatchNumber, workorder.MatchMasterBL, workorder.MatchHouseBL, workorder.MatchContainer:
	default:
		respond.Error(w, r, apperr.Validation("by", "must be number, master_bl, house_bl or container"))
		return
	}

	wos, err := h.svc.FindBy(r.Context(), key, r.URL.Query().Get("value"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(wos))
}

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	wo, err := h.svc.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(wo))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	wo, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(wo))
}

type updateRequest struct {
	ClientID      *uuid.UUID               `json:"client_id"`
	ProviderID    *uuid.UUID               `json:"provider_id"`
	TipoOperacion *workorder.TipoOperacion `json:"tipo_operacion"`
	MasterBL      *string                  `json:"master_bl"`
	HouseBLs      *[]string                `json:"house_bls"`
	Containers    *string                  `json:"contenedores"`
	ETD           *time.Time               `json:"etd"`
	ETA           *time.Time               `json:"eta"`
	Estado        *string                  `json:"estado"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	wo, err := h.svc.Update(r.Context(), id, workorder.UpdateParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(wo))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type provisionRequest struct {
	Items  []workorder.ProvisionItem `json:"items"`
	Total  *decimal.Decimal          `json:"total"`
	Unlock bool                      `json:"unlock"`
	Lock   bool                      `json:"lock"`
}

func (h *Handler) setProvision(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req provisionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	wo, err := h.svc.SetProvision(r.Context(), id, workorder.ProvisionParams{
		Items:  req.Items,
		Total:  req.Total,
		Source: workorder.SourceManual,
		Unlock: req.Unlock,
		Lock:   req.Lock,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(wo))
}

type transitionRequest struct {
	To               provision.State `json:"estado_provision"`
	FechaProvision   *time.Time      `json:"fecha_provision"`
	FechaFacturacion *time.Time      `json:"fecha_facturacion"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req transitionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	wo, err := h.svc.Transition(r.Context(), id, workorder.TransitionParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(wo))
}
