package payment

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
	"github.com/MrJamesThe3rd/forwarder/internal/payment"
)

type Payments interface {
	Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	List(ctx context.Context, filter payment.ListFilter) ([]*payment.Payment, error)
	ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]payment.Link, error)
	Create(ctx context.Context, params payment.CreateParams) (*payment.Payment, error)
	Update(ctx context.Context, id uuid.UUID, params payment.UpdateParams) (*payment.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachReceipt(ctx context.Context, id uuid.UUID, filename string, r io.Reader) (*payment.Payment, error)
}

type Handler struct {
	svc Payments
}

func NewHandler(svc Payments) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/by-invoice/{invoiceID}", h.forInvoice)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Put("/{id}/receipt", h.receipt)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params payment.CreateParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		filter payment.ListFilter
		fields apperr.Fields
		err    error
	)

	if filter.ProviderID, err = respond.OptionalID(r, "provider_id"); err != nil {
		fields.Add("provider_id", "must be a UUID")
	}

	for _, d := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		s := r.URL.Query().Get(d.name)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			fields.Add(d.name, "must be YYYY-MM-DD")
			continue
		}

		*d.dst = new(t)
	}

	if filter.Limit, filter.Offset, err = respond.Page(r); err != nil {
		fields.Add("limit", "must be a non-negative integer")
	}

	if err := fields.Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	payments, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if payments == nil {
		payments = []*payment.Payment{}
	}

	respond.JSON(w, http.StatusOK, payments)
}

func (h *Handler) forInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "invoiceID")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	links, err := h.svc.ListForInvoice(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if links == nil {
		links = []payment.Link{}
	}

	respond.JSON(w, http.StatusOK, links)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params payment.UpdateParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, p)
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

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.Error(w, r, apperr.Validation("file", "failed to parse form: "+err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperr.Validation("file", "is required"))
		return
	}
	defer file.Close()

	p, err := h.svc.AttachReceipt(r.Context(), id, header.Filename, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, p)
}
