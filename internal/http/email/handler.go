package email

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/email"
	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
)

type Mailbox interface {
	GetConfig(ctx context.Context) (*email.Config, error)
	UpdateConfig(ctx context.Context, params email.ConfigParams) (*email.Config, error)
	GetLog(ctx context.Context, id uuid.UUID) (*email.Log, error)
	ListLogs(ctx context.Context, filter email.LogFilter) ([]*email.Log, error)
}

var _ Mailbox = (*email.Service)(nil)

type Handler struct {
	svc Mailbox
}

func NewHandler(svc Mailbox) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/config", h.getConfig)
	r.Put("/config", h.updateConfig)
	r.Get("/logs", h.listLogs)
	r.Get("/logs/{id}", h.getLog)
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.GetConfig(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, cfg)
}

func (h *Handler) updateConfig(w http.ResponseWriter, r *http.Request) {
	var params email.ConfigParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	cfg, err := h.svc.UpdateConfig(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, cfg)
}

func logFilter(r *http.Request) (email.LogFilter, error) {
	var (
		filter email.LogFilter
		fields apperr.Fields
		err    error
	)

	filter.Limit, filter.Offset, err = respond.Page(r)
	if err != nil {
		return filter, err
	}

	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		switch st := email.Status(v); st {
		case email.StatusSuccess, email.StatusPartial, email.StatusFailed, email.StatusSkipped:
			filter.Status = &st
		default:
			fields.Add("status", "must be one of success, partial, failed, skipped")
		}
	}

	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.DateOnly, v)
		if err != nil {
			fields.Add("since", "must be a YYYY-MM-DD date")
		} else {
			filter.Since = &since
		}
	}

	return filter, fields.Err()
}

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	filter, err := logFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	logs, err := h.svc.ListLogs(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if logs == nil {
		logs = []*email.Log{}
	}

	respond.JSON(w, http.StatusOK, logs)
}

func (h *Handler) getLog(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	l, err := h.svc.GetLog(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, l)
}
