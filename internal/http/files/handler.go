// Package files serves stored uploads back to the browser.
package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
)

type Uploads interface {
	Get(ctx context.Context, id uuid.UUID) (*upload.File, error)
	Open(ctx context.Context, id uuid.UUID) (*upload.File, io.ReadCloser, error)
	URL(ctx context.Context, id uuid.UUID) (string, error)
}

var _ Uploads = (*upload.Service)(nil)

type Handler struct {
	svc Uploads
}

func NewHandler(svc Uploads) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Get("/{id}/content", h.content)
	r.Get("/{id}/url", h.url)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	f, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, f)
}

func (h *Handler) content(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	f, rc, err := h.svc.Open(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer rc.Close()

	disposition := "inline"
	if _, ok := r.URL.Query()["download"]; ok {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", f.Mime)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": f.Filename}))

	if f.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(f.Size, 10))
	}

	if _, err := io.Copy(w, rc); err != nil {
		slog.ErrorContext(r.Context(), "streaming file", "id", id, "error", fmt.Errorf("copy: %w", err))
	}
}

func (h *Handler) url(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.URL(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if _, ok := r.URL.Query()["redirect"]; ok {
		http.Redirect(w, r, u, http.StatusFound)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"url": u})
}
