package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/client"
	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
)

type Clients interface {
	Lookup(ctx context.Context, name string) (*client.Alias, error)
	Resolve(ctx context.Context, name, country string) (*client.Alias, error)
	Get(ctx context.Context, id uuid.UUID) (*client.Alias, error)
	List(ctx context.Context, filter client.ListFilter) ([]*client.Alias, error)
	Merge(ctx context.Context, srcID, dstID uuid.UUID) (*client.Alias, error)
	Remember(ctx context.Context, name string, aliasID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListMatches(ctx context.Context, status client.MatchStatus) ([]*client.Match, error)
	AcceptMatch(ctx context.Context, matchID, keep uuid.UUID) (*client.Alias, error)
	RejectMatch(ctx context.Context, matchID uuid.UUID, notes string) error
}

type Handler struct {
	svc Clients
}

func NewHandler(svc Clients) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.resolve)
	r.Get("/suggest", h.suggest)
	r.Post("/resolutions", h.remember)

	r.Get("/matches", h.listMatches)
	r.Post("/matches/{id}/accept", h.acceptMatch)
	r.Post("/matches/{id}/reject", h.rejectMatch)

	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/merge", h.merge)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	aliases, err := h.svc.List(r.Context(), client.ListFilter{
		Search:        strings.TrimSpace(r.URL.Query().Get("q")),
		IncludeMerged: r.URL.Query().Get("include_merged") == "true",
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if aliases == nil {
		aliases = []*client.Alias{}
	}

	respond.JSON(w, http.StatusOK, aliases)
}

type resolveRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// resolve returns the canonical alias for a name, creating it if needed.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := h.svc.Resolve(r.Context(), req.Name, req.Country)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, a)
}

type suggestResponse struct {
	Name  string        `json:"name"`
	Alias *client.Alias `json:"alias"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		respond.Error(w, r, apperr.Validation("name", "query parameter is required"))
		return
	}

	a, err := h.svc.Lookup(r.Context(), name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{Name: name, Alias: a})
}

type rememberRequest struct {
	Name    string    `json:"name"`
	AliasID uuid.UUID `json:"alias_id"`
}

func (h *Handler) remember(w http.ResponseWriter, r *http.Request) {
	var req rememberRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if strings.TrimSpace(req.Name) == "" || req.AliasID == uuid.Nil {
		respond.Error(w, r, apperr.Validation("name", "name and alias_id are required"))
		return
	}

	if err := h.svc.Remember(r.Context(), req.Name, req.AliasID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, a)
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

type mergeRequest struct {
	Into uuid.UUID `json:"into"`
}

func (h *Handler) merge(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req mergeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := h.svc.Merge(r.Context(), id, req.Into)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, a)
}

func (h *Handler) listMatches(w http.ResponseWriter, r *http.Request) {
	status := client.MatchStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = client.MatchPending
	}

	matches, err := h.svc.ListMatches(r.Context(), status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if matches == nil {
		matches = []*client.Match{}
	}

	respond.JSON(w, http.StatusOK, matches)
}

type acceptRequest struct {
	Keep uuid.UUID `json:"keep"`
}

func (h *Handler) acceptMatch(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req acceptRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := h.svc.AcceptMatch(r.Context(), id, req.Keep)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, a)
}

type rejectRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) rejectMatch(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req rejectRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	if err := h.svc.RejectMatch(r.Context(), id, req.Notes); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
