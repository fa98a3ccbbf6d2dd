package pattern

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
	"github.com/MrJamesThe3rd/forwarder/internal/pattern"
)

type Patterns interface {
	CreateGroup(ctx context.Context, params pattern.GroupParams) (*pattern.Group, error)
	UpdateGroup(ctx context.Context, id uuid.UUID, params pattern.GroupParams) (*pattern.Group, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*pattern.Group, error)
	ListGroups(ctx context.Context, filter pattern.GroupFilter) ([]*pattern.Group, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	Create(ctx context.Context, params pattern.Params) (*pattern.SaveResult, error)
	Update(ctx context.Context, id uuid.UUID, params pattern.Params) (*pattern.SaveResult, error)
	Get(ctx context.Context, id uuid.UUID) (*pattern.Pattern, error)
	List(ctx context.Context, filter pattern.ListFilter) ([]*pattern.Pattern, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Test(ctx context.Context, id uuid.UUID, cases []pattern.TestCase) (pattern.TestReport, error)

	ApplyForProvider(ctx context.Context, text string, providerID *uuid.UUID) (pattern.Extraction, error)
	IdentifyProvider(ctx context.Context, text string) ([]pattern.ProviderScore, error)
}

type Handler struct {
	svc Patterns
}

func NewHandler(svc Patterns) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/groups", h.listGroups)
	r.Post("/groups", h.createGroup)
	r.Get("/groups/{id}", h.getGroup)
	r.Put("/groups/{id}", h.updateGroup)
	r.Delete("/groups/{id}", h.deleteGroup)

	r.Post("/extract", h.extract)
	r.Post("/identify", h.identify)

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/test", h.test)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	providerID, err := respond.OptionalID(r, "provider_id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	groups, err := h.svc.ListGroups(r.Context(), pattern.GroupFilter{
		ProviderID: providerID,
		Tipo:       pattern.Tipo(r.URL.Query().Get("tipo_patron")),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if groups == nil {
		groups = []*pattern.Group{}
	}

	respond.JSON(w, http.StatusOK, groups)
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var params pattern.GroupParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	g, err := h.svc.CreateGroup(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, g)
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	g, err := h.svc.GetGroup(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, g)
}

func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params pattern.GroupParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	g, err := h.svc.UpdateGroup(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, g)
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.DeleteGroup(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	groupID, err := respond.OptionalID(r, "group_id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	patterns, err := h.svc.List(r.Context(), pattern.ListFilter{
		GroupID:     groupID,
		TargetField: r.URL.Query().Get("target_field"),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if patterns == nil {
		patterns = []*pattern.Pattern{}
	}

	respond.JSON(w, http.StatusOK, patterns)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params pattern.Params
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, res)
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

	var params pattern.Params
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, res)
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

type testRequest struct {
	TestCases []pattern.TestCase `json:"test_cases"`
}

func (h *Handler) test(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req testRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	report, err := h.svc.Test(r.Context(), id, req.TestCases)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, report)
}

type textRequest struct {
	Text       string     `json:"text"`
	ProviderID *uuid.UUID `json:"provider_id"`
}

func decodeText(r *http.Request) (textRequest, error) {
	var req textRequest
	if err := respond.Decode(r, &req); err != nil {
		return req, err
	}

	if strings.TrimSpace(req.Text) == "" {
		return req, apperr.Validation("text", "is required")
	}

	return req, nil
}

type extractResponse struct {
	Fields    map[string]string    `json:"fields"`
	MatchedBy map[string]uuid.UUID `json:"matched_by"`
	Attempts  []pattern.Attempt    `json:"attempts"`
}

// extract runs the catalog over free text, the way an incoming invoice
// file is parsed.
func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	req, err := decodeText(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	ext, err := h.svc.ApplyForProvider(r.Context(), req.Text, req.ProviderID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := extractResponse{Fields: ext.Fields, MatchedBy: ext.MatchedBy, Attempts: ext.Attempts}
	if resp.Fields == nil {
		resp.Fields = map[string]string{}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) identify(w http.ResponseWriter, r *http.Request) {
	req, err := decodeText(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	scores, err := h.svc.IdentifyProvider(r.Context(), req.Text)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if scores == nil {
		scores = []pattern.ProviderScore{}
	}

	respond.JSON(w, http.StatusOK, scores)
}
