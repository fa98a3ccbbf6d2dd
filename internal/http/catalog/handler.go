// Package catalog serves providers, cost categories and cost types.
package catalog

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/costtype"
	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
	"github.com/MrJamesThe3rd/forwarder/internal/provider"
)

type Providers interface {
	Create(ctx context.Context, params provider.Params) (*provider.Provider, error)
	Get(ctx context.Context, id uuid.UUID) (*provider.Provider, error)
	List(ctx context.Context, filter provider.ListFilter) ([]*provider.Provider, error)
	Update(ctx context.Context, id uuid.UUID, params provider.Params) (*provider.Provider, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CostTypes interface {
	CreateCategory(ctx context.Context, params costtype.CategoryParams) (*costtype.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, params costtype.CategoryParams) (*costtype.Category, error)
	ListCategories(ctx context.Context) ([]*costtype.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	Create(ctx context.Context, params costtype.Params) (*costtype.CostType, error)
	Update(ctx context.Context, id uuid.UUID, params costtype.Params) (*costtype.CostType, error)
	Get(ctx context.Context, id uuid.UUID) (*costtype.CostType, error)
	List(ctx context.Context) ([]*costtype.CostType, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	providers Providers
	costTypes CostTypes
}

func NewHandler(providers Providers, costTypes CostTypes) *Handler {
	return &Handler{providers: providers, costTypes: costTypes}
}

func (h *Handler) ProviderRoutes(r chi.Router) {
	r.Post("/", h.createProvider)
	r.Get("/", h.listProviders)
	r.Get("/{id}", h.getProvider)
	r.Put("/{id}", h.updateProvider)
	r.Delete("/{id}", h.deleteProvider)
}

func (h *Handler) CostTypeRoutes(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Put("/categories/{id}", h.updateCategory)
	r.Delete("/categories/{id}", h.deleteCategory)

	r.Post("/", h.createCostType)
	r.Get("/", h.listCostTypes)
	r.Get("/{id}", h.getCostType)
	r.Put("/{id}", h.updateCostType)
	r.Delete("/{id}", h.deleteCostType)
}

// create decodes P and writes whatever fn stores.
func create[P, T any](fn func(context.Context, P) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params P
		if err := respond.Decode(r, &params); err != nil {
			respond.Error(w, r, err)
			return
		}

		out, err := fn(r.Context(), params)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusCreated, out)
	}
}

func update[P, T any](fn func(context.Context, uuid.UUID, P) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.ID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		var params P
		if err := respond.Decode(r, &params); err != nil {
			respond.Error(w, r, err)
			return
		}

		out, err := fn(r.Context(), id, params)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, out)
	}
}

func get[T any](fn func(context.Context, uuid.UUID) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.ID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		out, err := fn(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, out)
	}
}

func remove(fn func(context.Context, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.ID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		if err := fn(r.Context(), id); err != nil {
			respond.Error(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func list[T any](w http.ResponseWriter, r *http.Request, items []T, err error) {
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if items == nil {
		items = []T{}
	}

	respond.JSON(w, http.StatusOK, items)
}

func (h *Handler) createProvider(w http.ResponseWriter, r *http.Request) {
	create(h.providers.Create)(w, r)
}

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	filter := provider.ListFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Kind:   provider.Kind(r.URL.Query().Get("kind")),
	}

	items, err := h.providers.List(r.Context(), filter)
	list(w, r, items, err)
}

func (h *Handler) getProvider(w http.ResponseWriter, r *http.Request) {
	get(h.providers.Get)(w, r)
}

func (h *Handler) updateProvider(w http.ResponseWriter, r *http.Request) {
	update(h.providers.Update)(w, r)
}

func (h *Handler) deleteProvider(w http.ResponseWriter, r *http.Request) {
	remove(h.providers.Delete)(w, r)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.costTypes.ListCategories(r.Context())
	list(w, r, items, err)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	create(h.costTypes.CreateCategory)(w, r)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	update(h.costTypes.UpdateCategory)(w, r)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	remove(h.costTypes.DeleteCategory)(w, r)
}

func (h *Handler) createCostType(w http.ResponseWriter, r *http.Request) {
	create(h.costTypes.Create)(w, r)
}

func (h *Handler) listCostTypes(w http.ResponseWriter, r *http.Request) {
	items, err := h.costTypes.List(r.Context())
	list(w, r, items, err)
}

func (h *Handler) getCostType(w http.ResponseWriter, r *http.Request) {
	get(h.costTypes.Get)(w, r)
}

func (h *Handler) updateCostType(w http.ResponseWriter, r *http.Request) {
	update(h.costTypes.Update)(w, r)
}

func (h *Handler) deleteCostType(w http.ResponseWriter, r *http.Request) {
	remove(h.costTypes.Delete)(w, r)
}
