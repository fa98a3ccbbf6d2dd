package maintenance

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/forwarder/internal/email"
	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
	"github.com/MrJamesThe3rd/forwarder/internal/maintenance"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

type Procedures interface {
	ProcessEmailsNow(ctx context.Context) (*email.RunReport, error)
	TestMailConnection(ctx context.Context) error
	SyncLinkedInvoices(ctx context.Context) (provision.SyncReport, error)
	RecalculateClientUsage(ctx context.Context) (int, error)
	DetectSimilarClients(ctx context.Context) (int, error)
	CleanSimilarityMatches(ctx context.Context) (int, error)
	NormalizeCostTypeCodes(ctx context.Context) (maintenance.NormalizeReport, error)
}

var _ Procedures = (*maintenance.Service)(nil)

type Handler struct {
	svc Procedures
}

func NewHandler(svc Procedures) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/process-emails", h.processEmails)
	r.Post("/test-mail-connection", h.testConnection)
	r.Post("/sync-linked-invoices", h.syncLinked)
	r.Post("/recalculate-client-usage", h.count(Procedures.RecalculateClientUsage, "updated"))
	r.Post("/detect-similar-clients", h.count(Procedures.DetectSimilarClients, "created"))
	r.Post("/clean-similarity-matches", h.count(Procedures.CleanSimilarityMatches, "deleted"))
	r.Post("/normalize-cost-types", h.normalizeCostTypes)
}

func (h *Handler) count(run func(Procedures, context.Context) (int, error), key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := run(h.svc, r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, map[string]int{key: n})
	}
}

func (h *Handler) processEmails(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.ProcessEmailsNow(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, report)
}

func (h *Handler) testConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.TestMailConnection(r.Context()); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) syncLinked(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.SyncLinkedInvoices(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, report)
}

func (h *Handler) normalizeCostTypes(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.NormalizeCostTypeCodes(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if report.Skipped == nil {
		report.Skipped = []string{}
	}

	respond.JSON(w, http.StatusOK, report)
}
