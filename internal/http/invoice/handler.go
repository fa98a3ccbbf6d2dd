package invoice

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
)

type Invoices interface {
	Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
	List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error)
	Create(ctx context.Context, params invoice.CreateParams) (*invoice.Invoice, error)
	Update(ctx context.Context, id uuid.UUID, params invoice.UpdateParams) (*invoice.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachWorkOrder(ctx context.Context, id, workOrderID uuid.UUID) (*invoice.Invoice, error)
	DetachWorkOrder(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
	Transition(ctx context.Context, id uuid.UUID, params invoice.TransitionParams) (*invoice.Invoice, error)
	CreateFromFile(ctx context.Context, params invoice.FromFileParams) (*invoice.FromFileResult, error)
	Reparse(ctx context.Context, id uuid.UUID) (*invoice.FromFileResult, error)

	ApplyCreditNote(ctx context.Context, invoiceID uuid.UUID, params invoice.CreditNoteParams) (*invoice.CreditNote, error)
	AnnulCreditNote(ctx context.Context, noteID uuid.UUID) (*invoice.CreditNote, error)
	ListCreditNotes(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.CreditNote, error)

	OpenDispute(ctx context.Context, invoiceID uuid.UUID, params invoice.DisputeParams) (*invoice.Dispute, error)
	ReviewDispute(ctx context.Context, disputeID uuid.UUID) (*invoice.Dispute, error)
	ResolveDispute(ctx context.Context, disputeID uuid.UUID, params invoice.ResolveParams) (*invoice.Dispute, error)
	CloseDispute(ctx context.Context, disputeID uuid.UUID) (*invoice.Dispute, error)
	ListDisputes(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.Dispute, error)
}

type Files interface {
	Store(ctx context.Context, filename, mimeType string, r io.Reader) (*upload.File, bool, error)
}

type Handler struct {
	svc     Invoices
	files   Files
	maxSize int64
}

func NewHandler(svc Invoices, files Files, maxSize int64) *Handler {
	if maxSize <= 0 {
		maxSize = 15 << 20
	}

	return &Handler{svc: svc, files: files, maxSize: maxSize}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/upload", h.upload)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/reparse", h.reparse)
	r.Put("/{id}/work-order", h.attach)
	r.Delete("/{id}/work-order", h.detach)
	r.Post("/{id}/transition", h.transition)

	r.Get("/{id}/credit-notes", h.listCreditNotes)
	r.Post("/{id}/credit-notes", h.applyCreditNote)
	r.Post("/credit-notes/{noteID}/annul", h.annulCreditNote)

	r.Get("/{id}/disputes", h.listDisputes)
	r.Post("/{id}/disputes", h.openDispute)
	r.Post("/disputes/{disputeID}/review", h.reviewDispute)
	r.Post("/disputes/{disputeID}/resolve", h.resolveDispute)
	r.Post("/disputes/{disputeID}/close", h.closeDispute)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params invoice.CreateParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	invoices, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if invoices == nil {
		invoices = []*invoice.Invoice{}
	}

	respond.JSON(w, http.StatusOK, invoices)
}

func listFilter(r *http.Request) (invoice.ListFilter, error) {
	q := r.URL.Query()

	var (
		filter invoice.ListFilter
		fields apperr.Fields
		err    error
	)

	if filter.ProviderID, err = respond.OptionalID(r, "provider_id"); err != nil {
		fields.Add("provider_id", "must be a UUID")
	}

	if filter.WorkOrderID, err = respond.OptionalID(r, "work_order_id"); err != nil {
		fields.Add("work_order_id", "must be a UUID")
	}

	if s := q.Get("estado_provision"); s != "" {
		filter.EstadoProvision = new(provision.State(s))
	}

	if s := q.Get("estado_pago"); s != "" {
		filter.EstadoPago = new(invoice.EstadoPago(s))
	}

	if filter.DueAlert, err = respond.Bool(r, "alerta_vencimiento"); err != nil {
		fields.Add("alerta_vencimiento", "must be true or false")
	}

	for _, d := range []struct {
		name string
		dst  **time.Time
	}{{"emitted_from", &filter.EmittedFrom}, {"emitted_to", &filter.EmittedTo}} {
		if v := q.Get(d.name); v != "" {
			t, err := time.Parse(time.DateOnly, v)
			if err != nil {
				fields.Add(d.name, "must be a YYYY-MM-DD date")
				continue
			}

			*d.dst = &t
		}
	}

	filter.Overdue = q.Get("overdue") == "true"
	filter.Search = strings.TrimSpace(q.Get("q"))

	if filter.Limit, filter.Offset, err = respond.Page(r); err != nil {
		fields.Add("limit", "must be a non-negative integer")
	}

	return filter, fields.Err()
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, inv)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params invoice.UpdateParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, inv)
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

// upload stores a file and drafts an invoice for it in one step.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1<<20)

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

	if header.Size > h.maxSize {
		respond.Error(w, r, apperr.Validation("file", "exceeds the maximum size"))
		return
	}

	stored, _, err := h.files.Store(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.CreateFromFile(r.Context(), invoice.FromFileParams{
		UploadedFileID: stored.ID,
		Source:         invoice.SourceUpload,
		AutoParse:      r.FormValue("auto_parse") != "false",
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, res)
}

func (h *Handler) reparse(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.Reparse(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, res)
}

type attachRequest struct {
	WorkOrderID uuid.UUID `json:"work_order_id"`
}

func (h *Handler) attach(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req attachRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.WorkOrderID == uuid.Nil {
		respond.Error(w, r, apperr.Validation("work_order_id", "is required"))
		return
	}

	inv, err := h.svc.AttachWorkOrder(r.Context(), id, req.WorkOrderID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, inv)
}

func (h *Handler) detach(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.DetachWorkOrder(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, inv)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params invoice.TransitionParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Transition(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, inv)
}

func (h *Handler) listCreditNotes(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	notes, err := h.svc.ListCreditNotes(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if notes == nil {
		notes = []*invoice.CreditNote{}
	}

	respond.JSON(w, http.StatusOK, notes)
}

func (h *Handler) applyCreditNote(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params invoice.CreditNoteParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	note, err := h.svc.ApplyCreditNote(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, note)
}

func (h *Handler) annulCreditNote(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "noteID")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	note, err := h.svc.AnnulCreditNote(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, note)
}

func (h *Handler) listDisputes(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	disputes, err := h.svc.ListDisputes(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if disputes == nil {
		disputes = []*invoice.Dispute{}
	}

	respond.JSON(w, http.StatusOK, disputes)
}

func (h *Handler) openDispute(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params invoice.DisputeParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	d, err := h.svc.OpenDispute(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, d)
}

// disputeStep runs one of the body-less dispute transitions.
func (h *Handler) disputeStep(step func(ctx context.Context, id uuid.UUID) (*invoice.Dispute, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.ID(r, "disputeID")
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		d, err := step(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, d)
	}
}

func (h *Handler) reviewDispute(w http.ResponseWriter, r *http.Request) {
	h.disputeStep(h.svc.ReviewDispute)(w, r)
}

func (h *Handler) closeDispute(w http.ResponseWriter, r *http.Request) {
	h.disputeStep(h.svc.CloseDispute)(w, r)
}

func (h *Handler) resolveDispute(w http.ResponseWriter, r *http.Request) {
	var params invoice.ResolveParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.disputeStep(func(ctx context.Context, id uuid.UUID) (*invoice.Dispute, error) {
		return h.svc.ResolveDispute(ctx, id, params)
	})(w, r)
}
