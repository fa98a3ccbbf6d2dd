package importsheet

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/http/auth"
	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
	"github.com/MrJamesThe3rd/forwarder/internal/importer"
)

type Importer interface {
	Import(ctx context.Context, params importer.ImportParams) (*importer.Result, error)
	ResolveBatch(ctx context.Context, id uuid.UUID, inputs []importer.ResolutionInput) (*importer.Result, error)
	GetBatch(ctx context.Context, id uuid.UUID) (*importer.Batch, error)
	DiscardBatch(ctx context.Context, id uuid.UUID) error
	ListProcessedFiles(ctx context.Context, limit, offset int) ([]*importer.ProcessedFile, error)
}

type Handler struct {
	svc     Importer
	maxSize int64
}

func NewHandler(svc Importer) *Handler {
	return &Handler{svc: svc, maxSize: 20 << 20}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importSheet)
	r.Get("/files", h.listFiles)
	r.Get("/batches/{id}", h.getBatch)
	r.Post("/batches/{id}/resolve", h.resolve)
	r.Delete("/batches/{id}", h.discard)
}

// conflictResponse is the 409 body: the error envelope plus what the
// caller needs to answer each conflict.
type conflictResponse struct {
	respond.ErrorBody
	*importer.Result
}

func (h *Handler) importSheet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

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

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(w, r, apperr.Validation("file", "failed to read upload"))
		return
	}

	res, err := h.svc.Import(r.Context(), importer.ImportParams{
		Filename:      header.Filename,
		Data:          data,
		OperationType: r.FormValue("operation_type"),
		ProcessedBy:   auth.User(r.Context()),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	writeResult(w, res)
}

func writeResult(w http.ResponseWriter, res *importer.Result) {
	normalize(res)

	switch {
	case res.Pending():
		respond.JSON(w, http.StatusConflict, conflictResponse{
			ErrorBody: respond.ErrorBody{
				Code:    apperr.Code(apperr.ErrConflictPending),
				Message: "some rows conflict with values from a stronger source",
				Errors:  []apperr.FieldError{},
			},
			Result: res,
		})
	case res.FileSkipped:
		respond.JSON(w, http.StatusOK, res)
	default:
		respond.JSON(w, http.StatusCreated, res)
	}
}

func normalize(res *importer.Result) {
	if res.Conflicts == nil {
		res.Conflicts = []importer.Conflict{}
	}

	if res.Warnings == nil {
		res.Warnings = []importer.Warning{}
	}
}

type resolveRequest struct {
	Resolutions []importer.ResolutionInput `json:"resolutions"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req resolveRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.ResolveBatch(r.Context(), id, req.Resolutions)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	writeResult(w, res)
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.GetBatch(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, b)
}

func (h *Handler) discard(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.DiscardBatch(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := respond.Page(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	files, err := h.svc.ListProcessedFiles(r.Context(), limit, offset)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if files == nil {
		files = []*importer.ProcessedFile{}
	}

	respond.JSON(w, http.StatusOK, files)
}
