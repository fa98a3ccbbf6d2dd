package files_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/http/files"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
)

type fakeUploads struct {
	files.Uploads

	file *upload.File
	body string
}

func (f *fakeUploads) Open(_ context.Context, id uuid.UUID) (*upload.File, io.ReadCloser, error) {
	if f.file == nil || f.file.ID != id {
		return nil, nil, apperr.NotFound("file")
	}

	return f.file, io.NopCloser(strings.NewReader(f.body)), nil
}

func (f *fakeUploads) URL(context.Context, uuid.UUID) (string, error) {
	return "https://storage.example.com/invoices/a.pdf?sig=1", nil
}

func serve(svc files.Uploads, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/files", files.NewHandler(svc).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Content(t *testing.T) {
	f := &upload.File{ID: uuid.New(), Filename: "factura 12.pdf", Mime: "application/pdf", Size: 4}
	svc := &fakeUploads{file: f, body: "%PDF"}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/files/"+f.ID.String()+"/content?download", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF", rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}

func TestHandler_ContentMissing(t *testing.T) {
	rec := serve(&fakeUploads{}, httptest.NewRequest(http.MethodGet, "/files/"+uuid.NewString()+"/content", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_URLRedirect(t *testing.T) {
	rec := serve(&fakeUploads{}, httptest.NewRequest(http.MethodGet, "/files/"+uuid.NewString()+"/url?redirect", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "storage.example.com")
}
