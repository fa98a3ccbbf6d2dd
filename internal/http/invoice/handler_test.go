package invoice_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	invoiceHandler "github.com/MrJamesThe3rd/forwarder/internal/http/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/http/respond"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
)

// fakeInvoices implements only what each test sets; anything else panics
// through the nil embedded interface.
type fakeInvoices struct {
	invoiceHandler.Invoices

	create   func(invoice.CreateParams) (*invoice.Invoice, error)
	list     func(invoice.ListFilter) ([]*invoice.Invoice, error)
	fromFile func(invoice.FromFileParams) (*invoice.FromFileResult, error)
	attach   func(id, wo uuid.UUID) (*invoice.Invoice, error)
}

func (f *fakeInvoices) Create(_ context.Context, p invoice.CreateParams) (*invoice.Invoice, error) {
	return f.create(p)
}

func (f *fakeInvoices) List(_ context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	return f.list(filter)
}

func (f *fakeInvoices) CreateFromFile(_ context.Context, p invoice.FromFileParams) (*invoice.FromFileResult, error) {
	return f.fromFile(p)
}

func (f *fakeInvoices) AttachWorkOrder(_ context.Context, id, wo uuid.UUID) (*invoice.Invoice, error) {
	return f.attach(id, wo)
}

type fakeFiles struct {
	stored *upload.File
	body   string
}

func (f *fakeFiles) Store(_ context.Context, filename, _ string, r io.Reader) (*upload.File, bool, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}

	f.body = string(b)
	f.stored = &upload.File{ID: uuid.New(), Filename: filename}

	return f.stored, false, nil
}

func serve(h *invoiceHandler.Handler, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/invoices", h.Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Create(t *testing.T) {
	svc := &fakeInvoices{create: func(p invoice.CreateParams) (*invoice.Invoice, error) {
		assert.Equal(t, "F-001", p.Numero)
		assert.True(t, p.Monto.Equal(decimal.RequireFromString("150.50")))

		return &invoice.Invoice{ID: uuid.New(), Numero: p.Numero, Monto: p.Monto}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/invoices/", strings.NewReader(`{"numero":"F-001","monto":"150.50"}`))
	rec := serve(invoiceHandler.NewHandler(svc, nil, 0), req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"numero":"F-001"`)
}

func TestHandler_CreateRejectsUnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/invoices/", strings.NewReader(`{"numbr":"F-001"}`))
	rec := serve(invoiceHandler.NewHandler(&fakeInvoices{}, nil, 0), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_List(t *testing.T) {
	provider := uuid.New()

	svc := &fakeInvoices{list: func(f invoice.ListFilter) ([]*invoice.Invoice, error) {
		require.NotNil(t, f.ProviderID)
		assert.Equal(t, provider, *f.ProviderID)
		require.NotNil(t, f.EstadoProvision)
		assert.Equal(t, provision.StateProvisionada, *f.EstadoProvision)
		require.NotNil(t, f.DueAlert)
		assert.True(t, *f.DueAlert)
		assert.Equal(t, 10, f.Limit)

		return nil, nil
	}}

	req := httptest.NewRequest(http.MethodGet,
		"/invoices/?provider_id="+provider.String()+"&estado_provision=provisionada&alerta_vencimiento=true&limit=10", nil)
	rec := serve(invoiceHandler.NewHandler(svc, nil, 0), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_ListBadFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/invoices/?provider_id=nope&alerta_vencimiento=maybe", nil)
	rec := serve(invoiceHandler.NewHandler(&fakeInvoices{}, nil, 0), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Errors, 2)
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHandler_Upload(t *testing.T) {
	files := &fakeFiles{}

	svc := &fakeInvoices{fromFile: func(p invoice.FromFileParams) (*invoice.FromFileResult, error) {
		assert.Equal(t, files.stored.ID, p.UploadedFileID)
		assert.True(t, p.AutoParse)
		assert.Equal(t, invoice.SourceUpload, p.Source)

		return &invoice.FromFileResult{Invoice: &invoice.Invoice{ID: uuid.New()}}, nil
	}}

	body, ct := multipartBody(t, "factura.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/invoices/upload", body)
	req.Header.Set("Content-Type", ct)

	rec := serve(invoiceHandler.NewHandler(svc, files, 0), req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "%PDF-1.4", files.body)
	assert.Equal(t, "factura.pdf", files.stored.Filename)
}

func TestHandler_UploadDuplicate(t *testing.T) {
	svc := &fakeInvoices{fromFile: func(invoice.FromFileParams) (*invoice.FromFileResult, error) {
		return nil, apperr.New(apperr.ErrDuplicateFile, "file already has an invoice")
	}}

	body, ct := multipartBody(t, "factura.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/invoices/upload", body)
	req.Header.Set("Content-Type", ct)

	rec := serve(invoiceHandler.NewHandler(svc, &fakeFiles{}, 0), req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"duplicate_file"`)
}

func TestHandler_AttachBlocked(t *testing.T) {
	id, wo := uuid.New(), uuid.New()

	svc := &fakeInvoices{attach: func(gotID, gotWO uuid.UUID) (*invoice.Invoice, error) {
		assert.Equal(t, id, gotID)
		assert.Equal(t, wo, gotWO)

		return nil, apperr.LinkageBlocked("invoice already linked")
	}}

	req := httptest.NewRequest(http.MethodPut, "/invoices/"+id.String()+"/work-order",
		strings.NewReader(`{"work_order_id":"`+wo.String()+`"}`))
	rec := serve(invoiceHandler.NewHandler(svc, nil, 0), req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "linkage_blocked")
}
