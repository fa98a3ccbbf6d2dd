package maintenance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	maintenancehttp "github.com/MrJamesThe3rd/forwarder/internal/http/maintenance"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

type fakeProcedures struct {
	maintenancehttp.Procedures
}

func (fakeProcedures) DetectSimilarClients(context.Context) (int, error) { return 4, nil }

func (fakeProcedures) SyncLinkedInvoices(context.Context) (provision.SyncReport, error) {
	return provision.SyncReport{WorkOrders: 2, Invoices: 5}, nil
}

func (fakeProcedures) TestMailConnection(context.Context) error {
	return apperr.New(apperr.ErrUpstreamFatal, "token rejected")
}

func serve(req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/maintenance", maintenancehttp.NewHandler(fakeProcedures{}).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Count(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodPost, "/maintenance/detect-similar-clients", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"created":4}`, rec.Body.String())
}

func TestHandler_SyncLinked(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodPost, "/maintenance/sync-linked-invoices", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"work_orders":2,"invoices":5}`, rec.Body.String())
}

func TestHandler_TestConnectionFailure(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodPost, "/maintenance/test-mail-connection", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream_fatal")
}
