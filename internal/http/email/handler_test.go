package email_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/email"
	emailhttp "github.com/MrJamesThe3rd/forwarder/internal/http/email"
)

type fakeMailbox struct {
	emailhttp.Mailbox

	filter email.LogFilter
	params email.ConfigParams
}

func (f *fakeMailbox) ListLogs(_ context.Context, filter email.LogFilter) ([]*email.Log, error) {
	f.filter = filter
	return nil, nil
}

func (f *fakeMailbox) UpdateConfig(_ context.Context, params email.ConfigParams) (*email.Config, error) {
	f.params = params
	return &email.Config{IntervalMinutes: *params.IntervalMinutes}, nil
}

func serve(svc emailhttp.Mailbox, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/email", emailhttp.NewHandler(svc).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_ListLogsFilter(t *testing.T) {
	svc := &fakeMailbox{}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/email/logs?status=skipped&since=2025-03-01&limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	require.NotNil(t, svc.filter.Status)
	assert.Equal(t, email.StatusSkipped, *svc.filter.Status)
	require.NotNil(t, svc.filter.Since)
	assert.Equal(t, 10, svc.filter.Limit)
}

func TestHandler_ListLogsBadFilter(t *testing.T) {
	rec := serve(&fakeMailbox{}, httptest.NewRequest(http.MethodGet, "/email/logs?status=nope&since=yesterday", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status"`)
	assert.Contains(t, rec.Body.String(), `"since"`)
}

func TestHandler_UpdateConfig(t *testing.T) {
	svc := &fakeMailbox{}

	rec := serve(svc, httptest.NewRequest(http.MethodPut, "/email/config",
		strings.NewReader(`{"interval_minutes":15,"sender_whitelist":["@carrier.com"]}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"@carrier.com"}, svc.params.SenderWhitelist)
	assert.Contains(t, rec.Body.String(), `"interval_minutes":15`)
}
