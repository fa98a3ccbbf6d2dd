package pattern_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	patternHandler "github.com/MrJamesThe3rd/forwarder/internal/http/pattern"
	"github.com/MrJamesThe3rd/forwarder/internal/pattern"
)

type fakePatterns struct {
	patternHandler.Patterns

	provider *uuid.UUID
	cases    []pattern.TestCase
}

func (f *fakePatterns) ApplyForProvider(_ context.Context, text string, providerID *uuid.UUID) (pattern.Extraction, error) {
	f.provider = providerID

	return pattern.Extraction{Fields: map[string]string{pattern.FieldNumero: "F-" + text[len(text)-3:]}}, nil
}

func (f *fakePatterns) Test(_ context.Context, _ uuid.UUID, cases []pattern.TestCase) (pattern.TestReport, error) {
	f.cases = cases
	return pattern.TestReport{Passed: 1, Total: 1, SuccessRate: 1}, nil
}

func serve(svc patternHandler.Patterns, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/patterns", patternHandler.NewHandler(svc).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Extract(t *testing.T) {
	svc := &fakePatterns{}
	id := uuid.New()

	rec := serve(svc, httptest.NewRequest(http.MethodPost, "/patterns/extract",
		strings.NewReader(`{"text":"Factura 001","provider_id":"`+id.String()+`"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"fields":{"numero_factura":"F-001"},"matched_by":null,"attempts":null}`, rec.Body.String())
	require.NotNil(t, svc.provider)
	assert.Equal(t, id, *svc.provider)
}

func TestHandler_ExtractNeedsText(t *testing.T) {
	rec := serve(&fakePatterns{}, httptest.NewRequest(http.MethodPost, "/patterns/extract", strings.NewReader(`{"text":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_TestWithoutBodyUsesStoredCases(t *testing.T) {
	svc := &fakePatterns{}

	rec := serve(svc, httptest.NewRequest(http.MethodPost, "/patterns/"+uuid.NewString()+"/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.cases)
}
