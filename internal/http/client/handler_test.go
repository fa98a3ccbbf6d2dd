package client_test

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

	"github.com/MrJamesThe3rd/forwarder/internal/client"
	clientHandler "github.com/MrJamesThe3rd/forwarder/internal/http/client"
)

type fakeClients struct {
	clientHandler.Clients

	status  client.MatchStatus
	keep    uuid.UUID
	aliases map[string]*client.Alias
}

func (f *fakeClients) Lookup(_ context.Context, name string) (*client.Alias, error) {
	return f.aliases[name], nil
}

func (f *fakeClients) ListMatches(_ context.Context, status client.MatchStatus) ([]*client.Match, error) {
	f.status = status
	return []*client.Match{{ID: uuid.New(), Score: 91, Status: status}}, nil
}

func (f *fakeClients) AcceptMatch(_ context.Context, _, keep uuid.UUID) (*client.Alias, error) {
	f.keep = keep
	return &client.Alias{ID: keep}, nil
}

func serve(svc clientHandler.Clients, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/clients", clientHandler.NewHandler(svc).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Suggest(t *testing.T) {
	acme := &client.Alias{ID: uuid.New(), OriginalName: "ACME SA"}
	svc := &fakeClients{aliases: map[string]*client.Alias{"acme s.a.": acme}}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/clients/suggest?name=acme+s.a.", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), acme.ID.String())

	rec = serve(svc, httptest.NewRequest(http.MethodGet, "/clients/suggest?name=nobody", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alias":null`)

	rec = serve(svc, httptest.NewRequest(http.MethodGet, "/clients/suggest", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_MatchReview(t *testing.T) {
	svc := &fakeClients{}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/clients/matches", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, client.MatchPending, svc.status)

	keep := uuid.New()
	rec = serve(svc, httptest.NewRequest(http.MethodPost, "/clients/matches/"+uuid.NewString()+"/accept",
		strings.NewReader(`{"keep":"`+keep.String()+`"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, keep, svc.keep)
}
