package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/http/auth"
)

func TestAuthenticator_Require(t *testing.T) {
	a := auth.New("s3cret")

	var seen string
	h := a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.User(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := a.Issue("ana", "operator", time.Hour)
	require.NoError(t, err)

	expired, err := a.Issue("ana", "operator", -time.Minute)
	require.NoError(t, err)

	forged, err := auth.New("other").Issue("mallory", "admin", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"Valid", "Bearer " + token, http.StatusNoContent},
		{"Missing", "", http.StatusForbidden},
		{"Expired", "Bearer " + expired, http.StatusForbidden},
		{"WrongKey", "Bearer " + forged, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusNoContent {
				assert.Equal(t, "ana", seen)
			}
		})
	}
}

func TestAuthenticator_EmptySecretDisablesAuth(t *testing.T) {
	h := auth.New("").Require(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
