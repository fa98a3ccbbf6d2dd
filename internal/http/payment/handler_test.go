package payment_test

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

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	paymentHandler "github.com/MrJamesThe3rd/forwarder/internal/http/payment"
	"github.com/MrJamesThe3rd/forwarder/internal/payment"
)

type fakePayments struct {
	paymentHandler.Payments

	create func(payment.CreateParams) (*payment.Payment, error)
	list   func(payment.ListFilter) ([]*payment.Payment, error)
}

func (f *fakePayments) Create(_ context.Context, p payment.CreateParams) (*payment.Payment, error) {
	return f.create(p)
}

func (f *fakePayments) List(_ context.Context, filter payment.ListFilter) ([]*payment.Payment, error) {
	return f.list(filter)
}

func serve(svc paymentHandler.Payments, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/payments", paymentHandler.NewHandler(svc).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_CreateOverAllocated(t *testing.T) {
	inv := uuid.New()

	svc := &fakePayments{create: func(p payment.CreateParams) (*payment.Payment, error) {
		require.Len(t, p.Allocations, 1)
		assert.Equal(t, inv, p.Allocations[0].InvoiceID)

		return nil, apperr.LinkageBlocked("allocation exceeds pending amount")
	}}

	body := `{"provider_id":"` + uuid.NewString() + `","fecha_pago":"2025-06-01T00:00:00Z","monto_total":"100",` +
		`"allocations":[{"invoice_id":"` + inv.String() + `","monto":"150"}]}`

	rec := serve(svc, httptest.NewRequest(http.MethodPost, "/payments/", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "linkage_blocked")
}

func TestHandler_ListDates(t *testing.T) {
	svc := &fakePayments{list: func(f payment.ListFilter) ([]*payment.Payment, error) {
		require.NotNil(t, f.From)
		assert.Equal(t, "2025-01-01", f.From.Format("2006-01-02"))
		assert.Nil(t, f.To)

		return []*payment.Payment{{ID: uuid.New()}}, nil
	}}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/payments/?from=2025-01-01", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(svc, httptest.NewRequest(http.MethodGet, "/payments/?to=01/02/2025", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
