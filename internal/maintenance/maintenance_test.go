package maintenance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/forwarder/internal/email"
	"github.com/MrJamesThe3rd/forwarder/internal/maintenance"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

type inlineTx struct{ calls int }

func (t *inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type harness struct {
	mailbox   *maintenance.MockMailbox
	linkage   *maintenance.MockLinkage
	clients   *maintenance.MockClients
	costTypes *maintenance.MockCostTypes
	tx        *inlineTx
	svc       *maintenance.Service
}

func newHarness(t *testing.T) *harness {
	ctrl := gomock.NewController(t)
	h := &harness{
		mailbox:   maintenance.NewMockMailbox(ctrl),
		linkage:   maintenance.NewMockLinkage(ctrl),
		clients:   maintenance.NewMockClients(ctrl),
		costTypes: maintenance.NewMockCostTypes(ctrl),
		tx:        &inlineTx{},
	}
	h.svc = maintenance.NewService(h.mailbox, h.linkage, h.clients, h.costTypes, h.tx, nil)

	return h
}

func TestService_ProcessEmailsNowForces(t *testing.T) {
	h := newHarness(t)
	h.mailbox.EXPECT().RunOnce(gomock.Any(), true).Return(&email.RunReport{Ran: true, Processed: 3}, nil)

	report, err := h.svc.ProcessEmailsNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
}

func TestService_TestMailConnection(t *testing.T) {
	h := newHarness(t)
	h.mailbox.EXPECT().TestConnection(gomock.Any()).Return(errors.New("invalid client secret"))

	err := h.svc.TestMailConnection(context.Background())
	assert.ErrorContains(t, err, "invalid client secret")
}

func TestService_SyncLinkedInvoicesRunsInTx(t *testing.T) {
	h := newHarness(t)
	h.linkage.EXPECT().SyncAll(gomock.Any()).Return(provision.SyncReport{WorkOrders: 2, Invoices: 5}, nil)

	report, err := h.svc.SyncLinkedInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Invoices)
	assert.Equal(t, 1, h.tx.calls)
}

func TestService_ClientSweeps(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.clients.EXPECT().RecalculateUsageCounts(gomock.Any()).Return(12, nil)
	h.clients.EXPECT().CleanObsoleteMatches(gomock.Any()).Return(0, errors.New("db down"))
	h.clients.EXPECT().DetectSimilar(gomock.Any()).Return(4, nil)

	n, err := h.svc.RecalculateClientUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = h.svc.CleanSimilarityMatches(ctx)
	assert.ErrorContains(t, err, "db down")

	n, err = h.svc.DetectSimilarClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestService_NormalizeCostTypeCodes(t *testing.T) {
	h := newHarness(t)
	h.costTypes.EXPECT().NormalizeCodes(gomock.Any()).Return(2, []string{"flete maritimo"}, nil)

	report, err := h.svc.NormalizeCostTypeCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Changed)
	assert.Equal(t, []string{"flete maritimo"}, report.Skipped)
}
