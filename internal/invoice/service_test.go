package invoice_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/costtype"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/pattern"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

var (
	today = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	flete = &costtype.CostType{ID: uuid.New(), Code: "FLETE", LinkedToOT: true}
	otros = &costtype.CostType{ID: uuid.New(), Code: "OTROS"}
)

type fakeCostTypes struct{}

func (fakeCostTypes) Get(_ context.Context, id uuid.UUID) (*costtype.CostType, error) {
	for _, ct := range []*costtype.CostType{flete, otros} {
		if ct.ID == id {
			return ct, nil
		}
	}

	return nil, apperr.NotFound("cost type")
}

type fakeWorkOrders struct {
	byID map[uuid.UUID]*workorder.WorkOrder
}

func (f *fakeWorkOrders) add(wo *workorder.WorkOrder) *workorder.WorkOrder {
	if wo.ID == uuid.Nil {
		wo.ID = uuid.New()
	}

	f.byID[wo.ID] = wo

	return wo
}

func (f *fakeWorkOrders) Get(_ context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	wo, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("work order")
	}

	return wo, nil
}

func (f *fakeWorkOrders) FindBy(_ context.Context, key workorder.MatchKey, value string) ([]*workorder.WorkOrder, error) {
	var out []*workorder.WorkOrder

	for _, wo := range f.byID {
		switch key {
		case workorder.MatchNumber:
			if wo.Number == value {
				out = append(out, wo)
			}
		case workorder.MatchMasterBL:
			if wo.MasterBL == value {
				out = append(out, wo)
			}
		case workorder.MatchHouseBL:
			for _, h := range wo.HouseBLs {
				if h == value {
					out = append(out, wo)
					break
				}
			}
		case workorder.MatchContainer:
			for _, c := range wo.Containers {
				if c == value {
					out = append(out, wo)
					break
				}
			}
		}
	}

	return out, nil
}

type harness struct {
	repo       *fakeRepo
	engine     *provision.Engine
	workOrders *fakeWorkOrders
	files      *invoice.MockFiles
	patterns   *invoice.MockPatterns
	svc        *invoice.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := &harness{
		repo:       newFakeRepo(),
		workOrders: &fakeWorkOrders{byID: map[uuid.UUID]*workorder.WorkOrder{}},
		files:      invoice.NewMockFiles(ctrl),
		patterns:   invoice.NewMockPatterns(ctrl),
	}
	h.engine = provision.NewEngine(h.repo, logger)
	h.svc = invoice.NewService(invoice.Deps{
		Repo:       h.repo,
		Tx:         inlineTx{},
		Linker:     h.engine,
		CostTypes:  fakeCostTypes{},
		WorkOrders: h.workOrders,
		Files:      h.files,
		Patterns:   h.patterns,
		Logger:     logger,
	}, invoice.Options{Now: func() time.Time { return today }})

	return h
}

// workOrder registers a work order both for lookup and as a provision stamp.
func (h *harness) workOrder(number string, stamp provision.Stamp) *workorder.WorkOrder {
	wo := h.workOrders.add(&workorder.WorkOrder{Number: number})
	h.repo.workOrders[wo.ID] = stamp

	return wo
}

func TestService_Create(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	inv, err := h.svc.Create(ctx, invoice.CreateParams{
		Numero:   " F-001 ",
		Monto:    dec("1000.456"),
		Moneda:   "pen",
		MBL:      "mscu 123",
		TipoPago: invoice.TipoCredito,
	})
	require.NoError(t, err)

	assert.Equal(t, "F-001", inv.Numero)
	assert.Equal(t, "PEN", inv.Moneda)
	assert.Equal(t, "MSCU123", inv.MBL)
	assert.True(t, dec("1000.46").Equal(inv.Monto))
	assert.True(t, dec("1000.46").Equal(inv.MontoAplicable))
	assert.Equal(t, invoice.PagoPendiente, inv.EstadoPago)
	assert.Equal(t, provision.StatePendiente, inv.EstadoProvision)
	assert.ElementsMatch(t, []string{invoice.FieldNumero, invoice.FieldMonto, invoice.FieldMoneda, invoice.FieldMBL}, inv.UserFields)

	_, err = h.svc.Create(ctx, invoice.CreateParams{Monto: dec("-1")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_CreateLinkedInheritsWorkOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	fecha := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	wo := h.workOrder("25OT001", provision.Stamp{State: provision.StateProvisionada, FechaProvision: &fecha})

	linked, err := h.svc.Create(ctx, invoice.CreateParams{Monto: dec("500"), CostTypeID: &flete.ID, WorkOrderID: &wo.ID})
	require.NoError(t, err)
	assert.Equal(t, provision.StateProvisionada, linked.EstadoProvision)
	require.NotNil(t, linked.FechaProvision)
	assert.True(t, fecha.Equal(*linked.FechaProvision))

	plain, err := h.svc.Create(ctx, invoice.CreateParams{Monto: dec("500"), CostTypeID: &otros.ID, WorkOrderID: &wo.ID})
	require.NoError(t, err)
	assert.Equal(t, provision.StatePendiente, plain.EstadoProvision)
}

func TestService_CreditNoteLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	inv, err := h.svc.Create(ctx, invoice.CreateParams{Numero: "F-1", Monto: dec("1000")})
	require.NoError(t, err)

	note, err := h.svc.ApplyCreditNote(ctx, inv.ID, invoice.CreditNoteParams{
		Numero: "NC-1", FechaEmision: today, Monto: dec("200"),
	})
	require.NoError(t, err)

	got, err := h.svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("800").Equal(got.MontoAplicable), got.MontoAplicable.String())

	_, err = h.svc.ApplyCreditNote(ctx, inv.ID, invoice.CreditNoteParams{
		Numero: "NC-2", FechaEmision: today, Monto: dec("900"),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = h.svc.AnnulCreditNote(ctx, note.ID)
	require.NoError(t, err)

	got, err = h.svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(got.MontoAplicable), got.MontoAplicable.String())

	_, err = h.svc.AnnulCreditNote(ctx, note.ID)
	assert.ErrorIs(t, err, apperr.ErrStateTransition)
}

func TestService_DisputePartialApproval(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	inv, err := h.svc.Create(ctx, invoice.CreateParams{Numero: "F-2", Monto: dec("1000")})
	require.NoError(t, err)

	_, err = h.svc.Transition(ctx, inv.ID, invoice.TransitionParams{To: provision.StateProvisionada})
	require.NoError(t, err)

	d, err := h.svc.OpenDispute(ctx, inv.ID, invoice.DisputeParams{Motivo: "sobrecargo", MontoDisputa: dec("300")})
	require.NoError(t, err)

	got, _ := h.svc.Get(ctx, inv.ID)
	assert.Equal(t, provision.StateDisputada, got.EstadoProvision)

	_, err = h.svc.OpenDispute(ctx, inv.ID, invoice.DisputeParams{MontoDisputa: dec("10")})
	assert.ErrorIs(t, err, apperr.ErrValidation, "only one open dispute per invoice")

	_, err = h.svc.ReviewDispute(ctx, d.ID)
	require.NoError(t, err)

	got, _ = h.svc.Get(ctx, inv.ID)
	assert.Equal(t, provision.StateRevision, got.EstadoProvision)

	_, err = h.svc.ResolveDispute(ctx, d.ID, invoice.ResolveParams{
		Resultado: invoice.ResultadoAprobadaParcial, MontoRecuperado: dec("400"),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation, "recovered above disputed amount")

	resolved, err := h.svc.ResolveDispute(ctx, d.ID, invoice.ResolveParams{
		Resultado: invoice.ResultadoAprobadaParcial, MontoRecuperado: dec("150"),
	})
	require.NoError(t, err)
	assert.Equal(t, invoice.DisputaResuelta, resolved.Estado)
	require.NotNil(t, resolved.ResolvedAt)

	got, _ = h.svc.Get(ctx, inv.ID)
	assert.True(t, dec("850").Equal(got.MontoAplicable), got.MontoAplicable.String())
	assert.Equal(t, provision.StateAnuladaParcialmente, got.EstadoProvision)

	_, err = h.svc.CloseDispute(ctx, d.ID)
	require.NoError(t, err)

	_, err = h.svc.CloseDispute(ctx, d.ID)
	assert.ErrorIs(t, err, apperr.ErrStateTransition)
}

func TestService_AnnulledInvoiceIgnoresWorkOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	wo := h.workOrder("25OT010", provision.Stamp{State: provision.StatePendiente})

	first, err := h.svc.Create(ctx, invoice.CreateParams{Numero: "A", Monto: dec("100"), CostTypeID: &flete.ID, WorkOrderID: &wo.ID})
	require.NoError(t, err)

	sibling, err := h.svc.Create(ctx, invoice.CreateParams{Numero: "B", Monto: dec("100"), CostTypeID: &flete.ID, WorkOrderID: &wo.ID})
	require.NoError(t, err)

	fecha := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	provisioned := provision.Stamp{State: provision.StateProvisionada, FechaProvision: &fecha}
	h.repo.workOrders[wo.ID] = provisioned

	n, err := h.engine.OnWorkOrderSaved(ctx, wo.ID, provisioned)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, _ := h.svc.Get(ctx, first.ID)
	assert.Equal(t, provision.StateProvisionada, got.EstadoProvision)
	require.NotNil(t, got.FechaProvision)
	assert.True(t, fecha.Equal(*got.FechaProvision))

	_, err = h.svc.Transition(ctx, first.ID, invoice.TransitionParams{To: provision.StateAnulada})
	require.NoError(t, err)

	review := provision.Stamp{State: provision.StateRevision, FechaProvision: &fecha}
	h.repo.workOrders[wo.ID] = review

	_, err = h.engine.OnWorkOrderSaved(ctx, wo.ID, review)
	require.NoError(t, err)

	got, _ = h.svc.Get(ctx, first.ID)
	assert.Equal(t, provision.StateAnulada, got.EstadoProvision)

	got, _ = h.svc.Get(ctx, sibling.ID)
	assert.Equal(t, provision.StateRevision, got.EstadoProvision)
}

func TestService_TransitionDrivesWorkOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	wo := h.workOrder("25OT011", provision.Stamp{State: provision.StatePendiente})

	a, err := h.svc.Create(ctx, invoice.CreateParams{Numero: "A", Monto: dec("100"), CostTypeID: &flete.ID, WorkOrderID: &wo.ID})
	require.NoError(t, err)

	b, err := h.svc.Create(ctx, invoice.CreateParams{Numero: "B", Monto: dec("100"), CostTypeID: &flete.ID, WorkOrderID: &wo.ID})
	require.NoError(t, err)

	_, err = h.svc.Transition(ctx, a.ID, invoice.TransitionParams{To: provision.StateProvisionada})
	require.NoError(t, err)

	assert.Equal(t, provision.StateProvisionada, h.repo.workOrders[wo.ID].State)

	got, _ := h.svc.Get(ctx, b.ID)
	assert.Equal(t, provision.StateProvisionada, got.EstadoProvision)
	require.NotNil(t, got.FechaProvision)
	assert.Equal(t, "2025-06-10", got.FechaProvision.Format(time.DateOnly))

	_, err = h.svc.Transition(ctx, a.ID, invoice.TransitionParams{To: provision.StatePendiente})
	assert.ErrorIs(t, err, apperr.ErrStateTransition)
}

func TestService_UpdateMontoBelowPaid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	inv := h.repo.put(invoice.Invoice{
		Numero: "F-3", Monto: dec("1000"), MontoAplicable: dec("1000"), MontoPagado: dec("600"),
		EstadoPago: invoice.PagoParcial,
	})

	_, err := h.svc.Update(ctx, inv.ID, invoice.UpdateParams{Monto: new(dec("500"))})
	assert.ErrorIs(t, err, apperr.ErrLinkageBlocked)

	updated, err := h.svc.Update(ctx, inv.ID, invoice.UpdateParams{Monto: new(dec("600"))})
	require.NoError(t, err)
	assert.Equal(t, invoice.PagoTotal, updated.EstadoPago)
	assert.Contains(t, updated.UserFields, invoice.FieldMonto)
}

func TestService_Delete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	paid := h.repo.put(invoice.Invoice{Numero: "F-4", Monto: dec("100"), MontoAplicable: dec("100")})
	h.repo.links[paid.ID] = []decimal.Decimal{dec("50")}

	err := h.svc.Delete(ctx, paid.ID)
	assert.ErrorIs(t, err, apperr.ErrLinkageBlocked)

	free := h.repo.put(invoice.Invoice{Numero: "F-5", Monto: dec("100"), MontoAplicable: dec("100")})
	require.NoError(t, h.svc.Delete(ctx, free.ID))

	_, err = h.svc.Get(ctx, free.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_RecomputePaid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	inv := h.repo.put(invoice.Invoice{Numero: "F-6", Monto: dec("1000"), MontoAplicable: dec("1000")})

	h.repo.links[inv.ID] = []decimal.Decimal{dec("400")}
	got, err := h.svc.RecomputePaid(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.PagoParcial, got.EstadoPago)

	h.repo.links[inv.ID] = append(h.repo.links[inv.ID], dec("600"))
	got, err = h.svc.RecomputePaid(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.PagoTotal, got.EstadoPago)
	assert.True(t, dec("0").Equal(got.Pendiente()))

	h.repo.links[inv.ID] = append(h.repo.links[inv.ID], dec("0.01"))
	_, err = h.svc.RecomputePaid(ctx, inv.ID)
	assert.ErrorIs(t, err, apperr.ErrLinkageBlocked)
}

func TestService_LockForPayment(t *testing.T) {
	h := newHarness(t)

	a := h.repo.put(invoice.Invoice{Numero: "A"})
	b := h.repo.put(invoice.Invoice{Numero: "B"})

	got, err := h.svc.LockForPayment(context.Background(), []uuid.UUID{b.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

const invoiceFile = `NAVIERA ANDINA SAC
Factura: F001-000123
Fecha: 05/06/2025
OT: 25-OT-020
Total USD 1,250.50
`

func TestService_CreateFromFile(t *testing.T) {
	providerID := uuid.New()
	fileID := uuid.New()
	file := &upload.File{ID: fileID, Filename: "factura.txt", Mime: "text/plain"}

	extraction := pattern.Extraction{Fields: map[string]string{
		pattern.FieldNumero:       "F001-000123",
		pattern.FieldFechaEmision: "05/06/2025",
		pattern.FieldOT:           "25-OT-020",
		pattern.FieldMonto:        "1,250.50",
		pattern.FieldMoneda:       "usd",
		pattern.FieldMBL:          "MAEU555",
	}}

	t.Run("identifies provider, fills fields and links the work order", func(t *testing.T) {
		h := newHarness(t)
		wo := h.workOrder("25OT020", provision.Stamp{State: provision.StatePendiente})

		h.files.EXPECT().ReadAll(gomock.Any(), fileID).Return(file, []byte(invoiceFile), nil)
		h.patterns.EXPECT().IdentifyProvider(gomock.Any(), invoiceFile).
			Return([]pattern.ProviderScore{{ProviderID: providerID, Hits: 3, Evaluated: 4, Confidence: 0.75}}, nil)
		h.patterns.EXPECT().ApplyForProvider(gomock.Any(), invoiceFile, &providerID).Return(extraction, nil)

		res, err := h.svc.CreateFromFile(context.Background(), invoice.FromFileParams{UploadedFileID: fileID, AutoParse: true})
		require.NoError(t, err)

		inv := res.Invoice
		require.NotNil(t, res.Provider)
		assert.Equal(t, providerID, *inv.ProviderID)
		assert.Equal(t, "F001-000123", inv.Numero)
		assert.Equal(t, "25OT020", inv.OTExtraido)
		assert.True(t, dec("1250.50").Equal(inv.Monto))
		assert.True(t, dec("1250.50").Equal(inv.MontoAplicable))
		assert.Equal(t, "USD", inv.Moneda)
		assert.Equal(t, invoice.SourceUpload, inv.Source)
		assert.True(t, res.MatchedWorkOrder)
		assert.Equal(t, wo.ID, *inv.WorkOrderID)
		assert.Empty(t, inv.UserFields)

		_, err = h.svc.CreateFromFile(context.Background(), invoice.FromFileParams{UploadedFileID: fileID})
		assert.ErrorIs(t, err, apperr.ErrDuplicateFile)
	})

	t.Run("low confidence leaves the provider empty", func(t *testing.T) {
		h := newHarness(t)

		h.files.EXPECT().ReadAll(gomock.Any(), fileID).Return(file, []byte(invoiceFile), nil)
		h.patterns.EXPECT().IdentifyProvider(gomock.Any(), gomock.Any()).
			Return([]pattern.ProviderScore{{ProviderID: providerID, Hits: 1, Evaluated: 4, Confidence: 0.25}}, nil)
		h.patterns.EXPECT().ApplyForProvider(gomock.Any(), gomock.Any(), (*uuid.UUID)(nil)).Return(pattern.Extraction{}, nil)

		res, err := h.svc.CreateFromFile(context.Background(), invoice.FromFileParams{UploadedFileID: fileID, AutoParse: true})
		require.NoError(t, err)
		assert.Nil(t, res.Provider)
		assert.Nil(t, res.Invoice.ProviderID)
		assert.Equal(t, provision.StatePendiente, res.Invoice.EstadoProvision)
	})

	t.Run("ambiguous reference links nothing", func(t *testing.T) {
		h := newHarness(t)
		h.workOrders.add(&workorder.WorkOrder{Number: "25OT030", MasterBL: "MAEU555"})
		h.workOrders.add(&workorder.WorkOrder{Number: "25OT031", MasterBL: "MAEU555"})

		h.files.EXPECT().ReadAll(gomock.Any(), fileID).Return(file, []byte(invoiceFile), nil)
		h.patterns.EXPECT().IdentifyProvider(gomock.Any(), gomock.Any()).Return(nil, nil)
		h.patterns.EXPECT().ApplyForProvider(gomock.Any(), gomock.Any(), gomock.Any()).Return(extraction, nil)

		res, err := h.svc.CreateFromFile(context.Background(), invoice.FromFileParams{UploadedFileID: fileID, AutoParse: true})
		require.NoError(t, err)
		assert.False(t, res.MatchedWorkOrder)
		assert.Nil(t, res.Invoice.WorkOrderID)
	})

	t.Run("unreadable file still drafts an invoice", func(t *testing.T) {
		h := newHarness(t)

		h.files.EXPECT().ReadAll(gomock.Any(), fileID).Return(nil, nil, apperr.NotFound("uploaded file"))

		res, err := h.svc.CreateFromFile(context.Background(), invoice.FromFileParams{
			UploadedFileID: fileID, Source: invoice.SourceEmail, AutoParse: true,
		})
		require.NoError(t, err)
		assert.Equal(t, invoice.SourceEmail, res.Invoice.Source)
		assert.Empty(t, res.Extracted)
	})
}

func TestService_ReparseKeepsUserFields(t *testing.T) {
	h := newHarness(t)
	fileID := uuid.New()
	providerID := uuid.New()

	inv := h.repo.put(invoice.Invoice{
		Numero: "MANUAL-1", ProviderID: &providerID, UploadedFileID: &fileID, Moneda: "USD",
		UserFields: []string{invoice.FieldNumero, invoice.FieldProvider},
	})

	h.files.EXPECT().ReadAll(gomock.Any(), fileID).
		Return(&upload.File{ID: fileID, Filename: "f.txt", Mime: "text/plain"}, []byte(invoiceFile), nil)
	h.patterns.EXPECT().ApplyForProvider(gomock.Any(), gomock.Any(), &providerID).
		Return(pattern.Extraction{Fields: map[string]string{
			pattern.FieldNumero: "F001-000123",
			pattern.FieldMonto:  "99.90",
		}}, nil)

	res, err := h.svc.Reparse(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "MANUAL-1", res.Invoice.Numero)
	assert.True(t, dec("99.90").Equal(res.Invoice.MontoAplicable))
	assert.Equal(t, []string{invoice.FieldMonto}, res.Extracted)
}

func TestService_RefreshDueAlerts(t *testing.T) {
	h := newHarness(t)

	due := func(days int) *time.Time { return new(today.AddDate(0, 0, days)) }

	soon := h.repo.put(invoice.Invoice{Numero: "soon", TipoPago: invoice.TipoCredito, FechaVencimiento: due(3),
		Monto: dec("10"), MontoAplicable: dec("10")})
	far := h.repo.put(invoice.Invoice{Numero: "far", TipoPago: invoice.TipoCredito, FechaVencimiento: due(30),
		AlertaVencimiento: true, Monto: dec("10"), MontoAplicable: dec("10")})
	h.repo.put(invoice.Invoice{Numero: "late", TipoPago: invoice.TipoCredito, FechaVencimiento: due(-2),
		Monto: dec("10"), MontoAplicable: dec("10")})

	report, err := h.svc.RefreshDueAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, invoice.DueReport{Checked: 3, Flagged: 1, Cleared: 1, Overdue: 1}, report)

	got, _ := h.svc.Get(context.Background(), soon.ID)
	assert.True(t, got.AlertaVencimiento)

	got, _ = h.svc.Get(context.Background(), far.ID)
	assert.False(t, got.AlertaVencimiento)
}
