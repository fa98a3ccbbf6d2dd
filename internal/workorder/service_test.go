package workorder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    workorder.CreateParams
		setupMock func(m *workorder.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: workorder.CreateParams{
				Number:     "25-ot-001",
				MasterBL:   " mbl 001 ",
				Containers: "MSCU1234567 / TGHU7654321",
			},
			setupMock: func(m *workorder.MockRepository) {
				m.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, wo *workorder.WorkOrder) error {
						assert.Equal(t, "25OT001", wo.Number)
						assert.Equal(t, "MBL001", wo.MasterBL)
						assert.Equal(t, []string{"MSCU1234567", "TGHU7654321"}, wo.Containers)
						assert.Equal(t, workorder.TipoImport, wo.TipoOperacion)
						assert.Equal(t, workorder.SourceManual, wo.SourceOf(workorder.FieldMasterBL))
						assert.Equal(t, workorder.FieldSource(""), wo.SourceOf(workorder.FieldProvision))
						wo.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name:    "BadNumber",
			params:  workorder.CreateParams{Number: "OT-1"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "BadTipo",
			params:  workorder.CreateParams{Number: "25OT001", TipoOperacion: "transit"},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := workorder.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := workorder.NewService(repo, inlineTx{}, workorder.NewMockSyncer(ctrl), workorder.NewMockClients(ctrl))
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_Update_StampsManual(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	existing := &workorder.WorkOrder{
		ID:       id,
		Number:   "25OT001",
		MasterBL: "OLD",
		Sources: workorder.Sources{
			workorder.FieldMasterBL: workorder.SourceExcel,
			workorder.FieldETA:      workorder.SourceCSV,
		},
	}

	repo := workorder.NewMockRepository(ctrl)
	repo.EXPECT().GetForUpdate(gomock.Any(), id).Return(existing, nil)
	repo.EXPECT().Update(gomock.Any(), existing).Return(nil)

	svc := workorder.NewService(repo, inlineTx{}, workorder.NewMockSyncer(ctrl), workorder.NewMockClients(ctrl))
	got, err := svc.Update(context.Background(), id, workorder.UpdateParams{MasterBL: new("mbl 999")})
	require.NoError(t, err)

	assert.Equal(t, "MBL999", got.MasterBL)
	assert.Equal(t, workorder.SourceManual, got.SourceOf(workorder.FieldMasterBL))
	assert.Equal(t, workorder.SourceCSV, got.SourceOf(workorder.FieldETA))
}

func TestService_UpdateClient(t *testing.T) {
	var (
		id     = uuid.New()
		merged = uuid.New()
		root   = uuid.New()
	)

	t.Run("MergedAliasFollowsToRoot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		existing := &workorder.WorkOrder{ID: id, Number: "25OT001", Sources: workorder.Sources{}}

		repo := workorder.NewMockRepository(ctrl)
		repo.EXPECT().GetForUpdate(gomock.Any(), id).Return(existing, nil)
		repo.EXPECT().Update(gomock.Any(), existing).Return(nil)

		clients := workorder.NewMockClients(ctrl)
		clients.EXPECT().Canonical(gomock.Any(), merged).Return(root, nil)

		svc := workorder.NewService(repo, inlineTx{}, workorder.NewMockSyncer(ctrl), clients)
		got, err := svc.Update(context.Background(), id, workorder.UpdateParams{ClientID: &merged})
		require.NoError(t, err)

		require.NotNil(t, got.ClientID)
		assert.Equal(t, root, *got.ClientID)
		assert.Equal(t, workorder.SourceManual, got.SourceOf(workorder.FieldCliente))
	})

	t.Run("UnknownAliasRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		existing := &workorder.WorkOrder{ID: id, Number: "25OT001", Sources: workorder.Sources{}}

		repo := workorder.NewMockRepository(ctrl)
		repo.EXPECT().GetForUpdate(gomock.Any(), id).Return(existing, nil)

		clients := workorder.NewMockClients(ctrl)
		clients.EXPECT().Canonical(gomock.Any(), merged).Return(uuid.Nil, apperr.NotFound("client alias"))

		svc := workorder.NewService(repo, inlineTx{}, workorder.NewMockSyncer(ctrl), clients)
		_, err := svc.Update(context.Background(), id, workorder.UpdateParams{ClientID: &merged})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestApplyProvision(t *testing.T) {
	items := []workorder.ProvisionItem{
		{Concept: "Flete", Amount: decimal.RequireFromString("1200.50")},
		{Concept: "THC", Amount: decimal.RequireFromString("300")},
	}

	t.Run("SumsItems", func(t *testing.T) {
		got, err := workorder.ApplyProvision(nil, workorder.ProvisionParams{Items: items, Source: workorder.SourceExcel})
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1500.50").Equal(got.Total))
		assert.False(t, got.Locked)
	})

	locked := &workorder.ProvisionSnapshot{Total: decimal.NewFromInt(10), Source: workorder.SourceCSV, Locked: true}

	t.Run("LockedRejectsSameRank", func(t *testing.T) {
		_, err := workorder.ApplyProvision(locked, workorder.ProvisionParams{Items: items, Source: workorder.SourceCSV})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("LockedAcceptsHigherRank", func(t *testing.T) {
		got, err := workorder.ApplyProvision(locked, workorder.ProvisionParams{Items: items, Source: workorder.SourceManual})
		require.NoError(t, err)
		assert.Equal(t, workorder.SourceManual, got.Source)
	})

	t.Run("UnlockThenWrite", func(t *testing.T) {
		got, err := workorder.ApplyProvision(locked, workorder.ProvisionParams{Items: items, Source: workorder.SourceExcel, Unlock: true})
		require.NoError(t, err)
		assert.False(t, got.Locked)
	})

	t.Run("NegativeTotal", func(t *testing.T) {
		total := decimal.NewFromInt(-1)
		_, err := workorder.ApplyProvision(nil, workorder.ProvisionParams{Total: &total, Source: workorder.SourceManual})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestService_Transition(t *testing.T) {
	id := uuid.New()

	t.Run("PropagatesToLinkedInvoices", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		wo := &workorder.WorkOrder{ID: id, EstadoProvision: provision.StatePendiente}

		repo := workorder.NewMockRepository(ctrl)
		repo.EXPECT().GetForUpdate(gomock.Any(), id).Return(wo, nil)
		repo.EXPECT().Update(gomock.Any(), wo).Return(nil)

		sync := workorder.NewMockSyncer(ctrl)
		sync.EXPECT().
			OnWorkOrderSaved(gomock.Any(), id, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, st provision.Stamp) (int, error) {
				assert.Equal(t, provision.StateProvisionada, st.State)
				assert.NotNil(t, st.FechaProvision)

				return 2, nil
			})

		svc := workorder.NewService(repo, inlineTx{}, sync, workorder.NewMockClients(ctrl))
		got, err := svc.Transition(context.Background(), id, workorder.TransitionParams{To: provision.StateProvisionada})
		require.NoError(t, err)
		assert.Equal(t, provision.StateProvisionada, got.EstadoProvision)
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := workorder.NewMockRepository(ctrl)
		repo.EXPECT().GetForUpdate(gomock.Any(), id).
			Return(&workorder.WorkOrder{ID: id, EstadoProvision: provision.StateAnulada}, nil)

		svc := workorder.NewService(repo, inlineTx{}, workorder.NewMockSyncer(ctrl), workorder.NewMockClients(ctrl))
		_, err := svc.Transition(context.Background(), id, workorder.TransitionParams{To: provision.StateProvisionada})
		assert.ErrorIs(t, err, apperr.ErrStateTransition)
	})

	t.Run("KeepsExplicitBillingDate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		billed := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		wo := &workorder.WorkOrder{ID: id, EstadoProvision: provision.StateProvisionada}

		repo := workorder.NewMockRepository(ctrl)
		repo.EXPECT().GetForUpdate(gomock.Any(), id).Return(wo, nil)
		repo.EXPECT().Update(gomock.Any(), wo).Return(nil)

		sync := workorder.NewMockSyncer(ctrl)
		sync.EXPECT().OnWorkOrderSaved(gomock.Any(), id, gomock.Any()).Return(0, nil)

		svc := workorder.NewService(repo, inlineTx{}, sync, workorder.NewMockClients(ctrl))
		got, err := svc.Transition(context.Background(), id, workorder.TransitionParams{
			To:               provision.StateRevision,
			FechaFacturacion: &billed,
		})
		require.NoError(t, err)
		assert.Equal(t, billed, *got.FechaFacturacion)
	})
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		setupMock func(m *workorder.MockRepository)
		wantErr   bool
	}{
		{
			name: "Success",
			setupMock: func(m *workorder.MockRepository) {
				m.EXPECT().CountLiveInvoices(gomock.Any(), id).Return(0, nil)
				m.EXPECT().Delete(gomock.Any(), id).Return(nil)
			},
		},
		{
			name: "HasInvoices",
			setupMock: func(m *workorder.MockRepository) {
				m.EXPECT().CountLiveInvoices(gomock.Any(), id).Return(3, nil)
			},
			wantErr: true,
		},
		{
			name: "CountError",
			setupMock: func(m *workorder.MockRepository) {
				m.EXPECT().CountLiveInvoices(gomock.Any(), id).Return(0, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := workorder.NewMockRepository(ctrl)
			tt.setupMock(repo)

			err := workorder.NewService(repo, inlineTx{}, workorder.NewMockSyncer(ctrl), workorder.NewMockClients(ctrl)).Delete(context.Background(), id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_FindBy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := workorder.NewMockRepository(ctrl)
	repo.EXPECT().FindBy(gomock.Any(), workorder.MatchContainer, "MSCU1234567").
		Return([]*workorder.WorkOrder{{Number: "25OT001"}}, nil)
	repo.EXPECT().FindBy(gomock.Any(), workorder.MatchNumber, "25OT002").Return(nil, nil)

	svc := workorder.NewService(repo, inlineTx{}, workorder.NewMockSyncer(ctrl), workorder.NewMockClients(ctrl))

	got, err := svc.FindBy(context.Background(), workorder.MatchContainer, "cont: mscu1234567.")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.FindBy(context.Background(), workorder.MatchNumber, "25-ot-002")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.FindBy(context.Background(), workorder.MatchContainer, "no container here")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_GetByNumber_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := workorder.NewMockRepository(ctrl)
	repo.EXPECT().GetByNumbers(gomock.Any(), []string{"25OT404"}).Return(map[string]*workorder.WorkOrder{}, nil)

	_, err := workorder.NewService(repo, inlineTx{}, workorder.NewMockSyncer(ctrl), workorder.NewMockClients(ctrl)).GetByNumber(context.Background(), "25ot404")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
