package service

import (
	"context"
	"testing"
	"time"

	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports/mocks"
	"festival-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type commissionTestDeps struct {
	svc            *CommissionServiceImpl
	commissionRepo *mocks.MockCommissionRepository
	festivalRepo   *mocks.MockFestivalRepository
	walletRepo     *mocks.MockWalletRepository
	ledgerRepo     *mocks.MockLedgerRepository
	transactor     *mocks.MockDBTransactor
	ctrl           *gomock.Controller
}

func setupCommissionService(t *testing.T) *commissionTestDeps {
	ctrl := gomock.NewController(t)
	d := &commissionTestDeps{
		commissionRepo: mocks.NewMockCommissionRepository(ctrl),
		festivalRepo:   mocks.NewMockFestivalRepository(ctrl),
		walletRepo:     mocks.NewMockWalletRepository(ctrl),
		ledgerRepo:     mocks.NewMockLedgerRepository(ctrl),
		transactor:     mocks.NewMockDBTransactor(ctrl),
		ctrl:           ctrl,
	}
	d.svc = NewCommissionService(
		d.commissionRepo, d.festivalRepo, d.walletRepo, d.ledgerRepo,
		d.transactor, zerolog.Nop(),
	)
	return d
}

func TestCommissionService_Estimate(t *testing.T) {
	d := setupCommissionService(t)
	defer d.ctrl.Finish()

	tests := []struct {
		name    string
		revenue int64
		rate    int
		want    int64
	}{
		{"exact division", 2_000_000, 15, 300_000},
		{"integer floor", 999_999, 10, 99_999},
		{"zero revenue", 0, 20, 0},
		{"small revenue floors to zero", 5, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.svc.Estimate(tt.revenue, tt.rate))
		})
	}
}

func TestCommissionService_Withdraw_Success(t *testing.T) {
	d := setupCommissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	adminID := uuid.New()
	festival := &domain.Festival{ID: uuid.New(), Name: "Summer Night Market", TotalRevenue: 2_000_000}
	wallet := domain.NewFestivalWallet(adminID, festival.ID, time.Now().UTC())
	tx := &mockTx{}

	d.festivalRepo.EXPECT().GetByID(ctx, festival.ID).Return(festival, nil)
	d.commissionRepo.EXPECT().GetByFestival(ctx, festival.ID).Return(nil, nil)
	d.walletRepo.EXPECT().GetFestival(ctx, adminID, festival.ID).Return(wallet, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.commissionRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, w *domain.CommissionWithdrawal) error {
			assert.Equal(t, festival.ID, w.FestivalID)
			assert.Equal(t, adminID, w.AccountID)
			assert.Equal(t, 15, w.RatePercent)
			assert.Equal(t, int64(300_000), w.Amount)
			return nil
		})
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.walletRepo.EXPECT().ApplyDelta(ctx, tx, wallet.ID, int64(300_000)).Return(nil)
	d.ledgerRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, e *domain.LedgerEntry) error {
			assert.Equal(t, domain.LedgerEntryCommission, e.Type)
			assert.Equal(t, int64(300_000), e.Amount)
			return nil
		})

	withdrawal, err := d.svc.Withdraw(ctx, festival.ID, 15, adminID)
	require.NoError(t, err)
	assert.Equal(t, int64(300_000), withdrawal.Amount)
}

func TestCommissionService_Withdraw_FestivalWalletCreationLosesRace(t *testing.T) {
	d := setupCommissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	adminID := uuid.New()
	festival := &domain.Festival{ID: uuid.New(), Name: "Summer Night Market", TotalRevenue: 2_000_000}
	// The admin's festival wallet was created concurrently; the dropped
	// insert must not orphan the credit, which lands on the surviving row.
	survivor := domain.NewFestivalWallet(adminID, festival.ID, time.Now().UTC())
	tx := &mockTx{}

	d.festivalRepo.EXPECT().GetByID(ctx, festival.ID).Return(festival, nil)
	d.commissionRepo.EXPECT().GetByFestival(ctx, festival.ID).Return(nil, nil)
	first := d.walletRepo.EXPECT().GetFestival(ctx, adminID, festival.ID).Return(nil, nil)
	d.walletRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().GetFestival(ctx, adminID, festival.ID).Return(survivor, nil).After(first)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.commissionRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, survivor.ID).Return(survivor, nil)
	d.walletRepo.EXPECT().ApplyDelta(ctx, tx, survivor.ID, int64(300_000)).Return(nil)
	d.ledgerRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	withdrawal, err := d.svc.Withdraw(ctx, festival.ID, 15, adminID)
	require.NoError(t, err)
	assert.Equal(t, int64(300_000), withdrawal.Amount)
}

func TestCommissionService_Withdraw_InvalidRate(t *testing.T) {
	d := setupCommissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	for _, rate := range []int{0, 4, 31, -10} {
		_, err := d.svc.Withdraw(ctx, uuid.New(), rate, uuid.New())
		assertAppErrCode(t, err, "COM_001")
	}
}

func TestCommissionService_Withdraw_AlreadyWithdrawn(t *testing.T) {
	d := setupCommissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	festival := &domain.Festival{ID: uuid.New(), Name: "Summer Night Market", TotalRevenue: 2_000_000}

	d.festivalRepo.EXPECT().GetByID(ctx, festival.ID).Return(festival, nil)
	d.commissionRepo.EXPECT().GetByFestival(ctx, festival.ID).Return(&domain.CommissionWithdrawal{
		ID:         uuid.New(),
		FestivalID: festival.ID,
		Amount:     300_000,
	}, nil)

	_, err := d.svc.Withdraw(ctx, festival.ID, 15, uuid.New())
	assertAppErrCode(t, err, "COM_002")
}

func TestCommissionService_Withdraw_UniqueRowGuard(t *testing.T) {
	d := setupCommissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	adminID := uuid.New()
	festival := &domain.Festival{ID: uuid.New(), Name: "Summer Night Market", TotalRevenue: 2_000_000}
	wallet := domain.NewFestivalWallet(adminID, festival.ID, time.Now().UTC())
	tx := &mockTx{}

	// Pre-check sees nothing, but a concurrent withdrawal wins the insert
	// race. The repository surfaces the unique violation as COM_002.
	d.festivalRepo.EXPECT().GetByID(ctx, festival.ID).Return(festival, nil)
	d.commissionRepo.EXPECT().GetByFestival(ctx, festival.ID).Return(nil, nil)
	d.walletRepo.EXPECT().GetFestival(ctx, adminID, festival.ID).Return(wallet, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.commissionRepo.EXPECT().Create(ctx, tx, gomock.Any()).
		Return(apperror.ErrCommissionAlreadyWithdrawn())

	_, err := d.svc.Withdraw(ctx, festival.ID, 15, adminID)
	assertAppErrCode(t, err, "COM_002")
}

func TestCommissionService_Withdraw_FestivalNotFound(t *testing.T) {
	d := setupCommissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	festivalID := uuid.New()
	d.festivalRepo.EXPECT().GetByID(ctx, festivalID).Return(nil, nil)

	_, err := d.svc.Withdraw(ctx, festivalID, 15, uuid.New())
	assertAppErrCode(t, err, "SET_007")
}

func TestCommissionService_Status(t *testing.T) {
	d := setupCommissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	festival := &domain.Festival{ID: uuid.New(), Name: "Summer Night Market", TotalRevenue: 2_000_000}

	t.Run("before withdrawal", func(t *testing.T) {
		d.festivalRepo.EXPECT().GetByID(ctx, festival.ID).Return(festival, nil)
		d.commissionRepo.EXPECT().GetByFestival(ctx, festival.ID).Return(nil, nil)

		status, err := d.svc.Status(ctx, festival.ID)
		require.NoError(t, err)
		assert.False(t, status.Withdrawn)
		assert.Equal(t, int64(2_000_000), status.Revenue)
		assert.Equal(t, int64(2_000_000), status.ProfitAfterCommission)
	})

	t.Run("after withdrawal", func(t *testing.T) {
		d.festivalRepo.EXPECT().GetByID(ctx, festival.ID).Return(festival, nil)
		d.commissionRepo.EXPECT().GetByFestival(ctx, festival.ID).Return(&domain.CommissionWithdrawal{
			ID:         uuid.New(),
			FestivalID: festival.ID,
			Amount:     300_000,
		}, nil)

		status, err := d.svc.Status(ctx, festival.ID)
		require.NoError(t, err)
		assert.True(t, status.Withdrawn)
		assert.Equal(t, int64(300_000), status.WithdrawnAmount)
		assert.Equal(t, int64(1_700_000), status.ProfitAfterCommission)
	})
}
