package service

import (
	"context"
	"fmt"
	"time"

	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports"
	"festival-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CommissionServiceImpl implements ports.CommissionService.
//
// Whether a festival's commission was withdrawn is answered by the dedicated
// withdrawal record, never by scanning ledger descriptions; the ledger
// COMMISSION entry is audit trail only. The recorded amount is authoritative
// afterwards: profit is read from it, not recomputed from the rate.
type CommissionServiceImpl struct {
	commissionRepo ports.CommissionRepository
	festivalRepo   ports.FestivalRepository
	walletRepo     ports.WalletRepository
	ledgerRepo     ports.LedgerRepository
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewCommissionService creates a new CommissionServiceImpl.
func NewCommissionService(
	commissionRepo ports.CommissionRepository,
	festivalRepo ports.FestivalRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *CommissionServiceImpl {
	return &CommissionServiceImpl{
		commissionRepo: commissionRepo,
		festivalRepo:   festivalRepo,
		walletRepo:     walletRepo,
		ledgerRepo:     ledgerRepo,
		transactor:     transactor,
		log:            log,
	}
}

// Estimate derives the commission amount. Integer floor, no rounding.
func (s *CommissionServiceImpl) Estimate(revenue int64, ratePercent int) int64 {
	return domain.EstimateCommission(revenue, ratePercent)
}

// HasBeenWithdrawn reports whether the festival's commission was taken.
func (s *CommissionServiceImpl) HasBeenWithdrawn(ctx context.Context, festivalID uuid.UUID) (bool, error) {
	w, err := s.commissionRepo.GetByFestival(ctx, festivalID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("get withdrawal: %w", err))
	}
	return w != nil, nil
}

// Withdraw takes the commission from a festival's recorded revenue into the
// admin's sub-wallet for that festival, exactly once. The uniqueness
// constraint on the withdrawal row is the hard guard; the pre-check only
// gives a friendlier error.
func (s *CommissionServiceImpl) Withdraw(ctx context.Context, festivalID uuid.UUID, ratePercent int, adminID uuid.UUID) (*domain.CommissionWithdrawal, error) {
	if !domain.ValidCommissionRate(ratePercent) {
		return nil, apperror.ErrInvalidCommissionRate()
	}

	festival, err := s.festivalRepo.GetByID(ctx, festivalID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get festival: %w", err))
	}
	if festival == nil {
		return nil, apperror.ErrNotFound("Festival")
	}

	existing, err := s.commissionRepo.GetByFestival(ctx, festivalID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check withdrawal: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrCommissionAlreadyWithdrawn()
	}

	amount := domain.EstimateCommission(festival.TotalRevenue, ratePercent)
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.ensureAdminFestivalWallet(ctx, adminID, festivalID)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	withdrawal := &domain.CommissionWithdrawal{
		ID:          uuid.New(),
		FestivalID:  festivalID,
		AccountID:   adminID,
		RatePercent: ratePercent,
		Amount:      amount,
		CreatedAt:   now,
	}
	if err := s.commissionRepo.Create(ctx, dbTx, withdrawal); err != nil {
		return nil, err
	}

	locked, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, wallet.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if locked == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	if err := s.walletRepo.ApplyDelta(ctx, dbTx, wallet.ID, amount); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		AccountID:   adminID,
		Type:        domain.LedgerEntryCommission,
		Amount:      amount,
		Description: domain.CommissionDescription(festival.Name, ratePercent),
		CreatedAt:   now,
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("festival_id", festivalID.String()).
		Str("admin_id", adminID.String()).
		Int("rate_percent", ratePercent).
		Int64("amount", amount).
		Msg("commission withdrawn")

	return withdrawal, nil
}

// Status reports the festival's commission position. Profit reads the
// recorded withdrawal amount.
func (s *CommissionServiceImpl) Status(ctx context.Context, festivalID uuid.UUID) (*ports.CommissionStatus, error) {
	festival, err := s.festivalRepo.GetByID(ctx, festivalID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get festival: %w", err))
	}
	if festival == nil {
		return nil, apperror.ErrNotFound("Festival")
	}

	status := &ports.CommissionStatus{
		FestivalID:            festivalID,
		Revenue:               festival.TotalRevenue,
		ProfitAfterCommission: festival.TotalRevenue,
	}

	withdrawal, err := s.commissionRepo.GetByFestival(ctx, festivalID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get withdrawal: %w", err))
	}
	if withdrawal != nil {
		status.Withdrawn = true
		status.WithdrawnAmount = withdrawal.Amount
		status.ProfitAfterCommission = festival.TotalRevenue - withdrawal.Amount
	}

	return status, nil
}

func (s *CommissionServiceImpl) ensureAdminFestivalWallet(ctx context.Context, adminID, festivalID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetFestival(ctx, adminID, festivalID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get festival wallet: %w", err))
	}
	if wallet == nil {
		fresh := domain.NewFestivalWallet(adminID, festivalID, time.Now().UTC())
		if err := s.walletRepo.Create(ctx, fresh); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create festival wallet: %w", err))
		}
		// Concurrent first touches race on the owner's unique index; the
		// loser's insert is a no-op, so re-read the surviving row.
		wallet, err = s.walletRepo.GetFestival(ctx, adminID, festivalID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("reread festival wallet: %w", err))
		}
		if wallet == nil {
			return nil, apperror.InternalError(fmt.Errorf("festival wallet missing after create"))
		}
	}
	return wallet, nil
}
