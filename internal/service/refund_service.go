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

// RefundServiceImpl implements ports.RefundService.
//
// The drain policy is drain-live: the snapshot embedded at request time is
// audit data, and processing re-reads the wallet under lock and drains
// exactly the live balance to zero. The snapshot and the drained amount can
// legitimately differ when the wallet moved in between.
type RefundServiceImpl struct {
	refundRepo ports.RefundRequestRepository
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	transactor ports.DBTransactor
	minBalance int64
	log        zerolog.Logger
}

// NewRefundService creates a new RefundServiceImpl. minBalance is the
// threshold a personal wallet must exceed before a refund may be requested.
func NewRefundService(
	refundRepo ports.RefundRequestRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	minBalance int64,
	log zerolog.Logger,
) *RefundServiceImpl {
	return &RefundServiceImpl{
		refundRepo: refundRepo,
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		transactor: transactor,
		minBalance: minBalance,
		log:        log,
	}
}

// CreateRequest files a pending refund request snapshotting the customer's
// personal wallet.
func (s *RefundServiceImpl) CreateRequest(ctx context.Context, accountID uuid.UUID, message string) (*domain.RefundRequest, error) {
	wallet, err := s.walletRepo.GetPersonal(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get personal wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	if wallet.Balance <= s.minBalance {
		return nil, apperror.ErrRefundBelowMinimum(s.minBalance)
	}

	req, err := domain.NewRefundRequest(accountID, domain.RefundSnapshot{
		WalletID: wallet.ID,
		Balance:  wallet.Balance,
	}, message, time.Now().UTC())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build refund request: %w", err))
	}

	if err := s.refundRepo.Create(ctx, req); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create refund request: %w", err))
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("account_id", accountID.String()).
		Int64("snapshot_balance", wallet.Balance).
		Msg("refund request created")

	return req, nil
}

// Process consumes a pending request exactly once: flips it to PROCESSED,
// drains the wallet's live balance to zero, and appends a REFUND ledger entry
// for the drained amount. A second attempt is rejected without touching the
// wallet or the ledger.
func (s *RefundServiceImpl) Process(ctx context.Context, requestID uuid.UUID) (*ports.RefundResult, error) {
	req, err := s.refundRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get refund request: %w", err))
	}
	if req == nil {
		return nil, apperror.ErrNotFound("Refund request")
	}
	if !req.IsPending() {
		return nil, apperror.ErrRefundAlreadyProcessed()
	}

	snapshot, err := req.Snapshot()
	if err != nil || snapshot.WalletID == uuid.Nil {
		return nil, apperror.ErrMissingWalletLink()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// The conditional update is the real guard; the IsPending read above only
	// short-circuits the common case.
	flipped, err := s.refundRepo.MarkProcessed(ctx, dbTx, req.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark processed: %w", err))
	}
	if !flipped {
		return nil, apperror.ErrRefundAlreadyProcessed()
	}

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, snapshot.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrMissingWalletLink()
	}

	drained := wallet.Balance
	if drained > 0 {
		if err := s.walletRepo.ApplyDelta(ctx, dbTx, wallet.ID, -drained); err != nil {
			return nil, err
		}

		entry := &domain.LedgerEntry{
			ID:          uuid.New(),
			AccountID:   req.AccountID,
			Type:        domain.LedgerEntryRefund,
			Amount:      drained,
			Description: domain.RefundDescription(req.ID),
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	req.Status = domain.RefundStatusProcessed
	req.UpdatedAt = time.Now().UTC()

	if drained != snapshot.Balance {
		s.log.Warn().
			Str("request_id", req.ID.String()).
			Int64("snapshot_balance", snapshot.Balance).
			Int64("drained", drained).
			Msg("wallet moved between refund request and processing")
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("account_id", req.AccountID.String()).
		Int64("drained", drained).
		Msg("refund request processed")

	return &ports.RefundResult{Request: req, DrainedAmount: drained}, nil
}

// Delete removes a request at any status. Admin only; enforced at the
// transport layer.
func (s *RefundServiceImpl) Delete(ctx context.Context, requestID uuid.UUID) error {
	req, err := s.refundRepo.GetByID(ctx, requestID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get refund request: %w", err))
	}
	if req == nil {
		return apperror.ErrNotFound("Refund request")
	}
	if err := s.refundRepo.Delete(ctx, requestID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete refund request: %w", err))
	}

	s.log.Info().Str("request_id", requestID.String()).Msg("refund request deleted")
	return nil
}

// List returns requests, optionally filtered by status.
func (s *RefundServiceImpl) List(ctx context.Context, status *domain.RefundStatus) ([]domain.RefundRequest, error) {
	reqs, err := s.refundRepo.List(ctx, status)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list refund requests: %w", err))
	}
	return reqs, nil
}
