package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports"
	"festival-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// SettlementServiceImpl implements ports.SettlementService.
//
// Wallet-method settlements run as one database transaction: both wallets are
// locked (in wallet-ID order, to avoid lock cycles between concurrent
// settlements), the source is debited and the booth credited by signed deltas,
// and the order, its items and the PAYMENT ledger entry commit together with
// the idempotency log. A replayed reference returns the recorded result.
type SettlementServiceImpl struct {
	orderRepo     ports.OrderRepository
	walletRepo    ports.WalletRepository
	ledgerRepo    ports.LedgerRepository
	festivalRepo  ports.FestivalRepository
	idempRepo     ports.IdempotencyRepository
	idempCache    ports.IdempotencyCache
	gateway       ports.PaymentGateway
	sigSvc        ports.SignatureService
	transactor    ports.DBTransactor
	gatewaySecret string
	log           zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	orderRepo ports.OrderRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	festivalRepo ports.FestivalRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	gateway ports.PaymentGateway,
	sigSvc ports.SignatureService,
	transactor ports.DBTransactor,
	gatewaySecret string,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		orderRepo:     orderRepo,
		walletRepo:    walletRepo,
		ledgerRepo:    ledgerRepo,
		festivalRepo:  festivalRepo,
		idempRepo:     idempRepo,
		idempCache:    idempCache,
		gateway:       gateway,
		sigSvc:        sigSvc,
		transactor:    transactor,
		gatewaySecret: gatewaySecret,
		log:           log,
	}
}

// Settle turns a bill into an order. Wallet methods settle synchronously;
// BANK_TRANSFER opens a checkout session and leaves the order pending until
// the gateway return.
func (s *SettlementServiceImpl) Settle(ctx context.Context, req ports.SettlementRequest) (*ports.SettlementResult, error) {
	if req.CustomerID == uuid.Nil {
		return nil, apperror.ErrNoCustomerSelected()
	}
	if len(req.Lines) == 0 {
		return nil, apperror.ErrEmptyBill()
	}
	if req.Method == "" {
		return nil, apperror.ErrNoPaymentMethod()
	}
	if req.ReferenceID == "" {
		return nil, apperror.Validation("reference_id is required")
	}
	if req.Method == domain.PaymentMethodWalletFestival && req.FestivalID == nil {
		return nil, apperror.Validation("festival_id is required for festival wallet payments")
	}

	bill, err := rebuildBill(req.Lines)
	if err != nil {
		return nil, err
	}
	total := bill.Total()
	if total <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	idempKey := domain.BuildSettlementKey(req.CustomerID, req.ReferenceID)

	// Layer 1: Redis idempotency check
	cached, err := s.idempCache.Get(ctx, idempKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return unmarshalCachedResult(cached)
	}

	// Layer 2: DB idempotency check
	idempLog, err := s.idempRepo.Get(ctx, idempKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if idempLog != nil {
		return unmarshalCachedResult(idempLog.ResponseJSON)
	}

	booth, err := s.festivalRepo.GetBooth(ctx, req.BoothID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get booth: %w", err))
	}
	if booth == nil {
		return nil, apperror.ErrNotFound("Booth")
	}

	if req.Method == domain.PaymentMethodBankTransfer {
		return s.settleBankTransfer(ctx, req, bill, booth, idempKey)
	}
	return s.settleWallet(ctx, req, bill, booth, idempKey)
}

// settleWallet settles a WALLET_MAIN or WALLET_FESTIVAL bill atomically.
func (s *SettlementServiceImpl) settleWallet(
	ctx context.Context,
	req ports.SettlementRequest,
	bill *domain.Bill,
	booth *domain.Booth,
	idempKey string,
) (*ports.SettlementResult, error) {
	total := bill.Total()

	sourceWallet, err := s.ensureSourceWallet(ctx, req)
	if err != nil {
		return nil, err
	}
	boothWallet, err := s.ensureBoothWallet(ctx, booth.ID)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	source, _, err := s.lockWalletPair(ctx, dbTx, sourceWallet.ID, boothWallet.ID)
	if err != nil {
		return nil, err
	}
	if !source.CanCover(total) {
		return nil, apperror.ErrInsufficientBalance()
	}

	// Signed deltas, never absolute writes. The storage layer re-checks that
	// no balance goes negative even if a concurrent drain slipped past the
	// CanCover gate.
	if err := s.walletRepo.ApplyDelta(ctx, dbTx, sourceWallet.ID, -total); err != nil {
		return nil, err
	}
	if err := s.walletRepo.ApplyDelta(ctx, dbTx, boothWallet.ID, total); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:          uuid.New(),
		ReferenceID: req.ReferenceID,
		AccountID:   req.CustomerID,
		BoothID:     booth.ID,
		TotalAmount: total,
		Notes:       req.Notes,
		Status:      domain.OrderStatusCompleted,
		CreatedAt:   now,
		SettledAt:   &now,
	}
	if err := s.orderRepo.Create(ctx, dbTx, order); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create order: %w", err))
	}

	items := billToItems(order.ID, bill)
	if err := s.orderRepo.CreateItems(ctx, dbTx, items); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create order items: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		AccountID:   req.CustomerID,
		Type:        domain.LedgerEntryPayment,
		Amount:      total,
		Description: domain.PaymentDescription(order.ID, req.Method.SourceWalletKind()),
		CreatedAt:   now,
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
	}

	result := &ports.SettlementResult{Order: order, Items: items}
	respJSON, err := json.Marshal(result)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
	}
	if err := s.idempRepo.Create(ctx, dbTx, &domain.IdempotencyLog{
		Key:          idempKey,
		OrderID:      order.ID,
		ResponseJSON: respJSON,
		CreatedAt:    now,
	}); err != nil {
		// A racing settlement on the same reference commits the log first;
		// surface its duplicate code, not an internal error.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.InternalError(fmt.Errorf("save idempotency log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: cache in Redis (best-effort)
	if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("customer_id", req.CustomerID.String()).
		Str("booth_id", booth.ID.String()).
		Str("method", string(req.Method)).
		Int64("amount", total).
		Msg("settlement completed")

	return result, nil
}

// settleBankTransfer opens a gateway checkout session and records a pending
// order. No wallet moves until the gateway return is confirmed.
func (s *SettlementServiceImpl) settleBankTransfer(
	ctx context.Context,
	req ports.SettlementRequest,
	bill *domain.Bill,
	booth *domain.Booth,
	idempKey string,
) (*ports.SettlementResult, error) {
	total := bill.Total()
	now := time.Now().UTC()
	order := &domain.Order{
		ID:          uuid.New(),
		ReferenceID: req.ReferenceID,
		AccountID:   req.CustomerID,
		BoothID:     booth.ID,
		TotalAmount: total,
		Notes:       req.Notes,
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
	}

	// Open the session before persisting anything. A failed commit leaves an
	// orphan session at the gateway and no local state, never the reverse.
	session, err := s.gateway.CreateCheckout(ctx, ports.CheckoutRequest{
		OrderID:     order.ID,
		ReferenceID: req.ReferenceID,
		Amount:      total,
		Description: fmt.Sprintf("Booth %s order", booth.Name),
	})
	if err != nil {
		return nil, apperror.ErrGatewayUnavailable(err)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.orderRepo.Create(ctx, dbTx, order); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create order: %w", err))
	}
	items := billToItems(order.ID, bill)
	if err := s.orderRepo.CreateItems(ctx, dbTx, items); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create order items: %w", err))
	}

	result := &ports.SettlementResult{Order: order, Items: items, CheckoutURL: session.CheckoutURL}
	respJSON, err := json.Marshal(result)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
	}
	if err := s.idempRepo.Create(ctx, dbTx, &domain.IdempotencyLog{
		Key:          idempKey,
		OrderID:      order.ID,
		ResponseJSON: respJSON,
		CreatedAt:    now,
	}); err != nil {
		// A racing settlement on the same reference commits the log first;
		// surface its duplicate code, not an internal error.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.InternalError(fmt.Errorf("save idempotency log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("session_id", session.SessionID).
		Int64("amount", total).
		Msg("checkout session opened")

	return result, nil
}

// ConfirmReturn settles a pending bank-transfer order after the gateway
// redirects back. The conditional PENDING -> COMPLETED update makes a
// replayed return a rejected no-op.
func (s *SettlementServiceImpl) ConfirmReturn(ctx context.Context, req ports.ReturnRequest) (*ports.SettlementResult, error) {
	payload := req.OrderID.String() + ":" + req.SessionID
	if !s.sigSvc.Verify(s.gatewaySecret, payload, req.Signature) {
		return nil, apperror.ErrInvalidSignature()
	}

	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("Order")
	}

	boothWallet, err := s.ensureBoothWallet(ctx, order.BoothID)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	completed, err := s.orderRepo.CompleteIfPending(ctx, dbTx, order.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("complete order: %w", err))
	}
	if !completed {
		return nil, apperror.ErrOrderNotSettleable()
	}

	if err := s.walletRepo.ApplyDelta(ctx, dbTx, boothWallet.ID, order.TotalAmount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		AccountID:   order.AccountID,
		Type:        domain.LedgerEntryPayment,
		Amount:      order.TotalAmount,
		Description: domain.BankPaymentDescription(order.ID),
		CreatedAt:   now,
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	order.Status = domain.OrderStatusCompleted
	order.SettledAt = &now

	items, err := s.orderRepo.ListItems(ctx, order.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to load order items after return")
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Int64("amount", order.TotalAmount).
		Msg("bank transfer settled on gateway return")

	return &ports.SettlementResult{Order: order, Items: items}, nil
}

// Topup credits a personal wallet and appends a TOPUP ledger entry.
func (s *SettlementServiceImpl) Topup(ctx context.Context, accountID uuid.UUID, amount int64) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.ensurePersonalWallet(ctx, accountID)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

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

	now := time.Now().UTC()
	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		AccountID:   accountID,
		Type:        domain.LedgerEntryTopup,
		Amount:      amount,
		Description: domain.TopupDescription(amount),
		CreatedAt:   now,
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	locked.Balance += amount

	s.log.Info().
		Str("account_id", accountID.String()).
		Int64("amount", amount).
		Int64("balance", locked.Balance).
		Msg("wallet topped up")

	return locked, nil
}

// ensureSourceWallet resolves (lazily creating) the wallet the chosen payment
// method debits.
func (s *SettlementServiceImpl) ensureSourceWallet(ctx context.Context, req ports.SettlementRequest) (*domain.Wallet, error) {
	if req.Method == domain.PaymentMethodWalletFestival {
		wallet, err := s.walletRepo.GetFestival(ctx, req.CustomerID, *req.FestivalID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get festival wallet: %w", err))
		}
		if wallet == nil {
			fresh := domain.NewFestivalWallet(req.CustomerID, *req.FestivalID, time.Now().UTC())
			if err := s.walletRepo.Create(ctx, fresh); err != nil {
				return nil, apperror.InternalError(fmt.Errorf("create festival wallet: %w", err))
			}
			// The insert is a no-op when a concurrent first touch won the
			// owner's unique index; re-read so every caller converges on the
			// surviving row.
			wallet, err = s.walletRepo.GetFestival(ctx, req.CustomerID, *req.FestivalID)
			if err != nil {
				return nil, apperror.InternalError(fmt.Errorf("reread festival wallet: %w", err))
			}
			if wallet == nil {
				return nil, apperror.InternalError(fmt.Errorf("festival wallet missing after create"))
			}
		}
		return wallet, nil
	}
	return s.ensurePersonalWallet(ctx, req.CustomerID)
}

func (s *SettlementServiceImpl) ensurePersonalWallet(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetPersonal(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get personal wallet: %w", err))
	}
	if wallet == nil {
		fresh := domain.NewPersonalWallet(accountID, time.Now().UTC())
		if err := s.walletRepo.Create(ctx, fresh); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create personal wallet: %w", err))
		}
		wallet, err = s.walletRepo.GetPersonal(ctx, accountID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("reread personal wallet: %w", err))
		}
		if wallet == nil {
			return nil, apperror.InternalError(fmt.Errorf("personal wallet missing after create"))
		}
	}
	return wallet, nil
}

func (s *SettlementServiceImpl) ensureBoothWallet(ctx context.Context, boothID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetBooth(ctx, boothID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get booth wallet: %w", err))
	}
	if wallet == nil {
		fresh := domain.NewBoothWallet(boothID, time.Now().UTC())
		if err := s.walletRepo.Create(ctx, fresh); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create booth wallet: %w", err))
		}
		wallet, err = s.walletRepo.GetBooth(ctx, boothID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("reread booth wallet: %w", err))
		}
		if wallet == nil {
			return nil, apperror.InternalError(fmt.Errorf("booth wallet missing after create"))
		}
	}
	return wallet, nil
}

// lockWalletPair acquires FOR UPDATE locks on both wallets in wallet-ID byte
// order, then returns them as (first requested, second requested).
func (s *SettlementServiceImpl) lockWalletPair(ctx context.Context, tx pgx.Tx, firstID, secondID uuid.UUID) (*domain.Wallet, *domain.Wallet, error) {
	ids := []uuid.UUID{firstID, secondID}
	if bytes.Compare(ids[0][:], ids[1][:]) > 0 {
		ids[0], ids[1] = ids[1], ids[0]
	}

	locked := make(map[uuid.UUID]*domain.Wallet, 2)
	for _, id := range ids {
		w, err := s.walletRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
		}
		if w == nil {
			return nil, nil, apperror.ErrNotFound("Wallet")
		}
		locked[id] = w
	}
	return locked[firstID], locked[secondID], nil
}

// rebuildBill replays the submitted lines through the bill rules so duplicate
// lines collapse and every total is quantity times the first-seen unit price.
func rebuildBill(lines []domain.BillLine) (*domain.Bill, error) {
	bill := domain.NewBill()
	for _, l := range lines {
		if l.Quantity <= 0 || l.UnitPrice < 0 {
			return nil, apperror.ErrInvalidAmount()
		}
		bill.AddItem(l.MenuItemID, l.Name, l.UnitPrice, l.Quantity)
	}
	return bill, nil
}

func billToItems(orderID uuid.UUID, bill *domain.Bill) []domain.OrderItem {
	lines := bill.Lines()
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ID:         uuid.New(),
			OrderID:    orderID,
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
		})
	}
	return items
}

// unmarshalCachedResult deserializes a cached settlement result.
func unmarshalCachedResult(data []byte) (*ports.SettlementResult, error) {
	result := &ports.SettlementResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached settlement: %w", err))
	}
	return result, nil
}
