package ports

import (
	"context"

	"festival-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateBankDetails(ctx context.Context, id uuid.UUID, bankName, encryptedNumber string) error
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic
// locking. ApplyDelta is the only balance mutation: the storage layer rejects
// any delta that would drive a balance negative.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetPersonal(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error)
	GetFestival(ctx context.Context, accountID, festivalID uuid.UUID) (*domain.Wallet, error)
	GetBooth(ctx context.Context, boothID uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	ApplyDelta(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, delta int64) error
}

// LedgerFilter narrows ledger listings.
type LedgerFilter struct {
	AccountID *uuid.UUID
	Type      *domain.LedgerEntryType
}

// LedgerRepository defines persistence for the append-only ledger.
// There is deliberately no update or delete operation.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	List(ctx context.Context, filter LedgerFilter) ([]domain.LedgerEntry, error)
}

// OrderRepository defines persistence operations for orders and their items.
type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	CreateItems(ctx context.Context, tx pgx.Tx, items []domain.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByReference(ctx context.Context, accountID uuid.UUID, referenceID string) (*domain.Order, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
	// CompleteIfPending flips PENDING -> COMPLETED and returns false when the
	// order was not pending, making gateway-return settlement idempotent.
	CompleteIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
}

// RefundRequestRepository defines persistence for the refund request queue.
type RefundRequestRepository interface {
	Create(ctx context.Context, req *domain.RefundRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error)
	List(ctx context.Context, status *domain.RefundStatus) ([]domain.RefundRequest, error)
	// MarkProcessed flips PENDING -> PROCESSED and returns false when the
	// request was already processed, so a request is consumed at most once.
	MarkProcessed(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommissionRepository defines persistence for commission withdrawals.
// The festival ID column carries a uniqueness constraint; Create surfaces a
// violation as ErrCommissionAlreadyWithdrawn.
type CommissionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, w *domain.CommissionWithdrawal) error
	GetByFestival(ctx context.Context, festivalID uuid.UUID) (*domain.CommissionWithdrawal, error)
}

// FestivalRepository defines read operations for festivals and booths.
type FestivalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Festival, error)
	GetBooth(ctx context.Context, id uuid.UUID) (*domain.Booth, error)
}

// BankRepository lists the display-only bank catalog.
type BankRepository interface {
	List(ctx context.Context) ([]domain.Bank, error)
}

// IdempotencyRepository defines persistence for idempotency logs (DB backup).
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error
	Get(ctx context.Context, key string) (*domain.IdempotencyLog, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
