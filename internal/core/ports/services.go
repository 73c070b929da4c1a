package ports

import (
	"context"
	"time"

	"festival-settlement/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption of bank details.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification of gateway
// return payloads.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, role domain.AccountRole) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Role      domain.AccountRole
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// PaymentGateway is the external checkout provider used for bank-transfer
// settlements.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// CheckoutRequest describes the order a checkout session is opened for.
type CheckoutRequest struct {
	OrderID     uuid.UUID
	ReferenceID string
	Amount      int64
	Description string
}

// CheckoutSession is the gateway's response: where to send the customer.
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// --- Service Ports (Business Logic) ---

// SettlementService is the payment settlement engine: it turns a bill into a
// completed order, moving money between wallets atomically.
type SettlementService interface {
	Settle(ctx context.Context, req SettlementRequest) (*SettlementResult, error)
	ConfirmReturn(ctx context.Context, req ReturnRequest) (*SettlementResult, error)
	Topup(ctx context.Context, accountID uuid.UUID, amount int64) (*domain.Wallet, error)
}

// SettlementRequest holds validated input for settlement.
type SettlementRequest struct {
	CustomerID  uuid.UUID
	BoothID     uuid.UUID
	FestivalID  *uuid.UUID // required for WALLET_FESTIVAL
	ReferenceID string     // client-supplied, idempotency token
	Lines       []domain.BillLine
	Method      domain.PaymentMethod
	Notes       string
}

// SettlementResult is the outcome of a settlement.
type SettlementResult struct {
	Order       *domain.Order      `json:"order"`
	Items       []domain.OrderItem `json:"items"`
	CheckoutURL string             `json:"checkout_url,omitempty"` // BANK_TRANSFER only
}

// ReturnRequest is the gateway's return callback after a bank-transfer
// checkout. Signature covers "orderID:sessionID" and is verified before any
// state changes.
type ReturnRequest struct {
	OrderID   uuid.UUID
	SessionID string
	Signature string
}

// CommissionStatus reports a festival's commission position.
type CommissionStatus struct {
	FestivalID            uuid.UUID `json:"festival_id"`
	Revenue               int64     `json:"revenue"`
	Withdrawn             bool      `json:"withdrawn"`
	WithdrawnAmount       int64     `json:"withdrawn_amount,omitempty"`
	ProfitAfterCommission int64     `json:"profit_after_commission"`
}

// CommissionService derives and withdraws the platform commission.
type CommissionService interface {
	Estimate(revenue int64, ratePercent int) int64
	HasBeenWithdrawn(ctx context.Context, festivalID uuid.UUID) (bool, error)
	Withdraw(ctx context.Context, festivalID uuid.UUID, ratePercent int, adminID uuid.UUID) (*domain.CommissionWithdrawal, error)
	Status(ctx context.Context, festivalID uuid.UUID) (*CommissionStatus, error)
}

// RefundResult is the outcome of processing a refund request.
type RefundResult struct {
	Request       *domain.RefundRequest `json:"request"`
	DrainedAmount int64                 `json:"drained_amount"`
}

// RefundService manages the refund request queue and its processor.
type RefundService interface {
	CreateRequest(ctx context.Context, accountID uuid.UUID, message string) (*domain.RefundRequest, error)
	Process(ctx context.Context, requestID uuid.UUID) (*RefundResult, error)
	Delete(ctx context.Context, requestID uuid.UUID) error
	List(ctx context.Context, status *domain.RefundStatus) ([]domain.RefundRequest, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	Role     domain.AccountRole
}

// AccountService is the account directory: customer lookup and bank details.
type AccountService interface {
	LookupByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateBankDetails(ctx context.Context, accountID uuid.UUID, bankName, bankNumber string) error
	ListBanks(ctx context.Context) ([]domain.Bank, error)
}
