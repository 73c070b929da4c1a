package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LedgerEntryType classifies a balance-affecting event.
type LedgerEntryType string

const (
	LedgerEntryTopup      LedgerEntryType = "TOPUP"
	LedgerEntryPayment    LedgerEntryType = "PAYMENT"
	LedgerEntryCommission LedgerEntryType = "COMMISSION"
	LedgerEntryRefund     LedgerEntryType = "REFUND"
)

// LedgerEntry is an immutable, append-only audit record of money movement
// against one account. Entries are never updated or deleted.
type LedgerEntry struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Type        LedgerEntryType `json:"type"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PaymentDescription names the order and the wallet the bill was paid from.
func PaymentDescription(orderID uuid.UUID, source WalletKind) string {
	switch source {
	case WalletKindFestival:
		return fmt.Sprintf("Order %s paid from festival wallet", orderID)
	default:
		return fmt.Sprintf("Order %s paid from main wallet", orderID)
	}
}

// BankPaymentDescription names an order settled through the payment gateway.
func BankPaymentDescription(orderID uuid.UUID) string {
	return fmt.Sprintf("Order %s paid via bank transfer", orderID)
}

// TopupDescription describes a personal wallet top-up.
func TopupDescription(amount int64) string {
	return fmt.Sprintf("Wallet top-up of %d", amount)
}

// CommissionDescription names the festival a commission was withdrawn from.
func CommissionDescription(festivalName string, ratePercent int) string {
	return fmt.Sprintf("Commission withdrawal (%d%%) from festival %s", ratePercent, festivalName)
}

// RefundDescription names the refund request fulfilled by a bank transfer.
func RefundDescription(requestID uuid.UUID) string {
	return fmt.Sprintf("Bank transfer for refund request %s", requestID)
}
