package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is the source of funds chosen at checkout.
type PaymentMethod string

const (
	PaymentMethodWalletMain     PaymentMethod = "WALLET_MAIN"
	PaymentMethodWalletFestival PaymentMethod = "WALLET_FESTIVAL"
	PaymentMethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
)

// IsWalletMethod reports whether the method settles synchronously from a wallet.
func (m PaymentMethod) IsWalletMethod() bool {
	return m == PaymentMethodWalletMain || m == PaymentMethodWalletFestival
}

// SourceWalletKind maps a wallet payment method to the wallet kind it debits.
func (m PaymentMethod) SourceWalletKind() WalletKind {
	if m == PaymentMethodWalletFestival {
		return WalletKindFestival
	}
	return WalletKindPersonal
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// OrderStatusPending marks bank-transfer orders awaiting the gateway return.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusCompleted marks settled orders. Wallet methods settle
	// synchronously, so their orders are created completed.
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// Order is one checkout at a booth.
type Order struct {
	ID          uuid.UUID   `json:"id"`
	ReferenceID string      `json:"reference_id"`
	AccountID   uuid.UUID   `json:"account_id"`
	BoothID     uuid.UUID   `json:"booth_id"`
	TotalAmount int64       `json:"total_amount"`
	Notes       string      `json:"notes,omitempty"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	SettledAt   *time.Time  `json:"settled_at,omitempty"`
}

// OrderItem is one bill line frozen into an order. UnitPrice is the price at
// the moment the line was added to the bill; later menu price changes never
// affect a created order.
type OrderItem struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  int64     `json:"unit_price"`
}

// Total returns the line total.
func (i *OrderItem) Total() int64 {
	return int64(i.Quantity) * i.UnitPrice
}
