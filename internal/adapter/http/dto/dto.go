package dto

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=CUSTOMER STAFF ADMIN"`
}

// LoginRequest is the request body for account login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// BillLineRequest is one line of the bill being settled.
type BillLineRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required,uuid"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	UnitPrice  int64  `json:"unit_price" binding:"required,gt=0"`
}

// SettlementRequest is the request body for settling a bill.
type SettlementRequest struct {
	CustomerID  string            `json:"customer_id" binding:"required,uuid"`
	BoothID     string            `json:"booth_id" binding:"required,uuid"`
	FestivalID  *string           `json:"festival_id,omitempty" binding:"omitempty,uuid"`
	ReferenceID string            `json:"reference_id" binding:"required,max=100,safe_id"`
	Lines       []BillLineRequest `json:"lines" binding:"required,dive"`
	Method      string            `json:"method" binding:"required,oneof=WALLET_MAIN WALLET_FESTIVAL BANK_TRANSFER"`
	Notes       string            `json:"notes" binding:"max=500"`
}

// ReturnRequest is the gateway's return callback body.
type ReturnRequest struct {
	OrderID   string `json:"order_id" binding:"required,uuid"`
	SessionID string `json:"session_id" binding:"required,max=100"`
	Signature string `json:"signature" binding:"required"`
}

// TopupRequest is the request body for wallet topup.
type TopupRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// WalletBalanceResponse is the response for a balance query.
type WalletBalanceResponse struct {
	WalletID string `json:"wallet_id"`
	Kind     string `json:"kind"`
	Balance  int64  `json:"balance"`
}

// CommissionWithdrawRequest is the request body for a commission withdrawal.
// An omitted rate falls back to the platform default.
type CommissionWithdrawRequest struct {
	RatePercent int `json:"rate_percent" binding:"omitempty,min=5,max=30"`
}

// RefundCreateRequest is the request body for opening a refund request.
type RefundCreateRequest struct {
	Message string `json:"message" binding:"max=500"`
}

// BankDetailsRequest is the request body for registering bank details.
type BankDetailsRequest struct {
	BankName   string `json:"bank_name" binding:"required,min=1,max=100"`
	BankNumber string `json:"bank_number" binding:"required,min=6,max=34,safe_id"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	BankName *string `json:"bank_name,omitempty"`
}
