package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountRole controls which operations an authenticated account may perform.
type AccountRole string

const (
	RoleCustomer AccountRole = "CUSTOMER"
	RoleStaff    AccountRole = "STAFF"
	RoleAdmin    AccountRole = "ADMIN"
)

// Account is a registered user of the platform: a customer paying at booths,
// a booth staff member settling bills, or a platform admin.
type Account struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	PasswordHash string      `json:"-"` // Never expose
	Role         AccountRole `json:"role"`
	BankName     *string     `json:"bank_name,omitempty"`
	BankNumber   *string     `json:"-"` // AES-256 encrypted at rest, never expose raw
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanSettle reports whether the account may run booth settlements.
func (a *Account) CanSettle() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

// Bank is one entry of the display-only bank catalog used when customers
// register bank-transfer details.
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
