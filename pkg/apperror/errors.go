package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Settlement (SET) ----

func ErrNoCustomerSelected() *AppError {
	return New("SET_001", "No customer selected", http.StatusBadRequest)
}

func ErrEmptyBill() *AppError {
	return New("SET_002", "Bill contains no items", http.StatusBadRequest)
}

func ErrNoPaymentMethod() *AppError {
	return New("SET_003", "No payment method chosen", http.StatusBadRequest)
}

func ErrInsufficientBalance() *AppError {
	return New("SET_004", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("SET_005", "Invalid amount", http.StatusBadRequest)
}

func ErrDuplicateSettlement() *AppError {
	return New("SET_006", "Settlement reference already processed", http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("SET_007", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrOrderNotSettleable() *AppError {
	return New("SET_008", "Order is not awaiting settlement", http.StatusConflict)
}

// ---- Commission (COM) ----

func ErrInvalidCommissionRate() *AppError {
	return New("COM_001", "Commission rate outside the allowed range", http.StatusBadRequest)
}

func ErrCommissionAlreadyWithdrawn() *AppError {
	return New("COM_002", "Commission has already been withdrawn for this festival", http.StatusConflict)
}

// ---- Refund (REF) ----

func ErrRefundBelowMinimum(minimum int64) *AppError {
	return New("REF_001", fmt.Sprintf("Wallet balance must exceed %d to request a refund", minimum), http.StatusBadRequest)
}

func ErrRefundAlreadyProcessed() *AppError {
	return New("REF_002", "Refund request has already been processed", http.StatusConflict)
}

func ErrMissingWalletLink() *AppError {
	return New("REF_003", "Refund request payload is missing the wallet reference", http.StatusUnprocessableEntity)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_004", "Insufficient permissions", http.StatusForbidden)
}

func ErrInvalidSignature() *AppError {
	return New("AUTH_005", "Invalid signature", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Encryption service failure", http.StatusInternalServerError, err)
}

func ErrGatewayUnavailable(err error) *AppError {
	return Wrap("SYS_003", "Payment gateway unavailable", http.StatusBadGateway, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic request validation error.
func Validation(message string) *AppError {
	return New("SET_005", message, http.StatusBadRequest)
}
