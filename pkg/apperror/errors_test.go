package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("SET_004", "Insufficient wallet balance", http.StatusPaymentRequired),
			expected: "[SET_004] Insufficient wallet balance",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("SET_005", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestSettlementErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"NoCustomerSelected", ErrNoCustomerSelected(), "SET_001", 400},
		{"EmptyBill", ErrEmptyBill(), "SET_002", 400},
		{"NoPaymentMethod", ErrNoPaymentMethod(), "SET_003", 400},
		{"InsufficientBalance", ErrInsufficientBalance(), "SET_004", 402},
		{"InvalidAmount", ErrInvalidAmount(), "SET_005", 400},
		{"DuplicateSettlement", ErrDuplicateSettlement(), "SET_006", 409},
		{"NotFound", ErrNotFound("Wallet"), "SET_007", 404},
		{"OrderNotSettleable", ErrOrderNotSettleable(), "SET_008", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestCommissionAndRefundErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidCommissionRate", ErrInvalidCommissionRate(), "COM_001", 400},
		{"CommissionAlreadyWithdrawn", ErrCommissionAlreadyWithdrawn(), "COM_002", 409},
		{"RefundBelowMinimum", ErrRefundBelowMinimum(5000), "REF_001", 400},
		{"RefundAlreadyProcessed", ErrRefundAlreadyProcessed(), "REF_002", 409},
		{"MissingWalletLink", ErrMissingWalletLink(), "REF_003", 422},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestNotFound_MessageNamesEntity(t *testing.T) {
	err := ErrNotFound("Booth wallet")
	assert.Equal(t, "Booth wallet not found", err.Message)
}

func TestRefundBelowMinimum_MessageCarriesThreshold(t *testing.T) {
	err := ErrRefundBelowMinimum(5000)
	assert.Contains(t, err.Message, "5000")
}
