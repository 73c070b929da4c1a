package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RefundStatus is the lifecycle state of a refund request.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "PENDING"
	RefundStatusProcessed RefundStatus = "PROCESSED"
)

// RefundSnapshot freezes the wallet reference and its balance at request
// creation time. The live balance may have moved by processing time; the
// snapshot is kept as audit data and the processor drains the live balance.
type RefundSnapshot struct {
	WalletID uuid.UUID `json:"wallet_id"`
	Balance  int64     `json:"balance"`
}

// RefundRequest is a customer-initiated, admin-fulfilled request to convert a
// personal wallet balance into an external bank transfer. It transitions
// PENDING -> PROCESSED exactly once, or is deleted by an admin at any status.
type RefundRequest struct {
	ID        uuid.UUID    `json:"id"`
	AccountID uuid.UUID    `json:"account_id"`
	Status    RefundStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	Data      []byte       `json:"data"` // JSON-encoded RefundSnapshot
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewRefundRequest creates a pending request carrying the wallet snapshot.
func NewRefundRequest(accountID uuid.UUID, snapshot RefundSnapshot, message string, now time.Time) (*RefundRequest, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	return &RefundRequest{
		ID:        uuid.New(),
		AccountID: accountID,
		Status:    RefundStatusPending,
		Message:   message,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Snapshot decodes the embedded wallet snapshot. A zero wallet ID means the
// wallet link is missing from the payload.
func (r *RefundRequest) Snapshot() (RefundSnapshot, error) {
	var s RefundSnapshot
	if err := json.Unmarshal(r.Data, &s); err != nil {
		return RefundSnapshot{}, err
	}
	return s, nil
}

// IsPending reports whether the request is still awaiting processing.
func (r *RefundRequest) IsPending() bool {
	return r.Status == RefundStatusPending
}
