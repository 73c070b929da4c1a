package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyLog caches a settlement result so a replayed reference settles
// at most once and returns the recorded response.
type IdempotencyLog struct {
	Key          string    `json:"key"` // Format: "account_id:reference_id"
	OrderID      uuid.UUID `json:"order_id"`
	ResponseJSON []byte    `json:"response_json"` // Cached response to return
	CreatedAt    time.Time `json:"created_at"`
}

// BuildSettlementKey constructs the idempotency key for a settlement.
func BuildSettlementKey(accountID uuid.UUID, referenceID string) string {
	return accountID.String() + ":" + referenceID
}
