package domain

import (
	"time"

	"github.com/google/uuid"
)

// Commission rate bounds. The rate is chosen per withdrawal, never persisted
// as configuration.
const (
	CommissionRateMin     = 5
	CommissionRateMax     = 30
	CommissionRateDefault = 10
)

// EstimateCommission derives a commission amount from festival revenue at a
// percentage rate. Integer floor, no rounding.
func EstimateCommission(revenue int64, ratePercent int) int64 {
	return revenue * int64(ratePercent) / 100
}

// ValidCommissionRate reports whether the rate is within the allowed band.
func ValidCommissionRate(ratePercent int) bool {
	return ratePercent >= CommissionRateMin && ratePercent <= CommissionRateMax
}

// CommissionWithdrawal records one commission taken from a festival. The
// festival ID carries a uniqueness constraint, so a festival's commission is
// withdrawable exactly once; the row itself is the dedup signal. The recorded
// amount stays authoritative afterwards: profit is read from it, never
// recomputed from the rate.
type CommissionWithdrawal struct {
	ID          uuid.UUID `json:"id"`
	FestivalID  uuid.UUID `json:"festival_id"`
	AccountID   uuid.UUID `json:"account_id"` // admin who withdrew
	RatePercent int       `json:"rate_percent"`
	Amount      int64     `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}
