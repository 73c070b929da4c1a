package domain

import (
	"time"

	"github.com/google/uuid"
)

// Festival is one festival on the platform. TotalRevenue is the recorded
// gross revenue the commission is computed from.
type Festival struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	TotalRevenue int64     `json:"total_revenue"`
	CreatedAt    time.Time `json:"created_at"`
}

// Booth is one vendor stall at a festival. Its wallet accumulates revenue
// from completed orders.
type Booth struct {
	ID         uuid.UUID `json:"id"`
	FestivalID uuid.UUID `json:"festival_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}
