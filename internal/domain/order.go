package domain

import "time"

type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

// Order is the append-only record created exactly once per checkout
// session, on the session's terminal transition.
type Order struct {
	ID                string
	CheckoutSessionID string
	BuyerID           string
	Status            OrderStatus
	UTR               string
	TotalPaise        int64
	CompletedAt       time.Time
}
