package domain

import "time"

type CheckoutStatus string

const (
	CheckoutStatusPending CheckoutStatus = "pending"
	CheckoutStatusPaid    CheckoutStatus = "paid"
	CheckoutStatusFailed  CheckoutStatus = "failed"
	CheckoutStatusExpired CheckoutStatus = "expired"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusPaid || s == CheckoutStatusFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether a session may move from s to next.
// paid and failed are terminal; expired only ever comes from pending.
func CanTransitionTo(s, next CheckoutStatus) bool {
	if s != CheckoutStatusPending {
		return false
	}
	switch next {
	case CheckoutStatusPaid, CheckoutStatusFailed, CheckoutStatusExpired:
		return true
	}
	return false
}

// LineItem is one frozen line of a checkout session snapshot. Prices are
// captured at session creation and never re-read from the catalogue.
type LineItem struct {
	ProductID      string `json:"product_id"`
	Title          string `json:"title"`
	Quantity       int64  `json:"quantity"`
	UnitPricePaise int64  `json:"unit_price_paise"`
	SubtotalPaise  int64  `json:"subtotal_paise"`
}

// CheckoutSession is a frozen, time-bounded quote derived from a cart.
// LineItems and TotalPaise are immutable after creation; only Status
// (and UTR, on the paid transition) ever change.
type CheckoutSession struct {
	ID          string
	BuyerID     string
	LineItems   []LineItem
	TotalPaise  int64
	Status      CheckoutStatus
	PaymentLink string
	UTR         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports the read-time expiry check: a pending session past its
// deadline is treated as expired even before any sweeper flips the row.
func (c *CheckoutSession) Expired(now time.Time) bool {
	return c.Status == CheckoutStatusPending && now.After(c.ExpiresAt)
}

// EffectiveStatus folds the read-time expiry check into the stored status.
func (c *CheckoutSession) EffectiveStatus(now time.Time) CheckoutStatus {
	if c.Expired(now) {
		return CheckoutStatusExpired
	}
	return c.Status
}
