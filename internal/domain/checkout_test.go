package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutStatus_IsTerminal(t *testing.T) {
	assert.False(t, CheckoutStatusPending.IsTerminal())
	assert.False(t, CheckoutStatusExpired.IsTerminal())
	assert.True(t, CheckoutStatusPaid.IsTerminal())
	assert.True(t, CheckoutStatusFailed.IsTerminal())
}

func TestCanTransitionTo(t *testing.T) {
	// Only pending may move, and only to paid, failed or expired
	assert.True(t, CanTransitionTo(CheckoutStatusPending, CheckoutStatusPaid))
	assert.True(t, CanTransitionTo(CheckoutStatusPending, CheckoutStatusFailed))
	assert.True(t, CanTransitionTo(CheckoutStatusPending, CheckoutStatusExpired))

	assert.False(t, CanTransitionTo(CheckoutStatusPending, CheckoutStatusPending))
	assert.False(t, CanTransitionTo(CheckoutStatusPaid, CheckoutStatusFailed))
	assert.False(t, CanTransitionTo(CheckoutStatusFailed, CheckoutStatusPaid))
	assert.False(t, CanTransitionTo(CheckoutStatusExpired, CheckoutStatusPaid))
}

func TestCheckoutSession_EffectiveStatus(t *testing.T) {
	now := time.Now().UTC()
	session := &CheckoutSession{Status: CheckoutStatusPending, ExpiresAt: now.Add(time.Minute)}

	assert.Equal(t, CheckoutStatusPending, session.EffectiveStatus(now))
	assert.Equal(t, CheckoutStatusExpired, session.EffectiveStatus(now.Add(2*time.Minute)))

	// A finalized session never reads as expired, regardless of deadline
	session.Status = CheckoutStatusPaid
	assert.Equal(t, CheckoutStatusPaid, session.EffectiveStatus(now.Add(2*time.Minute)))
}
