package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

// ErrClaimRaceLost means another claim committed first: either the same
// idempotency key landed concurrently, or the session left pending under
// a different key. The caller must re-read the session and the ledger.
var ErrClaimRaceLost = errors.New("concurrent claim won the conditional update")

// ConfirmCheckout commits a valid, first-seen payment claim as one
// transaction: ledger insert, pending→paid transition, guarded inventory
// decrements, order insert, cart strip and outbox event. Any failing step
// rolls back the whole unit, leaving the session pending with zero side
// effects.
func (s *Store) ConfirmCheckout(ctx context.Context, session *domain.CheckoutSession, order *domain.Order, idempotencyKey string) error {
	now := time.Now().UTC()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		err := insertIdempotencyKeyTx(ctx, tx, session.ID, idempotencyKey, order.ID, domain.CheckoutStatusPaid, now)
		if err != nil {
			return err
		}

		if err := transitionSessionTx(ctx, tx, session.ID, domain.CheckoutStatusPaid, order.UTR, now); err != nil {
			return err
		}

		for _, item := range session.LineItems {
			if err := decrementInventoryTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := insertOrderTx(ctx, tx, order); err != nil {
			return err
		}

		if err := stripCartTx(ctx, tx, session.BuyerID, session.LineItems, now); err != nil {
			return err
		}

		return insertOrderEventTx(ctx, tx, session, order, now)
	})
}

// FailCheckout commits an explicit negative confirmation: pending→failed
// plus a failed order record. No inventory or cart mutation happens.
func (s *Store) FailCheckout(ctx context.Context, session *domain.CheckoutSession, order *domain.Order, idempotencyKey string) error {
	now := time.Now().UTC()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		err := insertIdempotencyKeyTx(ctx, tx, session.ID, idempotencyKey, order.ID, domain.CheckoutStatusFailed, now)
		if err != nil {
			return err
		}

		if err := transitionSessionTx(ctx, tx, session.ID, domain.CheckoutStatusFailed, order.UTR, now); err != nil {
			return err
		}

		if err := insertOrderTx(ctx, tx, order); err != nil {
			return err
		}

		return insertOrderEventTx(ctx, tx, session, order, now)
	})
}

// transitionSessionTx is the single conditional update that decides which
// racing claim wins: only a row still in pending can leave pending.
func transitionSessionTx(ctx context.Context, tx *sql.Tx, sessionID string, next domain.CheckoutStatus, utr string, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE checkout_sessions SET status = ?, utr = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		next, utr, now, sessionID, domain.CheckoutStatusPending)
	if err != nil {
		return fmt.Errorf("transition session %s: %w", sessionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition rows affected: %w", err)
	}
	if affected == 0 {
		return ErrClaimRaceLost
	}
	return nil
}

func insertOrderEventTx(ctx context.Context, tx *sql.Tx, session *domain.CheckoutSession, order *domain.Order, now time.Time) error {
	payload := map[string]interface{}{
		"order_id":            order.ID,
		"checkout_session_id": session.ID,
		"buyer_id":            session.BuyerID,
		"status":              order.Status,
		"utr":                 order.UTR,
		"line_items":          session.LineItems,
		"total_paise":         session.TotalPaise,
		"completed_at":        order.CompletedAt,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal order event payload: %w", err)
	}
	return insertOutboxEventTx(ctx, tx, session.ID, "order."+string(order.Status), payloadJSON, now)
}
