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

func (s *Store) CreateCheckoutSession(ctx context.Context, session *domain.CheckoutSession) error {
	lineItemsJSON, err := json.Marshal(session.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}

	query := `
		INSERT INTO checkout_sessions
			(id, buyer_id, line_items, total_paise, status, payment_link, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.BuyerID,
		string(lineItemsJSON),
		session.TotalPaise,
		session.Status,
		session.PaymentLink,
		session.CreatedAt,
		session.UpdatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert checkout session: %w", err)
	}
	return nil
}

func (s *Store) GetCheckoutSession(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	query := `
		SELECT id, buyer_id, line_items, total_paise, status, payment_link, utr, created_at, updated_at, expires_at
		FROM checkout_sessions
		WHERE id = ?
	`
	session := &domain.CheckoutSession{}
	var lineItemsJSON []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.BuyerID,
		&lineItemsJSON,
		&session.TotalPaise,
		&session.Status,
		&session.PaymentLink,
		&session.UTR,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query checkout session: %w", err)
	}

	if err := json.Unmarshal(lineItemsJSON, &session.LineItems); err != nil {
		return nil, fmt.Errorf("unmarshal line items: %w", err)
	}

	return session, nil
}

// ExpireCheckoutSessions flips pending sessions past their deadline to
// expired. Correctness never depends on this; readers already treat such
// sessions as expired.
func (s *Store) ExpireCheckoutSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE checkout_sessions SET status = ?, updated_at = ?
		 WHERE status = ? AND expires_at < ?`,
		domain.CheckoutStatusExpired, now, domain.CheckoutStatusPending, now)
	if err != nil {
		return 0, fmt.Errorf("expire checkout sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire rows affected: %w", err)
	}
	return affected, nil
}

// IdempotencyResult is a previously committed outcome of a payment claim,
// looked up by (session id, idempotency key).
type IdempotencyResult struct {
	OrderID string
	Status  domain.CheckoutStatus
}

var ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")

func (s *Store) GetIdempotencyResult(ctx context.Context, sessionID, key string) (*IdempotencyResult, error) {
	query := `
		SELECT order_id, status
		FROM idempotency_keys
		WHERE session_id = ? AND idempotency_key = ?
	`
	result := &IdempotencyResult{}
	err := s.db.QueryRowContext(ctx, query, sessionID, key).Scan(&result.OrderID, &result.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdempotencyKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query idempotency key: %w", err)
	}
	return result, nil
}

func insertIdempotencyKeyTx(ctx context.Context, tx *sql.Tx, sessionID, key, orderID string, status domain.CheckoutStatus, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO idempotency_keys (session_id, idempotency_key, order_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, key, orderID, status, now)
	if isUniqueViolation(err) {
		return ErrClaimRaceLost
	}
	if err != nil {
		return fmt.Errorf("insert idempotency key: %w", err)
	}
	return nil
}
