package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

// RecordOrder appends an order outside the confirmation transaction. The
// UNIQUE constraint on checkout_session_id is the last-resort guard
// behind the idempotency ledger.
func (s *Store) RecordOrder(ctx context.Context, order *domain.Order) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertOrderTx(ctx, tx, order)
	})
}

func insertOrderTx(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, checkout_session_id, buyer_id, status, utr, total_paise, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.CheckoutSessionID,
		order.BuyerID,
		order.Status,
		order.UTR,
		order.TotalPaise,
		order.CompletedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateOrder
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *Store) GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	query := `
		SELECT id, checkout_session_id, buyer_id, status, utr, total_paise, completed_at
		FROM orders
		WHERE checkout_session_id = ?
	`
	order := &domain.Order{}
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&order.ID,
		&order.CheckoutSessionID,
		&order.BuyerID,
		&order.Status,
		&order.UTR,
		&order.TotalPaise,
		&order.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by session id: %w", err)
	}
	return order, nil
}

func (s *Store) ListOrdersByBuyerID(ctx context.Context, buyerID string) ([]*domain.Order, error) {
	query := `
		SELECT id, checkout_session_id, buyer_id, status, utr, total_paise, completed_at
		FROM orders
		WHERE buyer_id = ?
		ORDER BY completed_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by buyer id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(
			&order.ID,
			&order.CheckoutSessionID,
			&order.BuyerID,
			&order.Status,
			&order.UTR,
			&order.TotalPaise,
			&order.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}
