package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

func (s *Store) GetCartItems(ctx context.Context, buyerID string) ([]domain.CartItem, error) {
	query := `
		SELECT buyer_id, product_id, quantity, added_at, updated_at
		FROM cart_items
		WHERE buyer_id = ?
		ORDER BY added_at, product_id
	`
	rows, err := s.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		err := rows.Scan(&item.BuyerID, &item.ProductID, &item.Quantity, &item.AddedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// SetCartItem upserts one cart line; the new quantity replaces any
// existing one.
func (s *Store) SetCartItem(ctx context.Context, buyerID, productID string, qty int64) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO cart_items (buyer_id, product_id, quantity, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(buyer_id, product_id) DO UPDATE SET
			quantity = excluded.quantity,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, buyerID, productID, qty, now, now)
	if err != nil {
		return fmt.Errorf("set cart item: %w", err)
	}
	return nil
}

// RemoveCartItem deletes one cart line. Removing an absent item is a
// no-op, not an error.
func (s *Store) RemoveCartItem(ctx context.Context, buyerID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE buyer_id = ? AND product_id = ?`,
		buyerID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// stripCartTx removes the snapshotted quantities from the buyer's cart.
// Quantity added after checkout creation survives; rows that reach zero
// are deleted.
func stripCartTx(ctx context.Context, tx *sql.Tx, buyerID string, items []domain.LineItem, now time.Time) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = quantity - ?, updated_at = ?
			 WHERE buyer_id = ? AND product_id = ?`,
			item.Quantity, now, buyerID, item.ProductID)
		if err != nil {
			return fmt.Errorf("strip cart item %s: %w", item.ProductID, err)
		}
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE buyer_id = ? AND quantity <= 0`, buyerID)
	if err != nil {
		return fmt.Errorf("delete emptied cart items: %w", err)
	}
	return nil
}
