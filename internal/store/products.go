package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

func (s *Store) UpsertProduct(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, title, description, price_paise, inventory_qty, category, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			price_paise = excluded.price_paise,
			inventory_qty = excluded.inventory_qty,
			category = excluded.category,
			image_url = excluded.image_url
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.PricePaise, p.InventoryQty, p.Category, p.ImageURL)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, title, description, price_paise, inventory_qty, category, image_url, created_at
		FROM products
		WHERE id = ?
	`
	p := &domain.Product{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.PricePaise,
		&p.InventoryQty,
		&p.Category,
		&p.ImageURL,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

// SearchProducts matches title and description against q (case-insensitive
// substring) and optionally filters by category. limit caps the result set.
func (s *Store) SearchProducts(ctx context.Context, q, category string, limit int) ([]*domain.Product, error) {
	query := `
		SELECT id, title, description, price_paise, inventory_qty, category, image_url, created_at
		FROM products
		WHERE (? = '' OR title LIKE '%' || ? || '%' OR description LIKE '%' || ? || '%')
		  AND (? = '' OR category = ?)
		ORDER BY id
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, q, q, q, category, category, limit)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Description,
			&p.PricePaise,
			&p.InventoryQty,
			&p.Category,
			&p.ImageURL,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

// DecrementInventory is the atomic check-and-decrement behind order
// fulfillment: the WHERE clause guarantees a second concurrent
// confirmation can never observe a stale read.
func (s *Store) DecrementInventory(ctx context.Context, productID string, qty int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return decrementInventoryTx(ctx, tx, productID, qty)
	})
}

func decrementInventoryTx(ctx context.Context, tx *sql.Tx, productID string, qty int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE products SET inventory_qty = inventory_qty - ? WHERE id = ? AND inventory_qty >= ?`,
		qty, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement inventory for %s: %w", productID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement inventory rows affected: %w", err)
	}
	if affected == 0 {
		// Either the product vanished or stock ran out since checkout.
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM products WHERE id = ?`, productID).Scan(&exists); err != nil {
			return fmt.Errorf("check product existence: %w", err)
		}
		if exists == 0 {
			return domain.ErrProductNotFound
		}
		return domain.ErrInsufficientInventory
	}
	return nil
}
