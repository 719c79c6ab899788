package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	err = s.RunMigrations("migrations")
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func seedProduct(t *testing.T, s *Store, id string, pricePaise, stock int64) {
	t.Helper()
	err := s.UpsertProduct(context.Background(), &domain.Product{
		ID:           id,
		Title:        "Product " + id,
		PricePaise:   pricePaise,
		InventoryQty: stock,
		Category:     "Handicrafts",
	})
	require.NoError(t, err)
}

func seedSession(t *testing.T, s *Store, buyerID string, items []domain.LineItem, expiresAt time.Time) *domain.CheckoutSession {
	t.Helper()

	var total int64
	for _, item := range items {
		total += item.SubtotalPaise
	}

	now := time.Now().UTC()
	session := &domain.CheckoutSession{
		ID:          "cs-" + buyerID + "-" + now.Format("150405.000000000"),
		BuyerID:     buyerID,
		LineItems:   items,
		TotalPaise:  total,
		Status:      domain.CheckoutStatusPending,
		PaymentLink: "upi://pay?pa=test@upi",
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   expiresAt,
	}
	require.NoError(t, s.CreateCheckoutSession(context.Background(), session))
	return session
}
