// Package cart implements the per-buyer cart manager. Mutations are
// validated against the live catalogue; nothing is reserved until
// payment confirmation.
package cart

import (
	"context"
	"fmt"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

type Repository interface {
	GetCartItems(ctx context.Context, buyerID string) ([]domain.CartItem, error)
	SetCartItem(ctx context.Context, buyerID, productID string, qty int64) error
	RemoveCartItem(ctx context.Context, buyerID, productID string) error
}

type Catalogue interface {
	Lookup(ctx context.Context, productID string) (*domain.Product, error)
}

type Service struct {
	repo      Repository
	catalogue Catalogue
}

func NewService(repo Repository, catalogue Catalogue) *Service {
	return &Service{
		repo:      repo,
		catalogue: catalogue,
	}
}

// AddItem puts a line in the buyer's cart after validating the product
// exists and has enough stock. An existing line for the same product is
// replaced with the new quantity.
func (s *Service) AddItem(ctx context.Context, buyerID, productID string, qty int64) (*domain.CartView, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if err := s.checkStock(ctx, productID, qty); err != nil {
		return nil, err
	}
	if err := s.repo.SetCartItem(ctx, buyerID, productID, qty); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return s.ViewCart(ctx, buyerID)
}

// UpdateItem sets the quantity of an existing line. Quantity <= 0 is
// equivalent to RemoveItem.
func (s *Service) UpdateItem(ctx context.Context, buyerID, productID string, qty int64) (*domain.CartView, error) {
	if qty <= 0 {
		return s.RemoveItem(ctx, buyerID, productID)
	}
	if err := s.checkStock(ctx, productID, qty); err != nil {
		return nil, err
	}
	if err := s.repo.SetCartItem(ctx, buyerID, productID, qty); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return s.ViewCart(ctx, buyerID)
}

// RemoveItem drops a line from the cart. Removing an absent item is a
// no-op.
func (s *Service) RemoveItem(ctx context.Context, buyerID, productID string) (*domain.CartView, error) {
	if err := s.repo.RemoveCartItem(ctx, buyerID, productID); err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}
	return s.ViewCart(ctx, buyerID)
}

// ViewCart prices the current items against the live catalogue and
// returns them with a computed total. Read-only.
func (s *Service) ViewCart(ctx context.Context, buyerID string) (*domain.CartView, error) {
	items, err := s.repo.GetCartItems(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}

	view := &domain.CartView{
		BuyerID: buyerID,
		Items:   make([]domain.CartViewItem, 0, len(items)),
	}
	for _, item := range items {
		product, err := s.catalogue.Lookup(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("lookup product %s: %w", item.ProductID, err)
		}
		subtotal := product.PricePaise * item.Quantity
		view.Items = append(view.Items, domain.CartViewItem{
			ProductID:      item.ProductID,
			Title:          product.Title,
			Quantity:       item.Quantity,
			UnitPricePaise: product.PricePaise,
			SubtotalPaise:  subtotal,
		})
		view.TotalPaise += subtotal
	}
	return view, nil
}

func (s *Service) checkStock(ctx context.Context, productID string, qty int64) error {
	product, err := s.catalogue.Lookup(ctx, productID)
	if err != nil {
		return err
	}
	if qty > product.InventoryQty {
		return fmt.Errorf("%w: product %s has %d in stock, requested %d",
			domain.ErrInsufficientInventory, productID, product.InventoryQty, qty)
	}
	return nil
}
