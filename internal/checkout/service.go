// Package checkout turns a buyer's cart into a frozen, time-bounded
// checkout session with a UPI payment artifact.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
	"github.com/mittal-parth/agentic-commerce/internal/upi"
)

type Repository interface {
	GetCartItems(ctx context.Context, buyerID string) ([]domain.CartItem, error)
	CreateCheckoutSession(ctx context.Context, session *domain.CheckoutSession) error
	GetCheckoutSession(ctx context.Context, id string) (*domain.CheckoutSession, error)
}

type Catalogue interface {
	Lookup(ctx context.Context, productID string) (*domain.Product, error)
}

// Merchant is the payee identity stamped on payment links.
type Merchant struct {
	VPA  string
	Name string
}

type Service struct {
	repo       Repository
	catalogue  Catalogue
	merchant   Merchant
	sessionTTL time.Duration
}

func NewService(repo Repository, catalogue Catalogue, merchant Merchant, sessionTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		catalogue:  catalogue,
		merchant:   merchant,
		sessionTTL: sessionTTL,
	}
}

// Session is a created checkout session together with its derived QR
// image. The QR is recomputed from the stored link on every read rather
// than persisted.
type Session struct {
	*domain.CheckoutSession
	QRBase64 string
}

// Create freezes the buyer's cart into a new pending session. Prices and
// availability are re-validated against the live catalogue at this
// instant; if any line is short on stock, no session is created.
func (s *Service) Create(ctx context.Context, buyerID string) (*Session, error) {
	items, err := s.repo.GetCartItems(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	snapshot, total, err := s.buildSnapshot(ctx, items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.CheckoutSession{
		ID:         uuid.New().String(),
		BuyerID:    buyerID,
		LineItems:  snapshot,
		TotalPaise: total,
		Status:     domain.CheckoutStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(s.sessionTTL),
	}
	session.PaymentLink = upi.PaymentLink(s.merchant.VPA, s.merchant.Name, total, session.ID)

	if err := s.repo.CreateCheckoutSession(ctx, session); err != nil {
		return nil, fmt.Errorf("persist checkout session: %w", err)
	}

	qr, err := upi.QRBase64(session.PaymentLink)
	if err != nil {
		return nil, fmt.Errorf("generate qr: %w", err)
	}

	return &Session{CheckoutSession: session, QRBase64: qr}, nil
}

// Get reads a session back with its derived QR. A pending session past
// its deadline reads as expired.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	session, err := s.repo.GetCheckoutSession(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Status = session.EffectiveStatus(time.Now().UTC())

	qr, err := upi.QRBase64(session.PaymentLink)
	if err != nil {
		return nil, fmt.Errorf("generate qr: %w", err)
	}

	return &Session{CheckoutSession: session, QRBase64: qr}, nil
}

// buildSnapshot re-prices every cart line and checks stock. All-or-
// nothing: a single short line fails the whole snapshot.
func (s *Service) buildSnapshot(ctx context.Context, items []domain.CartItem) ([]domain.LineItem, int64, error) {
	snapshot := make([]domain.LineItem, 0, len(items))
	var total int64

	for _, item := range items {
		product, err := s.catalogue.Lookup(ctx, item.ProductID)
		if err != nil {
			return nil, 0, fmt.Errorf("lookup product %s: %w", item.ProductID, err)
		}
		if item.Quantity > product.InventoryQty {
			return nil, 0, fmt.Errorf("%w: product %s has %d in stock, cart wants %d",
				domain.ErrInsufficientInventory, item.ProductID, product.InventoryQty, item.Quantity)
		}

		subtotal := product.PricePaise * item.Quantity
		snapshot = append(snapshot, domain.LineItem{
			ProductID:      item.ProductID,
			Title:          product.Title,
			Quantity:       item.Quantity,
			UnitPricePaise: product.PricePaise,
			SubtotalPaise:  subtotal,
		})
		total += subtotal
	}

	return snapshot, total, nil
}
