// Package catalogue serves product lookups and search over the store,
// with an optional redis read cache in front of single-product reads.
package catalogue

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mittal-parth/agentic-commerce/internal/catalogue/cache"
	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

const maxSearchLimit = 100

type Repository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SearchProducts(ctx context.Context, q, category string, limit int) ([]*domain.Product, error)
	DecrementInventory(ctx context.Context, productID string, qty int64) error
}

type Service struct {
	repo  Repository
	cache cache.ProductCache
	sfg   singleflight.Group // Prevents cache stampede on hot products
}

// NewService builds the catalogue service. productCache may be nil, in
// which case every lookup goes straight to the store.
func NewService(repo Repository, productCache cache.ProductCache) *Service {
	return &Service{
		repo:  repo,
		cache: productCache,
	}
}

func (s *Service) Lookup(ctx context.Context, productID string) (*domain.Product, error) {
	if s.cache == nil {
		return s.repo.GetProduct(ctx, productID)
	}

	v, err, _ := s.sfg.Do(productID, func() (interface{}, error) {
		product, err := s.cache.Get(ctx, productID)
		if err == nil {
			return product, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		product, errGet := s.repo.GetProduct(ctx, productID)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(setCtx, product); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return product, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Product), nil
}

func (s *Service) Search(ctx context.Context, q, category string, limit int) ([]*domain.Product, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.repo.SearchProducts(ctx, q, category, limit)
}

// DecrementInventory forwards the atomic check-and-decrement and drops
// any cached copy so readers never see stale stock.
func (s *Service) DecrementInventory(ctx context.Context, productID string, qty int64) error {
	if err := s.repo.DecrementInventory(ctx, productID, qty); err != nil {
		return err
	}
	s.invalidate(productID)
	return nil
}

// Invalidate drops the cached copy of a product. The confirmation
// transaction mutates inventory behind the cache's back, so the payment
// path calls this after a successful commit.
func (s *Service) Invalidate(productID string) {
	s.invalidate(productID)
}

func (s *Service) invalidate(productID string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, productID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
