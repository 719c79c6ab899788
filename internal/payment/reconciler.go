// Package payment reconciles claimed UPI transfers against checkout
// sessions: signature checks, the at-most-once idempotency contract, and
// the pending→{paid,failed} transition with its side effects.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
	"github.com/mittal-parth/agentic-commerce/internal/store"
)

type Repository interface {
	GetCheckoutSession(ctx context.Context, id string) (*domain.CheckoutSession, error)
	GetIdempotencyResult(ctx context.Context, sessionID, key string) (*store.IdempotencyResult, error)
	ConfirmCheckout(ctx context.Context, session *domain.CheckoutSession, order *domain.Order, idempotencyKey string) error
	FailCheckout(ctx context.Context, session *domain.CheckoutSession, order *domain.Order, idempotencyKey string) error
}

// CacheInvalidator drops cached product reads after the confirmation
// transaction mutates inventory.
type CacheInvalidator interface {
	Invalidate(productID string)
}

type Reconciler struct {
	repo   Repository
	signer *Signer
	cache  CacheInvalidator
}

// NewReconciler builds the reconciler. cache may be nil.
func NewReconciler(repo Repository, signer *Signer, cache CacheInvalidator) *Reconciler {
	return &Reconciler{
		repo:   repo,
		signer: signer,
		cache:  cache,
	}
}

// Result is the caller-visible outcome of a claim. Replays with the same
// idempotency key observe the identical Result.
type Result struct {
	OrderID string
	Status  domain.CheckoutStatus
}

// Confirm processes a positive payment claim. The (session id,
// idempotency key) pair is globally at-most-once: a replay returns the
// originally committed result without re-executing any side effect, even
// under concurrent duplicate delivery.
func (r *Reconciler) Confirm(ctx context.Context, sessionID, utr, idempotencyKey, signature string) (*Result, error) {
	if utr == "" {
		return nil, fmt.Errorf("%w: utr is required", domain.ErrValidation)
	}
	return r.finalize(ctx, sessionID, utr, idempotencyKey, signature, true)
}

// Fail processes an explicit negative confirmation (e.g. a failed-payment
// webhook): pending→failed with a failed order record and no inventory or
// cart mutation.
func (r *Reconciler) Fail(ctx context.Context, sessionID, utr, idempotencyKey, signature string) (*Result, error) {
	return r.finalize(ctx, sessionID, utr, idempotencyKey, signature, false)
}

func (r *Reconciler) finalize(ctx context.Context, sessionID, utr, idempotencyKey, signature string, paid bool) (*Result, error) {
	if idempotencyKey == "" {
		return nil, fmt.Errorf("%w: idempotency key is required", domain.ErrValidation)
	}

	session, err := r.repo.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Replays return the committed result before anything else runs.
	if result, err := r.repo.GetIdempotencyResult(ctx, sessionID, idempotencyKey); err == nil {
		return &Result{OrderID: result.OrderID, Status: result.Status}, nil
	} else if !errors.Is(err, store.ErrIdempotencyKeyNotFound) {
		return nil, fmt.Errorf("check idempotency ledger: %w", err)
	}

	// A forged or corrupted claim must not observe or mutate anything.
	if err := r.signer.Verify(session, signature); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if session.Status == domain.CheckoutStatusExpired || session.Expired(now) {
		return nil, domain.ErrSessionExpired
	}
	if session.Status.IsTerminal() {
		return nil, domain.ErrSessionFinalized
	}

	order := &domain.Order{
		ID:                uuid.New().String(),
		CheckoutSessionID: session.ID,
		BuyerID:           session.BuyerID,
		UTR:               utr,
		TotalPaise:        session.TotalPaise,
		CompletedAt:       now,
	}
	if paid {
		order.Status = domain.OrderStatusCompleted
		err = r.repo.ConfirmCheckout(ctx, session, order, idempotencyKey)
	} else {
		order.Status = domain.OrderStatusFailed
		err = r.repo.FailCheckout(ctx, session, order, idempotencyKey)
	}

	if errors.Is(err, store.ErrClaimRaceLost) {
		return r.resolveRace(ctx, sessionID, idempotencyKey)
	}
	if err != nil {
		// ErrInsufficientInventory and ErrTransient surface as-is: the
		// session is still pending and the claim may be retried.
		return nil, err
	}

	if paid && r.cache != nil {
		for _, item := range session.LineItems {
			r.cache.Invalidate(item.ProductID)
		}
	}

	status := domain.CheckoutStatusPaid
	if !paid {
		status = domain.CheckoutStatusFailed
	}
	return &Result{OrderID: order.ID, Status: status}, nil
}

// resolveRace handles a lost conditional update: either a concurrent
// duplicate with our key committed first (return its result) or another
// claim finalized the session (conflict / expired).
func (r *Reconciler) resolveRace(ctx context.Context, sessionID, idempotencyKey string) (*Result, error) {
	if result, err := r.repo.GetIdempotencyResult(ctx, sessionID, idempotencyKey); err == nil {
		log.Printf("duplicate claim for session %s key %s resolved from ledger", sessionID, idempotencyKey)
		return &Result{OrderID: result.OrderID, Status: result.Status}, nil
	} else if !errors.Is(err, store.ErrIdempotencyKeyNotFound) {
		return nil, fmt.Errorf("re-check idempotency ledger: %w", err)
	}

	session, err := r.repo.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.EffectiveStatus(time.Now().UTC()) == domain.CheckoutStatusExpired {
		return nil, domain.ErrSessionExpired
	}
	return nil, domain.ErrSessionFinalized
}
