package domain

import "errors"

// Sentinel errors shared across the engine. Handlers map these onto the
// wire error taxonomy; services wrap them with context via fmt.Errorf.
var (
	ErrProductNotFound       = errors.New("product not found")
	ErrSessionNotFound       = errors.New("checkout session not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidSignature      = errors.New("request signature mismatch")
	ErrSessionExpired        = errors.New("checkout session expired")
	ErrSessionFinalized      = errors.New("checkout session already finalized")
	ErrDuplicateOrder        = errors.New("order already exists for checkout session")
	ErrValidation            = errors.New("invalid request")
	ErrTransient             = errors.New("backing store busy, retry")
)
