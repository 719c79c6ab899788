package domain

import "time"

// CartItem is one line of a buyer's cart. The (BuyerID, ProductID) pair
// is unique; a cart is just the set of items for one buyer.
type CartItem struct {
	BuyerID   string
	ProductID string
	Quantity  int64
	AddedAt   time.Time
	UpdatedAt time.Time
}

// CartView is the read model returned by viewCart: the current items
// priced against the live catalogue plus a computed total.
type CartView struct {
	BuyerID    string
	Items      []CartViewItem
	TotalPaise int64
}

type CartViewItem struct {
	ProductID      string
	Title          string
	Quantity       int64
	UnitPricePaise int64
	SubtotalPaise  int64
}
