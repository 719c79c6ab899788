package domain

import "time"

// Product is an immutable catalogue entry. Prices are stored in paise
// (minor units); InventoryQty is only ever mutated by completed orders.
type Product struct {
	ID           string
	Title        string
	Description  string
	PricePaise   int64
	InventoryQty int64
	Category     string
	ImageURL     string
	CreatedAt    time.Time
}
