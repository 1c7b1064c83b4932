package model

import "time"

// Quantity bounds of a cart line
const (
	MinQuantity = 1
	MaxQuantity = 99
)

// CartItem is one line of the cart, keyed by product id
type CartItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	OldPrice    *int64    `json:"oldPrice,omitempty"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"addedAt"`
}

// LineTotal is price times quantity
func (i CartItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// NewCartItem builds a line for product p
func NewCartItem(p *Product, quantity int, addedAt time.Time) CartItem {
	item := CartItem{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		Quantity:    quantity,
		AddedAt:     addedAt,
	}
	if p.OldPrice != nil {
		old := *p.OldPrice
		item.OldPrice = &old
	}
	return item
}

// CloneItems returns a deep copy of items
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.OldPrice != nil {
			old := *item.OldPrice
			out[i].OldPrice = &old
		}
	}
	return out
}

// AppliedDiscount is the discount code active on the cart
type AppliedDiscount struct {
	Code     string `json:"code"`
	Percent  int    `json:"percent"`
	MinOrder int64  `json:"minOrder"`
}
