package model

import "math"

// Product is a catalog entry
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       int64   `json:"price"`
	OldPrice    *int64  `json:"oldPrice,omitempty"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
}

// DiscountPercent is the rounded markdown from OldPrice, or 0 without one
func (p *Product) DiscountPercent() int {
	if p.OldPrice == nil || *p.OldPrice <= 0 {
		return 0
	}
	return int(math.Round((1 - float64(p.Price)/float64(*p.OldPrice)) * 100))
}
