// Package pricing derives cart and order totals. Every result is recomputed from the items it is
// given; nothing is cached.
package pricing

import (
	"github.com/storefront/storefront/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default shipping policy in VND
const (
	DefaultShippingThreshold int64 = 500000
	DefaultFlatShippingFee   int64 = 30000
)

// Policy decides when shipping is charged
type Policy struct {
	ShippingThreshold int64
	FlatShippingFee   int64
}

// DefaultPolicy returns free shipping from 500,000 and a 30,000 flat fee below
func DefaultPolicy() Policy {
	return Policy{
		ShippingThreshold: DefaultShippingThreshold,
		FlatShippingFee:   DefaultFlatShippingFee,
	}
}

// Summary is the derived pricing of a set of cart lines
type Summary struct {
	Subtotal       int64                  `json:"subtotal"`
	ShippingFee    int64                  `json:"shippingFee"`
	FreeShipping   bool                   `json:"freeShipping"`
	Discount       *model.AppliedDiscount `json:"discount,omitempty"`
	DiscountAmount int64                  `json:"discountAmount"`
	Total          int64                  `json:"total"`
	ItemCount      int                    `json:"itemCount"`
}

// Subtotal sums price times quantity
func Subtotal(items []model.CartItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	return subtotal
}

// ItemCount sums the quantities
func ItemCount(items []model.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// DiscountAmount is floor(subtotal * percent / 100), or 0 without a discount
func DiscountAmount(subtotal int64, discount *model.AppliedDiscount) int64 {
	if discount == nil || subtotal <= 0 {
		return 0
	}
	return subtotal * int64(discount.Percent) / 100
}

// Summarize prices items under policy with an optional discount
func Summarize(items []model.CartItem, discount *model.AppliedDiscount, policy Policy) Summary {
	subtotal := Subtotal(items)

	shipping := policy.FlatShippingFee
	free := subtotal >= policy.ShippingThreshold
	if free {
		shipping = 0
	}

	discountAmount := DiscountAmount(subtotal, discount)

	var applied *model.AppliedDiscount
	if discount != nil {
		d := *discount
		applied = &d
	}

	return Summary{
		Subtotal:       subtotal,
		ShippingFee:    shipping,
		FreeShipping:   free,
		Discount:       applied,
		DiscountAmount: discountAmount,
		Total:          max(0, subtotal+shipping-discountAmount),
		ItemCount:      ItemCount(items),
	}
}

var vnd = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount the way the storefront shows prices, e.g. 1.077.300đ
func FormatVND(amount int64) string {
	return vnd.Sprintf("%d", amount) + "đ"
}
