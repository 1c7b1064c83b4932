package service

import (
	"context"

	"github.com/storefront/storefront/internal/logger"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/pricing"
)

// CartLedger manages the session cart. The cart holds at most one line per product and every
// quantity stays within [1, max_quantity].
type CartLedger struct {
	s         *session
	discounts *DiscountEngine
	log       *logger.Logger
}

// Items returns a copy of the cart lines
func (c *CartLedger) Items(ctx context.Context) ([]model.CartItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	items, err := c.s.loadCart(ctx)
	if err != nil {
		return nil, err
	}
	return model.CloneItems(items), nil
}

// ItemCount sums the quantities in the cart
func (c *CartLedger) ItemCount(ctx context.Context) (int, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	items, err := c.s.loadCart(ctx)
	if err != nil {
		return 0, err
	}
	return pricing.ItemCount(items), nil
}

// AddItem adds quantity of a product, merging with an existing line
func (c *CartLedger) AddItem(ctx context.Context, productID int64, quantity int) (*model.CartItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	limit := c.s.maxQuantity()
	if quantity < model.MinQuantity {
		return nil, ErrInvalidQuantity
	}
	if quantity > limit {
		return nil, ErrQuantityLimitExceeded
	}

	product, ok := c.s.products.Lookup(productID)
	if !ok {
		return nil, ErrProductNotFound
	}

	items, err := c.s.loadCart(ctx)
	if err != nil {
		return nil, err
	}

	var line model.CartItem
	if i := findLine(items, productID); i >= 0 {
		if items[i].Quantity+quantity > limit {
			return nil, ErrQuantityLimitExceeded
		}
		items[i].Quantity += quantity
		line = items[i]
	} else {
		line = model.NewCartItem(product, quantity, c.s.now())
		items = append(items, line)
	}

	if err := c.s.saveCart(ctx, items); err != nil {
		return nil, err
	}

	c.log.Debug().Int64("product_id", productID).Int("quantity", line.Quantity).Msg("cart line updated")
	return &line, nil
}

// ChangeQuantity adds delta to a line. A result below 1 removes the line; a result above the
// limit fails and leaves the line unchanged. Missing lines are ignored.
func (c *CartLedger) ChangeQuantity(ctx context.Context, productID int64, delta int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	items, err := c.s.loadCart(ctx)
	if err != nil {
		return err
	}
	i := findLine(items, productID)
	if i < 0 {
		return nil
	}

	next := items[i].Quantity + delta
	switch {
	case next < model.MinQuantity:
		items = append(items[:i], items[i+1:]...)
	case next > c.s.maxQuantity():
		return ErrQuantityLimitExceeded
	default:
		items[i].Quantity = next
	}

	return c.s.saveCart(ctx, items)
}

// SetQuantity sets a line to exactly value. Missing lines are ignored.
func (c *CartLedger) SetQuantity(ctx context.Context, productID int64, value int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if value < model.MinQuantity || value > c.s.maxQuantity() {
		return ErrInvalidQuantity
	}

	items, err := c.s.loadCart(ctx)
	if err != nil {
		return err
	}
	i := findLine(items, productID)
	if i < 0 {
		return nil
	}

	items[i].Quantity = value
	return c.s.saveCart(ctx, items)
}

// RemoveItem drops a line if present
func (c *CartLedger) RemoveItem(ctx context.Context, productID int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	items, err := c.s.loadCart(ctx)
	if err != nil {
		return err
	}
	i := findLine(items, productID)
	if i < 0 {
		return nil
	}

	return c.s.saveCart(ctx, append(items[:i], items[i+1:]...))
}

// Clear empties the cart and drops the applied discount
func (c *CartLedger) Clear(ctx context.Context) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	return c.s.clearCart(ctx)
}

// ApplyDiscount makes code the active discount, replacing any other
func (c *CartLedger) ApplyDiscount(ctx context.Context, code string) (*model.AppliedDiscount, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	items, err := c.s.loadCart(ctx)
	if err != nil {
		return nil, err
	}
	active, err := c.s.loadDiscount(ctx)
	if err != nil {
		return nil, err
	}

	applied, err := c.discounts.Apply(code, pricing.Subtotal(items), active)
	if err != nil {
		return nil, err
	}

	if err := c.s.saveDiscount(ctx, applied); err != nil {
		return nil, err
	}

	c.log.Debug().Str("code", applied.Code).Int("percent", applied.Percent).Msg("discount applied")
	return applied, nil
}

// RemoveDiscount drops the active discount
func (c *CartLedger) RemoveDiscount(ctx context.Context) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	return c.s.saveDiscount(ctx, nil)
}

// AppliedDiscount returns the active discount, or nil
func (c *CartLedger) AppliedDiscount(ctx context.Context) (*model.AppliedDiscount, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	return c.s.loadDiscount(ctx)
}

// Summarize prices the live cart with the given shipping policy
func (c *CartLedger) Summarize(ctx context.Context, shippingThreshold, flatShippingFee int64) (pricing.Summary, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	return c.summarize(ctx, pricing.Policy{
		ShippingThreshold: shippingThreshold,
		FlatShippingFee:   flatShippingFee,
	})
}

// Summary prices the live cart with the configured shipping policy
func (c *CartLedger) Summary(ctx context.Context) (pricing.Summary, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	return c.summarize(ctx, c.s.policy())
}

func (c *CartLedger) summarize(ctx context.Context, policy pricing.Policy) (pricing.Summary, error) {
	items, err := c.s.loadCart(ctx)
	if err != nil {
		return pricing.Summary{}, err
	}
	discount, err := c.s.loadDiscount(ctx)
	if err != nil {
		return pricing.Summary{}, err
	}
	return pricing.Summarize(items, discount, policy), nil
}

func findLine(items []model.CartItem, productID int64) int {
	for i := range items {
		if items[i].ID == productID {
			return i
		}
	}
	return -1
}
