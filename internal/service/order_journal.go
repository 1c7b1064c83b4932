package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/logger"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/pricing"
)

// OrderJournal records placed orders
type OrderJournal struct {
	s   *session
	log *logger.Logger
}

// CheckoutRequest is the checkout form
type CheckoutRequest struct {
	Delivery      model.DeliveryInfo
	PaymentMethod string
}

// ValidateDelivery checks the delivery form. Errors match ErrInvalidDeliveryInfo.
func ValidateDelivery(info model.DeliveryInfo) error {
	name := strings.TrimSpace(info.Name)
	phone := strings.TrimSpace(info.Phone)
	address := strings.TrimSpace(info.Address)

	switch {
	case name == "":
		return deliveryError("name", "recipient name is required")
	case utf8.RuneCountInString(name) < 2:
		return deliveryError("name", "recipient name must be at least 2 characters long")
	case phone == "":
		return deliveryError("phone", "phone number is required")
	case !auth.ValidPhone(phone):
		return deliveryError("phone", "phone number must have 10 or 11 digits")
	case address == "":
		return deliveryError("address", "delivery address is required")
	case utf8.RuneCountInString(address) < 10:
		return deliveryError("address", "delivery address is too short")
	}
	return nil
}

func deliveryError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg, Kind: ErrInvalidDeliveryInfo}
}

// PlaceOrder turns the live cart and applied discount into an order for userID, priced with
// the configured shipping policy
func (j *OrderJournal) PlaceOrder(ctx context.Context, userID string, req CheckoutRequest) (*model.Order, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()

	items, err := j.s.loadCart(ctx)
	if err != nil {
		return nil, err
	}
	discount, err := j.s.loadDiscount(ctx)
	if err != nil {
		return nil, err
	}

	return j.placeOrder(ctx, userID, items, req.Delivery, req.PaymentMethod, discount, j.s.policy())
}

// PlaceOrderFrom places an order from an explicit cart snapshot. Like PlaceOrder it clears the
// session cart and applied discount once the order is stored.
func (j *OrderJournal) PlaceOrderFrom(
	ctx context.Context,
	userID string,
	cartSnapshot []model.CartItem,
	delivery model.DeliveryInfo,
	paymentMethod string,
	discount *model.AppliedDiscount,
	shippingThreshold, flatShippingFee int64,
) (*model.Order, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()

	if err := validateSnapshot(cartSnapshot, j.s.maxQuantity()); err != nil {
		return nil, err
	}

	policy := pricing.Policy{ShippingThreshold: shippingThreshold, FlatShippingFee: flatShippingFee}
	return j.placeOrder(ctx, userID, cartSnapshot, delivery, paymentMethod, discount, policy)
}

// validateSnapshot holds a caller-supplied cart to the same rules as the live cart:
// one line per product and every quantity in [MinQuantity, limit]
func validateSnapshot(items []model.CartItem, limit int) error {
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if item.Quantity < model.MinQuantity || item.Quantity > limit {
			return ErrInvalidQuantity
		}
		if seen[item.ID] {
			return &ValidationError{Field: "items", Message: fmt.Sprintf("product %d appears more than once", item.ID)}
		}
		seen[item.ID] = true
	}
	return nil
}

func (j *OrderJournal) placeOrder(
	ctx context.Context,
	userID string,
	items []model.CartItem,
	delivery model.DeliveryInfo,
	paymentMethod string,
	discount *model.AppliedDiscount,
	policy pricing.Policy,
) (*model.Order, error) {
	if userID == "" {
		return nil, ErrNotLoggedIn
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := ValidateDelivery(delivery); err != nil {
		return nil, err
	}

	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		paymentMethod = model.PaymentCOD
	}

	summary := pricing.Summarize(items, discount, policy)
	order := model.Order{
		ID:     j.s.newID(),
		UserID: userID,
		Items:  model.CloneItems(items),
		DeliveryInfo: model.DeliveryInfo{
			Name:    strings.TrimSpace(delivery.Name),
			Phone:   strings.TrimSpace(delivery.Phone),
			Address: strings.TrimSpace(delivery.Address),
		},
		PaymentMethod:  paymentMethod,
		Subtotal:       summary.Subtotal,
		ShippingFee:    summary.ShippingFee,
		Discount:       summary.Discount,
		DiscountAmount: summary.DiscountAmount,
		Total:          summary.Total,
		OrderDate:      j.s.now(),
		Status:         model.OrderStatusPending,
	}

	orders, err := j.s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}
	if err := j.s.saveOrders(ctx, append(orders, order)); err != nil {
		return nil, err
	}

	// The order is committed at this point; a cart that fails to clear is logged, not reported.
	if err := j.s.clearCart(ctx); err != nil {
		j.log.WithUserID(userID).Error().Err(err).Str("order_id", order.ID).Msg("failed to clear cart after checkout")
	}

	j.log.AuditLog(userID, model.AuditActionOrderPlaced, model.ResourceOrder, order.ID, map[string]interface{}{
		"total": order.Total,
		"items": len(order.Items),
	})

	placed := order
	placed.Items = model.CloneItems(order.Items)
	return &placed, nil
}

// OrderFilter narrows ListForUser. Zero values match everything.
type OrderFilter struct {
	Status model.OrderStatus
	// From and To bound the order date by calendar day, both inclusive
	From *time.Time
	To   *time.Time
}

func (f OrderFilter) match(o *model.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.From != nil && o.OrderDate.Before(startOfDay(*f.From)) {
		return false
	}
	if f.To != nil && o.OrderDate.After(endOfDay(*f.To)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// ListForUser returns the orders of userID matching filter, newest first
func (j *OrderJournal) ListForUser(ctx context.Context, userID string, filter OrderFilter) ([]model.Order, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()

	orders, err := j.s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}

	var out []model.Order
	for i := range orders {
		if orders[i].UserID == userID && filter.match(&orders[i]) {
			out = append(out, orders[i])
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].OrderDate.After(out[b].OrderDate)
	})
	return out, nil
}

// Get returns one order
func (j *OrderJournal) Get(ctx context.Context, orderID string) (*model.Order, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()

	orders, err := j.s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}
	i := findOrder(orders, orderID)
	if i < 0 {
		return nil, ErrOrderNotFound
	}
	order := orders[i]
	return &order, nil
}

// Cancel moves a pending order to cancelled
func (j *OrderJournal) Cancel(ctx context.Context, orderID string) (*model.Order, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()

	orders, err := j.s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}
	i := findOrder(orders, orderID)
	if i < 0 {
		return nil, ErrOrderNotFound
	}
	if orders[i].Status != model.OrderStatusPending {
		return nil, ErrNotCancellable
	}

	now := j.s.now()
	orders[i].Status = model.OrderStatusCancelled
	orders[i].CancelledAt = &now

	if err := j.s.saveOrders(ctx, orders); err != nil {
		return nil, err
	}

	j.log.AuditLog(orders[i].UserID, model.AuditActionOrderCancelled, model.ResourceOrder, orderID, nil)

	order := orders[i]
	return &order, nil
}

// Reorder merges every line of an order back into the cart and returns how many lines were
// merged. Merged quantities are not capped unless shop.enforce_limit_on_reorder is set.
func (j *OrderJournal) Reorder(ctx context.Context, orderID string) (int, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()

	orders, err := j.s.loadOrders(ctx)
	if err != nil {
		return 0, err
	}
	i := findOrder(orders, orderID)
	if i < 0 {
		return 0, ErrOrderNotFound
	}

	items, err := j.s.loadCart(ctx)
	if err != nil {
		return 0, err
	}

	limit := j.s.maxQuantity()
	now := j.s.now()
	for _, line := range model.CloneItems(orders[i].Items) {
		if k := findLine(items, line.ID); k >= 0 {
			items[k].Quantity += line.Quantity
		} else {
			line.AddedAt = now
			items = append(items, line)
		}
	}
	if j.s.cfg.Shop.EnforceLimitOnReorder {
		for k := range items {
			items[k].Quantity = min(items[k].Quantity, limit)
		}
	}

	if err := j.s.saveCart(ctx, items); err != nil {
		return 0, err
	}

	merged := len(orders[i].Items)
	j.log.AuditLog(orders[i].UserID, model.AuditActionOrderReordered, model.ResourceOrder, orderID, map[string]interface{}{
		"lines": merged,
	})
	return merged, nil
}

func findOrder(orders []model.Order, orderID string) int {
	for i := range orders {
		if orders[i].ID == orderID {
			return i
		}
	}
	return -1
}
