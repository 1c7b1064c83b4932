package service

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/storefront/internal/config"
	"github.com/storefront/storefront/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeTestOrder(t *testing.T, env *testEnv, productID int64, qty int) *model.Order {
	t.Helper()
	ctx := context.Background()

	_, err := env.shop.Cart.AddItem(ctx, productID, qty)
	require.NoError(t, err)
	order, err := env.shop.Checkout(ctx, CheckoutRequest{Delivery: deliveryInfo(), PaymentMethod: model.PaymentBank})
	require.NoError(t, err)
	return order
}

func TestOrderJournal_SnapshotIsIndependent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loginAlice(t)

	order := placeTestOrder(t, env, 1, 2)
	assert.Equal(t, model.PaymentBank, order.PaymentMethod)
	assert.Equal(t, 2, order.ItemCount())

	// Mutating the returned order and the live cart must not reach the stored order
	order.Items[0].Quantity = 50
	_, err := env.shop.Cart.AddItem(ctx, 1, 5)
	require.NoError(t, err)

	stored, err := env.shop.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)
}

func TestOrderJournal_PlaceOrderFromSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	current := env.loginAlice(t)

	_, err := env.shop.Cart.AddItem(ctx, 4, 1)
	require.NoError(t, err)

	snapshot := []model.CartItem{{ID: 6, Name: "Quần short nam", Price: 120000, Quantity: 3}}
	order, err := env.shop.Orders.PlaceOrderFrom(ctx, current.UserID, snapshot, deliveryInfo(), "", nil, 500000, 30000)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentCOD, order.PaymentMethod)
	assert.Equal(t, int64(360000), order.Subtotal)
	assert.Equal(t, int64(30000), order.ShippingFee)
	assert.Equal(t, int64(390000), order.Total)
	assert.Nil(t, order.Discount)

	snapshot[0].Quantity = 9
	stored, err := env.shop.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Items[0].Quantity)

	items, err := env.shop.Cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderJournal_PlaceOrderFromRejectsInvalidSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	current := env.loginAlice(t)
	orders := env.shop.Orders

	_, err := env.shop.Cart.AddItem(ctx, 4, 1)
	require.NoError(t, err)

	line := func(id int64, qty int) model.CartItem {
		return model.CartItem{ID: id, Name: "Quần short nam", Price: 120000, Quantity: qty}
	}

	tests := []struct {
		name     string
		snapshot []model.CartItem
		wantErr  error
	}{
		{"negative quantity", []model.CartItem{line(1, -3)}, ErrInvalidQuantity},
		{"zero quantity", []model.CartItem{line(1, 0)}, ErrInvalidQuantity},
		{"above the cap", []model.CartItem{line(1, 100)}, ErrInvalidQuantity},
		{"duplicate product", []model.CartItem{line(1, 1), line(1, 2)}, ErrInvalidInput},
		{"mixed invalid lines", []model.CartItem{line(1, -3), line(1, 500)}, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orders.PlaceOrderFrom(ctx, current.UserID, tt.snapshot, deliveryInfo(), "", nil, 500000, 30000)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	list, err := orders.ListForUser(ctx, current.UserID, OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// Rejected snapshots leave the live cart alone
	count, err := env.shop.Cart.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	order, err := orders.PlaceOrderFrom(ctx, current.UserID, []model.CartItem{line(1, 99), line(2, 1)}, deliveryInfo(), "", nil, 500000, 30000)
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
}

func TestOrderJournal_PlaceOrderErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	current := env.loginAlice(t)
	orders := env.shop.Orders

	_, err := orders.PlaceOrder(ctx, current.UserID, CheckoutRequest{Delivery: deliveryInfo()})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = env.shop.Cart.AddItem(ctx, 1, 1)
	require.NoError(t, err)

	_, err = orders.PlaceOrder(ctx, "", CheckoutRequest{Delivery: deliveryInfo()})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	bad := []model.DeliveryInfo{
		{Name: "A", Phone: "0901234567", Address: "12 Le Loi, District 1"},
		{Name: "Alice", Phone: "12345", Address: "12 Le Loi, District 1"},
		{Name: "Alice", Phone: "0901234567", Address: "Le Loi"},
		{},
	}
	for _, info := range bad {
		_, err = orders.PlaceOrder(ctx, current.UserID, CheckoutRequest{Delivery: info})
		assert.ErrorIs(t, err, ErrInvalidDeliveryInfo)
	}

	// A failed checkout leaves the cart alone
	count, err := env.shop.Cart.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	list, err := orders.ListForUser(ctx, current.UserID, OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOrderJournal_CancelOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loginAlice(t)
	order := placeTestOrder(t, env, 2, 1)

	cancelled, err := env.shop.Orders.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = env.shop.Orders.Cancel(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)

	_, err = env.shop.Orders.Cancel(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = env.shop.Orders.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderJournal_ListForUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	current := env.loginAlice(t)

	first := placeTestOrder(t, env, 1, 1)
	env.clock.advance(48 * time.Hour)
	second := placeTestOrder(t, env, 2, 1)
	_, err := env.shop.Orders.Cancel(ctx, first.ID)
	require.NoError(t, err)

	all, err := env.shop.Orders.ListForUser(ctx, current.UserID, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	pending, err := env.shop.Orders.ListForUser(ctx, current.UserID, OrderFilter{Status: model.OrderStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	// Day bounds are inclusive and ignore the time of day
	day := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	onFirstDay, err := env.shop.Orders.ListForUser(ctx, current.UserID, OrderFilter{From: &day, To: &day})
	require.NoError(t, err)
	require.Len(t, onFirstDay, 1)
	assert.Equal(t, first.ID, onFirstDay[0].ID)

	others, err := env.shop.Orders.ListForUser(ctx, "someone-else", OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestOrderJournal_Reorder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loginAlice(t)

	_, err := env.shop.Cart.AddItem(ctx, 1, 60)
	require.NoError(t, err)
	_, err = env.shop.Cart.AddItem(ctx, 2, 1)
	require.NoError(t, err)
	order, err := env.shop.Checkout(ctx, CheckoutRequest{Delivery: deliveryInfo()})
	require.NoError(t, err)

	_, err = env.shop.Cart.AddItem(ctx, 1, 60)
	require.NoError(t, err)

	n, err := env.shop.Orders.Reorder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := env.shop.Cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 120, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)

	_, err = env.shop.Orders.Reorder(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderJournal_ReorderWithLimit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, func(c *config.Config) { c.Shop.EnforceLimitOnReorder = true })
	env.loginAlice(t)

	order := placeTestOrder(t, env, 1, 60)
	_, err := env.shop.Cart.AddItem(ctx, 1, 60)
	require.NoError(t, err)

	_, err = env.shop.Orders.Reorder(ctx, order.ID)
	require.NoError(t, err)

	items, err := env.shop.Cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.MaxQuantity, items[0].Quantity)
}
