package service

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/catalog"
	"github.com/storefront/storefront/internal/config"
	"github.com/storefront/storefront/internal/logger"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/pricing"
	"github.com/storefront/storefront/internal/store"
)

// ProductLookup resolves product ids at add time
type ProductLookup interface {
	Lookup(id int64) (*model.Product, bool)
}

// Shop groups the domain services of one session. All services share one store and one lock,
// so every operation runs to completion before the next one starts.
type Shop struct {
	Users     *UserDirectory
	Cart      *CartLedger
	Discounts *DiscountEngine
	Orders    *OrderJournal
	Settings  *SettingsService
	Contact   *ContactService
	Guard     *Guard

	state *session
}

// session is the state shared by the services of a Shop
type session struct {
	mu       sync.Mutex
	kv       *store.KeyedStore
	products ProductLookup
	hasher   auth.Hasher
	cfg      *config.Config
	now      func() time.Time
	newID    func() string
}

// NewShop wires the domain services to kv
func NewShop(kv *store.KeyedStore, products ProductLookup, hasher auth.Hasher, cfg *config.Config, log *logger.Logger) *Shop {
	if cfg == nil {
		cfg = config.Default()
	}
	if hasher == nil {
		hasher = auth.PlaintextHasher{}
	}
	if products == nil {
		products = catalog.Default()
	}

	st := &session{
		kv:       kv,
		products: products,
		hasher:   hasher,
		cfg:      cfg,
		now:      time.Now,
		newID:    func() string { return ksuid.New().String() },
	}
	log = log.WithSessionID(kv.SessionID())

	discounts := NewDiscountEngine(DefaultDiscountCodes())
	return &Shop{
		Users:     &UserDirectory{s: st, log: log.WithComponent("user_directory")},
		Cart:      &CartLedger{s: st, discounts: discounts, log: log.WithComponent("cart_ledger")},
		Discounts: discounts,
		Orders:    &OrderJournal{s: st, log: log.WithComponent("order_journal")},
		Settings:  &SettingsService{s: st, log: log.WithComponent("settings_service")},
		Contact:   &ContactService{s: st, log: log.WithComponent("contact_service")},
		Guard:     NewGuard(),
		state:     st,
	}
}

// SetClock replaces the time source
func (sh *Shop) SetClock(now func() time.Time) {
	sh.state.mu.Lock()
	defer sh.state.mu.Unlock()
	sh.state.now = now
}

// SetIDGenerator replaces the generator of user and order ids
func (sh *Shop) SetIDGenerator(newID func() string) {
	sh.state.mu.Lock()
	defer sh.state.mu.Unlock()
	sh.state.newID = newID
}

// SessionID returns the session the shop operates on
func (sh *Shop) SessionID() string {
	return sh.state.kv.SessionID()
}

// Available reports whether the session storage can be written
func (sh *Shop) Available(ctx context.Context) error {
	return sh.state.kv.Available(ctx)
}

// Checkout places an order for the logged-in user from the live cart
func (sh *Shop) Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error) {
	current, err := sh.Users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return sh.Orders.PlaceOrder(ctx, current.UserID, req)
}

func (s *session) policy() pricing.Policy {
	return pricing.Policy{
		ShippingThreshold: s.cfg.Shop.ShippingThreshold,
		FlatShippingFee:   s.cfg.Shop.FlatShippingFee,
	}
}

func (s *session) maxQuantity() int {
	if s.cfg.Shop.MaxQuantity > 0 {
		return s.cfg.Shop.MaxQuantity
	}
	return model.MaxQuantity
}

// The helpers below expect s.mu to be held.

func (s *session) loadUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if _, err := s.kv.Get(ctx, store.KeyUsers, &users); err != nil {
		return nil, failed("load users", err)
	}
	return users, nil
}

func (s *session) saveUsers(ctx context.Context, users []model.User) error {
	if err := s.kv.Put(ctx, store.KeyUsers, users); err != nil {
		return failed("save users", err)
	}
	return nil
}

func (s *session) loadCurrentUser(ctx context.Context) (*model.CurrentUser, error) {
	var current model.CurrentUser
	found, err := s.kv.Get(ctx, store.KeyCurrentUser, &current)
	if err != nil {
		return nil, failed("load session", err)
	}
	if !found {
		return nil, nil
	}
	return &current, nil
}

func (s *session) loadCart(ctx context.Context) ([]model.CartItem, error) {
	var items []model.CartItem
	if _, err := s.kv.Get(ctx, store.KeyCart, &items); err != nil {
		return nil, failed("load cart", err)
	}
	return items, nil
}

func (s *session) saveCart(ctx context.Context, items []model.CartItem) error {
	if items == nil {
		items = []model.CartItem{}
	}
	if err := s.kv.Put(ctx, store.KeyCart, items); err != nil {
		return failed("save cart", err)
	}
	return nil
}

func (s *session) loadDiscount(ctx context.Context) (*model.AppliedDiscount, error) {
	var d model.AppliedDiscount
	found, err := s.kv.Get(ctx, store.KeyAppliedDiscount, &d)
	if err != nil {
		return nil, failed("load discount", err)
	}
	if !found {
		return nil, nil
	}
	return &d, nil
}

func (s *session) saveDiscount(ctx context.Context, d *model.AppliedDiscount) error {
	var err error
	if d == nil {
		err = s.kv.Remove(ctx, store.KeyAppliedDiscount)
	} else {
		err = s.kv.Put(ctx, store.KeyAppliedDiscount, d)
	}
	if err != nil {
		return failed("save discount", err)
	}
	return nil
}

// clearCart empties the cart and drops the applied discount
func (s *session) clearCart(ctx context.Context) error {
	if err := s.saveCart(ctx, nil); err != nil {
		return err
	}
	return s.saveDiscount(ctx, nil)
}

func (s *session) loadOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if _, err := s.kv.Get(ctx, store.KeyOrders, &orders); err != nil {
		return nil, failed("load orders", err)
	}
	return orders, nil
}

func (s *session) saveOrders(ctx context.Context, orders []model.Order) error {
	if err := s.kv.Put(ctx, store.KeyOrders, orders); err != nil {
		return failed("save orders", err)
	}
	return nil
}
