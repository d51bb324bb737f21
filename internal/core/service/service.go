package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/niksmo/storefront/internal/core/cart"
	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.Storefront = (*Service)(nil)

const DefaultSlotKey = "cart"

type Opt func(*Service)

// SlotKeyOpt sets the base slot key. Visitor carts are stored under
// "<key>:<visitorID>", the anonymous cart under the key itself.
func SlotKeyOpt(key string) Opt {
	return func(s *Service) {
		if key != "" {
			s.slotKey = key
		}
	}
}

// IdleTTLOpt sets how long an unused cart stays in memory. Zero keeps
// carts until the process exits.
func IdleTTLOpt(ttl time.Duration) Opt {
	return func(s *Service) {
		s.idleTTL = ttl
	}
}

func CartOpts(opts ...cart.Opt) Opt {
	return func(s *Service) {
		s.cartOpts = append(s.cartOpts, opts...)
	}
}

type Service struct {
	catalog  catalog.Catalog
	site     domain.Site
	slot     port.SlotStorage
	slotKey  string
	cartOpts []cart.Opt
	idleTTL  time.Duration
	now      func() time.Time

	mu    sync.Mutex
	carts map[string]*cartEntry
}

// A cartEntry is published before its store is restored; ready is closed
// once store is set. lastUsed and pinned are guarded by Service.mu.
type cartEntry struct {
	ready    chan struct{}
	store    *cart.Store
	lastUsed time.Time
	pinned   bool
}

func New(
	c catalog.Catalog, site domain.Site, slot port.SlotStorage, opts ...Opt,
) *Service {
	s := &Service{
		catalog: c,
		site:    site,
		slot:    slot,
		slotKey: DefaultSlotKey,
		now:     time.Now,
		carts:   make(map[string]*cartEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Browse(_ context.Context, q domain.Query) []domain.CatalogItem {
	return catalog.FilterAndSort(s.catalog, q)
}

func (s *Service) Item(_ context.Context, id string) (domain.CatalogItem, error) {
	const op = "Service.Item"

	item, ok := s.catalog.Lookup(id)
	if !ok {
		return domain.CatalogItem{}, fmt.Errorf("%s: %w: %q", op, domain.ErrNotFound, id)
	}
	return item, nil
}

func (s *Service) Site() domain.Site {
	return s.site
}

func (s *Service) SlotKey(visitorID string) string {
	if visitorID == "" {
		return s.slotKey
	}
	return s.slotKey + ":" + visitorID
}

// Cart returns the visitor's cart, restoring it from the slot on first use.
// The cart stays in memory until it has been idle for the configured TTL.
func (s *Service) Cart(ctx context.Context, visitorID string) *cart.Store {
	return s.cart(ctx, visitorID, true)
}

// cart restores the slot outside s.mu, so a slow backend only delays the
// visitor it belongs to. An unpinned cart that turns out empty is not kept:
// reads alone must not grow the registry.
func (s *Service) cart(ctx context.Context, visitorID string, pin bool) *cart.Store {
	s.mu.Lock()
	e, ok := s.carts[visitorID]
	if !ok {
		e = &cartEntry{ready: make(chan struct{})}
		s.carts[visitorID] = e
	}
	e.lastUsed = s.now()
	e.pinned = e.pinned || pin
	s.mu.Unlock()

	if ok {
		<-e.ready
		return e.store
	}

	e.store = cart.New(ctx, s.slot, s.SlotKey(visitorID), s.cartOpts...)
	close(e.ready)

	if e.store.Count() == 0 {
		s.mu.Lock()
		if !e.pinned && s.carts[visitorID] == e {
			delete(s.carts, visitorID)
		}
		s.mu.Unlock()
	}
	return e.store
}

// EvictIdle drops carts unused since now minus the idle TTL and returns
// how many were dropped. Their state is already in the slot.
func (s *Service) EvictIdle(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, e := range s.carts {
		if now.Sub(e.lastUsed) >= s.idleTTL {
			delete(s.carts, id)
			n++
		}
	}
	return n
}

// RunEviction calls [Service.EvictIdle] every half TTL until ctx is done.
func (s *Service) RunEviction(ctx context.Context) {
	const op = "Service.RunEviction"
	log := slog.With("op", op)

	if s.idleTTL <= 0 {
		return
	}

	ticker := time.NewTicker(max(s.idleTTL/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(s.now()); n > 0 {
				log.Debug("idle carts evicted", "count", n)
			}
		}
	}
}

func (s *Service) AddToCart(
	ctx context.Context, visitorID, itemID string, qty int,
) error {
	const op = "Service.AddToCart"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.Item(ctx, itemID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.Cart(ctx, visitorID).Add(ctx, itemID, qty); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveFromCart is a no-op for lines not in the cart.
func (s *Service) RemoveFromCart(
	ctx context.Context, visitorID, itemID string,
) error {
	const op = "Service.RemoveFromCart"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cart(ctx, visitorID, false).Remove(ctx, itemID)
	return nil
}

func (s *Service) SetQuantity(
	ctx context.Context, visitorID, itemID string, qty int,
) error {
	const op = "Service.SetQuantity"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.cart(ctx, visitorID, false).SetQuantity(ctx, itemID, qty) {
		return fmt.Errorf("%s: %w: line %q", op, domain.ErrNotFound, itemID)
	}
	return nil
}

func (s *Service) AdjustQuantity(
	ctx context.Context, visitorID, itemID string, delta int,
) error {
	const op = "Service.AdjustQuantity"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.cart(ctx, visitorID, false).Adjust(ctx, itemID, delta) {
		return fmt.Errorf("%s: %w: line %q", op, domain.ErrNotFound, itemID)
	}
	return nil
}

func (s *Service) ClearCart(ctx context.Context, visitorID string) error {
	const op = "Service.ClearCart"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cart(ctx, visitorID, false).Clear(ctx)
	return nil
}

func (s *Service) CartView(
	ctx context.Context, visitorID string,
) (domain.CartView, error) {
	const op = "Service.CartView"

	if err := ctx.Err(); err != nil {
		return domain.CartView{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.cart(ctx, visitorID, false).View(s.catalog), nil
}
