// Package cart implements the persisted shopping cart state holder.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// A CorruptPolicy decides what happens to an undecodable slot on startup.
type CorruptPolicy string

const (
	// ResetCorrupt overwrites the slot with an empty cart right away.
	ResetCorrupt CorruptPolicy = "reset"
	// KeepCorrupt leaves the slot untouched until the first mutation.
	KeepCorrupt CorruptPolicy = "keep"
)

func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch p := CorruptPolicy(s); p {
	case ResetCorrupt, KeepCorrupt:
		return p, nil
	case "":
		return ResetCorrupt, nil
	}
	return "", fmt.Errorf("unknown corrupt policy %q", s)
}

type Opt func(*Store)

func CorruptPolicyOpt(p CorruptPolicy) Opt {
	return func(s *Store) {
		s.onCorrupt = p
	}
}

// A Store owns one cart. Each mutation and the snapshot write that follows
// it happen under one lock, so the slot never lags behind an accepted event.
//
// Slot failures never reach the caller: a failed load yields an empty cart
// and a failed save leaves the in-memory cart authoritative.
type Store struct {
	mu        sync.Mutex
	slot      port.SlotStorage
	key       string
	lines     []domain.CartLine
	onCorrupt CorruptPolicy
	log       *slog.Logger
}

// New restores the cart saved under key.
func New(
	ctx context.Context, slot port.SlotStorage, key string, opts ...Opt,
) *Store {
	const op = "cart.New"

	if slot == nil {
		panic(op + ": slot storage is nil") // develop mistake
	}

	s := &Store{
		slot:      slot,
		key:       key,
		onCorrupt: ResetCorrupt,
		log:       slog.With("op", op, "key", key),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.restore(ctx)
	return s
}

// restore is detached from ctx cancellation: a load cut short by a finished
// request would otherwise leave an empty cart that overwrites the slot.
func (s *Store) restore(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	lines, err := s.slot.LoadCart(ctx, s.key)
	switch {
	case err == nil:
		s.lines = normalize(lines)
		s.log.Debug("cart restored", "lines", len(s.lines))
	case errors.Is(err, domain.ErrSlotNotFound):
		s.log.Debug("no saved cart")
	case errors.Is(err, domain.ErrCorruptSlot):
		s.log.Warn("saved cart is corrupt, starting empty",
			"policy", s.onCorrupt, "err", err)
		if s.onCorrupt == ResetCorrupt {
			s.persist(ctx)
		}
	default:
		s.log.Error("failed to load saved cart, starting empty", "err", err)
	}
}

// normalize merges duplicate ids, drops non-positive quantities and caps
// the rest at [domain.MaxQuantity]. Slot backends are not trusted to have
// done so.
func normalize(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ItemID == "" || l.Quantity < 1 {
			continue
		}
		if i := indexOf(out, l.ItemID); i >= 0 {
			out[i].Quantity = addQuantity(out[i].Quantity, l.Quantity)
			continue
		}
		l.Quantity = min(l.Quantity, domain.MaxQuantity)
		out = append(out, l)
	}
	return out
}

// addQuantity returns cur+delta within [1, domain.MaxQuantity]. cur must
// already be in that range, so neither bound check overflows.
func addQuantity(cur, delta int) int {
	switch {
	case delta > domain.MaxQuantity-cur:
		return domain.MaxQuantity
	case delta < 1-cur:
		return 1
	}
	return cur + delta
}

func indexOf(lines []domain.CartLine, id string) int {
	return slices.IndexFunc(lines, func(l domain.CartLine) bool {
		return l.ItemID == id
	})
}

// Add increments the line for id by qty, appending it when absent. A line
// never grows past [domain.MaxQuantity]; such an Add is rejected whole.
func (s *Store) Add(ctx context.Context, id string, qty int) error {
	const op = "Store.Add"

	if qty < 1 || qty > domain.MaxQuantity {
		return fmt.Errorf("%s: %w: %d", op, domain.ErrInvalidQuantity, qty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.lines, id); i >= 0 {
		cur := s.lines[i].Quantity
		if qty > domain.MaxQuantity-cur {
			return fmt.Errorf("%s: %w: %d more than the %d in cart",
				op, domain.ErrInvalidQuantity, qty, cur)
		}
		s.lines[i].Quantity = cur + qty
	} else {
		s.lines = append(s.lines, domain.CartLine{ItemID: id, Quantity: qty})
	}

	s.persist(ctx)
	return nil
}

// Remove deletes the line for id and reports whether it was present.
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.lines, id)
	if i < 0 {
		return false
	}
	s.lines = slices.Delete(s.lines, i, i+1)

	s.persist(ctx)
	return true
}

// SetQuantity sets the line quantity, clamped to [1, domain.MaxQuantity].
// Lines are only ever deleted through [Store.Remove].
func (s *Store) SetQuantity(ctx context.Context, id string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty = min(max(1, qty), domain.MaxQuantity)
	return s.setQuantity(ctx, id, func(int) int { return qty })
}

// Adjust is SetQuantity(id, current+delta) as used by the drawer buttons.
func (s *Store) Adjust(ctx context.Context, id string, delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setQuantity(ctx, id, func(cur int) int { return addQuantity(cur, delta) })
}

func (s *Store) setQuantity(
	ctx context.Context, id string, next func(cur int) int,
) bool {
	i := indexOf(s.lines, id)
	if i < 0 {
		return false
	}
	s.lines[i].Quantity = next(s.lines[i].Quantity)

	s.persist(ctx)
	return true
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist(ctx)
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.lines)
}

// Count is the sum of all quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Total sums price*quantity. Lines whose item is not in c count as zero.
func (s *Store) Total(c port.CatalogReader) int64 {
	return s.View(c).Total
}

// View resolves lines against c, skipping lines whose item is gone.
func (s *Store) View(c port.CatalogReader) domain.CartView {
	lines := s.Lines()

	v := domain.CartView{Lines: make([]domain.CartViewLine, 0, len(lines))}
	for _, l := range lines {
		v.Count += l.Quantity

		item, ok := c.Lookup(l.ItemID)
		if !ok {
			continue
		}
		subtotal := item.Price * int64(l.Quantity)
		v.Lines = append(v.Lines, domain.CartViewLine{
			Item:     item,
			Quantity: l.Quantity,
			Subtotal: subtotal,
		})
		v.Total += subtotal
	}
	return v
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) {
	const op = "Store.persist"

	ctx = context.WithoutCancel(ctx)
	if err := s.slot.SaveCart(ctx, s.key, slices.Clone(s.lines)); err != nil {
		slog.Warn("failed to save cart, keeping in-memory state",
			"op", op, "key", s.key, "err", err)
	}
}
