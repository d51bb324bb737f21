package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memSlot struct {
	mu   sync.Mutex
	data map[string][]domain.CartLine
}

func (m *memSlot) LoadCart(_ context.Context, key string) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines, ok := m.data[key]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	return lines, nil
}

func (m *memSlot) SaveCart(_ context.Context, key string, lines []domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = lines
	return nil
}

type MockSlot struct {
	mock.Mock
}

func (m *MockSlot) LoadCart(ctx context.Context, key string) ([]domain.CartLine, error) {
	args := m.Called(ctx, key)
	lines, _ := args.Get(0).([]domain.CartLine)
	return lines, args.Error(1)
}

func (m *MockSlot) SaveCart(ctx context.Context, key string, lines []domain.CartLine) error {
	args := m.Called(ctx, key, lines)
	return args.Error(0)
}

func newService(t *testing.T, opts ...Opt) (*Service, *memSlot) {
	t.Helper()
	c, site := catalog.Default()
	slot := &memSlot{data: map[string][]domain.CartLine{}}
	return New(c, site, slot, opts...), slot
}

func TestServiceBrowse(t *testing.T) {
	s, _ := newService(t)

	q := domain.DefaultQuery()
	q.Type = domain.TypeFilter(domain.Comic)
	items := s.Browse(t.Context(), q)

	require.Len(t, items, 1)
	assert.Equal(t, "cmc-201", items[0].ID)
	assert.Equal(t, "Saadiyyah Institute", s.Site().Brand)
}

func TestServiceItem(t *testing.T) {
	s, _ := newService(t)

	item, err := s.Item(t.Context(), "crs-101")
	require.NoError(t, err)
	assert.Equal(t, int64(1290), item.Price)

	_, err = s.Item(t.Context(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceCart(t *testing.T) {
	ctx := t.Context()

	t.Run("Flow", func(t *testing.T) {
		s, _ := newService(t)

		require.NoError(t, s.AddToCart(ctx, "v1", "wks-001", 1))
		require.NoError(t, s.AddToCart(ctx, "v1", "crs-101", 2))
		require.NoError(t, s.AdjustQuantity(ctx, "v1", "crs-101", -1))
		require.NoError(t, s.SetQuantity(ctx, "v1", "wks-001", 3))

		v, err := s.CartView(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, int64(79*3+1290), v.Total)
		assert.Equal(t, 4, v.Count)

		require.NoError(t, s.RemoveFromCart(ctx, "v1", "wks-001"))
		require.NoError(t, s.RemoveFromCart(ctx, "v1", "wks-001"))
		require.NoError(t, s.ClearCart(ctx, "v1"))

		v, err = s.CartView(ctx, "v1")
		require.NoError(t, err)
		assert.Empty(t, v.Lines)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		s, _ := newService(t)
		err := s.AddToCart(ctx, "v1", "nope", 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		s, _ := newService(t)
		err := s.AddToCart(ctx, "v1", "wks-001", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	})

	t.Run("MissingLine", func(t *testing.T) {
		s, _ := newService(t)
		assert.ErrorIs(t, s.SetQuantity(ctx, "v1", "wks-001", 2), domain.ErrNotFound)
		assert.ErrorIs(t, s.AdjustQuantity(ctx, "v1", "wks-001", 1), domain.ErrNotFound)
	})

	t.Run("VisitorsAreIsolated", func(t *testing.T) {
		s, slot := newService(t, SlotKeyOpt("shop"))

		require.NoError(t, s.AddToCart(ctx, "v1", "wks-001", 1))

		v, err := s.CartView(ctx, "v2")
		require.NoError(t, err)
		assert.Empty(t, v.Lines)

		assert.Contains(t, slot.data, "shop:v1")
		assert.Equal(t, "shop", s.SlotKey(""))
	})

	t.Run("RestoresFromSlot", func(t *testing.T) {
		s, slot := newService(t)
		require.NoError(t, s.AddToCart(ctx, "v1", "cmc-201", 2))

		c, site := catalog.Default()
		restarted := New(c, site, slot)

		v, err := restarted.CartView(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, int64(358), v.Total)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		s, _ := newService(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, s.AddToCart(cctx, "v1", "wks-001", 1), context.Canceled)
	})
}

func TestServiceRegistry(t *testing.T) {
	ctx := t.Context()

	t.Run("ReadsDoNotGrowIt", func(t *testing.T) {
		s, _ := newService(t)

		for i := range 1000 {
			v, err := s.CartView(ctx, fmt.Sprint("visitor-", i))
			require.NoError(t, err)
			assert.Empty(t, v.Lines)
		}
		require.NoError(t, s.RemoveFromCart(ctx, "other", "wks-001"))
		assert.ErrorIs(t, s.AdjustQuantity(ctx, "other", "wks-001", 1), domain.ErrNotFound)
		assert.Empty(t, s.carts)

		require.NoError(t, s.AddToCart(ctx, "v1", "wks-001", 1))
		_, err := s.CartView(ctx, "v1")
		require.NoError(t, err)
		assert.Len(t, s.carts, 1)
	})

	t.Run("RestoredCartIsKeptOnRead", func(t *testing.T) {
		s, slot := newService(t)
		slot.data["cart:v1"] = []domain.CartLine{{ItemID: "wks-001", Quantity: 2}}

		v, err := s.CartView(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, 2, v.Count)
		assert.Contains(t, s.carts, "v1")
	})

	t.Run("EvictsIdleCarts", func(t *testing.T) {
		s, slot := newService(t, IdleTTLOpt(time.Minute))
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }

		require.NoError(t, s.AddToCart(ctx, "old", "wks-001", 1))
		now = now.Add(45 * time.Second)
		require.NoError(t, s.AddToCart(ctx, "recent", "crs-101", 1))

		assert.Equal(t, 1, s.EvictIdle(now.Add(15*time.Second)))
		assert.NotContains(t, s.carts, "old")
		assert.Contains(t, s.carts, "recent")

		v, err := s.CartView(ctx, "old")
		require.NoError(t, err)
		assert.Equal(t, 1, v.Count)
		assert.Contains(t, slot.data, "cart:old")
	})

	t.Run("NoTTLKeepsCarts", func(t *testing.T) {
		s, _ := newService(t)
		require.NoError(t, s.AddToCart(ctx, "v1", "wks-001", 1))

		assert.Zero(t, s.EvictIdle(time.Now().Add(24*time.Hour)))
		assert.Len(t, s.carts, 1)
	})

	t.Run("SlowLoadBlocksOnlyItsVisitor", func(t *testing.T) {
		started, release := make(chan struct{}), make(chan struct{})
		slot := new(MockSlot)
		slot.On("LoadCart", mock.Anything, "cart:slow").
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(nil, domain.ErrSlotNotFound).Once()
		slot.On("LoadCart", mock.Anything, "cart:fast").Return(nil, domain.ErrSlotNotFound)
		slot.On("SaveCart", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		c, site := catalog.Default()
		s := New(c, site, slot)

		slowDone := make(chan error, 2)
		go func() { slowDone <- s.AddToCart(ctx, "slow", "wks-001", 1) }()
		<-started
		go func() { slowDone <- s.AddToCart(ctx, "slow", "wks-001", 1) }()

		fastDone := make(chan error, 1)
		go func() { fastDone <- s.AddToCart(ctx, "fast", "crs-101", 1) }()

		select {
		case err := <-fastDone:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("fast visitor waited for the slow load")
		}

		close(release)
		require.NoError(t, <-slowDone)
		require.NoError(t, <-slowDone)

		v, err := s.CartView(ctx, "slow")
		require.NoError(t, err)
		assert.Equal(t, 2, v.Count)
		slot.AssertNumberOfCalls(t, "LoadCart", 2)
	})
}
