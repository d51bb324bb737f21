package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type MockProducerClient struct {
	mock.Mock
}

func (m *MockProducerClient) ProduceSync(
	ctx context.Context, rs ...*kgo.Record,
) kgo.ProduceResults {
	args := m.Called(ctx, rs)
	res := make(kgo.ProduceResults, len(rs))
	for i, r := range rs {
		res[i] = kgo.ProduceResult{Record: r, Err: args.Error(0)}
	}
	return res
}

func (m *MockProducerClient) Close() {
	m.Called()
}

type fakeView struct {
	values    map[string]any
	getErr    error
	recovered bool
}

func (v *fakeView) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (v *fakeView) Get(key string) (any, error) {
	if v.getErr != nil {
		return nil, v.getErr
	}
	return v.values[key], nil
}

func (v *fakeView) Recovered() bool {
	return v.recovered
}

var sampleLines = []domain.CartLine{
	{ItemID: "wks-001", Quantity: 2},
	{ItemID: "crs-101", Quantity: 1},
}

func encodeSample(t *testing.T) []byte {
	t.Helper()
	b, err := schema.AvroCartSnapshot{}.Encode(adapter.SnapshotFromLines(sampleLines))
	require.NoError(t, err)
	return b
}

func TestCartSlotsSave(t *testing.T) {
	cl := new(MockProducerClient)
	view := &fakeView{values: map[string]any{}}
	s := newCartSlots(cl, view, schema.AvroCartSnapshot{})

	want := encodeSample(t)
	cl.On("ProduceSync", mock.Anything, mock.MatchedBy(func(rs []*kgo.Record) bool {
		return len(rs) == 1 &&
			string(rs[0].Key) == "cart:v1" &&
			string(rs[0].Value) == string(want)
	})).Return(nil).Once()

	require.NoError(t, s.SaveCart(t.Context(), "cart:v1", sampleLines))
	cl.AssertExpectations(t)

	got, err := s.LoadCart(t.Context(), "cart:v1")
	require.NoError(t, err)
	assert.Equal(t, sampleLines, got)
}

func TestCartSlotsSaveFails(t *testing.T) {
	cl := new(MockProducerClient)
	s := newCartSlots(cl, &fakeView{}, schema.AvroCartSnapshot{})

	errBroker := errors.New("broker unavailable")
	cl.On("ProduceSync", mock.Anything, mock.Anything).Return(errBroker).Once()

	err := s.SaveCart(t.Context(), "cart", sampleLines)
	assert.ErrorIs(t, err, errBroker)

	_, err = s.LoadCart(t.Context(), "cart")
	assert.ErrorIs(t, err, domain.ErrSlotNotFound)
}

func TestCartSlotsSaveRejectsInvalidLines(t *testing.T) {
	cl := new(MockProducerClient)
	s := newCartSlots(cl, &fakeView{}, schema.AvroCartSnapshot{})

	err := s.SaveCart(t.Context(), "cart", []domain.CartLine{{ItemID: "", Quantity: 1}})
	assert.ErrorIs(t, err, schema.ErrInvalidSnapshot)
	cl.AssertNotCalled(t, "ProduceSync", mock.Anything, mock.Anything)
}

func TestCartSlotsLoad(t *testing.T) {
	tests := []struct {
		name    string
		view    *fakeView
		want    []domain.CartLine
		wantErr error
	}{
		{
			name:    "Missing",
			view:    &fakeView{values: map[string]any{}},
			wantErr: domain.ErrSlotNotFound,
		},
		{
			name:    "Tombstone",
			view:    &fakeView{values: map[string]any{"cart": []byte{}}},
			wantErr: domain.ErrSlotNotFound,
		},
		{
			name:    "Corrupt",
			view:    &fakeView{values: map[string]any{"cart": []byte{0xff, 0xff, 0xff}}},
			wantErr: domain.ErrCorruptSlot,
		},
		{
			name:    "WrongType",
			view:    &fakeView{values: map[string]any{"cart": "text"}},
			wantErr: ErrInvalidValueType,
		},
		{
			name:    "ViewError",
			view:    &fakeView{getErr: errors.New("storage closed")},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newCartSlots(new(MockProducerClient), tt.view, schema.AvroCartSnapshot{})
			_, err := s.LoadCart(t.Context(), "cart")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NotErrorIs(t, err, domain.ErrSlotNotFound)
				assert.NotErrorIs(t, err, domain.ErrCorruptSlot)
			}
		})
	}

	t.Run("FromView", func(t *testing.T) {
		view := &fakeView{values: map[string]any{"cart": encodeSample(t)}}
		s := newCartSlots(new(MockProducerClient), view, schema.AvroCartSnapshot{})

		got, err := s.LoadCart(t.Context(), "cart")
		require.NoError(t, err)
		assert.Equal(t, sampleLines, got)
	})
}

func TestCartSlotsWaitRecovered(t *testing.T) {
	t.Run("Recovered", func(t *testing.T) {
		s := newCartSlots(new(MockProducerClient), &fakeView{recovered: true}, schema.AvroCartSnapshot{})
		assert.NoError(t, s.WaitRecovered(t.Context()))
	})

	t.Run("Timeout", func(t *testing.T) {
		s := newCartSlots(new(MockProducerClient), &fakeView{}, schema.AvroCartSnapshot{})
		ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, s.WaitRecovered(ctx), context.DeadlineExceeded)
	})
}

func TestCartSlotsClose(t *testing.T) {
	cl := new(MockProducerClient)
	cl.On("Close").Once()
	s := newCartSlots(cl, &fakeView{}, schema.AvroCartSnapshot{})
	s.Close()
	cl.AssertExpectations(t)
}

func TestCartSlotsWrittenCache(t *testing.T) {
	ctx := t.Context()

	newSlots := func(view *fakeView) (*CartSlots, *time.Time) {
		cl := new(MockProducerClient)
		cl.On("ProduceSync", mock.Anything, mock.Anything).Return(nil)
		s := newCartSlots(cl, view, schema.AvroCartSnapshot{})
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }
		return s, &now
	}

	t.Run("DroppedOnceViewCatchesUp", func(t *testing.T) {
		view := &fakeView{values: map[string]any{}}
		s, _ := newSlots(view)

		require.NoError(t, s.SaveCart(ctx, "cart", sampleLines))
		assert.Len(t, s.written, 1)

		view.values["cart"] = encodeSample(t)
		got, err := s.LoadCart(ctx, "cart")
		require.NoError(t, err)
		assert.Equal(t, sampleLines, got)
		assert.Empty(t, s.written)
	})

	t.Run("ServedWhileViewLags", func(t *testing.T) {
		older, err := schema.AvroCartSnapshot{}.Encode(
			adapter.SnapshotFromLines(sampleLines[:1]),
		)
		require.NoError(t, err)
		view := &fakeView{values: map[string]any{"cart": older}}
		s, _ := newSlots(view)

		require.NoError(t, s.SaveCart(ctx, "cart", sampleLines))

		got, err := s.LoadCart(ctx, "cart")
		require.NoError(t, err)
		assert.Equal(t, sampleLines, got)
		assert.Len(t, s.written, 1)
	})

	t.Run("ExpiredEntriesArePruned", func(t *testing.T) {
		s, now := newSlots(&fakeView{values: map[string]any{}})

		for _, key := range []string{"cart:a", "cart:b", "cart:c"} {
			require.NoError(t, s.SaveCart(ctx, key, sampleLines))
		}
		assert.Len(t, s.written, 3)

		*now = now.Add(writtenTTL)
		_, err := s.LoadCart(ctx, "cart:a")
		assert.ErrorIs(t, err, domain.ErrSlotNotFound)

		require.NoError(t, s.SaveCart(ctx, "cart:d", sampleLines))
		assert.Len(t, s.written, 1)
		assert.Contains(t, s.written, "cart:d")
	})
}
