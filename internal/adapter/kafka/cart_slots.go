package kafka

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lovoo/goka"
	"github.com/lovoo/goka/codec"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.SlotStorage = (*CartSlots)(nil)

const (
	recoveredPollInterval = 100 * time.Millisecond

	// writtenTTL bounds how long a produced snapshot is served from memory
	// while the view has not caught up with it.
	writtenTTL = 5 * time.Minute
)

type tableView interface {
	Run(ctx context.Context) error
	Get(key string) (any, error)
	Recovered() bool
}

// A CartSlotsConfig used for setup [CartSlots].
type CartSlotsConfig struct {
	SeedBrokers []string
	Topic       string
	Serde       Serde
	Security    Security
}

// CartSlots keeps one record per slot key on a compacted topic. Writes are
// produced synchronously with all ISR acks; reads come from a goka view
// that follows the topic. Snapshots written by this process are served
// from memory until the view holds the same bytes or writtenTTL passes, so
// a save is visible to the next load before the view has consumed it.
type CartSlots struct {
	opPrefix string
	cl       ProducerClient
	view     tableView
	serde    Serde
	now      func() time.Time

	mu      sync.Mutex
	written map[string]writtenSnapshot
}

type writtenSnapshot struct {
	data []byte
	at   time.Time
}

func NewCartSlots(ctx context.Context, config CartSlotsConfig) (*CartSlots, error) {
	const op = "NewCartSlots"

	if config.Serde == nil {
		panic(opErr(errors.New("serde is nil"), op)) // develop mistake
	}

	var opts producerOpts
	clientOpt := ProducerClientOpt(
		ctx, config.SeedBrokers, config.Topic, config.Security,
	)
	if err := clientOpt(&opts); err != nil {
		return nil, opErr(err, op)
	}

	config.Security.applyGoka()
	gv, err := goka.NewView(
		config.SeedBrokers,
		goka.Table(config.Topic),
		new(codec.Bytes),
		withNonlogViewOpt(),
	)
	if err != nil {
		opts.cl.Close()
		return nil, opErr(err, op)
	}

	return newCartSlots(opts.cl, gv, config.Serde), nil
}

func newCartSlots(cl ProducerClient, view tableView, serde Serde) *CartSlots {
	return &CartSlots{
		opPrefix: "CartSlots",
		cl:       cl,
		view:     view,
		serde:    serde,
		now:      time.Now,
		written:  make(map[string]writtenSnapshot),
	}
}

// Run follows the topic until ctx is done.
func (s *CartSlots) Run(ctx context.Context) {
	const op = "Run"
	log := slog.With("op", makeOp(s.opPrefix, op))

	log.Info("running view")
	if err := s.view.Run(ctx); err != nil {
		log.Error("view stopped", "err", err)
		return
	}
	log.Info("view stopped")
}

// WaitRecovered blocks until the view has read the topic up to its end
// at start time. Carts restored before that may miss snapshots.
func (s *CartSlots) WaitRecovered(ctx context.Context) error {
	const op = "WaitRecovered"

	ticker := time.NewTicker(recoveredPollInterval)
	defer ticker.Stop()

	for !s.view.Recovered() {
		select {
		case <-ctx.Done():
			return opErr(ctx.Err(), s.opPrefix, op)
		case <-ticker.C:
		}
	}
	return nil
}

func (s *CartSlots) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(s.opPrefix, op))

	log.Info("closing producer...")
	s.cl.Close()
	log.Info("producer is closed")
}

func (s *CartSlots) LoadCart(
	ctx context.Context, key string,
) ([]domain.CartLine, error) {
	const op = "LoadCart"

	if err := ctx.Err(); err != nil {
		return nil, opErr(err, s.opPrefix, op)
	}

	data, err := s.load(key)
	if err != nil {
		return nil, opErr(err, s.opPrefix, op)
	}

	var snap schema.CartSnapshotV1
	if err := s.serde.Decode(data, &snap); err != nil {
		return nil, opErr(
			fmt.Errorf("%w: %w", domain.ErrCorruptSlot, err), s.opPrefix, op,
		)
	}
	if err := snap.Validate(); err != nil {
		return nil, opErr(
			fmt.Errorf("%w: %w", domain.ErrCorruptSlot, err), s.opPrefix, op,
		)
	}
	return adapter.LinesFromSnapshot(snap), nil
}

func (s *CartSlots) load(key string) ([]byte, error) {
	data, err := s.viewValue(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.written[key]
	if ok && err == nil && bytes.Equal(w.data, data) {
		delete(s.written, key)
		return data, nil
	}
	if ok && s.now().Sub(w.at) < writtenTTL {
		return w.data, nil
	}
	return data, err
}

func (s *CartSlots) viewValue(key string) ([]byte, error) {
	v, err := s.view.Get(key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrSlotNotFound
	}

	data, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidValueType, v)
	}
	if len(data) == 0 {
		return nil, domain.ErrSlotNotFound
	}
	return data, nil
}

// pruneWritten drops snapshots older than writtenTTL. s.mu must be held.
func (s *CartSlots) pruneWritten(now time.Time) {
	for key, w := range s.written {
		if now.Sub(w.at) >= writtenTTL {
			delete(s.written, key)
		}
	}
}

func (s *CartSlots) SaveCart(
	ctx context.Context, key string, lines []domain.CartLine,
) error {
	const op = "SaveCart"

	if err := ctx.Err(); err != nil {
		return opErr(err, s.opPrefix, op)
	}

	snap := adapter.SnapshotFromLines(lines)
	if err := snap.Validate(); err != nil {
		return opErr(err, s.opPrefix, op)
	}

	b, err := s.serde.Encode(snap)
	if err != nil {
		return opErr(err, s.opPrefix, op)
	}

	r := &kgo.Record{Key: []byte(key), Value: b}
	if err := s.cl.ProduceSync(ctx, r).FirstErr(); err != nil {
		return opErr(err, s.opPrefix, op)
	}

	now := s.now()
	s.mu.Lock()
	s.pruneWritten(now)
	s.written[key] = writtenSnapshot{data: b, at: now}
	s.mu.Unlock()
	return nil
}
