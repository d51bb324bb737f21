package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/cart"
	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/retry"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

const (
	defaultFileDir     = ".storefront"
	viewRecoverTimeout = 30 * time.Second
)

type Opt func(*App)

// LogOutputOpt redirects the JSON log, e.g. away from a terminal UI.
func LogOutputOpt(w io.Writer) Opt {
	return func(app *App) {
		app.logOut = w
	}
}

// WithoutHTTPOpt builds the core without the HTTP server.
func WithoutHTTPOpt() Opt {
	return func(app *App) {
		app.noHTTP = true
	}
}

type App struct {
	ctx    context.Context
	cfg    config.Config
	logOut io.Writer
	noHTTP bool

	slot    port.SlotStorage
	closers []func()

	service    *service.Service
	httpServer *httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config, opts ...Opt) *App {
	app := &App{ctx: ctx, cfg: cfg, logOut: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}

	app.initLogger()
	app.initSlotStorage()
	app.initCoreService()
	if !app.noHTTP {
		app.initInboundAdapters()
	}

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.Level()}
	logger := slog.New(slog.NewJSONHandler(app.logOut, opts))
	slog.SetDefault(logger)
}

func (app *App) initSlotStorage() {
	const op = "App.initSlotStorage"
	log := slog.With("op", op, "backend", app.cfg.Cart.Backend)

	var (
		slot      port.SlotStorage
		networked bool
		err       error
	)

	switch app.cfg.Cart.Backend {
	case config.BackendMemory:
		slot = storage.NewMemorySlots()
	case config.BackendFile:
		slot, err = app.fileSlots()
	case config.BackendSQLite:
		slot, err = app.sqliteSlots()
	case config.BackendPostgres:
		slot, err = app.postgresSlots()
		networked = true
	case config.BackendRedis:
		slot, err = app.redisSlots()
		networked = true
	case config.BackendKafka:
		slot, err = app.kafkaSlots()
		networked = true
	default:
		err = fmt.Errorf("unknown backend %q", app.cfg.Cart.Backend)
	}
	if err != nil {
		app.fallDown(op, err)
	}

	if networked {
		slot = storage.NewRetryingSlots(slot, retry.RetryConfig{
			MaxAttempts: app.cfg.Cart.Retry.MaxAttempts,
			Backoff:     retry.ExponentialBackoff(app.cfg.Cart.Retry.Delay),
		})
	}

	app.slot = slot
	log.Info("cart slot storage is ready")
}

func (app *App) fileSlots() (port.SlotStorage, error) {
	dir := app.cfg.Cart.FileDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, defaultFileDir)
	}
	return storage.NewFileSlots(dir)
}

func (app *App) sqliteSlots() (port.SlotStorage, error) {
	db, err := storage.NewSQLiteDB(app.ctx, app.cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, db.Close)
	return storage.NewCartSlotsRepository(db), nil
}

func (app *App) postgresSlots() (port.SlotStorage, error) {
	db, err := storage.NewPostgresDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, db.Close)
	return storage.NewCartSlotsRepository(db), nil
}

func (app *App) redisSlots() (port.SlotStorage, error) {
	cfg := app.cfg.Redis
	rdb, err := storage.NewRedisClient(app.ctx, storage.RedisConfig{URL: cfg.URL})
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close redis client", "err", err)
		}
	})
	return storage.NewRedisSlots(rdb, cfg.KeyPrefix, cfg.TTL), nil
}

func (app *App) kafkaSlots() (port.SlotStorage, error) {
	broker := app.cfg.Broker

	serde, err := app.cartSnapshotSerde()
	if err != nil {
		return nil, err
	}

	var sec kafka.Security
	if broker.TLS.Enabled() {
		sec.TLSConfig, err = adapter.MakeTLSConfig(
			broker.TLS.CA, broker.TLS.Cert, broker.TLS.Key,
		)
		if err != nil {
			return nil, err
		}
	}
	sec.User, sec.Pass = broker.User, broker.Pass

	slots, err := kafka.NewCartSlots(app.ctx, kafka.CartSlotsConfig{
		SeedBrokers: broker.SeedBrokers,
		Topic:       broker.Topics.CartSlots,
		Serde:       serde,
		Security:    sec,
	})
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, slots.Close)

	go slots.Run(app.ctx)

	ctx, cancel := context.WithTimeout(app.ctx, viewRecoverTimeout)
	defer cancel()
	if err := slots.WaitRecovered(ctx); err != nil {
		return nil, err
	}
	return slots, nil
}

// cartSnapshotSerde frames snapshots with a registry id when a schema
// registry is configured and writes bare Avro otherwise.
func (app *App) cartSnapshotSerde() (schema.Serde, error) {
	urls := app.cfg.Broker.SchemaRegistryURLs
	if len(urls) == 0 {
		return schema.AvroCartSnapshot{}, nil
	}

	srClient, err := sr.NewClient(sr.URLs(urls...))
	if err != nil {
		return nil, err
	}

	subject := app.cfg.Broker.Topics.CartSlots + "-value"
	return schema.NewSerdeCartSnapshotV1(
		app.ctx,
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schema.NewSchemaIdentifier(srClient)),
	)
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	c, site, err := catalog.LoadFile(app.cfg.CatalogFile)
	if err != nil {
		app.fallDown(op, err)
	}

	policy, err := cart.ParseCorruptPolicy(app.cfg.Cart.OnCorrupt)
	if err != nil {
		app.fallDown(op, err)
	}

	app.service = service.New(c, site, app.slot,
		service.SlotKeyOpt(app.cfg.Cart.SlotKey),
		service.IdleTTLOpt(app.cfg.Cart.IdleTTL),
		service.CartOpts(cart.CorruptPolicyOpt(policy)),
	)
	slog.Info("catalog is loaded", "op", op, "items", c.Len())
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	handler := httphandler.NewRouter(app.service)
	httpServer := httphandler.NewHTTPServer(addr, handler)
	app.httpServer = &httpServer
}

// Storefront is the core used by the inbound adapters.
func (app *App) Storefront() port.Storefront {
	return app.service
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.service.RunEviction(app.ctx)

	if app.httpServer != nil {
		go app.httpServer.Run(stopFn)
	}

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	if app.httpServer != nil {
		app.httpServer.Close(ctx)
	}
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
