package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.LogLevel = "error"
	cfg.HTTPServerAddr = "127.0.0.1:0"
	cfg.Cart.Backend = backend
	cfg.Cart.SlotKey = "cart"
	cfg.Cart.OnCorrupt = "reset"
	cfg.Cart.FileDir = t.TempDir()
	cfg.Cart.Retry.MaxAttempts = 1
	cfg.SQLitePath = filepath.Join(t.TempDir(), "slots.db")
	return cfg
}

func TestNewBackends(t *testing.T) {
	for _, backend := range []string{
		config.BackendMemory, config.BackendFile, config.BackendSQLite,
	} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			a := New(t.Context(), cfg, LogOutputOpt(io.Discard), WithoutHTTPOpt())
			t.Cleanup(func() { a.Close(context.Background()) })

			store := a.Storefront()
			items := store.Browse(t.Context(), domain.DefaultQuery())
			require.Len(t, items, 3)

			require.NoError(t, store.AddToCart(t.Context(), "v1", "wks-001", 2))
			view, err := store.CartView(t.Context(), "v1")
			require.NoError(t, err)
			assert.EqualValues(t, 158, view.Total)
		})
	}
}

func TestCartSurvivesRestart(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)

			a := New(t.Context(), cfg, LogOutputOpt(io.Discard), WithoutHTTPOpt())
			require.NoError(t, a.Storefront().AddToCart(t.Context(), "", "crs-101", 1))
			a.Close(context.Background())

			a = New(t.Context(), cfg, LogOutputOpt(io.Discard), WithoutHTTPOpt())
			t.Cleanup(func() { a.Close(context.Background()) })

			view, err := a.Storefront().CartView(t.Context(), "")
			require.NoError(t, err)
			require.Len(t, view.Lines, 1)
			assert.Equal(t, "crs-101", view.Lines[0].Item.ID)
		})
	}
}

func TestRunAndClose(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	a := New(t.Context(), cfg, LogOutputOpt(io.Discard))

	ctx, stop := context.WithCancel(t.Context())
	defer stop()
	a.Run(stop)

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	a.Close(closeCtx)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewPanicsOnBadCatalog(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.CatalogFile = filepath.Join(t.TempDir(), "absent.yaml")

	assert.Panics(t, func() {
		New(t.Context(), cfg, LogOutputOpt(io.Discard), WithoutHTTPOpt())
	})
}
