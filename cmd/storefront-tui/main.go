package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter/tui"
	"github.com/niksmo/storefront/internal/app"
	"github.com/niksmo/storefront/internal/core/view"
	"github.com/niksmo/storefront/pkg/sigctx"
)

const (
	closeTimeout = 5 * time.Second
	logFileName  = "storefront-tui.log"
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext(context.Background())
	defer closeApp()

	cfg := config.Load()

	logFile, err := os.OpenFile(
		filepath.Join(os.TempDir(), logFileName),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	storefront := app.New(sigCtx, cfg,
		app.LogOutputOpt(logFile),
		app.WithoutHTTPOpt(),
	)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		storefront.Close(ctx)
	}()

	// the terminal storefront has a single anonymous cart
	vm := view.New(storefront.Storefront(), "")
	p := tea.NewProgram(
		tui.NewModel(sigCtx, vm),
		tea.WithAltScreen(),
		tea.WithContext(sigCtx),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
	}
}
