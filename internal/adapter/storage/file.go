package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.SlotStorage = (*FileSlots)(nil)

// FileSlots stores each slot as <dir>/<escaped key>.json. Writes go to a
// temporary file that is renamed over the slot, so a crash never leaves a
// half-written snapshot behind.
type FileSlots struct {
	dir string
}

func NewFileSlots(dir string) (FileSlots, error) {
	const op = "NewFileSlots"

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return FileSlots{}, fmt.Errorf("%s: %w", op, err)
	}
	return FileSlots{dir}, nil
}

func (s FileSlots) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func (s FileSlots) LoadCart(
	ctx context.Context, key string,
) ([]domain.CartLine, error) {
	const op = "FileSlots.LoadCart"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lines, err := decodeLines(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lines, nil
}

func (s FileSlots) SaveCart(
	ctx context.Context, key string, lines []domain.CartLine,
) (saveErr error) {
	const op = "FileSlots.SaveCart"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := encodeLines(lines)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if saveErr != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
