package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.SlotStorage = (*MemorySlots)(nil)

// MemorySlots keeps encoded snapshots in process memory. Carts do not
// survive a restart; used for tests and the "memory" backend.
type MemorySlots struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: make(map[string][]byte)}
}

func (m *MemorySlots) LoadCart(
	ctx context.Context, key string,
) ([]domain.CartLine, error) {
	const op = "MemorySlots.LoadCart"

	m.mu.RLock()
	data, ok := m.slots[key]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrSlotNotFound)
	}

	lines, err := decodeLines(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lines, nil
}

func (m *MemorySlots) SaveCart(
	ctx context.Context, key string, lines []domain.CartLine,
) error {
	const op = "MemorySlots.SaveCart"

	data, err := encodeLines(lines)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	m.slots[key] = data
	m.mu.Unlock()
	return nil
}

// Put stores raw slot contents, bypassing validation.
func (m *MemorySlots) Put(key string, data []byte) {
	m.mu.Lock()
	m.slots[key] = data
	m.mu.Unlock()
}
