package storage

import (
	"fmt"

	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
)

func encodeLines(lines []domain.CartLine) ([]byte, error) {
	return schema.EncodeCartSnapshotJSON(adapter.SnapshotFromLines(lines))
}

// decodeLines wraps decoding failures with [domain.ErrCorruptSlot].
func decodeLines(data []byte) ([]domain.CartLine, error) {
	s, err := schema.DecodeCartSnapshotJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptSlot, err)
	}
	return adapter.LinesFromSnapshot(s), nil
}
