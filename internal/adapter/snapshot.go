package adapter

import (
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
)

// SnapshotFromLines stamps cart lines as the current snapshot version.
func SnapshotFromLines(lines []domain.CartLine) schema.CartSnapshotV1 {
	vs := make([]schema.CartLineV1, len(lines))
	for i, l := range lines {
		vs[i].ID = l.ItemID
		vs[i].Qty = l.Quantity
	}
	return schema.NewCartSnapshot(vs)
}

func LinesFromSnapshot(s schema.CartSnapshotV1) []domain.CartLine {
	lines := make([]domain.CartLine, len(s.Lines))
	for i, l := range s.Lines {
		lines[i].ItemID = l.ID
		lines[i].Quantity = l.Qty
	}
	return lines
}
