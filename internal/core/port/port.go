package port

import (
	"context"

	"github.com/niksmo/storefront/internal/core/domain"
)

// A SlotStorage is a durable named location holding one cart snapshot.
//
// LoadCart returns [domain.ErrSlotNotFound] for a key never written and an
// error wrapping [domain.ErrCorruptSlot] for undecodable contents.
type SlotStorage interface {
	LoadCart(ctx context.Context, key string) ([]domain.CartLine, error)
	SaveCart(ctx context.Context, key string, lines []domain.CartLine) error
}

type CatalogReader interface {
	Lookup(id string) (domain.CatalogItem, bool)
}

type CatalogBrowser interface {
	Browse(context.Context, domain.Query) []domain.CatalogItem
	Item(ctx context.Context, id string) (domain.CatalogItem, error)
	Site() domain.Site
}

type CartCommander interface {
	AddToCart(ctx context.Context, visitorID, itemID string, qty int) error
	RemoveFromCart(ctx context.Context, visitorID, itemID string) error
	SetQuantity(ctx context.Context, visitorID, itemID string, qty int) error
	AdjustQuantity(ctx context.Context, visitorID, itemID string, delta int) error
	ClearCart(ctx context.Context, visitorID string) error
}

type CartViewer interface {
	CartView(ctx context.Context, visitorID string) (domain.CartView, error)
}

type Storefront interface {
	CatalogBrowser
	CartCommander
	CartViewer
}
