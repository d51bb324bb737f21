package view

import "github.com/niksmo/storefront/internal/core/domain"

// An Event is a discrete user intent coming from a presentation surface.
type Event interface {
	event()
}

type (
	SearchChanged struct{ Text string }
	TypeChanged   struct{ Type domain.TypeFilter }
	SortChanged   struct{ Sort domain.SortKey }

	DigitalToggled struct{ On bool }

	// AddToCart with a zero Qty adds one item.
	AddToCart struct {
		ItemID string
		Qty    int
	}

	RemoveLine    struct{ ItemID string }
	QuantityDelta struct {
		ItemID string
		Delta  int
	}

	OpenDetail  struct{ ItemID string }
	CloseDetail struct{}
	OpenDrawer  struct{}
	CloseDrawer struct{}
	ClearCart   struct{}
	Checkout    struct{}
)

func (SearchChanged) event()  {}
func (TypeChanged) event()    {}
func (SortChanged) event()    {}
func (DigitalToggled) event() {}
func (AddToCart) event()      {}
func (RemoveLine) event()     {}
func (QuantityDelta) event()  {}
func (OpenDetail) event()     {}
func (CloseDetail) event()    {}
func (OpenDrawer) event()     {}
func (CloseDrawer) event()    {}
func (ClearCart) event()      {}
func (Checkout) event()       {}

// An Effect tells the surface what to do after an event was applied.
type Effect struct {
	CartChanged bool
	// Navigate is the outbound checkout link, set only for [Checkout].
	Navigate string
}
