// Package view is the presentation view model shared by the web and
// terminal storefronts. It owns transient visibility state only; the cart
// lives behind [port.CartCommander].
package view

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

type State struct {
	Query        domain.Query
	ActiveItemID string
	DrawerOpen   bool
}

type ViewModel struct {
	State

	visitorID string
	store     port.Storefront
}

func New(store port.Storefront, visitorID string) *ViewModel {
	return &ViewModel{
		State:     State{Query: domain.DefaultQuery()},
		visitorID: visitorID,
		store:     store,
	}
}

func (vm *ViewModel) Apply(ctx context.Context, e Event) (Effect, error) {
	const op = "ViewModel.Apply"

	var (
		eff Effect
		err error
	)

	switch e := e.(type) {
	case SearchChanged:
		vm.Query.Text = e.Text
	case TypeChanged:
		vm.Query.Type = domain.ParseTypeFilter(string(e.Type))
	case SortChanged:
		vm.Query.Sort = domain.ParseSortKey(string(e.Sort))
	case DigitalToggled:
		vm.Query.OnlyDigital = e.On

	case OpenDetail:
		if _, err = vm.store.Item(ctx, e.ItemID); err == nil {
			vm.ActiveItemID = e.ItemID
		}
	case CloseDetail:
		vm.ActiveItemID = ""
	case OpenDrawer:
		vm.DrawerOpen = true
	case CloseDrawer:
		vm.DrawerOpen = false

	case AddToCart:
		qty := e.Qty
		if qty == 0 {
			qty = 1
		}
		err = vm.store.AddToCart(ctx, vm.visitorID, e.ItemID, qty)
		eff.CartChanged = err == nil
	case RemoveLine:
		err = vm.store.RemoveFromCart(ctx, vm.visitorID, e.ItemID)
		eff.CartChanged = err == nil
	case QuantityDelta:
		err = vm.store.AdjustQuantity(ctx, vm.visitorID, e.ItemID, e.Delta)
		eff.CartChanged = err == nil
	case ClearCart:
		err = vm.store.ClearCart(ctx, vm.visitorID)
		eff.CartChanged = err == nil

	case Checkout:
		eff.Navigate = vm.store.Site().Payment.CheckoutLink

	default:
		err = fmt.Errorf("unknown event %T", e)
	}

	if err != nil {
		return Effect{}, fmt.Errorf("%s: %w", op, err)
	}
	return eff, nil
}

// Items is the grid content for the current query.
func (vm *ViewModel) Items(ctx context.Context) []domain.CatalogItem {
	return vm.store.Browse(ctx, vm.Query)
}

// ActiveItem returns the item shown in the detail overlay, if any.
func (vm *ViewModel) ActiveItem(ctx context.Context) (domain.CatalogItem, bool) {
	if vm.ActiveItemID == "" {
		return domain.CatalogItem{}, false
	}
	item, err := vm.store.Item(ctx, vm.ActiveItemID)
	if err != nil {
		return domain.CatalogItem{}, false
	}
	return item, true
}

func (vm *ViewModel) Cart(ctx context.Context) (domain.CartView, error) {
	return vm.store.CartView(ctx, vm.visitorID)
}

func (vm *ViewModel) Site() domain.Site {
	return vm.store.Site()
}

// Query parameter names of the web storefront.
const (
	ParamText    = "q"
	ParamType    = "type"
	ParamSort    = "sort"
	ParamDigital = "digital"
	ParamItem    = "item"
	ParamCart    = "cart"
)

// StateFromValues decodes the state carried in a storefront URL. Unknown
// values fall back to defaults.
func StateFromValues(v url.Values) State {
	digital, _ := strconv.ParseBool(v.Get(ParamDigital))
	return State{
		Query: domain.Query{
			Text:        v.Get(ParamText),
			Type:        domain.ParseTypeFilter(v.Get(ParamType)),
			Sort:        domain.ParseSortKey(v.Get(ParamSort)),
			OnlyDigital: digital,
		},
		ActiveItemID: v.Get(ParamItem),
		DrawerOpen:   v.Get(ParamCart) == "open",
	}
}

// Values encodes s, omitting defaults.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Query.Text != "" {
		v.Set(ParamText, s.Query.Text)
	}
	if s.Query.Type != "" && s.Query.Type != domain.AllTypes {
		v.Set(ParamType, string(s.Query.Type))
	}
	if s.Query.Sort != "" && s.Query.Sort != domain.SortPopular {
		v.Set(ParamSort, string(s.Query.Sort))
	}
	if s.Query.OnlyDigital {
		v.Set(ParamDigital, "true")
	}
	if s.ActiveItemID != "" {
		v.Set(ParamItem, s.ActiveItemID)
	}
	if s.DrawerOpen {
		v.Set(ParamCart, "open")
	}
	return v
}

func (vm *ViewModel) SetState(s State) {
	vm.State = s
}
