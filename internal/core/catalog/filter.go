package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

// FilterAndSort returns the items of c passing the type, digital-only and
// text predicates of q, ordered by q.Sort. Ties keep catalog order.
//
// The function is pure and cheap enough to run on every keystroke.
func FilterAndSort(c Catalog, q domain.Query) []domain.CatalogItem {
	typeFilter := q.Type
	if typeFilter == "" {
		typeFilter = domain.AllTypes
	}

	var needle string
	if strings.TrimSpace(q.Text) != "" {
		needle = strings.ToLower(q.Text)
	}

	out := make([]domain.CatalogItem, 0, len(c.items))
	for _, item := range c.items {
		if !typeFilter.Accepts(item.Type) {
			continue
		}
		if q.OnlyDigital && !item.Digital {
			continue
		}
		if needle != "" && !item.Matches(needle) {
			continue
		}
		out = append(out, cloneItem(item))
	}

	slices.SortStableFunc(out, comparator(q.Sort))
	return out
}

func comparator(k domain.SortKey) func(a, b domain.CatalogItem) int {
	switch k {
	case domain.SortNew:
		return flagFirst(func(i domain.CatalogItem) bool { return i.New })
	case domain.SortPriceAsc:
		return func(a, b domain.CatalogItem) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortPriceDesc:
		return func(a, b domain.CatalogItem) int { return cmp.Compare(b.Price, a.Price) }
	default:
		return flagFirst(func(i domain.CatalogItem) bool { return i.Bestseller })
	}
}

func flagFirst(flag func(domain.CatalogItem) bool) func(a, b domain.CatalogItem) int {
	return func(a, b domain.CatalogItem) int {
		return cmp.Compare(rank(flag(a)), rank(flag(b)))
	}
}

func rank(flagged bool) int {
	if flagged {
		return 0
	}
	return 1
}
