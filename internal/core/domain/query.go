package domain

// TypeFilter is an [ItemType] or [AllTypes].
type TypeFilter string

const AllTypes TypeFilter = "all"

var TypeFilters = []TypeFilter{
	AllTypes, TypeFilter(Worksheet), TypeFilter(Course), TypeFilter(Comic),
}

// ParseTypeFilter falls back to [AllTypes] for unknown values.
func ParseTypeFilter(s string) TypeFilter {
	if ItemType(s).Valid() {
		return TypeFilter(s)
	}
	return AllTypes
}

func (f TypeFilter) Accepts(t ItemType) bool {
	return f == AllTypes || ItemType(f) == t
}

type SortKey string

const (
	SortPopular   SortKey = "popular"
	SortNew       SortKey = "new"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

var SortKeys = []SortKey{SortPopular, SortNew, SortPriceAsc, SortPriceDesc}

// ParseSortKey falls back to [SortPopular] for unknown values.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortPopular, SortNew, SortPriceAsc, SortPriceDesc:
		return k
	}
	return SortPopular
}

type Query struct {
	Text        string
	Type        TypeFilter
	Sort        SortKey
	OnlyDigital bool
}

// DefaultQuery is the state of an untouched storefront.
func DefaultQuery() Query {
	return Query{Type: AllTypes, Sort: SortPopular}
}
