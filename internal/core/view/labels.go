package view

import "github.com/niksmo/storefront/internal/core/domain"

var typeLabels = map[domain.TypeFilter]string{
	domain.AllTypes:                    "ทั้งหมด",
	domain.TypeFilter(domain.Worksheet): "ใบงาน",
	domain.TypeFilter(domain.Course):    "คอร์ส",
	domain.TypeFilter(domain.Comic):     "การ์ตูน",
}

var sortLabels = map[domain.SortKey]string{
	domain.SortPopular:   "ยอดนิยม",
	domain.SortNew:       "มาใหม่",
	domain.SortPriceAsc:  "ราคาต่ำ-สูง",
	domain.SortPriceDesc: "ราคาสูง-ต่ำ",
}

// TypeLabel is the th-TH caption of a type filter option.
func TypeLabel(f domain.TypeFilter) string {
	if l, ok := typeLabels[f]; ok {
		return l
	}
	return string(f)
}

// SortLabel is the th-TH caption of a sort option.
func SortLabel(k domain.SortKey) string {
	if l, ok := sortLabels[k]; ok {
		return l
	}
	return string(k)
}

// NextType cycles through [domain.TypeFilters].
func NextType(f domain.TypeFilter) domain.TypeFilter {
	return next(domain.TypeFilters, f)
}

// NextSort cycles through [domain.SortKeys].
func NextSort(k domain.SortKey) domain.SortKey {
	return next(domain.SortKeys, k)
}

func next[T comparable](vs []T, cur T) T {
	for i, v := range vs {
		if v == cur {
			return vs[(i+1)%len(vs)]
		}
	}
	return vs[0]
}
