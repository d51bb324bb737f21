package catalog

import (
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(items []domain.CatalogItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func sampleCatalog(t *testing.T) Catalog {
	t.Helper()
	c, err := New([]domain.CatalogItem{
		{ID: "w1", Type: domain.Worksheet, Title: "Math drills", Price: 50, Tags: []string{"Math"}, Digital: true},
		{ID: "c1", Type: domain.Course, Title: "Drawing", Price: 900, Description: "video course", New: true, Digital: true},
		{ID: "k1", Type: domain.Comic, Title: "Science fun", Price: 50, Physical: true, Bestseller: true},
		{ID: "w2", Type: domain.Worksheet, Title: "Reading", Price: 20, Digital: true, Bestseller: true, New: true},
		{ID: "k2", Type: domain.Comic, Title: "Space", Price: 900, Tags: []string{"science"}, Physical: true},
	})
	require.NoError(t, err)
	return c
}

func TestFilterAndSortExample(t *testing.T) {
	c, _ := Default()

	got := FilterAndSort(c, domain.DefaultQuery())
	assert.Equal(t, []string{"wks-001", "crs-101", "cmc-201"}, ids(got))

	q := domain.DefaultQuery()
	q.Text = "คณิต"
	got = FilterAndSort(c, q)
	assert.Equal(t, []string{"wks-001"}, ids(got))
}

func TestFilterAndSortFilters(t *testing.T) {
	c := sampleCatalog(t)

	tests := []struct {
		name  string
		query domain.Query
		want  []string
	}{
		{
			name:  "Blank",
			query: domain.Query{Text: "   ", Type: domain.AllTypes, Sort: domain.SortPriceAsc},
			want:  []string{"w2", "w1", "k1", "c1", "k2"},
		},
		{
			name:  "Type",
			query: domain.Query{Type: domain.TypeFilter(domain.Comic), Sort: domain.SortPriceAsc},
			want:  []string{"k1", "k2"},
		},
		{
			name:  "DigitalOnly",
			query: domain.Query{Type: domain.AllTypes, OnlyDigital: true, Sort: domain.SortPriceAsc},
			want:  []string{"w2", "w1", "c1"},
		},
		{
			name:  "TextMatchesTagCaseInsensitive",
			query: domain.Query{Text: "SCIENCE", Type: domain.AllTypes, Sort: domain.SortPriceAsc},
			want:  []string{"k1", "k2"},
		},
		{
			name:  "TextMatchesDescription",
			query: domain.Query{Text: "video", Type: domain.AllTypes, Sort: domain.SortPriceAsc},
			want:  []string{"c1"},
		},
		{
			name:  "Conjunction",
			query: domain.Query{Text: "science", Type: domain.TypeFilter(domain.Comic), OnlyDigital: true},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAndSort(c, tt.query)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterAndSortPredicatesHold(t *testing.T) {
	c := sampleCatalog(t)

	for _, tf := range domain.TypeFilters {
		for _, digital := range []bool{false, true} {
			for _, text := range []string{"", "s", "math", "zzz"} {
				q := domain.Query{Text: text, Type: tf, Sort: domain.SortNew, OnlyDigital: digital}
				got := map[string]bool{}
				for _, item := range FilterAndSort(c, q) {
					got[item.ID] = true
				}
				for _, item := range c.Items() {
					want := tf.Accepts(item.Type) &&
						(!digital || item.Digital) &&
						(text == "" || item.Matches(text))
					assert.Equal(t, want, got[item.ID], "query %+v item %s", q, item.ID)
				}
			}
		}
	}
}

func TestFilterAndSortStable(t *testing.T) {
	c := sampleCatalog(t)

	tests := []struct {
		sort domain.SortKey
		want []string
	}{
		{domain.SortPopular, []string{"k1", "w2", "w1", "c1", "k2"}},
		{domain.SortNew, []string{"c1", "w2", "w1", "k1", "k2"}},
		{domain.SortPriceAsc, []string{"w2", "w1", "k1", "c1", "k2"}},
		{domain.SortPriceDesc, []string{"c1", "k2", "w1", "k1", "w2"}},
		{"unknown", []string{"k1", "w2", "w1", "c1", "k2"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			q := domain.Query{Type: domain.AllTypes, Sort: tt.sort}
			assert.Equal(t, tt.want, ids(FilterAndSort(c, q)))
		})
	}
}

func TestFilterAndSortDoesNotMutateCatalog(t *testing.T) {
	c := sampleCatalog(t)
	before := ids(c.Items())

	FilterAndSort(c, domain.Query{Sort: domain.SortPriceDesc})

	assert.Equal(t, before, ids(c.Items()))
}
