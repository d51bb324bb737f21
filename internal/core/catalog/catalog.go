// Package catalog holds the immutable product list and the filter/sort
// pipeline over it.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/niksmo/storefront/internal/core/domain"
	"gopkg.in/yaml.v3"
)

var (
	ErrDuplicateID = errors.New("duplicate item id")
	ErrInvalidItem = errors.New("invalid item")
)

//go:embed catalog.yaml
var defaultCatalog []byte

type (
	fileItem struct {
		ID             string   `yaml:"id"`
		Type           string   `yaml:"type"`
		Title          string   `yaml:"title"`
		Description    string   `yaml:"description"`
		Price          int64    `yaml:"price"`
		Tags           []string `yaml:"tags"`
		Thumb          string   `yaml:"thumb"`
		DownloadSample string   `yaml:"download_sample"`
		Digital        bool     `yaml:"digital"`
		Physical       bool     `yaml:"physical"`
		Bestseller     bool     `yaml:"bestseller"`
		New            bool     `yaml:"new"`
	}

	fileSite struct {
		Brand     string `yaml:"brand"`
		Tagline   string `yaml:"tagline"`
		Highlight string `yaml:"highlight"`
		Social    struct {
			Facebook string `yaml:"facebook"`
			Line     string `yaml:"line"`
			YouTube  string `yaml:"youtube"`
		} `yaml:"social"`
		Payment struct {
			HowTo        string `yaml:"how_to"`
			CheckoutLink string `yaml:"checkout_link"`
		} `yaml:"payment"`
	}

	file struct {
		Site  fileSite   `yaml:"site"`
		Items []fileItem `yaml:"items"`
	}
)

// A Catalog is the fixed set of purchasable items. It is never mutated
// after construction; accessors hand out copies.
type Catalog struct {
	items []domain.CatalogItem
	index map[string]int
}

// New validates items and builds a [Catalog] preserving their order.
func New(items []domain.CatalogItem) (Catalog, error) {
	const op = "catalog.New"

	c := Catalog{
		items: make([]domain.CatalogItem, 0, len(items)),
		index: make(map[string]int, len(items)),
	}

	for _, item := range items {
		if item.ID == "" || !item.Type.Valid() || item.Price < 0 {
			return Catalog{}, fmt.Errorf(
				"%s: %w: id=%q type=%q price=%d",
				op, ErrInvalidItem, item.ID, item.Type, item.Price,
			)
		}
		if _, ok := c.index[item.ID]; ok {
			return Catalog{}, fmt.Errorf("%s: %w: %q", op, ErrDuplicateID, item.ID)
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, cloneItem(item))
	}

	return c, nil
}

// Default returns the embedded storefront catalog.
func Default() (Catalog, domain.Site) {
	c, site, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(err) // embedded file is broken
	}
	return c, site
}

// LoadFile reads a catalog YAML file; an empty path yields [Default].
func LoadFile(path string) (Catalog, domain.Site, error) {
	const op = "catalog.LoadFile"

	if path == "" {
		c, site := Default()
		return c, site, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, domain.Site{}, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	c, site, err := Load(f)
	if err != nil {
		return Catalog{}, domain.Site{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, site, nil
}

func Load(r io.Reader) (Catalog, domain.Site, error) {
	const op = "catalog.Load"

	var v file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil {
		return Catalog{}, domain.Site{}, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]domain.CatalogItem, len(v.Items))
	for i, fi := range v.Items {
		items[i] = fi.toDomain()
	}

	c, err := New(items)
	if err != nil {
		return Catalog{}, domain.Site{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, v.Site.toDomain(), nil
}

func (c Catalog) Len() int {
	return len(c.items)
}

// Items returns the catalog in its original order.
func (c Catalog) Items() []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(c.items))
	for i, item := range c.items {
		out[i] = cloneItem(item)
	}
	return out
}

func (c Catalog) Lookup(id string) (domain.CatalogItem, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.CatalogItem{}, false
	}
	return cloneItem(c.items[i]), true
}

// cloneItem detaches the tag slice so callers cannot reach catalog memory.
func cloneItem(item domain.CatalogItem) domain.CatalogItem {
	item.Tags = slices.Clone(item.Tags)
	return item
}

func (fi fileItem) toDomain() domain.CatalogItem {
	return domain.CatalogItem{
		ID:             fi.ID,
		Type:           domain.ItemType(fi.Type),
		Title:          fi.Title,
		Description:    fi.Description,
		Price:          fi.Price,
		Tags:           fi.Tags,
		Thumb:          fi.Thumb,
		DownloadSample: fi.DownloadSample,
		Digital:        fi.Digital,
		Physical:       fi.Physical,
		Bestseller:     fi.Bestseller,
		New:            fi.New,
	}
}

func (fs fileSite) toDomain() (s domain.Site) {
	s.Brand = fs.Brand
	s.Tagline = fs.Tagline
	s.Highlight = fs.Highlight
	s.Social.Facebook = fs.Social.Facebook
	s.Social.Line = fs.Social.Line
	s.Social.YouTube = fs.Social.YouTube
	s.Payment.HowTo = fs.Payment.HowTo
	s.Payment.CheckoutLink = fs.Payment.CheckoutLink
	return
}
