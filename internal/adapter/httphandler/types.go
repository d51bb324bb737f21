package httphandler

import (
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/money"
)

type (
	CatalogItem struct {
		ID             string   `json:"id"`
		Type           string   `json:"type"`
		Title          string   `json:"title"`
		Description    string   `json:"description"`
		Price          Price    `json:"price"`
		Tags           []string `json:"tags"`
		Thumb          string   `json:"thumb,omitempty"`
		DownloadSample string   `json:"download_sample,omitempty"`
		Digital        bool     `json:"digital"`
		Physical       bool     `json:"physical"`
		Bestseller     bool     `json:"bestseller"`
		New            bool     `json:"new"`
	}

	Price struct {
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Formatted string `json:"formatted"`
	}
)

type (
	Site struct {
		Brand     string     `json:"brand"`
		Tagline   string     `json:"tagline"`
		Highlight string     `json:"highlight,omitempty"`
		Social    SiteSocial `json:"social"`
		Payment   SitePay    `json:"payment"`
	}

	SiteSocial struct {
		Facebook string `json:"facebook,omitempty"`
		Line     string `json:"line,omitempty"`
		YouTube  string `json:"youtube,omitempty"`
	}

	SitePay struct {
		HowTo        string `json:"how_to"`
		CheckoutLink string `json:"checkout_link"`
	}
)

type (
	Cart struct {
		Lines []CartLine `json:"lines"`
		Count int        `json:"count"`
		Total Price      `json:"total"`
	}

	CartLine struct {
		Item     CatalogItem `json:"item"`
		Qty      int         `json:"qty"`
		Subtotal Price       `json:"subtotal"`
	}
)

type (
	AddItemRequest struct {
		ID  string `json:"id"`
		Qty int    `json:"qty"`
	}

	SetQtyRequest struct {
		Qty int `json:"qty"`
	}

	AdjustQtyRequest struct {
		Delta int `json:"delta"`
	}
)

func fromDomainPrice(amount int64) Price {
	return Price{
		Amount:    amount,
		Currency:  money.Code(),
		Formatted: money.Format(amount),
	}
}

func fromDomainItem(v domain.CatalogItem) CatalogItem {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return CatalogItem{
		ID:             v.ID,
		Type:           string(v.Type),
		Title:          v.Title,
		Description:    v.Description,
		Price:          fromDomainPrice(v.Price),
		Tags:           tags,
		Thumb:          v.Thumb,
		DownloadSample: v.DownloadSample,
		Digital:        v.Digital,
		Physical:       v.Physical,
		Bestseller:     v.Bestseller,
		New:            v.New,
	}
}

func fromDomainItems(vs []domain.CatalogItem) []CatalogItem {
	items := make([]CatalogItem, len(vs))
	for i, v := range vs {
		items[i] = fromDomainItem(v)
	}
	return items
}

func fromDomainSite(v domain.Site) Site {
	return Site{
		Brand:     v.Brand,
		Tagline:   v.Tagline,
		Highlight: v.Highlight,
		Social: SiteSocial{
			Facebook: v.Social.Facebook,
			Line:     v.Social.Line,
			YouTube:  v.Social.YouTube,
		},
		Payment: SitePay{
			HowTo:        v.Payment.HowTo,
			CheckoutLink: v.Payment.CheckoutLink,
		},
	}
}

func fromDomainCart(v domain.CartView) Cart {
	c := Cart{
		Lines: make([]CartLine, len(v.Lines)),
		Count: v.Count,
		Total: fromDomainPrice(v.Total),
	}
	for i, l := range v.Lines {
		c.Lines[i] = CartLine{
			Item:     fromDomainItem(l.Item),
			Qty:      l.Quantity,
			Subtotal: fromDomainPrice(l.Subtotal),
		}
	}
	return c
}
