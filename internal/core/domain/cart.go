package domain

// MaxQuantity bounds a single cart line. It fits every snapshot encoding.
const MaxQuantity = 9999

type CartLine struct {
	ItemID   string
	Quantity int
}

type (
	CartView struct {
		Lines []CartViewLine
		Count int
		Total int64
	}

	CartViewLine struct {
		Item     CatalogItem
		Quantity int
		Subtotal int64
	}
)
