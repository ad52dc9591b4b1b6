package catalog

// Product is a catalog entry. Position fixes the listing order and never changes
// once the product exists, so selection by number is stable between requests.
type Product struct {
	ID          string  `json:"productId" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Active      bool    `json:"active"`
	Position    int64   `json:"position"`
}

func (p Product) Listable() bool {
	return p.Active && p.Stock > 0
}
