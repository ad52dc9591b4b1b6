package order

import (
	"strings"
	"time"
)

const DefaultCurrency = "USD"

type Item struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	PriceAtTime float64 `json:"priceAtTime"`
}

type Order struct {
	ID          string    `json:"orderId"`
	CustomerID  string    `json:"customerId"`
	Items       []Item    `json:"items"`
	Status      Status    `json:"status"`
	TotalAmount float64   `json:"totalAmount"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ShortID is the reference shown to customers: the last six hex digits, upper-cased.
func (o Order) ShortID() string {
	id := strings.ReplaceAll(o.ID, "-", "")
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

func (o Order) Quantity() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
