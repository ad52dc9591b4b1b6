// Package cart holds the cart rules applied to a customer's session.
// Every function mutates only the session it is given; nothing is persisted here.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/apperror"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/session"
)

type Engine struct {
	catalog catalog.Reader
}

func NewEngine(c catalog.Reader) *Engine {
	return &Engine{catalog: c}
}

// Listing returns the product window customers select from by number.
func (e *Engine) Listing(ctx context.Context) ([]catalog.Product, error) {
	products, err := e.catalog.ListActive(ctx, catalog.ListingLimit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// SelectProduct picks the product at the 1-based position of the live listing.
func (e *Engine) SelectProduct(ctx context.Context, s *session.Session, position int) (catalog.Product, error) {
	products, err := e.Listing(ctx)
	if err != nil {
		return catalog.Product{}, err
	}
	if position < 1 || position > len(products) {
		return catalog.Product{}, apperror.Validation("Invalid product number. Please try again.")
	}

	p := products[position-1]
	s.Select(session.SelectedProduct{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price})
	return p, nil
}

// AddToCart adds quantity of the selected product, checking the live stock count.
// On insufficient stock the selection is kept so the customer can retry.
func (e *Engine) AddToCart(ctx context.Context, s *session.Session, quantity int) (session.CartLine, error) {
	if s.SelectedProduct == nil {
		return session.CartLine{}, apperror.Validation("Please select a product first. Type PRODUCTS.")
	}
	if quantity < 1 {
		return session.CartLine{}, apperror.Validation("Please reply with a quantity of at least 1.")
	}
	sel := *s.SelectedProduct

	available := 0
	p, err := e.catalog.GetByID(ctx, sel.ProductID)
	switch {
	case err == nil:
		available = p.Stock
	case errors.Is(err, catalog.ErrNotFound):
	default:
		return session.CartLine{}, fmt.Errorf("get product %s: %w", sel.ProductID, err)
	}
	if available < quantity {
		return session.CartLine{}, &apperror.InsufficientStockError{
			ProductID: sel.ProductID,
			Name:      sel.Name,
			Requested: quantity,
			Available: available,
		}
	}

	added := session.CartLine{ProductID: sel.ProductID, Name: sel.Name, Quantity: quantity, UnitPrice: sel.UnitPrice}
	merged := false
	for i := range s.Cart {
		if s.Cart[i].ProductID == sel.ProductID {
			s.Cart[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.Cart = append(s.Cart, added)
	}

	s.SetState(session.StateBrowsing)
	return added, nil
}

// RemoveLine drops the cart line at the 1-based index. An emptied cart returns the session to Idle.
func (e *Engine) RemoveLine(s *session.Session, index int) (session.CartLine, error) {
	if index < 1 || index > len(s.Cart) {
		return session.CartLine{}, apperror.Validation("Invalid item number. Please check your cart.")
	}

	removed := s.Cart[index-1]
	s.Cart = append(s.Cart[:index-1:index-1], s.Cart[index:]...)
	if len(s.Cart) == 0 {
		s.Cart = nil
		s.SetState(session.StateIdle)
	}
	return removed, nil
}

// Total sums quantity × snapshot price in cart order.
func Total(lines []session.CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

func ItemCount(lines []session.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
