package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

type State string

const (
	StateIdle              State = "idle"
	StateBrowsing          State = "browsing"
	StateSelectingQuantity State = "selecting_quantity"
	StateReviewingCart     State = "reviewing_cart"
	StateConfirmingOrder   State = "confirming_order"
)

func (s State) Valid() bool {
	switch s {
	case StateIdle, StateBrowsing, StateSelectingQuantity, StateReviewingCart, StateConfirmingOrder:
		return true
	}
	return false
}

type SelectedProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
}

// CartLine carries the unit price captured when the product was added.
type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type Session struct {
	CustomerID      string           `json:"customerId"`
	State           State            `json:"state"`
	SelectedProduct *SelectedProduct `json:"selectedProduct,omitempty"`
	Cart            []CartLine       `json:"cart"`
	LastActivity    time.Time        `json:"lastActivity"`
}

func New(customerID string) Session {
	return Session{CustomerID: customerID, State: StateIdle}
}

// SetState moves the session to st. Leaving SelectingQuantity drops the selection.
func (s *Session) SetState(st State) {
	s.State = st
	if st != StateSelectingQuantity {
		s.SelectedProduct = nil
	}
}

func (s *Session) Select(p SelectedProduct) {
	s.State = StateSelectingQuantity
	s.SelectedProduct = &p
}

// ClearCart empties the cart and selection and returns to Idle.
// It returns the number of lines that were removed.
func (s *Session) ClearCart() int {
	n := len(s.Cart)
	s.Cart = nil
	s.SetState(StateIdle)
	return n
}

func (s Session) Clone() Session {
	out := s
	if s.SelectedProduct != nil {
		sel := *s.SelectedProduct
		out.SelectedProduct = &sel
	}
	if s.Cart != nil {
		out.Cart = make([]CartLine, len(s.Cart))
		copy(out.Cart, s.Cart)
	}
	return out
}

var (
	ErrSelectionOutsideState = errors.New("selected product set outside selecting_quantity")
	ErrDuplicateCartLine     = errors.New("duplicate product in cart")
)

// Validate checks the invariants every persisted session must hold.
func (s Session) Validate() error {
	if s.CustomerID == "" {
		return errors.New("missing customer id")
	}
	if !s.State.Valid() {
		return fmt.Errorf("unknown state %q", s.State)
	}
	if s.SelectedProduct != nil && s.State != StateSelectingQuantity {
		return ErrSelectionOutsideState
	}
	seen := make(map[string]struct{}, len(s.Cart))
	for _, line := range s.Cart {
		if line.Quantity < 1 {
			return fmt.Errorf("cart line %s has quantity %d", line.ProductID, line.Quantity)
		}
		if _, dup := seen[line.ProductID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCartLine, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// NormalizeCustomerID keeps only the digits of a phone-number style identifier.
func NormalizeCustomerID(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, raw)
}
