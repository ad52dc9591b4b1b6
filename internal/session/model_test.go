package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetStateClearsSelection(t *testing.T) {
	states := []State{StateIdle, StateBrowsing, StateReviewingCart, StateConfirmingOrder}
	for _, st := range states {
		s := New("15550001")
		s.Select(SelectedProduct{ProductID: "widget", Name: "Widget", UnitPrice: 2})
		require.Equal(t, StateSelectingQuantity, s.State)

		s.SetState(st)
		require.Nil(t, s.SelectedProduct, "state %s", st)
		require.NoError(t, s.Validate())
	}
}

func TestSetStateKeepsSelectionWhileSelecting(t *testing.T) {
	s := New("15550001")
	s.Select(SelectedProduct{ProductID: "widget"})
	s.SetState(StateSelectingQuantity)
	require.NotNil(t, s.SelectedProduct)
}

func TestClearCart(t *testing.T) {
	s := New("15550001")
	s.Cart = []CartLine{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 2}}
	s.Select(SelectedProduct{ProductID: "c"})

	require.Equal(t, 2, s.ClearCart())
	require.Empty(t, s.Cart)
	require.Nil(t, s.SelectedProduct)
	require.Equal(t, StateIdle, s.State)
	require.Equal(t, 0, s.ClearCart())
}

func TestCloneIsDeep(t *testing.T) {
	s := New("15550001")
	s.Cart = []CartLine{{ProductID: "a", Quantity: 1}}
	s.Select(SelectedProduct{ProductID: "b", Name: "B"})

	c := s.Clone()
	c.Cart[0].Quantity = 9
	c.SelectedProduct.Name = "changed"

	require.Equal(t, 1, s.Cart[0].Quantity)
	require.Equal(t, "B", s.SelectedProduct.Name)
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(s *Session)
		wantErr error
		invalid bool
	}{
		"fresh session": {mutate: func(s *Session) {}},
		"selection outside selecting state": {
			mutate: func(s *Session) {
				s.SelectedProduct = &SelectedProduct{ProductID: "a"}
				s.State = StateBrowsing
			},
			wantErr: ErrSelectionOutsideState,
		},
		"duplicate lines": {
			mutate: func(s *Session) {
				s.Cart = []CartLine{{ProductID: "a", Quantity: 1}, {ProductID: "a", Quantity: 2}}
			},
			wantErr: ErrDuplicateCartLine,
		},
		"zero quantity": {
			mutate:  func(s *Session) { s.Cart = []CartLine{{ProductID: "a", Quantity: 0}} },
			invalid: true,
		},
		"unknown state": {
			mutate:  func(s *Session) { s.State = "shopping" },
			invalid: true,
		},
		"missing customer": {
			mutate:  func(s *Session) { s.CustomerID = "" },
			invalid: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := New("15550001")
			tt.mutate(&s)
			err := s.Validate()
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.invalid:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestNormalizeCustomerID(t *testing.T) {
	require.Equal(t, "15551234567", NormalizeCustomerID("whatsapp:+1 (555) 123-4567"))
	require.Equal(t, "", NormalizeCustomerID("abc"))
	require.Equal(t, "", NormalizeCustomerID("١٢٣"), "non-ASCII digits are dropped")
}
