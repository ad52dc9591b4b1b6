package session

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var sessionCols = []string{"state", "selected_product", "cart", "last_activity"}

func TestPostgresStore_LoadMissingReturnsIdle(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM chat_sessions`)).
		WithArgs("15550001").
		WillReturnError(pgx.ErrNoRows)

	s, err := NewPostgresStore(mock).Load(context.Background(), "15550001")
	require.NoError(t, err)
	require.Equal(t, New("15550001"), s)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadDecodesJSON(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM chat_sessions`)).
		WithArgs("15550001").
		WillReturnRows(pgxmock.NewRows(sessionCols).AddRow(
			"selecting_quantity",
			[]byte(`{"productId":"widget","name":"Widget","unitPrice":2}`),
			[]byte(`[{"productId":"gadget","name":"Gadget","quantity":1,"unitPrice":5.5}]`),
			at,
		))

	s, err := NewPostgresStore(mock).Load(context.Background(), "15550001")
	require.NoError(t, err)
	require.Equal(t, StateSelectingQuantity, s.State)
	require.Equal(t, &SelectedProduct{ProductID: "widget", Name: "Widget", UnitPrice: 2}, s.SelectedProduct)
	require.Equal(t, []CartLine{{ProductID: "gadget", Name: "Gadget", Quantity: 1, UnitPrice: 5.5}}, s.Cart)
	require.Equal(t, at, s.LastActivity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM chat_sessions`)).
		WithArgs("15550001").
		WillReturnError(errors.New("connection refused"))

	_, err = NewPostgresStore(mock).Load(context.Background(), "15550001")
	require.Error(t, err)
}

func TestPostgresStore_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := New("15550001")
	s.Cart = []CartLine{{ProductID: "widget", Name: "Widget", Quantity: 3, UnitPrice: 2}}
	s.SetState(StateReviewingCart)
	s.LastActivity = time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (customer_id) DO UPDATE`)).
		WithArgs("15550001", "reviewing_cart", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPostgresStore(mock).Save(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRejectsInvalidWithoutQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := New("15550001")
	s.Cart = []CartLine{{ProductID: "a", Quantity: 1}, {ProductID: "a", Quantity: 1}}

	require.ErrorIs(t, NewPostgresStore(mock).Save(context.Background(), s), ErrDuplicateCartLine)
	require.NoError(t, mock.ExpectationsWereMet())
}
