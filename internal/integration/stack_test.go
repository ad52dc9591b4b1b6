package integration_test

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/conversation"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/dedup"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/gateway"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/testutil"
)

type stack struct {
	catalog    *catalog.PostgresStore
	sessions   *session.PostgresStore
	orders     *order.PostgresRepository
	dispatcher *conversation.Dispatcher
	outbox     *testutil.Recorder
}

func newStack(t *testing.T, pool *pgxpool.Pool, sender gateway.Sender, publisher conversation.OrderPublisher) *stack {
	t.Helper()

	st := &stack{
		catalog:  catalog.NewPostgresStore(pool),
		sessions: session.NewPostgresStore(pool),
		orders:   order.NewPostgresRepository(pool),
		outbox:   &testutil.Recorder{},
	}
	if sender == nil {
		sender = st.outbox
	}

	log := zaptest.NewLogger(t)
	ledger := order.NewLedger(order.NewPostgresUnitOfWork(pool, st.catalog, st.orders), st.orders)
	controller := conversation.NewController(
		st.sessions,
		session.NewLocalLocker(5*time.Second),
		dedup.NewPostgresStore(pool),
		cart.NewEngine(st.catalog),
		ledger,
		log,
	)
	st.dispatcher = conversation.NewDispatcher(controller, sender, publisher, log)
	return st
}
