package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/conversation"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/gateway"
	httpapi "github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/logger"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/order"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog := logger.New(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = appLog.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- storage ---
	st, err := openStores(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("open stores", zap.Error(err))
	}
	defer st.close()

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		appLog.Fatal("session lock", zap.Error(err))
	}
	defer closeLocker()

	// --- outbound ---
	var sender gateway.Sender = gateway.NewLogSender(logger.Module(appLog, "gateway"))
	var orderPub conversation.OrderPublisher

	var conn *amqp.Connection
	if cfg.Broker.Enabled {
		conn, err = events.Dial(cfg.Broker.URL)
		if err != nil {
			appLog.Fatal("rabbitmq", zap.Error(err))
		}

		pub, err := events.NewPublisher(conn, st.sequences, events.PublisherOptions{
			PublishEnveloped: cfg.Broker.PublishEnveloped,
		})
		if err != nil {
			appLog.Fatal("publisher", zap.Error(err))
		}
		defer func() { _ = pub.Close() }()

		sender = pub
		orderPub = pub
	}

	// --- conversation ---
	ledger := order.NewLedger(st.uow, st.orders)
	controller := conversation.NewController(
		st.sessions,
		locker,
		st.processed,
		cart.NewEngine(st.catalog),
		ledger,
		logger.Module(appLog, "conversation"),
	)
	dispatcher := conversation.NewDispatcher(controller, sender, orderPub, logger.Module(appLog, "dispatcher"))

	if cfg.Broker.Enabled {
		handle := events.ChatInboundHandler(dispatcher, logger.Module(appLog, "events"))
		if err := events.StartChatInboundConsumer(ctx, conn, handle, logger.Module(appLog, "events")); err != nil {
			appLog.Fatal("start consumer", zap.Error(err))
		}
	}

	// --- HTTP ---
	h := httpapi.NewHandler(dispatcher, st.catalog, st.orders, logger.Module(appLog, "http"))
	httpServer := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           httpapi.NewRouter(h, logger.Module(appLog, "http")),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("http listening", zap.String("addr", cfg.App.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLog.Info("shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		appLog.Error("http server failed", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()
	if conn != nil {
		_ = conn.Close()
	}

	appLog.Info("shutdown complete")
}
