package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordersvc/internal/config"
	httpapi "ordersvc/internal/http"
	"ordersvc/internal/metrics"
	"ordersvc/internal/product"
	"ordersvc/internal/repository"
	"ordersvc/internal/service"
	"ordersvc/internal/telemetry"

	_ "ordersvc/docs"
)

// @title Order Service API
// @version 1.0
// @description Order management microservice: orders with product price snapshots.
// @BasePath /
func main() {
	telemetry.InitLogger()
	cfg := config.Load()

	db, err := repository.Open(cfg)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	if err := repository.EnsureSchema(db); err != nil {
		log.Fatalf("database schema: %v", err)
	}

	orders := repository.NewPostgresOrders(db)
	products := product.NewClient(cfg.ProductServiceURL)
	ordersSvc := service.NewOrderService(orders, products)

	m := metrics.NewServerMetrics("orders")
	srv := httpapi.NewServer(ordersSvc, m)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
