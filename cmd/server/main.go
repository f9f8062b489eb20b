package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"commerce-backoffice/internal/adapters/payment"
	webAdapter "commerce-backoffice/internal/adapters/web"
	"commerce-backoffice/internal/app"
	"commerce-backoffice/internal/config"
	"commerce-backoffice/internal/core"
	"commerce-backoffice/internal/db"
	"commerce-backoffice/internal/logger"
	"commerce-backoffice/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	zl, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	shipping, err := decimal.NewFromString(cfg.Pricing.OnlineShipping)
	if err != nil {
		zl.Fatal("invalid ONLINE_SHIPPING_CHARGE", zap.String("value", cfg.Pricing.OnlineShipping))
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	stock := core.NewStockService(pool, zl)
	sequences := core.NewSequenceService(pool)
	customers := core.NewCustomerService(pool)
	ledger := core.NewLedgerService(pool)
	guard := core.NewSubmissionGuard()
	gateway := payment.New(cfg.Payment)

	producer := notify.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, zl)
	defer producer.Close()
	dispatcher := notify.NewDispatcher(stock, ledger, customers, producer, zl)

	checkout := core.NewCheckoutService(pool, stock, sequences, customers, gateway, dispatcher, guard,
		core.CheckoutConfig{
			SellerStateCode: cfg.Tax.SellerStateCode,
			OnlineShipping:  shipping,
		}, zl)

	svc := app.NewAppService(checkout, stock, ledger)
	handler := webAdapter.NewHandler(svc, cfg.Server.AllowedOrigins, zl)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("shutdown was not clean", zap.Error(err))
	}
	dispatcher.Wait()
}
