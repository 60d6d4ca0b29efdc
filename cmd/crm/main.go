package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sibogoje/crm/internal/app"
	"github.com/Sibogoje/crm/internal/auth"
	"github.com/Sibogoje/crm/internal/clients"
	"github.com/Sibogoje/crm/internal/invoices"
	"github.com/Sibogoje/crm/internal/items"
	"github.com/Sibogoje/crm/internal/platform/db"
	"github.com/Sibogoje/crm/internal/quotes"
	"github.com/Sibogoje/crm/internal/receipts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)

	quoteRepo := quotes.NewRepository(pool)
	quoteService := quotes.NewService(quoteRepo)

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(invoiceRepo, quoteRepo, cfg.ConversionTaxRate, cfg.InvoiceDueDays)

	receiptRepo := receipts.NewRepository(pool)
	receiptService := receipts.NewService(receiptRepo)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Tokens:         tokens,
		AuthHandler:    auth.NewHandler(logger, tokens, auth.NewUserRepository(pool)),
		ClientHandler:  clients.NewHandler(logger, clients.NewRepository(pool)),
		ItemHandler:    items.NewHandler(logger, items.NewRepository(pool)),
		QuoteHandler:   quotes.NewHandler(logger, quoteService),
		InvoiceHandler: invoices.NewHandler(logger, invoiceService),
		ReceiptHandler: receipts.NewHandler(logger, receiptService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
