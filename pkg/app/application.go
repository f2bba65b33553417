package app

import (
	"context"
	"courtside/internal/bookings/handler"
	"courtside/pkg/config"
	"courtside/pkg/contracts"
	"courtside/pkg/middleware"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"
)

// Worker is a background component stopped during graceful shutdown.
type Worker interface {
	Stop()
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.PlayerRateLimiter
	workers          []Worker
	healthHandler    *http.Handler
	webhookHandler   *http.Handler
	appHttpHandler   *http.Handler
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp wires the public API handlers and the payment gateway webhook
// handler behind their middleware chains and builds the HTTP server.
func (a *Application) SetApp(webhookHandler contracts.Handler, appHandlers ...contracts.Handler) {
	a.setHealthHandler()
	a.setWebhookHandler(webhookHandler)
	a.setAppHandler(appHandlers...)
	a.setAppServer()
}

// RegisterWorker adds a background worker that will be stopped during
// graceful shutdown, before the HTTP server drains.
func (a *Application) RegisterWorker(w Worker) {
	a.workers = append(a.workers, w)
}

func (a *Application) setHealthHandler() {
	cfg := a.cfg
	healthRouter := httprouter.New()
	healthHandler := handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(cfg.Log)(healthHTTPHandler)
	a.healthHandler = &healthHTTPHandler
	cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

// setWebhookHandler builds the chain for the payment gateway callback.
// It carries signature verification instead of idempotency and rate
// limiting: the gateway retries with the same payload, and settlement
// transitions are conditional writes that absorb replays on their own.
func (a *Application) setWebhookHandler(webhookHandler contracts.Handler) {
	cfg := a.cfg
	webhookRouter := httprouter.New()
	webhookHandler.RegisterRoutes(webhookRouter)

	var webhookHTTPHandler http.Handler = webhookRouter
	webhookHTTPHandler = middleware.RequestTimeout(cfg.RequestTimeout)(webhookHTTPHandler)
	if cfg.PaymentWebhookSecret != "" {
		webhookHTTPHandler = middleware.WebhookSignatureVerification(cfg.PaymentWebhookSecret, cfg.Log)(webhookHTTPHandler)
		cfg.Log.Info("Payment webhook signature verification enabled")
	} else {
		cfg.Log.Warn("PAYMENT_WEBHOOK_SECRET not set, accepting unsigned settlement callbacks")
	}
	webhookHTTPHandler = middleware.ContentTypeValidation(cfg.Log)(webhookHTTPHandler)
	webhookHTTPHandler = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(webhookHTTPHandler)
	webhookHTTPHandler = middleware.RequestLogging(cfg.Log)(webhookHTTPHandler)
	webhookHTTPHandler = middleware.Recovery(cfg.Log)(webhookHTTPHandler)
	a.webhookHandler = &webhookHTTPHandler
}

func (a *Application) setAppHandler(appHandlers ...contracts.Handler) {
	cfg := a.cfg
	appRouter := httprouter.New()
	for _, h := range appHandlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewPlayerRateLimiter(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		middleware.DefaultPlayerExtractor,
		cfg.Log,
	)

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key")(appHttpHandler)
	appHttpHandler = middleware.RequestTimeout(cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = middleware.PlayerRateLimit(a.rateLimiter)(appHttpHandler)
	appHttpHandler = middleware.ContentTypeValidation(cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(cfg.Log)(appHttpHandler)
	a.appHttpHandler = &appHttpHandler
	cfg.Log.Info("Application endpoints configured with full security middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", *a.healthHandler)
	mux.Handle("/ready", *a.healthHandler)
	mux.Handle("/api/v1/payments/callback", *a.webhookHandler)
	mux.Handle("/", *a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.cfg.Log.Info("Stopping background workers...")
	for _, w := range a.workers {
		w.Stop()
	}
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
