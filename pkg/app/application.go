package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	healthhandler "petcare/internal/health/handler"
	"petcare/pkg/config"
	"petcare/pkg/contracts"
	"petcare/pkg/kafka"
	"petcare/pkg/middleware"
	"petcare/pkg/sealer"
	"petcare/pkg/session"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
)

const sessionSweepInterval = 15 * time.Minute

// Application owns the HTTP server and the shared web infrastructure handlers are built on.
type Application struct {
	cfg              *config.Config
	server           *http.Server
	renderer         *view.Renderer
	sessions         *session.Manager
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.RateLimiter
	healthHandler    http.Handler
	appHttpHandler   http.Handler
	onShutdown       []func()
}

// NewApplication builds the renderer, the session manager and the API guards.
// Mongo must already be connected.
func NewApplication(cfg *config.Config) *Application {
	a := &Application{cfg: cfg}

	renderer, err := view.New(cfg.CurrencySymbol, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to parse templates", "error", err)
	}
	a.renderer = renderer

	a.sessions = a.newSessionManager()
	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewRateLimiter(cfg.APIRateLimitRequests, cfg.APIRateLimitWindow, nil, cfg.Log)
	return a
}

func (a *Application) newSessionManager() *session.Manager {
	s, err := sealer.New(a.cfg.SessionSecret)
	if err != nil {
		a.cfg.Log.Fatal("Failed to create session sealer", "error", err)
	}

	var store session.Store
	switch a.cfg.SessionStore {
	case config.SessionStoreMemory:
		memory := session.NewMemoryStore(sessionSweepInterval)
		a.OnShutdown(memory.Stop)
		store = memory
	case config.SessionStoreBolt:
		bolt, err := session.NewBoltStore(a.cfg.SessionBoltPath, sessionSweepInterval)
		if err != nil {
			a.cfg.Log.Fatal("Failed to open session file", "path", a.cfg.SessionBoltPath, "error", err)
		}
		a.OnShutdown(func() {
			if err := bolt.Close(); err != nil {
				a.cfg.Log.Error("Failed to close session file", "error", err)
			}
		})
		store = bolt
	default:
		db := a.cfg.Client.Mongo.Database(a.cfg.MongoDatabaseName)
		store = session.NewMongoStore(db, a.cfg.ReadTimeout)
	}

	a.cfg.Log.Info("Session store configured", "store", a.cfg.SessionStore, "ttl", a.cfg.SessionTTL)
	return session.NewManager(store, s, a.cfg.SessionTTL, a.cfg.SessionCookieSecure, a.cfg.Log)
}

func (a *Application) Renderer() *view.Renderer {
	return a.renderer
}

func (a *Application) Sessions() *session.Manager {
	return a.sessions
}

// Idempotency replays the stored response for a repeated Idempotency-Key from the same user.
func (a *Application) Idempotency() func(http.Handler) http.Handler {
	return middleware.Idempotency(a.idempotencyStore, middleware.IdempotencyHeader, func(r *http.Request) string {
		if user := session.CurrentUser(r); user != nil {
			return user.ID
		}
		return ""
	})
}

// APIGuards rate limits by client IP, then requires a signed in user.
func (a *Application) APIGuards() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		a.rateLimiter.Middleware(),
		a.sessions.RequireAuth,
	}
}

// OnShutdown registers fn to run after the server stops, in registration order.
func (a *Application) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

func (a *Application) SetApp(handlers ...contracts.Handler) {
	a.setHealthHandler()
	a.setAppHandler(handlers)
	a.setAppServer()
}

func (a *Application) setHealthHandler() {
	checks := map[string]healthhandler.Check{
		"mongo": healthhandler.MongoCheck(a.cfg.Client.Mongo),
	}
	if a.cfg.KafkaEnabled() {
		brokers := a.cfg.KafkaBrokers
		checks["kafka"] = func(ctx context.Context) error {
			return kafka.Ping(ctx, brokers)
		}
	}

	healthRouter := httprouter.New()
	healthhandler.NewHealthHandler(checks, a.cfg.Log).RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured", "checks", len(checks))
}

func (a *Application) setAppHandler(handlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}
	appRouter.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
	})

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = a.sessions.Middleware()(appHttpHandler)
	appHttpHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = middleware.MethodOverride()(appHttpHandler)
	appHttpHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(a.cfg.Log)(appHttpHandler)
	a.appHttpHandler = appHttpHandler
	a.cfg.Log.Info("Application routes configured", "handlers", len(handlers))
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

// Handler is the fully wrapped server handler.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr, "base_url", a.cfg.BaseURL)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", fmt.Errorf("listen on %s: %w", a.server.Addr, err))

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for _, fn := range a.onShutdown {
		fn()
	}
	a.cfg.GracefulShutdown()

	a.cfg.Log.Info("Server stopped gracefully")
}
