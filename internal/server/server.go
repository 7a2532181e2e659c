package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/handler"
	"github.com/dukerupert/mercando/internal/live"
	"github.com/dukerupert/mercando/internal/metrics"
	"github.com/dukerupert/mercando/internal/middleware"
	"github.com/dukerupert/mercando/internal/service"
	"github.com/dukerupert/mercando/internal/store"
	ws "github.com/dukerupert/mercando/internal/websocket"
)

// Options are the tunables of the HTTP layer.
type Options struct {
	SessionTTL      time.Duration
	SecureCookie    bool
	AuthRateLimit   int
	AuthRateWindow  time.Duration
	// TrustProxy keys the auth rate limiter by forwarded client headers.
	TrustProxy      bool
	MetricsGatherer prometheus.Gatherer
}

type Server struct {
	db           *sql.DB
	svc          *service.Service
	broker       *live.Broker
	hub          *ws.Hub
	metrics      *metrics.Metrics
	authH        *handler.AuthHandler
	listH        *handler.ListHandler
	itemH        *handler.ItemHandler
	prefH        *handler.PreferenceHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	opts         Options
	logger       *slog.Logger
}

func New(db *sql.DB, hasher auth.Hasher, m *metrics.Metrics, opts Options, logger *slog.Logger) *Server {
	broker := live.NewBroker(logger.With("component", "live"))
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db, broker)
	listStore := store.NewListStore(db, broker)
	itemStore := store.NewItemStore(db, broker)
	sessionStore := store.NewSessionStore(db, opts.SessionTTL)
	prefStore := store.NewPreferenceStore(db)

	svc := service.New(userStore, listStore, itemStore, hasher, m, logger)

	return &Server{
		db:           db,
		svc:          svc,
		broker:       broker,
		hub:          hub,
		metrics:      m,
		authH:        handler.NewAuthHandler(svc, sessionStore, opts.SessionTTL, opts.SecureCookie, logger.With("component", "auth")),
		listH:        handler.NewListHandler(svc, hub, logger.With("component", "list")),
		itemH:        handler.NewItemHandler(svc, hub, logger.With("component", "item")),
		prefH:        handler.NewPreferenceHandler(prefStore, logger.With("component", "preference")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		opts:         opts,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Service() *service.Service {
	return s.svc
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /api/auth/session", s.authH.Session)
	outerMux.HandleFunc("GET /api/categories", handler.Categories)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	if s.opts.MetricsGatherer != nil {
		outerMux.Handle("GET /metrics", promhttp.HandlerFor(s.opts.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)
	outerMux.Handle("/", middleware.RequireAuth(s.sessionStore)(protectedMux))

	logged := middleware.RequestLogger(s.logger.With("component", "http"), s.metrics)(outerMux)
	return middleware.RequestID(logged)
}

type healthResponse struct {
	Status           string `json:"status"`
	WebSocketClients int    `json:"websocket_clients"`
	LiveSubscribers  int    `json:"live_subscribers"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{
		Status:           "ok",
		WebSocketClients: s.hub.ClientCount(),
		LiveSubscribers:  s.broker.SubscriberCount(),
	}
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		resp.Status = "unavailable"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ClientIP(s.opts.TrustProxy), s.opts.AuthRateLimit, s.opts.AuthRateWindow)
	return rl(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Account
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/me", s.authH.UpdateMe)

	// Lists
	mux.HandleFunc("GET /api/lists", s.listH.List)
	mux.HandleFunc("POST /api/lists", s.listH.Create)
	mux.HandleFunc("GET /api/lists/{id}", s.listH.Get)
	mux.HandleFunc("PUT /api/lists/{id}", s.listH.Rename)
	mux.HandleFunc("POST /api/lists/{id}/copy", s.listH.Copy)
	mux.HandleFunc("DELETE /api/lists/{id}", s.listH.Trash)
	mux.HandleFunc("POST /api/lists/trash", s.listH.TrashMany)
	mux.HandleFunc("GET /api/lists/{id}/stats", s.listH.Stats)

	// Trash
	mux.HandleFunc("GET /api/trash", s.listH.ListTrash)
	mux.HandleFunc("POST /api/trash/{id}/restore", s.listH.Restore)
	mux.HandleFunc("POST /api/trash/restore", s.listH.RestoreMany)
	mux.HandleFunc("DELETE /api/trash/{id}", s.listH.Delete)
	mux.HandleFunc("DELETE /api/trash", s.listH.EmptyTrash)
	mux.HandleFunc("POST /api/trash/delete", s.listH.DeleteMany)

	// Items
	mux.HandleFunc("GET /api/lists/{id}/items", s.itemH.List)
	mux.HandleFunc("POST /api/lists/{id}/items", s.itemH.Create)
	mux.HandleFunc("POST /api/lists/{id}/clear-purchased", s.itemH.ClearPurchased)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("POST /api/items/{id}/purchased", s.itemH.SetPurchased)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)

	// Preferences
	mux.HandleFunc("GET /api/preferences", s.prefH.Get)
	mux.HandleFunc("PUT /api/preferences/dark-mode", s.prefH.SetDarkMode)

	// Live feed
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.svc, s.metrics, s.logger.With("component", "websocket")))
}
