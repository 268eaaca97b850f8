package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"

	"github.com/openalpha/hwmvault/api/handlers"
	"github.com/openalpha/hwmvault/api/middleware"
	"github.com/openalpha/hwmvault/api/types"
	"github.com/openalpha/hwmvault/api/websocket"
	"github.com/openalpha/hwmvault/metrics"
)

// Server is the standalone vault API server
type Server struct {
	config  *Config
	service types.VaultService
	logger  log.Logger

	httpServer  *http.Server
	hub         *websocket.Hub
	broadcaster *websocket.Broadcaster
	rateLimiter *middleware.RateLimiter
	metrics     *metrics.Collector

	cancel context.CancelFunc
}

// Config contains server configuration
type Config struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	BroadcastInterval time.Duration
	DisableRateLimit  bool // For testing purposes
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              8080,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		BroadcastInterval: time.Second,
	}
}

// NewServer creates a new API server over service
func NewServer(config *Config, service types.VaultService, collector *metrics.Collector, logger log.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	logger = logger.With("module", "api")
	hub := websocket.NewHub(websocket.DefaultHubConfig(), collector, logger)
	return &Server{
		config:      config,
		service:     service,
		logger:      logger,
		hub:         hub,
		broadcaster: websocket.NewBroadcaster(hub, service, config.BroadcastInterval, logger),
		rateLimiter: middleware.NewRateLimiter(middleware.DefaultRateLimitConfig()),
		metrics:     collector,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.hub.ServeWS)
	r.Handle("/metrics", metrics.Handler())
	handlers.NewVaultHandler(s.service).RegisterRoutes(r, middleware.Metrics(s.metrics))

	r.Use(middleware.CORS)
	if !s.config.DisableRateLimit {
		r.Use(middleware.RateLimitMiddleware(s.rateLimiter))
	}
	return r
}

// Start serves until Stop is called
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.StartFeeds(ctx)

	s.logger.Info("API server starting", "addr", addr, "rate_limit", !s.config.DisableRateLimit)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartFeeds runs the websocket hub and broadcaster until ctx is done
func (s *Server) StartFeeds(ctx context.Context) {
	go s.hub.Run(ctx)
	go s.broadcaster.Run(ctx)
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	s.rateLimiter.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if _, err := s.service.Vault(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	handlers.WriteJSON(w, code, map[string]interface{}{
		"status":     status,
		"ws_clients": s.hub.GetClientCount(),
		"timestamp":  nowMillis(),
	})
}
