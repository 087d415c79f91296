package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/net/netutil"

	"github.com/hrygo/akasha/internal/profile"
	pluginai "github.com/hrygo/akasha/plugin/ai"
	serverai "github.com/hrygo/akasha/server/ai"
	apiv1 "github.com/hrygo/akasha/server/router/api/v1"
	"github.com/hrygo/akasha/server/service/chat"
	"github.com/hrygo/akasha/store"
)

// maxOpenConnections caps concurrent HTTP connections; streaming turns hold
// connections open for the whole generation.
const maxOpenConnections = 128

// Server wires the store, the AI services and the HTTP surface together.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer   *echo.Echo
	apiV1Service *apiv1.APIV1Service
}

// NewServer builds a fully wired server. The store must already be migrated.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	if len(profile.AIAPIKeys) == 0 {
		slog.Warn("no default API keys configured, requests must supply their own")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))

	cfg := pluginai.NewConfigFromProfile(profile)
	embedder := pluginai.NewEmbeddingService(cfg)
	completions := pluginai.NewCompletionService(cfg)

	ingestor := serverai.NewIngestor(store, embedder, profile)
	recaller := serverai.NewRecaller(store, embedder, profile)
	writer := serverai.NewWriter(store, embedder)
	orchestrator := chat.NewOrchestrator(cfg, completions, recaller, writer)

	apiV1Service := apiv1.NewAPIV1Service(profile, store, ingestor, recaller, writer, orchestrator)
	apiV1Service.RegisterRoutes(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	return &Server{
		Profile:      profile,
		Store:        store,
		echoServer:   e,
		apiV1Service: apiV1Service,
	}, nil
}

// Start begins serving and blocks until the listener fails or is closed.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	listener = netutil.LimitListener(listener, maxOpenConnections)

	slog.Info("server started", "address", address, "mode", s.Profile.Mode)
	s.echoServer.Listener = listener
	return s.echoServer.Start("")
}

// Shutdown gracefully stops the HTTP server and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	s.apiV1Service.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shut down")
}
