package v1

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/akasha/internal/profile"
	serverai "github.com/hrygo/akasha/server/ai"
	"github.com/hrygo/akasha/server/service/chat"
	"github.com/hrygo/akasha/store"
)

// APIV1Service exposes the archive and conversation endpoints under /api/v1.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	Ingestor     *serverai.Ingestor
	Recaller     *serverai.Recaller
	Writer       *serverai.Writer
	Orchestrator *chat.Orchestrator
	History      *chat.SessionHistory
}

// NewAPIV1Service creates the v1 API service around already-wired components.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, ingestor *serverai.Ingestor, recaller *serverai.Recaller, writer *serverai.Writer, orchestrator *chat.Orchestrator) *APIV1Service {
	return &APIV1Service{
		Profile:      profile,
		Store:        store,
		Ingestor:     ingestor,
		Recaller:     recaller,
		Writer:       writer,
		Orchestrator: orchestrator,
		History:      chat.NewSessionHistory(0),
	}
}

// RegisterRoutes registers all v1 routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1/ai")
	g.Use(middleware.CORS())

	g.POST("/chat", s.Chat)
	g.POST("/ingest", s.IngestDocument)
	g.GET("/files", s.ListFiles)
	g.DELETE("/files/:id", s.DeleteFile)
	g.POST("/recall", s.RecallMemories)
	g.POST("/memories", s.RememberMemory)
	g.POST("/memories/clear", s.ClearMemories)
}

// Close releases resources held by the service.
func (s *APIV1Service) Close() {
	s.History.Close()
}
