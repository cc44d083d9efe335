package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/uni-regulations/rag-core/internal/catalog"
	"github.com/uni-regulations/rag-core/internal/ports"
	"github.com/uni-regulations/rag-core/internal/rag"
	"github.com/uni-regulations/rag-core/internal/router"
)

func defaultGenerationConfig() ports.GenerationConfig {
	return ports.GenerationConfig{
		Temperature:       0.7,
		MaxNewTokens:      512,
		TopK:              40,
		TopP:              0.9,
		RepetitionPenalty: 1.1,
		DoSample:          true,
	}
}

var fiberConfig = fiber.Config{
	ErrorHandler: ErrorHandler,
}

// Server is the demo Fiber HTTP server, grounded on app/server/server.go's
// Server type. Unlike the teacher, which connects to Postgres and builds
// its handlers inside Run, this Server receives an already-wired
// rag.Pipeline and Catalog from its caller (cmd/ragserver), since index
// loading is a one-shot startup step independent of the HTTP lifecycle.
type Server struct {
	listenAddr string
	logger     *slog.Logger
	app        *fiber.App
}

// NewServer constructs a Server and registers its routes.
func NewServer(addr string, pipeline *rag.Pipeline, qr *router.QueryRouter, cat *catalog.Catalog) *Server {
	app := fiber.New(fiberConfig)

	handler := NewRequestHandler(pipeline, qr, cat, defaultGenerationConfig())
	check := NewCheckHandler()

	app.Get("/check/healthy", check.HandleHealthy)

	apiv1 := app.Group("/api/v1")
	apiv1.Post("/query", handler.HandleQuery)
	apiv1.Post("/search", handler.HandleSearch)
	apiv1.Get("/documents/:documentID", handler.HandleGetDocument)
	apiv1.Get("/documents/:documentID/similar", handler.HandleSimilarDocuments)
	apiv1.Get("/documents", handler.HandleSearchDocuments)
	apiv1.Get("/categories", handler.HandleListCategories)

	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
		app:        app,
	}
}

// Run starts serving and blocks until the listener exits.
func (s *Server) Run() {
	if err := s.app.Listen(s.listenAddr); err != nil {
		s.logger.Error("server stopped listening", "error", err.Error())
	}
}

// Stop gracefully drains in-flight requests within a bounded timeout,
// unlike the teacher's Stop, which only logs — fiber's ShutdownWithContext
// is the actual drain mechanism the teacher never wired up.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		s.logger.Error("error during graceful shutdown", "error", err.Error())
	}
	s.logger.Info("server stopped")
}
