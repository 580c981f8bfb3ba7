// Package api provides the HTTP surface of the orchestrator: query
// submission and resume, pending-action listing/approval/execution, incident
// history, and health.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsreasoner/opsreasoner/pkg/models"
	"github.com/opsreasoner/opsreasoner/pkg/orchestrator"
	"github.com/opsreasoner/opsreasoner/pkg/telemetry"
)

// Orchestrator is the server's view of the engine.
type Orchestrator interface {
	Run(ctx context.Context, in orchestrator.QueryInput) (*models.GraphState, error)
	Resume(ctx context.Context, threadID string, approvedIDs, rejectedIDs []int64) (*models.GraphState, error)
}

// ActionStore is the server's view of the pending-action store. The HTTP
// layer is the sole writer for approve/reject.
type ActionStore interface {
	Get(ctx context.Context, id int64) (*models.PendingAction, error)
	ListPending(ctx context.Context) ([]*models.PendingAction, error)
	ListByThread(ctx context.Context, threadID string) ([]*models.PendingAction, error)
	Approve(ctx context.Context, id int64) (*models.PendingAction, error)
	Reject(ctx context.Context, id int64) (*models.PendingAction, error)
	Execute(ctx context.Context, id int64, result map[string]any) (*models.PendingAction, error)
}

// ActionRunner dispatches an approved action via the tool transport.
type ActionRunner interface {
	Execute(ctx context.Context, action *models.PendingAction) (map[string]any, error)
}

// MemorySearcher serves the incident-search endpoint.
type MemorySearcher interface {
	QuerySimilar(ctx context.Context, text string, k int) ([]models.MemoryHit, error)
}

// ToolInvoker serves the incident-listing endpoint.
type ToolInvoker interface {
	Invoke(ctx context.Context, tool string, args map[string]any) (any, error)
}

// HealthCheck probes one dependency; nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Server is the HTTP API server.
type Server struct {
	router   *gin.Engine
	http     *http.Server
	orch     Orchestrator
	actions  ActionStore
	executor ActionRunner
	memory   MemorySearcher
	tools    ToolInvoker
	checks   map[string]HealthCheck
	metrics  *telemetry.Metrics
}

// ServerOption customizes a Server at construction.
type ServerOption func(*Server)

// WithHealthChecks registers named dependency probes for GET /health.
func WithHealthChecks(checks map[string]HealthCheck) ServerOption {
	return func(s *Server) { s.checks = checks }
}

// WithMetrics exposes the Prometheus registry at GET /metrics.
func WithMetrics(m *telemetry.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates the API server and registers every route.
func NewServer(
	orch Orchestrator,
	actions ActionStore,
	executor ActionRunner,
	memory MemorySearcher,
	tools ToolInvoker,
	opts ...ServerOption,
) *Server {
	s := &Server{
		router:   gin.New(),
		orch:     orch,
		actions:  actions,
		executor: executor,
		memory:   memory,
		tools:    tools,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

// setupRoutes registers all API routes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	s.router.POST("/query", s.submitQueryHandler)
	s.router.POST("/query/resume", s.resumeQueryHandler)

	s.router.GET("/actions/pending", s.listPendingActionsHandler)
	s.router.POST("/actions/approve/:id", s.approveActionHandler)
	s.router.POST("/actions/execute/:id", s.executeActionHandler)

	s.router.GET("/history/incidents", s.listIncidentsHandler)
	s.router.GET("/history/incidents/search", s.searchIncidentsHandler)
}

// Handler exposes the router, used by tests to drive requests in-process.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.router}
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
