package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/directory"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/matching"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/pipeline"
)

// Server holds the dependencies for the API server.
type Server struct {
	Engine    *matching.Engine
	Workflows *pipeline.Service
	Dir       directory.Directory
	Logger    *zap.Logger
}

// NewServer creates a new Server.
func NewServer(engine *matching.Engine, workflows *pipeline.Service, dir directory.Directory, logger *zap.Logger) *Server {
	return &Server{Engine: engine, Workflows: workflows, Dir: dir, Logger: logger}
}

// Register mounts every API route on the given group.
func (s *Server) Register(g *echo.Group) {
	g.GET("/health", s.HandleHealth)

	g.POST("/match", s.HandleMatch)

	g.GET("/workflows", s.HandleListWorkflows)
	g.POST("/workflows", s.HandleCreateWorkflow)
	g.GET("/workflows/:id", s.HandleGetWorkflow)
	g.PUT("/workflows/:id", s.HandleUpdateWorkflow)
	g.PATCH("/workflows/:id/status", s.HandleSetWorkflowStatus)
	g.DELETE("/workflows/:id", s.HandleDeleteWorkflow)

	g.GET("/workflows/:id/notifications/next", s.HandleNextNotification)
	g.POST("/workflows/:id/notifications/confirm", s.HandleConfirmNotification)
	g.POST("/workflows/:id/notifications/cancel", s.HandleCancelNotification)

	g.GET("/hierarchy/domains", s.HandleListDomains)
	g.GET("/hierarchy/domains/:id/talent-pools", s.HandleListTalentPools)
	g.GET("/hierarchy/skills", s.HandleListSkills)
}
