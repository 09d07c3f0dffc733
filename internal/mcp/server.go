// Package mcp exposes the matching engine and workflow reads as MCP tools
// so agent tooling can query the pipeline without going through the REST
// surface.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/directory"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/matching"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/pipeline"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

type Server struct {
	mcpServer *server.MCPServer
	engine    *matching.Engine
	workflows *pipeline.Service
	dir       directory.Directory
}

func NewServer(engine *matching.Engine, workflows *pipeline.Service, dir directory.Directory) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"StaffAnchor Hiring Pipeline",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		engine:    engine,
		workflows: workflows,
		dir:       dir,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"rank_candidates",
			mcp.WithDescription("Rank a job's applicants by match score"),
			mcp.WithString("job_id", mcp.Required(), mcp.Description("The job to rank applicants for")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		),
		s.handleRankCandidates,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List all hiring workflows"),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_workflow",
			mcp.WithDescription("Get one workflow with its full phase chain"),
			mcp.WithString("id", mcp.Required(), mcp.Description("The workflow ID")),
		),
		s.handleGetWorkflow,
	)
}

func (s *Server) handleRankCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	jobID, ok := args["job_id"].(string)
	if !ok || jobID == "" {
		return mcp.NewToolResultError("Missing required parameter: job_id"), nil
	}

	limit := 10
	if raw, ok := args["limit"].(float64); ok && raw > 0 {
		limit = int(raw)
	}

	pool, err := s.dir.ListApplicants(ctx, jobID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load applicants: %v", err)), nil
	}

	// equal weights: the tool has no preference sliders
	pref := models.Preference{SkillsVsDescription: 50, ExperienceVsDescription: 50, YearsOfExperience: 50, Location: 50}
	results, err := s.engine.Rank(ctx, jobID, pool, pref, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to rank: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(results)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workflows, err := s.workflows.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list workflows: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(workflows)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}

	wf, err := s.workflows.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(wf)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
