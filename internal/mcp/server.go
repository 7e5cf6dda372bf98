package mcp

import (
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("SetFlow", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("SetFlow workout planner. List plans and their timed exercises, read workout history and dashboard totals, and start, pause, resume or reset a plan's countdown session."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListPlans, Handler: h.listPlans},
		server.ServerTool{Tool: toolGetPlan, Handler: h.getPlan},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetDashboardStats, Handler: h.getDashboardStats},
		server.ServerTool{Tool: toolGetSessionState, Handler: h.getSessionState},
		server.ServerTool{Tool: toolControlSession, Handler: h.controlSession},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resPlans, Handler: h.plansResource},
		server.ServerResource{Resource: resDashboard, Handler: h.dashboardResource},
	)

	return s
}

// HTTPHandler wraps the MCP server in the streamable HTTP transport for
// mounting on the API router.
func HTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resPlans = mcp.NewResource(
	"setflow://plans",
	"Workout Plans",
	mcp.WithResourceDescription("Every plan with exercise count, total time and number of completed workouts"),
	mcp.WithMIMEType("application/json"),
)

var resDashboard = mcp.NewResource(
	"setflow://dashboard",
	"Dashboard",
	mcp.WithResourceDescription("Totals across all plans: plans, workouts, exercises, time trained and the last workout date"),
	mcp.WithMIMEType("application/json"),
)
