// Package mcp exposes the workout log to MCP clients as read-only tools.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout log. Query logged sets by cycle and week, compare a session with the previous one, and read records, muscle balance and progression. Weeks are 1-10; week 10 is the deload week."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetSets, Handler: h.getSets},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolCompareSession, Handler: h.compareSession},
		server.ServerTool{Tool: toolGetPodium, Handler: h.getPodium},
		server.ServerTool{Tool: toolGetRecords, Handler: h.getRecords},
		server.ServerTool{Tool: toolGetMuscleBalance, Handler: h.getMuscleBalance},
		server.ServerTool{Tool: toolGetProgression, Handler: h.getProgression},
		server.ServerTool{Tool: toolEstimateOneRepMax, Handler: h.estimateOneRepMax},
		server.ServerTool{Tool: toolGetProgram, Handler: h.getProgram},
	)

	s.AddResources(
		server.ServerResource{Resource: resSummary, Handler: h.summary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resSummary = mcp.NewResource(
	"liftlog://summary",
	"Training Summary",
	mcp.WithResourceDescription("Headline numbers, the top lifts by estimated 1RM and the program's sessions"),
	mcp.WithMIMEType("application/json"),
)
