// Package mcpserver exposes the component registry over the Model
// Context Protocol so agent frontends can browse generated components.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/johnathanchiu/componentize/pkg/registry"
)

// New builds an MCP server backed by reg. Canvas may be nil when no
// placements are tracked.
func New(reg *registry.Registry, canvas *registry.Canvas) *server.MCPServer {
	s := server.NewMCPServer("componentize", "0.1.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("list_components",
			mcp.WithDescription("List the names of all generated components"),
		),
		listHandler(reg),
	)

	s.AddTool(
		mcp.NewTool("read_component",
			mcp.WithDescription("Read the source of a generated component"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Component name, e.g. PricingCard"),
			),
		),
		readHandler(reg),
	)

	if canvas != nil {
		s.AddTool(
			mcp.NewTool("list_canvas",
				mcp.WithDescription("List canvas placements with positions"),
			),
			canvasHandler(canvas),
		)
	}

	return s
}

// ServeStdio blocks serving s over stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func listHandler(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := reg.List()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]any{"components": names})
		if err != nil {
			return nil, fmt.Errorf("encode component list: %w", err)
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func readHandler(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		comp, err := reg.Read(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(comp.Code), nil
	}
}

func canvasHandler(canvas *registry.Canvas) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(map[string]any{"items": canvas.Items()})
		if err != nil {
			return nil, fmt.Errorf("encode canvas items: %w", err)
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}
