package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Pipeline PipelineRunner
	Reports  ReportLister
}

// NewMCPServer creates an MCP server with the research tools and
// resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"postscope",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("postscope — research social media posts and keep the resulting reports."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("research",
			mcp.WithDescription("Research a social media post: extract its text, search the web for context, and store a report."),
			mcp.WithString("url", mcp.Description("URL of the post to research"), mcp.Required()),
			mcp.WithString("note", mcp.Description("What to find out about the post")),
		),
		mcpResearch(deps),
	)

	s.AddTool(
		mcp.NewTool("recent_reports",
			mcp.WithDescription("List recent research reports, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of reports (default 10)")),
		),
		mcpRecentReports(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"reports://recent",
			"Recent Reports",
			mcp.WithResourceDescription("Last 10 research reports as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpResearch(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := req.RequireString("url")
		if err != nil {
			return mcpError("url is required"), nil
		}
		note := req.GetString("note", "")

		rep, err := deps.Pipeline.Run(ctx, url, note)
		if err != nil {
			return mcpError(fmt.Sprintf("research finished but the report was not persisted: %v", err)), nil
		}

		b, err := json.Marshal(rep)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal report: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpRecentReports(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > listLimit {
			limit = listLimit
		}

		reports, err := deps.Reports.List(limit)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list reports: %v", err)), nil
		}
		if len(reports) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(reports)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal reports: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		reports, err := deps.Reports.List(10)
		if err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", err)
		}

		b, err := json.Marshal(reports)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal reports: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
