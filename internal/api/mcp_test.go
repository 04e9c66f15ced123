package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/postscope/internal/report"
)

// --- helpers ---

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tests ---

func TestMCPResearch(t *testing.T) {
	p := &mockPipeline{report: report.Report{PostURL: "u", Query: "q", Answer: "a"}}
	handler := mcpResearch(MCPDeps{Pipeline: p})

	result, err := handler(context.Background(), makeCallToolRequest("research", map[string]interface{}{
		"url":  "https://x.com/u/status/1",
		"note": "check",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if p.lastURL != "https://x.com/u/status/1" || p.lastNote != "check" {
		t.Errorf("pipeline inputs = %q, %q", p.lastURL, p.lastNote)
	}

	var rep report.Report
	if err := json.Unmarshal([]byte(toolText(t, result)), &rep); err != nil {
		t.Fatalf("result is not a report: %v", err)
	}
	if rep.Query != "q" {
		t.Errorf("report = %+v", rep)
	}
}

func TestMCPResearch_MissingURL(t *testing.T) {
	handler := mcpResearch(MCPDeps{Pipeline: &mockPipeline{}})

	result, err := handler(context.Background(), makeCallToolRequest("research", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing url")
	}
}

func TestMCPResearch_PersistFailure(t *testing.T) {
	p := &mockPipeline{err: fmt.Errorf("disk full")}
	handler := mcpResearch(MCPDeps{Pipeline: p})

	result, err := handler(context.Background(), makeCallToolRequest("research", map[string]interface{}{
		"url": "u",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for persistence failure")
	}
	if !strings.Contains(toolText(t, result), "not persisted") {
		t.Errorf("message = %q", toolText(t, result))
	}
}

func TestMCPRecentReports(t *testing.T) {
	l := &mockLister{reports: []report.Report{{PostURL: "u1"}, {PostURL: "u2"}}}
	handler := mcpRecentReports(MCPDeps{Reports: l})

	result, err := handler(context.Background(), makeCallToolRequest("recent_reports", map[string]interface{}{
		"limit": 2,
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if l.lastLimit != 2 {
		t.Errorf("limit = %d", l.lastLimit)
	}

	var reports []report.Report
	if err := json.Unmarshal([]byte(toolText(t, result)), &reports); err != nil {
		t.Fatalf("result is not a report list: %v", err)
	}
	if len(reports) != 2 {
		t.Errorf("got %d reports", len(reports))
	}
}

func TestMCPRecentReports_DefaultLimit(t *testing.T) {
	l := &mockLister{}
	handler := mcpRecentReports(MCPDeps{Reports: l})

	result, err := handler(context.Background(), makeCallToolRequest("recent_reports", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if l.lastLimit != 10 {
		t.Errorf("limit = %d, want 10", l.lastLimit)
	}
	if got := toolText(t, result); got != "[]" {
		t.Errorf("empty store result = %q", got)
	}
}

func TestMCPResourceRecent(t *testing.T) {
	l := &mockLister{reports: []report.Report{{PostURL: "u1"}}}
	handler := mcpResourceRecent(MCPDeps{Reports: l})

	contents, err := handler(context.Background(), makeReadResourceRequest("reports://recent"))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if tc.URI != "reports://recent" || tc.MIMEType != "application/json" {
		t.Errorf("contents = %+v", tc)
	}
	var reports []report.Report
	if err := json.Unmarshal([]byte(tc.Text), &reports); err != nil {
		t.Fatalf("resource is not a report list: %v", err)
	}
}

func TestNewMCPServer(t *testing.T) {
	s := NewMCPServer(MCPDeps{Pipeline: &mockPipeline{}, Reports: &mockLister{}})
	if s == nil {
		t.Fatal("nil server")
	}
}
