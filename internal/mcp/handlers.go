package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/logscope/internal/export"
	"github.com/ziadkadry99/logscope/internal/query"
	"github.com/ziadkadry99/logscope/internal/timerange"
)

// jsonResult renders v as indented JSON, the shape agents consume best.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// queryRequest assembles an engine request from the common query parameters,
// falling back to the session default scope.
func (s *Server) queryRequest(request mcp.CallToolRequest, text string) query.Request {
	scope := request.GetString("scope", "")
	if scope == "" {
		scope = s.sessionScope()
	}
	return query.Request{
		Query:              text,
		Scope:              scope,
		IncludeDescendants: request.GetBool("include_descendants", false),
		TimeRange:          request.GetString("time_range", ""),
		TimeStart:          request.GetString("time_start", ""),
		TimeEnd:            request.GetString("time_end", ""),
		MaxResults:         request.GetInt("max_results", 0),
		NoCache:            request.GetBool("no_cache", false),
	}
}

// handleRunQuery executes one query through the engine.
func (s *Server) handleRunQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	resp, err := s.deps.Engine.Execute(ctx, s.queryRequest(request, text))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	return jsonResult(resp)
}

// batchSlot is one entry of a batch answer, positionally aligned with the
// request list.
type batchSlot struct {
	Success  bool            `json:"success"`
	Response *query.Response `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// handleRunBatchQueries executes several queries concurrently.
func (s *Server) handleRunBatchQueries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Queries []query.Request `json:"queries"`
	}
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid queries parameter: %v", err)), nil
	}
	if len(args.Queries) == 0 {
		return mcp.NewToolResultError("missing required parameter: queries"), nil
	}

	for i := range args.Queries {
		if args.Queries[i].Scope == "" {
			args.Queries[i].Scope = s.sessionScope()
		}
	}

	results := s.deps.Engine.ExecuteBatch(ctx, args.Queries)

	slots := make([]batchSlot, len(results))
	for i, r := range results {
		slots[i] = batchSlot{Success: r.Success, Response: r.Response}
		if r.Err != nil {
			slots[i].Error = r.Err.Error()
		}
	}

	return jsonResult(slots)
}

// handleValidateQuery lints a query without executing it.
func (s *Server) handleValidateQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	start, end, err := timerange.Resolve(
		request.GetString("time_start", ""),
		request.GetString("time_end", ""),
		request.GetString("time_range", ""),
		time.Now().UTC(),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid time window: %v", err)), nil
	}

	report := s.deps.Validator.Validate(ctx, text, start, end)
	return jsonResult(report)
}

// handleExportQuery executes a query and renders the rows as CSV or JSON.
func (s *Server) handleExportQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	format, err := request.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: format"), nil
	}

	resp, err := s.deps.Engine.Execute(ctx, s.queryRequest(request, text))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	rendered, err := export.Render(resp.Data, format, request.GetBool("include_metadata", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(rendered), nil
}

// handleTestConnection pings the backend.
func (s *Server) handleTestConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.deps.Backend.Ping(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("backend unreachable: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Connected to %s (root scope %s)",
		s.deps.Config.Backend.Endpoint, s.deps.Config.Scopes.Root,
	)), nil
}
