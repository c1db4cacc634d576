package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/logscope/internal/backend"
	"github.com/ziadkadry99/logscope/internal/guide"
	"github.com/ziadkadry99/logscope/internal/timerange"
)

// handleListScopes lists the filtered child scopes a federated query targets.
func (s *Server) handleListScopes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Federator == nil {
		return mcp.NewToolResultError("no root scope configured; federation is disabled"), nil
	}

	scopes, err := s.deps.Federator.Scopes(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing scopes: %v", err)), nil
	}
	if scopes == nil {
		scopes = []backend.Scope{}
	}

	return jsonResult(scopes)
}

// handleSetDefaultScope changes the session default scope.
func (s *Server) handleSetDefaultScope(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope, err := request.RequireString("scope")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: scope"), nil
	}

	s.setSessionScope(scope)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Default scope set to %s. Cached query results cleared.", scope,
	)), nil
}

// handleGetDefaultScope shows the session default scope.
func (s *Server) handleGetDefaultScope(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fmt.Sprintf("Current default scope: %s", s.sessionScope())), nil
}

// handleListSources lists log sources, cached per filter.
func (s *Server) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.deps.Schema.Sources(ctx, request.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing sources: %v", err)), nil
	}
	if items == nil {
		items = []backend.Source{}
	}
	return jsonResult(items)
}

// handleListFields lists queryable fields, cached per filter.
func (s *Server) handleListFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.deps.Schema.Fields(ctx, request.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing fields: %v", err)), nil
	}
	if items == nil {
		items = []backend.Field{}
	}
	return jsonResult(items)
}

// handleListLabels lists labels, cached per filter.
func (s *Server) handleListLabels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.deps.Schema.Labels(ctx, request.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing labels: %v", err)), nil
	}
	if items == nil {
		items = []backend.Label{}
	}
	return jsonResult(items)
}

// handleListParsers lists parsers, cached per filter.
func (s *Server) handleListParsers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.deps.Schema.Parsers(ctx, request.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing parsers: %v", err)), nil
	}
	if items == nil {
		items = []backend.Parser{}
	}
	return jsonResult(items)
}

// handleSearchSchema searches all four catalog kinds in one call.
func (s *Server) handleSearchSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, err := request.RequireString("term")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: term"), nil
	}

	result, err := s.deps.Schema.Search(ctx, term)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schema search: %v", err)), nil
	}

	return jsonResult(result)
}

// timeRangeEntry pairs a named range with its description for listing.
type timeRangeEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handleListTimeRanges lists the named ranges in ascending span order.
func (s *Server) handleListTimeRanges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	options := timerange.Options()
	entries := make([]timeRangeEntry, 0, len(options))
	for _, name := range timerange.Names() {
		entries = append(entries, timeRangeEntry{Name: name, Description: options[name]})
	}
	return jsonResult(entries)
}

// handleGetQueryExamples returns the curated example queries.
func (s *Server) handleGetQueryExamples(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(guide.Examples())
}
