package mcp

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/logscope/internal/cache"
	"github.com/ziadkadry99/logscope/internal/querylog"
	"github.com/ziadkadry99/logscope/internal/savedsearch"
)

// handleRecentQueries shows the newest execution records.
func (s *Server) handleRecentQueries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.deps.History.Recent(ctx, request.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading history: %v", err)), nil
	}
	if records == nil {
		records = []querylog.Record{}
	}
	return jsonResult(records)
}

// handleQueryStats aggregates the execution history.
func (s *Server) handleQueryStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.deps.History.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading history: %v", err)), nil
	}
	return jsonResult(stats)
}

// handleCacheStats shows cache counters.
func (s *Server) handleCacheStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.deps.Engine.Cache().Stats())
}

// handleClearCache drops cached entries, one category or all.
func (s *Server) handleClearCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := request.GetString("category", "")
	switch category {
	case "":
		s.deps.Engine.Cache().ClearAll()
		return mcp.NewToolResultText("Cache cleared."), nil
	case cache.CategoryQuery, cache.CategorySchema:
		s.deps.Engine.Cache().Clear(category)
		return mcp.NewToolResultText(fmt.Sprintf("Cleared %s cache.", category)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown cache category %q", category)), nil
	}
}

// handleListSavedSearches lists saved searches.
func (s *Server) handleListSavedSearches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	searches, err := s.deps.Searches.List(ctx, savedsearch.ListFilter{
		Contains: request.GetString("contains", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing saved searches: %v", err)), nil
	}
	if searches == nil {
		searches = []savedsearch.SavedSearch{}
	}
	return jsonResult(searches)
}

// handleSaveSearch saves a query under a unique name.
func (s *Server) handleSaveSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	text, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	created, err := s.deps.Searches.Create(ctx, savedsearch.SavedSearch{
		Name:               name,
		Query:              text,
		Description:        request.GetString("description", ""),
		Scope:              request.GetString("scope", ""),
		TimeRange:          request.GetString("time_range", ""),
		IncludeDescendants: request.GetBool("include_descendants", false),
		MaxResults:         request.GetInt("max_results", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(created)
}

// handleDeleteSavedSearch deletes a saved search by name.
func (s *Server) handleDeleteSavedSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	search, err := s.deps.Searches.GetByName(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("looking up saved search: %v", err)), nil
	}
	if search == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no saved search named %q", name)), nil
	}

	if err := s.deps.Searches.Delete(ctx, search.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("deleting saved search: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted saved search %q.", name)), nil
}

// handleRunSavedSearch executes a saved search by name.
func (s *Server) handleRunSavedSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	search, err := s.deps.Searches.GetByName(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("looking up saved search: %v", err)), nil
	}
	if search == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no saved search named %q", name)), nil
	}

	req := search.Request()
	if scope := request.GetString("scope", ""); scope != "" {
		req.Scope = scope
	}
	if tr := request.GetString("time_range", ""); tr != "" {
		req.TimeRange = tr
	}
	if req.Scope == "" {
		req.Scope = s.sessionScope()
	}
	req.NoCache = true

	resp, err := s.deps.Engine.Execute(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	// The query already ran; a failed counter bump must not fail it.
	if err := s.deps.Searches.MarkRun(ctx, search.ID); err != nil {
		log.Printf("mcp: marking saved search run: %v", err)
	}

	return jsonResult(resp)
}
