// Package mcp exposes the query engine, schema catalog, and saved-search
// store as an MCP stdio server for AI agents.
package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/logscope/internal/backend"
	"github.com/ziadkadry99/logscope/internal/cache"
	"github.com/ziadkadry99/logscope/internal/config"
	"github.com/ziadkadry99/logscope/internal/guide"
	"github.com/ziadkadry99/logscope/internal/query"
	"github.com/ziadkadry99/logscope/internal/querylog"
	"github.com/ziadkadry99/logscope/internal/savedsearch"
	"github.com/ziadkadry99/logscope/internal/schema"
	"github.com/ziadkadry99/logscope/internal/validate"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Deps bundles everything the tool handlers serve from.
type Deps struct {
	Engine    *query.Engine
	Federator *query.Federator
	Backend   *backend.Client
	Schema    *schema.Service
	Validator *validate.Validator
	History   *querylog.Store
	Searches  *savedsearch.Store
	Config    *config.Config
}

// Server wraps an MCP server exposing the logscope tool set. The session
// default scope lives here: the engine itself has no mutable state, so every
// request carries the scope explicitly.
type Server struct {
	deps Deps
	mcp  *server.MCPServer

	mu           sync.Mutex
	defaultScope string
}

// NewServer creates an MCP server over the given dependencies. The session
// default scope starts at the configured default.
func NewServer(deps Deps) *Server {
	s := &Server{
		deps:         deps,
		defaultScope: deps.Config.DefaultScope(),
	}

	s.mcp = server.NewMCPServer(
		"logscope",
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.registerTools()
	s.registerResources()

	return s
}

// registerResources offers the query language reference as a readable
// resource.
func (s *Server) registerResources() {
	ref := mcp.NewResource(
		"logscope://syntax-guide",
		"Query Language Reference",
		mcp.WithResourceDescription("Operators, pipe commands, time ranges, federation notes, and common query patterns."),
		mcp.WithMIMEType("text/markdown"),
	)
	s.mcp.AddResource(ref, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "text/markdown",
				Text:     guide.Markdown(),
			},
		}, nil
	})
}

// registerTools offers every tool in the closed list, all routed through the
// one dispatch switch.
func (s *Server) registerTools() {
	for _, t := range toolList {
		t := t
		s.mcp.AddTool(t.definition(), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return s.dispatch(ctx, t, request)
		})
	}
}

// dispatch routes a call to its handler. This switch is the single
// exhaustiveness point for the tool enum; registration only offers tools from
// toolList, so the fallthrough is unreachable through the protocol.
func (s *Server) dispatch(ctx context.Context, t tool, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch t {
	case toolRunQuery:
		return s.handleRunQuery(ctx, request)
	case toolRunBatchQueries:
		return s.handleRunBatchQueries(ctx, request)
	case toolValidateQuery:
		return s.handleValidateQuery(ctx, request)
	case toolExportQuery:
		return s.handleExportQuery(ctx, request)
	case toolListScopes:
		return s.handleListScopes(ctx, request)
	case toolSetDefaultScope:
		return s.handleSetDefaultScope(ctx, request)
	case toolGetDefaultScope:
		return s.handleGetDefaultScope(ctx, request)
	case toolListSources:
		return s.handleListSources(ctx, request)
	case toolListFields:
		return s.handleListFields(ctx, request)
	case toolListLabels:
		return s.handleListLabels(ctx, request)
	case toolListParsers:
		return s.handleListParsers(ctx, request)
	case toolSearchSchema:
		return s.handleSearchSchema(ctx, request)
	case toolListTimeRanges:
		return s.handleListTimeRanges(ctx, request)
	case toolGetQueryExamples:
		return s.handleGetQueryExamples(ctx, request)
	case toolRecentQueries:
		return s.handleRecentQueries(ctx, request)
	case toolQueryStats:
		return s.handleQueryStats(ctx, request)
	case toolCacheStats:
		return s.handleCacheStats(ctx, request)
	case toolClearCache:
		return s.handleClearCache(ctx, request)
	case toolListSavedSearches:
		return s.handleListSavedSearches(ctx, request)
	case toolSaveSearch:
		return s.handleSaveSearch(ctx, request)
	case toolDeleteSavedSearch:
		return s.handleDeleteSavedSearch(ctx, request)
	case toolRunSavedSearch:
		return s.handleRunSavedSearch(ctx, request)
	case toolTestConnection:
		return s.handleTestConnection(ctx, request)
	}
	return mcp.NewToolResultError(fmt.Sprintf("unknown tool %q", request.Params.Name)), nil
}

// sessionScope returns the current session default scope.
func (s *Server) sessionScope() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultScope
}

// setSessionScope changes the session default and drops cached query results.
func (s *Server) setSessionScope(scope string) {
	s.mu.Lock()
	s.defaultScope = scope
	s.mu.Unlock()
	s.deps.Engine.Cache().Clear(cache.CategoryQuery)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
