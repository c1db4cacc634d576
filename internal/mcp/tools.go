package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/logscope/internal/timerange"
)

// tool enumerates every tool this server exposes. Registration iterates
// toolList and dispatch switches on the same constants, so adding a tool
// means extending the enum, its definition, and the dispatch switch; an
// unknown tool can never be registered.
type tool int

const (
	toolRunQuery tool = iota
	toolRunBatchQueries
	toolValidateQuery
	toolExportQuery
	toolListScopes
	toolSetDefaultScope
	toolGetDefaultScope
	toolListSources
	toolListFields
	toolListLabels
	toolListParsers
	toolSearchSchema
	toolListTimeRanges
	toolGetQueryExamples
	toolRecentQueries
	toolQueryStats
	toolCacheStats
	toolClearCache
	toolListSavedSearches
	toolSaveSearch
	toolDeleteSavedSearch
	toolRunSavedSearch
	toolTestConnection
)

// toolList is the closed set offered to clients.
var toolList = []tool{
	toolRunQuery,
	toolRunBatchQueries,
	toolValidateQuery,
	toolExportQuery,
	toolListScopes,
	toolSetDefaultScope,
	toolGetDefaultScope,
	toolListSources,
	toolListFields,
	toolListLabels,
	toolListParsers,
	toolSearchSchema,
	toolListTimeRanges,
	toolGetQueryExamples,
	toolRecentQueries,
	toolQueryStats,
	toolCacheStats,
	toolClearCache,
	toolListSavedSearches,
	toolSaveSearch,
	toolDeleteSavedSearch,
	toolRunSavedSearch,
	toolTestConnection,
}

// definition returns the MCP metadata for t. Registration exercises every
// enum member at startup, so a missing case fails at boot, not at call time.
func (t tool) definition() mcp.Tool {
	switch t {
	case toolRunQuery:
		return mcp.NewTool("run_query",
			mcp.WithDescription("Execute a log analytics query and return the result table. Queries against the root scope with include_descendants fan out across all child scopes."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Query text, e.g. \"'Severity' = 'error' | stats count by 'Host Name'\""),
			),
			mcp.WithString("scope",
				mcp.Description("Scope to query. Defaults to the session default scope."),
			),
			mcp.WithBoolean("include_descendants",
				mcp.Description("Also search all scopes below the target scope"),
			),
			mcp.WithString("time_range",
				mcp.Description("Named relative time window (default last_1_hour)"),
				mcp.Enum(timerange.Names()...),
			),
			mcp.WithString("time_start",
				mcp.Description("Absolute window start (RFC3339 or YYYY-MM-DD). Overrides time_range."),
			),
			mcp.WithString("time_end",
				mcp.Description("Absolute window end (RFC3339 or YYYY-MM-DD)"),
			),
			mcp.WithNumber("max_results",
				mcp.Description("Maximum rows to return (default 1000)"),
			),
			mcp.WithBoolean("no_cache",
				mcp.Description("Bypass the result cache for this call"),
			),
		)
	case toolRunBatchQueries:
		return mcp.NewTool("run_batch_queries",
			mcp.WithDescription("Execute several queries concurrently. Returns one result slot per query, in order; one failing query does not fail the rest."),
			mcp.WithArray("queries",
				mcp.Required(),
				mcp.Description("Queries to run. Each entry takes the same fields as run_query: query, scope, includeDescendants, timeRange, timeStart, timeEnd, maxResults, noCache."),
				mcp.Items(map[string]any{"type": "object"}),
			),
		)
	case toolValidateQuery:
		return mcp.NewTool("validate_query",
			mcp.WithDescription("Check a query for syntax problems, unknown field references, and likely cost without executing it. Returns errors, warnings, and suggested fixes."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Query text to validate"),
			),
			mcp.WithString("time_range",
				mcp.Description("Time window the query will run over, for width warnings"),
				mcp.Enum(timerange.Names()...),
			),
			mcp.WithString("time_start",
				mcp.Description("Absolute window start"),
			),
			mcp.WithString("time_end",
				mcp.Description("Absolute window end"),
			),
		)
	case toolExportQuery:
		return mcp.NewTool("export_query",
			mcp.WithDescription("Execute a query and return the result rendered as CSV or JSON text, ready to save to a file."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Query text to execute"),
			),
			mcp.WithString("format",
				mcp.Required(),
				mcp.Description("Output format"),
				mcp.Enum("csv", "json"),
			),
			mcp.WithString("scope",
				mcp.Description("Scope to query. Defaults to the session default scope."),
			),
			mcp.WithBoolean("include_descendants",
				mcp.Description("Also search all scopes below the target scope"),
			),
			mcp.WithString("time_range",
				mcp.Description("Named relative time window"),
				mcp.Enum(timerange.Names()...),
			),
			mcp.WithString("time_start",
				mcp.Description("Absolute window start"),
			),
			mcp.WithString("time_end",
				mcp.Description("Absolute window end"),
			),
			mcp.WithNumber("max_results",
				mcp.Description("Maximum rows to export"),
			),
			mcp.WithBoolean("include_metadata",
				mcp.Description("JSON only: wrap the rows in an envelope with total count, partial flag, and column descriptors"),
			),
		)
	case toolListScopes:
		return mcp.NewTool("list_scopes",
			mcp.WithDescription("List the child scopes a federated query fans out to, after the configured include/exclude filters."),
		)
	case toolSetDefaultScope:
		return mcp.NewTool("set_default_scope",
			mcp.WithDescription("Change the session's default query scope. Subsequent tools without an explicit scope use it; cached query results are dropped."),
			mcp.WithString("scope",
				mcp.Required(),
				mcp.Description("Scope identifier to use as the default"),
			),
		)
	case toolGetDefaultScope:
		return mcp.NewTool("get_default_scope",
			mcp.WithDescription("Show the session's current default query scope."),
		)
	case toolListSources:
		return mcp.NewTool("list_sources",
			mcp.WithDescription("List log sources known to the backend."),
			mcp.WithString("filter",
				mcp.Description("Substring filter applied by the backend"),
			),
		)
	case toolListFields:
		return mcp.NewTool("list_fields",
			mcp.WithDescription("List queryable fields known to the backend."),
			mcp.WithString("filter",
				mcp.Description("Substring filter applied by the backend"),
			),
		)
	case toolListLabels:
		return mcp.NewTool("list_labels",
			mcp.WithDescription("List labels known to the backend."),
			mcp.WithString("filter",
				mcp.Description("Substring filter applied by the backend"),
			),
		)
	case toolListParsers:
		return mcp.NewTool("list_parsers",
			mcp.WithDescription("List log parsers known to the backend."),
			mcp.WithString("filter",
				mcp.Description("Substring filter applied by the backend"),
			),
		)
	case toolSearchSchema:
		return mcp.NewTool("search_schema",
			mcp.WithDescription("Search sources, fields, labels, and parsers by name in one call. Useful to find the exact field name a query needs."),
			mcp.WithString("term",
				mcp.Required(),
				mcp.Description("Case-insensitive term matched against names and display names"),
			),
		)
	case toolListTimeRanges:
		return mcp.NewTool("list_time_ranges",
			mcp.WithDescription("List the named relative time ranges accepted by the query tools."),
		)
	case toolGetQueryExamples:
		return mcp.NewTool("get_query_examples",
			mcp.WithDescription("Get curated example queries covering common patterns: error hunting, top-N, trends, volume breakdowns."),
		)
	case toolRecentQueries:
		return mcp.NewTool("recent_queries",
			mcp.WithDescription("Show recently executed queries with their scope, window, duration, and outcome."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum records to return (default 20)"),
			),
		)
	case toolQueryStats:
		return mcp.NewTool("query_stats",
			mcp.WithDescription("Aggregate execution history: totals, success rate, average duration, busiest scopes and queries."),
		)
	case toolCacheStats:
		return mcp.NewTool("cache_stats",
			mcp.WithDescription("Show result cache hit/miss counters and entry counts per category."),
		)
	case toolClearCache:
		return mcp.NewTool("clear_cache",
			mcp.WithDescription("Drop cached entries."),
			mcp.WithString("category",
				mcp.Description("Category to clear; omit to clear everything"),
				mcp.Enum("query", "schema"),
			),
		)
	case toolListSavedSearches:
		return mcp.NewTool("list_saved_searches",
			mcp.WithDescription("List saved searches with their queries and run bookkeeping."),
			mcp.WithString("contains",
				mcp.Description("Substring filter on name and description"),
			),
		)
	case toolSaveSearch:
		return mcp.NewTool("save_search",
			mcp.WithDescription("Save a query under a unique name for later reuse."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Unique name for the search"),
			),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Query text to save"),
			),
			mcp.WithString("description",
				mcp.Description("What the search is for"),
			),
			mcp.WithString("scope",
				mcp.Description("Scope to run it against; empty means the default at run time"),
			),
			mcp.WithString("time_range",
				mcp.Description("Named time range to run it over"),
				mcp.Enum(timerange.Names()...),
			),
			mcp.WithBoolean("include_descendants",
				mcp.Description("Also search descendant scopes when run"),
			),
			mcp.WithNumber("max_results",
				mcp.Description("Row cap applied when run"),
			),
		)
	case toolDeleteSavedSearch:
		return mcp.NewTool("delete_saved_search",
			mcp.WithDescription("Delete a saved search by name."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name of the saved search to delete"),
			),
		)
	case toolRunSavedSearch:
		return mcp.NewTool("run_saved_search",
			mcp.WithDescription("Execute a saved search by name and return the result table. Bypasses the cache and bumps the search's run counter."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name of the saved search to run"),
			),
			mcp.WithString("scope",
				mcp.Description("Override the saved scope for this run"),
			),
			mcp.WithString("time_range",
				mcp.Description("Override the saved time range for this run"),
				mcp.Enum(timerange.Names()...),
			),
		)
	case toolTestConnection:
		return mcp.NewTool("test_connection",
			mcp.WithDescription("Verify the backend endpoint is reachable and the configured credentials work."),
		)
	}
	panic(fmt.Sprintf("tool %d has no definition", int(t)))
}
