package backend

// QueryRequest is the body of a search call against a single scope.
type QueryRequest struct {
	ScopeID            string `json:"scopeId"`
	Query              string `json:"query"`
	TimeStart          string `json:"timeStart"`
	TimeEnd            string `json:"timeEnd"`
	IncludeDescendants bool   `json:"includeDescendants"`
	MaxRows            int    `json:"maxRows,omitempty"`
}

// ColumnDesc describes one result column as the backend reports it.
type ColumnDesc struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Type        string `json:"type,omitempty"`
}

// QueryResponse is the backend's answer to a query call. Rows arrive either as
// ordered value lists or as objects keyed by column name depending on the
// query shape; values stay loosely typed until the query layer normalizes
// them.
type QueryResponse struct {
	Columns    []ColumnDesc `json:"columns"`
	Rows       []any        `json:"rows"`
	TotalCount int          `json:"totalCount"`
	Partial    bool         `json:"partial"`
}

// Scope is one node of the resource hierarchy as the directory reports it.
type Scope struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	State    string `json:"state,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

// ScopeActive is the directory's state value for scopes that accept queries.
const ScopeActive = "ACTIVE"

// ListScopesRequest selects one page of the scope directory.
type ListScopesRequest struct {
	Root       string
	ActiveOnly bool
	Page       string
	Limit      int
}

// ScopeList is one page of the scope directory. NextPage is empty on the last
// page.
type ScopeList struct {
	Items    []Scope `json:"items"`
	NextPage string  `json:"nextPage,omitempty"`
}

// Source is a log source definition.
type Source struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Field is a queryable field definition.
type Field struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	DataType    string `json:"dataType,omitempty"`
	System      bool   `json:"system,omitempty"`
}

// Label is a log label definition.
type Label struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// Parser is a log parser definition.
type Parser struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Type        string `json:"type,omitempty"`
}
