package savedsearch

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/logscope/internal/db"
)

// Store manages persistence of saved searches.
type Store struct {
	db *db.DB
}

// NewStore creates a new saved search store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create adds a new saved search. Names are unique.
func (s *Store) Create(ctx context.Context, search SavedSearch) (*SavedSearch, error) {
	if search.Name == "" {
		return nil, fmt.Errorf("saved search name is required")
	}
	if search.Query == "" {
		return nil, fmt.Errorf("saved search query is required")
	}
	if search.ID == "" {
		search.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	search.CreatedAt = now
	search.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_searches (id, name, description, query, scope, time_range,
			include_descendants, max_results, created_at, updated_at, run_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		search.ID, search.Name, search.Description, search.Query, search.Scope,
		search.TimeRange, search.IncludeDescendants, search.MaxResults,
		search.CreatedAt, search.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("saved search %q already exists", search.Name)
		}
		return nil, fmt.Errorf("inserting saved search: %w", err)
	}
	return &search, nil
}

// GetByID retrieves a saved search by its ID. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*SavedSearch, error) {
	return s.getWhere(ctx, "id = ?", id)
}

// GetByName retrieves a saved search by its unique name. Returns nil when absent.
func (s *Store) GetByName(ctx context.Context, name string) (*SavedSearch, error) {
	return s.getWhere(ctx, "name = ?", name)
}

func (s *Store) getWhere(ctx context.Context, clause string, arg any) (*SavedSearch, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM saved_searches WHERE "+clause, arg)
	search, err := scanSearch(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting saved search: %w", err)
	}
	return search, nil
}

// List returns saved searches matching the filter, ordered by name.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]SavedSearch, error) {
	q := selectColumns + " FROM saved_searches WHERE 1=1"
	args := []any{}

	if filter.Contains != "" {
		q += " AND (name LIKE ? OR description LIKE ?)"
		pattern := "%" + filter.Contains + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Scope != "" {
		q += " AND scope = ?"
		args = append(args, filter.Scope)
	}

	q += " ORDER BY name ASC"

	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		q += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing saved searches: %w", err)
	}
	defer rows.Close()

	var searches []SavedSearch
	for rows.Next() {
		search, err := scanSearch(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning saved search: %w", err)
		}
		searches = append(searches, *search)
	}
	return searches, rows.Err()
}

// Update replaces the editable fields of a saved search.
func (s *Store) Update(ctx context.Context, search SavedSearch) error {
	if search.ID == "" {
		return fmt.Errorf("saved search id is required")
	}
	if search.Name == "" || search.Query == "" {
		return fmt.Errorf("saved search name and query are required")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE saved_searches SET name = ?, description = ?, query = ?, scope = ?,
			time_range = ?, include_descendants = ?, max_results = ?, updated_at = ?
		 WHERE id = ?`,
		search.Name, search.Description, search.Query, search.Scope,
		search.TimeRange, search.IncludeDescendants, search.MaxResults,
		time.Now().UTC(), search.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("saved search %q already exists", search.Name)
		}
		return fmt.Errorf("updating saved search: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("saved search not found: %s", search.ID)
	}
	return nil
}

// Delete removes a saved search.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM saved_searches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting saved search: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("saved search not found: %s", id)
	}
	return nil
}

// MarkRun bumps the run counter and stamps the last run time.
func (s *Store) MarkRun(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE saved_searches SET run_count = run_count + 1, last_run = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("marking saved search run: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, name, description, query, scope, time_range,
	include_descendants, max_results, created_at, updated_at, last_run, run_count`

func scanSearch(scan func(dest ...any) error) (*SavedSearch, error) {
	var (
		search  SavedSearch
		lastRun sql.NullTime
	)
	err := scan(
		&search.ID, &search.Name, &search.Description, &search.Query, &search.Scope,
		&search.TimeRange, &search.IncludeDescendants, &search.MaxResults,
		&search.CreatedAt, &search.UpdatedAt, &lastRun, &search.RunCount,
	)
	if err != nil {
		return nil, err
	}
	if lastRun.Valid {
		search.LastRun = &lastRun.Time
	}
	return &search, nil
}
