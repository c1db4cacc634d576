package querylog

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/logscope/internal/db"
	"github.com/ziadkadry99/logscope/internal/query"
)

// Store manages persistence of the query history log.
type Store struct {
	db *db.DB
}

// NewStore creates a new history store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Insert adds a record to the log. If rec.ID is empty a UUID is generated,
// and a zero ExecutedAt is filled with the current time.
func (s *Store) Insert(ctx context.Context, rec Record) (*Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.ExecutedAt.IsZero() {
		rec.ExecutedAt = time.Now().UTC()
	}

	var timeStart, timeEnd sql.NullTime
	if !rec.TimeStart.IsZero() {
		timeStart = sql.NullTime{Time: rec.TimeStart.UTC(), Valid: true}
	}
	if !rec.TimeEnd.IsZero() {
		timeEnd = sql.NullTime{Time: rec.TimeEnd.UTC(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_log (id, executed_at, query, scope, time_start, time_end,
			duration_ms, row_count, success, error, federated, scopes_queried, scopes_failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ExecutedAt, rec.Query, rec.Scope, timeStart, timeEnd,
		rec.DurationMS, rec.RowCount, rec.Success, rec.Error,
		rec.Federated, rec.ScopesQueried, rec.ScopesFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting history record: %w", err)
	}
	return &rec, nil
}

// LogQuery records an engine execution. It satisfies the engine's logger
// interface; persistence failures are logged and swallowed so a broken
// history database never fails a query that already succeeded.
func (s *Store) LogQuery(ctx context.Context, entry query.LogEntry) {
	rec := Record{
		Query:         entry.Query,
		Scope:         entry.Scope,
		TimeStart:     entry.TimeStart,
		TimeEnd:       entry.TimeEnd,
		DurationMS:    entry.Duration.Milliseconds(),
		RowCount:      entry.RowCount,
		Success:       entry.Success,
		Error:         entry.Error,
		Federated:     entry.Federated,
		ScopesQueried: entry.ScopesQueried,
		ScopesFailed:  entry.ScopesFailed,
	}
	if _, err := s.Insert(ctx, rec); err != nil {
		log.Printf("querylog: recording execution: %v", err)
	}
}

// GetByID retrieves a single record.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM query_log WHERE id = ?", id)
	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting history record: %w", err)
	}
	return rec, nil
}

// Recent returns the most recently executed queries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.List(ctx, ListFilter{Limit: limit})
}

// List returns records matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	q := selectColumns + " FROM query_log WHERE 1=1"
	args := []any{}

	if filter.Scope != "" {
		q += " AND scope = ?"
		args = append(args, filter.Scope)
	}
	if filter.Contains != "" {
		q += " AND query LIKE ?"
		args = append(args, "%"+filter.Contains+"%")
	}
	if filter.Success != nil {
		q += " AND success = ?"
		args = append(args, *filter.Success)
	}
	if filter.Since != nil {
		q += " AND executed_at >= ?"
		args = append(args, filter.Since.UTC())
	}
	if filter.Until != nil {
		q += " AND executed_at <= ?"
		args = append(args, filter.Until.UTC())
	}

	// rowid breaks ties between records logged within the same second.
	q += " ORDER BY executed_at DESC, rowid DESC"

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
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Stats summarizes the log: totals, success split, and the most queried scopes.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN federated = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(duration_ms), 0)
		FROM query_log`,
	).Scan(&st.Total, &st.Succeeded, &st.Federated, &st.AvgDurationMS)
	if err != nil {
		return nil, fmt.Errorf("computing history stats: %w", err)
	}
	st.Failed = st.Total - st.Succeeded
	if st.Total > 0 {
		st.SuccessRate = float64(st.Succeeded) / float64(st.Total)
	}

	scopes, err := s.db.QueryContext(ctx, `
		SELECT scope, COUNT(*) AS n FROM query_log
		WHERE scope != ''
		GROUP BY scope ORDER BY n DESC, scope ASC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("computing top scopes: %w", err)
	}
	defer scopes.Close()

	for scopes.Next() {
		var sc ScopeCount
		if err := scopes.Scan(&sc.Scope, &sc.Count); err != nil {
			return nil, fmt.Errorf("scanning top scope: %w", err)
		}
		st.TopScopes = append(st.TopScopes, sc)
	}
	if err := scopes.Err(); err != nil {
		return nil, err
	}

	queries, err := s.db.QueryContext(ctx, `
		SELECT query, COUNT(*) AS n FROM query_log
		GROUP BY query ORDER BY n DESC, query ASC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("computing top queries: %w", err)
	}
	defer queries.Close()

	for queries.Next() {
		var qc QueryCount
		if err := queries.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, fmt.Errorf("scanning top query: %w", err)
		}
		st.TopQueries = append(st.TopQueries, qc)
	}
	return &st, queries.Err()
}

// DeleteBefore removes all records older than the given time and returns
// the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM query_log WHERE executed_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT id, executed_at, query, scope, time_start, time_end,
	duration_ms, row_count, success, error, federated, scopes_queried, scopes_failed`

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	var (
		rec                Record
		timeStart, timeEnd sql.NullTime
	)
	err := scan(
		&rec.ID, &rec.ExecutedAt, &rec.Query, &rec.Scope, &timeStart, &timeEnd,
		&rec.DurationMS, &rec.RowCount, &rec.Success, &rec.Error,
		&rec.Federated, &rec.ScopesQueried, &rec.ScopesFailed,
	)
	if err != nil {
		return nil, err
	}
	if timeStart.Valid {
		rec.TimeStart = timeStart.Time
	}
	if timeEnd.Valid {
		rec.TimeEnd = timeEnd.Time
	}
	return &rec, nil
}
