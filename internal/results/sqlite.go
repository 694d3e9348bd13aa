package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leca/multi-image-host/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on an in-memory SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dsn and creates the schema. An empty
// dsn means ":memory:". The pool is pinned to one connection because every
// connection to ":memory:" would otherwise see its own empty database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection. The list is gone after.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Add stores e. A missing ID or AddedAt is filled in, and Provider defaults
// to the result's own provider tag.
func (s *SQLiteStore) Add(ctx context.Context, e *Entry) error {
	if e == nil || e.Result == nil {
		return errors.New("add result: entry has no upload result")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.AddedAt.IsZero() {
		e.AddedAt = time.Now().UTC()
	}
	if e.Provider == "" {
		e.Provider = e.Result.ProviderID
	}
	if e.FileName == "" {
		e.FileName = e.Result.Image.OriginalFilename
	}

	resultJSON, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (id, batch_id, provider, file_name, url, size, result, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.BatchID, e.Provider, e.FileName, e.Result.Image.URL, e.Result.Image.Size,
		string(resultJSON), e.AddedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// List returns the entries matching filter, which is FilterAll (or empty)
// or a provider id.
func (s *SQLiteStore) List(ctx context.Context, filter string) ([]*Entry, error) {
	where, args := filterClause(filter)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, batch_id, provider, file_name, result, added_at
		FROM results`+where+`
		ORDER BY seq ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns how many entries match filter.
func (s *SQLiteStore) Count(ctx context.Context, filter string) (int, error) {
	where, args := filterClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return count, nil
}

// Clear empties the list.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func filterClause(filter string) (string, []any) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == FilterAll {
		return "", nil
	}
	return " WHERE provider = ?", []any{filter}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scannable) (*Entry, error) {
	e := &Entry{}
	var resultStr, addedStr string

	if err := row.Scan(&e.ID, &e.BatchID, &e.Provider, &e.FileName, &resultStr, &addedStr); err != nil {
		return nil, fmt.Errorf("scan result: %w", err)
	}

	e.AddedAt, _ = time.Parse(time.RFC3339Nano, addedStr)
	e.Result = &model.UploadResult{}
	if err := json.Unmarshal([]byte(resultStr), e.Result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return e, nil
}
