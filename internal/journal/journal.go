// Package journal records every maintenance run that touched a mirror.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/sitefix/internal/db"
)

// ErrNotFound is returned by GetByID for an unknown id.
var ErrNotFound = errors.New("run not found")

// Status is the outcome of a run.
type Status string

const (
	StatusChanged Status = "changed"
	StatusNoop    Status = "noop"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Run is a single journal record.
type Run struct {
	ID           string
	Timestamp    time.Time
	Command      string
	Target       string
	Status       Status
	Summary      string
	ChangedFiles []string
}

// Store provides access to the runs table.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run. If run.ID is empty a UUID is generated, and a zero
// Timestamp is set to the current time. The stored ID is returned.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	if run.ChangedFiles == nil {
		run.ChangedFiles = []string{}
	}

	changed, err := json.Marshal(run.ChangedFiles)
	if err != nil {
		return "", fmt.Errorf("marshalling changed files: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, timestamp, command, target, status, summary, changed_files)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Timestamp.UTC().Format(time.DateTime),
		run.Command,
		run.Target,
		string(run.Status),
		run.Summary,
		string(changed),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return run.ID, nil
}

// GetByID retrieves a single run.
func (s *Store) GetByID(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, command, target, status, summary, changed_files
		FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// Filter controls which runs List returns.
type Filter struct {
	Command string
	Status  Status
	Since   *time.Time
	Limit   int
}

// List returns runs matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Command != "" {
		clauses = append(clauses, "command = ?")
		args = append(args, filter.Command)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT id, timestamp, command, target, status, summary, changed_files FROM runs"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r       Run
		ts      string
		status  string
		changed string
	)
	if err := sc.Scan(&r.ID, &ts, &r.Command, &r.Target, &status, &r.Summary, &changed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	r.Status = Status(status)
	if t, err := parseTime(ts); err == nil {
		r.Timestamp = t
	}
	if err := json.Unmarshal([]byte(changed), &r.ChangedFiles); err != nil {
		return nil, fmt.Errorf("unmarshalling changed files: %w", err)
	}
	return &r, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.DateTime, time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
