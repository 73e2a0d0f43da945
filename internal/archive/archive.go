// Package archive keeps the run ledger: which heartbeat runs happened,
// which stories they produced, and the decision trails behind each identity
// evolution. The identity files themselves stay flat text; the ledger is
// the queryable history around them.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger records runs, stories and decisions in SQLite.
type Ledger struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the ledger database at the given path.
func Open(path string) (*Ledger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	l := &Ledger{db: db, dbPath: path}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		number INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		status TEXT DEFAULT 'running',
		summary TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_run_id ON runs(run_id);

	CREATE TABLE IF NOT EXISTS stories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		path TEXT NOT NULL,
		token_estimate INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_stories_run ON stories(run_id);

	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		domain TEXT NOT NULL,
		count_before INTEGER NOT NULL,
		count_after INTEGER NOT NULL,
		trail TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
	CREATE INDEX IF NOT EXISTS idx_decisions_domain ON decisions(domain);
	`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize ledger schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Run is one heartbeat run's ledger row.
type Run struct {
	RunID      string
	Number     int
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Summary    string
}

// StoryRecord is one persisted story's ledger row.
type StoryRecord struct {
	RunID         string
	Topic         string
	Path          string
	TokenEstimate int
	CreatedAt     time.Time
}

// DecisionRecord is one identity evolution's before/after plus its trail.
type DecisionRecord struct {
	RunID       string
	Domain      string
	CountBefore int
	CountAfter  int
	Trail       string
	CreatedAt   time.Time
}

// BeginRun records the start of a run.
func (l *Ledger) BeginRun(runID string, number int, startedAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.db.Exec(
		`INSERT INTO runs (run_id, number, started_at) VALUES (?, ?, ?)`,
		runID, number, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// FinishRun marks a run complete with a status and summary.
func (l *Ledger) FinishRun(runID, status, summary string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, summary = ? WHERE run_id = ?`,
		time.Now().UTC(), status, summary, runID)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

// RecordStory logs a persisted story against its run.
func (l *Ledger) RecordStory(rec StoryRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.db.Exec(
		`INSERT INTO stories (run_id, topic, path, token_estimate) VALUES (?, ?, ?, ?)`,
		rec.RunID, rec.Topic, rec.Path, rec.TokenEstimate)
	if err != nil {
		return fmt.Errorf("failed to record story: %w", err)
	}
	return nil
}

// RecordDecision logs an identity evolution trail against its run.
func (l *Ledger) RecordDecision(rec DecisionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.db.Exec(
		`INSERT INTO decisions (run_id, domain, count_before, count_after, trail) VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.Domain, rec.CountBefore, rec.CountAfter, rec.Trail)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	return nil
}

// LastRunNumber returns the highest recorded run number, 0 when none.
func (l *Ledger) LastRunNumber() (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var n sql.NullInt64
	err := l.db.QueryRow(`SELECT MAX(number) FROM runs`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to query run number: %w", err)
	}
	if !n.Valid {
		return 0, nil
	}
	return int(n.Int64), nil
}

// RecentRuns returns the most recent runs, newest first.
func (l *Ledger) RecentRuns(limit int) ([]Run, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if limit <= 0 {
		limit = 10
	}

	rows, err := l.db.Query(
		`SELECT run_id, number, started_at, COALESCE(finished_at, started_at), status, COALESCE(summary, '')
		 FROM runs ORDER BY number DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Number, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// StoriesForRun returns the stories a run produced.
func (l *Ledger) StoriesForRun(runID string) ([]StoryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.Query(
		`SELECT run_id, topic, path, token_estimate, created_at
		 FROM stories WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	var stories []StoryRecord
	for rows.Next() {
		var s StoryRecord
		if err := rows.Scan(&s.RunID, &s.Topic, &s.Path, &s.TokenEstimate, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

// DecisionsForDomain returns a domain's evolution history, newest first.
func (l *Ledger) DecisionsForDomain(domain string, limit int) ([]DecisionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.Query(
		`SELECT run_id, domain, count_before, count_after, COALESCE(trail, ''), created_at
		 FROM decisions WHERE domain = ? ORDER BY id DESC LIMIT ?`, domain, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []DecisionRecord
	for rows.Next() {
		var d DecisionRecord
		if err := rows.Scan(&d.RunID, &d.Domain, &d.CountBefore, &d.CountAfter, &d.Trail, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}
