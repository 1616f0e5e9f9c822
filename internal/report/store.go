package report

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"k4solve/internal/trial"
)

// Store persists trial outcomes to SQLite so batches can be queried and
// re-aggregated after the run.
type Store struct {
	db     *sql.DB
	dbPath string
	runID  string
}

// NewStore creates or opens the trial database and registers the run.
func NewStore(path, runID string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: path, runID: runID}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trials (
		run_id TEXT NOT NULL,
		trial_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		idx INTEGER NOT NULL,
		original TEXT,
		mutant TEXT,
		params TEXT,
		feasible INTEGER NOT NULL,
		reason TEXT NOT NULL,
		detail TEXT,
		plaintext_sha256 TEXT,
		elapsed_ms INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (run_id, trial_id)
	);
	CREATE INDEX IF NOT EXISTS idx_trials_run ON trials(run_id);
	CREATE INDEX IF NOT EXISTS idx_trials_reason ON trials(reason);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Write inserts one outcome row. Implements trial.Sink.
func (s *Store) Write(o trial.Outcome) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO trials
		(run_id, trial_id, kind, idx, original, mutant, params, feasible, reason, detail, plaintext_sha256, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, o.TrialID, string(o.Kind), o.Index, o.Original, o.Mutant, o.Params,
		o.Feasible, o.Reason.String(), o.Detail, o.Digest, o.Elapsed.Milliseconds(),
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert trial %s: %w", o.TrialID, err)
	}
	return nil
}

// CountByReason re-aggregates a run's failure reasons from the database.
func (s *Store) CountByReason(runID string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT reason, COUNT(*) FROM trials WHERE run_id = ? GROUP BY reason`, runID)
	if err != nil {
		return nil, fmt.Errorf("query reasons: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, err
		}
		out[reason] = n
	}
	return out, rows.Err()
}

// FeasibleCount returns how many trials of a run passed.
func (s *Store) FeasibleCount(runID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM trials WHERE run_id = ? AND feasible = 1`, runID).Scan(&n)
	return n, err
}
