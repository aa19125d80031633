package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/slateworks/dimsim/internal/shop"
)

// schemaVersion is the current progress database schema version.
const schemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS scenarios (
    seed INTEGER NOT NULL,
    difficulty TEXT NOT NULL,
    best_score INTEGER NOT NULL DEFAULT 0,
    best_percentage REAL NOT NULL DEFAULT 0,
    first_attempt TEXT,
    last_attempt TEXT,
    PRIMARY KEY (seed, difficulty)
);

CREATE TABLE IF NOT EXISTS attempts (
    attempt_id TEXT PRIMARY KEY,
    seed INTEGER NOT NULL,
    difficulty TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    schema_hash TEXT NOT NULL,
    total_score INTEGER NOT NULL,
    max_score INTEGER NOT NULL,
    percentage REAL NOT NULL,
    axis_scores TEXT NOT NULL,  -- JSON object, axis name to score
    deduction_count INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (seed, difficulty) REFERENCES scenarios(seed, difficulty) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_attempts_scenario ON attempts(seed, difficulty);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// SQLiteStore implements Store backed by a SQLite database. The path is
// always explicit; callers decide where progress lives.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore opens or creates the progress database at path,
// creating parent directories as needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create progress directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open progress database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize progress schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// initSchema creates the tables on a fresh database and applies
// migrations on an existing one.
func initSchema(ctx context.Context, db *sql.DB) error {
	current, err := currentSchemaVersion(ctx, db)
	if err != nil {
		// No schema_version table yet, create fresh schema
		return createSchema(ctx, db)
	}

	if err := validateIntegrity(ctx, db); err != nil {
		return fmt.Errorf("database integrity check failed: %w", err)
	}

	if current < schemaVersion {
		return migrateSchema(ctx, db, current)
	}
	return nil
}

func currentSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		schemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}

func migrateSchema(ctx context.Context, db *sql.DB, currentVersion int) error {
	// Only one version so far; v2 migrations go here
	_ = currentVersion
	return nil
}

// validateIntegrity runs SQLite's integrity check on an existing
// database before touching it.
func validateIntegrity(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return fmt.Errorf("failed to run integrity_check: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result string
		if err := rows.Scan(&result); err != nil {
			return fmt.Errorf("failed to scan integrity_check result: %w", err)
		}
		if result != "ok" {
			return fmt.Errorf("integrity_check failed: %s", result)
		}
	}
	return rows.Err()
}

// RecordAttempt folds an attempt into the scenario's history.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, seed uint32, difficulty shop.Difficulty, attempt AttemptRecord) (RecordStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadScenario(ctx, seed, difficulty)
	if err != nil {
		return RecordStatus{}, err
	}
	if p == nil {
		p = &ScenarioProgress{Seed: seed, Difficulty: difficulty}
	}

	status := applyAttempt(p, attempt)

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scenarios (seed, difficulty, best_score, best_percentage, first_attempt, last_attempt)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Seed, string(p.Difficulty), p.BestScore, p.BestPercentage,
		nullTime(p.FirstAttempt), nullTime(p.LastAttempt))
	if err != nil {
		return RecordStatus{}, fmt.Errorf("failed to upsert scenario: %w", err)
	}

	axesJSON, err := json.Marshal(attempt.AxisScores)
	if err != nil {
		return RecordStatus{}, fmt.Errorf("failed to marshal axis scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO attempts (attempt_id, seed, difficulty, timestamp, schema_hash,
		                      total_score, max_score, percentage, axis_scores, deduction_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, attempt.AttemptID.String(), seed, string(difficulty),
		attempt.Timestamp.UTC().Format(time.RFC3339Nano), attempt.SchemaHash,
		attempt.TotalScore, attempt.MaxScore, attempt.Percentage,
		string(axesJSON), attempt.DeductionCount)
	if err != nil {
		return RecordStatus{}, fmt.Errorf("failed to insert attempt: %w", err)
	}

	return status, nil
}

// Scenario returns the progress for one scenario, or nil when nothing
// has been recorded for it.
func (s *SQLiteStore) Scenario(ctx context.Context, seed uint32, difficulty shop.Difficulty) (*ScenarioProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadScenario(ctx, seed, difficulty)
}

// loadScenario reads one scenario row plus its attempts in insertion
// order. Caller must hold the lock.
func (s *SQLiteStore) loadScenario(ctx context.Context, seed uint32, difficulty shop.Difficulty) (*ScenarioProgress, error) {
	p := &ScenarioProgress{Seed: seed, Difficulty: difficulty}

	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT best_score, best_percentage, first_attempt, last_attempt
		FROM scenarios WHERE seed = ? AND difficulty = ?
	`, seed, string(difficulty)).Scan(&p.BestScore, &p.BestPercentage, &first, &last)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}

	if p.FirstAttempt, err = parseNullTime(first); err != nil {
		return nil, fmt.Errorf("failed to parse first attempt time: %w", err)
	}
	if p.LastAttempt, err = parseNullTime(last); err != nil {
		return nil, fmt.Errorf("failed to parse last attempt time: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT attempt_id, timestamp, schema_hash, total_score, max_score,
		       percentage, axis_scores, deduction_count
		FROM attempts WHERE seed = ? AND difficulty = ?
		ORDER BY rowid
	`, seed, string(difficulty))
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var attempt AttemptRecord
		var id, ts, axes string
		if err := rows.Scan(&id, &ts, &attempt.SchemaHash, &attempt.TotalScore,
			&attempt.MaxScore, &attempt.Percentage, &axes, &attempt.DeductionCount); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		if attempt.AttemptID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse attempt id %q: %w", id, err)
		}
		if attempt.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("failed to parse attempt timestamp %q: %w", ts, err)
		}
		if err := json.Unmarshal([]byte(axes), &attempt.AxisScores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal axis scores: %w", err)
		}
		p.Attempts = append(p.Attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempts: %w", err)
	}

	return p, nil
}

// Scenarios returns every tracked scenario ordered by seed, then
// difficulty.
func (s *SQLiteStore) Scenarios(ctx context.Context) ([]ScenarioProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT seed, difficulty FROM scenarios ORDER BY seed, difficulty
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}

	type key struct {
		seed       uint32
		difficulty string
	}
	var keys []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.seed, &k.difficulty); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan scenario key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate scenarios: %w", err)
	}
	rows.Close()

	out := make([]ScenarioProgress, 0, len(keys))
	for _, k := range keys {
		p, err := s.loadScenario(ctx, k.seed, shop.Difficulty(k.difficulty))
		if err != nil {
			return nil, err
		}
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
