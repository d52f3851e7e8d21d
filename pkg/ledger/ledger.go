// Package ledger records pipeline runs and per-connector publish
// outcomes in a local SQLite database, so reruns can be audited without
// digging through logs.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mkarl/bloggen/internal/models"
)

const dbFile = "bloggen.db"

// Ledger manages the run history SQLite database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database under dir, creating the
// schema if it does not exist.
func Open(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}

	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			connector TEXT NOT NULL,
			status TEXT NOT NULL,
			file_path TEXT,
			cms_status_code INTEGER,
			error TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_run_id ON posts(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_connector ON posts(connector)`,
	}

	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a new run row and returns its ID.
func (l *Ledger) BeginRun() (string, error) {
	id := uuid.NewString()
	_, err := l.db.Exec(
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("recording run start: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's finish time.
func (l *Ledger) FinishRun(runID string) error {
	_, err := l.db.Exec(
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), runID,
	)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// RecordPost appends one connector's outcome to the run.
func (l *Ledger) RecordPost(rec models.PostRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := l.db.Exec(
		`INSERT INTO posts (run_id, connector, status, file_path, cms_status_code, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Connector, rec.Status, rec.FilePath, rec.CMSStatusCode, rec.Error,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording post outcome: %w", err)
	}
	return nil
}

// History returns the recorded outcomes for one run, in insertion order.
func (l *Ledger) History(runID string) ([]models.PostRecord, error) {
	rows, err := l.db.Query(
		`SELECT run_id, connector, status, file_path, cms_status_code, error, created_at
		 FROM posts WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var records []models.PostRecord
	for rows.Next() {
		var rec models.PostRecord
		var createdAt string
		if err := rows.Scan(&rec.RunID, &rec.Connector, &rec.Status, &rec.FilePath,
			&rec.CMSStatusCode, &rec.Error, &createdAt); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
