package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// TaskRecord is one row of the task audit trail.
type TaskRecord struct {
	ID        string `json:"id"`
	Prompt    string `json:"prompt"`
	Status    string `json:"status"` // running, completed, failed
	Outcome   string `json:"outcome,omitempty"`
	CreatedAt string `json:"created_at"`
}

// TaskStore records submitted tasks and their final outcomes in sqlite.
// It is an audit log for the history API, not resumable task state: a
// process restart leaves old rows as-is and never re-runs them.
type TaskStore struct {
	DB *sql.DB
}

func NewTaskStore(dbPath string) (*TaskStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	schema := `CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		prompt TEXT,
		status TEXT,
		outcome TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME
	);`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create tasks table: %w", err)
	}

	return &TaskStore{DB: db}, nil
}

func (s *TaskStore) StartTask(id, prompt string) error {
	_, err := s.DB.Exec(
		`INSERT INTO tasks (id, prompt, status) VALUES (?, ?, 'running')`,
		id, prompt)
	return err
}

func (s *TaskStore) FinishTask(id, status, outcome string) error {
	_, err := s.DB.Exec(
		`UPDATE tasks SET status = ?, outcome = ?, finished_at = ? WHERE id = ?`,
		status, outcome, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (s *TaskStore) ListTasks(limit int) ([]TaskRecord, error) {
	rows, err := s.DB.Query(
		`SELECT id, prompt, status, COALESCE(outcome, ''), created_at
		 FROM tasks ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []TaskRecord
	for rows.Next() {
		var r TaskRecord
		if err := rows.Scan(&r.ID, &r.Prompt, &r.Status, &r.Outcome, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *TaskStore) Close() error {
	return s.DB.Close()
}
