// Package store persists the message traffic of a run to SQLite so a
// finished or crashed run can be inspected after the fact.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"hive/agent"
)

// Ledger records every task hand-off and result report of a run
type Ledger struct {
	db *sql.DB
}

// NewLedger opens (or creates) the ledger database at dbPath
func NewLedger(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return l, nil
}

// Close closes the database connection
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT NOT NULL,
		message_type TEXT NOT NULL,
		task_id TEXT,
		body TEXT NOT NULL,
		sender TEXT NOT NULL,
		recipient TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		prompt TEXT NOT NULL,
		final_result TEXT,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_messages_task ON messages(task_id);
	CREATE INDEX IF NOT EXISTS idx_messages_type ON messages(message_type);
	`
	_, err := l.db.Exec(schema)
	return err
}

// BeginRun records the user's initial prompt and returns the run ID
func (l *Ledger) BeginRun(prompt string) (int64, error) {
	res, err := l.db.Exec(`INSERT INTO runs (prompt) VALUES (?)`, prompt)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun stores the final result of a run
func (l *Ledger) FinishRun(runID int64, finalResult string) error {
	_, err := l.db.Exec(
		`UPDATE runs SET final_result = ?, finished_at = ? WHERE id = ?`,
		finalResult, time.Now(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RecordTask appends a delegation message
func (l *Ledger) RecordTask(msg *agent.TaskMessage) error {
	_, err := l.db.Exec(
		`INSERT INTO messages (message_id, message_type, task_id, body, sender, recipient) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.MessageID, string(agent.MessageDelegation), msg.TaskID, msg.TaskString, msg.Sender, msg.Recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to record task message: %w", err)
	}
	return nil
}

// RecordResult appends a result message
func (l *Ledger) RecordResult(msg *agent.ResultMessage) error {
	_, err := l.db.Exec(
		`INSERT INTO messages (message_id, message_type, task_id, body, sender, recipient) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.MessageID, string(agent.MessageResult), msg.Task.TaskID, msg.Result, msg.Sender, msg.Recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to record result message: %w", err)
	}
	return nil
}

// Record is one persisted message row
type Record struct {
	ID          int64
	MessageID   string
	MessageType agent.MessageType
	TaskID      string
	Body        string
	Sender      string
	Recipient   string
	CreatedAt   time.Time
}

// Messages lists persisted messages in arrival order, optionally filtered
// by task ID (empty matches all)
func (l *Ledger) Messages(taskID string) ([]Record, error) {
	query := `SELECT id, message_id, message_type, COALESCE(task_id, ''), body, sender, recipient, created_at FROM messages`
	var args []any
	if taskID != "" {
		query += ` WHERE task_id = ?`
		args = append(args, taskID)
	}
	query += ` ORDER BY id ASC`

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var mtype string
		if err := rows.Scan(&r.ID, &r.MessageID, &mtype, &r.TaskID, &r.Body, &r.Sender, &r.Recipient, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.MessageType = agent.MessageType(mtype)
		records = append(records, r)
	}
	return records, rows.Err()
}
