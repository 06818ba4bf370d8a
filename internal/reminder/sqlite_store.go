package reminder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore provides SQLite-backed storage for reminders.
//
// The database file is not touched until first use, and a file that cannot
// be opened as a database only fails the call that needed it.
type SQLiteStore struct {
	path string
	db   *sql.DB

	mu    sync.Mutex
	ready bool
}

// NewSQLiteStore prepares a store for the SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("store path is empty")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Several worker processes may write at once; serialize within a process
	// and let SQLite wait for the file lock across processes.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{path: dbPath, db: db}, nil
}

// ensure creates the directory, applies pragmas and the schema. A failure
// is retried on the next call.
func (s *SQLiteStore) ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if err := createTable(s.db); err != nil {
		return err
	}

	s.ready = true
	return nil
}

func createTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id          TEXT    PRIMARY KEY,
			message     TEXT    NOT NULL,
			created_at  TEXT    NOT NULL,
			target_time TEXT    NOT NULL,
			status      TEXT    NOT NULL DEFAULT 'pending',
			permanent   INTEGER NOT NULL DEFAULT 0,
			mute        INTEGER NOT NULL DEFAULT 0,
			repeat      INTEGER NOT NULL DEFAULT 1,
			executed_at TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns every stored reminder. Query failures are logged and yield
// an empty collection.
func (s *SQLiteStore) Load() ([]Record, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err := s.ensure(); err != nil {
		log.Printf("[store] Ignoring unreadable database %s: %v", s.path, err)
		return []Record{}, nil
	}

	rows, err := s.db.Query(`
		SELECT id, message, created_at, target_time, status, permanent, mute, repeat, executed_at
		FROM reminders ORDER BY rowid ASC
	`)
	if err != nil {
		log.Printf("[store] Ignoring unreadable database: %v", err)
		return []Record{}, nil
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		log.Printf("[store] Ignoring corrupt database: %v", err)
		return []Record{}, nil
	}
	return records, nil
}

// Save replaces all rows inside a single transaction.
func (s *SQLiteStore) Save(records []Record) error {
	if err := s.ensure(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reminders`); err != nil {
		return fmt.Errorf("failed to clear reminders: %w", err)
	}
	for _, r := range records {
		if err := insertRecord(tx, r); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminders: %w", err)
	}
	return nil
}

// Add inserts a new reminder.
func (s *SQLiteStore) Add(r Record) error {
	if err := s.ensure(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM reminders WHERE id = ?`, r.ID).Scan(&n); err != nil {
		return fmt.Errorf("failed to check reminder id: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
	}
	if err := insertRecord(tx, r); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminder: %w", err)
	}
	return nil
}

// UpdateStatus sets status and executed_at for one reminder. A done
// reminder keeps its status.
func (s *SQLiteStore) UpdateStatus(id string, status Status, executedAt time.Time) error {
	if err := s.ensure(); err != nil {
		return err
	}
	result, err := s.db.Exec(`
		UPDATE reminders
		SET status = CASE WHEN status = ? THEN status ELSE ? END, executed_at = ?
		WHERE id = ?
	`, string(StatusDone), string(status), formatTime(executedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func insertRecord(tx *sql.Tx, r Record) error {
	var executedAt sql.NullString
	if r.ExecutedAt != nil {
		executedAt = sql.NullString{String: formatTime(*r.ExecutedAt), Valid: true}
	}
	_, err := tx.Exec(`
		INSERT INTO reminders (id, message, created_at, target_time, status, permanent, mute, repeat, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Message, formatTime(r.CreatedAt), formatTime(r.TargetTime),
		string(r.Status), r.Permanent, r.Mute, r.Repeat, executedAt)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

// scanRecords reads multiple rows into a slice of Record.
func scanRecords(rows *sql.Rows) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		var r Record
		var createdAt, targetTime, status string
		var executedAt sql.NullString

		if err := rows.Scan(&r.ID, &r.Message, &createdAt, &targetTime, &status,
			&r.Permanent, &r.Mute, &r.Repeat, &executedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}

		r.Status = Status(status)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		r.TargetTime, _ = time.Parse(time.RFC3339Nano, targetTime)
		if executedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, executedAt.String)
			if err == nil {
				r.ExecutedAt = &t
			}
		}

		records = append(records, r)
	}
	return records, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
