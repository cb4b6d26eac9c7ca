package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	db         *sql.DB
	dbMu       sync.Mutex
	dbPath     string
	configured bool
)

// Entry is one completed download.
type Entry struct {
	ID          string
	Title       string
	Location    string
	SizeBytes   int64
	CompletedAt time.Time
}

// Configure sets the path for the SQLite database
func Configure(path string) {
	dbMu.Lock()
	defer dbMu.Unlock()
	dbPath = path
	configured = true
}

func initDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if db != nil {
		return nil
	}

	if !configured || dbPath == "" {
		return fmt.Errorf("history database not configured: call history.Configure() first")
	}

	var err error
	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS completed (
		id TEXT PRIMARY KEY,
		title TEXT,
		location TEXT,
		size_bytes INTEGER,
		completed_at INTEGER
	);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// CloseDB closes the database connection
func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db != nil {
		db.Close()
		db = nil
	}
}

func getDB() (*sql.DB, error) {
	if db == nil {
		if err := initDB(); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Record stores a completed download. Re-recording the same remote id (the
// worker may replay a finish notification after a reconnect) overwrites the
// previous row rather than duplicating it.
func Record(e Entry) error {
	d, err := getDB()
	if err != nil {
		return err
	}

	if e.CompletedAt.IsZero() {
		e.CompletedAt = time.Now()
	}

	_, err = d.Exec(
		`INSERT OR REPLACE INTO completed (id, title, location, size_bytes, completed_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Location, e.SizeBytes, e.CompletedAt.Unix(),
	)
	return err
}

// Recent returns the most recently completed downloads, newest first.
func Recent(limit int) ([]Entry, error) {
	d, err := getDB()
	if err != nil {
		return nil, err
	}

	rows, err := d.Query(
		`SELECT id, title, location, size_bytes, completed_at FROM completed ORDER BY completed_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &e.Title, &e.Location, &e.SizeBytes, &ts); err != nil {
			return nil, err
		}
		e.CompletedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
