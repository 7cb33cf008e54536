// Package storage provides the sqlite-backed cache for mined history.
// Mining shells out to git; caching keyed by (path, HEAD) makes repeated
// analyzer runs against an unchanged repository cheap.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"specter/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS file_history_cache (
	file_path   TEXT NOT NULL,
	head_commit TEXT NOT NULL,
	payload     TEXT NOT NULL,
	recorded_at INTEGER NOT NULL,
	PRIMARY KEY (file_path, head_commit)
);

CREATE TABLE IF NOT EXISTS co_change_cache (
	file_path   TEXT NOT NULL,
	head_commit TEXT NOT NULL,
	payload     TEXT NOT NULL,
	recorded_at INTEGER NOT NULL,
	PRIMARY KEY (file_path, head_commit)
);

CREATE INDEX IF NOT EXISTS idx_file_history_recorded ON file_history_cache(recorded_at);
CREATE INDEX IF NOT EXISTS idx_co_change_recorded ON co_change_cache(recorded_at);
`

// DB wraps the sqlite connection at .specter/history.db
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	path   string
}

// Open opens or creates the history cache database under <root>/.specter
func Open(rootDir string, logger *logging.Logger) (*DB, error) {
	dir := filepath.Join(rootDir, ".specter")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create .specter directory: %w", err)
	}

	dbPath := filepath.Join(dir, "history.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history cache: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &DB{conn: conn, logger: logger, path: dbPath}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
