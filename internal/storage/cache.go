package storage

import (
	"database/sql"
	"encoding/json"
	"time"
)

var cacheTables = []string{"file_history_cache", "co_change_cache"}

// GetFileHistory reads a cached file-history payload into dest. The second
// return value reports a hit.
func (db *DB) GetFileHistory(filePath, head string, maxAge time.Duration, dest interface{}) (bool, error) {
	return db.get("file_history_cache", filePath, head, maxAge, dest)
}

// PutFileHistory stores a file-history payload
func (db *DB) PutFileHistory(filePath, head string, payload interface{}) error {
	return db.put("file_history_cache", filePath, head, payload)
}

// GetCoChanges reads a cached co-change payload into dest
func (db *DB) GetCoChanges(filePath, head string, maxAge time.Duration, dest interface{}) (bool, error) {
	return db.get("co_change_cache", filePath, head, maxAge, dest)
}

// PutCoChanges stores a co-change payload
func (db *DB) PutCoChanges(filePath, head string, payload interface{}) error {
	return db.put("co_change_cache", filePath, head, payload)
}

func (db *DB) get(table, filePath, head string, maxAge time.Duration, dest interface{}) (bool, error) {
	var payload string
	var recordedAt int64
	err := db.conn.QueryRow(
		`SELECT payload, recorded_at FROM `+table+` WHERE file_path = ? AND head_commit = ?`,
		filePath, head,
	).Scan(&payload, &recordedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if maxAge > 0 && time.Since(time.Unix(recordedAt, 0)) > maxAge {
		return false, nil
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		// A corrupt cache row behaves like a miss; the next put repairs it.
		db.logger.Warn("discarding corrupt cache row", map[string]interface{}{
			"table": table,
			"file":  filePath,
		})
		return false, nil
	}
	return true, nil
}

func (db *DB) put(table, filePath, head string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO `+table+` (file_path, head_commit, payload, recorded_at) VALUES (?, ?, ?, ?)`,
		filePath, head, string(data), time.Now().Unix(),
	)
	return err
}

// Cleanup removes cache rows older than the retention period and returns
// the number of rows deleted.
func (db *DB) Cleanup(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).Unix()
	var total int64
	for _, table := range cacheTables {
		res, err := db.conn.Exec(`DELETE FROM `+table+` WHERE recorded_at < ?`, cutoff)
		if err != nil {
			return total, err
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}
