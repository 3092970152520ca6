package kv

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is the durable Store backed by an embedded SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens or creates the database at dbPath.
// An empty dbPath defaults to $TMPDIR/cs2-backend/data.db.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "cs2-backend", "data.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv_value (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS kv_hash (
			key   TEXT NOT NULL,
			field TEXT NOT NULL,
			value BLOB NOT NULL,
			PRIMARY KEY (key, field)
		)`,
		`CREATE TABLE IF NOT EXISTS kv_set (
			key    TEXT NOT NULL,
			member TEXT NOT NULL,
			PRIMARY KEY (key, member)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Set(key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO kv_value (key, value, expires_at)
		VALUES (?,?,?)`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Get returns the value under key. Expired rows are deleted lazily and
// reported as ErrNotFound.
func (s *SQLite) Get(key string) ([]byte, error) {
	row := s.db.QueryRow(`SELECT value, expires_at FROM kv_value WHERE key = ?`, key)
	var value []byte
	var expiresAt int64
	err := row.Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if expiresAt > 0 && time.Now().UnixNano() > expiresAt {
		if _, err := s.db.Exec(`DELETE FROM kv_value WHERE key = ?`, key); err != nil {
			return nil, fmt.Errorf("failed to expire %s: %w", key, err)
		}
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *SQLite) HSet(key, field string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO kv_hash (key, field, value)
		VALUES (?,?,?)`,
		key, field, value,
	)
	if err != nil {
		return fmt.Errorf("failed to hset %s/%s: %w", key, field, err)
	}
	return nil
}

func (s *SQLite) HGet(key, field string) ([]byte, error) {
	row := s.db.QueryRow(`SELECT value FROM kv_hash WHERE key = ? AND field = ?`, key, field)
	var value []byte
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hget %s/%s: %w", key, field, err)
	}
	return value, nil
}

// HDel removes a hash field. Deleting an absent field is not an error.
func (s *SQLite) HDel(key, field string) error {
	if _, err := s.db.Exec(`DELETE FROM kv_hash WHERE key = ? AND field = ?`, key, field); err != nil {
		return fmt.Errorf("failed to hdel %s/%s: %w", key, field, err)
	}
	return nil
}

func (s *SQLite) HGetAll(key string) (map[string][]byte, error) {
	rows, err := s.db.Query(`SELECT field, value FROM kv_hash WHERE key = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to hgetall %s: %w", key, err)
	}
	defer rows.Close()
	fields := make(map[string][]byte)
	for rows.Next() {
		var field string
		var value []byte
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("failed to scan hash field: %w", err)
		}
		fields[field] = value
	}
	return fields, rows.Err()
}

func (s *SQLite) SAdd(key, member string) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO kv_set (key, member) VALUES (?,?)`,
		key, member,
	)
	if err != nil {
		return fmt.Errorf("failed to sadd %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) SIsMember(key, member string) (bool, error) {
	row := s.db.QueryRow(`SELECT 1 FROM kv_set WHERE key = ? AND member = ?`, key, member)
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query set %s: %w", key, err)
	}
	return true, nil
}
