// Package store keeps the encoded downloads of recent uploads in an
// in-memory SQLite database. Nothing is written to disk.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned for an unknown upload or file.
var ErrNotFound = errors.New("download not found")

// File is one downloadable artifact of an upload. Key is unique per upload;
// Filename is what the browser saves it as and may repeat.
type File struct {
	Key         string
	Filename    string
	ContentType string
	Data        []byte
}

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
    upload_id    TEXT    NOT NULL,
    file_key     TEXT    NOT NULL,
    file_name    TEXT    NOT NULL,
    content_type TEXT    NOT NULL,
    data         BLOB    NOT NULL,
    created_at   INTEGER NOT NULL,
    PRIMARY KEY (upload_id, file_key)
)`

var dbSeq atomic.Int64

// Store holds downloads for TTL after their upload.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open creates a private in-memory database. ttl <= 0 keeps entries forever.
func Open(ttl time.Duration) (*Store, error) {
	dsn := fmt.Sprintf("file:downloads%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open download store: %w", err)
	}
	// the memory database lives as long as its one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create download schema: %w", err)
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close releases the database; all downloads are gone afterwards.
func (s *Store) Close() error { return s.db.Close() }

// Put stores all files of one upload under a new id and returns it.
func (s *Store) Put(files []File) (string, error) {
	id := uuid.NewString()
	now := s.now()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if s.ttl > 0 {
		if _, err := tx.Exec(`DELETE FROM downloads WHERE created_at < ?`, now.Add(-s.ttl).UnixNano()); err != nil {
			return "", fmt.Errorf("purge expired downloads: %w", err)
		}
	}

	const q = `
        INSERT INTO downloads (upload_id, file_key, file_name, content_type, data, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	for _, f := range files {
		if _, err := tx.Exec(q, id, f.Key, f.Filename, f.ContentType, f.Data, now.UnixNano()); err != nil {
			return "", fmt.Errorf("store %q: %w", f.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns one stored file.
func (s *Store) Get(uploadID, key string) (File, error) {
	const q = `
        SELECT file_name, content_type, data, created_at
          FROM downloads
         WHERE upload_id = ? AND file_key = ?
         LIMIT 1`
	f := File{Key: key}
	var created int64
	err := s.db.QueryRow(q, uploadID, key).Scan(&f.Filename, &f.ContentType, &f.Data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return File{}, ErrNotFound
	}
	if err != nil {
		return File{}, err
	}
	if s.ttl > 0 && s.now().Sub(time.Unix(0, created)) > s.ttl {
		return File{}, ErrNotFound
	}
	return f, nil
}

// List returns the live file keys of one upload in insertion order.
func (s *Store) List(uploadID string) ([]string, error) {
	var since int64
	if s.ttl > 0 {
		since = s.now().Add(-s.ttl).UnixNano()
	}
	const q = `
        SELECT file_key
          FROM downloads
         WHERE upload_id = ? AND created_at >= ?
         ORDER BY rowid`
	rows, err := s.db.Query(q, uploadID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
