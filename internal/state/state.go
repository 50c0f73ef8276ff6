// Package state remembers what the export CLI last produced for each
// payload file, so repeated runs skip inputs whose content has not changed
// and can report where the previous outputs went.
package state

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Record is one completed export run for a payload file: the input's
// identity (size + content hash) and the outputs it produced.
type Record struct {
	Path       string
	Size       int64
	Hash       string
	CSVPath    string
	XLSXPath   string
	Sheet      string
	ExportedAt string
}

// DB is the local SQLite database behind the skip-unchanged logic.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the state database at dir/state.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS exports (
		payload_path TEXT PRIMARY KEY,
		payload_size INTEGER NOT NULL,
		payload_hash TEXT NOT NULL,
		csv_path     TEXT NOT NULL,
		xlsx_path    TEXT NOT NULL,
		sheet        TEXT NOT NULL,
		exported_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating exports table: %w", err)
	}

	return &DB{db: db}, nil
}

// Lookup returns the last export record for a payload path, or nil when
// the path has never been exported.
func (s *DB) Lookup(path string) (*Record, error) {
	var rec Record
	err := s.db.QueryRow(
		`SELECT payload_path, payload_size, payload_hash, csv_path, xlsx_path, sheet, exported_at
		 FROM exports WHERE payload_path = ?`, path,
	).Scan(&rec.Path, &rec.Size, &rec.Hash, &rec.CSVPath, &rec.XLSXPath, &rec.Sheet, &rec.ExportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up export for %s: %w", path, err)
	}
	return &rec, nil
}

// IsCurrent reports whether the payload was already exported with the same
// size and content hash. A changed input looks unexported again.
func (s *DB) IsCurrent(path string, size int64, hash string) (bool, error) {
	rec, err := s.Lookup(path)
	if err != nil || rec == nil {
		return false, err
	}
	return rec.Size == size && rec.Hash == hash, nil
}

// Save stores the outcome of an export run, replacing any previous record
// for the same payload path.
func (s *DB) Save(rec Record) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO exports
		 (payload_path, payload_size, payload_hash, csv_path, xlsx_path, sheet)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Path, rec.Size, rec.Hash, rec.CSVPath, rec.XLSXPath, rec.Sheet,
	)
	if err != nil {
		return fmt.Errorf("saving export record for %s: %w", rec.Path, err)
	}
	return nil
}

// Close closes the state database.
func (s *DB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
