package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"kiklet/internal/wav"
)

const (
	stemLayout      = "2006-01-02_15-04-05"
	createdAtLayout = "2006-01-02T15:04:05Z"
)

// ErrNotFound is returned when a recording is not in the index.
var ErrNotFound = errors.New("recording not found")

// Add inserts or replaces one entry. The ID is derived from the filename
// stem when empty.
func (s *Store) Add(e Entry) error {
	if e.ID == "" {
		e.ID = strings.TrimSuffix(e.Filename, ".wav")
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO recordings (id, filename, created_at, duration_sec, size_bytes)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Filename, e.CreatedAt, e.DurationSec, e.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("add recording %s: %w", e.Filename, err)
	}
	return nil
}

// List returns all entries, newest first. Timestamp stems sort
// lexicographically, so ordering by filename is ordering by time.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, filename, created_at, duration_sec, size_bytes
		FROM recordings ORDER BY filename DESC`)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Filename, &e.CreatedAt, &e.DurationSec, &e.SizeBytes); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get looks up one entry by ID.
func (s *Store) Get(id string) (Entry, error) {
	var e Entry
	err := s.db.QueryRow(`
		SELECT id, filename, created_at, duration_sec, size_bytes
		FROM recordings WHERE id = ?`, id,
	).Scan(&e.ID, &e.Filename, &e.CreatedAt, &e.DurationSec, &e.SizeBytes)
	if err == sql.ErrNoRows {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get recording %s: %w", id, err)
	}
	return e, nil
}

// Delete removes a recording's file and index row. The filename must
// resolve to a path inside recordingsDir; anything else is refused.
func (s *Store) Delete(recordingsDir, filename string) error {
	path, err := containedPath(recordingsDir, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete recording file: %w", err)
	}
	id := strings.TrimSuffix(filename, ".wav")
	if _, err := s.db.Exec("DELETE FROM recordings WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete recording row: %w", err)
	}
	return nil
}

// PurgeOlderThan deletes recordings created more than days days ago,
// returning how many were deleted and how many kept. Entries whose
// created_at cannot be parsed are kept.
func (s *Store) PurgeOlderThan(recordingsDir string, days int) (deleted, kept int, err error) {
	entries, err := s.List()
	if err != nil {
		return 0, 0, err
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	for _, e := range entries {
		created, perr := time.Parse(createdAtLayout, e.CreatedAt)
		if perr != nil || !created.Before(cutoff) {
			kept++
			continue
		}
		if derr := s.Delete(recordingsDir, e.Filename); derr != nil {
			slog.Warn("purge: could not delete recording", "filename", e.Filename, "error", derr)
			kept++
			continue
		}
		deleted++
	}
	return deleted, kept, nil
}

// ClearReport summarizes a ClearAll run.
type ClearReport struct {
	Deleted       int      `json:"deleted_count"`
	FailedDeletes []string `json:"failed_deletes,omitempty"`
}

// ClearAll removes every indexed recording and its file. File deletions
// that fail are reported; their rows are removed regardless so the index
// never references unreachable files.
func (s *Store) ClearAll(recordingsDir string) (ClearReport, error) {
	entries, err := s.List()
	if err != nil {
		return ClearReport{}, err
	}
	var report ClearReport
	for _, e := range entries {
		path, perr := containedPath(recordingsDir, e.Filename)
		if perr == nil {
			perr = os.Remove(path)
			if os.IsNotExist(perr) {
				perr = nil
			}
		}
		if perr != nil {
			report.FailedDeletes = append(report.FailedDeletes, e.Filename)
		} else {
			report.Deleted++
		}
	}
	if _, err := s.db.Exec("DELETE FROM recordings"); err != nil {
		return report, fmt.Errorf("clear index: %w", err)
	}
	return report, nil
}

// Rebuild replaces the index with what is actually on disk: every .wav in
// recordingsDir, duration read from its header, created_at recovered from
// the filename stem.
func (s *Store) Rebuild(recordingsDir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(recordingsDir)
	if err != nil {
		return nil, fmt.Errorf("scan recordings dir: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".wav") {
			continue
		}
		path := filepath.Join(recordingsDir, de.Name())
		st, err := os.Stat(path)
		if err != nil {
			continue
		}
		info, err := wav.ReadInfo(path)
		if err != nil {
			slog.Warn("rebuild: skipping unreadable wav", "filename", de.Name(), "error", err)
			continue
		}
		stem := strings.TrimSuffix(de.Name(), ".wav")
		entries = append(entries, Entry{
			ID:          stem,
			Filename:    de.Name(),
			CreatedAt:   stemToCreatedAt(stem),
			DurationSec: info.Duration(),
			SizeBytes:   st.Size(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Filename > entries[j].Filename })

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec("DELETE FROM recordings"); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("rebuild: clear index: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.Exec(`
			INSERT INTO recordings (id, filename, created_at, duration_sec, size_bytes)
			VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Filename, e.CreatedAt, e.DurationSec, e.SizeBytes,
		); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("rebuild: insert %s: %w", e.Filename, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entries, nil
}

// stemToCreatedAt recovers the UTC creation timestamp from a local-time
// filename stem. A stem that does not parse is spliced into timestamp
// shape as a best effort.
func stemToCreatedAt(stem string) string {
	if t, err := time.ParseInLocation(stemLayout, stem, time.Local); err == nil {
		return t.UTC().Format(createdAtLayout)
	}
	d, tm, ok := strings.Cut(stem, "_")
	if !ok {
		return stem
	}
	return d + "T" + strings.ReplaceAll(tm, "-", ":")
}

// containedPath resolves filename inside dir. Only plain .wav basenames are
// accepted; an empty name would resolve to the directory itself and a path
// with separators could escape it.
func containedPath(dir, filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || !strings.HasSuffix(filename, ".wav") {
		return "", fmt.Errorf("refusing to touch %q: not a plain recording filename", filename)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(absDir, filename), nil
}
