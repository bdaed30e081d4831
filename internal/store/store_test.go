package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kiklet/internal/wav"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func writeTestWav(t *testing.T, dir, name string, frames int) {
	t.Helper()
	w, err := wav.NewWriter(filepath.Join(dir, name), 16000, 1)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for i := 0; i < frames; i++ {
		if err := w.WriteSample(int16(i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestAddListGet(t *testing.T) {
	s, _ := openTestStore(t)

	older := Entry{Filename: "2026-08-01_10-00-00.wav", CreatedAt: "2026-08-01T10:00:00Z", DurationSec: 1.5, SizeBytes: 48044}
	newer := Entry{Filename: "2026-08-02_10-00-00.wav", CreatedAt: "2026-08-02T10:00:00Z", DurationSec: 3, SizeBytes: 96044}
	if err := s.Add(older); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(newer); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(got))
	}
	if got[0].Filename != newer.Filename {
		t.Errorf("List[0] = %s, want newest first", got[0].Filename)
	}

	e, err := s.Get("2026-08-01_10-00-00")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.DurationSec != 1.5 || e.SizeBytes != 48044 {
		t.Errorf("Get returned %+v", e)
	}

	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nope) err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesFileAndRow(t *testing.T) {
	s, dir := openTestStore(t)
	writeTestWav(t, dir, "2026-08-01_10-00-00.wav", 10)
	if err := s.Add(Entry{Filename: "2026-08-01_10-00-00.wav", CreatedAt: "2026-08-01T10:00:00Z"}); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(dir, "2026-08-01_10-00-00.wav"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "2026-08-01_10-00-00.wav")); !os.IsNotExist(err) {
		t.Error("file still exists after Delete")
	}
	if _, err := s.Get("2026-08-01_10-00-00"); !errors.Is(err, ErrNotFound) {
		t.Error("row still exists after Delete")
	}
}

func TestDeleteRefusesEscapingPaths(t *testing.T) {
	s, dir := openTestStore(t)
	for _, name := range []string{"../outside.wav", "../../etc/passwd", "..", "", "sub/take.wav", "notes.txt"} {
		if err := s.Delete(dir, name); err == nil {
			t.Errorf("Delete(%q) should be refused", name)
		}
	}
}

func TestPurgeOlderThan(t *testing.T) {
	s, dir := openTestStore(t)

	old := time.Now().UTC().AddDate(0, 0, -45)
	fresh := time.Now().UTC()
	oldName := old.Local().Format(stemLayout) + ".wav"
	freshName := fresh.Local().Format(stemLayout) + ".wav"
	writeTestWav(t, dir, oldName, 10)
	writeTestWav(t, dir, freshName, 10)

	if err := s.Add(Entry{Filename: oldName, CreatedAt: old.Format(createdAtLayout)}); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(Entry{Filename: freshName, CreatedAt: fresh.Format(createdAtLayout)}); err != nil {
		t.Fatal(err)
	}
	// Unparseable created_at must survive a purge.
	if err := s.Add(Entry{Filename: "mystery.wav", CreatedAt: "sometime"}); err != nil {
		t.Fatal(err)
	}

	deleted, kept, err := s.PurgeOlderThan(dir, 30)
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if deleted != 1 || kept != 2 {
		t.Fatalf("deleted=%d kept=%d, want 1/2", deleted, kept)
	}
	if _, err := os.Stat(filepath.Join(dir, oldName)); !os.IsNotExist(err) {
		t.Error("old recording file survived purge")
	}
	if _, err := os.Stat(filepath.Join(dir, freshName)); err != nil {
		t.Error("fresh recording file was purged")
	}
}

func TestClearAll(t *testing.T) {
	s, dir := openTestStore(t)
	writeTestWav(t, dir, "2026-08-01_10-00-00.wav", 5)
	if err := s.Add(Entry{Filename: "2026-08-01_10-00-00.wav", CreatedAt: "2026-08-01T10:00:00Z"}); err != nil {
		t.Fatal(err)
	}
	// Row whose file is already gone still clears without being a failure.
	if err := s.Add(Entry{Filename: "2026-08-02_10-00-00.wav", CreatedAt: "2026-08-02T10:00:00Z"}); err != nil {
		t.Fatal(err)
	}

	report, err := s.ClearAll(dir)
	if err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if report.Deleted != 2 || len(report.FailedDeletes) != 0 {
		t.Fatalf("report = %+v", report)
	}
	got, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("index not empty after ClearAll: %d entries", len(got))
	}
}

func TestRebuildFromScan(t *testing.T) {
	s, dir := openTestStore(t)
	writeTestWav(t, dir, "2026-08-01_10-00-00.wav", 16000)
	writeTestWav(t, dir, "2026-08-02_10-00-00.wav", 32000)
	if err := os.WriteFile(filepath.Join(dir, "not-audio.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "corrupt.wav"), []byte("RIFFjunk"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Rebuild(dir)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Rebuild found %d entries, want 2", len(entries))
	}
	if entries[0].Filename != "2026-08-02_10-00-00.wav" {
		t.Errorf("Rebuild[0] = %s, want newest first", entries[0].Filename)
	}
	if d := entries[0].DurationSec; d < 1.999 || d > 2.001 {
		t.Errorf("DurationSec = %v, want ~2.0", d)
	}
	if entries[0].ID != "2026-08-02_10-00-00" {
		t.Errorf("ID = %s", entries[0].ID)
	}

	listed, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 {
		t.Fatalf("List after Rebuild returned %d entries", len(listed))
	}
}

func TestStemToCreatedAt(t *testing.T) {
	local := time.Date(2026, 8, 1, 10, 30, 0, 0, time.Local)
	got := stemToCreatedAt(local.Format(stemLayout))
	want := local.UTC().Format(createdAtLayout)
	if got != want {
		t.Errorf("stemToCreatedAt = %q, want %q", got, want)
	}
	if got := stemToCreatedAt("2026-08-01_10-30-99"); got != "2026-08-01T10:30:99" {
		t.Errorf("unparseable stem splice = %q", got)
	}
	if got := stemToCreatedAt("freeform"); got != "freeform" {
		t.Errorf("stem without separator = %q", got)
	}
}
