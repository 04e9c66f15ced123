package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const fileName = "reports.jsonl"

// Store persists reports as one JSON object per line in an append-only
// file. Appends rely on O_APPEND single-write atomicity; there is no
// in-process locking.
type Store struct {
	path string
}

// Open returns a store rooted at dataDir. The directory and file are
// created lazily on first append.
func Open(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, fileName)}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Append writes one report as a JSONL line.
func (s *Store) Append(r Report) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending report: %w", err)
	}
	return nil
}

// List returns up to limit reports, newest first. A missing file means
// no reports yet. Lines that fail to parse are skipped with a warning.
func (s *Store) List(limit int) ([]Report, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	var reports []Report
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Report
		if err := json.Unmarshal(line, &r); err != nil {
			slog.Warn("skipping malformed report line", "error", err)
			continue
		}
		reports = append(reports, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
		reports[i], reports[j] = reports[j], reports[i]
	}
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}
