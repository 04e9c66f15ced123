package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kalambet/postscope/internal/source"
)

func sample(note string) Report {
	return Report{
		Timestamp: "2026-08-29T10:00:00Z",
		PostURL:   "https://x.com/a/status/1",
		UserNote:  note,
		Source:    source.X,
		PostText:  "post body",
		Query:     "a query",
		Answer:    "an answer",
	}
}

func TestAppendAndList(t *testing.T) {
	s := Open(t.TempDir())

	for _, note := range []string{"first", "second", "third"} {
		if err := s.Append(sample(note)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.List(200)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d reports", len(got))
	}
	// Newest first.
	if got[0].UserNote != "third" || got[2].UserNote != "first" {
		t.Errorf("order = %q, %q, %q", got[0].UserNote, got[1].UserNote, got[2].UserNote)
	}
	if got[0].Answer != "an answer" || got[0].Source != source.X {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
}

func TestList_MissingFile(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "nope"))

	got, err := s.List(200)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestList_Limit(t *testing.T) {
	s := Open(t.TempDir())
	for i := 0; i < 5; i++ {
		if err := s.Append(sample("n")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.List(2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d reports, want 2", len(got))
	}
}

func TestList_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)
	if err := s.Append(sample("good")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.OpenFile(s.Path(), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{not json\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := s.Append(sample("after")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.List(200)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reports, want 2", len(got))
	}
	if got[0].UserNote != "after" || got[1].UserNote != "good" {
		t.Errorf("order = %q, %q", got[0].UserNote, got[1].UserNote)
	}
}

func TestAppend_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "data")
	s := Open(dir)
	if err := s.Append(sample("n")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "reports.jsonl")); err != nil {
		t.Errorf("file not created: %v", err)
	}
}
