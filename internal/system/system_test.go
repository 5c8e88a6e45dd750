package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFindLatestDeck(t *testing.T) {
	dir := t.TempDir()
	files := []string{"old.yaml", "newest.yml", "middle.yaml", "notes.txt"}
	for i, name := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("slides: []\n"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		if name == "newest.yml" {
			modTime = time.Now().Add(24 * time.Hour)
		}
		os.Chtimes(path, modTime, modTime)
	}

	latest, err := FindLatestDeck(dir)
	if err != nil {
		t.Fatalf("FindLatestDeck failed: %v", err)
	}
	if filepath.Base(latest) != "newest.yml" {
		t.Errorf("Expected newest.yml, got %s", latest)
	}
	t.Logf("Latest deck: %s", latest)
}

func TestFindLatestDeckEmpty(t *testing.T) {
	if _, err := FindLatestDeck(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without decks")
	}
	if _, err := FindLatestDeck(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}

func TestListDecks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.YAML", "c.json"} {
		os.WriteFile(filepath.Join(dir, name), nil, 0644)
	}
	os.Mkdir(filepath.Join(dir, "d.yaml"), 0755)

	decks, err := ListDecks(dir)
	if err != nil {
		t.Fatalf("ListDecks failed: %v", err)
	}
	want := []string{filepath.Join(dir, "a.YAML"), filepath.Join(dir, "b.yaml")}
	if diff := cmp.Diff(want, decks); diff != "" {
		t.Errorf("Decks mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessStats(t *testing.T) {
	st, err := ProcessStats()
	if err != nil {
		t.Skipf("process stats unavailable: %v", err)
	}
	if st.RSS == 0 {
		t.Error("Expected non-zero RSS")
	}

	report := Report{Build: "test", Decks: 2, Slides: 10, Total: time.Second, Resource: st}.String()
	if !strings.Contains(report, "Generated slides: 10") {
		t.Errorf("Unexpected report:\n%s", report)
	}
	t.Logf("\n%s", report)
}
