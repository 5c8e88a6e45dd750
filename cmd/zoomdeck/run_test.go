package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/zoomdeck/internal/chain"
	"github.com/ivlev/zoomdeck/internal/config"
	"github.com/ivlev/zoomdeck/internal/host"
	"github.com/ivlev/zoomdeck/internal/naming"
	"github.com/ivlev/zoomdeck/internal/storyboard"
)

const deckYAML = `
version: "1.0"
canvas: {width: 960, height: 540}
current: 1
selection: [first, second]
slides:
  - name: Title
  - name: Agenda
    shapes:
      - id: first
        name: Intro
        bounds: {left: 100, top: 100, width: 200, height: 150}
      - id: second
        name: Outro
        bounds: {left: 500, top: 300, width: 300, height: 100}
  - name: Closing
`

func writeDeck(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(deckYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testJob(outDir string) jobOptions {
	return jobOptions{
		Slide:  -1,
		Mode:   chain.MultiSlide,
		OutDir: outDir,
		Config: config.Default(),
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestProcessDeck(t *testing.T) {
	dir := t.TempDir()
	path := writeDeck(t, dir, "talk.yaml")

	job := testJob(dir)
	job.Out = filepath.Join(dir, "out.yaml")
	job.Storyboard = "auto"

	res := processDeck(context.Background(), path, job)
	if res.Err != nil {
		t.Fatalf("processDeck failed: %v", res.Err)
	}
	if res.Slides != 5 {
		t.Errorf("Expected 5 generated slides, got %d", res.Slides)
	}

	deck, err := host.LoadDeck(job.Out)
	if err != nil {
		t.Fatalf("LoadDeck failed: %v", err)
	}
	if deck.SlideCount() != 8 {
		t.Errorf("Expected 8 slides in output, got %d", deck.SlideCount())
	}
	name, _ := deck.SlideNameAt(1)
	if !naming.IsSynthesisRoot(name) {
		t.Errorf("Expected root slide at 1, got %s", name)
	}

	if res.Storyboard != filepath.Join(dir, "out_storyboard.yaml") {
		t.Errorf("Unexpected storyboard path %s", res.Storyboard)
	}
	sb, err := storyboard.Read(res.Storyboard)
	if err != nil {
		t.Fatalf("Read storyboard failed: %v", err)
	}
	if len(sb.Slides) != 5 {
		t.Errorf("Expected 5 storyboard slides, got %d", len(sb.Slides))
	}

	// Re-running on the output with the markers selected replaces the chain
	// instead of stacking a second one.
	source, _ := deck.SlideIDAt(1)
	shapes, _ := deck.Shapes(source)
	again := testJob(dir)
	again.Out = filepath.Join(dir, "again.yaml")
	for _, sh := range shapes {
		if naming.IsMarker(sh.Name) {
			again.Shapes = append(again.Shapes, string(sh.ID))
		}
	}
	res = processDeck(context.Background(), job.Out, again)
	if res.Err != nil {
		t.Fatalf("Second run failed: %v", res.Err)
	}
	if res.Removed != 5 || res.Slides != 5 {
		t.Errorf("Expected 5 removed and 5 generated, got %d and %d", res.Removed, res.Slides)
	}
	rerun, err := host.LoadDeck(again.Out)
	if err != nil {
		t.Fatalf("LoadDeck failed: %v", err)
	}
	if rerun.SlideCount() != 8 {
		t.Errorf("Expected 8 slides after rerun, got %d", rerun.SlideCount())
	}
}

func TestProcessDeckShapesFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeDeck(t, dir, "talk.yaml")

	job := testJob(dir)
	job.Slide = 1
	job.Shapes = []string{"Outro"}
	job.Mode = chain.SingleSlide

	res := processDeck(context.Background(), path, job)
	if res.Err != nil {
		t.Fatalf("processDeck failed: %v", res.Err)
	}
	if res.Slides != 1 {
		t.Errorf("Expected one single slide, got %d", res.Slides)
	}
	if filepath.Dir(res.Out) != dir || !strings.HasPrefix(filepath.Base(res.Out), "talk_") {
		t.Errorf("Unexpected output path %s", res.Out)
	}
}

func TestProcessDeckErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeDeck(t, dir, "talk.yaml")

	tests := []struct {
		name   string
		modify func(*jobOptions)
	}{
		{"bad slide", func(j *jobOptions) { j.Slide = 9 }},
		{"unknown shape", func(j *jobOptions) { j.Shapes = []string{"Nope"} }},
		{"selection off slide", func(j *jobOptions) { j.Slide = 0 }},
	}

	for _, tt := range tests {
		job := testJob(dir)
		tt.modify(&job)
		if res := processDeck(context.Background(), path, job); res.Err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	if res := processDeck(context.Background(), filepath.Join(dir, "missing.yaml"), testJob(dir)); res.Err == nil {
		t.Error("Expected error for a missing deck")
	}
}

func TestRunBatch(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	decks := []string{writeDeck(t, in, "a.yaml"), writeDeck(t, in, "b.yaml"), filepath.Join(in, "broken.yaml")}
	os.WriteFile(decks[2], []byte("canvas: {width: 0, height: 0}\n"), 0644)

	job := testJob(out)
	job.Config.Workers = 2
	job.Storyboard = filepath.Join(out, "board.yaml")

	results := runBatch(context.Background(), decks, job)
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, r := range results[:2] {
		if r.Err != nil {
			t.Errorf("Deck %d failed: %v", i, r.Err)
			continue
		}
		if r.Slides != 5 {
			t.Errorf("Deck %d: expected 5 slides, got %d", i, r.Slides)
		}
		if _, err := os.Stat(r.Storyboard); err != nil {
			t.Errorf("Deck %d: storyboard missing: %v", i, err)
		}
	}
	if results[0].Storyboard == results[1].Storyboard {
		t.Error("Batch storyboards should not share a path")
	}
	if results[2].Err == nil {
		t.Error("Expected the broken deck to fail")
	}
}

func TestRunBatchCancelled(t *testing.T) {
	in := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := runBatch(ctx, []string{writeDeck(t, in, "a.yaml")}, testJob(t.TempDir()))
	if results[0].Err == nil {
		t.Error("Expected a cancelled context to skip the deck")
	}
}

func TestDefaultOut(t *testing.T) {
	got := defaultOut("output", "decks/My Talk.yaml", time.Date(2026, 2, 13, 1, 2, 3, 0, time.UTC))
	want := filepath.Join("output", "My_Talk_2026-02-13_01-02-03.yaml")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b,,c ")
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("Unexpected split: %v", got)
	}
	if splitList("") != nil {
		t.Error("Expected nil for empty input")
	}
}
