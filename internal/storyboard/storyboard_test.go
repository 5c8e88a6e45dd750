package storyboard

import (
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ivlev/zoomdeck/internal/chain"
	"github.com/ivlev/zoomdeck/internal/geometry"
	"github.com/ivlev/zoomdeck/internal/host/hosttest"
	"github.com/ivlev/zoomdeck/internal/naming"
	"github.com/ivlev/zoomdeck/internal/synth"
)

var canvas = geometry.Canvas{Width: 960, Height: 540}

func synthesized(t *testing.T, mode chain.Mode) (*Storyboard, *synth.Result) {
	t.Helper()
	deck, source, sel := hosttest.NewSourceDeck(canvas,
		geometry.Rect{Left: 100, Top: 100, Width: 200, Height: 150},
		geometry.Rect{Left: 500, Top: 300, Width: 300, Height: 100},
	)
	s := synth.New(deck, synth.DefaultOptions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	res, err := s.Synthesize(source, sel, mode)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	sb, err := FromDeck(deck, res.Chain, 1.5)
	if err != nil {
		t.Fatalf("FromDeck failed: %v", err)
	}
	return sb, res
}

func TestFromDeckMultiSlide(t *testing.T) {
	sb, res := synthesized(t, chain.MultiSlide)

	if len(sb.Slides) != len(res.Chain.Committed()) {
		t.Fatalf("Expected %d slides, got %d", len(res.Chain.Committed()), len(sb.Slides))
	}
	if !naming.IsSynthesisRoot(sb.Source) {
		t.Errorf("Expected root slide name as source, got %s", sb.Source)
	}

	var kinds []naming.Kind
	for _, s := range sb.Slides {
		kinds = append(kinds, s.Kind)
		if len(s.Keyframes) != 2 {
			t.Errorf("%s: expected 2 keyframes, got %d", s.Name, len(s.Keyframes))
		}
		if s.Duration != 1.5 {
			t.Errorf("%s: expected duration 1.5, got %g", s.Name, s.Duration)
		}
	}
	if diff := cmp.Diff(res.Chain.Kinds(), kinds); diff != "" {
		t.Errorf("Kinds mismatch (-want +got):\n%s", diff)
	}

	magnify := sb.Slides[0].Keyframes
	if magnify[0].Focus != "full_view" || magnify[0].Zoom != 1.0 {
		t.Errorf("Magnify should start at the full view, got %+v", magnify[0])
	}
	if magnify[1].Focus != "region_1" || math.Abs(magnify[1].Zoom-3.6) > 1e-9 {
		t.Errorf("Magnify should end on region 1 at zoom 3.6, got %+v", magnify[1])
	}

	pan := sb.Slides[2].Keyframes
	if pan[0].Focus != "region_1" || pan[1].Focus != "region_2" {
		t.Errorf("Pan should move from region 1 to 2, got %s -> %s", pan[0].Focus, pan[1].Focus)
	}

	out := sb.Slides[len(sb.Slides)-1].Keyframes
	if out[1].Focus != "full_view" {
		t.Errorf("Zoom out should end at the full view, got %s", out[1].Focus)
	}
}

func TestFromDeckSingleSlide(t *testing.T) {
	sb, _ := synthesized(t, chain.SingleSlide)

	if len(sb.Slides) != 1 {
		t.Fatalf("Expected 1 slide, got %d", len(sb.Slides))
	}
	s := sb.Slides[0]
	// magnify, pan, zoom out: four keyframes sharing their boundaries
	want := []string{"full_view", "region_1", "region_2", "full_view"}
	var got []string
	for _, kf := range s.Keyframes {
		got = append(got, kf.Focus)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Focus mismatch (-want +got):\n%s", diff)
	}
	if s.Duration != 4.5 || s.Keyframes[3].Time != 4.5 {
		t.Errorf("Expected 4.5s ending at the last keyframe, got %g / %g", s.Duration, s.Keyframes[3].Time)
	}
}

func TestFromDeckRejectsZeroStep(t *testing.T) {
	deck, source, _ := hosttest.NewSourceDeck(canvas)
	if _, err := FromDeck(deck, &chain.ZoomChain{Source: source}, 0); err == nil {
		t.Error("Expected error for zero step duration")
	}
}

func TestWriteRead(t *testing.T) {
	sb, _ := synthesized(t, chain.MultiSlide)
	path := filepath.Join(t.TempDir(), "boards", "story.yaml")

	if err := Write(sb, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	again, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if diff := cmp.Diff(sb, again); diff != "" {
		t.Errorf("Storyboard mismatch (-want +got):\n%s", diff)
	}
}

func TestCameraAt(t *testing.T) {
	keyframes := []Keyframe{
		{Time: 0.0, Rect: geometry.Rect{Width: 960, Height: 540}, Zoom: 1.0},
		{Time: 2.0, Rect: geometry.Rect{Left: 100, Top: 100, Width: 480, Height: 270}, Zoom: 2.0},
		{Time: 4.0, Rect: geometry.Rect{Left: 200, Top: 200, Width: 240, Height: 135}, Zoom: 4.0},
	}

	tests := []struct {
		time         float64
		expectedZoom float64
	}{
		{-1.0, 1.0},
		{0.0, 1.0},
		{1.0, 1.5},
		{2.0, 2.0},
		{3.0, 3.0},
		{4.0, 4.0},
		{5.0, 4.0},
	}

	for _, tt := range tests {
		state := CameraAt(keyframes, tt.time)
		if math.Abs(state.Zoom-tt.expectedZoom) > 1e-9 {
			t.Errorf("At time %.1f: expected zoom %.2f, got %.2f", tt.time, tt.expectedZoom, state.Zoom)
		}
	}

	// Easing is slow at the ends.
	early := CameraAt(keyframes, 0.2)
	if early.Zoom-1.0 >= 0.1 {
		t.Errorf("Expected eased start, got zoom %.3f at 0.2s", early.Zoom)
	}

	end := CameraAt(keyframes, 4.0)
	if end.X != 320 || end.Y != 267.5 {
		t.Errorf("Expected center (320, 267.5), got (%.1f, %.1f)", end.X, end.Y)
	}

	if s := CameraAt(nil, 1); s.Zoom != 1.0 {
		t.Errorf("Expected neutral camera without keyframes, got %+v", s)
	}
}
