package host

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ivlev/zoomdeck/internal/geometry"
)

func names(t *testing.T, d *Deck) []string {
	t.Helper()
	var out []string
	for i := 0; i < d.SlideCount(); i++ {
		name, err := d.SlideNameAt(i)
		if err != nil {
			t.Fatalf("SlideNameAt(%d): %v", i, err)
		}
		out = append(out, name)
	}
	return out
}

func TestMoveSlide(t *testing.T) {
	d := NewDeck(geometry.Canvas{Width: 960, Height: 540})
	a := d.CreateSlide("A")
	d.CreateSlide("B")
	c := d.CreateSlide("C")
	d.CreateSlide("D")

	if err := d.MoveSlide(a, 2); err != nil {
		t.Fatalf("MoveSlide failed: %v", err)
	}
	if diff := cmp.Diff([]string{"B", "C", "A", "D"}, names(t, d)); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}

	if err := d.MoveSlide(c, 0); err != nil {
		t.Fatalf("MoveSlide failed: %v", err)
	}
	if diff := cmp.Diff([]string{"C", "B", "A", "D"}, names(t, d)); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}

	if err := d.MoveSlide(c, 4); !errors.Is(err, ErrIndexRange) {
		t.Errorf("Expected ErrIndexRange, got %v", err)
	}
}

func TestDuplicateSlide(t *testing.T) {
	d := NewDeck(geometry.Canvas{Width: 960, Height: 540})
	src := d.CreateSlide("Src")
	d.CreateSlide("Next")
	shape, _ := d.AddShape(src, Shape{Name: "Box", Bounds: geometry.Rect{Width: 10, Height: 10}})
	_ = d.AddEffect(src, Effect{Kind: EffectAppear, Shape: shape})

	dup, err := d.DuplicateSlide(src, 1)
	if err != nil {
		t.Fatalf("DuplicateSlide failed: %v", err)
	}
	if i, _ := d.SlideIndex(dup); i != 1 {
		t.Errorf("Expected duplicate at 1, got %d", i)
	}

	shapes, _ := d.Shapes(dup)
	if len(shapes) != 1 || shapes[0].Name != "Box" || shapes[0].ID == shape {
		t.Errorf("Unexpected duplicated shapes: %+v", shapes)
	}
	effects, _ := d.Effects(dup)
	if len(effects) != 0 {
		t.Errorf("Expected no effects on duplicate, got %d", len(effects))
	}
}

func TestUndoRestoresSnapshot(t *testing.T) {
	d := NewDeck(geometry.Canvas{Width: 960, Height: 540})
	src := d.CreateSlide("Src")
	shape, _ := d.AddShape(src, Shape{Name: "Box", Bounds: geometry.Rect{Width: 10, Height: 10}})
	d.Select(shape)

	before := d.Slides()
	d.StartNewUndoEntry()

	_ = d.RenameSlide(src, "Renamed")
	_ = d.DeleteShape(src, shape)
	_, _ = d.DuplicateSlide(src, 1)

	if len(d.Selection()) != 0 {
		t.Error("Expected deleted shape to leave the selection")
	}
	if err := d.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if diff := cmp.Diff(before, d.Slides(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Undo mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ShapeID{shape}, d.Selection()); diff != "" {
		t.Errorf("Selection mismatch (-want +got):\n%s", diff)
	}
	if err := d.Undo(); !errors.Is(err, ErrNoUndoEntry) {
		t.Errorf("Expected ErrNoUndoEntry, got %v", err)
	}
}

func TestDeckYAML(t *testing.T) {
	input := `
version: "1.0"
canvas: {width: 960, height: 540}
current: 1
selection: [s1]
slides:
  - name: Title
  - id: content
    name: Content
    shapes:
      - id: s1
        name: Callout
        bounds: {left: 100, top: 100, width: 200, height: 150}
      - name: Caption
        kind: text
        text: Hello
        bounds: {left: 0, top: 0, width: 50, height: 20}
`
	d, err := Decode(bytes.NewBufferString(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if d.SlideCount() != 2 || d.CurrentIndex() != 1 {
		t.Fatalf("Unexpected deck: %d slides, current %d", d.SlideCount(), d.CurrentIndex())
	}
	id, err := d.ResolveShape("content", "Caption")
	if err != nil || id == "" {
		t.Fatalf("ResolveShape failed: %v", err)
	}

	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode of encoded deck failed: %v", err)
	}
	if diff := cmp.Diff(d.Slides(), again.Slides(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Deck mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(d.Selection(), again.Selection()); diff != "" {
		t.Errorf("Selection mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsBadCanvas(t *testing.T) {
	_, err := Decode(bytes.NewBufferString("canvas: {width: 0, height: 540}\nslides: []\n"))
	if err == nil {
		t.Error("Expected error for zero canvas width")
	}
}
