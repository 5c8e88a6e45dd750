// Package hosttest provides host.Document helpers for tests.
package hosttest

import (
	"errors"
	"fmt"

	"github.com/ivlev/zoomdeck/internal/geometry"
	"github.com/ivlev/zoomdeck/internal/host"
)

// ErrInjected is returned by FaultyDocument for scheduled failures.
var ErrInjected = errors.New("injected host failure")

// FaultyDocument wraps a Document and fails the Nth call of selected
// operations. Operation names are the Document method names.
type FaultyDocument struct {
	host.Document

	// FailOn maps an operation to the 1-based call that should fail.
	FailOn map[string]int
	calls  map[string]int
}

func NewFaultyDocument(doc host.Document, failOn map[string]int) *FaultyDocument {
	return &FaultyDocument{Document: doc, FailOn: failOn, calls: make(map[string]int)}
}

// Calls returns how many times op was invoked.
func (f *FaultyDocument) Calls(op string) int { return f.calls[op] }

func (f *FaultyDocument) check(op string) error {
	f.calls[op]++
	if n, ok := f.FailOn[op]; ok && n == f.calls[op] {
		return fmt.Errorf("%s call %d: %w", op, n, ErrInjected)
	}
	return nil
}

func (f *FaultyDocument) SlideNameAt(index int) (string, error) {
	if err := f.check("SlideNameAt"); err != nil {
		return "", err
	}
	return f.Document.SlideNameAt(index)
}

func (f *FaultyDocument) DuplicateSlide(id host.SlideID, at int) (host.SlideID, error) {
	if err := f.check("DuplicateSlide"); err != nil {
		return "", err
	}
	return f.Document.DuplicateSlide(id, at)
}

func (f *FaultyDocument) DeleteSlide(id host.SlideID) error {
	if err := f.check("DeleteSlide"); err != nil {
		return err
	}
	return f.Document.DeleteSlide(id)
}

func (f *FaultyDocument) DeleteSlideAt(index int) error {
	if err := f.check("DeleteSlideAt"); err != nil {
		return err
	}
	return f.Document.DeleteSlideAt(index)
}

func (f *FaultyDocument) MoveSlide(id host.SlideID, to int) error {
	if err := f.check("MoveSlide"); err != nil {
		return err
	}
	return f.Document.MoveSlide(id, to)
}

func (f *FaultyDocument) RenameSlide(id host.SlideID, name string) error {
	if err := f.check("RenameSlide"); err != nil {
		return err
	}
	return f.Document.RenameSlide(id, name)
}

func (f *FaultyDocument) AddShape(slide host.SlideID, shape host.Shape) (host.ShapeID, error) {
	if err := f.check("AddShape"); err != nil {
		return "", err
	}
	return f.Document.AddShape(slide, shape)
}

func (f *FaultyDocument) DeleteShape(slide host.SlideID, shape host.ShapeID) error {
	if err := f.check("DeleteShape"); err != nil {
		return err
	}
	return f.Document.DeleteShape(slide, shape)
}

func (f *FaultyDocument) SetShapeVisible(slide host.SlideID, shape host.ShapeID, visible bool) error {
	if err := f.check("SetShapeVisible"); err != nil {
		return err
	}
	return f.Document.SetShapeVisible(slide, shape, visible)
}

func (f *FaultyDocument) AddEffect(slide host.SlideID, effect host.Effect) error {
	if err := f.check("AddEffect"); err != nil {
		return err
	}
	return f.Document.AddEffect(slide, effect)
}

// NewSourceDeck builds a deck with a title slide, a content slide holding the
// given selection rectangles (selected, current) and a closing slide.
func NewSourceDeck(canvas geometry.Canvas, rects ...geometry.Rect) (*host.Deck, host.SlideID, []host.ShapeID) {
	d := host.NewDeck(canvas)
	d.CreateSlide("Title")
	source := d.CreateSlide("Content")
	d.CreateSlide("Closing")

	_, _ = d.AddShape(source, host.Shape{Name: "Body", Kind: host.ShapeText, Bounds: geometry.Rect{Left: 20, Top: 20, Width: 200, Height: 40}, Text: "Agenda"})

	var ids []host.ShapeID
	for i, r := range rects {
		id, _ := d.AddShape(source, host.Shape{Name: fmt.Sprintf("Selection %d", i+1), Kind: host.ShapeOval, Bounds: r})
		ids = append(ids, id)
	}
	d.Select(ids...)
	_ = d.GotoSlide(1)
	return d, source, ids
}
