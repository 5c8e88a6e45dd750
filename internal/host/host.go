// Package host describes the presentation document the synthesizer edits and
// provides Deck, an in-memory implementation of it.
package host

import (
	"github.com/ivlev/zoomdeck/internal/geometry"
)

type SlideID string

type ShapeID string

// ShapeKind is the host auto-shape type.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapePicture   ShapeKind = "picture"
	ShapeText      ShapeKind = "text"
	ShapeOval      ShapeKind = "oval"
)

// EffectKind is the animation attached to a slide.
type EffectKind string

const (
	EffectMagnify   EffectKind = "magnify"
	EffectMagnified EffectKind = "magnified"
	EffectPan       EffectKind = "pan"
	EffectDeMagnify EffectKind = "demagnify"
	EffectAppear    EffectKind = "appear"
	EffectDisappear EffectKind = "disappear"
)

// Fill is a solid shape fill. Colors are 0xRRGGBB.
type Fill struct {
	Color        int     `yaml:"color"`
	Transparency float64 `yaml:"transparency,omitempty"`
}

// Shape is a value copy of a shape on a slide.
type Shape struct {
	ID        ShapeID       `yaml:"id"`
	Name      string        `yaml:"name"`
	Kind      ShapeKind     `yaml:"kind"`
	Bounds    geometry.Rect `yaml:"bounds"`
	Hidden    bool          `yaml:"hidden,omitempty"`
	Text      string        `yaml:"text,omitempty"`
	TextColor int           `yaml:"text_color,omitempty"`
	Bold      bool          `yaml:"bold,omitempty"`
	Fill      *Fill         `yaml:"fill,omitempty"`
	LineColor *int          `yaml:"line_color,omitempty"`
}

// Effect is one animation step. From and To are the camera rectangles at the
// start and the end of the step; for appear/disappear effects only Shape is
// meaningful.
type Effect struct {
	Kind    EffectKind    `yaml:"kind"`
	Shape   ShapeID       `yaml:"shape,omitempty"`
	Anchor  string        `yaml:"anchor,omitempty"`
	From    geometry.Rect `yaml:"from"`
	To      geometry.Rect `yaml:"to"`
	Regions []int         `yaml:"regions,omitempty"`
}

// Document is the host editing API consumed by the synthesizer. All ordering
// is expressed through slide indices; indices are 0-based.
//
// A Document is not safe for concurrent use.
type Document interface {
	Canvas() geometry.Canvas

	SlideCount() int
	SlideIDAt(index int) (SlideID, error)
	SlideIndex(id SlideID) (int, error)
	SlideName(id SlideID) (string, error)
	SlideNameAt(index int) (string, error)

	// DuplicateSlide copies the slide's shapes into a new slide inserted at
	// index at. Effects are not copied.
	DuplicateSlide(id SlideID, at int) (SlideID, error)
	AppendSlide(name string) (SlideID, error)
	DeleteSlide(id SlideID) error
	DeleteSlideAt(index int) error
	MoveSlide(id SlideID, to int) error
	RenameSlide(id SlideID, name string) error
	SetSlideHidden(id SlideID, hidden bool) error

	Shapes(slide SlideID) ([]Shape, error)
	Shape(slide SlideID, shape ShapeID) (Shape, error)
	AddShape(slide SlideID, shape Shape) (ShapeID, error)
	DeleteShape(slide SlideID, shape ShapeID) error
	SetShapeVisible(slide SlideID, shape ShapeID, visible bool) error

	AddEffect(slide SlideID, effect Effect) error
	Effects(slide SlideID) ([]Effect, error)

	// StartNewUndoEntry opens the single undo step that groups every
	// following mutation. Undo reverts to the state at that point.
	StartNewUndoEntry()
	Undo() error

	CurrentSlide() (SlideID, error)
	Selection() []ShapeID
	GotoSlide(index int) error
}
