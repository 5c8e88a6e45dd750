package host

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/ivlev/zoomdeck/internal/geometry"
)

var (
	ErrSlideNotFound = errors.New("slide not found")
	ErrShapeNotFound = errors.New("shape not found")
	ErrIndexRange    = errors.New("slide index out of range")
	ErrNoUndoEntry   = errors.New("no undo entry")
)

// Slide is a slide stored in a Deck.
type Slide struct {
	ID      SlideID  `yaml:"id"`
	Name    string   `yaml:"name"`
	Hidden  bool     `yaml:"hidden,omitempty"`
	Shapes  []Shape  `yaml:"shapes,omitempty"`
	Effects []Effect `yaml:"effects,omitempty"`
}

func (s *Slide) clone() *Slide {
	c := &Slide{ID: s.ID, Name: s.Name, Hidden: s.Hidden}
	c.Shapes = make([]Shape, len(s.Shapes))
	for i, sh := range s.Shapes {
		c.Shapes[i] = sh.clone()
	}
	c.Effects = make([]Effect, len(s.Effects))
	for i, e := range s.Effects {
		e.Regions = slices.Clone(e.Regions)
		c.Effects[i] = e
	}
	return c
}

func (s *Slide) shapeIndex(id ShapeID) int {
	return slices.IndexFunc(s.Shapes, func(sh Shape) bool { return sh.ID == id })
}

func (sh Shape) clone() Shape {
	if sh.Fill != nil {
		f := *sh.Fill
		sh.Fill = &f
	}
	if sh.LineColor != nil {
		c := *sh.LineColor
		sh.LineColor = &c
	}
	return sh
}

// Deck is an in-memory Document. Slides live in an arena keyed by stable IDs;
// order holds the document order, so moving a slide only splices order.
type Deck struct {
	canvas    geometry.Canvas
	slides    map[SlideID]*Slide
	order     []SlideID
	current   int
	selection []ShapeID
	undo      *snapshot
	newID     func() string
}

type snapshot struct {
	slides    map[SlideID]*Slide
	order     []SlideID
	current   int
	selection []ShapeID
}

// NewDeck creates an empty deck with the given canvas size.
func NewDeck(canvas geometry.Canvas) *Deck {
	return &Deck{
		canvas: canvas,
		slides: make(map[SlideID]*Slide),
		newID:  uuid.NewString,
	}
}

func (d *Deck) Canvas() geometry.Canvas { return d.canvas }

func (d *Deck) SlideCount() int { return len(d.order) }

func (d *Deck) SlideIDAt(index int) (SlideID, error) {
	if index < 0 || index >= len(d.order) {
		return "", fmt.Errorf("%w: %d", ErrIndexRange, index)
	}
	return d.order[index], nil
}

func (d *Deck) SlideIndex(id SlideID) (int, error) {
	i := slices.Index(d.order, id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrSlideNotFound, id)
	}
	return i, nil
}

func (d *Deck) SlideName(id SlideID) (string, error) {
	s, err := d.slide(id)
	if err != nil {
		return "", err
	}
	return s.Name, nil
}

func (d *Deck) SlideNameAt(index int) (string, error) {
	id, err := d.SlideIDAt(index)
	if err != nil {
		return "", err
	}
	return d.SlideName(id)
}

// Slides returns copies of all slides in document order.
func (d *Deck) Slides() []*Slide {
	out := make([]*Slide, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.slides[id].clone())
	}
	return out
}

// CreateSlide appends a new empty slide.
func (d *Deck) CreateSlide(name string) SlideID {
	s := &Slide{ID: SlideID(d.newID()), Name: name}
	d.slides[s.ID] = s
	d.order = append(d.order, s.ID)
	return s.ID
}

func (d *Deck) AppendSlide(name string) (SlideID, error) {
	return d.CreateSlide(name), nil
}

func (d *Deck) DuplicateSlide(id SlideID, at int) (SlideID, error) {
	src, err := d.slide(id)
	if err != nil {
		return "", err
	}
	if at < 0 || at > len(d.order) {
		return "", fmt.Errorf("%w: %d", ErrIndexRange, at)
	}

	dup := src.clone()
	dup.ID = SlideID(d.newID())
	dup.Effects = nil
	for i := range dup.Shapes {
		dup.Shapes[i].ID = ShapeID(d.newID())
	}
	d.slides[dup.ID] = dup
	d.order = slices.Insert(d.order, at, dup.ID)
	return dup.ID, nil
}

func (d *Deck) DeleteSlide(id SlideID) error {
	i, err := d.SlideIndex(id)
	if err != nil {
		return err
	}
	return d.DeleteSlideAt(i)
}

func (d *Deck) DeleteSlideAt(index int) error {
	id, err := d.SlideIDAt(index)
	if err != nil {
		return err
	}
	delete(d.slides, id)
	d.order = slices.Delete(d.order, index, index+1)
	if d.current >= len(d.order) && len(d.order) > 0 {
		d.current = len(d.order) - 1
	}
	return nil
}

// MoveSlide removes the slide from its position and reinserts it at index to.
func (d *Deck) MoveSlide(id SlideID, to int) error {
	from, err := d.SlideIndex(id)
	if err != nil {
		return err
	}
	if to < 0 || to >= len(d.order) {
		return fmt.Errorf("%w: %d", ErrIndexRange, to)
	}
	if from == to {
		return nil
	}
	d.order = slices.Delete(d.order, from, from+1)
	d.order = slices.Insert(d.order, to, id)
	return nil
}

func (d *Deck) RenameSlide(id SlideID, name string) error {
	s, err := d.slide(id)
	if err != nil {
		return err
	}
	s.Name = name
	return nil
}

func (d *Deck) SetSlideHidden(id SlideID, hidden bool) error {
	s, err := d.slide(id)
	if err != nil {
		return err
	}
	s.Hidden = hidden
	return nil
}

func (d *Deck) Shapes(slide SlideID) ([]Shape, error) {
	s, err := d.slide(slide)
	if err != nil {
		return nil, err
	}
	out := make([]Shape, len(s.Shapes))
	for i, sh := range s.Shapes {
		out[i] = sh.clone()
	}
	return out, nil
}

func (d *Deck) Shape(slide SlideID, shape ShapeID) (Shape, error) {
	s, err := d.slide(slide)
	if err != nil {
		return Shape{}, err
	}
	i := s.shapeIndex(shape)
	if i < 0 {
		return Shape{}, fmt.Errorf("%w: %s", ErrShapeNotFound, shape)
	}
	return s.Shapes[i].clone(), nil
}

// AddShape adds a copy of shape to the slide, assigning an ID when empty.
func (d *Deck) AddShape(slide SlideID, shape Shape) (ShapeID, error) {
	s, err := d.slide(slide)
	if err != nil {
		return "", err
	}
	shape = shape.clone()
	if shape.ID == "" {
		shape.ID = ShapeID(d.newID())
	}
	if shape.Kind == "" {
		shape.Kind = ShapeRectangle
	}
	s.Shapes = append(s.Shapes, shape)
	return shape.ID, nil
}

func (d *Deck) DeleteShape(slide SlideID, shape ShapeID) error {
	s, err := d.slide(slide)
	if err != nil {
		return err
	}
	i := s.shapeIndex(shape)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, shape)
	}
	s.Shapes = slices.Delete(s.Shapes, i, i+1)
	// Animations die with their shape.
	s.Effects = slices.DeleteFunc(s.Effects, func(e Effect) bool { return e.Shape == shape })
	d.selection = slices.DeleteFunc(d.selection, func(id ShapeID) bool { return id == shape })
	return nil
}

func (d *Deck) SetShapeVisible(slide SlideID, shape ShapeID, visible bool) error {
	s, err := d.slide(slide)
	if err != nil {
		return err
	}
	i := s.shapeIndex(shape)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, shape)
	}
	s.Shapes[i].Hidden = !visible
	return nil
}

func (d *Deck) AddEffect(slide SlideID, effect Effect) error {
	s, err := d.slide(slide)
	if err != nil {
		return err
	}
	effect.Regions = slices.Clone(effect.Regions)
	s.Effects = append(s.Effects, effect)
	return nil
}

func (d *Deck) Effects(slide SlideID) ([]Effect, error) {
	s, err := d.slide(slide)
	if err != nil {
		return nil, err
	}
	return s.clone().Effects, nil
}

func (d *Deck) StartNewUndoEntry() {
	d.undo = d.snapshot()
}

func (d *Deck) Undo() error {
	if d.undo == nil {
		return ErrNoUndoEntry
	}
	snap := d.undo
	d.undo = nil
	d.slides = snap.slides
	d.order = snap.order
	d.current = snap.current
	d.selection = snap.selection
	return nil
}

func (d *Deck) CurrentSlide() (SlideID, error) {
	return d.SlideIDAt(d.current)
}

// CurrentIndex returns the index of the slide shown in the view.
func (d *Deck) CurrentIndex() int { return d.current }

func (d *Deck) Selection() []ShapeID {
	return slices.Clone(d.selection)
}

// Select replaces the selection, keeping the given order.
func (d *Deck) Select(ids ...ShapeID) {
	d.selection = slices.Clone(ids)
}

func (d *Deck) GotoSlide(index int) error {
	if index < 0 || index >= len(d.order) {
		return fmt.Errorf("%w: %d", ErrIndexRange, index)
	}
	d.current = index
	return nil
}

// ResolveShape finds a shape on the slide by ID or, failing that, by name.
func (d *Deck) ResolveShape(slide SlideID, ref string) (ShapeID, error) {
	s, err := d.slide(slide)
	if err != nil {
		return "", err
	}
	if i := s.shapeIndex(ShapeID(ref)); i >= 0 {
		return s.Shapes[i].ID, nil
	}
	for _, sh := range s.Shapes {
		if sh.Name == ref {
			return sh.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrShapeNotFound, ref)
}

func (d *Deck) slide(id SlideID) (*Slide, error) {
	s, ok := d.slides[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSlideNotFound, id)
	}
	return s, nil
}

func (d *Deck) snapshot() *snapshot {
	snap := &snapshot{
		slides:    make(map[SlideID]*Slide, len(d.slides)),
		order:     slices.Clone(d.order),
		current:   d.current,
		selection: slices.Clone(d.selection),
	}
	for id, s := range d.slides {
		snap.slides[id] = s.clone()
	}
	return snap
}
