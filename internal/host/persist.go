package host

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/zoomdeck/internal/geometry"
)

const deckVersion = "1.0"

// deckFile is the on-disk YAML layout of a Deck.
type deckFile struct {
	Version   string          `yaml:"version"`
	Canvas    geometry.Canvas `yaml:"canvas"`
	Current   int             `yaml:"current"`
	Selection []ShapeID       `yaml:"selection,omitempty"`
	Slides    []*Slide        `yaml:"slides"`
}

// Decode reads a deck from YAML. Slides and shapes without an ID get one.
func Decode(r io.Reader) (*Deck, error) {
	var f deckFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode deck: %w", err)
	}
	if f.Canvas.Width <= 0 || f.Canvas.Height <= 0 {
		return nil, fmt.Errorf("deck canvas must be positive, got %gx%g", f.Canvas.Width, f.Canvas.Height)
	}

	d := NewDeck(f.Canvas)
	for _, s := range f.Slides {
		if s == nil {
			continue
		}
		if s.ID == "" {
			s.ID = SlideID(d.newID())
		}
		if _, dup := d.slides[s.ID]; dup {
			return nil, fmt.Errorf("duplicate slide id %s", s.ID)
		}
		for i := range s.Shapes {
			if s.Shapes[i].ID == "" {
				s.Shapes[i].ID = ShapeID(d.newID())
			}
			if s.Shapes[i].Kind == "" {
				s.Shapes[i].Kind = ShapeRectangle
			}
		}
		d.slides[s.ID] = s
		d.order = append(d.order, s.ID)
	}
	if len(d.order) > 0 {
		if err := d.GotoSlide(f.Current); err != nil {
			return nil, fmt.Errorf("current slide: %w", err)
		}
	}
	d.selection = f.Selection
	return d, nil
}

// Encode writes the deck as YAML in document order.
func (d *Deck) Encode(w io.Writer) error {
	f := deckFile{
		Version:   deckVersion,
		Canvas:    d.canvas,
		Current:   d.current,
		Selection: d.Selection(),
		Slides:    d.Slides(),
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return err
	}
	return enc.Close()
}

// LoadDeck reads a deck from a YAML file.
func LoadDeck(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data))
}

// SaveDeck writes the deck to a YAML file.
func SaveDeck(d *Deck, path string) error {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
