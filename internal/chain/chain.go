// Package chain builds the sequence of generated slides that plays back as a
// zoom into, across and out of a set of regions.
package chain

import (
	"fmt"
	"sort"

	"github.com/ivlev/zoomdeck/internal/geometry"
	"github.com/ivlev/zoomdeck/internal/host"
	"github.com/ivlev/zoomdeck/internal/naming"
)

// Mode selects between one slide per step and a single compact slide.
type Mode int

const (
	MultiSlide Mode = iota
	SingleSlide
)

func (m Mode) String() string {
	switch m {
	case MultiSlide:
		return "multi"
	case SingleSlide:
		return "single"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "multi" or "single".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "multi", "multi-slide", "":
		return MultiSlide, nil
	case "single", "single-slide":
		return SingleSlide, nil
	default:
		return 0, fmt.Errorf("unknown zoom mode %q (want multi or single)", s)
	}
}

// State is the lifecycle of a generated slide within one build.
type State int

const (
	// Staged slides exist in the document but the build has not finished.
	Staged State = iota
	Committed
	// Deleted slides were created to anchor a transition and then superseded.
	Deleted
)

func (s State) String() string {
	switch s {
	case Staged:
		return "staged"
	case Committed:
		return "committed"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Target is a fitted region together with the transient shape on the source
// slide that carries it.
type Target struct {
	Region geometry.Region
	Shape  host.ShapeID
}

// GeneratedSlide is one slide created by the builder. Regions holds the
// region it visualizes, or the two regions a pan moves between.
type GeneratedSlide struct {
	ID      host.SlideID
	Name    string
	Kind    naming.Kind
	Index   int
	Regions []geometry.Region
	State   State
}

// ZoomChain is every slide created for one source slide in one run, in
// creation order. Deleted slides stay in the list with State Deleted.
type ZoomChain struct {
	Source host.SlideID
	Mode   Mode
	Slides []*GeneratedSlide
}

// Committed returns the slides that remain in the document, in document
// order.
func (c *ZoomChain) Committed() []*GeneratedSlide {
	var out []*GeneratedSlide
	for _, s := range c.Slides {
		if s.State == Committed {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Count returns how many slides of kind were created, deleted ones included.
func (c *ZoomChain) Count(kind naming.Kind) int {
	n := 0
	for _, s := range c.Slides {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// Kinds returns the kinds of the committed slides in document order.
func (c *ZoomChain) Kinds() []naming.Kind {
	committed := c.Committed()
	out := make([]naming.Kind, len(committed))
	for i, s := range committed {
		out[i] = s.Kind
	}
	return out
}

// ExpectedCreated is the number of slides a multi-slide build creates for n
// regions: n magnifying, n magnified, n-1 pans and one zoom-out.
func ExpectedCreated(n int) int {
	if n <= 0 {
		return 0
	}
	return 2*n + (n - 1) + 1
}

// ExpectedCommitted is the number of slides left after the magnifying
// slides bridged by a pan are removed.
func ExpectedCommitted(n int) int {
	if n <= 0 {
		return 0
	}
	return 2*n + 1
}
