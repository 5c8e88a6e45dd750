// Package synth turns a selection on a slide into a zoom navigation chain.
package synth

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ivlev/zoomdeck/internal/chain"
	zerrors "github.com/ivlev/zoomdeck/internal/errors"
	"github.com/ivlev/zoomdeck/internal/geometry"
	"github.com/ivlev/zoomdeck/internal/host"
	"github.com/ivlev/zoomdeck/internal/naming"
)

// Marker styling.
const (
	markerFill         = 0xaaaaaa
	markerTransparency = 0.7
	markerTextColor    = 0xffffff
	markerLineColor    = 0x000000
)

// Options controls what happens around the chain build.
type Options struct {
	// KeepMarkers leaves the marker rectangles visible on the source slide.
	// When false they are deleted once the chain is built.
	KeepMarkers bool

	// RevertOnFailure makes the synthesizer undo its own partial changes.
	// Otherwise they are left in the open undo entry for the user.
	RevertOnFailure bool

	// AddAckSlide appends a hidden acknowledgement slide if the deck has none.
	AddAckSlide bool
}

// DefaultOptions keeps markers and leaves failures for the user to undo.
func DefaultOptions() Options {
	return Options{KeepMarkers: true}
}

// Result describes one synthesis run.
type Result struct {
	Chain       *chain.ZoomChain
	SourceIndex int
	// Removed is the number of stale generated slides deleted before the build.
	Removed  int
	Markers  []host.ShapeID
	Duration time.Duration
}

// Synthesizer builds zoom chains in one document. It is not safe for
// concurrent use.
type Synthesizer struct {
	doc   host.Document
	namer *naming.Namer
	log   *slog.Logger
	opts  Options
}

// New returns a Synthesizer for doc. A nil log uses slog.Default.
func New(doc host.Document, opts Options, log *slog.Logger) *Synthesizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synthesizer{doc: doc, namer: naming.NewNamer(), log: log, opts: opts}
}

// WithNamer replaces the clock-driven namer.
func (s *Synthesizer) WithNamer(n *naming.Namer) *Synthesizer {
	s.namer = n
	return s
}

// SynthesizeZoomNavigation runs Synthesize on the slide shown in the view
// with the current selection.
func (s *Synthesizer) SynthesizeZoomNavigation(mode chain.Mode) (*Result, error) {
	source, err := s.doc.CurrentSlide()
	if err != nil {
		return nil, zerrors.NewSynthesisFailedError("current-slide", err)
	}
	return s.Synthesize(source, s.doc.Selection(), mode)
}

// Synthesize replaces the selected shapes on source with markers and builds
// a zoom chain through their regions, in selection order. Any chain left by a
// previous run on the same slide is removed first.
//
// Invalid selections are rejected before the document is touched. Every
// mutation is grouped in one undo entry.
func (s *Synthesizer) Synthesize(source host.SlideID, selection []host.ShapeID, mode chain.Mode) (*Result, error) {
	start := time.Now()
	log := s.log.With("source", source, "mode", mode.String())

	regions, err := s.regions(source, selection)
	if err != nil {
		log.Warn("selection rejected", "error", err)
		return nil, err
	}

	res := &Result{}
	s.doc.StartNewUndoEntry()

	if err := s.run(res, source, selection, regions, mode, log); err != nil {
		s.fail(log, err)
		return res, err
	}

	res.Duration = time.Since(start)
	log.Info("zoom chain synthesized",
		"regions", len(regions),
		"slides", len(res.Chain.Committed()),
		"removed", res.Removed,
		"duration", res.Duration)
	return res, nil
}

// regions reads and validates the selection without mutating anything.
func (s *Synthesizer) regions(source host.SlideID, selection []host.ShapeID) ([]geometry.Region, error) {
	if len(selection) == 0 {
		return nil, zerrors.NewEmptySelectionError()
	}
	canvas := s.doc.Canvas()

	seen := make(map[host.ShapeID]bool, len(selection))
	regions := make([]geometry.Region, len(selection))
	for i, id := range selection {
		if seen[id] {
			return nil, zerrors.NewInvalidSelectionError(i+1, fmt.Errorf("shape %s selected more than once", id))
		}
		seen[id] = true

		sh, err := s.doc.Shape(source, id)
		if errors.Is(err, host.ErrShapeNotFound) {
			return nil, zerrors.NewInvalidSelectionError(i+1, err)
		}
		if err != nil {
			return nil, zerrors.NewSynthesisFailedError("read-selection", err)
		}
		regions[i] = geometry.Region{Rect: sh.Bounds, Ordinal: i + 1}
	}
	// Fit is pure, so fitting once here validates every region and the canvas.
	if _, err := geometry.FitAll(regions, canvas); err != nil {
		return nil, err
	}
	return regions, nil
}

func (s *Synthesizer) run(res *Result, source host.SlideID, selection []host.ShapeID, regions []geometry.Region, mode chain.Mode, log *slog.Logger) error {
	idx, err := s.doc.SlideIndex(source)
	if err != nil {
		return zerrors.NewSynthesisFailedError("locate-source", err)
	}
	res.SourceIndex = idx

	removed, err := naming.FindAndRemoveStaleChain(s.doc, idx)
	res.Removed = removed
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Debug("removed stale chain", "slides", removed)
	}

	if err := s.doc.RenameSlide(source, s.namer.Root()); err != nil {
		return zerrors.NewSynthesisFailedError("rename-source", err)
	}

	markers, err := s.placeMarkers(source, selection, regions)
	res.Markers = markers
	if err != nil {
		return err
	}

	for _, m := range markers {
		if err := s.doc.SetShapeVisible(source, m, false); err != nil {
			return zerrors.NewSynthesisFailedError("hide-markers", err)
		}
	}

	targets, err := s.fitTargets(source, regions)
	if err != nil {
		return err
	}

	c, err := chain.NewBuilder(s.doc, s.namer, log).Build(source, targets, mode)
	res.Chain = c
	if err != nil {
		return err
	}

	if err := s.restoreMarkers(res, source); err != nil {
		return err
	}

	if idx, err = s.doc.SlideIndex(source); err != nil {
		return zerrors.NewSynthesisFailedError("navigate", err)
	}
	if err := s.doc.GotoSlide(idx); err != nil {
		return zerrors.NewSynthesisFailedError("navigate", err)
	}
	res.SourceIndex = idx

	if s.opts.AddAckSlide {
		if err := s.ensureAckSlide(); err != nil {
			return err
		}
	}
	return nil
}

// placeMarkers drops a labelled marker over each selected shape and removes
// the shape. The source slide shows the markers once and hides them again.
func (s *Synthesizer) placeMarkers(source host.SlideID, selection []host.ShapeID, regions []geometry.Region) ([]host.ShapeID, error) {
	line := markerLineColor
	markers := make([]host.ShapeID, 0, len(regions))
	for i, r := range regions {
		id, err := s.doc.AddShape(source, host.Shape{
			Name:      s.namer.Marker(),
			Kind:      host.ShapeRectangle,
			Bounds:    r.Rect,
			Text:      fmt.Sprintf("Zoom Shape %d", r.Ordinal),
			TextColor: markerTextColor,
			Bold:      true,
			Fill:      &host.Fill{Color: markerFill, Transparency: markerTransparency},
			LineColor: &line,
		})
		if err != nil {
			return markers, zerrors.NewSynthesisFailedError("place-markers", err)
		}
		markers = append(markers, id)

		for _, kind := range []host.EffectKind{host.EffectAppear, host.EffectDisappear} {
			if err := s.doc.AddEffect(source, host.Effect{Kind: kind, Shape: id, Regions: []int{r.Ordinal}}); err != nil {
				return markers, zerrors.NewSynthesisFailedError("place-markers", err)
			}
		}
		if err := s.doc.DeleteShape(source, selection[i]); err != nil {
			return markers, zerrors.NewSynthesisFailedError("place-markers", err)
		}
	}
	return markers, nil
}

// fitTargets adds a hidden fitted copy of every region for the builder.
func (s *Synthesizer) fitTargets(source host.SlideID, regions []geometry.Region) ([]chain.Target, error) {
	canvas := s.doc.Canvas()
	targets := make([]chain.Target, 0, len(regions))
	for _, r := range regions {
		fitted, err := geometry.Fit(r, canvas)
		if err != nil {
			return nil, err
		}
		id, err := s.doc.AddShape(source, host.Shape{
			Name:   s.namer.Marker(),
			Kind:   host.ShapeRectangle,
			Bounds: fitted.Rect,
			Hidden: true,
		})
		if err != nil {
			return nil, zerrors.NewSynthesisFailedError("fit-region", err)
		}
		targets = append(targets, chain.Target{Region: fitted, Shape: id})
	}
	return targets, nil
}

func (s *Synthesizer) restoreMarkers(res *Result, source host.SlideID) error {
	if s.opts.KeepMarkers {
		for _, m := range res.Markers {
			if err := s.doc.SetShapeVisible(source, m, true); err != nil {
				return zerrors.NewSynthesisFailedError("show-markers", err)
			}
		}
		return nil
	}
	for _, m := range res.Markers {
		if err := s.doc.DeleteShape(source, m); err != nil {
			return zerrors.NewSynthesisFailedError("delete-markers", err)
		}
	}
	res.Markers = nil
	return nil
}

func (s *Synthesizer) ensureAckSlide() error {
	for i := 0; i < s.doc.SlideCount(); i++ {
		name, err := s.doc.SlideNameAt(i)
		if err != nil {
			return zerrors.NewSynthesisFailedError("ack-slide", err)
		}
		if naming.IsAck(name) {
			return nil
		}
	}
	id, err := s.doc.AppendSlide(s.namer.Ack())
	if err != nil {
		return zerrors.NewSynthesisFailedError("ack-slide", err)
	}
	if err := s.doc.SetSlideHidden(id, true); err != nil {
		return zerrors.NewSynthesisFailedError("ack-slide", err)
	}
	return nil
}

func (s *Synthesizer) fail(log *slog.Logger, err error) {
	var attrs []any
	var e *zerrors.Error
	if errors.As(err, &e) {
		m := e.ToMap()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrs = append(attrs, k, m[k])
		}
	} else {
		attrs = append(attrs, "error", err)
	}
	log.Error("zoom synthesis failed", attrs...)

	if !s.opts.RevertOnFailure {
		return
	}
	if uerr := s.doc.Undo(); uerr != nil {
		log.Error("undo after failure failed", "error", uerr)
		return
	}
	log.Info("partial changes reverted")
}
