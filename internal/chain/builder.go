package chain

import (
	"fmt"
	"log/slog"

	zerrors "github.com/ivlev/zoomdeck/internal/errors"
	"github.com/ivlev/zoomdeck/internal/geometry"
	"github.com/ivlev/zoomdeck/internal/host"
	"github.com/ivlev/zoomdeck/internal/naming"
)

// Builder creates zoom chains in a host document.
type Builder struct {
	doc   host.Document
	namer *naming.Namer
	log   *slog.Logger
}

// NewBuilder returns a Builder editing doc. A nil log uses slog.Default.
func NewBuilder(doc host.Document, namer *naming.Namer, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{doc: doc, namer: namer, log: log}
}

// Build creates the chain for targets, which must be in selection order.
// On failure the partially built chain is returned with the error; undoing
// the partial document state is left to the caller.
func (b *Builder) Build(source host.SlideID, targets []Target, mode Mode) (*ZoomChain, error) {
	c := &ZoomChain{Source: source, Mode: mode}
	if len(targets) == 0 {
		return c, nil
	}

	var err error
	switch mode {
	case MultiSlide:
		err = b.buildMulti(c, targets)
	case SingleSlide:
		err = b.buildSingle(c, targets)
	default:
		err = fmt.Errorf("unknown mode %v", mode)
	}
	if err != nil {
		return c, err
	}

	if err := b.commit(c); err != nil {
		return c, err
	}
	return c, nil
}

// buildMulti emits one slide per step. Each pan needs both of its endpoint
// slides to exist, so slides are created slightly out of narrative order and
// then moved into place.
func (b *Builder) buildMulti(c *ZoomChain, targets []Target) error {
	full := b.doc.Canvas().Full()
	n := len(targets)

	var lastMagnified, deMagnifying *GeneratedSlide
	var prev geometry.Region

	for i, t := range targets {
		anchor, err := b.anchorName(c.Source, t.Shape)
		if err != nil {
			return err
		}
		r := t.Region

		after, err := b.indexOf(c.Source, "locate-source")
		if err != nil {
			return err
		}
		if lastMagnified != nil {
			if after, err = b.indexOf(lastMagnified.ID, "locate-magnified"); err != nil {
				return err
			}
		}
		magnifying, err := b.create(c, naming.KindMagnifying, after+1, r)
		if err != nil {
			return err
		}
		if err := b.animate(magnifying, host.Effect{
			Kind: host.EffectMagnify, Anchor: anchor, From: full, To: r.Rect, Regions: []int{r.Ordinal},
		}); err != nil {
			return err
		}

		at, err := b.indexOf(magnifying.ID, "locate-magnifying")
		if err != nil {
			return err
		}
		magnified, err := b.create(c, naming.KindMagnified, at+1, r)
		if err != nil {
			return err
		}
		if err := b.animate(magnified, host.Effect{
			Kind: host.EffectMagnified, Anchor: anchor, From: r.Rect, To: r.Rect, Regions: []int{r.Ordinal},
		}); err != nil {
			return err
		}

		var pan *GeneratedSlide
		if lastMagnified != nil {
			at, err := b.indexOf(lastMagnified.ID, "locate-magnified")
			if err != nil {
				return err
			}
			if pan, err = b.create(c, naming.KindMagnifiedPan, at+1, prev, r); err != nil {
				return err
			}
			if err := b.animate(pan, host.Effect{
				Kind: host.EffectPan, Anchor: anchor, From: prev.Rect, To: r.Rect, Regions: []int{prev.Ordinal, r.Ordinal},
			}); err != nil {
				return err
			}
		}

		if i == n-1 {
			at, err := b.indexOf(magnifying.ID, "locate-magnifying")
			if err != nil {
				return err
			}
			if deMagnifying, err = b.create(c, naming.KindDeMagnifying, at+1, r); err != nil {
				return err
			}
			if err := b.move(deMagnifying, at+2); err != nil {
				return err
			}
			if err := b.animate(deMagnifying, host.Effect{
				Kind: host.EffectDeMagnify, Anchor: anchor, From: r.Rect, To: full, Regions: []int{r.Ordinal},
			}); err != nil {
				return err
			}
		}

		// The region's geometry now lives in the effects above.
		if err := b.doc.DeleteShape(c.Source, t.Shape); err != nil {
			return zerrors.NewSynthesisFailedError("consume-region", err)
		}

		if pan != nil {
			if err := b.remove(magnifying); err != nil {
				return err
			}
			if err := b.moveAfter(magnified, pan); err != nil {
				return err
			}
			if deMagnifying != nil {
				if err := b.moveAfter(deMagnifying, magnified); err != nil {
					return err
				}
			}
		}

		lastMagnified = magnified
		prev = r
	}
	return nil
}

// buildSingle puts every step on one slide: a magnify into the first region,
// a pan to each following region and a final zoom out.
func (b *Builder) buildSingle(c *ZoomChain, targets []Target) error {
	full := b.doc.Canvas().Full()

	regions := make([]geometry.Region, len(targets))
	for i, t := range targets {
		regions[i] = t.Region
	}

	at, err := b.indexOf(c.Source, "locate-source")
	if err != nil {
		return err
	}
	slide, err := b.create(c, naming.KindSingleSlide, at+1, regions...)
	if err != nil {
		return err
	}

	from := full
	prevOrdinal := 0
	for _, t := range targets {
		anchor, err := b.anchorName(c.Source, t.Shape)
		if err != nil {
			return err
		}
		effect := host.Effect{Kind: host.EffectMagnify, Anchor: anchor, From: from, To: t.Region.Rect, Regions: []int{t.Region.Ordinal}}
		if prevOrdinal > 0 {
			effect.Kind = host.EffectPan
			effect.Regions = []int{prevOrdinal, t.Region.Ordinal}
		}
		if err := b.animate(slide, effect); err != nil {
			return err
		}
		from = t.Region.Rect
		prevOrdinal = t.Region.Ordinal
	}
	if err := b.animate(slide, host.Effect{
		Kind: host.EffectDeMagnify, From: from, To: full, Regions: []int{prevOrdinal},
	}); err != nil {
		return err
	}

	for _, t := range targets {
		if err := b.doc.DeleteShape(c.Source, t.Shape); err != nil {
			return zerrors.NewSynthesisFailedError("consume-region", err)
		}
	}
	return nil
}

// create copies the source slide to index at, names it and strips the
// markers it inherited from the source.
func (b *Builder) create(c *ZoomChain, kind naming.Kind, at int, regions ...geometry.Region) (*GeneratedSlide, error) {
	stage := fmt.Sprintf("create-%s", kind)
	id, err := b.doc.DuplicateSlide(c.Source, at)
	if err != nil {
		return nil, zerrors.NewSynthesisFailedError(stage, err)
	}
	gs := &GeneratedSlide{
		ID:      id,
		Name:    b.namer.Slide(kind),
		Kind:    kind,
		Index:   at,
		Regions: regions,
		State:   Staged,
	}
	c.Slides = append(c.Slides, gs)

	if err := b.doc.RenameSlide(id, gs.Name); err != nil {
		return nil, zerrors.NewSynthesisFailedError(stage, err)
	}
	if err := b.prepare(gs); err != nil {
		return nil, err
	}

	b.log.Debug("generated slide", "kind", kind, "name", gs.Name, "index", at)
	return gs, nil
}

func (b *Builder) prepare(gs *GeneratedSlide) error {
	stage := fmt.Sprintf("prepare-%s", gs.Kind)
	shapes, err := b.doc.Shapes(gs.ID)
	if err != nil {
		return zerrors.NewSynthesisFailedError(stage, err)
	}
	for _, sh := range shapes {
		if !naming.IsMarker(sh.Name) {
			continue
		}
		if err := b.doc.DeleteShape(gs.ID, sh.ID); err != nil {
			return zerrors.NewSynthesisFailedError(stage, err)
		}
	}
	return nil
}

func (b *Builder) animate(gs *GeneratedSlide, effect host.Effect) error {
	if err := b.doc.AddEffect(gs.ID, effect); err != nil {
		return zerrors.NewSynthesisFailedError(fmt.Sprintf("animate-%s", gs.Kind), err)
	}
	return nil
}

func (b *Builder) remove(gs *GeneratedSlide) error {
	if err := b.doc.DeleteSlide(gs.ID); err != nil {
		return zerrors.NewSynthesisFailedError(fmt.Sprintf("delete-%s", gs.Kind), err)
	}
	gs.State = Deleted
	gs.Index = -1
	return nil
}

func (b *Builder) move(gs *GeneratedSlide, to int) error {
	if err := b.doc.MoveSlide(gs.ID, to); err != nil {
		return zerrors.NewSynthesisFailedError(fmt.Sprintf("move-%s", gs.Kind), err)
	}
	gs.Index = to
	return nil
}

// moveAfter places gs immediately after anchor. MoveSlide removes before it
// inserts, so the target index depends on which side of anchor gs starts.
func (b *Builder) moveAfter(gs, anchor *GeneratedSlide) error {
	from, err := b.indexOf(gs.ID, fmt.Sprintf("move-%s", gs.Kind))
	if err != nil {
		return err
	}
	a, err := b.indexOf(anchor.ID, fmt.Sprintf("move-%s", gs.Kind))
	if err != nil {
		return err
	}
	to := a + 1
	if from < a {
		to = a
	}
	return b.move(gs, to)
}

func (b *Builder) indexOf(id host.SlideID, stage string) (int, error) {
	i, err := b.doc.SlideIndex(id)
	if err != nil {
		return 0, zerrors.NewSynthesisFailedError(stage, err)
	}
	return i, nil
}

func (b *Builder) anchorName(source host.SlideID, shape host.ShapeID) (string, error) {
	sh, err := b.doc.Shape(source, shape)
	if err != nil {
		return "", zerrors.NewSynthesisFailedError("read-region", err)
	}
	return sh.Name, nil
}

func (b *Builder) commit(c *ZoomChain) error {
	for _, s := range c.Slides {
		if s.State == Deleted {
			continue
		}
		i, err := b.indexOf(s.ID, "commit")
		if err != nil {
			return err
		}
		s.Index = i
		s.State = Committed
	}
	return nil
}
