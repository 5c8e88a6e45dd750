// Package storyboard describes the camera path a zoom chain plays back, one
// list of keyframes per generated slide.
package storyboard

import (
	"fmt"

	"github.com/ivlev/zoomdeck/internal/chain"
	"github.com/ivlev/zoomdeck/internal/geometry"
	"github.com/ivlev/zoomdeck/internal/host"
	"github.com/ivlev/zoomdeck/internal/naming"
)

const Version = "1.0"

// Storyboard is the camera path of one zoom chain.
type Storyboard struct {
	Version string          `yaml:"version"`
	Source  string          `yaml:"source"`
	Mode    string          `yaml:"mode"`
	Canvas  geometry.Canvas `yaml:"canvas"`
	Slides  []Slide         `yaml:"slides"`
}

// Slide is one generated slide with its camera keyframes.
type Slide struct {
	Index     int         `yaml:"index"`
	Name      string      `yaml:"name"`
	Kind      naming.Kind `yaml:"kind"`
	Duration  float64     `yaml:"duration"` // seconds
	Keyframes []Keyframe  `yaml:"keyframes"`
}

// Keyframe is a camera position at a time offset within its slide.
type Keyframe struct {
	Time  float64       `yaml:"time"`
	Focus string        `yaml:"focus"`
	Rect  geometry.Rect `yaml:"rect"`
	Zoom  float64       `yaml:"zoom"` // 1.0 = full canvas
}

// FromDeck reads the effects of every committed slide of c and turns each
// effect into a camera move lasting stepDuration seconds.
func FromDeck(doc host.Document, c *chain.ZoomChain, stepDuration float64) (*Storyboard, error) {
	if stepDuration <= 0 {
		return nil, fmt.Errorf("step duration must be positive, got %g", stepDuration)
	}
	source, err := doc.SlideName(c.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to read source slide: %w", err)
	}

	canvas := doc.Canvas()
	sb := &Storyboard{
		Version: Version,
		Source:  source,
		Mode:    c.Mode.String(),
		Canvas:  canvas,
	}

	for _, gs := range c.Committed() {
		effects, err := doc.Effects(gs.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read effects of %s: %w", gs.Name, err)
		}
		sb.Slides = append(sb.Slides, Slide{
			Index:     gs.Index,
			Name:      gs.Name,
			Kind:      gs.Kind,
			Duration:  float64(len(effects)) * stepDuration,
			Keyframes: keyframes(effects, canvas, stepDuration),
		})
	}
	return sb, nil
}

// keyframes emits the start of the first camera effect and the end of every
// camera effect. Consecutive effects share their boundary keyframe.
func keyframes(effects []host.Effect, canvas geometry.Canvas, step float64) []Keyframe {
	var out []Keyframe
	t := 0.0
	for _, e := range effects {
		if !isCamera(e.Kind) {
			continue
		}
		if len(out) == 0 {
			out = append(out, keyframe(0, e.From, canvas, e.Regions, false))
		}
		t += step
		out = append(out, keyframe(t, e.To, canvas, e.Regions, true))
	}
	return out
}

func keyframe(t float64, r geometry.Rect, canvas geometry.Canvas, regions []int, end bool) Keyframe {
	return Keyframe{
		Time:  t,
		Focus: focus(r, canvas, regions, end),
		Rect:  r,
		Zoom:  geometry.ZoomFactor(r, canvas),
	}
}

func focus(r geometry.Rect, canvas geometry.Canvas, regions []int, end bool) string {
	if r == canvas.Full() {
		return "full_view"
	}
	if len(regions) == 0 {
		return "region"
	}
	ordinal := regions[0]
	if end {
		ordinal = regions[len(regions)-1]
	}
	return fmt.Sprintf("region_%d", ordinal)
}

func isCamera(kind host.EffectKind) bool {
	switch kind {
	case host.EffectMagnify, host.EffectMagnified, host.EffectPan, host.EffectDeMagnify:
		return true
	}
	return false
}
