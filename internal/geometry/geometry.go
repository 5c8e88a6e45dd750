// Package geometry fits zoom regions to the slide canvas.
//
// Slide coordinates have their origin in the top-left corner with y growing
// downwards. Rectangles are converted to seehuhn.de/go/geom/rect values for
// bounds arithmetic; rect.Rect does not care about the y direction since it
// only stores the two extreme corners.
package geometry

import (
	"math"

	"seehuhn.de/go/geom/rect"

	zerrors "github.com/ivlev/zoomdeck/internal/errors"
)

// Tolerance used for aspect and bounds comparisons.
const Epsilon = 1e-6

// Canvas is the size of the presentation's slide area.
type Canvas struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Rect is an axis-aligned rectangle in slide-canvas coordinates.
type Rect struct {
	Left   float64 `yaml:"left"`
	Top    float64 `yaml:"top"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Region is a rectangle selected for zoom emphasis. Ordinal is the 1-based
// position of the region in the user's selection.
type Region struct {
	Rect    `yaml:",inline"`
	Ordinal int `yaml:"ordinal"`
}

// Aspect returns width/height of the canvas.
func (c Canvas) Aspect() float64 {
	return c.Width / c.Height
}

// Bounds returns the canvas as a rectangle anchored at the origin.
func (c Canvas) Bounds() rect.Rect {
	return rect.Rect{LLx: 0, LLy: 0, URx: c.Width, URy: c.Height}
}

// Full returns a rectangle covering the whole canvas.
func (c Canvas) Full() Rect {
	return Rect{Width: c.Width, Height: c.Height}
}

// Box converts r to a geom rectangle.
func (r Rect) Box() rect.Rect {
	return rect.Rect{LLx: r.Left, LLy: r.Top, URx: r.Left + r.Width, URy: r.Top + r.Height}
}

// Aspect returns width/height.
func (r Rect) Aspect() float64 {
	return r.Width / r.Height
}

// Center returns the center point of r.
func (r Rect) Center() (x, y float64) {
	return r.Left + r.Width/2, r.Top + r.Height/2
}

// Valid reports whether r has a finite position and a positive, finite size.
func (r Rect) Valid() bool {
	return isFinite(r.Left) && isFinite(r.Top) && isPositive(r.Width) && isPositive(r.Height)
}

// Within reports whether r lies inside the canvas, allowing for rounding.
func Within(r Rect, canvas Canvas) bool {
	b, c := r.Box(), canvas.Bounds()
	return b.LLx >= c.LLx-Epsilon && b.LLy >= c.LLy-Epsilon &&
		b.URx <= c.URx+Epsilon && b.URy <= c.URy+Epsilon
}

// ZoomFactor is the magnification needed for r to fill the canvas.
func ZoomFactor(r Rect, canvas Canvas) float64 {
	box := r.Box()
	if box.Dx() <= 0 {
		return 1.0
	}
	return canvas.Bounds().Dx() / box.Dx()
}

// Fit returns the best-fit rectangle for region: the smallest rectangle with
// the canvas aspect ratio that covers the region, centered on it and moved
// inside the canvas. Dimensions are clamped before positions, since the
// position clamp assumes the rectangle already fits.
func Fit(region Region, canvas Canvas) (Region, error) {
	if !region.Valid() {
		return Region{}, zerrors.NewInvalidRegionError(region.Ordinal, region.Width, region.Height)
	}
	if !isPositive(canvas.Width) || !isPositive(canvas.Height) {
		return Region{}, zerrors.NewInvalidRegionError(0, canvas.Width, canvas.Height)
	}

	fitted := Region{Ordinal: region.Ordinal}
	if region.Aspect() > canvas.Aspect() {
		fitted.Width = region.Width
		fitted.Height = canvas.Height * region.Width / canvas.Width
		fitted.Left = region.Left
		fitted.Top = region.Top + (region.Height-fitted.Height)/2
	} else {
		fitted.Height = region.Height
		fitted.Width = canvas.Width * region.Height / canvas.Height
		fitted.Top = region.Top
		fitted.Left = region.Left + (region.Width-fitted.Width)/2
	}

	// Both sides overflow together because the aspect already matches.
	if fitted.Width > canvas.Width || fitted.Height > canvas.Height {
		fitted.Width = canvas.Width
		fitted.Height = canvas.Height
	}

	if fitted.Left < 0 {
		fitted.Left = 0
	}
	if fitted.Left+fitted.Width > canvas.Width {
		fitted.Left = canvas.Width - fitted.Width
	}
	if fitted.Top < 0 {
		fitted.Top = 0
	}
	if fitted.Top+fitted.Height > canvas.Height {
		fitted.Top = canvas.Height - fitted.Height
	}

	return fitted, nil
}

// FitAll fits every region in order.
func FitAll(regions []Region, canvas Canvas) ([]Region, error) {
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		fitted, err := Fit(r, canvas)
		if err != nil {
			return nil, err
		}
		out = append(out, fitted)
	}
	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
