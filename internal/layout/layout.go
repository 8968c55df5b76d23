// Package layout maps pointer positions inside a rendered page container to
// normalized page coordinates and back. Pages are laid out at the A4
// reference ratio, so only the container width is needed to recover the page
// height.
package layout

import (
	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

const (
	// ReferenceWidth and ReferenceHeight describe ISO A4 at 96 dpi.
	ReferenceWidth  = 794.0
	ReferenceHeight = 1123.0
)

// Point is a pixel offset from the top-left corner of the page container.
type Point struct {
	X float64
	Y float64
}

// Anchor tells a renderer where to draw a field: left/top in percent of the
// page box, then shifted by the translate percentages so the field is
// centered on the click.
type Anchor struct {
	LeftPercent       float64
	TopPercent        float64
	TranslateXPercent float64
	TranslateYPercent float64
}

// PageHeight returns the rendered page height for a container width.
func PageHeight(containerWidth float64) float64 {
	return containerWidth * (ReferenceHeight / ReferenceWidth)
}

// Normalize converts a click at p inside a container of the given width into
// a position that survives re-rendering at any other width.
func Normalize(p Point, containerWidth float64) (model.Position, error) {
	if containerWidth <= 0 {
		return model.Position{}, apperr.State("normalize", apperr.ErrNotReady)
	}
	return model.Position{
		X: 100 * p.X / containerWidth,
		Y: 100 * p.Y / PageHeight(containerWidth),
	}, nil
}

// Denormalize expands pos back into pixels for a container of the given width.
func Denormalize(pos model.Position, containerWidth float64) (Point, error) {
	if containerWidth <= 0 {
		return Point{}, apperr.State("denormalize", apperr.ErrNotReady)
	}
	return Point{
		X: pos.X * containerWidth / 100,
		Y: pos.Y * PageHeight(containerWidth) / 100,
	}, nil
}

// AnchorFor returns the render-time placement of pos. It does not depend on
// the container width.
func AnchorFor(pos model.Position) Anchor {
	return Anchor{
		LeftPercent:       pos.X,
		TopPercent:        pos.Y,
		TranslateXPercent: -50,
		TranslateYPercent: -50,
	}
}
