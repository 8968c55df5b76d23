package capture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/vector"
)

// Point is a canvas pixel position.
type Point struct {
	X float64
	Y float64
}

// Stroke is one continuous pen movement.
type Stroke []Point

// Canvas rasterizes strokes. Pen width shrinks from MaxPen to MinPen as the
// pen moves faster, measured in pixels per segment.
type Canvas struct {
	Width  int
	Height int
	MinPen float64
	MaxPen float64
}

const dataURLPrefix = "data:image/png;base64,"

// Rasterize draws the strokes in black on a transparent background.
func (c Canvas) Rasterize(strokes []Stroke) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	z := vector.NewRasterizer(c.Width, c.Height)
	for _, s := range strokes {
		if len(s) == 1 {
			c.dot(z, s[0])
			continue
		}
		for i := 1; i < len(s); i++ {
			c.segment(z, s[i-1], s[i])
		}
	}
	z.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{})
	return dst
}

// DataURL rasterizes strokes and encodes them as a PNG data URL.
func (c Canvas) DataURL(strokes []Stroke) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.Rasterize(strokes)); err != nil {
		return "", fmt.Errorf("encode signature png: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (c Canvas) penWidth(length float64) float64 {
	w := c.MaxPen - length/10
	return math.Max(c.MinPen, math.Min(c.MaxPen, w))
}

func (c Canvas) segment(z *vector.Rasterizer, a, b Point) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		c.dot(z, a)
		return
	}
	half := c.penWidth(length) / 2
	nx, ny := -dy/length*half, dx/length*half
	z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	z.LineTo(float32(b.X+nx), float32(b.Y+ny))
	z.LineTo(float32(b.X-nx), float32(b.Y-ny))
	z.LineTo(float32(a.X-nx), float32(a.Y-ny))
	z.ClosePath()
}

func (c Canvas) dot(z *vector.Rasterizer, p Point) {
	half := float32(c.MaxPen / 2)
	x, y := float32(p.X), float32(p.Y)
	// Same winding as segment so overlaps accumulate instead of cancelling.
	z.MoveTo(x-half, y+half)
	z.LineTo(x+half, y+half)
	z.LineTo(x+half, y-half)
	z.LineTo(x-half, y-half)
	z.ClosePath()
}
