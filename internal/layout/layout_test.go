package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestNormalizeReferenceClick(t *testing.T) {
	pos, err := Normalize(Point{X: 100, Y: 50}, 800)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !near(pos.X, 12.5) {
		t.Fatalf("expected x=12.5, got %v", pos.X)
	}
	// 50 / (800 * 1123/794) * 100
	if want := 5000 * ReferenceWidth / (800 * ReferenceHeight); !near(pos.Y, want) || math.Abs(pos.Y-4.419) > 0.001 {
		t.Fatalf("expected y≈4.419, got %v", pos.Y)
	}
}

func TestNormalizeRejectsUnmeasuredContainer(t *testing.T) {
	for _, w := range []float64{0, -1} {
		_, err := Normalize(Point{X: 10, Y: 10}, w)
		if !errors.Is(err, apperr.ErrNotReady) {
			t.Fatalf("width %v: expected ErrNotReady, got %v", w, err)
		}
		if apperr.KindOf(err) != apperr.KindState {
			t.Fatalf("width %v: expected state kind", w)
		}
	}
	if _, err := Denormalize(model.Position{}, 0); !errors.Is(err, apperr.ErrNotReady) {
		t.Fatalf("expected ErrNotReady from Denormalize, got %v", err)
	}
}

func TestRoundTripAcrossWidths(t *testing.T) {
	widths := []float64{1, 320, 612.5, 794, 800, 1440, 2560}
	for _, w := range widths {
		h := PageHeight(w)
		for _, fx := range []float64{0, 0.1, 0.5, 0.99, 1} {
			for _, fy := range []float64{0, 0.25, 0.75, 1} {
				click := Point{X: fx * w, Y: fy * h}
				pos, err := Normalize(click, w)
				if err != nil {
					t.Fatalf("normalize: %v", err)
				}
				if !pos.InBounds() {
					t.Fatalf("in-page click produced out of bounds position %+v", pos)
				}
				back, err := Denormalize(pos, w)
				if err != nil {
					t.Fatalf("denormalize: %v", err)
				}
				if !near(back.X, click.X) || !near(back.Y, click.Y) {
					t.Fatalf("width %v: %+v round-tripped to %+v", w, click, back)
				}
			}
		}
	}
}

func TestPositionStableUnderResize(t *testing.T) {
	pos, err := Normalize(Point{X: 200, Y: 300}, 800)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	// The same relative spot on a half-width render.
	small, err := Denormalize(pos, 400)
	if err != nil {
		t.Fatalf("denormalize: %v", err)
	}
	if !near(small.X, 100) || !near(small.Y, 150) {
		t.Fatalf("expected (100,150) at half width, got %+v", small)
	}
}

func TestAnchorCentersField(t *testing.T) {
	a := AnchorFor(model.Position{X: 12.5, Y: 40})
	if a.LeftPercent != 12.5 || a.TopPercent != 40 {
		t.Fatalf("unexpected anchor %+v", a)
	}
	if a.TranslateXPercent != -50 || a.TranslateYPercent != -50 {
		t.Fatalf("expected -50%% centering, got %+v", a)
	}
}
