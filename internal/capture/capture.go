// Package capture produces a signature value from typed text or a freehand
// drawing. It knows nothing about where the value will be placed.
package capture

import (
	"strings"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

// Mode selects how the signature is captured.
type Mode string

const (
	ModeType Mode = "type"
	ModeDraw Mode = "draw"
)

const (
	DefaultCanvasWidth  = 450
	DefaultCanvasHeight = 150
)

// Pad holds one capture session. Typed text and strokes never mix: Save only
// looks at the active mode.
type Pad struct {
	mode    Mode
	open    bool
	typed   string
	strokes []Stroke
	canvas  Canvas
}

// New returns a closed pad with the default canvas.
func New() *Pad {
	return &Pad{
		mode:   ModeType,
		canvas: Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight, MinPen: 0.5, MaxPen: 2.5},
	}
}

// NewWithCanvas returns a closed pad drawing onto c.
func NewWithCanvas(c Canvas) *Pad {
	p := New()
	p.canvas = c
	return p
}

// Open starts a fresh capture. Nothing from a previous session survives.
func (p *Pad) Open() {
	p.open = true
	p.mode = ModeType
	p.typed = ""
	p.strokes = nil
}

// IsOpen reports whether the capture is showing.
func (p *Pad) IsOpen() bool { return p.open }

// Mode returns the active mode.
func (p *Pad) Mode() Mode { return p.mode }

// SetMode switches between typing and drawing.
func (p *Pad) SetMode(m Mode) error {
	if m != ModeType && m != ModeDraw {
		return apperr.Validation("capture", "unknown capture mode")
	}
	p.mode = m
	return nil
}

// Type replaces the typed text.
func (p *Pad) Type(text string) { p.typed = text }

// BeginStroke starts a new stroke at pt.
func (p *Pad) BeginStroke(pt Point) {
	p.strokes = append(p.strokes, Stroke{pt})
}

// LineTo extends the current stroke. Without a current stroke it starts one.
func (p *Pad) LineTo(pt Point) {
	if len(p.strokes) == 0 {
		p.BeginStroke(pt)
		return
	}
	last := len(p.strokes) - 1
	p.strokes[last] = append(p.strokes[last], pt)
}

// AddStroke appends a complete stroke.
func (p *Pad) AddStroke(s Stroke) {
	if len(s) == 0 {
		return
	}
	cp := make(Stroke, len(s))
	copy(cp, s)
	p.strokes = append(p.strokes, cp)
}

// Clear drops every stroke but keeps the capture open.
func (p *Pad) Clear() { p.strokes = nil }

// IsEmpty reports whether nothing has been drawn.
func (p *Pad) IsEmpty() bool { return len(p.strokes) == 0 }

// Cancel closes the capture without producing a value.
func (p *Pad) Cancel() { p.open = false }

// Save validates the active mode and emits exactly one value, closing the
// capture. On validation failure the capture stays open.
func (p *Pad) Save() (model.SignatureValue, error) {
	switch p.mode {
	case ModeType:
		text := strings.TrimSpace(p.typed)
		if text == "" {
			return model.SignatureValue{}, apperr.Validation("capture", "Please type your signature.")
		}
		p.open = false
		return model.SignatureValue{Type: model.ValueText, Value: text}, nil
	default:
		if p.IsEmpty() {
			return model.SignatureValue{}, apperr.Validation("capture", "Please draw your signature.")
		}
		url, err := p.canvas.DataURL(p.strokes)
		if err != nil {
			return model.SignatureValue{}, err
		}
		p.open = false
		return model.SignatureValue{Type: model.ValueImage, Value: url}, nil
	}
}
