package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/capture"
	"github.com/dharsanguruparan/vdocsign/internal/layout"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

// captureFlags select how the signature value is produced.
type captureFlags struct {
	kind    string
	text    string
	strokes string
}

func (f *captureFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", string(model.KindSignature), "Field kind: signature or initial")
	cmd.Flags().StringVar(&f.text, "text", "", "Typed signature")
	cmd.Flags().StringVar(&f.strokes, "strokes", "", `JSON file of drawn strokes, e.g. [[{"x":1,"y":2},{"x":5,"y":8}]]`)
}

// value runs a capture and returns the field kind and the saved value.
func (f *captureFlags) value() (model.FieldKind, model.SignatureValue, error) {
	kind := model.FieldKind(f.kind)
	if !kind.Valid() {
		return "", model.SignatureValue{}, apperr.Validation("capture", "--kind must be signature or initial")
	}
	if f.text != "" && f.strokes != "" {
		return "", model.SignatureValue{}, apperr.Validation("capture", "use either --text or --strokes")
	}
	pad := capture.New()
	pad.Open()
	if f.strokes != "" {
		if err := pad.SetMode(capture.ModeDraw); err != nil {
			return "", model.SignatureValue{}, err
		}
		strokes, err := readStrokes(f.strokes)
		if err != nil {
			return "", model.SignatureValue{}, err
		}
		for _, s := range strokes {
			pad.AddStroke(s)
		}
	} else {
		pad.Type(f.text)
	}
	v, err := pad.Save()
	if err != nil {
		return "", model.SignatureValue{}, err
	}
	return kind, v, nil
}

func readStrokes(path string) ([]capture.Stroke, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strokes: %w", err)
	}
	var strokes []capture.Stroke
	if err := json.Unmarshal(data, &strokes); err != nil {
		return nil, fmt.Errorf("parse strokes: %w", err)
	}
	return strokes, nil
}

// placeFlags describe the click: page, pixel position and container width.
type placeFlags struct {
	page  int
	x, y  float64
	width float64
}

func (f *placeFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number (1-based)")
	cmd.Flags().Float64Var(&f.x, "x", 0, "Click X in pixels from the page's left edge")
	cmd.Flags().Float64Var(&f.y, "y", 0, "Click Y in pixels from the page's top edge")
	cmd.Flags().Float64Var(&f.width, "width", layout.ReferenceWidth, "Rendered page width in pixels")
}

func (f *placeFlags) point() layout.Point { return layout.Point{X: f.x, Y: f.y} }
