package pdfutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/layout"
)

// Fetcher downloads a remote file. *api.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, fileURL string) ([]byte, error)
}

// Rendition describes a document laid out at one container width.
type Rendition struct {
	PageCount  int
	Width      float64
	PageHeight float64
}

// Renderer loads a document and lays its pages out at a given width.
type Renderer struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewRenderer builds a Renderer. fetcher may be nil when only local paths
// are rendered.
func NewRenderer(fetcher Fetcher, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{fetcher: fetcher, logger: logger.With(zap.String("component", "renderer"))}
}

// Render loads source (an http(s) URL or a local path) and reports its page
// count and page geometry at width. Failures are KindRender errors wrapping
// ErrSource or ErrEngine.
func (r *Renderer) Render(ctx context.Context, source string, width float64) (*Rendition, error) {
	const op = "render document"
	if width <= 0 {
		return nil, apperr.State(op, apperr.ErrNotReady)
	}
	data, err := r.load(ctx, source)
	if err != nil {
		return nil, classify(op, err)
	}
	pages, err := PageCount(data)
	if err != nil {
		return nil, classify(op, err)
	}
	r.logger.Debug("rendered",
		zap.String("source", source),
		zap.Int("pages", pages),
		zap.Float64("width", width))
	return &Rendition{
		PageCount:  pages,
		Width:      width,
		PageHeight: layout.PageHeight(width),
	}, nil
}

func (r *Renderer) load(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if r.fetcher == nil {
			return nil, fmt.Errorf("%w: no fetcher configured for %s", ErrEngine, source)
		}
		data, err := r.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSource, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	return data, nil
}

func classify(op string, err error) error {
	if errors.Is(err, ErrEngine) {
		return apperr.Render(op, "The PDF viewer failed to render this document.", err)
	}
	return apperr.Render(op, "Failed to load PDF. Please check the file and try again.", err)
}
