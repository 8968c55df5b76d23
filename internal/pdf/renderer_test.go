package pdfutil

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/dharsanguruparan/vdocsign/internal/apitest"
	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/layout"
)

type stubFetcher struct {
	data []byte
	err  error
}

func (s stubFetcher) Fetch(context.Context, string) ([]byte, error) { return s.data, s.err }

func TestRenderReportsPagesAndGeometry(t *testing.T) {
	r := NewRenderer(stubFetcher{data: apitest.PDF(3)}, nil)
	rend, err := r.Render(context.Background(), "http://files.local/a.pdf", 600)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rend.PageCount != 3 {
		t.Fatalf("expected 3 pages, got %d", rend.PageCount)
	}
	if rend.Width != 600 || rend.PageHeight != layout.PageHeight(600) {
		t.Fatalf("unexpected geometry %+v", rend)
	}
}

func TestRenderLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, apitest.PDF(1), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	rend, err := NewRenderer(nil, nil).Render(context.Background(), path, 794)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rend.PageCount != 1 || math.Abs(rend.PageHeight-layout.ReferenceHeight) > 1e-9 {
		t.Fatalf("unexpected rendition %+v", rend)
	}
}

func TestRenderErrorsAreClassified(t *testing.T) {
	cases := []struct {
		name   string
		r      *Renderer
		source string
		want   error
	}{
		{"fetch failure", NewRenderer(stubFetcher{err: errors.New("connection refused")}, nil), "https://x/a.pdf", ErrSource},
		{"malformed bytes", NewRenderer(stubFetcher{data: []byte("not a pdf at all")}, nil), "https://x/a.pdf", ErrSource},
		{"missing local file", NewRenderer(nil, nil), filepath.Join(t.TempDir(), "missing.pdf"), ErrSource},
		{"no fetcher", NewRenderer(nil, nil), "https://x/a.pdf", ErrEngine},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.r.Render(context.Background(), tc.source, 500)
			if apperr.KindOf(err) != apperr.KindRender {
				t.Fatalf("expected render kind, got %v", err)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v in chain, got %v", tc.want, err)
			}
		})
	}
}

func TestRenderNeedsWidth(t *testing.T) {
	_, err := NewRenderer(stubFetcher{data: apitest.PDF(1)}, nil).Render(context.Background(), "http://x/a.pdf", 0)
	if !errors.Is(err, apperr.ErrNotReady) {
		t.Fatalf("expected not ready, got %v", err)
	}
}

func TestExtractTextRejectsGarbage(t *testing.T) {
	if _, err := ExtractText([]byte("hello")); err == nil {
		t.Fatalf("expected error for non-pdf input")
	}
}
