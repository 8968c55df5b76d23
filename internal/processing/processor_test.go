package processing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dharsanguruparan/vdocsign/internal/model"
)

func TestRunKeepsInputOrder(t *testing.T) {
	upload := func(_ context.Context, path string) (*model.Document, error) {
		if path == "bad.pdf" {
			return nil, errors.New("rejected")
		}
		return &model.Document{ID: "id-" + path, OriginalName: path}, nil
	}
	paths := []string{"a.pdf", "bad.pdf", "c.pdf", "d.pdf"}
	results := New(upload, 3, nil).Run(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Fatalf("result %d is for %s, want %s", i, r.Path, paths[i])
		}
	}
	if results[1].Err == nil || results[0].Document.ID != "id-a.pdf" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	upload := func(context.Context, string) (*model.Document, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return &model.Document{ID: "x"}, nil
	}
	New(upload, 2, nil).Run(context.Background(), make([]string, 10))
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Fatalf("expected at most 2 concurrent uploads, saw %d", p)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := int32(0)
	upload := func(context.Context, string) (*model.Document, error) {
		atomic.AddInt32(&called, 1)
		return &model.Document{}, nil
	}
	results := New(upload, 2, nil).Run(ctx, []string{"a.pdf", "b.pdf"})
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("expected cancellation, got %+v", r)
		}
	}
	if atomic.LoadInt32(&called) != 0 {
		t.Fatalf("no upload should start after cancellation")
	}
}
