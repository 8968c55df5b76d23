// Package processing runs document uploads on a small pool of goroutines so
// a batch of files does not go up one request at a time.
package processing

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dharsanguruparan/vdocsign/internal/model"
)

// UploadFunc uploads one file and returns the created document.
type UploadFunc func(ctx context.Context, path string) (*model.Document, error)

// Result is the outcome for one input path.
type Result struct {
	Path     string
	Document *model.Document
	Err      error
}

type job struct {
	index int
	path  string
}

// Pool uploads files with a fixed number of workers.
type Pool struct {
	upload  UploadFunc
	workers int
	logger  *zap.Logger
}

// New builds a Pool. Non-positive worker counts run one worker.
func New(upload UploadFunc, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{upload: upload, workers: workers, logger: logger.With(zap.String("component", "upload_pool"))}
}

// Run uploads every path and returns results in input order. Paths not
// started before ctx is cancelled report ctx.Err().
func (p *Pool) Run(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	queue := make(chan job)
	var wg sync.WaitGroup
	workers := p.workers
	if workers > len(paths) {
		workers = len(paths)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				results[j.index] = p.process(ctx, j)
			}
		}()
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Path: path, Err: err}
			continue
		}
		select {
		case queue <- job{index: i, path: path}:
		case <-ctx.Done():
			results[i] = Result{Path: path, Err: ctx.Err()}
		}
	}
	close(queue)
	wg.Wait()
	return results
}

func (p *Pool) process(ctx context.Context, j job) Result {
	doc, err := p.upload(ctx, j.path)
	if err != nil {
		p.logger.Warn("upload failed", zap.String("path", j.path), zap.Error(err))
		return Result{Path: j.path, Err: err}
	}
	p.logger.Info("uploaded", zap.String("path", j.path), zap.String("document_id", doc.ID))
	return Result{Path: j.path, Document: doc}
}
