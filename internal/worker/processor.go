// Package worker handles archive jobs: download the signed PDF, extract its
// text, mirror both into object storage and record the result.
package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	pdfutil "github.com/dharsanguruparan/vdocsign/internal/pdf"
	"github.com/dharsanguruparan/vdocsign/internal/queue"
	"github.com/dharsanguruparan/vdocsign/internal/s3storage"
)

// Ledger records archive progress. *repository.ArchiveRepository satisfies it.
type Ledger interface {
	MarkProcessing(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, msg string) error
	MarkCompleted(ctx context.Context, id, objectKey string, pageCount int, content string) error
}

// ObjectStore receives the archived files. *s3storage.Storage satisfies it.
type ObjectStore interface {
	UploadSigned(ctx context.Context, objectKey string, data []byte) error
	UploadText(ctx context.Context, objectKey, text string) error
}

// Downloader fetches the signed PDF. *api.Client satisfies it.
type Downloader interface {
	Fetch(ctx context.Context, fileURL string) ([]byte, error)
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	ledger Ledger
	store  ObjectStore
	files  Downloader
	logger *zap.Logger
}

// NewProcessor constructs a worker processor.
func NewProcessor(ledger Ledger, store ObjectStore, files Downloader, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{ledger: ledger, store: store, files: files, logger: logger.With(zap.String("component", "archive_worker"))}
}

// Handler registers the archive job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.ArchiveSignedTask, p.HandleArchive)
	return mux
}

// HandleArchive processes one archive task.
func (p *Processor) HandleArchive(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.DecodeArchive(task)
	if err != nil {
		// Retrying cannot fix a malformed payload.
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	log := p.logger.With(zap.String("archive_id", payload.ArchiveID), zap.String("document_id", payload.DocumentID))
	failure := func(step string, err error) error {
		log.Error("archive failed", zap.String("step", step), zap.Error(err))
		if markErr := p.ledger.MarkFailed(ctx, payload.ArchiveID, err.Error()); markErr != nil {
			log.Warn("mark failed", zap.Error(markErr))
		}
		return fmt.Errorf("%s: %w", step, err)
	}

	if err := p.ledger.MarkProcessing(ctx, payload.ArchiveID); err != nil {
		return failure("mark processing", err)
	}
	data, err := p.files.Fetch(ctx, payload.FileURL)
	if err != nil {
		return failure("download", err)
	}
	pages, err := pdfutil.PageCount(data)
	if err != nil {
		return failure("inspect", err)
	}
	text, err := pdfutil.ExtractText(data)
	if err != nil {
		return failure("extract", err)
	}
	objectKey := s3storage.ObjectKey(payload.DocumentID, payload.FileName)
	if err := p.store.UploadSigned(ctx, objectKey, data); err != nil {
		return failure("upload pdf", err)
	}
	if err := p.store.UploadText(ctx, s3storage.TextKey(objectKey), text); err != nil {
		return failure("upload text", err)
	}
	if err := p.ledger.MarkCompleted(ctx, payload.ArchiveID, objectKey, pages, text); err != nil {
		return failure("mark completed", err)
	}
	log.Info("document archived",
		zap.String("object_key", objectKey),
		zap.Int("pages", pages),
		zap.Int("text_bytes", len(text)))
	return nil
}
