// Package queue defines the background tasks exchanged between the CLI and
// the archive worker over Redis.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// ArchiveSignedTask is scheduled after a document is finalized with
	// archiving requested.
	ArchiveSignedTask = "document:archive"
)

// ArchivePayload tells the worker which signed document to mirror and which
// ledger row to update.
type ArchivePayload struct {
	ArchiveID  string `json:"archive_id"`
	DocumentID string `json:"document_id"`
	FileURL    string `json:"file_url"`
	FileName   string `json:"file_name"`
}

// Enqueuer is the part of *asynq.Client used here.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewArchiveTask builds the task for payload.
func NewArchiveTask(payload ArchivePayload) (*asynq.Task, error) {
	if payload.ArchiveID == "" || payload.FileURL == "" {
		return nil, errors.New("archive payload needs an archive id and a file url")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(ArchiveSignedTask, data), nil
}

// EnqueueArchive enqueues an archive job.
func EnqueueArchive(ctx context.Context, client Enqueuer, payload ArchivePayload) error {
	task, err := NewArchiveTask(payload)
	if err != nil {
		return err
	}
	if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(5), asynq.TaskID(payload.ArchiveID)); err != nil {
		return fmt.Errorf("enqueue archive task: %w", err)
	}
	return nil
}

// DecodeArchive reads the payload back out of a task.
func DecodeArchive(task *asynq.Task) (ArchivePayload, error) {
	var payload ArchivePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ArchivePayload{}, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}
