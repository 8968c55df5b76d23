// Package repository keeps the archive ledger: one row per signed document
// mirrored to object storage, tracking where the copy lives and how the
// background job went.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ArchiveStatus enumerates the lifecycle of an archive job.
type ArchiveStatus string

const (
	StatusQueued     ArchiveStatus = "queued"
	StatusProcessing ArchiveStatus = "processing"
	StatusCompleted  ArchiveStatus = "completed"
	StatusFailed     ArchiveStatus = "failed"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("archive not found")

// Archive represents a row in the archives table.
type Archive struct {
	ID           string        `json:"id"`
	DocumentID   string        `json:"documentId"`
	FileName     string        `json:"fileName"`
	FileURL      string        `json:"fileUrl"`
	ObjectKey    *string       `json:"objectKey,omitempty"`
	Status       ArchiveStatus `json:"status"`
	PageCount    int           `json:"pageCount"`
	Content      string        `json:"content,omitempty"`
	ErrorMessage *string       `json:"errorMessage,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ArchiveRepository wraps all SQL used by the CLI and the worker.
type ArchiveRepository struct {
	pool *pgxpool.Pool
}

// NewArchiveRepository constructs a repository.
func NewArchiveRepository(pool *pgxpool.Pool) *ArchiveRepository {
	return &ArchiveRepository{pool: pool}
}

// Create inserts a queued archive before the job is enqueued.
func (r *ArchiveRepository) Create(ctx context.Context, a *Archive) error {
	now := time.Now().UTC()
	a.Status = StatusQueued
	a.CreatedAt = now
	a.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO archives (id, document_id, file_name, file_url, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, a.ID, a.DocumentID, a.FileName, a.FileURL, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert archive: %w", err)
	}
	return nil
}

const selectArchive = `
	SELECT id, document_id, file_name, file_url, object_key, status, page_count,
		COALESCE(content,''), error_message, created_at, updated_at
	FROM archives`

// Get returns an archive by id.
func (r *ArchiveRepository) Get(ctx context.Context, id string) (*Archive, error) {
	a, err := scanArchive(r.pool.QueryRow(ctx, selectArchive+` WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("select archive: %w", err)
	}
	return a, nil
}

// ListByDocument returns the archives of one document, newest first.
func (r *ArchiveRepository) ListByDocument(ctx context.Context, documentID string) ([]Archive, error) {
	rows, err := r.pool.Query(ctx, selectArchive+` WHERE document_id=$1 ORDER BY created_at DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()
	var out []Archive
	for rows.Next() {
		a, err := scanArchive(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// MarkProcessing sets the status to processing.
func (r *ArchiveRepository) MarkProcessing(ctx context.Context, id string) error {
	return r.update(ctx, id, StatusProcessing, nil, nil, nil, nil)
}

// MarkFailed records a failed attempt and its message.
func (r *ArchiveRepository) MarkFailed(ctx context.Context, id, msg string) error {
	return r.update(ctx, id, StatusFailed, nil, nil, nil, &msg)
}

// MarkCompleted stores where the copy went and what it contains.
func (r *ArchiveRepository) MarkCompleted(ctx context.Context, id, objectKey string, pageCount int, content string) error {
	return r.update(ctx, id, StatusCompleted, &objectKey, &pageCount, &content, nil)
}

func (r *ArchiveRepository) update(ctx context.Context, id string, status ArchiveStatus, objectKey *string, pageCount *int, content *string, errorMsg *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE archives
		SET status=$1,
			object_key = COALESCE($2, object_key),
			page_count = COALESCE($3, page_count),
			content = COALESCE($4, content),
			error_message = $5,
			updated_at=$6
		WHERE id=$7
	`, status, objectKey, pageCount, content, errorMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update archive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanArchive(row pgx.Row) (*Archive, error) {
	var (
		a         Archive
		objectKey sql.NullString
		errorMsg  sql.NullString
	)
	if err := row.Scan(&a.ID, &a.DocumentID, &a.FileName, &a.FileURL, &objectKey, &a.Status, &a.PageCount, &a.Content, &errorMsg, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if objectKey.Valid {
		key := objectKey.String
		a.ObjectKey = &key
	}
	if errorMsg.Valid {
		msg := errorMsg.String
		a.ErrorMessage = &msg
	}
	return &a, nil
}
