package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

// UploadField is the multipart form field carrying the PDF.
const UploadField = "document"

// Upload streams a PDF to the API. Content is sniffed before anything is
// sent; only PDFs are accepted.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*model.Document, error) {
	const op = "upload document"
	br := bufio.NewReaderSize(r, 512)
	// Peek returns io.EOF for files shorter than 512 bytes; what was read
	// is still valid for sniffing.
	sniff, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: read file: %w", op, err)
	}
	if len(sniff) == 0 {
		return nil, apperr.Validation(op, "Please select a file to upload.")
	}
	if ct := http.DetectContentType(sniff); ct != "application/pdf" {
		return nil, apperr.Validation(op, "Only PDF files are supported.")
	}
	if filename == "" {
		filename = "upload.pdf"
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(UploadField, filepath.Base(filename))
		if err == nil {
			_, err = io.Copy(part, br)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var doc model.Document
	err = c.do(ctx, call{
		op:          op,
		method:      http.MethodPost,
		path:        "/docs/upload",
		rawBody:     pr,
		contentType: mw.FormDataContentType(),
		out:         &doc,
		fallback:    "File upload failed",
	})
	// Unblock the writer goroutine if the request ended early.
	pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns the caller's documents.
func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	err := c.do(ctx, call{
		op:       "list documents",
		method:   http.MethodGet,
		path:     "/docs",
		out:      &docs,
		fallback: "Failed to fetch documents",
	})
	return docs, err
}

// GetDocumentMetadata returns one document's metadata.
func (c *Client) GetDocumentMetadata(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, apperr.Validation("get document", "No document ID provided.")
	}
	var doc model.Document
	err := c.do(ctx, call{
		op:       "get document",
		method:   http.MethodGet,
		path:     "/docs/" + url.PathEscape(id) + "?metadata=true",
		out:      &doc,
		fallback: "Failed to load document.",
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

type shareRequest struct {
	DocumentID  string     `json:"documentId"`
	SignerEmail string     `json:"signerEmail"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// CreateShare issues a share grant for signerEmail. A nil expiresAt never
// expires.
func (c *Client) CreateShare(ctx context.Context, documentID, signerEmail string, expiresAt *time.Time) (*model.ShareGrant, error) {
	const op = "share document"
	signerEmail = strings.TrimSpace(signerEmail)
	if documentID == "" || signerEmail == "" {
		return nil, apperr.Validation(op, "Please enter a valid email and select a document.")
	}
	var grant model.ShareGrant
	err := c.do(ctx, call{
		op:       op,
		method:   http.MethodPost,
		path:     "/docs/share",
		body:     shareRequest{DocumentID: documentID, SignerEmail: signerEmail, ExpiresAt: expiresAt},
		out:      &grant,
		fallback: "Failed to send share link.",
	})
	if err != nil {
		return nil, err
	}
	if grant.DocumentID == "" {
		grant.DocumentID = documentID
	}
	if grant.SignerEmail == "" {
		grant.SignerEmail = signerEmail
	}
	return &grant, nil
}

// GetShared resolves a share token to its document.
func (c *Client) GetShared(ctx context.Context, token string) (*model.Document, error) {
	const op = "open shared document"
	if token == "" {
		return nil, apperr.Validation(op, "No share token provided.")
	}
	var out struct {
		Document *model.Document `json:"document"`
	}
	err := c.do(ctx, call{
		op:       op,
		method:   http.MethodGet,
		path:     "/docs/share/" + url.PathEscape(token),
		out:      &out,
		fallback: "Failed to load document via share link.",
	})
	if err != nil {
		return nil, err
	}
	if out.Document == nil {
		return nil, apperr.NotFound(op, "Shared document not found.", nil)
	}
	return out.Document, nil
}

// AuditLogs returns the caller's audit trail.
func (c *Client) AuditLogs(ctx context.Context) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	err := c.do(ctx, call{
		op:       "audit logs",
		method:   http.MethodGet,
		path:     "/auditlogs",
		out:      &entries,
		fallback: "Failed to fetch audit logs.",
	})
	return entries, err
}
