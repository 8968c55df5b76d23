// Package fields keeps the ordered list of signature fields for one document
// view and applies create/claim transitions once the backend accepts them.
package fields

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

// CreateRequest is what the backend needs to persist a new field.
type CreateRequest struct {
	DocumentID string
	Page       int
	Position   model.Position
	Kind       model.FieldKind
	Value      string
}

// Backend persists field transitions. The owner flow creates fields, the
// share flow claims them; a backend that cannot do one returns an error.
type Backend interface {
	CreateField(ctx context.Context, req CreateRequest) (*model.SignatureField, error)
	ClaimField(ctx context.Context, fieldID string, status model.FieldStatus, signer string) (*model.SignatureField, error)
}

// Model is the in-memory field list of one document view.
type Model struct {
	mu         sync.RWMutex
	documentID string
	backend    Backend
	logger     *zap.Logger
	fields     []model.SignatureField
	// pageCount is zero until the renderer reports it.
	pageCount int
}

// New builds a Model seeded with the fields loaded from the server.
func New(documentID string, backend Backend, initial []model.SignatureField, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	list := make([]model.SignatureField, len(initial))
	copy(list, initial)
	return &Model{
		documentID: documentID,
		backend:    backend,
		logger:     logger.With(zap.String("component", "fields"), zap.String("document_id", documentID)),
		fields:     list,
	}
}

// SetPageCount records the document page count used to validate new fields.
func (m *Model) SetPageCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageCount = n
}

// PageCount returns the last page count recorded.
func (m *Model) PageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pageCount
}

// Fields returns a copy of the list in insertion order.
func (m *Model) Fields() []model.SignatureField {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.SignatureField, len(m.fields))
	copy(out, m.fields)
	return out
}

// Len returns the number of fields.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.fields)
}

// Get returns a copy of the field with id.
func (m *Model) Get(id string) (model.SignatureField, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexOf(id); i >= 0 {
		return m.fields[i], true
	}
	return model.SignatureField{}, false
}

// FirstPending returns the first pending field on page in list order. Page 0
// matches any page.
func (m *Model) FirstPending(page int) (model.SignatureField, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.fields {
		if f.Status != model.StatusPending {
			continue
		}
		if page == 0 || f.Page == page {
			return f, true
		}
	}
	return model.SignatureField{}, false
}

// Create validates and persists a new pending field, then appends it.
func (m *Model) Create(ctx context.Context, page int, pos model.Position, kind model.FieldKind, value string) (*model.SignatureField, error) {
	const op = "create field"
	if err := m.validateNew(op, page, pos, kind, value); err != nil {
		return nil, err
	}
	created, err := m.backend.CreateField(ctx, CreateRequest{
		DocumentID: m.documentID,
		Page:       page,
		Position:   pos,
		Kind:       kind,
		Value:      value,
	})
	if err != nil {
		return nil, err
	}
	field := *created
	// The API does not echo every attribute; fill what it left out from
	// the request so the list renders consistently.
	if field.DocumentID == "" {
		field.DocumentID = m.documentID
	}
	if field.Page == 0 {
		field.Page = page
	}
	if field.Kind == "" {
		field.Kind = kind
	}
	if field.Status == "" {
		field.Status = model.StatusPending
	}
	if field.Value == "" {
		field.Value = value
	}
	m.mu.Lock()
	m.fields = append(m.fields, field)
	m.mu.Unlock()
	m.logger.Info("field created", zap.String("field_id", field.ID), zap.Int("page", field.Page))
	return &field, nil
}

// Claim moves a pending field to signed or declined. A terminal field is
// never overwritten.
func (m *Model) Claim(ctx context.Context, fieldID string, status model.FieldStatus, signer string) (*model.SignatureField, error) {
	const op = "claim field"
	if !status.Terminal() {
		return nil, apperr.Validation(op, "status must be signed or declined")
	}
	signer = strings.TrimSpace(signer)
	if signer == "" {
		return nil, apperr.Validation(op, "Please enter your name/email.")
	}
	current, ok := m.Get(fieldID)
	if !ok {
		return nil, apperr.NotFound(op, "signature field not found", nil)
	}
	if current.Status.Terminal() {
		return nil, apperr.State(op, apperr.ErrTerminal)
	}
	updated, err := m.backend.ClaimField(ctx, fieldID, status, signer)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(fieldID)
	if i < 0 {
		return nil, apperr.NotFound(op, "signature field not found", nil)
	}
	// Another claim may have landed while the request was in flight.
	if m.fields[i].Status.Terminal() {
		return nil, apperr.State(op, apperr.ErrTerminal)
	}
	next := m.fields[i]
	if updated != nil && updated.ID == fieldID {
		next = *updated
	}
	next.Status = status
	next.SignedBy = signer
	if next.SignedAt == nil {
		at := now()
		next.SignedAt = &at
	}
	m.fields[i] = next
	m.logger.Info("field claimed", zap.String("field_id", fieldID), zap.String("status", string(status)))
	return &next, nil
}

func (m *Model) validateNew(op string, page int, pos model.Position, kind model.FieldKind, value string) error {
	if !pos.InBounds() {
		return apperr.Validation(op, "position must lie within the page (0-100%)")
	}
	if page < 1 {
		return apperr.Validation(op, "page number must be 1 or greater")
	}
	if pc := m.PageCount(); pc > 0 && page > pc {
		return apperr.Validation(op, "page number exceeds the document page count")
	}
	if !kind.Valid() {
		return apperr.Validation(op, "unknown field kind")
	}
	if value == "" {
		return apperr.Validation(op, "Please create your "+string(kind)+" first.")
	}
	return nil
}

func (m *Model) indexOf(id string) int {
	for i := range m.fields {
		if m.fields[i].ID == id {
			return i
		}
	}
	return -1
}
