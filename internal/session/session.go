// Package session drives one document view: it loads the document and its
// fields, tracks the container width, and turns armed clicks into field
// creations (owner flow) or claims (share flow).
//
// The controller mutex guards state reads and writes only. Network calls run
// without it; the placement session's committing state keeps a second click
// from starting another commit in the meantime.
package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/fields"
	"github.com/dharsanguruparan/vdocsign/internal/layout"
	"github.com/dharsanguruparan/vdocsign/internal/model"
	pdfutil "github.com/dharsanguruparan/vdocsign/internal/pdf"
	"github.com/dharsanguruparan/vdocsign/internal/placement"
	"github.com/dharsanguruparan/vdocsign/internal/route"
)

// Flow selects who is driving the view.
type Flow uint8

const (
	// FlowOwner is the authenticated owner placing fields on their document.
	FlowOwner Flow = iota
	// FlowShare is a recipient signing through a share token.
	FlowShare
)

func (f Flow) String() string {
	if f == FlowShare {
		return "share"
	}
	return "owner"
}

const (
	msgPlaced   = "Signature placed successfully!"
	msgApplied  = "Signature applied successfully!"
	msgSigned   = "Document signed successfully!"
	msgDeclined = "Document declined."
	msgNoUpdate = "Document declined (no pending signatures to update)."
)

// Source is the slice of the API the controller reads from.
type Source interface {
	GetDocumentMetadata(ctx context.Context, id string) (*model.Document, error)
	GetShared(ctx context.Context, token string) (*model.Document, error)
	ListSignatures(ctx context.Context, documentID string) ([]model.SignatureField, error)
	Finalize(ctx context.Context, documentID string) (*model.Document, error)
}

// Renderer lays a document out at a container width.
type Renderer interface {
	Render(ctx context.Context, source string, width float64) (*pdfutil.Rendition, error)
}

// Options are the collaborators of a Controller.
type Options struct {
	Source  Source
	Backend fields.Backend
	// Renderer may be nil; every render then fails with an engine error.
	Renderer Renderer
	// FileURL turns a document's filePath into something Renderer can load.
	// Nil passes the path through unchanged.
	FileURL func(filePath string) string
	Logger  *zap.Logger
}

// Controller is the state of one document view.
type Controller struct {
	mu sync.Mutex

	flow       Flow
	documentID string
	token      string
	opts       Options
	logger     *zap.Logger

	doc       *model.Document
	fields    *fields.Model
	loadErr   error
	width     float64
	rendition *pdfutil.Rendition
	renderErr error

	placement  placement.Session
	values     map[model.FieldKind]model.SignatureValue
	signer     string
	complete   bool
	finalizing bool

	notice  string
	problem string
}

// NewOwner builds a controller for the owner of documentID.
func NewOwner(documentID string, opts Options) *Controller {
	return newController(FlowOwner, documentID, "", opts)
}

// NewShare builds a controller for a recipient holding token.
func NewShare(token string, opts Options) *Controller {
	return newController(FlowShare, "", token, opts)
}

func newController(flow Flow, documentID, token string, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FileURL == nil {
		opts.FileURL = func(p string) string { return p }
	}
	return &Controller{
		flow:       flow,
		documentID: documentID,
		token:      token,
		opts:       opts,
		logger:     logger.With(zap.String("component", "session"), zap.Stringer("flow", flow)),
		values:     make(map[model.FieldKind]model.SignatureValue),
	}
}

// Flow returns the controller's flow.
func (c *Controller) Flow() Flow { return c.flow }

// Load fetches the document and then its fields. Every (re)load starts a
// fresh placement session: captured values and the signing-complete lock
// are dropped. Any failure is recorded as the page-level load error,
// suspends placement and finalize, and clears the previous document. When
// the container width is already known the document is rendered; a render
// failure is kept in its own slot and does not fail Load.
func (c *Controller) Load(ctx context.Context) error {
	const op = "load document"
	c.mu.Lock()
	c.placement.Disarm()
	c.values = make(map[model.FieldKind]model.SignatureValue)
	c.complete = false
	c.notice = ""
	c.loadErr = nil
	c.problem = ""
	c.mu.Unlock()

	doc, err := c.fetchDocument(ctx)
	if err == nil {
		var list []model.SignatureField
		list, err = c.opts.Source.ListSignatures(ctx, doc.ID)
		if err == nil {
			c.mu.Lock()
			c.doc = doc
			c.documentID = doc.ID
			c.fields = fields.New(doc.ID, c.opts.Backend, list, c.logger)
			if c.rendition != nil {
				c.fields.SetPageCount(c.rendition.PageCount)
			}
			width := c.width
			c.mu.Unlock()
			c.logger.Info("document loaded",
				zap.String("document_id", doc.ID),
				zap.Int("fields", len(list)))
			if width > 0 {
				_ = c.render(ctx, width)
			}
			return nil
		}
	}

	c.logger.Warn("load failed", zap.String("op", op), zap.Error(err))
	c.mu.Lock()
	c.doc = nil
	c.fields = nil
	c.rendition = nil
	c.renderErr = nil
	c.loadErr = err
	c.problem = apperr.Message(err)
	c.mu.Unlock()
	return err
}

func (c *Controller) fetchDocument(ctx context.Context) (*model.Document, error) {
	if c.flow == FlowShare {
		return c.opts.Source.GetShared(ctx, c.token)
	}
	if c.documentID == "" {
		return nil, apperr.Validation("load document", "No document ID provided.")
	}
	return c.opts.Source.GetDocumentMetadata(ctx, c.documentID)
}

// Resize records the container width and re-renders when it changed.
// Re-measuring an unchanged width does nothing.
func (c *Controller) Resize(ctx context.Context, width float64) error {
	if width <= 0 {
		return apperr.State("resize", apperr.ErrNotReady)
	}
	c.mu.Lock()
	if width == c.width {
		c.mu.Unlock()
		return nil
	}
	c.width = width
	loaded := c.doc != nil
	c.mu.Unlock()
	if !loaded {
		return nil
	}
	return c.render(ctx, width)
}

func (c *Controller) render(ctx context.Context, width float64) error {
	const op = "render document"
	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return apperr.State(op, apperr.ErrNotLoaded)
	}
	source := c.opts.FileURL(c.doc.FilePath)
	c.mu.Unlock()

	var (
		rend *pdfutil.Rendition
		err  error
	)
	if c.opts.Renderer == nil {
		err = apperr.Render(op, "The PDF viewer failed to render this document.", pdfutil.ErrEngine)
	} else {
		rend, err = c.opts.Renderer.Render(ctx, source, width)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.width != width {
		// A newer resize owns the render slot.
		return err
	}
	if err != nil {
		c.logger.Warn("render failed", zap.String("source", source), zap.Error(err))
		c.renderErr = err
		return err
	}
	c.renderErr = nil
	c.rendition = rend
	if c.fields != nil {
		c.fields.SetPageCount(rend.PageCount)
	}
	return nil
}

// OpenCapture is called when the user opens the capture for kind. Any armed
// placement is dropped so a stale click cannot land while capturing.
func (c *Controller) OpenCapture(kind model.FieldKind) error {
	if !kind.Valid() {
		return apperr.Validation("open capture", "unknown field kind")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.placement.Armed() {
		c.placement.Disarm()
	}
	return nil
}

// SaveCapture stores the value produced by a capture as the active value for
// kind.
func (c *Controller) SaveCapture(kind model.FieldKind, value model.SignatureValue) error {
	if !kind.Valid() {
		return apperr.Validation("save capture", "unknown field kind")
	}
	if value.Empty() {
		return apperr.Validation("save capture", "Please create your "+string(kind)+" first.")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[kind] = value
	c.notice = ""
	c.problem = ""
	return nil
}

// SetSigner records the recipient's name or email.
func (c *Controller) SetSigner(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signer = identity
}

// Arm readies the next click to place a field of kind. The owner may arm at
// any time; a recipient needs a saved value of that kind and is refused once
// signing completed.
func (c *Controller) Arm(kind model.FieldKind) error {
	const op = "arm placement"
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(op); err != nil {
		return err
	}
	if c.flow == FlowShare {
		if c.complete {
			return c.failLocked(apperr.State(op, apperr.ErrSigningComplete))
		}
		if c.values[kind].Empty() {
			return c.failLocked(apperr.Validation(op, "Please create your "+string(kind)+" first."))
		}
	}
	if err := c.placement.Arm(kind); err != nil {
		return c.failLocked(err)
	}
	c.notice = ""
	c.problem = ""
	return nil
}

// Disarm cancels placement without side effects.
func (c *Controller) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.placement.Armed() {
		c.placement.Disarm()
	}
}

// Click handles a click at pt (pixels from the page container's top-left)
// on page. It is a StateError when placement is not armed. On success the
// created or claimed field is returned and the session goes idle.
func (c *Controller) Click(ctx context.Context, page int, pt layout.Point) (*model.SignatureField, error) {
	c.mu.Lock()
	if err := c.readyLocked("place signature"); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	kind, err := c.placement.Begin()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	width := c.width
	value := c.values[kind]
	signer := strings.TrimSpace(c.signer)
	list := c.fields
	c.mu.Unlock()

	var field *model.SignatureField
	pos, err := layout.Normalize(pt, width)
	if err == nil {
		if c.flow == FlowOwner {
			field, err = list.Create(ctx, page, pos, kind, value.Value)
		} else {
			field, err = c.claimOnPage(ctx, list, page, value, signer)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.placement.Finish(err)
	if err != nil {
		c.logger.Info("placement failed", zap.Int("page", page), zap.Error(err))
		return nil, c.failLocked(err)
	}
	c.problem = ""
	if c.flow == FlowShare {
		c.complete = true
		c.notice = msgApplied
	} else {
		c.notice = msgPlaced
	}
	return field, nil
}

// claimOnPage signs the first pending field on page in list order, which is
// not necessarily the field nearest the click.
func (c *Controller) claimOnPage(ctx context.Context, list *fields.Model, page int, value model.SignatureValue, signer string) (*model.SignatureField, error) {
	const op = "apply signature"
	if signer == "" {
		return nil, apperr.Validation(op, "Please enter your name/email.")
	}
	if value.Empty() {
		return nil, apperr.Validation(op, "Please create your signature first.")
	}
	target, ok := list.FirstPending(page)
	if !ok {
		return nil, apperr.NotFound(op, "No pending signature field found on this page.", apperr.ErrNoPendingField)
	}
	return list.Claim(ctx, target.ID, model.StatusSigned, signer)
}

// CanFinalize reports whether Finalize would issue a request.
func (c *Controller) CanFinalize() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canFinalizeLocked()
}

func (c *Controller) canFinalizeLocked() bool {
	return c.flow == FlowOwner && c.fields != nil && c.loadErr == nil &&
		!c.finalizing && c.fields.Len() > 0
}

// FinalizeResult is the outcome of a successful Finalize.
type FinalizeResult struct {
	Signed *model.Document
	// Navigate is where the view should go next.
	Navigate string
}

// Finalize asks the API to produce the signed document. Without any field
// it fails with ErrNothingToFinalize and issues no request.
func (c *Controller) Finalize(ctx context.Context) (*FinalizeResult, error) {
	const op = "finalize document"
	c.mu.Lock()
	if c.flow != FlowOwner {
		c.mu.Unlock()
		return nil, apperr.State(op, apperr.ErrWrongFlow)
	}
	if err := c.readyLocked(op); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.finalizing {
		c.mu.Unlock()
		return nil, apperr.State(op, apperr.ErrBusy)
	}
	if c.fields.Len() == 0 {
		err := c.failLocked(apperr.State(op, apperr.ErrNothingToFinalize))
		c.mu.Unlock()
		return nil, err
	}
	c.finalizing = true
	docID := c.documentID
	c.mu.Unlock()

	signed, err := c.opts.Source.Finalize(ctx, docID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finalizing = false
	if err != nil {
		return nil, c.failLocked(err)
	}
	c.placement.Disarm()
	c.problem = ""
	c.notice = msgSigned
	c.logger.Info("document finalized",
		zap.String("document_id", docID),
		zap.String("signed_id", signed.ID))
	return &FinalizeResult{Signed: signed, Navigate: route.PathDashboard}, nil
}

// DeclineOutcome says what Decline did.
type DeclineOutcome uint8

const (
	// DeclineApplied means a pending field was marked declined.
	DeclineApplied DeclineOutcome = iota + 1
	// DeclineNothingToUpdate means no field was pending; nothing was sent.
	DeclineNothingToUpdate
)

// DeclineResult is the outcome of Decline.
type DeclineResult struct {
	Outcome DeclineOutcome
	// Field is the declined field for DeclineApplied.
	Field    *model.SignatureField
	Navigate string
}

// Decline marks the first pending field of the document declined on behalf
// of the recipient. An empty identity is rejected before any request.
func (c *Controller) Decline(ctx context.Context) (*DeclineResult, error) {
	const op = "decline document"
	c.mu.Lock()
	if c.flow != FlowShare {
		c.mu.Unlock()
		return nil, apperr.State(op, apperr.ErrWrongFlow)
	}
	if err := c.readyLocked(op); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	signer := strings.TrimSpace(c.signer)
	if signer == "" {
		err := c.failLocked(apperr.Validation(op, "Please enter your name/email to decline."))
		c.mu.Unlock()
		return nil, err
	}
	c.placement.Disarm()
	list := c.fields
	c.mu.Unlock()

	target, ok := list.FirstPending(0)
	if !ok {
		c.mu.Lock()
		c.complete = true
		c.notice = msgNoUpdate
		c.mu.Unlock()
		return &DeclineResult{Outcome: DeclineNothingToUpdate, Navigate: route.PathHome}, nil
	}
	field, err := list.Claim(ctx, target.ID, model.StatusDeclined, signer)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return nil, c.failLocked(err)
	}
	c.complete = true
	c.problem = ""
	c.notice = msgDeclined
	return &DeclineResult{Outcome: DeclineApplied, Field: field, Navigate: route.PathHome}, nil
}

// readyLocked refuses interactive actions until the document loaded.
func (c *Controller) readyLocked(op string) error {
	if c.loadErr != nil {
		return apperr.State(op, apperr.ErrNotLoaded)
	}
	if c.fields == nil {
		return apperr.State(op, apperr.ErrNotLoaded)
	}
	return nil
}

// failLocked records err as the inline message and returns it.
func (c *Controller) failLocked(err error) error {
	c.notice = ""
	c.problem = apperr.Message(err)
	return err
}
