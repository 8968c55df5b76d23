package session

import (
	"github.com/dharsanguruparan/vdocsign/internal/layout"
	"github.com/dharsanguruparan/vdocsign/internal/model"
	"github.com/dharsanguruparan/vdocsign/internal/placement"
)

// FieldView is a field plus where to draw it.
type FieldView struct {
	model.SignatureField
	Anchor layout.Anchor
}

// View is a point-in-time copy of the controller state for rendering.
type View struct {
	Flow       Flow
	Document   *model.Document
	Fields     []FieldView
	PageCount  int
	Width      float64
	PageHeight float64

	// LoadError is the page-level failure of Load; it suspends placement
	// and finalize. RenderError is reported by the renderer on its own.
	LoadError   error
	RenderError error

	Placement placement.State
	ArmedKind model.FieldKind

	Signer          string
	SigningComplete bool
	CanFinalize     bool

	// Notice is the last success message, Error the last inline failure.
	Notice string
	Error  string
}

// View returns a snapshot of the controller.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		Flow:            c.flow,
		Width:           c.width,
		LoadError:       c.loadErr,
		RenderError:     c.renderErr,
		Signer:          c.signer,
		SigningComplete: c.complete,
		CanFinalize:     c.canFinalizeLocked(),
		Notice:          c.notice,
		Error:           c.problem,
	}
	v.Placement, v.ArmedKind = c.placement.State()
	if c.doc != nil {
		doc := *c.doc
		v.Document = &doc
	}
	if c.rendition != nil {
		v.PageCount = c.rendition.PageCount
		v.PageHeight = c.rendition.PageHeight
	}
	if c.fields != nil {
		list := c.fields.Fields()
		v.Fields = make([]FieldView, len(list))
		for i, f := range list {
			v.Fields[i] = FieldView{SignatureField: f, Anchor: layout.AnchorFor(f.Position)}
		}
	}
	return v
}
