package api

import (
	"context"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/fields"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

// OwnerBackend persists fields placed by the document owner.
type OwnerBackend struct {
	Client *Client
}

// CreateField implements fields.Backend.
func (b OwnerBackend) CreateField(ctx context.Context, req fields.CreateRequest) (*model.SignatureField, error) {
	return b.Client.CreateSignature(ctx, CreateSignatureRequest{
		DocumentID:    req.DocumentID,
		PageNumber:    req.Page,
		Position:      req.Position,
		SignatureData: req.Value,
	})
}

// ClaimField implements fields.Backend. Owners place fields; recipients
// claim them.
func (b OwnerBackend) ClaimField(context.Context, string, model.FieldStatus, string) (*model.SignatureField, error) {
	return nil, apperr.State("claim field", apperr.ErrWrongFlow)
}

// ShareBackend claims fields through a share token.
type ShareBackend struct {
	Client *Client
	Token  string
}

// CreateField implements fields.Backend. Recipients cannot add fields.
func (b ShareBackend) CreateField(context.Context, fields.CreateRequest) (*model.SignatureField, error) {
	return nil, apperr.State("create field", apperr.ErrWrongFlow)
}

// ClaimField implements fields.Backend.
func (b ShareBackend) ClaimField(ctx context.Context, fieldID string, status model.FieldStatus, signer string) (*model.SignatureField, error) {
	return b.Client.UpdateSharedSignatureStatus(ctx, b.Token, fieldID, status, signer)
}
