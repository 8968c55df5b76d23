package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

// CreateSignatureRequest is the body of POST /signatures.
type CreateSignatureRequest struct {
	DocumentID    string         `json:"documentId"`
	PageNumber    int            `json:"pageNumber"`
	Position      model.Position `json:"position"`
	SignatureData string         `json:"signatureData"`
}

// CreateSignature persists a new pending field.
func (c *Client) CreateSignature(ctx context.Context, req CreateSignatureRequest) (*model.SignatureField, error) {
	var field model.SignatureField
	err := c.do(ctx, call{
		op:       "save signature",
		method:   http.MethodPost,
		path:     "/signatures",
		body:     req,
		out:      &field,
		fallback: "Failed to save signature.",
	})
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// ListSignatures returns every field placed on a document.
func (c *Client) ListSignatures(ctx context.Context, documentID string) ([]model.SignatureField, error) {
	var list []model.SignatureField
	err := c.do(ctx, call{
		op:       "list signatures",
		method:   http.MethodGet,
		path:     "/signatures/document/" + url.PathEscape(documentID),
		out:      &list,
		fallback: "Failed to load signatures.",
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.SignatureField{}
	}
	return list, nil
}

// Finalize asks the API to produce the signed document.
func (c *Client) Finalize(ctx context.Context, documentID string) (*model.Document, error) {
	const op = "finalize document"
	var out struct {
		SignedDocument *model.Document `json:"signedDocument"`
	}
	err := c.do(ctx, call{
		op:       op,
		method:   http.MethodPost,
		path:     "/signatures/finalize",
		body:     map[string]string{"documentId": documentID},
		out:      &out,
		fallback: "Failed to finalize document.",
	})
	if err != nil {
		return nil, err
	}
	if out.SignedDocument == nil {
		return nil, apperr.Transport(op, http.StatusOK, "server returned no signed document", nil)
	}
	return out.SignedDocument, nil
}

type statusRequest struct {
	Status   model.FieldStatus `json:"status"`
	SignedBy string            `json:"signedBy"`
}

// UpdateSharedSignatureStatus signs or declines a field through a share
// token. The response may be the field itself or wrapped in "signature".
func (c *Client) UpdateSharedSignatureStatus(ctx context.Context, token, signatureID string, status model.FieldStatus, signedBy string) (*model.SignatureField, error) {
	var raw json.RawMessage
	err := c.do(ctx, call{
		op:       "update signature status",
		method:   http.MethodPut,
		path:     "/signatures/shared/" + url.PathEscape(token) + "/signature/" + url.PathEscape(signatureID) + "/status",
		body:     statusRequest{Status: status, SignedBy: signedBy},
		out:      &raw,
		fallback: "Failed to apply signature.",
	})
	if err != nil {
		return nil, err
	}
	return decodeField(raw), nil
}

// decodeField accepts either a bare field or {"signature": field}. It
// returns nil when neither carries an id.
func decodeField(raw json.RawMessage) *model.SignatureField {
	var wrapped struct {
		Signature *model.SignatureField `json:"signature"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && wrapped.Signature != nil && wrapped.Signature.ID != "" {
		return wrapped.Signature
	}
	var field model.SignatureField
	if json.Unmarshal(raw, &field) == nil && field.ID != "" {
		return &field
	}
	return nil
}
