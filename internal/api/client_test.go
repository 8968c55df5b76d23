package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dharsanguruparan/vdocsign/internal/apitest"
	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/credstore"
	"github.com/dharsanguruparan/vdocsign/internal/fields"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

func newClient(t *testing.T, srv *apitest.Server, token string, opts ...Option) *Client {
	t.Helper()
	store := credstore.NewMemoryStore()
	if token != "" {
		if err := store.Set(credstore.KeyToken, token); err != nil {
			t.Fatalf("set token: %v", err)
		}
	}
	return New(srv.APIURL(), store, opts...)
}

func TestBearerAndRequestIDHeaders(t *testing.T) {
	var gotAuth, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "[]")
	}))
	defer srv.Close()

	store := credstore.NewMemoryStore()
	_ = store.Set(credstore.KeyToken, "abc")
	c := New(srv.URL, store)
	docs, err := c.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty list, got %v", docs)
	}
	if gotAuth != "Bearer abc" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotID == "" {
		t.Fatalf("missing request id")
	}
}

func TestUnauthorizedClearsCredentialsAndRedirects(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	var redirect string
	c := newClient(t, srv, "stale", WithUnauthorizedHandler(func(to string) { redirect = to }))
	_, err := c.ListDocuments(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindTransport {
		t.Fatalf("expected transport kind, got %s", apperr.KindOf(err))
	}
	if credstore.HasToken(c.Credentials()) {
		t.Fatalf("token should be cleared after 401")
	}
	if redirect != LoginPath {
		t.Fatalf("expected redirect to %s, got %q", LoginPath, redirect)
	}
}

func TestNotFoundAndServerMessage(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	c := newClient(t, srv, srv.Token("owner@example.com"))

	_, err := c.GetDocumentMetadata(context.Background(), "missing")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if apperr.Message(err) != "Document not found" {
		t.Fatalf("server message should be surfaced, got %q", apperr.Message(err))
	}

	srv.FailNext("GET /api/docs", http.StatusInternalServerError)
	_, err = c.ListDocuments(context.Background())
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 transport error, got %v", err)
	}
	if ae.Message != "injected failure" {
		t.Fatalf("unexpected message %q", ae.Message)
	}
}

func TestFallbackMessageWhenBodyIsNotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()
	c := New(srv.URL, nil)
	_, err := c.ListDocuments(context.Background())
	if got := apperr.Message(err); got != "Failed to fetch documents" {
		t.Fatalf("expected fallback message, got %q", got)
	}
}

func TestLoginStoresToken(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	c := newClient(t, srv, "")

	if _, err := c.Register(context.Background(), Credentials{Name: "Ann", Email: "ann@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := c.Credentials().Get(credstore.KeyUser); !ok {
		t.Fatalf("register should store the user")
	}
	if err := c.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if credstore.HasToken(c.Credentials()) {
		t.Fatalf("logout should clear token")
	}
	if _, err := c.Login(context.Background(), Credentials{Email: "ann@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !credstore.HasToken(c.Credentials()) {
		t.Fatalf("login should store token")
	}

	_, err := c.Login(context.Background(), Credentials{Email: " ", Password: "pw"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUploadThenListReturnsDocument(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	c := newClient(t, srv, srv.Token("owner@example.com"))

	doc, err := c.Upload(context.Background(), "contract.pdf", bytes.NewReader(apitest.PDF(2)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.OriginalName != "contract.pdf" || doc.ID == "" {
		t.Fatalf("unexpected document %+v", doc)
	}
	docs, err := c.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != doc.ID {
		t.Fatalf("uploaded document missing from list: %+v", docs)
	}
	data, err := c.Fetch(context.Background(), srv.FileURL(doc.FilePath))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("fetched bytes are not the uploaded pdf")
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	c := newClient(t, srv, srv.Token("owner@example.com"))

	_, err := c.Upload(context.Background(), "notes.txt", strings.NewReader("just some text"))
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = c.Upload(context.Background(), "empty.pdf", strings.NewReader(""))
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for empty file, got %v", err)
	}
	if srv.Hits("POST /api/docs/upload") != 0 {
		t.Fatalf("rejected uploads must not reach the server")
	}
}

func TestShareFlowClaimsField(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	owner := newClient(t, srv, srv.Token("owner@example.com"))
	doc, err := owner.Upload(context.Background(), "nda.pdf", bytes.NewReader(apitest.PDF(1)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	grant, err := owner.CreateShare(context.Background(), doc.ID, "signer@example.com", nil)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	field, err := owner.CreateSignature(context.Background(), CreateSignatureRequest{
		DocumentID:    doc.ID,
		PageNumber:    1,
		Position:      model.Position{X: 10, Y: 20},
		SignatureData: "Ann",
	})
	if err != nil {
		t.Fatalf("create signature: %v", err)
	}

	recipient := newClient(t, srv, "")
	shared, err := recipient.GetShared(context.Background(), grant.Token)
	if err != nil || shared.ID != doc.ID {
		t.Fatalf("get shared: %v %+v", err, shared)
	}
	claimed, err := recipient.UpdateSharedSignatureStatus(context.Background(), grant.Token, field.ID, model.StatusSigned, "Bob")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.Status != model.StatusSigned || claimed.SignedBy != "Bob" {
		t.Fatalf("unexpected claimed field %+v", claimed)
	}
	_, err = recipient.UpdateSharedSignatureStatus(context.Background(), grant.Token, field.ID, model.StatusDeclined, "Bob")
	if apperr.Message(err) != "Signature already processed" {
		t.Fatalf("second claim should be rejected, got %v", err)
	}

	_, err = recipient.GetShared(context.Background(), "bogus")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown token should be not found, got %v", err)
	}
}

func TestFinalizeReturnsSignedDocument(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	c := newClient(t, srv, srv.Token("owner@example.com"))
	doc := srv.SeedDocument("owner@example.com", "lease.pdf", apitest.PDF(1))

	signed, err := c.Finalize(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if signed.ID == doc.ID || signed.OriginalName != "signed_lease.pdf" {
		t.Fatalf("unexpected signed document %+v", signed)
	}
	logs, err := c.AuditLogs(context.Background())
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(logs) == 0 {
		t.Fatalf("expected audit entries")
	}
}

func TestDecodeFieldShapes(t *testing.T) {
	bare := decodeField([]byte(`{"_id":"f1","status":"signed"}`))
	if bare == nil || bare.ID != "f1" {
		t.Fatalf("bare field not decoded: %+v", bare)
	}
	wrapped := decodeField([]byte(`{"message":"ok","signature":{"_id":"f2","status":"declined"}}`))
	if wrapped == nil || wrapped.ID != "f2" {
		t.Fatalf("wrapped field not decoded: %+v", wrapped)
	}
	if decodeField([]byte(`{"message":"ok"}`)) != nil {
		t.Fatalf("expected nil for a body without a field")
	}
}

func TestBackendsRefuseWrongFlow(t *testing.T) {
	_, err := OwnerBackend{}.ClaimField(context.Background(), "f", model.StatusSigned, "x")
	if !errors.Is(err, apperr.ErrWrongFlow) {
		t.Fatalf("owner claim should be refused, got %v", err)
	}
	_, err = ShareBackend{}.CreateField(context.Background(), fields.CreateRequest{DocumentID: "d", Page: 1})
	if !errors.Is(err, apperr.ErrWrongFlow) {
		t.Fatalf("share create should be refused, got %v", err)
	}
}
