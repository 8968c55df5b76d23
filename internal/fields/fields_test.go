package fields

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

type fakeBackend struct {
	creates int
	claims  int
	fail    error
}

func (b *fakeBackend) CreateField(ctx context.Context, req CreateRequest) (*model.SignatureField, error) {
	b.creates++
	if b.fail != nil {
		return nil, b.fail
	}
	// Mimic the API: echo only id, page and position.
	return &model.SignatureField{
		ID:       fmt.Sprintf("sig-%d", b.creates),
		Page:     req.Page,
		Position: req.Position,
	}, nil
}

func (b *fakeBackend) ClaimField(ctx context.Context, id string, status model.FieldStatus, signer string) (*model.SignatureField, error) {
	b.claims++
	if b.fail != nil {
		return nil, b.fail
	}
	return &model.SignatureField{ID: id, Status: status, SignedBy: signer}, nil
}

func pending(id string, page int) model.SignatureField {
	return model.SignatureField{ID: id, DocumentID: "doc1", Page: page, Status: model.StatusPending}
}

func TestCreateAppendsInOrder(t *testing.T) {
	be := &fakeBackend{}
	m := New("doc1", be, []model.SignatureField{pending("a", 1)}, nil)
	m.SetPageCount(3)
	for i := 0; i < 2; i++ {
		f, err := m.Create(context.Background(), 2, model.Position{X: 10, Y: 20}, model.KindSignature, "Jane")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if f.Status != model.StatusPending || f.Kind != model.KindSignature || f.DocumentID != "doc1" || f.Value != "Jane" {
			t.Fatalf("unexpected field %+v", f)
		}
	}
	got := m.Fields()
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "sig-1" || got[2].ID != "sig-2" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	be := &fakeBackend{}
	m := New("doc1", be, nil, nil)
	m.SetPageCount(2)
	cases := []struct {
		name  string
		page  int
		pos   model.Position
		kind  model.FieldKind
		value string
	}{
		{"negative x", 1, model.Position{X: -0.1, Y: 5}, model.KindSignature, "v"},
		{"y over 100", 1, model.Position{X: 5, Y: 100.01}, model.KindSignature, "v"},
		{"page zero", 0, model.Position{X: 5, Y: 5}, model.KindSignature, "v"},
		{"page beyond count", 3, model.Position{X: 5, Y: 5}, model.KindSignature, "v"},
		{"unknown kind", 1, model.Position{X: 5, Y: 5}, model.FieldKind("stamp"), "v"},
		{"empty value", 1, model.Position{X: 5, Y: 5}, model.KindInitial, ""},
	}
	for _, tc := range cases {
		_, err := m.Create(context.Background(), tc.page, tc.pos, tc.kind, tc.value)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
	if be.creates != 0 {
		t.Fatalf("invalid fields must not reach the backend, got %d calls", be.creates)
	}
	if m.Len() != 0 {
		t.Fatalf("list must stay empty")
	}
}

func TestCreateWithUnknownPageCountAcceptsAnyPage(t *testing.T) {
	m := New("doc1", &fakeBackend{}, nil, nil)
	if _, err := m.Create(context.Background(), 9, model.Position{X: 0, Y: 100}, model.KindSignature, "v"); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestCreateBackendFailureLeavesListUntouched(t *testing.T) {
	be := &fakeBackend{fail: apperr.Transport("save", 500, "Failed to save signature.", nil)}
	m := New("doc1", be, nil, nil)
	if _, err := m.Create(context.Background(), 1, model.Position{X: 1, Y: 1}, model.KindSignature, "v"); apperr.KindOf(err) != apperr.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("failed create must not be listed")
	}
}

func TestClaimReplacesInPlace(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time { return fixed }
	defer func() { now = prev }()

	be := &fakeBackend{}
	m := New("doc1", be, []model.SignatureField{pending("a", 1), pending("b", 1), pending("c", 2)}, nil)
	f, err := m.Claim(context.Background(), "b", model.StatusSigned, "  Jane Doe ")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if f.SignedBy != "Jane Doe" || f.SignedAt == nil || !f.SignedAt.Equal(fixed) {
		t.Fatalf("unexpected claimed field %+v", f)
	}
	got := m.Fields()
	if got[1].ID != "b" || got[1].Status != model.StatusSigned || got[1].Page != 1 {
		t.Fatalf("expected in-place replacement, got %+v", got)
	}
	if got[0].Status != model.StatusPending || got[2].Status != model.StatusPending {
		t.Fatalf("other fields must not change")
	}
}

func TestClaimTerminalFieldFails(t *testing.T) {
	be := &fakeBackend{}
	m := New("doc1", be, []model.SignatureField{pending("a", 1)}, nil)
	first, err := m.Claim(context.Background(), "a", model.StatusSigned, "Jane")
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	for _, status := range []model.FieldStatus{model.StatusSigned, model.StatusDeclined} {
		_, err := m.Claim(context.Background(), "a", status, "Mallory")
		if !errors.Is(err, apperr.ErrTerminal) || apperr.KindOf(err) != apperr.KindState {
			t.Fatalf("expected ErrTerminal, got %v", err)
		}
	}
	after, _ := m.Get("a")
	if after.SignedBy != "Jane" || !after.SignedAt.Equal(*first.SignedAt) || after.Status != model.StatusSigned {
		t.Fatalf("terminal field changed: %+v", after)
	}
	if be.claims != 1 {
		t.Fatalf("expected a single backend claim, got %d", be.claims)
	}
}

func TestClaimUnknownAndInvalid(t *testing.T) {
	m := New("doc1", &fakeBackend{}, []model.SignatureField{pending("a", 1)}, nil)
	if _, err := m.Claim(context.Background(), "zzz", model.StatusSigned, "Jane"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := m.Claim(context.Background(), "a", model.StatusPending, "Jane"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation for pending target, got %v", err)
	}
	if _, err := m.Claim(context.Background(), "a", model.StatusSigned, "   "); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation for empty signer, got %v", err)
	}
}

func TestFirstPending(t *testing.T) {
	signed := pending("x", 1)
	signed.Status = model.StatusSigned
	m := New("doc1", &fakeBackend{}, []model.SignatureField{signed, pending("p2", 2), pending("p1", 1), pending("p1b", 1)}, nil)
	if f, ok := m.FirstPending(1); !ok || f.ID != "p1" {
		t.Fatalf("expected p1, got %+v %v", f, ok)
	}
	if f, ok := m.FirstPending(0); !ok || f.ID != "p2" {
		t.Fatalf("expected p2 for any page, got %+v %v", f, ok)
	}
	if _, ok := m.FirstPending(3); ok {
		t.Fatalf("no pending field on page 3")
	}
}
