package credstore

import (
	"os"
	"path/filepath"
	"testing"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	if HasToken(s) {
		t.Fatalf("new store must be empty")
	}
	if err := s.Set(KeyToken, "abc"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.Set(KeyUser, `{"email":"a@b.c"}`); err != nil {
		t.Fatalf("set user: %v", err)
	}
	if v, ok := s.Get(KeyToken); !ok || v != "abc" {
		t.Fatalf("expected token abc, got %q %v", v, ok)
	}
	if !HasToken(s) {
		t.Fatalf("expected token present")
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := s.Get(KeyUser); ok {
		t.Fatalf("clear must drop every key")
	}
	if HasToken(s) {
		t.Fatalf("clear must drop the token")
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	exercise(t, NewFileStore(path))
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := NewFileStore(path).Set(KeyToken, "persisted"); err != nil {
		t.Fatalf("set: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
	if v, ok := NewFileStore(path).Get(KeyToken); !ok || v != "persisted" {
		t.Fatalf("expected persisted token, got %q %v", v, ok)
	}
}

func TestHasTokenNilStore(t *testing.T) {
	if HasToken(nil) {
		t.Fatalf("nil store has no token")
	}
}
