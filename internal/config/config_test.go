package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VDOCSIGN_API_URL", "")
	t.Setenv("VDOCSIGN_TIMEOUT", "")
	t.Setenv("VDOCSIGN_WORKERS", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected api url %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != defaultTimeout || cfg.ArchiveWorkers != defaultWorkerCount {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverridesAndFallbacks(t *testing.T) {
	t.Setenv("VDOCSIGN_API_URL", "https://sign.example.com/api/")
	t.Setenv("VDOCSIGN_TIMEOUT", "5s")
	t.Setenv("VDOCSIGN_WORKERS", "-3")
	t.Setenv("VDOCSIGN_S3_USE_SSL", "true")
	t.Setenv("VDOCSIGN_REDIS_DB", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://sign.example.com/api" {
		t.Fatalf("trailing slash should be trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.RequestTimeout)
	}
	if cfg.ArchiveWorkers != defaultWorkerCount {
		t.Fatalf("non-positive worker count should fall back, got %d", cfg.ArchiveWorkers)
	}
	if !cfg.S3UseSSL || cfg.RedisDB != 0 {
		t.Fatalf("unexpected parsed values %+v", cfg)
	}
}

func TestFileURL(t *testing.T) {
	cfg := &Config{FileBaseURL: "http://localhost:5000"}
	cases := map[string]string{
		"/uploads/a.pdf":        "http://localhost:5000/uploads/a.pdf",
		"uploads/a.pdf":         "http://localhost:5000/uploads/a.pdf",
		"https://cdn.x/y/a.pdf": "https://cdn.x/y/a.pdf",
	}
	for in, want := range cases {
		if got := cfg.FileURL(in); got != want {
			t.Errorf("FileURL(%q) = %q, want %q", in, got, want)
		}
	}
}
