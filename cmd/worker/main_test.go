package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

type fakeServer struct {
	startErr  error
	starts    int
	shutdowns int
}

func (f *fakeServer) Start(asynq.Handler) error {
	f.starts++
	return f.startErr
}

func (f *fakeServer) Shutdown() { f.shutdowns++ }

func TestServeShutsDownOnceOnCancel(t *testing.T) {
	srv := &fakeServer{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, asynq.NewServeMux()) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("serve did not return after cancel")
	}
	if srv.starts != 1 || srv.shutdowns != 1 {
		t.Fatalf("expected one start and one shutdown, got %d and %d", srv.starts, srv.shutdowns)
	}
}

func TestServeReturnsStartError(t *testing.T) {
	srv := &fakeServer{startErr: errors.New("redis unreachable")}
	if err := serve(context.Background(), srv, asynq.NewServeMux()); err == nil {
		t.Fatalf("expected start error")
	}
	if srv.shutdowns != 0 {
		t.Fatalf("shutdown should not run when start fails")
	}
}
