package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := New(handler, 0, time.Second, time.Second, 2*time.Second, logger)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	started := make(chan struct{})
	srv.Go("ticker", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		record("worker")
	})
	srv.OnShutdown("store", func(context.Context) error {
		record("store")
		return nil
	})
	srv.OnShutdown("cache", func(context.Context) error {
		record("cache")
		return errors.New("close failed")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not start")
	}

	resp, err := http.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want 418", resp.StatusCode)
	}

	cancel()

	select {
	case err := <-errCh:
		if err == nil || err.Error() != "close failed" {
			t.Errorf("Serve error = %v, want close failed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"worker", "cache", "store"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}
