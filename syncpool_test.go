package docflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSyncPoolRunBeforeStartFallsBackInline(t *testing.T) {
	sp := NewSyncPool(2, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var ran bool
	err := sp.Run(func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("expected fn to run inline when pool was never started")
	}
}

func TestSyncPoolRunPropagatesError(t *testing.T) {
	sp := NewSyncPool(2, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sp.Start(context.Background())
	defer func() { <-sp.Stop() }()

	wantErr := errors.New("boom")
	err := sp.Run(func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestSyncPoolBoundsConcurrency(t *testing.T) {
	const size = 2
	sp := NewSyncPool(size, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sp.Start(context.Background())
	defer func() { <-sp.Stop() }()

	var inFlight int32
	var maxInFlight int32
	var mu sync.Mutex
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < size+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sp.Run(func() error {
				n := atomic.AddInt32(&inFlight, 1)
				mu.Lock()
				if n > maxInFlight {
					maxInFlight = n
				}
				mu.Unlock()
				<-release
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if maxInFlight > size {
		t.Fatalf("maxInFlight = %d, want <= %d", maxInFlight, size)
	}
}

func TestSyncPoolRunAfterStopFallsBackInline(t *testing.T) {
	sp := NewSyncPool(2, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sp.Start(context.Background())
	<-sp.Stop()

	var ran bool
	err := sp.Run(func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("expected fn to run inline after Stop")
	}
}
