package internal

import (
	"context"
	"time"
)

// TimerHandler runs one iteration of a periodic activity.
type TimerHandler func(context.Context)

// TimerTask runs a handler immediately and then on a fixed interval
// until stopped. The zero value is ready to use; Start must be called
// before Stop.
type TimerTask struct {
	cancel context.CancelFunc
	done   DoneChan
}

func (t *TimerTask) loop(ctx context.Context, h TimerHandler, interval time.Duration) {
	defer close(t.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	h(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h(ctx)
		}
	}
}

// Start launches the periodic loop in a new goroutine.
func (t *TimerTask) Start(ctx context.Context, h TimerHandler, interval time.Duration) {
	t.done = make(DoneChan)
	ctx, t.cancel = context.WithCancel(ctx)
	go t.loop(ctx, h, interval)
}

// Stop cancels the loop and returns the channel that closes once the
// in-flight handler call, if any, has returned.
func (t *TimerTask) Stop() DoneChan {
	t.cancel()
	return t.done
}
