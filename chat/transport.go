package chat

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Request is what a transport sends for one turn.
type Request struct {
	Model    string
	Messages []Message
}

// Transport sends a transcript to an inference server and hands every
// fragment of the streamed reply to emit, in arrival order. It returns once
// the stream closes.
type Transport interface {
	Stream(ctx context.Context, req Request, emit func(Fragment)) error
}

// idleTimer cancels a request when the stream goes quiet for longer than d.
// A zero d never fires.
type idleTimer struct {
	d      time.Duration
	t      *time.Timer
	cancel context.CancelFunc
	fired  atomic.Bool
}

func startIdleTimer(ctx context.Context, d time.Duration) (context.Context, *idleTimer) {
	ctx, cancel := context.WithCancel(ctx)
	it := &idleTimer{d: d, cancel: cancel}
	if d > 0 {
		it.t = time.AfterFunc(d, func() {
			it.fired.Store(true)
			cancel()
		})
	}
	return ctx, it
}

func (it *idleTimer) Reset() {
	if it.t != nil && !it.fired.Load() {
		it.t.Reset(it.d)
	}
}

func (it *idleTimer) Stop() {
	if it.t != nil {
		it.t.Stop()
	}
	it.cancel()
}

// wrap classifies a transport failure as a connection error, noting a stall
// when the idle timer caused it.
func (it *idleTimer) wrap(err error) error {
	if it.fired.Load() {
		return fmt.Errorf("%w: %w after %s", ErrConnection, ErrStalled, it.d)
	}
	return fmt.Errorf("%w: %w", ErrConnection, err)
}
