package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultInterval is the refresh cadence.
const DefaultInterval = 5 * time.Minute

// Ticker is the subset of *time.Ticker the poller needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker for the given interval.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

// Cycler is what the poller drives; *Pipeline implements it.
type Cycler interface {
	RunCycle(ctx context.Context) error
}

// ErrAlreadyRunning is returned by Start on a running poller.
var ErrAlreadyRunning = errors.New("poller already running")

// Poller runs one cycle immediately, then one per tick, until Stop or context cancel.
// Cycles never overlap: a slow cycle delays the next tick instead of stacking.
type Poller struct {
	Cycler    Cycler
	Interval  time.Duration
	NewTicker TickerFunc

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	cycles   int
	failures int
}

// Start runs the first cycle synchronously and returns its error (which does not stop
// the poller), then schedules the rest in a goroutine.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.done != nil {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	newTicker := p.NewTicker
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()

	firstErr := p.run(ctx)
	t := newTicker(interval)
	L().Info("poller started", zap.Duration("interval", interval))
	go func() {
		defer close(done)
		defer p.release(done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C():
				if ctx.Err() != nil {
					return
				}
				_ = p.run(ctx)
			}
		}
	}()
	return firstErr
}

func (p *Poller) run(ctx context.Context) error {
	err := p.Cycler.RunCycle(ctx)
	p.mu.Lock()
	p.cycles++
	if err != nil {
		p.failures++
	}
	p.mu.Unlock()
	return err
}

// release forgets the run owning done, so the poller can be started again after its
// context was cancelled without a Stop.
func (p *Poller) release(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != done {
		return
	}
	p.cancel()
	p.cancel, p.done = nil, nil
}

// Stop cancels the loop and waits for an in-flight cycle to finish. Safe to call twice.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	L().Info("poller stopped")
}

// Done is closed when the loop exits; nil when not running.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Stats reports cycles run and how many failed.
func (p *Poller) Stats() (cycles, failures int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cycles, p.failures
}
