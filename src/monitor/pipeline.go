package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iafilius/WormChart/src/ingest"
	"github.com/iafilius/WormChart/src/render"
)

// Sink receives every successful render, e.g. to write files or refresh a window.
type Sink interface {
	Publish(ctx context.Context, f render.Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, f render.Frame) error

func (fn SinkFunc) Publish(ctx context.Context, f render.Frame) error { return fn(ctx, f) }

// CycleResult describes one fetch/parse/render pass.
type CycleResult struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Report   ingest.Report
	Total    string
	Err      error
}

// Pipeline runs fetch -> parse -> render -> publish against one shared render context.
type Pipeline struct {
	Source   Source
	Context  *render.Context
	Sinks    []Sink
	Location *time.Location
	// Timeout bounds one whole cycle; zero means no extra deadline.
	Timeout time.Duration
	// Now is overridable in tests.
	Now func() time.Time

	mu   sync.Mutex
	last CycleResult
	runs int
}

// RunCycle never panics. Failures are logged with the cycle id and returned; the render
// context keeps whatever was drawn last.
func (p *Pipeline) RunCycle(ctx context.Context) (err error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	res := CycleResult{ID: uuid.NewString(), Started: now()}
	log := L().With(zap.String("cycle", res.ID), zap.Stringer("source", p.Source))
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("cycle panic: %v", r)
			log.Error("cycle aborted", zap.Any("panic", r))
		}
		res.Err = err
		res.Duration = now().Sub(res.Started)
		p.mu.Lock()
		p.last = res
		p.runs++
		p.mu.Unlock()
	}()

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	rc, err := p.Source.Open(ctx)
	if err != nil {
		log.Error("fetch failed", zap.Error(err))
		return errors.Wrap(err, "fetch")
	}
	series, rep, err := ingest.Parse(rc, p.Location)
	rc.Close()
	res.Report = rep
	log.Debug("parsed", zap.Int("rows", rep.Rows), zap.Int("kept", rep.Kept), zap.Int("dropped", rep.Dropped()))
	if err != nil && !errors.Is(err, ingest.ErrNoValidData) {
		log.Error("parse failed", zap.Error(err))
		return errors.Wrap(err, "parse")
	}
	if err := p.Context.Render(series, now()); err != nil {
		if errors.Is(err, render.ErrEmptySeries) {
			log.Warn("no valid data to plot", zap.Int("rows", rep.Rows))
		} else {
			log.Error("render failed", zap.Error(err))
		}
		return errors.Wrap(err, "render")
	}
	frame, _ := p.Context.Snapshot()
	res.Total = frame.Total
	log.Info("rendered", zap.String("total", frame.Total), zap.Int("points", len(series)))

	var firstErr error
	for _, s := range p.Sinks {
		if err := s.Publish(ctx, frame); err != nil {
			log.Error("publish failed", zap.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrap(err, "publish")
			}
		}
	}
	return firstErr
}

// Last returns the most recent cycle result and how many cycles ran.
func (p *Pipeline) Last() (CycleResult, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.runs
}
