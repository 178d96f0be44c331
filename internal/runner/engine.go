package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/torosent/trafficsim/internal/httpclient"
	"github.com/torosent/trafficsim/internal/response"
	"github.com/torosent/trafficsim/internal/tracing"
)

// ErrAlreadyStarted is returned when Run is called on an engine that is not idle.
var ErrAlreadyStarted = errors.New("engine already started")

// State is the lifecycle of an Engine.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Result captures execution summary.
type Result struct {
	Cycles            int64
	Submitted         int64
	Responses         int64
	Skipped           int64
	TransportFailures int64
	DecodeFailures    int64
	Duration          time.Duration
}

type counters struct {
	cycles            atomic.Int64
	submitted         atomic.Int64
	responses         atomic.Int64
	skipped           atomic.Int64
	transportFailures atomic.Int64
	decodeFailures    atomic.Int64
}

// Engine runs cycles until its duration elapses or its context is cancelled.
type Engine struct {
	opt          Options
	materializer *httpclient.Materializer
	state        atomic.Int32
	counts       counters
}

func New(opt Options) *Engine {
	opt.normalize()
	return &Engine{
		opt:          opt,
		materializer: httpclient.NewMaterializer(opt.Domain, opt.Generator),
	}
}

// State reports where the engine is in its lifecycle.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Stats returns a snapshot of the counters, safe to call while running.
func (e *Engine) Stats() Result {
	return Result{
		Cycles:            e.counts.cycles.Load(),
		Submitted:         e.counts.submitted.Load(),
		Responses:         e.counts.responses.Load(),
		Skipped:           e.counts.skipped.Load(),
		TransportFailures: e.counts.transportFailures.Load(),
		DecodeFailures:    e.counts.decodeFailures.Load(),
	}
}

// Run executes cycles until the configured duration has elapsed since start.
// Cancelling ctx stops the run once the in-flight batch completes. Run may be
// called once per Engine.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return Result{}, ErrAlreadyStarted
	}
	defer e.state.Store(int32(StateCompleted))

	start := e.opt.Now()
	end := start.Add(e.opt.Duration)
	interval := e.opt.Interval()

	var limiter *rate.Limiter
	if e.opt.Schedule == ScheduleFixedRate {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	for cycle := 1; e.opt.Now().Before(end) && ctx.Err() == nil; cycle++ {
		if limiter != nil {
			now := e.opt.Now()
			if !e.wait(ctx, limiter.ReserveN(now, 1).DelayFrom(now), end) {
				break
			}
		}

		e.runCycle(ctx, cycle)

		if limiter == nil && !e.wait(ctx, interval, end) {
			break
		}
	}

	res := e.Stats()
	res.Duration = e.opt.Now().Sub(start)
	return res, nil
}

// wait sleeps for d, cut short at end. It reports whether another cycle may start.
func (e *Engine) wait(ctx context.Context, d time.Duration, end time.Time) bool {
	if remaining := end.Sub(e.opt.Now()); d > remaining {
		d = remaining
	}
	if d > 0 {
		if err := e.opt.Sleep(ctx, d); err != nil {
			return false
		}
	}
	return ctx.Err() == nil && e.opt.Now().Before(end)
}

// runCycle materializes the catalog and blocks until every request in the
// batch has completed.
func (e *Engine) runCycle(ctx context.Context, cycle int) {
	e.counts.cycles.Add(1)
	ctx, span := tracing.StartCycleSpan(ctx, e.opt.Tracer, cycle, len(e.opt.Templates))
	defer span.End()

	batch := make([]*httpclient.MaterializedRequest, 0, len(e.opt.Templates))
	for _, tmpl := range e.opt.Templates {
		req, err := e.materializer.Materialize(tmpl)
		if err != nil {
			e.counts.skipped.Add(1)
			e.opt.Reporter.RecordSkip(cycle, tmpl.DisplayName(), err)
			continue
		}
		batch = append(batch, req)
	}

	var g errgroup.Group
	g.SetLimit(e.opt.Concurrency)
	for _, req := range batch {
		e.counts.submitted.Add(1)
		g.Go(func() error {
			e.dispatch(ctx, cycle, req)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) dispatch(ctx context.Context, cycle int, mr *httpclient.MaterializedRequest) {
	ctx, span := tracing.StartRequestSpan(ctx, e.opt.Tracer, mr.Method, mr.Name, mr.URL)
	if e.opt.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opt.RequestTimeout)
		defer cancel()
	}

	req, err := mr.Build(ctx)
	if err != nil {
		e.fail(cycle, mr.Name, err)
		tracing.EndSpan(span, err)
		return
	}
	if e.opt.Propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	started := time.Now()
	resp, err := e.opt.Client.Do(req)
	latency := time.Since(started)
	if err != nil {
		e.fail(cycle, mr.Name, err)
		tracing.EndSpan(span, err)
		return
	}
	defer resp.Body.Close()

	summary := response.Classify(resp)
	summary.Name = mr.Name
	summary.Cycle = cycle
	summary.Latency = latency
	if summary.Method == "" {
		summary.Method = mr.Method
	}
	if summary.URL == "" {
		summary.URL = mr.URL
	}

	e.counts.responses.Add(1)
	if summary.DecodeErr != nil {
		e.counts.decodeFailures.Add(1)
	}
	e.opt.Reporter.RecordResponse(summary)
	tracing.EndSpan(span, summary.DecodeErr, tracing.StatusAttribute(summary.StatusCode))
}

func (e *Engine) fail(cycle int, name string, err error) {
	e.counts.transportFailures.Add(1)
	e.opt.Reporter.RecordFailure(cycle, name, err)
}
