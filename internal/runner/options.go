package runner

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/torosent/trafficsim/internal/catalog"
	"github.com/torosent/trafficsim/internal/httpclient"
	"github.com/torosent/trafficsim/internal/synth"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Schedule selects how the engine waits between cycles.
type Schedule string

const (
	ScheduleFixedDelay Schedule = "fixed-delay"
	ScheduleFixedRate  Schedule = "fixed-rate"
)

const (
	DefaultRequestsPerMinute = 60
	DefaultRequestTimeout    = 30 * time.Second
)

// Options configure the Engine.
type Options struct {
	Templates         []catalog.RequestTemplate
	RequestsPerMinute int           // catalog passes per minute
	Duration          time.Duration // wall-clock length of the run
	Domain            string        // prefix for relative template URLs
	Concurrency       int           // max requests in flight
	Client            Doer
	Generator         *synth.Generator
	Reporter          Reporter
	RequestTimeout    time.Duration // per request, 0 disables
	Schedule          Schedule
	Tracer            trace.Tracer
	Propagate         bool // inject W3C trace headers

	// Now and Sleep drive the schedule. Tests replace them with a fake clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Interval is the wait between cycles for the configured rate.
func (o Options) Interval() time.Duration {
	rpm := o.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	return time.Minute / time.Duration(rpm)
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.RequestsPerMinute <= 0 {
		o.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if o.Duration < 0 {
		o.Duration = 0
	}
	if o.RequestTimeout < 0 {
		o.RequestTimeout = 0
	}
	if o.Schedule == "" {
		o.Schedule = ScheduleFixedDelay
	}
	if o.Generator == nil {
		o.Generator = synth.New(0)
	}
	if o.Client == nil {
		o.Client = httpclient.NewClient(o.RequestTimeout)
	}
	if o.Reporter == nil {
		o.Reporter = Reporters(nil)
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("trafficsim")
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
