package runner

import "github.com/torosent/trafficsim/internal/response"

// Reporter receives the outcome of every template in every cycle.
// RecordResponse and RecordFailure are called from executor goroutines, so
// implementations must be safe for concurrent use.
type Reporter interface {
	RecordResponse(summary *response.Summary)
	RecordSkip(cycle int, name string, err error)
	RecordFailure(cycle int, name string, err error)
}

// Reporters fans every call out to each reporter in order.
type Reporters []Reporter

func (rs Reporters) RecordResponse(summary *response.Summary) {
	for _, r := range rs {
		r.RecordResponse(summary)
	}
}

func (rs Reporters) RecordSkip(cycle int, name string, err error) {
	for _, r := range rs {
		r.RecordSkip(cycle, name, err)
	}
}

func (rs Reporters) RecordFailure(cycle int, name string, err error) {
	for _, r := range rs {
		r.RecordFailure(cycle, name, err)
	}
}
