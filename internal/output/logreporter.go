package output

import (
	log "github.com/sirupsen/logrus"

	"github.com/torosent/trafficsim/internal/metrics"
	"github.com/torosent/trafficsim/internal/response"
)

// LogReporter writes one log line per response and a warning for every
// skipped template or failed request.
type LogReporter struct {
	logger   log.FieldLogger
	bodyPath string
}

// NewLogReporter returns a reporter logging through logger. When bodyPath is
// set, the matching value of each structured body is attached as a field.
func NewLogReporter(logger log.FieldLogger, bodyPath string) *LogReporter {
	return &LogReporter{logger: logger, bodyPath: bodyPath}
}

func (r *LogReporter) RecordResponse(s *response.Summary) {
	if s == nil {
		return
	}
	entry := r.logger.WithFields(log.Fields{
		"cycle":      s.Cycle,
		"template":   s.Name,
		"status":     s.StatusCode,
		"latency_ms": s.Latency.Milliseconds(),
		"body_kind":  s.Body.Kind.String(),
	})
	if r.bodyPath != "" {
		if value, ok := s.Lookup(r.bodyPath); ok {
			entry = entry.WithField("body", value)
		}
	}
	if s.DecodeErr != nil {
		entry = entry.WithError(s.DecodeErr)
	}
	entry.Infof("Response for %s: %d", s.URL, s.StatusCode)
}

func (r *LogReporter) RecordSkip(cycle int, name string, err error) {
	r.logger.WithFields(log.Fields{
		"cycle":    cycle,
		"template": name,
	}).Warn(err)
}

func (r *LogReporter) RecordFailure(cycle int, name string, err error) {
	r.logger.WithFields(log.Fields{
		"cycle":      cycle,
		"template":   name,
		"error_type": metrics.FriendlyErrorName(metrics.ErrorType(err)),
	}).Warnf("Request failed: %v", err)
}
