// Package metrics aggregates per-response results of a simulation run.
//
// The [Collector] is fed by the dispatch engine through its reporter methods:
//
//	collector := metrics.NewCollector()
//	collector.Start()
//	collector.RecordResponse(summary)           // one per completed response
//	collector.RecordSkip(cycle, name, err)      // template rejected this cycle
//	collector.RecordFailure(cycle, name, err)   // transport failure, no response
//
//	stats := collector.Stats(elapsed)
//
// Latencies are tracked with an HDR histogram; status codes, skip reasons and
// transport error types are counted. All methods are safe for concurrent use.
package metrics
