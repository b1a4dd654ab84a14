// Package metrics collects gateway metrics off the request path.
//
// Listener actions emit events into a buffered channel; a single collector
// goroutine folds them into counters per listener rule and per target:
//   - requests routed by each rule
//   - responses per target with latency percentiles (P50, P95, P99)
//   - status code distribution
//   - target health
//
// Emit never blocks: when the buffer is full the event is dropped. The
// collector drains buffered events when its context is cancelled.
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//	collector.Emit(metrics.Event{Type: metrics.EventRequestRouted, Rule: "fortune"})
//	snapshot := collector.Snapshot("round_robin")
package metrics
