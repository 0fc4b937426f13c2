// Package metrics provides Prometheus metrics for the insurance assistant.
//
// # Metrics Categories
//
//   - Conversation: turns, stage transitions, error-stage entries
//   - Assessment: evaluations by outcome, duration, rejection codes
//   - Collaborator: calls by operation and outcome, latency
//   - Store: active and evicted sessions, loaded plans, plan reloads
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordTransition("data_gathering", "plan_analysis")
//
//	go collector.Serve(ctx, cfg.Telemetry.Metrics.Address, cfg.Telemetry.Metrics.Path, logger)
//
// The collector owns its registry; nothing is registered with the global
// Prometheus registry. A disabled collector records nothing and exposes an
// empty registry.
package metrics
