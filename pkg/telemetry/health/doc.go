// Package health provides liveness and readiness checks for the assistant.
//
// The chat command registers a required "plans" check that fails while the
// plan registry is empty and, when snapshots are enabled, an optional
// "sessions" check that pings the SQLite database. The endpoints share the
// metrics listener:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("plans", health.PlansCheck(manager.Registry().Count, manager.LastLoadError))
//	checker.RegisterOptional("sessions", health.PingCheck(snapshots))
//	collector.Serve(ctx, addr, path, logger, checker.Mount)
package health
