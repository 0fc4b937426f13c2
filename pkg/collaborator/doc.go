// Package collaborator provides the natural-language side of the assistant:
// turning free text into claim facts and assessment results into prose.
//
// A model-backed collaborator (LLM) is unreliable by nature. Resilient wraps
// it with a per-call timeout and recovers every failure (timeouts, provider
// errors, malformed JSON, panics) with the deterministic Heuristic, so the
// conversation never sees an error. Failures are logged at warn level and
// reported to an Observer.
//
// Basic usage:
//
//	c, err := collaborator.New(cfg.Collaborator, logger, collaborator.WithObserver(metrics))
//	if err != nil {
//	    return err
//	}
//	facts := c.Extract(ctx, "my father is 67 and needs cataract surgery", collaborator.Hints{})
package collaborator
