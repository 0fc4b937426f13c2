package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
)

// maxPlanLabels bounds the distinct plan label values on assessment metrics.
const maxPlanLabels = 500

// otherLabel replaces label values beyond the cardinality limit.
const otherLabel = "other"

// Collector records the assistant's Prometheus metrics on its own registry.
//
// A disabled or nil Collector is a no-op, so callers never need to check
// whether metrics are on.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	conversation *ConversationMetrics
	assessment   *AssessmentMetrics
	collaborator *CollaboratorMetrics
	store        *StoreMetrics

	planLimiter *CardinalityLimiter
}

// NewCollector creates a collector. If registry is nil a fresh registry is
// created; the default Prometheus registry is never used.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{registry: registry}
	if cfg == nil || !cfg.Enabled {
		return c
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}

	c.enabled = true
	c.conversation = NewConversationMetrics(namespace, registry)
	c.assessment = NewAssessmentMetrics(namespace, registry)
	c.collaborator = NewCollaboratorMetrics(namespace, registry)
	c.store = NewStoreMetrics(namespace, registry)
	c.planLimiter = NewCardinalityLimiter(maxPlanLabels)
	return c
}

// Enabled reports whether metrics are being recorded.
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// RecordTurn records one handled utterance and the stage it ended in.
func (c *Collector) RecordTurn(stage string) {
	if !c.Enabled() {
		return
	}
	c.conversation.turnsTotal.WithLabelValues(stage).Inc()
}

// RecordTransition records a stage change. Self-transitions are ignored.
func (c *Collector) RecordTransition(from, to string) {
	if !c.Enabled() || from == to {
		return
	}
	c.conversation.transitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError records a transition that failed in stage and was routed to
// the error stage. kind is "error" or "panic".
func (c *Collector) RecordError(stage, kind string) {
	if !c.Enabled() {
		return
	}
	c.conversation.errorsTotal.WithLabelValues(stage, kind).Inc()
}

// RecordAssessment records one eligibility evaluation.
//
// Parameters:
//   - eligible: the decision
//   - claimType: "accident", "illness" or "" for the generic flow
//   - planID: the evaluated plan; folded into "other" past the label limit
//   - rejections: the failed check codes
//   - duration: evaluation time
func (c *Collector) RecordAssessment(eligible bool, claimType, planID string, rejections []string, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	outcome := "rejected"
	if eligible {
		outcome = "eligible"
	}
	if claimType == "" {
		claimType = "generic"
	}
	if !c.planLimiter.Allow(planID) {
		planID = otherLabel
	}

	c.assessment.total.WithLabelValues(outcome, claimType, planID).Inc()
	c.assessment.duration.Observe(duration.Seconds())
	for _, code := range rejections {
		c.assessment.rejectionTotal.WithLabelValues(code).Inc()
	}
}

// RecordCollaborator records one collaborator call. It satisfies
// collaborator.Observer.
func (c *Collector) RecordCollaborator(op, outcome string, elapsed time.Duration) {
	if !c.Enabled() {
		return
	}
	c.collaborator.callsTotal.WithLabelValues(op, outcome).Inc()
	c.collaborator.callDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SetActiveSessions sets the number of live sessions.
func (c *Collector) SetActiveSessions(n int) {
	if !c.Enabled() {
		return
	}
	c.store.sessionsActive.Set(float64(n))
}

// RecordEvictions records sessions removed by a sweep.
func (c *Collector) RecordEvictions(n int) {
	if !c.Enabled() || n <= 0 {
		return
	}
	c.store.sessionsEvicted.Add(float64(n))
}

// RecordPlanReload records a plan load. Its signature matches
// plans.ReloadObserver.
func (c *Collector) RecordPlanReload(count int, err error) {
	if !c.Enabled() {
		return
	}
	if err != nil {
		c.store.planReloads.WithLabelValues("error").Inc()
		return
	}
	c.store.planReloads.WithLabelValues("success").Inc()
	c.store.plansLoaded.Set(float64(count))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique values a label may take.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[value]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
