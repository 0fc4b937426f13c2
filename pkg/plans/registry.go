package plans

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

// minMatchLen is the shortest string used for substring matching.
const minMatchLen = 3

// Repository is the read side of the plan store used by the conversation.
type Repository interface {
	// Get returns the plan with the given ID, or an error matching
	// ErrPlanNotFound.
	Get(planID string) (*policydoc.Document, error)

	// List returns a summary of every plan, sorted by ID.
	List() []Summary

	// Resolve finds the plan a user refers to by ID or name.
	Resolve(text string) (*policydoc.Document, bool)
}

// Summary describes a plan for listings.
type Summary struct {
	ID       string `json:"id" yaml:"id"`
	Company  string `json:"company,omitempty" yaml:"company,omitempty"`
	PlanName string `json:"plan_name,omitempty" yaml:"plan_name,omitempty"`
}

// Label is the display name of the plan.
func (s Summary) Label() string {
	switch {
	case s.Company != "" && s.PlanName != "":
		return s.Company + " " + s.PlanName
	case s.PlanName != "":
		return s.PlanName
	default:
		return s.ID
	}
}

// Registry is a thread-safe in-memory plan store. Reloads replace the whole
// set atomically.
type Registry struct {
	mu       sync.RWMutex
	plans    map[string]*policydoc.Document
	version  string
	loadTime time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plans:    make(map[string]*policydoc.Document),
		loadTime: time.Now(),
	}
}

// Replace atomically replaces the plan set.
func (r *Registry) Replace(docs []*policydoc.Document) error {
	next := make(map[string]*policydoc.Document, len(docs))
	for _, doc := range docs {
		if doc == nil {
			return fmt.Errorf("plan cannot be nil")
		}
		if doc.ID() == "" {
			return fmt.Errorf("plan id cannot be empty")
		}
		next[doc.ID()] = doc
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.plans = next
	r.loadTime = time.Now()
	r.updateVersion()
	return nil
}

// Get returns a plan by ID.
func (r *Registry) Get(planID string) (*policydoc.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.plans[planID]
	if !ok {
		return nil, &NotFoundError{PlanID: planID}
	}
	return doc, nil
}

// List returns every plan summary sorted by ID.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, 0, len(r.plans))
	for _, id := range r.sortedIDs() {
		out = append(out, summarize(r.plans[id]))
	}
	return out
}

// Resolve matches text against plan IDs and names: exact matches first,
// then substring matches in either direction. Ties go to the lowest ID.
func (r *Registry) Resolve(text string) (*policydoc.Document, bool) {
	needle := fold(text)
	if needle == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.sortedIDs()
	for _, id := range ids {
		doc := r.plans[id]
		for _, name := range names(doc) {
			if name == needle {
				return doc, true
			}
		}
	}
	for _, id := range ids {
		doc := r.plans[id]
		for _, name := range names(doc) {
			if len(name) >= minMatchLen && strings.Contains(needle, name) {
				return doc, true
			}
			if len(needle) >= minMatchLen && strings.Contains(name, needle) {
				return doc, true
			}
		}
	}
	return nil, false
}

// Count returns the number of plans.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plans)
}

// Version changes whenever the plan set changes.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadTime returns when the plan set was last replaced.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

func (r *Registry) sortedIDs() []string {
	ids := make([]string, 0, len(r.plans))
	for id := range r.plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// updateVersion must be called with the write lock held.
func (r *Registry) updateVersion() {
	h := sha256.New()
	for _, id := range r.sortedIDs() {
		doc := r.plans[id]
		h.Write([]byte(id))
		h.Write([]byte(doc.Company()))
		h.Write([]byte(doc.PlanName()))
	}
	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}

func summarize(doc *policydoc.Document) Summary {
	return Summary{ID: doc.ID(), Company: doc.Company(), PlanName: doc.PlanName()}
}

// names returns the folded strings a plan can be referred to by.
func names(doc *policydoc.Document) []string {
	s := summarize(doc)
	out := []string{fold(s.ID)}
	if s.PlanName != "" {
		out = append(out, fold(s.PlanName))
	}
	if s.Company != "" && s.PlanName != "" {
		out = append(out, fold(s.Label()))
	}
	return out
}

func fold(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
