// Package session holds per-conversation state and the keyed, TTL-bounded
// store that owns it. The store controls a session's lifetime only; its
// content is written by the conversation machine through Update.
package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/clarify"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/planintel"
)

// Stage is a conversation state.
type Stage string

const (
	StagePlanSelection     Stage = "plan_selection"
	StageInitialAssessment Stage = "initial_assessment"
	StageDataGathering     Stage = "data_gathering"
	StagePlanAnalysis      Stage = "plan_analysis"
	StageClarification     Stage = "clarification"
	StageFinalAnalysis     Stage = "final_analysis"
	StageFollowUp          Stage = "follow_up"
	StageError             Stage = "error"
)

// DefaultTranscriptLimit bounds the transcript kept per session.
const DefaultTranscriptLimit = 50

// Speaker roles in a transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one transcript entry.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is the state of one conversation.
type Session struct {
	ID     string `json:"id"`
	Stage  Stage  `json:"stage"`
	PlanID string `json:"plan_id,omitempty"`

	Facts    claim.Facts         `json:"facts"`
	Result   *eligibility.Result `json:"result,omitempty"`
	Analysis *planintel.Analysis `json:"analysis,omitempty"`

	// Pending is the clarification queue; the head is being asked.
	Pending []clarify.Clarification `json:"pending,omitempty"`

	// Attempts counts unrecognized answers to the head of Pending.
	Attempts int `json:"attempts,omitempty"`

	// Asked lists the clarification fields already asked in this analysis
	// pass, answered or dropped.
	Asked []string `json:"asked,omitempty"`

	// AwaitingField is the required fact asked for during data gathering.
	AwaitingField string `json:"awaiting_field,omitempty"`

	Transcript []Turn `json:"transcript,omitempty"`

	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`

	// Version increments on every committed update.
	Version int64 `json:"version"`
}

// NewID returns a fresh session ID.
func NewID() string {
	return uuid.New().String()
}

// New creates an empty session.
func New(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Stage:        StagePlanSelection,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Clone returns a copy that can be modified without affecting s. Result
// and Analysis are shared: they are replaced on every pass, never patched.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Facts = s.Facts.Clone()
	out.Pending = append([]clarify.Clarification(nil), s.Pending...)
	out.Asked = append([]string(nil), s.Asked...)
	out.Transcript = append([]Turn(nil), s.Transcript...)
	return &out
}

// MarshalSnapshot encodes the session for persistence.
func (s *Session) MarshalSnapshot() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session %s: %w", s.ID, err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a session written by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (*Session, error) {
	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return s, nil
}

// AddTurn appends to the transcript, dropping the oldest turns beyond limit.
func (s *Session) AddTurn(role, text string, at time.Time, limit int) {
	if limit <= 0 {
		limit = DefaultTranscriptLimit
	}
	s.Transcript = append(s.Transcript, Turn{Role: role, Text: text, At: at})
	if over := len(s.Transcript) - limit; over > 0 {
		s.Transcript = append([]Turn(nil), s.Transcript[over:]...)
	}
}

// Head returns the clarification being asked.
func (s *Session) Head() (clarify.Clarification, bool) {
	if len(s.Pending) == 0 {
		return clarify.Clarification{}, false
	}
	return s.Pending[0], true
}

// PopHead removes the head of the clarification queue and records its
// field as asked.
func (s *Session) PopHead() {
	if len(s.Pending) > 0 {
		if field := s.Pending[0].Field; !slices.Contains(s.Asked, field) {
			s.Asked = append(s.Asked, field)
		}
		s.Pending = s.Pending[1:]
	}
	s.Attempts = 0
}

// ResetFacts clears everything learned about the claim. The plan binding
// and transcript are kept.
func (s *Session) ResetFacts() {
	s.Facts = claim.Facts{}
	s.Result = nil
	s.Analysis = nil
	s.Pending = nil
	s.Asked = nil
	s.Attempts = 0
	s.AwaitingField = ""
}
