package collaborator

import (
	"context"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/planintel"
)

// Hints describe the conversation an utterance belongs to. They let a
// model resolve short answers such as "45" or "yes".
type Hints struct {
	// Stage is the conversation stage the utterance arrived in.
	Stage string

	// AwaitingField is the fact the last question asked for, if any.
	AwaitingField string

	// PlanName is the label of the bound plan.
	PlanName string

	// Known are the facts collected so far.
	Known claim.Facts
}

// Collaborator turns free text into claim facts and assessment results
// into prose. Implementations may fail or return wrong data; callers go
// through Resilient.
type Collaborator interface {
	// Extract returns the facts stated in text. Unknown facts stay nil.
	Extract(ctx context.Context, text string, hints Hints) (claim.Facts, error)

	// Narrate explains an assessment in a few sentences.
	Narrate(ctx context.Context, result *eligibility.Result, analysis *planintel.Analysis) (string, error)

	// Name identifies the backend in logs and metrics.
	Name() string
}
