// Package rules maps classified intents to recommended actions. Evaluation is
// a pure function over a fixed table: no I/O, deterministic for a given
// evaluator configuration.
package rules

// Well-known actions that are not intent-specific
const (
	// ActionNeedsHumanReview replaces the mapped action when confidence is
	// below the evaluator's threshold
	ActionNeedsHumanReview = "needs_human_review"

	// ActionManualTriage is the default for intent labels not in the table.
	// Unrecognized labels are an expected runtime condition, never an error.
	ActionManualTriage = "manual_triage"
)

// Strength grades how firmly the recommendation should be presented
type Strength string

const (
	// StrengthFirm means the confidence cleared the threshold
	StrengthFirm Strength = "firm"
	// StrengthTentative means the recommendation was confidence-gated
	StrengthTentative Strength = "tentative"
)

// DefaultConfidenceThreshold gates recommendations when the caller does not
// configure one.
const DefaultConfidenceThreshold = 0.6

// Recommendation is the evaluator's output for one intent/confidence pair
type Recommendation struct {
	// Action to suggest to the human
	Action string
	// MappedAction is the table action, retained as metadata when the
	// recommendation was downgraded to needs_human_review
	MappedAction string
	// RequiredFields the action needs filled in before execution
	RequiredFields []string
	// Strength of the recommendation
	Strength Strength
}

// actionRule is one row of the intent→action table
type actionRule struct {
	action         string
	requiredFields []string
}

// intentTable maps intent labels to their base action. Labels observed from
// the classifier vary for the same meaning, so several spellings map to one
// action.
var intentTable = map[string]actionRule{
	"refund_request":                       {action: "draft_refund_response", requiredFields: []string{"order_id", "amount"}},
	"interested":                           {action: "send_pricing"},
	"request_details":                      {action: "send_pricing"},
	"request_group_availability_and_rates": {action: "send_group_rates", requiredFields: []string{"group_size", "dates"}},
	"group_availability":                   {action: "send_group_rates", requiredFields: []string{"group_size", "dates"}},
	"not_interested":                       {action: "close_thread"},
	"cancel_request":                       {action: "start_cancellation_flow", requiredFields: []string{"booking_reference"}},
	"cancel_booking_and_request_refund":    {action: "start_cancellation_flow", requiredFields: []string{"booking_reference"}},
	"escalation":                           {action: "escalate_to_manager"},
	"request_escalation_to_manager":        {action: "escalate_to_manager"},
}

// Evaluator maps intent/confidence pairs to action recommendations
type Evaluator struct {
	threshold float64
}

// NewEvaluator creates an Evaluator with the given confidence threshold
func NewEvaluator(threshold float64) *Evaluator {
	return &Evaluator{threshold: threshold}
}

// NewDefaultEvaluator creates an Evaluator with DefaultConfidenceThreshold
func NewDefaultEvaluator() *Evaluator {
	return NewEvaluator(DefaultConfidenceThreshold)
}

// Threshold returns the configured confidence threshold
func (e *Evaluator) Threshold() float64 {
	return e.threshold
}

// Evaluate maps an intent and confidence to a recommendation. Intents missing
// from the table map to manual_triage with no required fields. Below the
// threshold the action is downgraded to needs_human_review regardless of the
// mapping; the table action is kept in MappedAction for the human.
func (e *Evaluator) Evaluate(intent string, confidence float64) Recommendation {
	rule, ok := intentTable[intent]
	if !ok {
		rule = actionRule{action: ActionManualTriage}
	}

	rec := Recommendation{
		Action:         rule.action,
		MappedAction:   rule.action,
		RequiredFields: rule.requiredFields,
		Strength:       StrengthFirm,
	}

	if confidence < e.threshold {
		rec.Action = ActionNeedsHumanReview
		rec.Strength = StrengthTentative
	}

	return rec
}
