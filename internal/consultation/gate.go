package consultation

import (
	"fmt"
	"regexp"
	"strings"
)

// Step indexes the linear guided wizard flow. Steps advance one at a time
// with no branching or skipping.
type Step int

const (
	// StepServiceType asks what kind of project the client needs.
	StepServiceType Step = 1
	// StepSizeAndBudget asks for rough scale and budget range.
	StepSizeAndBudget Step = 2
	// StepTimelineAndFeatures asks for the delivery window and optional features.
	StepTimelineAndFeatures Step = 3
	// StepContact collects the requester's contact block and submits.
	StepContact Step = 4

	// FirstStep and LastStep bound the valid step range.
	FirstStep = StepServiceType
	LastStep  = StepContact
)

// Field names reported by the gate. They match the JSON field names the
// intake API accepts so the UI can highlight the offending inputs directly.
const (
	FieldServiceType  = "serviceType"
	FieldProjectSize  = "projectSize"
	FieldBudget       = "budget"
	FieldTimeline     = "timeline"
	FieldContactName  = "contact.name"
	FieldContactPhone = "contact.phone"
	FieldContactEmail = "contact.email"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)
	// Permissive: digits with common separators, optional leading +.
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 .()\-]{6,19}$`)
)

// ValidationBlockedError reports a refused forward transition together with
// the fields that are missing or invalid at the current step. It is always
// recoverable: the caller corrects the inputs and advances again.
type ValidationBlockedError struct {
	Step    Step
	Missing []string
}

func (e *ValidationBlockedError) Error() string {
	return fmt.Sprintf("consultation: step %d blocked, missing %s", e.Step, strings.Join(e.Missing, ", "))
}

// MissingFields evaluates the forward-transition gate for the given step and
// returns the names of required fields that are unset or invalid. An empty
// result means the transition is permitted.
func MissingFields(step Step, draft *Draft) []string {
	var missing []string
	switch step {
	case StepServiceType:
		if draft.ServiceType() == "" {
			missing = append(missing, FieldServiceType)
		}
	case StepSizeAndBudget:
		if draft.ProjectSize() == "" {
			missing = append(missing, FieldProjectSize)
		}
		if draft.Budget() == "" {
			missing = append(missing, FieldBudget)
		}
	case StepTimelineAndFeatures:
		if draft.Timeline() == "" {
			missing = append(missing, FieldTimeline)
		}
	case StepContact:
		missing = append(missing, missingContactFields(draft.Contact())...)
	}
	return missing
}

func missingContactFields(contact Contact) []string {
	var missing []string
	if strings.TrimSpace(contact.Name) == "" {
		missing = append(missing, FieldContactName)
	}
	if !phonePattern.MatchString(strings.TrimSpace(contact.Phone)) {
		missing = append(missing, FieldContactPhone)
	}
	if !emailPattern.MatchString(strings.TrimSpace(contact.Email)) {
		missing = append(missing, FieldContactEmail)
	}
	return missing
}

// CanAdvance reports whether the forward transition out of the given step is
// permitted for the draft.
func CanAdvance(step Step, draft *Draft) bool {
	return len(MissingFields(step, draft)) == 0
}
