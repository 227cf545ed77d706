package consultation

import "strings"

// SubmissionRequest is the sealed union of intake payload variants. The
// variant is decided at construction time; guided and free field sets never
// mix at runtime.
type SubmissionRequest interface {
	// Type returns the variant tag.
	Type() Type
	// ContactBlock returns the requester's contact details.
	ContactBlock() Contact
	// MissingFields returns the names of required fields that are unset or
	// invalid, empty when the payload is submittable.
	MissingFields() []string

	sealedRequest()
}

// GuidedRequest is the immutable payload produced when the wizard reaches
// the terminal gate.
type GuidedRequest struct {
	ServiceType        ServiceType
	ProjectSize        ProjectSize
	Budget             Budget
	Timeline           Timeline
	Features           []string
	AdditionalRequests string
	Contact            Contact
}

// Type returns the guided variant tag.
func (GuidedRequest) Type() Type { return TypeGuided }

// ContactBlock returns the requester's contact details.
func (r GuidedRequest) ContactBlock() Contact { return r.Contact }

// MissingFields re-runs every step gate against the payload.
func (r GuidedRequest) MissingFields() []string {
	var missing []string
	if r.ServiceType == "" {
		missing = append(missing, FieldServiceType)
	}
	if r.ProjectSize == "" {
		missing = append(missing, FieldProjectSize)
	}
	if r.Budget == "" {
		missing = append(missing, FieldBudget)
	}
	if r.Timeline == "" {
		missing = append(missing, FieldTimeline)
	}
	missing = append(missing, missingContactFields(r.Contact)...)
	return missing
}

func (GuidedRequest) sealedRequest() {}

// FreeRequest is the payload for the free-form consultation track: a project
// description plus contact details, with budget and timeline optional.
type FreeRequest struct {
	Description string
	Budget      Budget
	Timeline    Timeline
	Contact     Contact
}

// Type returns the free variant tag.
func (FreeRequest) Type() Type { return TypeFree }

// ContactBlock returns the requester's contact details.
func (r FreeRequest) ContactBlock() Contact { return r.Contact }

// MissingFields requires a non-empty description and a valid contact block.
func (r FreeRequest) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(r.Description) == "" {
		missing = append(missing, "description")
	}
	missing = append(missing, missingContactFields(r.Contact)...)
	return missing
}

func (FreeRequest) sealedRequest() {}

// NewGuidedRequest snapshots a draft into an immutable guided payload.
func NewGuidedRequest(draft *Draft) GuidedRequest {
	return GuidedRequest{
		ServiceType:        draft.ServiceType(),
		ProjectSize:        draft.ProjectSize(),
		Budget:             draft.Budget(),
		Timeline:           draft.Timeline(),
		Features:           draft.Features(),
		AdditionalRequests: draft.AdditionalRequests(),
		Contact:            draft.Contact(),
	}
}

// Receipt identifies a successfully stored consultation.
type Receipt struct {
	ConsultationID     string
	ConsultationNumber string
}
