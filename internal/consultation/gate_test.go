package consultation

import (
	"reflect"
	"testing"
)

func TestMissingFieldsEmptyDraftFirstStep(t *testing.T) {
	draft := NewDraft()

	missing := MissingFields(StepServiceType, draft)
	if !reflect.DeepEqual(missing, []string{FieldServiceType}) {
		t.Fatalf("unexpected missing fields: %v", missing)
	}
	if CanAdvance(StepServiceType, draft) {
		t.Fatalf("empty draft must not advance past the first step")
	}
}

func TestMissingFieldsPerStep(t *testing.T) {
	draft := NewDraft()
	draft.SetServiceType(ServiceTypeWebDevelopment)
	draft.SetProjectSize(ProjectSizeMedium)

	tests := []struct {
		name    string
		step    Step
		missing []string
	}{
		{name: "service-type-set", step: StepServiceType, missing: nil},
		{name: "budget-missing", step: StepSizeAndBudget, missing: []string{FieldBudget}},
		{name: "timeline-missing", step: StepTimelineAndFeatures, missing: []string{FieldTimeline}},
		{
			name:    "contact-empty",
			step:    StepContact,
			missing: []string{FieldContactName, FieldContactPhone, FieldContactEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := MissingFields(tt.step, draft)
			if !reflect.DeepEqual(missing, tt.missing) {
				t.Fatalf("step %d: want %v, got %v", tt.step, tt.missing, missing)
			}
		})
	}
}

func TestMissingFieldsFeaturesAreOptional(t *testing.T) {
	draft := NewDraft()
	draft.SetTimeline(TimelineFlexible)

	if missing := MissingFields(StepTimelineAndFeatures, draft); len(missing) != 0 {
		t.Fatalf("features must be optional, got missing %v", missing)
	}
}

func TestMissingFieldsContactValidation(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		missing []string
	}{
		{
			name:    "valid",
			contact: Contact{Name: "Kim Minsu", Phone: "010-1234-5678", Email: "a@b.com"},
			missing: nil,
		},
		{
			name:    "blank-name",
			contact: Contact{Name: "  ", Phone: "010-1234-5678", Email: "a@b.com"},
			missing: []string{FieldContactName},
		},
		{
			name:    "malformed-email",
			contact: Contact{Name: "Kim Minsu", Phone: "010-1234-5678", Email: "a@b"},
			missing: []string{FieldContactEmail},
		},
		{
			name:    "alphabetic-phone",
			contact: Contact{Name: "Kim Minsu", Phone: "call me", Email: "a@b.com"},
			missing: []string{FieldContactPhone},
		},
		{
			name:    "international-phone",
			contact: Contact{Name: "Kim Minsu", Phone: "+82 (10) 1234-5678", Email: "dev@leofittech.io"},
			missing: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := NewDraft()
			draft.SetContact(tt.contact)
			missing := MissingFields(StepContact, draft)
			if !reflect.DeepEqual(missing, tt.missing) {
				t.Fatalf("want %v, got %v", tt.missing, missing)
			}
		})
	}
}
