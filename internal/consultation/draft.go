package consultation

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

const maxAdditionalRequestsLength = 500

// ErrAdditionalRequestsTooLong indicates the free-text field exceeds its bound.
var ErrAdditionalRequestsTooLong = errors.New("consultation: additional requests exceed 500 characters")

// Draft accumulates the guided consultation answers while the wizard is in
// progress. Fields are mutable only through the designated setters; each
// setter touches exactly one field and leaves siblings untouched. After the
// draft is locked (successful submission) every setter is a no-op.
type Draft struct {
	serviceType        ServiceType
	projectSize        ProjectSize
	budget             Budget
	timeline           Timeline
	features           map[string]struct{}
	additionalRequests string
	contact            Contact
	locked             bool
}

// NewDraft returns an empty draft ready for the first wizard step.
func NewDraft() *Draft {
	return &Draft{features: make(map[string]struct{})}
}

// ServiceType returns the selected service type, empty when unset.
func (d *Draft) ServiceType() ServiceType { return d.serviceType }

// ProjectSize returns the selected project size, empty when unset.
func (d *Draft) ProjectSize() ProjectSize { return d.projectSize }

// Budget returns the selected budget range, empty when unset.
func (d *Draft) Budget() Budget { return d.budget }

// Timeline returns the selected timeline, empty when unset.
func (d *Draft) Timeline() Timeline { return d.timeline }

// AdditionalRequests returns the bounded free-text field.
func (d *Draft) AdditionalRequests() string { return d.additionalRequests }

// Contact returns the contact block collected at the final step.
func (d *Draft) Contact() Contact { return d.contact }

// Features returns the selected feature keys in lexical order.
func (d *Draft) Features() []string {
	keys := make([]string, 0, len(d.features))
	for key := range d.features {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// HasFeature reports whether the feature key is currently selected.
func (d *Draft) HasFeature(key string) bool {
	_, ok := d.features[key]
	return ok
}

// Locked reports whether the draft reached the terminal submitted state.
func (d *Draft) Locked() bool { return d.locked }

// SetServiceType records the service type selection.
func (d *Draft) SetServiceType(value ServiceType) {
	if d.locked {
		return
	}
	d.serviceType = value
}

// SetProjectSize records the project size selection.
func (d *Draft) SetProjectSize(value ProjectSize) {
	if d.locked {
		return
	}
	d.projectSize = value
}

// SetBudget records the budget selection.
func (d *Draft) SetBudget(value Budget) {
	if d.locked {
		return
	}
	d.budget = value
}

// SetTimeline records the timeline selection.
func (d *Draft) SetTimeline(value Timeline) {
	if d.locked {
		return
	}
	d.timeline = value
}

// ToggleFeature flips membership of the feature key: absent keys are added,
// present keys are removed. Toggling twice restores the original set.
func (d *Draft) ToggleFeature(key string) {
	if d.locked || key == "" {
		return
	}
	if _, ok := d.features[key]; ok {
		delete(d.features, key)
		return
	}
	d.features[key] = struct{}{}
}

// SetAdditionalRequests records the free-text field, enforcing the 500
// character bound.
func (d *Draft) SetAdditionalRequests(value string) error {
	if d.locked {
		return nil
	}
	if utf8.RuneCountInString(value) > maxAdditionalRequestsLength {
		return fmt.Errorf("%w: %d characters", ErrAdditionalRequestsTooLong, utf8.RuneCountInString(value))
	}
	d.additionalRequests = value
	return nil
}

// SetContact records the contact block as a unit.
func (d *Draft) SetContact(contact Contact) {
	if d.locked {
		return
	}
	d.contact = contact
}

// Reset clears every field, returning the draft to its initial state. A
// locked draft stays locked; callers discard it and start a fresh one.
func (d *Draft) Reset() {
	if d.locked {
		return
	}
	*d = Draft{features: make(map[string]struct{})}
}

func (d *Draft) lock() {
	d.locked = true
}
