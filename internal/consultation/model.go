package consultation

import (
	"errors"
	"fmt"
	"strings"
)

// Type discriminates the two consultation intake variants. The variant is
// fixed at construction time and never changes for a stored consultation.
type Type string

const (
	// TypeGuided marks a consultation collected through the step-by-step wizard.
	TypeGuided Type = "guided"
	// TypeFree marks a free-form consultation request.
	TypeFree Type = "free"
)

// ServiceType enumerates the kinds of work a client can request.
type ServiceType string

const (
	ServiceTypeWebDevelopment ServiceType = "web_development"
	ServiceTypeMobileApp      ServiceType = "mobile_app"
	ServiceTypeDesktopApp     ServiceType = "desktop_app"
	ServiceTypeAIML           ServiceType = "ai_ml"
	ServiceTypeBlockchain     ServiceType = "blockchain"
	ServiceTypeIOT            ServiceType = "iot"
	ServiceTypeConsulting     ServiceType = "consulting"
	ServiceTypeMaintenance    ServiceType = "maintenance"
	ServiceTypeOther          ServiceType = "other"
)

// ProjectSize enumerates rough project scale buckets.
type ProjectSize string

const (
	ProjectSizeSmall      ProjectSize = "small"
	ProjectSizeMedium     ProjectSize = "medium"
	ProjectSizeLarge      ProjectSize = "large"
	ProjectSizeEnterprise ProjectSize = "enterprise"
)

// Budget enumerates budget ranges in USD.
type Budget string

const (
	BudgetUnder1000   Budget = "under_1000"
	Budget1000To3000  Budget = "1000_to_3000"
	Budget3000To5000  Budget = "3000_to_5000"
	Budget5000To10000 Budget = "5000_to_10000"
	BudgetOver10000   Budget = "over_10000"
	BudgetNegotiable  Budget = "negotiable"
)

// Timeline enumerates expected delivery windows.
type Timeline string

const (
	TimelineASAP       Timeline = "asap"
	TimelineOneMonth   Timeline = "1_month"
	TimelineOneToThree Timeline = "1_3_months"
	TimelineThreeToSix Timeline = "3_6_months"
	TimelineSixToYear  Timeline = "6_12_months"
	TimelineOverYear   Timeline = "over_1_year"
	TimelineFlexible   Timeline = "flexible"
)

// ContactTime enumerates preferred callback windows.
type ContactTime string

const (
	ContactTimeMorning   ContactTime = "morning"
	ContactTimeAfternoon ContactTime = "afternoon"
	ContactTimeEvening   ContactTime = "evening"
	ContactTimeAnytime   ContactTime = "anytime"
)

// Status tracks a stored consultation through the admin review workflow.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewing Status = "reviewing"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	// ErrInvalidEnumValue indicates a raw string does not name a known enum member.
	ErrInvalidEnumValue = errors.New("consultation: invalid enum value")

	serviceTypes = map[ServiceType]struct{}{
		ServiceTypeWebDevelopment: {}, ServiceTypeMobileApp: {}, ServiceTypeDesktopApp: {},
		ServiceTypeAIML: {}, ServiceTypeBlockchain: {}, ServiceTypeIOT: {},
		ServiceTypeConsulting: {}, ServiceTypeMaintenance: {}, ServiceTypeOther: {},
	}
	projectSizes = map[ProjectSize]struct{}{
		ProjectSizeSmall: {}, ProjectSizeMedium: {}, ProjectSizeLarge: {}, ProjectSizeEnterprise: {},
	}
	budgets = map[Budget]struct{}{
		BudgetUnder1000: {}, Budget1000To3000: {}, Budget3000To5000: {},
		Budget5000To10000: {}, BudgetOver10000: {}, BudgetNegotiable: {},
	}
	timelines = map[Timeline]struct{}{
		TimelineASAP: {}, TimelineOneMonth: {}, TimelineOneToThree: {},
		TimelineThreeToSix: {}, TimelineSixToYear: {}, TimelineOverYear: {}, TimelineFlexible: {},
	}
	contactTimes = map[ContactTime]struct{}{
		ContactTimeMorning: {}, ContactTimeAfternoon: {}, ContactTimeEvening: {}, ContactTimeAnytime: {},
	}
	statuses = map[Status]struct{}{
		StatusPending: {}, StatusReviewing: {}, StatusApproved: {},
		StatusRejected: {}, StatusCompleted: {}, StatusCancelled: {},
	}
)

// ParseServiceType validates raw input and returns a ServiceType.
func ParseServiceType(rawValue string) (ServiceType, error) {
	candidate := ServiceType(strings.ToLower(strings.TrimSpace(rawValue)))
	if _, ok := serviceTypes[candidate]; !ok {
		return "", fmt.Errorf("%w: service type %q", ErrInvalidEnumValue, rawValue)
	}
	return candidate, nil
}

// ParseProjectSize validates raw input and returns a ProjectSize.
func ParseProjectSize(rawValue string) (ProjectSize, error) {
	candidate := ProjectSize(strings.ToLower(strings.TrimSpace(rawValue)))
	if _, ok := projectSizes[candidate]; !ok {
		return "", fmt.Errorf("%w: project size %q", ErrInvalidEnumValue, rawValue)
	}
	return candidate, nil
}

// ParseBudget validates raw input and returns a Budget.
func ParseBudget(rawValue string) (Budget, error) {
	candidate := Budget(strings.ToLower(strings.TrimSpace(rawValue)))
	if _, ok := budgets[candidate]; !ok {
		return "", fmt.Errorf("%w: budget %q", ErrInvalidEnumValue, rawValue)
	}
	return candidate, nil
}

// ParseTimeline validates raw input and returns a Timeline.
func ParseTimeline(rawValue string) (Timeline, error) {
	candidate := Timeline(strings.ToLower(strings.TrimSpace(rawValue)))
	if _, ok := timelines[candidate]; !ok {
		return "", fmt.Errorf("%w: timeline %q", ErrInvalidEnumValue, rawValue)
	}
	return candidate, nil
}

// ParseContactTime validates raw input and returns a ContactTime.
func ParseContactTime(rawValue string) (ContactTime, error) {
	candidate := ContactTime(strings.ToLower(strings.TrimSpace(rawValue)))
	if _, ok := contactTimes[candidate]; !ok {
		return "", fmt.Errorf("%w: contact time %q", ErrInvalidEnumValue, rawValue)
	}
	return candidate, nil
}

// ParseStatus validates raw input and returns a Status.
func ParseStatus(rawValue string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(rawValue)))
	if _, ok := statuses[candidate]; !ok {
		return "", fmt.Errorf("%w: status %q", ErrInvalidEnumValue, rawValue)
	}
	return candidate, nil
}

// Contact carries the requester's contact block collected at the final step.
type Contact struct {
	Name          string
	Phone         string
	Email         string
	Company       string
	PreferredTime ContactTime
}

// Consultation models the persisted consultation row served to the admin panel.
type Consultation struct {
	ConsultationID     string `gorm:"column:consultation_id;primaryKey;size:190;not null"`
	ConsultationNumber string `gorm:"column:consultation_number;size:64;not null;uniqueIndex"`
	Type               Type   `gorm:"column:type;size:16;not null"`
	ServiceType        string `gorm:"column:service_type;size:32"`
	ProjectSize        string `gorm:"column:project_size;size:16"`
	Budget             string `gorm:"column:budget;size:32"`
	Timeline           string `gorm:"column:timeline;size:32"`
	FeaturesJSON       string `gorm:"column:features_json;type:text;not null;default:'[]'"`
	AdditionalRequests string `gorm:"column:additional_requests;type:text"`
	Description        string `gorm:"column:description;type:text"`
	ContactName        string `gorm:"column:contact_name;size:190;not null"`
	ContactPhone       string `gorm:"column:contact_phone;size:64;not null"`
	ContactEmail       string `gorm:"column:contact_email;size:320;not null"`
	ContactCompany     string `gorm:"column:contact_company;size:190"`
	PreferredTime      string `gorm:"column:preferred_contact_time;size:16"`
	Status             Status `gorm:"column:status;size:16;not null;default:'pending';index:idx_consultations_status_created,priority:1"`
	CreatedAtSeconds   int64  `gorm:"column:created_at_s;not null;index:idx_consultations_status_created,priority:2"`
	UpdatedAtSeconds   int64  `gorm:"column:updated_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Consultation) TableName() string {
	return "consultations"
}
