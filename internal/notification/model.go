package notification

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks how prominently a notification is surfaced.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates raw input and returns a Priority.
func ParsePriority(rawValue string) (Priority, error) {
	switch candidate := Priority(strings.ToLower(strings.TrimSpace(rawValue))); candidate {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return candidate, nil
	default:
		return "", fmt.Errorf("notification: invalid priority %q", rawValue)
	}
}

// Record is the reconciler-facing view of a notification. Display fields
// beyond id, read-state, priority and creation time are opaque to the
// reconciliation logic.
type Record struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	Priority  Priority  `json:"priority"`
	RelatedID string    `json:"relatedId,omitempty"`
	ActionURL string    `json:"actionUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification models the persisted notification row.
type Notification struct {
	NotificationID   string   `gorm:"column:notification_id;primaryKey;size:190;not null"`
	Type             string   `gorm:"column:type;size:64;not null"`
	Title            string   `gorm:"column:title;size:320;not null"`
	Message          string   `gorm:"column:message;type:text;not null"`
	IsRead           bool     `gorm:"column:is_read;not null;default:false;index"`
	Priority         Priority `gorm:"column:priority;size:16;not null;default:'medium'"`
	RelatedID        string   `gorm:"column:related_id;size:190"`
	ActionURL        string   `gorm:"column:action_url;size:512"`
	CreatedAtSeconds int64    `gorm:"column:created_at_s;not null;index"`
}

// TableName provides the explicit table binding for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// ToRecord converts the stored row into the reconciler-facing value.
func (n Notification) ToRecord() Record {
	return Record{
		ID:        n.NotificationID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		Priority:  n.Priority,
		RelatedID: n.RelatedID,
		ActionURL: n.ActionURL,
		CreatedAt: time.Unix(n.CreatedAtSeconds, 0).UTC(),
	}
}
