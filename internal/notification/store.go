package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	// ErrNotificationNotFound indicates no row exists for the identifier.
	ErrNotificationNotFound = errors.New("notification: not found")
)

// IDProvider issues unique identifiers for stored notifications.
type IDProvider interface {
	NewID() (string, error)
}

// StoreConfig wires the notification store dependencies.
type StoreConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Store persists notification rows and serves the fetch/mark-read APIs the
// reconciler and the admin panel consume.
type Store struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

// NewStore constructs the notification store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("notification.store.new: %w", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("notification.store.new: %w", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: cfg.Database, clock: clock, idProvider: cfg.IDProvider, logger: logger}, nil
}

// CreateParams describes a notification to store.
type CreateParams struct {
	Type      string
	Title     string
	Message   string
	Priority  Priority
	RelatedID string
	ActionURL string
}

// Create stores a new unread notification and returns it as a record.
func (s *Store) Create(ctx context.Context, params CreateParams) (Record, error) {
	if strings.TrimSpace(params.Title) == "" {
		return Record{}, fmt.Errorf("notification.store.create: title is required")
	}
	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	notificationID, err := s.idProvider.NewID()
	if err != nil {
		return Record{}, fmt.Errorf("notification.store.create: %w", err)
	}

	row := Notification{
		NotificationID:   notificationID,
		Type:             params.Type,
		Title:            params.Title,
		Message:          params.Message,
		IsRead:           false,
		Priority:         priority,
		RelatedID:        params.RelatedID,
		ActionURL:        params.ActionURL,
		CreatedAtSeconds: s.clock().UTC().Unix(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.logger.Error("notification insert failed",
			zap.String("notification_id", notificationID),
			zap.Error(err))
		return Record{}, fmt.Errorf("notification.store.create: %w", err)
	}
	return row.ToRecord(), nil
}

// FetchNotifications returns the newest notifications, optionally unread
// only, together with the store-wide unread count. It satisfies the poller's
// Fetcher.
func (s *Store) FetchNotifications(ctx context.Context, limit int, unreadOnly bool) ([]Record, int, error) {
	if limit <= 0 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Model(&Notification{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var rows []Notification
	if err := query.Order("created_at_s DESC, notification_id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("notification.store.fetch: %w", err)
	}

	var unread int64
	if err := s.db.WithContext(ctx).Model(&Notification{}).
		Where("is_read = ?", false).
		Count(&unread).Error; err != nil {
		return nil, 0, fmt.Errorf("notification.store.fetch: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.ToRecord())
	}
	return records, int(unread), nil
}

// MarkRead persists the read flag for a single notification. It satisfies
// the reconciler's Persister.
func (s *Store) MarkRead(ctx context.Context, notificationID string) error {
	if strings.TrimSpace(notificationID) == "" {
		return fmt.Errorf("notification.store.mark_read: id is required")
	}
	result := s.db.WithContext(ctx).Model(&Notification{}).
		Where("notification_id = ?", notificationID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("notification.store.mark_read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification.store.mark_read: %w", ErrNotificationNotFound)
	}
	return nil
}

// MarkAllRead persists the read flag for every unread notification and
// returns how many rows changed.
func (s *Store) MarkAllRead(ctx context.Context) (int, error) {
	result := s.db.WithContext(ctx).Model(&Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("notification.store.mark_all_read: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}
