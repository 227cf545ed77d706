package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type sequenceIDGenerator struct {
	next int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("notif-%d", g.next), nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&Notification{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	current := time.Unix(1787961600, 0)
	store, err := NewStore(StoreConfig{
		Database:   db,
		IDProvider: &sequenceIDGenerator{},
		Clock: func() time.Time {
			current = current.Add(time.Second)
			return current
		},
	})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	return store
}

func TestStoreCreateAndFetchNewestFirst(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := store.Create(context.Background(), CreateParams{
			Type:    "consultation_created",
			Title:   fmt.Sprintf("consultation %d", i),
			Message: "a new consultation arrived",
		}); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}
	}

	records, unread, err := store.FetchNotifications(context.Background(), 2, false)
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("limit must cap the batch, got %d", len(records))
	}
	if records[0].ID != "notif-3" {
		t.Fatalf("expected newest first, got %s", records[0].ID)
	}
	if unread != 3 {
		t.Fatalf("unexpected unread count: %d", unread)
	}
	if records[0].Priority != PriorityMedium {
		t.Fatalf("priority must default to medium, got %s", records[0].Priority)
	}
}

func TestStoreMarkReadAffectsUnreadFetch(t *testing.T) {
	store := newTestStore(t)
	record, err := store.Create(context.Background(), CreateParams{Title: "first", Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if _, err := store.Create(context.Background(), CreateParams{Title: "second"}); err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}

	if err := store.MarkRead(context.Background(), record.ID); err != nil {
		t.Fatalf("unexpected mark-read error: %v", err)
	}

	records, unread, err := store.FetchNotifications(context.Background(), 10, true)
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if len(records) != 1 || records[0].Title != "second" {
		t.Fatalf("unexpected unread batch: %+v", records)
	}
	if unread != 1 {
		t.Fatalf("unexpected unread count: %d", unread)
	}
}

func TestStoreMarkReadUnknownID(t *testing.T) {
	store := newTestStore(t)

	err := store.MarkRead(context.Background(), "missing")
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestStoreMarkAllReadReturnsUpdatedCount(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 4; i++ {
		if _, err := store.Create(context.Background(), CreateParams{Title: fmt.Sprintf("n%d", i)}); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}
	}

	updated, err := store.MarkAllRead(context.Background())
	if err != nil {
		t.Fatalf("unexpected mark-all-read error: %v", err)
	}
	if updated != 4 {
		t.Fatalf("expected four updated rows, got %d", updated)
	}

	updated, err = store.MarkAllRead(context.Background())
	if err != nil {
		t.Fatalf("unexpected mark-all-read error: %v", err)
	}
	if updated != 0 {
		t.Fatalf("second pass must update nothing, got %d", updated)
	}
}

func TestStoreCreateRequiresTitle(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create(context.Background(), CreateParams{Title: "  "}); err == nil {
		t.Fatalf("expected error for blank title")
	}
}
