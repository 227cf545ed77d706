package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/visionmakers/backend/internal/notification"
)

func seedNotifications(t *testing.T, env *testEnvironment, count int) []string {
	t.Helper()
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		record, err := env.store.Create(context.Background(), notification.CreateParams{
			Type:    "consultation_created",
			Title:   fmt.Sprintf("consultation %d", i),
			Message: "a new consultation arrived",
		})
		if err != nil {
			t.Fatalf("failed to seed notification: %v", err)
		}
		ids = append(ids, record.ID)
	}
	env.poller.PollOnce(context.Background())
	return ids
}

func awaitUnreadCount(t *testing.T, env *testEnvironment, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, unread, err := env.store.FetchNotifications(context.Background(), 1, false)
		if err != nil {
			t.Fatalf("unexpected fetch error: %v", err)
		}
		if unread == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("store unread count never reached %d", want)
}

func TestListNotifications(t *testing.T) {
	env := newTestEnvironment(t)
	token := env.login(t)
	seedNotifications(t, env, 3)

	recorder := env.do(t, http.MethodGet, "/api/admin/notifications?limit=2", token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected ok, got %d: %s", recorder.Code, recorder.Body.String())
	}
	payload := decodeBody(t, recorder)
	records, _ := payload["notifications"].([]any)
	if len(records) != 2 {
		t.Fatalf("expected two notifications, got %d", len(records))
	}
	if payload["unreadCount"] != float64(3) {
		t.Fatalf("expected unread count 3, got %v", payload["unreadCount"])
	}
}

func TestMarkNotificationReadPersistsInBackground(t *testing.T) {
	env := newTestEnvironment(t)
	token := env.login(t)
	ids := seedNotifications(t, env, 2)

	recorder := env.do(t, http.MethodPut, "/api/admin/notifications/"+ids[0]+"/read", token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected ok, got %d: %s", recorder.Code, recorder.Body.String())
	}
	payload := decodeBody(t, recorder)
	if payload["unreadCount"] != float64(1) {
		t.Fatalf("expected optimistic unread count 1, got %v", payload["unreadCount"])
	}

	awaitUnreadCount(t, env, 1)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	env := newTestEnvironment(t)
	token := env.login(t)
	seedNotifications(t, env, 3)

	recorder := env.do(t, http.MethodPut, "/api/admin/notifications/read-all", token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected ok, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if env.reconciler.UnreadCount() != 0 {
		t.Fatalf("expected reconciler unread 0, got %d", env.reconciler.UnreadCount())
	}

	awaitUnreadCount(t, env, 0)
}

func TestMarkReadLocallyWinsOverStaleFetch(t *testing.T) {
	env := newTestEnvironment(t)
	token := env.login(t)
	ids := seedNotifications(t, env, 1)

	recorder := env.do(t, http.MethodPut, "/api/admin/notifications/"+ids[0]+"/read", token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected ok, got %d", recorder.Code)
	}

	// A stale copy of the same record must not resurrect the unread state.
	env.reconciler.Ingest([]notification.Record{{ID: ids[0], Title: "stale copy", IsRead: false}})
	if env.reconciler.UnreadCount() != 0 {
		t.Fatalf("expected unread 0 after stale ingest, got %d", env.reconciler.UnreadCount())
	}
}
