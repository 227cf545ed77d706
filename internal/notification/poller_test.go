package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type scriptedFetcher struct {
	mu      sync.Mutex
	batches [][]Record
	errs    []error
	calls   int
}

func (f *scriptedFetcher) FetchNotifications(_ context.Context, _ int, _ bool) ([]Record, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	index := f.calls
	f.calls++
	if index < len(f.errs) && f.errs[index] != nil {
		return nil, 0, f.errs[index]
	}
	if index < len(f.batches) {
		return f.batches[index], len(f.batches[index]), nil
	}
	return nil, 0, nil
}

func TestPollOnceIngestsFetchedBatch(t *testing.T) {
	reconciler := NewReconciler(ReconcilerConfig{})
	fetcher := &scriptedFetcher{batches: [][]Record{{unreadRecord("n1"), unreadRecord("n2")}}}
	poller := NewPoller(PollerConfig{Fetcher: fetcher, Reconciler: reconciler})

	poller.PollOnce(context.Background())

	if reconciler.UnreadCount() != 2 {
		t.Fatalf("unexpected unread count: %d", reconciler.UnreadCount())
	}
}

func TestPollOnceFetchFailureKeepsKnownState(t *testing.T) {
	reconciler := NewReconciler(ReconcilerConfig{})
	fetcher := &scriptedFetcher{
		batches: [][]Record{{unreadRecord("n1")}, nil, {unreadRecord("n1"), unreadRecord("n2")}},
		errs:    []error{nil, errors.New("fetch timeout"), nil},
	}
	poller := NewPoller(PollerConfig{Fetcher: fetcher, Reconciler: reconciler})

	poller.PollOnce(context.Background())
	poller.PollOnce(context.Background())

	if reconciler.UnreadCount() != 1 {
		t.Fatalf("failed poll must not clear known state, got %d", reconciler.UnreadCount())
	}

	poller.PollOnce(context.Background())
	if reconciler.UnreadCount() != 2 {
		t.Fatalf("next cycle must recover, got %d", reconciler.UnreadCount())
	}
}

func TestWakeCoalesces(t *testing.T) {
	poller := NewPoller(PollerConfig{
		Fetcher:    &scriptedFetcher{},
		Reconciler: NewReconciler(ReconcilerConfig{}),
	})

	// Repeated wake signals while no poll is draining must not block.
	for i := 0; i < 5; i++ {
		poller.Wake()
	}
}
