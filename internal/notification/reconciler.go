package notification

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Persister asynchronously mirrors local read-state to the external store.
// Failures never roll back local state; the local mark is authoritative for
// the session.
type Persister interface {
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context) (int, error)
}

// Subscriber receives newly delivered notifications in ingestion order.
type Subscriber func(Record)

// ReconcilerConfig wires the reconciler's collaborators.
type ReconcilerConfig struct {
	Persister Persister
	Logger    *zap.Logger
}

// Reconciler merges freshly fetched notification batches with locally known
// read-state. An id marked read locally is never reported unread again, even
// when a later fetch returns a stale unread copy, and no record is delivered
// to subscribers twice.
type Reconciler struct {
	mu          sync.Mutex
	known       map[string]Record
	localRead   map[string]struct{}
	subscribers map[string]Subscriber
	unread      int

	persister Persister
	logger    *zap.Logger
}

// NewReconciler constructs an empty reconciler. The persister may be nil for
// hosts that do not mirror read-state.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		known:       make(map[string]Record),
		localRead:   make(map[string]struct{}),
		subscribers: make(map[string]Subscriber),
		persister:   cfg.Persister,
		logger:      logger,
	}
}

// Subscribe registers a delivery callback under the given subscriber id,
// replacing any previous registration for that id.
func (r *Reconciler) Subscribe(subscriberID string, callback Subscriber) {
	if subscriberID == "" || callback == nil {
		return
	}
	r.mu.Lock()
	r.subscribers[subscriberID] = callback
	r.mu.Unlock()
}

// Unsubscribe removes the registration for the subscriber id.
func (r *Reconciler) Unsubscribe(subscriberID string) {
	r.mu.Lock()
	delete(r.subscribers, subscriberID)
	r.mu.Unlock()
}

// Ingest merges a fetched batch, in fetch order, and returns the records
// newly delivered to subscribers. Records already known are absorbed for
// read-state but never re-delivered, so overlapping polls are safe.
func (r *Reconciler) Ingest(fetched []Record) []Record {
	r.mu.Lock()
	delivered := make([]Record, 0)
	for _, record := range fetched {
		if record.ID == "" {
			continue
		}
		effective := record
		if _, marked := r.localRead[record.ID]; marked {
			effective.IsRead = true
		}

		if _, seen := r.known[record.ID]; !seen {
			r.known[record.ID] = effective
			if !effective.IsRead {
				delivered = append(delivered, effective)
			}
			continue
		}
		r.known[record.ID] = effective
	}
	r.recountUnreadLocked()

	callbacks := make([]Subscriber, 0, len(r.subscribers))
	for _, callback := range r.subscribers {
		callbacks = append(callbacks, callback)
	}
	r.mu.Unlock()

	for _, record := range delivered {
		for _, callback := range callbacks {
			callback(record)
		}
	}
	return delivered
}

// MarkRead marks the id read locally, immediately and optimistically, then
// requests persistence in the background. Persistence failure is non-fatal.
func (r *Reconciler) MarkRead(ctx context.Context, notificationID string) {
	if notificationID == "" {
		return
	}
	r.mu.Lock()
	if _, marked := r.localRead[notificationID]; marked {
		r.mu.Unlock()
		return
	}
	r.localRead[notificationID] = struct{}{}
	if record, seen := r.known[notificationID]; seen && !record.IsRead {
		record.IsRead = true
		r.known[notificationID] = record
		if r.unread > 0 {
			r.unread--
		}
	}
	persister := r.persister
	r.mu.Unlock()

	if persister == nil {
		return
	}
	go func() {
		if err := persister.MarkRead(ctx, notificationID); err != nil {
			r.logger.Warn("mark-read persistence failed",
				zap.String("notification_id", notificationID),
				zap.Error(err))
		}
	}()
}

// MarkAllRead marks every known id read locally and fires a single batch
// persistence request.
func (r *Reconciler) MarkAllRead(ctx context.Context) {
	r.mu.Lock()
	for id, record := range r.known {
		r.localRead[id] = struct{}{}
		record.IsRead = true
		r.known[id] = record
	}
	r.unread = 0
	persister := r.persister
	r.mu.Unlock()

	if persister == nil {
		return
	}
	go func() {
		if _, err := persister.MarkAllRead(ctx); err != nil {
			r.logger.Warn("mark-all-read persistence failed", zap.Error(err))
		}
	}()
}

// UnreadCount returns the number of known ids whose effective read-state is
// false.
func (r *Reconciler) UnreadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unread
}

// Known returns the known records with effective read-state applied. Order
// is unspecified.
func (r *Reconciler) Known() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]Record, 0, len(r.known))
	for _, record := range r.known {
		records = append(records, record)
	}
	return records
}

// recountUnreadLocked recomputes the unread counter from the known set so
// a full refresh self-heals from missed events. Caller holds the lock.
func (r *Reconciler) recountUnreadLocked() {
	count := 0
	for _, record := range r.known {
		if !record.IsRead {
			count++
		}
	}
	r.unread = count
}
