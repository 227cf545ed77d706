package notification

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Fetcher pulls a fresh notification batch from the external store.
type Fetcher interface {
	FetchNotifications(ctx context.Context, limit int, unreadOnly bool) ([]Record, int, error)
}

// Poller drives the reconciler on a fixed cadence and on explicit wake
// signals (e.g. the admin panel regaining focus). The reconciler itself owns
// no timer, which keeps it testable without real time.
type Poller struct {
	fetcher    Fetcher
	reconciler *Reconciler
	interval   time.Duration
	limit      int
	wake       chan struct{}
	logger     *zap.Logger
}

// PollerConfig wires the poller. Interval defaults to 30s, limit to 50.
type PollerConfig struct {
	Fetcher    Fetcher
	Reconciler *Reconciler
	Interval   time.Duration
	Limit      int
	Logger     *zap.Logger
}

// NewPoller constructs a poller; Run must be called to start it.
func NewPoller(cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 50
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		fetcher:    cfg.Fetcher,
		reconciler: cfg.Reconciler,
		interval:   interval,
		limit:      limit,
		wake:       make(chan struct{}, 1),
		logger:     logger,
	}
}

// Wake requests an immediate poll outside the regular cadence. Signals
// arriving while a poll is pending coalesce.
func (p *Poller) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. An initial poll happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.PollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.PollOnce(ctx)
		case <-p.wake:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce fetches a batch and hands it to the reconciler. Fetch failures
// are logged and retried on the next cycle; known state is never cleared.
func (p *Poller) PollOnce(ctx context.Context) {
	records, _, err := p.fetcher.FetchNotifications(ctx, p.limit, false)
	if err != nil {
		p.logger.Warn("notification fetch failed", zap.Error(err))
		return
	}
	delivered := p.reconciler.Ingest(records)
	if len(delivered) > 0 {
		p.logger.Debug("notifications delivered", zap.Int("count", len(delivered)))
	}
}
