package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/domain"
	"github.com/kailas-cloud/newsrec/internal/domain/usage"
)

// BudgetAction defines behavior when token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore persists budget counters across restarts.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetConfig holds token caps; zero disables a cap.
type BudgetConfig struct {
	Provider     string
	KeyPrefix    string
	DailyLimit   int64
	MonthlyLimit int64
	Action       BudgetAction
}

// window is a token counter for one calendar period (UTC).
type window struct {
	period usage.Period
	limit  int64
	used   int64
	start  time.Time
}

func (w *window) bounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	if w.period == usage.PeriodMonth {
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// roll zeroes the counter when now is past the current period.
func (w *window) roll(now time.Time) {
	start, _ := w.bounds(now)
	if start.After(w.start) {
		w.used = 0
		w.start = start
	}
}

func (w *window) exceeded() bool { return w.limit > 0 && w.used >= w.limit }

func (w *window) suffix() string {
	if w.period == usage.PeriodMonth {
		return w.start.Format("2006-01")
	}
	return w.start.Format("2006-01-02")
}

// BudgetTracker enforces token caps in memory and mirrors usage to an optional store.
// Check never touches the store.
type BudgetTracker struct {
	mu      sync.Mutex
	cfg     BudgetConfig
	daily   window
	monthly window
	store   BudgetStore
	now     func() time.Time
	logger  *zap.Logger
}

// NewBudgetTracker creates a budget tracker with the given limits.
func NewBudgetTracker(cfg BudgetConfig, logger *zap.Logger) *BudgetTracker {
	if cfg.Action == "" {
		cfg.Action = BudgetActionWarn
	}
	b := &BudgetTracker{
		cfg:     cfg,
		daily:   window{period: usage.PeriodDay, limit: cfg.DailyLimit},
		monthly: window{period: usage.PeriodMonth, limit: cfg.MonthlyLimit},
		now:     time.Now,
		logger:  logger,
	}
	now := b.now()
	b.daily.start, _ = b.daily.bounds(now)
	b.monthly.start, _ = b.monthly.bounds(now)
	return b
}

// WithStore attaches a persistence store and loads the current counters.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	b.roll()
	for _, w := range []*window{&b.daily, &b.monthly} {
		val, err := store.Get(ctx, b.key(w))
		if err != nil {
			b.logger.Warn("Failed to load budget from store", zap.String("period", string(w.period)), zap.Error(err))
			continue
		}
		w.used = val
	}

	b.logger.Info("Budget loaded from store",
		zap.String("provider", b.cfg.Provider),
		zap.Int64("daily_used", b.daily.used),
		zap.Int64("monthly_used", b.monthly.used),
	)
	return b
}

func (b *BudgetTracker) key(w *window) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s", b.cfg.KeyPrefix, b.cfg.Provider, w.period, w.suffix())
}

func (b *BudgetTracker) roll() {
	now := b.now()
	b.daily.roll(now)
	b.monthly.roll(now)
}

// Check reports whether a new request may spend tokens.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roll()
	if !b.daily.exceeded() && !b.monthly.exceeded() {
		return nil
	}

	if b.cfg.Action == BudgetActionReject {
		return fmt.Errorf("%s token budget: %w", b.cfg.Provider, domain.ErrEmbeddingQuotaExceeded)
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("provider", b.cfg.Provider),
		zap.Int64("daily_used", b.daily.used),
		zap.Int64("daily_limit", b.daily.limit),
		zap.Int64("monthly_used", b.monthly.used),
		zap.Int64("monthly_limit", b.monthly.limit),
	)
	return nil
}

// Record adds consumed tokens, then writes them behind to the store.
func (b *BudgetTracker) Record(tokens int64) {
	if tokens <= 0 {
		return
	}

	b.mu.Lock()
	b.roll()
	b.daily.used += tokens
	b.monthly.used += tokens
	store := b.store
	keys := []string{b.key(&b.daily), b.key(&b.monthly)}
	b.mu.Unlock()

	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, key := range keys {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			b.logger.Warn("Failed to persist budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// Remaining returns tokens left in the period, or -1 when unlimited.
func (b *BudgetTracker) Remaining(period usage.Period) int64 {
	r := b.Snapshot(period)
	return r.TokensRemaining()
}

// Snapshot reports usage for the current day or month.
func (b *BudgetTracker) Snapshot(period usage.Period) usage.Report {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roll()
	w := &b.daily
	if period == usage.PeriodMonth {
		w = &b.monthly
	}
	start, end := w.bounds(w.start)
	return usage.NewReport(w.period, start.UnixMilli(), end.UnixMilli(), w.used, w.limit)
}
