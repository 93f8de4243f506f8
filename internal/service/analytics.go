package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/centsible/centsible-go/internal/cache"
	"github.com/centsible/centsible-go/internal/model"
)

// ErrInvalidTimeRange rejects unknown timeRange query values.
var ErrInvalidTimeRange = errors.New("invalid time range")

// overviewTrendMonths is the trailing window of the overview's monthly
// trend. Totals on the overview are all-time regardless.
const overviewTrendMonths = 6

// AnalyticsStore is the slice of the transaction repository the
// analytics service needs.
type AnalyticsStore interface {
	Totals(ctx context.Context, userID string) (model.Totals, error)
	MonthlyBuckets(ctx context.Context, userID string, since model.Date) ([]model.MonthlyBucket, error)
	CategorySums(ctx context.Context, userID string, since model.Date) ([]model.CategorySum, error)
	YearlySums(ctx context.Context, userID string, since model.Date) ([]model.YearlySum, error)
}

// AnalyticsService computes per-user reports and caches the serialized
// responses. Reports are returned as raw JSON so a cache hit is
// byte-for-byte identical to the response that was cached.
type AnalyticsService struct {
	store  AnalyticsStore
	cache  cache.Store
	ttl    time.Duration
	logger *slog.Logger

	now func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService. Cached reports
// live for ttl.
func NewAnalyticsService(store AnalyticsStore, reports cache.Store, ttl time.Duration, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		cache:  reports,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Overview returns the user's all-time totals plus a six-month monthly
// trend, serialized as JSON.
func (s *AnalyticsService) Overview(ctx context.Context, userID string) ([]byte, error) {
	key := overviewKey(userID)
	if data, ok := s.cached(ctx, key); ok {
		return data, nil
	}

	totals, err := s.store.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}

	buckets, err := s.store.MonthlyBuckets(ctx, userID, windowStart(s.now(), overviewTrendMonths))
	if err != nil {
		return nil, err
	}

	report := model.Overview{
		TotalIncome:      model.CentsToAmount(totals.IncomeCents),
		TotalExpenses:    model.CentsToAmount(totals.ExpenseCents),
		Balance:          model.CentsToAmount(totals.IncomeCents - totals.ExpenseCents),
		TransactionCount: totals.Count,
		MonthlyTrend:     monthlyTrend(buckets),
	}

	return s.serve(ctx, key, report)
}

// Detailed returns the user's monthly trends, category breakdown, and
// yearly comparison over the requested trailing window, serialized as
// JSON. An empty timeRange selects the default window.
func (s *AnalyticsService) Detailed(ctx context.Context, userID, timeRange string) ([]byte, error) {
	tr, err := model.ParseTimeRange(timeRange)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}

	key := cache.Key("analytics:"+userID, tr)
	if data, ok := s.cached(ctx, key); ok {
		return data, nil
	}

	since := windowStart(s.now(), tr.Months())

	buckets, err := s.store.MonthlyBuckets(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	categories, err := s.store.CategorySums(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	years, err := s.store.YearlySums(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	var totalExpenseCents int64
	for i := range categories {
		totalExpenseCents += categories[i].AmountCents
	}

	breakdown := make([]model.CategoryBreakdown, 0, len(categories))
	for i := range categories {
		var pct float64
		if totalExpenseCents > 0 {
			pct = float64(categories[i].AmountCents) / float64(totalExpenseCents) * 100
		}
		breakdown = append(breakdown, model.CategoryBreakdown{
			Category:   categories[i].Category,
			Amount:     model.CentsToAmount(categories[i].AmountCents),
			Count:      categories[i].Count,
			Percentage: pct,
		})
	}

	comparison := make([]model.YearlyComparison, 0, len(years))
	for i := range years {
		comparison = append(comparison, model.YearlyComparison{
			Year:     years[i].Year,
			Income:   model.CentsToAmount(years[i].IncomeCents),
			Expenses: model.CentsToAmount(years[i].ExpenseCents),
			Balance:  model.CentsToAmount(years[i].IncomeCents - years[i].ExpenseCents),
		})
	}

	report := model.DetailedAnalytics{
		TimeRange:         tr,
		MonthlyTrends:     monthlyTrend(buckets),
		CategoryBreakdown: breakdown,
		YearlyComparison:  comparison,
	}

	return s.serve(ctx, key, report)
}

// cached returns the cached report for key, if any. Cache errors are
// demoted to misses.
func (s *AnalyticsService) cached(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Debug("report cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	return data, ok
}

// serve marshals a freshly computed report, caches it, and returns the
// bytes. A failed cache write only costs the next request a recompute.
func (s *AnalyticsService) serve(ctx context.Context, key string, report any) ([]byte, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("report cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	return data, nil
}

func monthlyTrend(buckets []model.MonthlyBucket) []model.MonthlyTrend {
	trend := make([]model.MonthlyTrend, 0, len(buckets))
	for i := range buckets {
		trend = append(trend, model.MonthlyTrend{
			Year:     buckets[i].Year,
			Month:    buckets[i].Month,
			Income:   model.CentsToAmount(buckets[i].IncomeCents),
			Expenses: model.CentsToAmount(buckets[i].ExpenseCents),
		})
	}
	return trend
}

// windowStart pins a trailing window of months to the first day of its
// oldest month: a 3-month window queried mid-March starts January 1.
func windowStart(now time.Time, months int) model.Date {
	y, m, _ := now.UTC().Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	return model.DateOf(start)
}

func overviewKey(userID string) string {
	return "overview:" + userID
}

// analyticsPrefix matches every cached detailed report for one user,
// whatever its time range.
func analyticsPrefix(userID string) string {
	return "analytics:" + userID + ":"
}
