package model

import "fmt"

// TimeRange selects the trailing window a detailed report covers.
type TimeRange string

const (
	Range3Months  TimeRange = "3months"
	Range6Months  TimeRange = "6months"
	Range12Months TimeRange = "12months"
	Range2Years   TimeRange = "2years"
)

// DefaultTimeRange is used when a request does not name a range.
const DefaultTimeRange = Range12Months

// ParseTimeRange maps a query parameter to a TimeRange. Empty input
// selects the default; anything else unknown is rejected.
func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(s) {
	case "":
		return DefaultTimeRange, nil
	case Range3Months, Range6Months, Range12Months, Range2Years:
		return TimeRange(s), nil
	default:
		return "", fmt.Errorf("invalid time range %q", s)
	}
}

// Months returns the window length in calendar months.
func (tr TimeRange) Months() int {
	switch tr {
	case Range3Months:
		return 3
	case Range6Months:
		return 6
	case Range2Years:
		return 24
	default:
		return 12
	}
}

// Totals is the all-time income/expense aggregate for one user, in cents.
type Totals struct {
	IncomeCents  int64
	ExpenseCents int64
	Count        int64
}

// MonthlyBucket sums one user's income and expenses for a single
// (year, month), in cents.
type MonthlyBucket struct {
	Year         int
	Month        int
	IncomeCents  int64
	ExpenseCents int64
}

// CategorySum aggregates expense-type transactions by category, in cents.
type CategorySum struct {
	Category    string
	AmountCents int64
	Count       int64
}

// YearlySum sums one user's income and expenses for a calendar year, in cents.
type YearlySum struct {
	Year         int
	IncomeCents  int64
	ExpenseCents int64
}

// MonthlyTrend is one (year, month) bucket of an analytics response.
// Months without transactions are omitted rather than zero-filled.
type MonthlyTrend struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// Overview is the response body for the overview report.
type Overview struct {
	TotalIncome      float64        `json:"totalIncome"`
	TotalExpenses    float64        `json:"totalExpenses"`
	Balance          float64        `json:"balance"`
	TransactionCount int64          `json:"transactionCount"`
	MonthlyTrend     []MonthlyTrend `json:"monthlyTrend"`
}

// CategoryBreakdown is one category row of a detailed report, sorted by
// amount descending. Percentage is of total expenses in the window and
// is zero when there are no expenses.
type CategoryBreakdown struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// YearlyComparison is one calendar-year row of a detailed report.
type YearlyComparison struct {
	Year     int     `json:"year"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// DetailedAnalytics is the response body for the detailed report.
type DetailedAnalytics struct {
	TimeRange         TimeRange           `json:"timeRange"`
	MonthlyTrends     []MonthlyTrend      `json:"monthlyTrends"`
	CategoryBreakdown []CategoryBreakdown `json:"categoryBreakdown"`
	YearlyComparison  []YearlyComparison  `json:"yearlyComparison"`
}
