// Package usage describes embedding token consumption against the configured budget.
package usage

import "fmt"

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts "day" (the default for "") or "month".
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Report is a token usage snapshot for one period.
// A zero limit means the period is unlimited.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	tokensUsed  int64
	tokensLimit int64
}

// NewReport creates a usage report; start and end are unix millis.
func NewReport(period Period, start, end, used, limit int64) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		tokensUsed:  used,
		tokensLimit: limit,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end, which is also when the budget resets (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// TokensUsed returns tokens consumed in the period.
func (r *Report) TokensUsed() int64 { return r.tokensUsed }

// TokensLimit returns the token cap, 0 when unlimited.
func (r *Report) TokensLimit() int64 { return r.tokensLimit }

// Unlimited reports whether no cap applies.
func (r *Report) Unlimited() bool { return r.tokensLimit <= 0 }

// TokensRemaining returns tokens left, or -1 when unlimited.
func (r *Report) TokensRemaining() int64 {
	if r.Unlimited() {
		return -1
	}
	return max(r.tokensLimit-r.tokensUsed, 0)
}

// IsExhausted reports whether a capped budget is spent.
func (r *Report) IsExhausted() bool {
	return !r.Unlimited() && r.tokensUsed >= r.tokensLimit
}
