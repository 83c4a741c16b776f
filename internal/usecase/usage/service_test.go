package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/newsrec/internal/domain/usage"
)

type mockBudgetReader struct {
	reports map[domusage.Period]domusage.Report
}

func (m *mockBudgetReader) Snapshot(period domusage.Period) domusage.Report {
	return m.reports[period]
}

func TestGetReport_FromBudget(t *testing.T) {
	br := &mockBudgetReader{reports: map[domusage.Period]domusage.Report{
		domusage.PeriodDay: domusage.NewReport(domusage.PeriodDay, 1, 2, 3000, 10000),
	}}
	r := New(br).GetReport(context.Background(), domusage.PeriodDay)

	if r.TokensUsed() != 3000 || r.TokensRemaining() != 7000 {
		t.Errorf("unexpected report used=%d remaining=%d", r.TokensUsed(), r.TokensRemaining())
	}
}

func TestGetReport_NilBudgetDay(t *testing.T) {
	svc := New(nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC) }

	r := svc.GetReport(context.Background(), domusage.PeriodDay)
	if !r.Unlimited() || r.IsExhausted() {
		t.Error("nil budget should be unlimited")
	}
	if r.PeriodStart() != time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("unexpected start %d", r.PeriodStart())
	}
	if r.PeriodEnd() != time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("unexpected end %d", r.PeriodEnd())
	}
}

func TestGetReport_NilBudgetMonth(t *testing.T) {
	svc := New(nil)
	svc.now = func() time.Time { return time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC) }

	r := svc.GetReport(context.Background(), domusage.PeriodMonth)
	if r.Period() != domusage.PeriodMonth {
		t.Errorf("expected month period, got %q", r.Period())
	}
	if r.PeriodEnd() != time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("unexpected end %d", r.PeriodEnd())
	}
}
