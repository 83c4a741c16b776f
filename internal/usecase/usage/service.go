// Package usage reports embedding token consumption.
package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/newsrec/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the current day or month.
// Without a budget the report is unlimited with zero usage.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	if s.br != nil {
		return s.br.Snapshot(period)
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	if period == domusage.PeriodMonth {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	}
	return domusage.NewReport(period, start.UnixMilli(), end.UnixMilli(), 0, 0)
}
