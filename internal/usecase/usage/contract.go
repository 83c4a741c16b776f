package usage

import domusage "github.com/kailas-cloud/newsrec/internal/domain/usage"

// BudgetReader provides read-only access to token budget state.
type BudgetReader interface {
	Snapshot(period domusage.Period) domusage.Report
}
