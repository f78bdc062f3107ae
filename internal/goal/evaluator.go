// Package goal evaluates a parse batch's spending against a fixed goal.
package goal

import "github.com/fintrackr/backend/internal/domain"

// Evaluate sums the batch amounts and compares the total against the goal.
// Pure function, no failure mode. The total covers only the batch being
// evaluated, not the owner's historical ledger; the cumulative comparison
// lives in the budget-status API instead.
func Evaluate(batch []domain.Transaction, goal float64) domain.GoalResult {
	var total float64
	for _, txn := range batch {
		total += txn.Total
	}

	if total <= goal {
		return domain.GoalResult{
			Status:     domain.GoalStatusMet,
			Difference: goal - total,
		}
	}
	return domain.GoalResult{
		Status:     domain.GoalStatusExceeded,
		Difference: total - goal,
	}
}
