package goal

import (
	"testing"

	"github.com/fintrackr/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func batchOf(amounts ...float64) []domain.Transaction {
	batch := make([]domain.Transaction, 0, len(amounts))
	for _, amount := range amounts {
		batch = append(batch, domain.Transaction{Name: "payee", Total: amount})
	}
	return batch
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name           string
		amounts        []float64
		goal           float64
		wantStatus     domain.GoalStatus
		wantDifference float64
	}{
		{
			name:           "under goal",
			amounts:        []float64{1000, 500},
			goal:           3000,
			wantStatus:     domain.GoalStatusMet,
			wantDifference: 1500,
		},
		{
			name:           "exactly at goal",
			amounts:        []float64{1500, 1500},
			goal:           3000,
			wantStatus:     domain.GoalStatusMet,
			wantDifference: 0,
		},
		{
			name:           "one rupee over",
			amounts:        []float64{3001},
			goal:           3000,
			wantStatus:     domain.GoalStatusExceeded,
			wantDifference: 1.0,
		},
		{
			name:           "empty batch reports full goal as headroom",
			amounts:        nil,
			goal:           3000,
			wantStatus:     domain.GoalStatusMet,
			wantDifference: 3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(batchOf(tt.amounts...), tt.goal)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.InDelta(t, tt.wantDifference, result.Difference, 1e-9)
		})
	}
}

// The evaluator considers only the batch it is handed, never historical
// ledger state.
func TestEvaluate_BatchOnly(t *testing.T) {
	first := Evaluate(batchOf(2900), 3000)
	assert.Equal(t, domain.GoalStatusMet, first.Status)

	// A second batch of the same size is evaluated in isolation even though
	// the cumulative spend would exceed the goal.
	second := Evaluate(batchOf(2900), 3000)
	assert.Equal(t, domain.GoalStatusMet, second.Status)
	assert.InDelta(t, 100, second.Difference, 1e-9)
}
