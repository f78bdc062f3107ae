package ledger

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fintrackr/backend/internal/domain"
)

// Merger appends parse batches to per-user ledgers, augmenting each
// transaction with ownership and ingestion metadata before handing it to the
// store.
//
// No deduplication is performed across merges: re-ingesting the same
// statement produces duplicate entries. Callers are responsible for not
// re-submitting the same document.
type Merger struct {
	store Store
	now   func() time.Time
}

// NewMerger creates a merge engine over the given store.
func NewMerger(store Store) *Merger {
	return &Merger{
		store: store,
		now:   time.Now,
	}
}

// NewMergerWithClock creates a merge engine with an injected clock, for
// deterministic ingestion timestamps in tests.
func NewMergerWithClock(store Store, now func() time.Time) *Merger {
	return &Merger{store: store, now: now}
}

// Merge appends the batch onto the owner's ledger, creating the ledger if it
// does not exist. An empty batch is a no-op that reports success without
// touching storage. Storage failures never escape as faults; they come back
// as an error-status result with a human-readable message.
func (m *Merger) Merge(ctx context.Context, ownerID string, batch []domain.Transaction) domain.MergeResult {
	if len(batch) == 0 {
		return domain.MergeResult{
			Status:  domain.StatusSuccess,
			Message: "No transactions to upload.",
		}
	}

	ingestedAt := m.now()
	entries := make([]domain.LedgerEntry, 0, len(batch))
	for _, txn := range batch {
		entry, err := domain.NewLedgerEntry(txn, ownerID, ingestedAt)
		if err != nil {
			return domain.MergeResult{
				Status:  domain.StatusError,
				Message: fmt.Sprintf("Error uploading transactions: %v", err),
			}
		}
		entries = append(entries, *entry)
	}

	result, err := m.store.AppendEntries(ctx, ownerID, entries)
	if err != nil {
		return domain.MergeResult{
			Status:  domain.StatusError,
			Message: fmt.Sprintf("Error uploading transactions: %v", err),
		}
	}

	switch {
	case result.Created:
		return domain.MergeResult{
			Status:            domain.StatusSuccess,
			Outcome:           domain.MergeOutcomeCreated,
			Message:           fmt.Sprintf("Created new transaction document for user %s and uploaded %d transactions.", ownerID, len(batch)),
			TransactionsCount: len(batch),
		}
	case result.Modified:
		return domain.MergeResult{
			Status:            domain.StatusSuccess,
			Outcome:           domain.MergeOutcomeAppended,
			Message:           fmt.Sprintf("Appended %d transactions to existing document for user %s.", len(batch), ownerID),
			TransactionsCount: len(batch),
		}
	default:
		// Should be unreachable for a non-empty batch; flag it.
		log.Printf("WARNING: ledger append for user %s reported no modification for %d entries", ownerID, len(entries))
		return domain.MergeResult{
			Status:            domain.StatusSuccess,
			Outcome:           domain.MergeOutcomeNoop,
			Message:           fmt.Sprintf("No changes made for user %s.", ownerID),
			TransactionsCount: len(batch),
		}
	}
}
