// Package ledger implements the merge engine that appends parsed
// transaction batches onto per-user, append-only ledgers.
package ledger

import (
	"context"
	"errors"

	"github.com/fintrackr/backend/internal/domain"
)

// ErrNotFound is returned by Store implementations for lookups of ledgers
// that were never created.
var ErrNotFound = errors.New("ledger not found")

// AppendResult reports how the store applied an append.
type AppendResult struct {
	// Created is true when the ledger document did not exist and was
	// created holding exactly the appended entries.
	Created bool
	// Modified is true when an existing ledger grew by the entries. A
	// result with neither flag set means the store reported no
	// modification.
	Modified bool
}

// Store is the upsert-capable document store a merge runs against.
//
// AppendEntries must be atomic from the perspective of any concurrent
// reader: create-if-absent and append-with-last-update happen as one
// operation, never as an unguarded read-modify-write pair, so two
// concurrent merges for the same owner cannot lose entries.
type Store interface {
	AppendEntries(ctx context.Context, ownerID string, entries []domain.LedgerEntry) (AppendResult, error)

	// Ledger returns the owner's full ledger document, or ErrNotFound.
	Ledger(ctx context.Context, ownerID string) (*domain.Ledger, error)
}
