// Package domain holds the canonical record shapes shared by the statement
// parser, the ledger merge engine, and the HTTP API. JSON and Firestore field
// names follow the wire contract of the original fintrackr service (`sub`,
// `total`, `uploadDate`, `lastUpdate`) and must stay stable.
package domain

import (
	"fmt"
	"time"
)

// DateLayout renders a transaction timestamp as a full ISO-8601 instant.
const DateLayout = "2006-01-02T15:04:05"

// TimeLayout renders the time-of-day projection.
const TimeLayout = "15:04:05"

// Transaction is one spending event extracted from a statement.
//
// Date and Time are derived projections of the same normalized timestamp,
// kept separately for display. Both are nil iff date/time normalization
// failed for a line that matched the transaction signature.
type Transaction struct {
	Name  string  `json:"name" firestore:"name"`
	Total float64 `json:"total" firestore:"total"`
	Date  *string `json:"date" firestore:"date"`
	Time  *string `json:"time" firestore:"time"`
}

// NewTransaction creates a transaction from a payee name, a non-negative
// amount, and an optional normalized timestamp. A nil timestamp yields nil
// Date/Time projections.
func NewTransaction(name string, total float64, ts *time.Time) (*Transaction, error) {
	if name == "" {
		return nil, fmt.Errorf("transaction name cannot be empty")
	}
	if total < 0 {
		return nil, fmt.Errorf("transaction total must be non-negative, got %f", total)
	}

	txn := &Transaction{
		Name:  name,
		Total: total,
	}
	if ts != nil {
		date := ts.Format(DateLayout)
		tod := ts.Format(TimeLayout)
		txn.Date = &date
		txn.Time = &tod
	}
	return txn, nil
}

// LedgerEntry is a Transaction augmented with ownership and ingestion
// metadata by the merge engine. It is a distinct entity from the bare
// Transaction: the parse batch stays immutable, the entry is the copy that
// gets persisted.
type LedgerEntry struct {
	Name       string    `json:"name" firestore:"name"`
	Total      float64   `json:"total" firestore:"total"`
	Date       *string   `json:"date" firestore:"date"`
	Time       *string   `json:"time" firestore:"time"`
	OwnerID    string    `json:"sub" firestore:"sub"`
	IngestedAt time.Time `json:"uploadDate" firestore:"uploadDate"`
}

// NewLedgerEntry copies a transaction and stamps it with the owner and the
// ingestion time.
func NewLedgerEntry(txn Transaction, ownerID string, ingestedAt time.Time) (*LedgerEntry, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID cannot be empty")
	}
	if ingestedAt.IsZero() {
		return nil, fmt.Errorf("ingestion time cannot be zero")
	}

	return &LedgerEntry{
		Name:       txn.Name,
		Total:      txn.Total,
		Date:       txn.Date,
		Time:       txn.Time,
		OwnerID:    ownerID,
		IngestedAt: ingestedAt,
	}, nil
}

// Ledger is the per-user, append-only transaction document. Entries are
// never removed or mutated by a merge; the sequence only grows.
type Ledger struct {
	OwnerID    string        `json:"sub" firestore:"sub"`
	Entries    []LedgerEntry `json:"transactions" firestore:"transactions"`
	LastUpdate time.Time     `json:"lastUpdate" firestore:"lastUpdate"`
}

// GoalStatus reports how a batch total compares against the spending goal.
type GoalStatus string

const (
	GoalStatusMet      GoalStatus = "Met Goal"
	GoalStatusExceeded GoalStatus = "Exceeded Goal"
)

// GoalResult is the derived, non-persisted outcome of a goal evaluation.
// Difference is always non-negative: goal minus total when the goal was met,
// total minus goal when exceeded.
type GoalResult struct {
	Status     GoalStatus `json:"status"`
	Difference float64    `json:"difference"`
}

// MergeOutcome distinguishes how a merge changed the owner's ledger.
type MergeOutcome string

const (
	// MergeOutcomeCreated means the ledger did not exist and now holds
	// exactly the merged batch.
	MergeOutcomeCreated MergeOutcome = "created"
	// MergeOutcomeAppended means an existing ledger grew by the batch.
	MergeOutcomeAppended MergeOutcome = "appended"
	// MergeOutcomeNoop means the store reported no modification. Rare and
	// defensive for a non-empty batch; worth flagging when observed.
	MergeOutcomeNoop MergeOutcome = "no-op"
)

// MergeResult is the structured outcome of a ledger merge. Status is
// "success" or "error"; storage failures surface here as a message, never
// as a fault escaping the merge boundary.
type MergeResult struct {
	Status            string       `json:"status"`
	Outcome           MergeOutcome `json:"outcome,omitempty"`
	Message           string       `json:"message"`
	TransactionsCount int          `json:"transactions_count"`
}

// OK reports whether the merge succeeded.
func (r *MergeResult) OK() bool {
	return r.Status == StatusSuccess
}

// Run result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RunData is the success payload of a parsing run.
type RunData struct {
	Transactions      []Transaction `json:"transactions"`
	OverallGoalStatus GoalStatus    `json:"overallGoalStatus"`
	OverallDifference float64       `json:"overallDifference"`
	UploadResult      MergeResult   `json:"upload_result"`
}

// RunResult is the sole externally observable contract of a parsing run.
type RunResult struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Data    *RunData `json:"data,omitempty"`
}

// ErrorResult builds a run result for a fatal failure.
func ErrorResult(format string, args ...interface{}) *RunResult {
	return &RunResult{
		Status:  StatusError,
		Message: fmt.Sprintf(format, args...),
	}
}
