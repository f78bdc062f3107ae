package statement

import (
	"fmt"

	"github.com/fintrackr/backend/internal/domain"
)

// Warning describes a non-fatal per-record failure during normalization.
// Warnings travel out-of-band from the parsed batch: the affected record is
// still emitted, with null date/time projections.
type Warning struct {
	Line    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Line, w.Message)
}

// Batch is the ordered transaction sequence produced by one parsing run.
// Transient: it is consumed entirely by the merge engine and the goal
// evaluator.
type Batch struct {
	Transactions []domain.Transaction
	Warnings     []Warning
}

// Total returns the arithmetic sum of the batch amounts.
func (b *Batch) Total() float64 {
	var total float64
	for _, txn := range b.Transactions {
		total += txn.Total
	}
	return total
}

// Parse runs the full text-to-batch transformation: page texts to lines,
// lines to raw matches, matches to canonical transactions. Pure and
// synchronous; the only failure mode is the per-record warning path.
func Parse(pages []string) (*Batch, error) {
	batch := &Batch{}

	for _, match := range Recognize(JoinPages(pages)) {
		txn, warn := assemble(match)
		if warn != nil {
			batch.Warnings = append(batch.Warnings, *warn)
		}
		batch.Transactions = append(batch.Transactions, *txn)
	}

	return batch, nil
}

// assemble converts one raw match into a Transaction. Date/time
// normalization failure degrades the record to null projections and
// produces a warning; it never drops the record or aborts the scan.
func assemble(match Match) (*domain.Transaction, *Warning) {
	var warn *Warning

	ts, err := NormalizeDateTime(match.DateToken(), match.TimeToken())
	tsp := &ts
	if err != nil {
		tsp = nil
		warn = &Warning{
			Line:    fmt.Sprintf("%s %s", match.DateToken(), match.TimeToken()),
			Message: err.Error(),
		}
	}

	// Name and amount were validated by the signature match, so the
	// constructor cannot fail here.
	txn, cerr := domain.NewTransaction(match.Name(), match.Amount(), tsp)
	if cerr != nil {
		txn = &domain.Transaction{Name: match.Name(), Total: match.Amount()}
	}
	return txn, warn
}
