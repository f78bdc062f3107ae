// Package pipeline orchestrates a full ingest run: extract statement text,
// parse transactions, merge them into the owner's ledger, and evaluate the
// spending goal for the batch.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/fintrackr/backend/internal/domain"
	"github.com/fintrackr/backend/internal/extract"
	"github.com/fintrackr/backend/internal/goal"
	"github.com/fintrackr/backend/internal/ledger"
	"github.com/fintrackr/backend/internal/statement"
	"github.com/fintrackr/backend/internal/streaming"
)

// IncorrectPasswordMessage is the run-level message for a document that
// could not be decrypted. Clients match on it to prompt for a password.
const IncorrectPasswordMessage = "INCORRECT_PASSWORD"

// Pipeline runs statement documents through extraction, parsing, merging,
// and goal evaluation.
type Pipeline struct {
	extractor    extract.Extractor
	merger       *ledger.Merger
	spendingGoal float64
	hub          *streaming.StreamHub
}

// NewPipeline creates an ingest pipeline. The hub may be nil when no one
// streams progress (CLI runs).
func NewPipeline(extractor extract.Extractor, store ledger.Store, spendingGoal float64, hub *streaming.StreamHub) *Pipeline {
	return &Pipeline{
		extractor:    extractor,
		merger:       ledger.NewMerger(store),
		spendingGoal: spendingGoal,
		hub:          hub,
	}
}

// Run processes one statement document for the owner and returns the run
// result. Fatal document failures (unreadable PDF, wrong password, storage
// errors) produce an error result; per-line normalization problems are
// logged and broadcast but never fail the run.
func (p *Pipeline) Run(ctx context.Context, ingestID, ownerID string, data []byte, password string) *domain.RunResult {
	p.stage(ingestID, streaming.StageExtracting, "")

	pages, err := p.extractor.Pages(data, password)
	if err != nil {
		if err == extract.ErrIncorrectPassword {
			return p.fail(ingestID, IncorrectPasswordMessage)
		}
		log.Printf("ERROR: Failed to extract document text for user %s: %v", ownerID, err)
		return p.fail(ingestID, fmt.Sprintf("Error processing PDF: %v", err))
	}

	p.stage(ingestID, streaming.StageParsing, "")

	batch, err := statement.Parse(pages)
	if err != nil {
		log.Printf("ERROR: Failed to parse statement for user %s: %v", ownerID, err)
		return p.fail(ingestID, fmt.Sprintf("Error processing PDF: %v", err))
	}

	for _, warning := range batch.Warnings {
		log.Printf("WARNING: %s (line: %q)", warning.Message, warning.Line)
		p.warn(ingestID, warning)
	}

	p.stage(ingestID, streaming.StageMerging, fmt.Sprintf("%d transactions", len(batch.Transactions)))

	mergeResult := p.merger.Merge(ctx, ownerID, batch.Transactions)
	if !mergeResult.OK() {
		return p.fail(ingestID, mergeResult.Message)
	}

	p.stage(ingestID, streaming.StageEvaluating, "")

	goalResult := goal.Evaluate(batch.Transactions, p.spendingGoal)

	result := &domain.RunResult{
		Status: domain.StatusSuccess,
		Data: &domain.RunData{
			Transactions:      batch.Transactions,
			OverallGoalStatus: goalResult.Status,
			OverallDifference: goalResult.Difference,
			UploadResult:      mergeResult,
		},
	}

	if p.hub != nil && ingestID != "" {
		p.hub.Broadcast(ingestID, streaming.NewCompleteEvent(streaming.CompleteEvent{
			IngestID:          ingestID,
			TransactionsCount: len(batch.Transactions),
			OverallGoalStatus: string(goalResult.Status),
			OverallDifference: goalResult.Difference,
		}))
	}

	return result
}

func (p *Pipeline) stage(ingestID string, stage streaming.Stage, detail string) {
	if p.hub == nil || ingestID == "" {
		return
	}
	p.hub.Broadcast(ingestID, streaming.NewStageEvent(streaming.StageEvent{
		IngestID: ingestID,
		Stage:    stage,
		Detail:   detail,
	}))
}

func (p *Pipeline) warn(ingestID string, warning statement.Warning) {
	if p.hub == nil || ingestID == "" {
		return
	}
	p.hub.Broadcast(ingestID, streaming.NewWarningEvent(streaming.WarningEvent{
		IngestID: ingestID,
		Line:     warning.Line,
		Message:  warning.Message,
	}))
}

func (p *Pipeline) fail(ingestID, message string) *domain.RunResult {
	if p.hub != nil && ingestID != "" {
		p.hub.Broadcast(ingestID, streaming.NewErrorEvent(streaming.ErrorEvent{
			IngestID: ingestID,
			Message:  message,
		}))
	}
	return domain.ErrorResult("%s", message)
}
