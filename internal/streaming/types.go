package streaming

import "time"

// EventType represents the type of SSE event
type EventType string

const (
	EventTypeStage     EventType = "stage"
	EventTypeWarning   EventType = "warning"
	EventTypeComplete  EventType = "complete"
	EventTypeError     EventType = "error"
	EventTypeHeartbeat EventType = "heartbeat"
)

// Stage identifies a step of an ingest run.
type Stage string

const (
	StageReceived   Stage = "received"
	StageExtracting Stage = "extracting"
	StageParsing    Stage = "parsing"
	StageMerging    Stage = "merging"
	StageEvaluating Stage = "evaluating"
)

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StageEvent reports an ingest run entering a stage.
type StageEvent struct {
	IngestID string `json:"ingestId"`
	Stage    Stage  `json:"stage"`
	Detail   string `json:"detail,omitempty"`
}

// WarningEvent reports a statement line that matched the transaction
// signature but could not be fully normalized.
type WarningEvent struct {
	IngestID string `json:"ingestId"`
	Line     string `json:"line,omitempty"`
	Message  string `json:"message"`
}

// CompleteEvent carries the final result of an ingest run.
type CompleteEvent struct {
	IngestID          string  `json:"ingestId"`
	TransactionsCount int     `json:"transactionsCount"`
	OverallGoalStatus string  `json:"overallGoalStatus"`
	OverallDifference float64 `json:"overallDifference"`
}

// ErrorEvent reports a fatal ingest failure.
type ErrorEvent struct {
	IngestID string `json:"ingestId"`
	Message  string `json:"message"`
}

// NewStageEvent wraps a stage event for broadcast.
func NewStageEvent(data StageEvent) SSEEvent {
	return SSEEvent{Type: EventTypeStage, Timestamp: time.Now(), Data: data}
}

// NewWarningEvent wraps a warning event for broadcast.
func NewWarningEvent(data WarningEvent) SSEEvent {
	return SSEEvent{Type: EventTypeWarning, Timestamp: time.Now(), Data: data}
}

// NewCompleteEvent wraps a completion event for broadcast.
func NewCompleteEvent(data CompleteEvent) SSEEvent {
	return SSEEvent{Type: EventTypeComplete, Timestamp: time.Now(), Data: data}
}

// NewErrorEvent wraps an error event for broadcast.
func NewErrorEvent(data ErrorEvent) SSEEvent {
	return SSEEvent{Type: EventTypeError, Timestamp: time.Now(), Data: data}
}

// NewHeartbeatEvent builds a keep-alive event.
func NewHeartbeatEvent() SSEEvent {
	return SSEEvent{Type: EventTypeHeartbeat, Timestamp: time.Now()}
}

// StageData extracts the stage payload, if this is a stage event.
func (e SSEEvent) StageData() (StageEvent, bool) {
	data, ok := e.Data.(StageEvent)
	return data, ok
}

// ErrorData extracts the error payload, if this is an error event.
func (e SSEEvent) ErrorData() (ErrorEvent, bool) {
	data, ok := e.Data.(ErrorEvent)
	return data, ok
}
