package domain

import "time"

// RequestKind identifies which operation a deferred request replays through.
type RequestKind string

const (
	KindVideo   RequestKind = "video"
	KindFrame   RequestKind = "frame"
	KindConfig  RequestKind = "config"
	KindSummary RequestKind = "summary"
)

// QueuedRequest is a mutating call deferred while offline.
type QueuedRequest struct {
	ID           string
	Kind         RequestKind
	Payload      any
	EnqueuedAt   time.Time
	AttemptCount int
}

// OperationState is the terminal (or transient) state of one public call.
type OperationState string

const (
	StateIdle       OperationState = "idle"
	StateDispatched OperationState = "dispatched"
	StateRetrying   OperationState = "retrying"
	StateSucceeded  OperationState = "succeeded"
	StateDegraded   OperationState = "degraded"
	StateQueued     OperationState = "queued"
	StateFailed     OperationState = "failed"
)
