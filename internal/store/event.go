package store

import (
	"context"
	"time"
)

// ModelCallEventData captures the data for a single model API call.
type ModelCallEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// ModelCallEvent is a stored model call with its assigned ordering.
type ModelCallEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	ModelCallEventData
}

// PipelineEventData captures one pipeline state transition.
type PipelineEventData struct {
	AssignmentID  string
	QuestionIndex int
	State         string
	Backend       string
	Attempt       int
	Status        string
	Detail        string
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = default cap)
	Purpose string // filter model calls by purpose
}

// ModelCallStat is a per-model aggregate row for the stats command.
type ModelCallStat struct {
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs float64
}

// PipelineStat aggregates pipeline terminal statuses.
type PipelineStat struct {
	Status string
	Count  int
}

// EventRepo provides append and query access to audit events.
type EventRepo interface {
	// AppendModelCall records one model API call event.
	AppendModelCall(ctx context.Context, data ModelCallEventData) error

	// AppendPipelineEvent records one pipeline state transition.
	AppendPipelineEvent(ctx context.Context, data PipelineEventData) error

	// RecentModelCalls returns model call events, newest first.
	RecentModelCalls(ctx context.Context, opts QueryOpts) ([]ModelCallEvent, error)

	// ModelCallStats aggregates model calls per model.
	ModelCallStats(ctx context.Context) ([]ModelCallStat, error)

	// PipelineStats aggregates terminal pipeline statuses.
	PipelineStats(ctx context.Context) ([]PipelineStat, error)

	// ReviewDegradedCount reports how many reviews were skipped after a
	// review-service failure. Surfaced by stats for offline audit.
	ReviewDegradedCount(ctx context.Context) (int, error)
}
