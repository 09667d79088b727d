package store

import (
	"context"
	"database/sql"
	"fmt"
)

// eventRepo implements EventRepo backed by database/sql and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendModelCall(ctx context.Context, data ModelCallEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO model_call_events
			(sequence, provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, data.Provider, data.Model, data.Purpose,
		data.InputTokens, data.OutputTokens, data.LatencyMs,
		data.Success, data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save model call event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendPipelineEvent(ctx context.Context, data PipelineEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO pipeline_events
			(sequence, assignment_id, question_index, state, backend, attempt, status, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, data.AssignmentID, data.QuestionIndex, data.State,
		data.Backend, data.Attempt, data.Status, data.Detail,
	)
	if err != nil {
		return fmt.Errorf("save pipeline event: %w", err)
	}
	return nil
}

const defaultQueryLimit = 50

func (r *eventRepo) RecentModelCalls(ctx context.Context, opts QueryOpts) ([]ModelCallEvent, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	query := `SELECT id, sequence, timestamp, provider, model, purpose,
			input_tokens, output_tokens, latency_ms, success, error_message
		FROM model_call_events`
	args := []any{}
	if opts.Purpose != "" {
		query += ` WHERE purpose = ?`
		args = append(args, opts.Purpose)
	}
	query += ` ORDER BY sequence DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query model calls: %w", err)
	}
	defer rows.Close()

	var events []ModelCallEvent
	for rows.Next() {
		var e ModelCallEvent
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp,
			&e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs,
			&e.Success, &e.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan model call: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepo) ModelCallStats(ctx context.Context) ([]ModelCallStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT model,
			COUNT(*),
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(AVG(latency_ms), 0)
		FROM model_call_events
		GROUP BY model
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query model call stats: %w", err)
	}
	defer rows.Close()

	var stats []ModelCallStat
	for rows.Next() {
		var s ModelCallStat
		if err := rows.Scan(&s.Model, &s.Calls, &s.Failures,
			&s.InputTokens, &s.OutputTokens, &s.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan model call stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *eventRepo) PipelineStats(ctx context.Context) ([]PipelineStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*)
		FROM pipeline_events
		WHERE status != ''
		GROUP BY status
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query pipeline stats: %w", err)
	}
	defer rows.Close()

	var stats []PipelineStat
	for rows.Next() {
		var s PipelineStat
		if err := rows.Scan(&s.Status, &s.Count); err != nil {
			return nil, fmt.Errorf("scan pipeline stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *eventRepo) ReviewDegradedCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pipeline_events WHERE state = 'review_degraded'`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count review degradations: %w", err)
	}
	return n, nil
}
