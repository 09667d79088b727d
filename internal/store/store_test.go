package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndQueryModelCalls(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendModelCall(ctx, ModelCallEventData{
		Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "classification",
		InputTokens: 120, OutputTokens: 40, LatencyMs: 800, Success: true,
	}))
	require.NoError(t, repo.AppendModelCall(ctx, ModelCallEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "code-generation",
		InputTokens: 900, OutputTokens: 500, LatencyMs: 3200, Success: false,
		ErrorMessage: "rate limited",
	}))

	events, err := repo.RecentModelCalls(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	require.Equal(t, "code-generation", events[0].Purpose)
	require.Greater(t, events[0].Sequence, events[1].Sequence)

	filtered, err := repo.RecentModelCalls(ctx, QueryOpts{Purpose: "classification"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "claude-haiku-4-5", filtered[0].Model)
}

func TestModelCallStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.AppendModelCall(ctx, ModelCallEventData{
			Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "review",
			InputTokens: 100, OutputTokens: 50, LatencyMs: 1000, Success: i != 2,
		}))
	}

	stats, err := repo.ModelCallStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, 3, stats[0].Calls)
	require.Equal(t, 1, stats[0].Failures)
	require.Equal(t, 300, stats[0].InputTokens)
	require.Equal(t, 150, stats[0].OutputTokens)
}

func TestPipelineEventsAndStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendPipelineEvent(ctx, PipelineEventData{
		AssignmentID: "a1", QuestionIndex: 0, State: "review", Backend: "procedural-plot", Attempt: 1,
	}))
	require.NoError(t, repo.AppendPipelineEvent(ctx, PipelineEventData{
		AssignmentID: "a1", QuestionIndex: 0, State: "terminal", Status: "accepted",
	}))
	require.NoError(t, repo.AppendPipelineEvent(ctx, PipelineEventData{
		AssignmentID: "a1", QuestionIndex: 1, State: "terminal", Status: "exhausted",
	}))
	require.NoError(t, repo.AppendPipelineEvent(ctx, PipelineEventData{
		AssignmentID: "a1", QuestionIndex: 1, State: "review_degraded", Detail: "review skipped",
	}))

	stats, err := repo.PipelineStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	degraded, err := repo.ReviewDegradedCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, degraded)
}

func TestSequenceIsMonotonicAcrossTables(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendModelCall(ctx, ModelCallEventData{
		Provider: "mock", Model: "mock", Purpose: "classification", Success: true,
	}))
	require.NoError(t, repo.AppendPipelineEvent(ctx, PipelineEventData{
		AssignmentID: "a1", State: "classify",
	}))
	require.NoError(t, repo.AppendModelCall(ctx, ModelCallEventData{
		Provider: "mock", Model: "mock", Purpose: "review", Success: true,
	}))

	events, err := repo.RecentModelCalls(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	// The pipeline event consumed sequence 2, so the model calls hold 1 and 3.
	require.Equal(t, int64(3), events[0].Sequence)
	require.Equal(t, int64(1), events[1].Sequence)
}
