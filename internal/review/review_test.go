package review

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/llm"
)

func verdictJSON(t *testing.T, v map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func specUnderReview() *diagram.RenderSpec {
	return &diagram.RenderSpec{
		Backend:     diagram.BackendProcedural,
		Subtype:     "pyplot",
		Description: "Projectile trajectory launched at 30 degrees",
	}
}

func TestReview_PassedVerdict(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: verdictJSON(t, map[string]any{
		"passed": true, "reason": "clear and fully labeled", "issues": []string{},
		"failure_category": "none", "fixable": false, "corrected_description": "",
	})})
	gate := NewRenderReviewer(mock, nil, nil)

	v, err := gate.Review(context.Background(), "Find the range.", specUnderReview(), []byte("png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Passed || v.Degraded || v.Fixable || len(v.Issues) != 0 {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestReview_RequestCarriesImageAndSchema(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: verdictJSON(t, map[string]any{
		"passed": true, "reason": "ok", "issues": []string{},
		"failure_category": "none", "fixable": false, "corrected_description": "",
	})})
	gate := NewRenderReviewer(mock, nil, nil)

	if _, err := gate.Review(context.Background(), "Find the range.", specUnderReview(), []byte("pngbytes")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := mock.Calls[0]
	if req.Schema == nil || req.Schema.Name != "diagram-review-verdict" {
		t.Fatal("verdict schema not attached")
	}
	if len(req.Messages[0].Images) != 1 || string(req.Messages[0].Images[0].Data) != "pngbytes" {
		t.Fatal("candidate image not attached to the review message")
	}
	if !strings.Contains(req.Messages[0].Content, "Find the range.") {
		t.Fatal("question text missing from review message")
	}
}

func TestReview_AnswerLeakNeverFixable(t *testing.T) {
	// The model claims fixable; the category overrules it.
	mock := llm.NewMockProvider(llm.MockResponse{Content: verdictJSON(t, map[string]any{
		"passed": false, "reason": "range value printed on plot",
		"issues":           []string{"R = 79.4 m annotated at impact point"},
		"failure_category": "answer_leak", "fixable": true,
		"corrected_description": "Trajectory plot without the computed range",
	})})
	gate := NewRenderReviewer(mock, nil, nil)

	v, err := gate.Review(context.Background(), "Find the range.", specUnderReview(), []byte("png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Passed || v.Fixable {
		t.Fatalf("answer leak must fail unfixably: %+v", v)
	}
	if v.CorrectedDescription == "" {
		t.Fatal("failed verdict should carry a corrected description")
	}
}

func TestReview_MissingLabelsFixable(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: verdictJSON(t, map[string]any{
		"passed": false, "reason": "axis unlabeled",
		"issues":           []string{"y axis has no unit"},
		"failure_category": "missing_labels", "fixable": true,
		"corrected_description": "Same plot with y axis labeled height (m)",
	})})
	gate := NewImageReviewer(mock, nil, nil)

	v, err := gate.Review(context.Background(), "Find the range.", specUnderReview(), []byte("png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Passed || !v.Fixable {
		t.Fatalf("sole labeling failure should stay fixable: %+v", v)
	}
}

func TestReview_TransientFailureRetriesOnFreshProvider(t *testing.T) {
	failing := llm.NewMockProvider(llm.MockResponse{Err: errors.New("connection reset")})
	healthy := llm.NewMockProvider(llm.MockResponse{Content: verdictJSON(t, map[string]any{
		"passed": true, "reason": "ok", "issues": []string{},
		"failure_category": "none", "fixable": false, "corrected_description": "",
	})})

	rebuilds := 0
	gate := NewRenderReviewer(failing, func(ctx context.Context) (llm.Provider, error) {
		rebuilds++
		return healthy, nil
	}, nil)

	v, err := gate.Review(context.Background(), "q", specUnderReview(), []byte("png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rebuilds != 1 {
		t.Fatalf("provider rebuilt %d times, want 1", rebuilds)
	}
	if !v.Passed || v.Degraded {
		t.Fatalf("retry should have produced a real verdict: %+v", v)
	}
}

func TestReview_DoubleFailureDegradesToPass(t *testing.T) {
	failing := llm.NewMockProvider(
		llm.MockResponse{Err: errors.New("boom")},
		llm.MockResponse{Err: errors.New("boom again")},
	)
	gate := NewRenderReviewer(failing, nil, nil)

	v, err := gate.Review(context.Background(), "q", specUnderReview(), []byte("png"))
	if err != nil {
		t.Fatalf("degraded review must not surface an error, got: %v", err)
	}
	if !v.Passed || !v.Degraded || v.Reason != "review skipped" {
		t.Fatalf("unexpected degraded verdict: %+v", v)
	}
	if failing.CallCount() != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", failing.CallCount())
	}
}

// One Gate serves every pipeline in a batch, so transient failures can
// trigger provider rebuilds while sibling reviews are mid-call. Run under
// the race detector.
func TestReview_ConcurrentRebuildsAreSafe(t *testing.T) {
	// Empty queue: every Generate on the shared provider fails.
	failing := llm.NewMockProvider()

	var rebuilds atomic.Int64
	gate := NewRenderReviewer(failing, func(ctx context.Context) (llm.Provider, error) {
		rebuilds.Add(1)
		return llm.NewMockProvider(llm.MockResponse{Content: verdictJSON(t, map[string]any{
			"passed": true, "reason": "ok", "issues": []string{},
			"failure_category": "none", "fixable": false, "corrected_description": "",
		})}), nil
	}, nil)

	const workers = 8
	verdicts := make([]*diagram.ReviewVerdict, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := gate.Review(context.Background(), "q", specUnderReview(), []byte("png"))
			if err != nil {
				t.Errorf("worker %d: unexpected error: %v", i, err)
				return
			}
			verdicts[i] = v
		}(i)
	}
	wg.Wait()

	if rebuilds.Load() == 0 {
		t.Fatal("expected at least one provider rebuild")
	}
	for i, v := range verdicts {
		if v == nil || !v.Passed {
			t.Fatalf("worker %d got no passing verdict: %+v", i, v)
		}
	}
}

func TestReview_UnparseableVerdictDegrades(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`"not a verdict"`)})
	gate := NewImageReviewer(mock, nil, nil)

	v, err := gate.Review(context.Background(), "q", specUnderReview(), []byte("png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Passed || !v.Degraded {
		t.Fatalf("unparseable verdict should degrade: %+v", v)
	}
}
