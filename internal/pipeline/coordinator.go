package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/storage"
)

// DefaultConcurrency bounds how many questions render at once. Renders hold
// an interpreter process and a model connection each; five keeps a typical
// assignment moving without saturating either.
const DefaultConcurrency = 5

// QuestionResult is the per-question slot in a batch result.
type QuestionResult struct {
	Outcome *diagram.Outcome

	// Uploaded is set when the outcome was accepted and an uploader is
	// configured.
	Uploaded *storage.Object

	// Err is a per-question failure: an unusable request or a failed
	// upload. A rejected or exhausted pipeline run is not an Err; the
	// outcome carries that.
	Err error
}

// BatchResult maps question index to result. Every input request has an
// entry.
type BatchResult struct {
	Results map[int]*QuestionResult
}

// Accepted counts questions that produced a usable image.
func (b *BatchResult) Accepted() int {
	n := 0
	for _, r := range b.Results {
		if r.Outcome != nil && r.Outcome.Accepted() {
			n++
		}
	}
	return n
}

// Runner is the per-question pipeline the coordinator fans out over.
// *Orchestrator is the production implementation.
type Runner interface {
	Run(ctx context.Context, req diagram.Request) (*diagram.Outcome, error)
}

// Coordinator fans an assignment's questions across workers. Questions are
// isolated: one failure never cancels or degrades its siblings.
type Coordinator struct {
	orch        Runner
	uploader    storage.Uploader
	concurrency int
	logger      *zap.Logger
}

// NewCoordinator creates a Coordinator. uploader may be nil; accepted
// images then stay in memory on the outcome only.
func NewCoordinator(orch Runner, uploader storage.Uploader, concurrency int, logger *zap.Logger) *Coordinator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{orch: orch, uploader: uploader, concurrency: concurrency, logger: logger}
}

// RunBatch processes every request and returns when all have reached a
// terminal state. The error is reserved for context cancellation.
func (c *Coordinator) RunBatch(ctx context.Context, reqs []diagram.Request) (*BatchResult, error) {
	batch := &BatchResult{Results: make(map[int]*QuestionResult, len(reqs))}
	var mu sync.Mutex

	// A plain group, not WithContext: a failing question must not cancel
	// its siblings.
	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for _, req := range reqs {
		req := req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := c.runOne(ctx, req)
			mu.Lock()
			batch.Results[req.QuestionIndex] = res
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return batch, err
}

func (c *Coordinator) runOne(ctx context.Context, req diagram.Request) *QuestionResult {
	outcome, err := c.orch.Run(ctx, req)
	if err != nil {
		c.logger.Warn("question failed",
			zap.Int("question", req.QuestionIndex), zap.Error(err))
		return &QuestionResult{Err: err}
	}

	res := &QuestionResult{Outcome: outcome}
	if !outcome.Accepted() || c.uploader == nil {
		return res
	}

	key := objectKey(req)
	obj, err := c.uploader.Put(ctx, key, outcome.FinalImage)
	if err != nil {
		c.logger.Warn("upload failed",
			zap.Int("question", req.QuestionIndex),
			zap.String("key", key), zap.Error(err))
		res.Err = fmt.Errorf("upload %q: %w", key, err)
		return res
	}
	res.Uploaded = &obj
	return res
}

func objectKey(req diagram.Request) string {
	id := req.AssignmentID
	if id == "" {
		id = "adhoc"
	}
	return fmt.Sprintf("%s/q%03d.png", id, req.QuestionIndex)
}
