// Package pipeline drives one diagram request through classification,
// routing, generation, rendering, and review, and fans batches out across
// questions.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vidyaai/diagramgen/internal/backend"
	"github.com/vidyaai/diagramgen/internal/codegen"
	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/llm"
	"github.com/vidyaai/diagramgen/internal/review"
	"github.com/vidyaai/diagramgen/internal/router"
	"github.com/vidyaai/diagramgen/internal/store"
	"github.com/vidyaai/diagramgen/internal/taxonomy"
)

// MaxAttempts is the per-question render budget. A fix consumes an attempt
// like any other candidate.
const MaxAttempts = 3

// ErrEmptyRequest rejects requests with no text to work from.
var ErrEmptyRequest = errors.New("request has no question text or description")

// Deps wires the orchestrator. Events and Logger may be nil.
type Deps struct {
	Classifier     *taxonomy.Classifier
	Agent          *codegen.Agent
	Registry       *backend.Registry
	RenderReviewer *review.Gate
	ImageReviewer  *review.Gate
	Events         store.EventRepo
	Logger         *zap.Logger

	// MaxAttempts overrides the default budget. Zero means MaxAttempts.
	MaxAttempts int
}

// Orchestrator runs the per-question state machine.
type Orchestrator struct {
	deps        Deps
	maxAttempts int
	logger      *zap.Logger
}

// NewOrchestrator validates the wiring and returns an orchestrator.
func NewOrchestrator(deps Deps) (*Orchestrator, error) {
	if deps.Classifier == nil || deps.Agent == nil || deps.Registry == nil {
		return nil, errors.New("orchestrator needs a classifier, an agent, and a renderer registry")
	}
	if deps.RenderReviewer == nil || deps.ImageReviewer == nil {
		return nil, errors.New("orchestrator needs both reviewers")
	}
	max := deps.MaxAttempts
	if max <= 0 {
		max = MaxAttempts
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{deps: deps, maxAttempts: max, logger: logger}, nil
}

// Run drives one request to a terminal outcome. The returned outcome's
// Attempts and Verdicts are append-only; FinalImage is non-nil exactly when
// the status is accepted. An error is returned only for an unusable
// request, never for model or render trouble.
func (o *Orchestrator) Run(ctx context.Context, req diagram.Request) (*diagram.Outcome, error) {
	if req.DiagramDescription() == "" {
		return nil, ErrEmptyRequest
	}

	log := o.logger.With(
		zap.String("assignment", req.AssignmentID),
		zap.Int("question", req.QuestionIndex))

	cls := o.deps.Classifier.Classify(ctx, req.DiagramDescription(), req.DomainHint)
	o.record(ctx, req, "classify", "", 0, "",
		fmt.Sprintf("%s/%s complexity=%s degraded=%t", cls.Domain, cls.DiagramType, cls.Complexity, cls.Degraded))

	route := router.Lookup(cls.Domain, cls.DiagramType)
	log.Info("request routed",
		zap.String("domain", string(cls.Domain)),
		zap.String("type", cls.DiagramType),
		zap.String("backend", string(route.Backend)),
		zap.String("subtype", route.Subtype))
	o.record(ctx, req, "route", string(route.Backend), 0, "", route.Subtype)

	outcome := &diagram.Outcome{Classification: cls}

	renderer, err := o.deps.Registry.Get(route.Backend)
	if err != nil {
		log.Warn("backend unavailable", zap.Error(err))
		outcome.Status = diagram.StatusBackendUnavailable
		o.recordTerminal(ctx, req, route, outcome)
		return outcome, nil
	}

	var (
		corrected string
		fixer     backend.Fixer
		fixSpec   *diagram.RenderSpec
		fixImage  []byte
		fixIssues []string
	)

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		var (
			spec  *diagram.RenderSpec
			image []byte
		)

		if fixImage != nil {
			// In-place fix of the previous candidate.
			image, err = fixer.Fix(ctx, fixSpec, fixImage, fixIssues)
			spec = fixSpec
			fixSpec, fixImage, fixIssues = nil, nil, nil
			if err != nil {
				log.Warn("fix failed", zap.Int("attempt", attempt), zap.Error(err))
				o.record(ctx, req, "fix_failed", string(route.Backend), attempt, "", err.Error())
				continue
			}
			o.record(ctx, req, "fix", string(route.Backend), attempt, "", "")
		} else {
			spec, err = o.deps.Agent.Generate(llm.WithPurpose(ctx, "generation"), codegen.Input{
				Route:                route,
				Request:              req,
				Classification:       cls,
				CorrectedDescription: corrected,
				Attempt:              attempt,
			})
			if err != nil {
				log.Warn("generation failed", zap.Int("attempt", attempt), zap.Error(err))
				o.record(ctx, req, "generate_failed", string(route.Backend), attempt, "", err.Error())
				continue
			}

			image, err = renderer.Render(ctx, spec)
			if err != nil {
				if errors.Is(err, backend.ErrBackendUnavailable) {
					outcome.Status = diagram.StatusBackendUnavailable
					o.recordTerminal(ctx, req, route, outcome)
					return outcome, nil
				}
				log.Warn("render failed", zap.Int("attempt", attempt), zap.Error(err))
				o.record(ctx, req, "render_failed", string(route.Backend), attempt, "", err.Error())
				continue
			}
		}

		outcome.Attempts = append(outcome.Attempts, diagram.RenderResult{
			ImageBytes: image,
			Backend:    route.Backend,
			Attempt:    attempt,
		})

		verdict := o.reviewCandidate(ctx, req, route, spec, image)
		outcome.Verdicts = append(outcome.Verdicts, *verdict)
		if verdict.Degraded {
			o.record(ctx, req, "review_degraded", string(route.Backend), attempt, "", verdict.Reason)
		}

		if verdict.Passed {
			outcome.Status = diagram.StatusAccepted
			outcome.FinalImage = image
			log.Info("diagram accepted", zap.Int("attempt", attempt), zap.Bool("review_degraded", verdict.Degraded))
			o.recordTerminal(ctx, req, route, outcome)
			return outcome, nil
		}

		log.Info("candidate rejected",
			zap.Int("attempt", attempt),
			zap.Strings("issues", verdict.Issues),
			zap.Bool("fixable", verdict.Fixable))

		if verdict.Fixable && renderer.Capabilities().SupportsFix {
			// The capability flag is a claim; only an actual Fixer gets the
			// fix path. Anything else regenerates like a code backend.
			if f, ok := renderer.(backend.Fixer); ok {
				fixer = f
				fixSpec, fixImage, fixIssues = spec, image, verdict.Issues
				continue
			}
			log.Warn("renderer claims fix support without implementing it",
				zap.String("backend", string(route.Backend)))
		}
		if verdict.CorrectedDescription != "" {
			corrected = verdict.CorrectedDescription
		}
	}

	outcome.Status = diagram.StatusExhausted
	log.Warn("attempt budget exhausted", zap.Int("attempts", o.maxAttempts))
	o.recordTerminal(ctx, req, route, outcome)
	return outcome, nil
}

func (o *Orchestrator) reviewCandidate(ctx context.Context, req diagram.Request, route router.Route, spec *diagram.RenderSpec, image []byte) *diagram.ReviewVerdict {
	gate := o.deps.RenderReviewer
	if route.Backend == diagram.BackendImage {
		gate = o.deps.ImageReviewer
	}
	verdict, _ := gate.Review(llm.WithPurpose(ctx, "review"), req.QuestionText, spec, image)
	return verdict
}

// record writes a pipeline event; recording failures are logged, never
// surfaced.
func (o *Orchestrator) record(ctx context.Context, req diagram.Request, state, backendName string, attempt int, status, detail string) {
	if o.deps.Events == nil {
		return
	}
	err := o.deps.Events.AppendPipelineEvent(ctx, store.PipelineEventData{
		AssignmentID:  req.AssignmentID,
		QuestionIndex: req.QuestionIndex,
		State:         state,
		Backend:       backendName,
		Attempt:       attempt,
		Status:        status,
		Detail:        detail,
	})
	if err != nil {
		o.logger.Warn("pipeline event not recorded", zap.String("state", state), zap.Error(err))
	}
}

func (o *Orchestrator) recordTerminal(ctx context.Context, req diagram.Request, route router.Route, outcome *diagram.Outcome) {
	o.record(ctx, req, "terminal", string(route.Backend), len(outcome.Attempts), string(outcome.Status), "")
}
