package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vidyaai/diagramgen/internal/backend"
	"github.com/vidyaai/diagramgen/internal/codegen"
	"github.com/vidyaai/diagramgen/internal/config"
	"github.com/vidyaai/diagramgen/internal/llm"
	"github.com/vidyaai/diagramgen/internal/pipeline"
	"github.com/vidyaai/diagramgen/internal/review"
	"github.com/vidyaai/diagramgen/internal/sandbox"
	"github.com/vidyaai/diagramgen/internal/storage"
	"github.com/vidyaai/diagramgen/internal/store"
	"github.com/vidyaai/diagramgen/internal/taxonomy"
)

// env is everything a pipeline command needs, built once per invocation.
type env struct {
	cfg    config.Config
	st     *store.Store
	logger *zap.Logger
	coord  *pipeline.Coordinator
	orch   *pipeline.Orchestrator
}

func (e *env) Close() {
	if e.st != nil {
		_ = e.st.Close()
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

// resolveLLMConfig prefers the DIAGRAMGEN_* environment, then falls back to
// discovering a standard provider key.
func resolveLLMConfig() (llm.Config, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err == nil && configured(cfg) {
		return cfg, nil
	}
	if discovered, ok := llm.DiscoverConfig(); ok {
		return discovered, nil
	}
	return llm.Config{}, errors.New("no model API key found; set DIAGRAMGEN_ANTHROPIC_API_KEY, DIAGRAMGEN_OPENAI_API_KEY, or DIAGRAMGEN_GEMINI_API_KEY")
}

func configured(cfg llm.Config) bool {
	switch cfg.Provider {
	case "anthropic":
		return cfg.Anthropic.APIKey != ""
	case "openai":
		return cfg.OpenAI.APIKey != ""
	case "gemini":
		return cfg.Gemini.APIKey != ""
	case "mock":
		return true
	}
	return false
}

// buildEnv wires the full pipeline from config, flags, and environment.
func buildEnv(ctx context.Context, cmd *cobra.Command) (*env, error) {
	logger, err := buildLogger(cmd)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	cfgPath, _ := cmd.Flags().GetString("config")
	appCfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	repo := st.EventRepo()

	llmCfg, err := resolveLLMConfig()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	classifyP, err := llm.NewProvider(ctx, llmCfg, llm.ModelRoleClassify, repo, logger)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("classification provider: %w", err)
	}
	generateP, err := llm.NewProvider(ctx, llmCfg, llm.ModelRoleGenerate, repo, logger)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("generation provider: %w", err)
	}
	reviewP, err := llm.NewProvider(ctx, llmCfg, llm.ModelRoleReview, repo, logger)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("review provider: %w", err)
	}
	reviewFactory := func(ctx context.Context) (llm.Provider, error) {
		return llm.NewProvider(ctx, llmCfg, llm.ModelRoleReview, repo, logger)
	}

	// Image generation is optional: without a Gemini key the image backend
	// stays unregistered and image-routed questions terminate cleanly.
	var imageP llm.ImageProvider
	if llmCfg.Gemini.APIKey != "" || llmCfg.Image.Provider == "mock" {
		imageP, err = llm.NewImageProvider(ctx, llmCfg, repo, logger)
		if err != nil {
			logger.Warn("image provider unavailable", zap.Error(err))
			imageP = nil
		}
	}

	runnerCfg := sandbox.DefaultConfig()
	runnerCfg.Python = appCfg.Python
	runnerCfg.Timeout = time.Duration(appCfg.RenderTimeoutSeconds) * time.Second
	runner := sandbox.NewRunner(runnerCfg, logger)

	// Best effort: a probe failure leaves the static symbol table in place.
	symbols := codegen.StaticSymbols()
	if probe, err := runner.Probe(ctx); err == nil {
		symbols = codegen.SymbolsFromProbe(probe)
		if probe.MatplotlibVersion == "" {
			logger.Warn("matplotlib not installed in sandbox interpreter; plot backends will fail at render")
		}
		if probe.SchemdrawVersion == "" {
			logger.Warn("schemdraw not installed in sandbox interpreter; circuit backend will fail at render")
		}
	} else {
		logger.Warn("sandbox probe failed, using static symbol table", zap.Error(err))
	}

	registry := backend.NewRegistry(
		backend.NewProcedural(runner),
		backend.NewCircuit(runner),
		backend.NewGraph(runner),
		backend.NewMarkup(),
		backend.NewImage(imageP, logger),
	)

	orch, err := pipeline.NewOrchestrator(pipeline.Deps{
		Classifier:     taxonomy.NewClassifier(classifyP, taxonomy.DefaultClassifierConfig(), logger),
		Agent:          codegen.NewAgent(generateP, symbols, logger),
		Registry:       registry,
		RenderReviewer: review.NewRenderReviewer(reviewP, reviewFactory, logger),
		ImageReviewer:  review.NewImageReviewer(reviewP, reviewFactory, logger),
		Events:         repo,
		Logger:         logger,
		MaxAttempts:    appCfg.MaxAttempts,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	uploader, err := buildUploader(ctx, appCfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &env{
		cfg:    appCfg,
		st:     st,
		logger: logger,
		orch:   orch,
		coord:  pipeline.NewCoordinator(orch, uploader, appCfg.Concurrency, logger),
	}, nil
}

func buildUploader(ctx context.Context, cfg config.Config) (storage.Uploader, error) {
	if cfg.Storage.Endpoint != "" {
		return storage.NewBucket(ctx, storage.BucketConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
	}
	return storage.NewLocalDir(cfg.OutputDir)
}
