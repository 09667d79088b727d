package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vidyaai/diagramgen/internal/store"
)

// LoggingProvider is a decorator that records every model call as an audit
// event and logs it. The event repo may be nil (preview runs without a
// database); logging failures never fail the request.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	provider  string
	logger    *zap.Logger
}

// WithLogging wraps a Provider with event recording.
func WithLogging(p Provider, providerName string, repo store.EventRepo, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, eventRepo: repo, provider: providerName, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := store.ModelCallEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: latencyMs,
		Success:   err == nil,
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.logger.Debug("model call",
		zap.String("provider", l.provider),
		zap.String("model", data.Model),
		zap.String("purpose", purpose),
		zap.Int64("latency_ms", latencyMs),
		zap.Bool("success", err == nil),
	)

	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendModelCall(ctx, data); logErr != nil {
			l.logger.Warn("failed to record model call event", zap.Error(logErr))
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// LoggingImageProvider mirrors LoggingProvider for the image model role.
type LoggingImageProvider struct {
	inner     ImageProvider
	eventRepo store.EventRepo
	provider  string
	logger    *zap.Logger
}

// WithImageLogging wraps an ImageProvider with event recording.
func WithImageLogging(p ImageProvider, providerName string, repo store.EventRepo, logger *zap.Logger) ImageProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingImageProvider{inner: p, eventRepo: repo, provider: providerName, logger: logger}
}

func (l *LoggingImageProvider) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	res, err := l.inner.GenerateImage(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := store.ModelCallEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: latencyMs,
		Success:   err == nil,
	}
	if res != nil {
		data.InputTokens = res.Usage.InputTokens
		data.OutputTokens = res.Usage.OutputTokens
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.logger.Debug("image model call",
		zap.String("provider", l.provider),
		zap.String("model", l.inner.ModelID()),
		zap.String("purpose", purpose),
		zap.Int64("latency_ms", latencyMs),
		zap.Bool("success", err == nil),
		zap.Bool("image_returned", res != nil && res.Image != nil),
	)

	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendModelCall(ctx, data); logErr != nil {
			l.logger.Warn("failed to record image model call event", zap.Error(logErr))
		}
	}

	return res, err
}

func (l *LoggingImageProvider) ModelID() string {
	return l.inner.ModelID()
}
