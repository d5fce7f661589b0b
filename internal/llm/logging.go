package llm

import (
	"context"
	"log/slog"
	"time"
)

// LoggingProvider logs every request with its latency, token usage and
// estimated cost.
type LoggingProvider struct {
	inner  Provider
	logger *slog.Logger
}

// WithLogging wraps p. A nil logger uses slog.Default.
func WithLogging(p Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	model := l.inner.ModelID()
	if resp != nil && resp.Model != "" {
		model = resp.Model
	}
	attrs := []slog.Attr{
		slog.String("model", model),
		slog.String("purpose", PurposeFrom(ctx)),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()),
	}
	if req.Schema != nil {
		attrs = append(attrs, slog.String("schema", req.Schema.Name))
	}
	if resp != nil {
		attrs = append(attrs,
			slog.Int("input_tokens", resp.Usage.InputTokens),
			slog.Int("output_tokens", resp.Usage.OutputTokens))
		if c := LookupCost(model); c != nil {
			attrs = append(attrs, slog.Float64("cost_usd", c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens)))
		}
	}

	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		l.logger.LogAttrs(ctx, slog.LevelWarn, "llm request failed", attrs...)
		return resp, err
	}
	l.logger.LogAttrs(ctx, slog.LevelDebug, "llm request", attrs...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
