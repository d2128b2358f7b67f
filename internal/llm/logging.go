package llm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/store"
)

// LoggingProvider is a decorator that records every chat request as an event.
type LoggingProvider struct {
	inner     Provider
	name      string
	eventRepo store.EventRepo
	logger    *zap.Logger
}

// WithLogging wraps a Provider with event logging. name is the provider
// label stored with each event.
func WithLogging(p Provider, name string, repo store.EventRepo, logger *zap.Logger) Provider {
	return &LoggingProvider{inner: p, name: name, eventRepo: repo, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		Identity:    IdentityFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = resp.Content
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	record(ctx, l.eventRepo, l.logger, data)
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// LoggingTranscriber is a decorator that records every transcription as an
// event.
type LoggingTranscriber struct {
	inner     Transcriber
	eventRepo store.EventRepo
	logger    *zap.Logger
}

// WithTranscriptionLogging wraps a Transcriber with event logging.
func WithTranscriptionLogging(t Transcriber, repo store.EventRepo, logger *zap.Logger) Transcriber {
	return &LoggingTranscriber{inner: t, eventRepo: repo, logger: logger}
}

func (l *LoggingTranscriber) Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcription, error) {
	start := time.Now()
	counted := &countingReader{r: req.Audio}
	if req.Audio != nil {
		req.Audio = counted
	}

	resp, err := l.inner.Transcribe(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    "openai",
		Model:       l.inner.ModelID(),
		Purpose:     PurposeTranscribe,
		Identity:    IdentityFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: fmt.Sprintf("[audio: %s, %d bytes]", req.Filename, counted.n),
	}
	if resp != nil {
		data.ResponseBody = resp.Text
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	record(ctx, l.eventRepo, l.logger, data)
	return resp, err
}

func (l *LoggingTranscriber) ModelID() string {
	return l.inner.ModelID()
}

// record stores the event. A logging failure never fails the call.
func record(ctx context.Context, repo store.EventRepo, logger *zap.Logger, data store.LLMRequestEventData) {
	logger.Debug("llm request",
		zap.String("provider", data.Provider),
		zap.String("model", data.Model),
		zap.String("purpose", data.Purpose),
		zap.Int64("latency_ms", data.LatencyMs),
		zap.Bool("success", data.Success),
	)
	if repo == nil {
		return
	}
	if err := repo.AppendLLMRequest(context.WithoutCancel(ctx), data); err != nil {
		logger.Warn("failed to log LLM request event", zap.Error(err))
	}
}

// serializeRequest builds a readable representation of the chat request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
