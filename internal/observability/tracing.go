package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type SpanStatus string

const (
	SpanStatusOK    SpanStatus = "OK"
	SpanStatusError SpanStatus = "ERROR"
)

// Span times one operation: a pipeline stage or an HTTP request. Spans
// started under a run id share it as their trace id, so every stage of one
// invocation can be grepped together.
type Span struct {
	TraceID   string            `json:"trace_id"`
	SpanID    string            `json:"span_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	Operation string            `json:"operation"`
	StartTime time.Time         `json:"start_time"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	Status    SpanStatus        `json:"status"`
	Error     string            `json:"error,omitempty"`

	mu sync.Mutex
}

type spanContextKey struct{}

func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		SpanID:    uuid.NewString(),
		Operation: operation,
		StartTime: time.Now(),
		Status:    SpanStatusOK,
	}

	switch parent := GetSpan(ctx); {
	case parent != nil:
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	case GetRunID(ctx) != "":
		span.TraceID = GetRunID(ctx)
	default:
		span.TraceID = uuid.NewString()
	}

	return context.WithValue(ctx, spanContextKey{}, span), span
}

func (s *Span) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Duration = time.Since(s.StartTime)
}

func (s *Span) SetTag(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Tags == nil {
		s.Tags = make(map[string]string)
	}
	s.Tags[key] = value
}

func (s *Span) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = SpanStatusError
	if err != nil {
		s.Error = err.Error()
	}
}

// LogAttrs returns the span identity, its tags and outcome as slog
// key/value pairs.
func (s *Span) LogAttrs() []any {
	s.mu.Lock()
	defer s.mu.Unlock()

	attrs := []any{"trace_id", s.TraceID, "span_id", s.SpanID, "operation", s.Operation}
	if s.Duration > 0 {
		attrs = append(attrs, "duration", s.Duration)
	}
	for k, v := range s.Tags {
		attrs = append(attrs, "tag."+k, v)
	}
	if s.Status == SpanStatusError {
		attrs = append(attrs, "span_error", s.Error)
	}
	return attrs
}

// End finishes the span, records err on it and logs the outcome.
func (s *Span) End(logger *slog.Logger, err error) {
	if err != nil {
		s.SetError(err)
	}
	s.Finish()
	if err != nil {
		logger.Error("stage failed", s.LogAttrs()...)
		return
	}
	logger.Info("stage finished", s.LogAttrs()...)
}

func GetSpan(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanContextKey{}).(*Span); ok {
		return span
	}
	return nil
}
