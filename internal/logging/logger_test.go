package logging

import (
	"bytes"
	"context"
	"testing"

	"scholar/internal/observability"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debug(format string, args ...any) { r.lines = append(r.lines, format) }
func (r *recordingLogger) Info(format string, args ...any)  { r.lines = append(r.lines, format) }
func (r *recordingLogger) Warn(format string, args ...any)  { r.lines = append(r.lines, format) }
func (r *recordingLogger) Error(format string, args ...any) { r.lines = append(r.lines, format) }

func TestOrNopHandlesTypedNilPointers(t *testing.T) {
	var typed *recordingLogger
	var logger Logger = typed
	if !IsNil(logger) {
		t.Fatalf("expected typed nil pointer to be detected")
	}
	safe := OrNop(logger)
	if IsNil(safe) {
		t.Fatalf("expected OrNop to return a usable logger")
	}
	safe.Info("hello %s", "world")
}

func TestFromObservabilityFormatsMessages(t *testing.T) {
	buf := &bytes.Buffer{}
	base := observability.NewLogger(observability.LogConfig{
		Level:  "info",
		Format: "text",
		Output: buf,
	})

	logger := FromObservabilityWithComponent(base, "test")
	logger.Info("hello %s", "world")

	if want := "hello world"; !bytes.Contains(buf.Bytes(), []byte(want)) {
		t.Fatalf("expected %q in output, got %q", want, buf.String())
	}
	if want := "component=test"; !bytes.Contains(buf.Bytes(), []byte(want)) {
		t.Fatalf("expected %q in output, got %q", want, buf.String())
	}
}

func TestComponentLoggerUsesDefaultSink(t *testing.T) {
	buf := &bytes.Buffer{}
	SetDefault(observability.NewLogger(observability.LogConfig{Level: "debug", Output: buf}))
	t.Cleanup(func() { SetDefault(nil) })

	NewComponentLogger("reviewer").Warn("dropped %d members", 2)

	if !bytes.Contains(buf.Bytes(), []byte("dropped 2 members")) {
		t.Fatalf("expected message in default sink, got %q", buf.String())
	}
}

func TestMultiFlattensAndSkipsNil(t *testing.T) {
	first := &recordingLogger{}
	second := &recordingLogger{}
	var typedNil *recordingLogger

	logger := Multi(first, Multi(second, typedNil), nil)
	logger.Info("x")

	if len(first.lines) != 1 || len(second.lines) != 1 {
		t.Fatalf("expected both loggers to receive one line, got %d and %d", len(first.lines), len(second.lines))
	}
}

func TestFromContextPrefixesReviewID(t *testing.T) {
	rec := &recordingLogger{}
	ctx := observability.ContextWithReviewID(context.Background(), "abc")

	FromContext(ctx, rec).Info("started")

	if len(rec.lines) != 1 || rec.lines[0] != "review=abc started" {
		t.Fatalf("unexpected lines: %v", rec.lines)
	}
}
