package logging

import (
	"context"

	"scholar/internal/observability"
)

// WithReviewID returns a logger that tags log lines with a review id.
func WithReviewID(logger Logger, reviewID string) Logger {
	if IsNil(logger) {
		return Nop()
	}
	if reviewID == "" {
		return logger
	}
	return &reviewIDLogger{logger: logger, reviewID: reviewID}
}

// FromContext returns a logger tagged with the review id found in context, if any.
func FromContext(ctx context.Context, logger Logger) Logger {
	return WithReviewID(logger, observability.ReviewIDFromContext(ctx))
}

type reviewIDLogger struct {
	logger   Logger
	reviewID string
}

func (l *reviewIDLogger) Debug(format string, args ...any) {
	l.logger.Debug(l.prefix(format), args...)
}

func (l *reviewIDLogger) Info(format string, args ...any) {
	l.logger.Info(l.prefix(format), args...)
}

func (l *reviewIDLogger) Warn(format string, args ...any) {
	l.logger.Warn(l.prefix(format), args...)
}

func (l *reviewIDLogger) Error(format string, args ...any) {
	l.logger.Error(l.prefix(format), args...)
}

func (l *reviewIDLogger) prefix(format string) string {
	return "review=" + l.reviewID + " " + format
}
