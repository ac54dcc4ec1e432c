package safeaction

import (
	"context"
	"log/slog"
	"time"
)

// options hold optional dispatch settings applied by New.
type options struct {
	logger   *slog.Logger
	timeout  time.Duration
	onReject func(ctx context.Context, verr *ValidationError)
}

// Option configures an Action built with New (e.g. WithLogger, WithTimeout).
type Option func(*options)

// WithLogger enables logging of each invocation: start, end or
// rejection, duration, and handler errors. Pass nil to use slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// WithTimeout bounds each invocation: the context seen by the schema
// and the handler is cancelled after d. Zero or negative disables the
// bound. The wrapper itself does not abort on expiry; a handler that
// ignores its context runs to completion.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithOnReject sets a hook called whenever validation rejects an input,
// before the future resolves. Useful for metrics or audit trails. The
// hook must not mutate verr.
func WithOnReject(fn func(ctx context.Context, verr *ValidationError)) Option {
	return func(o *options) {
		o.onReject = fn
	}
}

// schemaOptions hold optional schema-building settings for ForStruct and ForMap.
type schemaOptions struct {
	strict bool
}

// SchemaOption configures ForStruct or ForMap (e.g. WithStrict).
type SchemaOption func(*schemaOptions)

// WithStrict forbids properties not declared in the schema
// (additionalProperties: false). Without it, unknown fields pass
// validation and are stripped from ForStruct's normalized output.
func WithStrict() SchemaOption {
	return func(o *schemaOptions) {
		o.strict = true
	}
}
