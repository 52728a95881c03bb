package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for run record IDs.
	RunIDKey contextKey = "run_id"

	// InputFileKey is the context key for the input file being processed.
	InputFileKey contextKey = "input_file"

	// PartitionKey is the context key for the dataset partition.
	PartitionKey contextKey = "partition"

	// ModelKey is the context key for model names.
	ModelKey contextKey = "model"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithInputFile adds the input file path to the context.
func WithInputFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, InputFileKey, path)
}

// GetInputFile retrieves the input file path from the context.
func GetInputFile(ctx context.Context) string {
	if path, ok := ctx.Value(InputFileKey).(string); ok {
		return path
	}
	return ""
}

// WithPartition adds a partition name to the context.
func WithPartition(ctx context.Context, partition string) context.Context {
	return context.WithValue(ctx, PartitionKey, partition)
}

// GetPartition retrieves the partition name from the context.
func GetPartition(ctx context.Context) string {
	if partition, ok := ctx.Value(PartitionKey).(string); ok {
		return partition
	}
	return ""
}

// WithModel adds a model name to the context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ModelKey, model)
}

// GetModel retrieves the model name from the context.
func GetModel(ctx context.Context) string {
	if model, ok := ctx.Value(ModelKey).(string); ok {
		return model
	}
	return ""
}

// extractContextFields extracts run fields from context for logging.
func extractContextFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}

	var fields []any
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}
	if path := GetInputFile(ctx); path != "" {
		fields = append(fields, "input_file", path)
	}
	if partition := GetPartition(ctx); partition != "" {
		fields = append(fields, "partition", partition)
	}
	if model := GetModel(ctx); model != "" {
		fields = append(fields, "model", model)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, "trace_id", sc.TraceID().String())
	}
	return fields
}

// ContextLogger is a logger that automatically includes context fields.
// It satisfies the rule engine's logger interface.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger that automatically includes context fields.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger,
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
