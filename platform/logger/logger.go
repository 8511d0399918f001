// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// BusinessKey is the context key for the business slug being processed
	BusinessKey contextKey = "business"
	// LeadIDKey is the context key for the lead identifier
	LeadIDKey contextKey = "lead_id"
	// RunIDKey is the context key for the processing run identifier
	RunIDKey contextKey = "run_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports business, lead_id, and run_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if business, ok := ctx.Value(BusinessKey).(string); ok && business != "" {
		newLogger = newLogger.WithBusiness(business)
	}

	if leadID, ok := ctx.Value(LeadIDKey).(string); ok && leadID != "" {
		newLogger = newLogger.WithLead(leadID)
	}

	if runID, ok := ctx.Value(RunIDKey).(string); ok && runID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("run_id", runID)),
		}
	}

	return newLogger
}

// WithBusiness returns a logger scoped to a business slug
func (l *Logger) WithBusiness(business string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("business", business)),
	}
}

// WithLead returns a logger scoped to a lead identifier
func (l *Logger) WithLead(leadID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("lead_id", leadID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// HotLead logs a hot-tier lead flag for escalation visibility
func (l *Logger) HotLead(business, leadID string, score int) {
	l.Info("hot_lead",
		slog.String("business", business),
		slog.String("lead_id", leadID),
		slog.Int("score", score),
	)
}

// LeadProcessed logs the outcome of one lead lifecycle pass
func (l *Logger) LeadProcessed(business, leadID, action string, score int, tier, sequence string) {
	l.Info("lead_processed",
		slog.String("business", business),
		slog.String("lead_id", leadID),
		slog.String("action", action),
		slog.Int("score", score),
		slog.String("tier", tier),
		slog.String("sequence", sequence),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// GenerationError logs message-generation collaborator failures
func (l *Logger) GenerationError(business, leadID string, err error) {
	l.Error("generation_error",
		slog.String("business", business),
		slog.String("lead_id", leadID),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
