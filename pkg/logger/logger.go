package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Business logic logging methods

// LogCheckoutCompleted logs a completed checkout reservation
func (l *Logger) LogCheckoutCompleted(ctx context.Context, orderID string, totalAmount float64, performances int) {
	l.Logger.InfoContext(ctx,
		"Checkout Completed",
		slog.String("order_id", orderID),
		slog.Float64("total_amount", totalAmount),
		slog.Int("performances", performances),
	)
}

// LogCapacityRejected logs a checkout rejected for insufficient capacity
func (l *Logger) LogCapacityRejected(ctx context.Context, details string) {
	l.Logger.WarnContext(ctx,
		"Capacity Rejected",
		slog.String("details", details),
	)
}

// LogWebhookReceived logs an incoming payment-provider webhook
func (l *Logger) LogWebhookReceived(ctx context.Context, providerTransactionID, status string) {
	l.Logger.InfoContext(ctx,
		"Payment Webhook Received",
		slog.String("provider_transaction_id", providerTransactionID),
		slog.String("provider_status", status),
	)
}

// LogSeatsReleased logs reserved capacity being returned to a performance
func (l *Logger) LogSeatsReleased(ctx context.Context, orderID string, seats int) {
	l.Logger.InfoContext(ctx,
		"Seats Released",
		slog.String("order_id", orderID),
		slog.Int("seats", seats),
	)
}

// LogTicketsMaterialized logs concrete seat assignment for a paid order
func (l *Logger) LogTicketsMaterialized(ctx context.Context, orderID string, tickets int) {
	l.Logger.InfoContext(ctx,
		"Tickets Materialized",
		slog.String("order_id", orderID),
		slog.Int("tickets", tickets),
	)
}

// LogJobRetryScheduled logs a retry-queue job being rescheduled
func (l *Logger) LogJobRetryScheduled(ctx context.Context, jobID string, executionCount int, nextRetryAt time.Time) {
	l.Logger.WarnContext(ctx,
		"Job Retry Scheduled",
		slog.String("job_id", jobID),
		slog.Int("execution_count", executionCount),
		slog.Time("next_retry_at", nextRetryAt),
	)
}

// LogJobExhausted logs a job hitting its permanent failure cap
func (l *Logger) LogJobExhausted(ctx context.Context, jobID, jobType string) {
	l.Logger.ErrorContext(ctx,
		"Job Permanently Failed",
		slog.String("job_id", jobID),
		slog.String("job_type", jobType),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
