// Package logging provides structured diagnostic logging for fdemon,
// separate from the engine's user-facing log pipeline (which ring-buffers
// Flutter/Dart output as domain data, not framework diagnostics).
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

// Logger wraps slog.Logger with fdemon-specific methods
type Logger struct {
	*slog.Logger
}

// New creates a new structured logger
func New(level slog.Level, jsonOutput bool) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize time format
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Default creates a logger with default settings
func Default() *Logger {
	return New(slog.LevelInfo, false)
}

// WithContext adds context values to the logger
func (l *Logger) WithContext(ctx context.Context) *Logger {
	// Extract common context values
	attrs := []slog.Attr{}

	if reqID := GetRequestID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("request_id", reqID))
	}

	if msgID := GetMessageID(ctx); msgID != "" {
		attrs = append(attrs, slog.String("message_id", msgID))
	}

	if sessionID := GetSessionID(ctx); sessionID != "" {
		attrs = append(attrs, slog.String("session_id", sessionID))
	}

	if len(attrs) > 0 {
		args := make([]any, len(attrs))
		for i, attr := range attrs {
			args[i] = attr
		}
		return &Logger{Logger: l.With(args...)}
	}

	return l
}

// LogMessage logs one engine message with context.
func (l *Logger) LogMessage(ctx context.Context, msg string, m protocol.Message) {
	l.WithContext(ctx).InfoContext(ctx, msg,
		slog.String("message_id", m.ID),
		slog.String("message_type", string(m.Type)),
		slog.Time("timestamp", m.Timestamp),
	)
}

// LogMessageProcessed logs successful message processing.
func (l *Logger) LogMessageProcessed(ctx context.Context, m protocol.Message, duration time.Duration) {
	l.WithContext(ctx).InfoContext(ctx, "message processed",
		slog.String("message_id", m.ID),
		slog.String("message_type", string(m.Type)),
		slog.Duration("duration", duration),
	)
}

// LogMessageError logs message processing errors.
func (l *Logger) LogMessageError(ctx context.Context, m protocol.Message, err error, duration time.Duration) {
	l.WithContext(ctx).ErrorContext(ctx, "message failed",
		slog.String("message_id", m.ID),
		slog.String("message_type", string(m.Type)),
		slog.Duration("duration", duration),
		slog.String("error", err.Error()),
	)
}

// LogEvent logs an engine event with metadata.
func (l *Logger) LogEvent(ctx context.Context, msg string, event protocol.EngineEvent) {
	attrs := []slog.Attr{
		slog.String("event_id", event.Metadata.EventID),
		slog.String("event_type", string(event.Type)),
		slog.Time("timestamp", event.Metadata.Timestamp),
	}

	if event.Metadata.MessageID != "" {
		attrs = append(attrs, slog.String("message_id", event.Metadata.MessageID))
	}

	if event.Metadata.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", string(event.Metadata.SessionID)))
	}

	if event.Metadata.CorrelationID != "" {
		attrs = append(attrs, slog.String("correlation_id", event.Metadata.CorrelationID))
	}

	if event.Metadata.Source != "" {
		attrs = append(attrs, slog.String("source", event.Metadata.Source))
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	l.WithContext(ctx).InfoContext(ctx, msg, args...)
}

// LogSessionCreated logs session creation.
func (l *Logger) LogSessionCreated(ctx context.Context, session protocol.SessionSnapshot) {
	l.WithContext(ctx).InfoContext(ctx, "session created",
		slog.String("session_id", string(session.ID)),
		slog.String("session_name", session.Name),
		slog.String("device_id", session.DeviceID),
		slog.String("phase", session.Phase),
	)
}

// LogSessionRemoved logs session removal.
func (l *Logger) LogSessionRemoved(ctx context.Context, sessionID protocol.SessionID) {
	l.WithContext(ctx).InfoContext(ctx, "session removed",
		slog.String("session_id", string(sessionID)),
	)
}

// LogPhaseChange logs session phase transitions.
func (l *Logger) LogPhaseChange(ctx context.Context, sessionID protocol.SessionID, oldPhase, newPhase string) {
	l.WithContext(ctx).InfoContext(ctx, "session phase changed",
		slog.String("session_id", string(sessionID)),
		slog.String("old_phase", oldPhase),
		slog.String("new_phase", newPhase),
	)
}

// LogSecurityEvent logs security-related events
func (l *Logger) LogSecurityEvent(ctx context.Context, eventType string, details map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("security_event", eventType),
	}

	for k, v := range details {
		attrs = append(attrs, slog.Any(k, v))
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	l.WithContext(ctx).WarnContext(ctx, "Security event", args...)
}

// LogRateLimitExceeded logs rate limit violations
func (l *Logger) LogRateLimitExceeded(ctx context.Context, sessionID string) {
	l.WithContext(ctx).WarnContext(ctx, "Rate limit exceeded",
		slog.String("session_id", sessionID),
	)
}

// LogHealthCheck logs health check results
func (l *Logger) LogHealthCheck(ctx context.Context, healthy bool, details map[string]interface{}) {
	level := slog.LevelInfo
	if !healthy {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.Bool("healthy", healthy),
	}

	for k, v := range details {
		attrs = append(attrs, slog.Any(k, v))
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	l.WithContext(ctx).Log(ctx, level, "Health check", args...)
}

// WithError creates a logger with an error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.With(slog.String("error", err.Error())),
	}
}

// WithSession creates a logger with session context
func (l *Logger) WithSession(sessionID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("session_id", sessionID)),
	}
}

// WithMessage creates a logger with message context
func (l *Logger) WithMessage(messageID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("message_id", messageID)),
	}
}