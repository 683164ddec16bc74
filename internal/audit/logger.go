// Package audit provides a tamper-evident trail of session lifecycle and
// VM connection events, written to .fdemon/audit/session.log with secure
// file permissions. It is an ambient concern carried regardless of the
// engine's non-goal of not logging to disk itself: the engine's log
// pipeline (internal/logpipeline) ring-buffers Flutter's own output in
// memory; this package separately records what *fdemon* did.
package audit

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// SecureAuditDirPerm restricts the audit directory to its owner.
	SecureAuditDirPerm os.FileMode = 0700
	// SecureAuditFilePerm restricts the audit file to its owner.
	SecureAuditFilePerm os.FileMode = 0600
)

// Logger writes structured audit events to disk.
type Logger struct {
	logger *zap.Logger
}

// Event represents one audit-worthy action.
type Event struct {
	Action    string                 `json:"action"`
	Resource  string                 `json:"resource"`
	SessionID string                 `json:"session_id,omitempty"`
	Success   bool                   `json:"success"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// New creates an audit logger writing under <projectRoot>/.fdemon/audit.
func New(projectRoot string) (*Logger, error) {
	auditDir := filepath.Join(projectRoot, ".fdemon", "audit")
	if err := os.MkdirAll(auditDir, SecureAuditDirPerm); err != nil {
		return nil, err
	}

	auditFile := filepath.Join(auditDir, "session.log")

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{auditFile}
	config.ErrorOutputPaths = []string{auditFile}
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	config.Development = false
	config.DisableCaller = false
	config.DisableStacktrace = false
	config.Encoding = "json"
	config.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	zl, err := config.Build()
	if err != nil {
		return nil, err
	}

	if err := os.Chmod(auditFile, SecureAuditFilePerm); err != nil {
		zl.Warn("failed to set secure permissions on audit log", zap.Error(err))
	}

	return &Logger{logger: zl}, nil
}

// LogEvent records one audit event.
func (l *Logger) LogEvent(event Event) {
	fields := []zap.Field{
		zap.String("action", event.Action),
		zap.String("resource", event.Resource),
		zap.Bool("success", event.Success),
	}

	if event.SessionID != "" {
		fields = append(fields, zap.String("session_id", event.SessionID))
	}
	if event.ErrorMsg != "" {
		fields = append(fields, zap.String("error_msg", event.ErrorMsg))
	}
	if event.Metadata != nil {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	if event.Success {
		l.logger.Info("audit event", fields...)
	} else {
		l.logger.Warn("audit event - FAILED", fields...)
	}
}

// LogSessionCreated records a session spawn.
func (l *Logger) LogSessionCreated(sessionID, deviceID string, success bool, err error) {
	event := Event{
		Action:    "session_create",
		Resource:  sessionID,
		SessionID: sessionID,
		Success:   success,
		Metadata:  map[string]interface{}{"device_id": deviceID},
	}
	if err != nil {
		event.ErrorMsg = err.Error()
	}
	l.LogEvent(event)
}

// LogSessionRemoved records a session removal event, which the engine
// emits when the session's process exits.
func (l *Logger) LogSessionRemoved(sessionID string, success bool, err error) {
	event := Event{Action: "session_remove", Resource: sessionID, SessionID: sessionID, Success: success}
	if err != nil {
		event.ErrorMsg = err.Error()
	}
	l.LogEvent(event)
}

// LogVmConnectionChange records a VM Service connect/disconnect transition.
func (l *Logger) LogVmConnectionChange(sessionID string, connected bool, err error) {
	event := Event{
		Action:    "vm_connection_change",
		Resource:  sessionID,
		SessionID: sessionID,
		Success:   err == nil,
		Metadata:  map[string]interface{}{"connected": connected},
	}
	if err != nil {
		event.ErrorMsg = err.Error()
	}
	l.LogEvent(event)
}

// LogDeviceBoot records a device boot request.
func (l *Logger) LogDeviceBoot(deviceID string, success bool, err error) {
	event := Event{Action: "device_boot", Resource: deviceID, Success: success}
	if err != nil {
		event.ErrorMsg = err.Error()
	}
	l.LogEvent(event)
}

// Close flushes and closes the underlying zap core.
func (l *Logger) Close() error {
	return l.logger.Sync()
}
