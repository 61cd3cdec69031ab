package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditLogLevel defines the verbosity of audit logging
type AuditLogLevel string

const (
	// AuditLogLevelMinimal logs only essential events, with content removed
	AuditLogLevelMinimal AuditLogLevel = "minimal"

	// AuditLogLevelStandard logs events with truncated content
	AuditLogLevelStandard AuditLogLevel = "standard"

	// AuditLogLevelVerbose logs all details including full content
	AuditLogLevelVerbose AuditLogLevel = "verbose"
)

// AuditLogSeverity defines the severity of audit log events
type AuditLogSeverity string

const (
	// SeverityInfo for normal operations
	SeverityInfo AuditLogSeverity = "info"

	// SeverityWarning for degraded behavior (dropped spans, language fallback)
	SeverityWarning AuditLogSeverity = "warning"

	// SeverityError for detector or engine failures
	SeverityError AuditLogSeverity = "error"
)

// AuditLog represents one audit entry for an anonymization-related event
type AuditLog struct {
	// Core fields for traceability
	RequestID string           `json:"request_id"`
	Timestamp string           `json:"timestamp"`
	EventType string           `json:"event_type"`
	Severity  AuditLogSeverity `json:"severity"`

	// Anonymization context
	Language  string `json:"language,omitempty"`
	Input     string `json:"input,omitempty"`
	Sanitized string `json:"sanitized,omitempty"`

	// Accepted-span statistics
	SpanCount int            `json:"span_count,omitempty"`
	Labels    map[string]int `json:"labels,omitempty"`

	// Free-form event details
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AuditLogger writes audit entries as JSONL with rotation and retention
type AuditLogger struct {
	mu            sync.Mutex
	logPath       string
	level         AuditLogLevel
	writer        io.Writer
	rotationSize  int64 // size in bytes after which logs rotate
	currentSize   int64
	logRetention  int // days to retain rotated logs
	initialized   bool
	enableConsole bool
}

// Global default logger
var defaultLogger *AuditLogger
var loggerOnce sync.Once

// GetAuditLogger returns the singleton audit logger instance
func GetAuditLogger() *AuditLogger {
	loggerOnce.Do(func() {
		defaultLogger = &AuditLogger{
			logPath:      "audit.log",
			level:        AuditLogLevelStandard,
			rotationSize: 100 * 1024 * 1024, // 100MB
			logRetention: 90,                // days
		}
		defaultLogger.initialize()
	})

	return defaultLogger
}

// ConfigureLogger configures the audit logger with specific settings
func ConfigureLogger(path string, level AuditLogLevel, rotationSize int64, retention int, enableConsole bool) error {
	logger := GetAuditLogger()

	logger.mu.Lock()
	defer logger.mu.Unlock()

	logger.logPath = path
	logger.level = level
	logger.rotationSize = rotationSize
	logger.logRetention = retention
	logger.enableConsole = enableConsole

	return logger.initialize()
}

// initialize the logger with current settings
func (l *AuditLogger) initialize() error {
	dir := filepath.Dir(l.logPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to get log file info: %w", err)
	}

	l.currentSize = info.Size()

	if l.enableConsole {
		l.writer = io.MultiWriter(f, os.Stdout)
	} else {
		l.writer = f
	}

	l.initialized = true
	return nil
}

// maybeRotateLog checks if log rotation is needed and performs it if so
func (l *AuditLogger) maybeRotateLog() error {
	if l.currentSize < l.rotationSize {
		return nil
	}

	if closer, ok := l.writer.(io.Closer); ok {
		closer.Close()
	}

	timestamp := time.Now().Format("20060102-150405")
	rotatedPath := fmt.Sprintf("%s.%s", l.logPath, timestamp)

	if err := os.Rename(l.logPath, rotatedPath); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	l.cleanupOldLogs()

	return l.initialize()
}

// cleanupOldLogs removes rotated log files older than the retention period
func (l *AuditLogger) cleanupOldLogs() {
	dir := filepath.Dir(l.logPath)
	base := filepath.Base(l.logPath)

	cutoffTime := time.Now().AddDate(0, 0, -l.logRetention)

	files, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return
	}

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			os.Remove(file)
		}
	}
}

// LogEvent writes an audit event through the logger
func (l *AuditLogger) LogEvent(entry AuditLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		if err := l.initialize(); err != nil {
			return err
		}
	}

	if err := l.maybeRotateLog(); err != nil {
		return err
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().Format(time.RFC3339Nano)
	}

	if entry.RequestID == "" {
		entry.RequestID = uuid.NewString()
	}

	if entry.Severity == "" {
		entry.Severity = SeverityInfo
	}

	// Skip routine info entries in minimal mode
	if l.level == AuditLogLevelMinimal && entry.Severity == SeverityInfo {
		return nil
	}

	// Truncate content in standard mode. The input side carries raw PII,
	// so full content only ever reaches the log in verbose mode.
	if l.level == AuditLogLevelStandard {
		if len(entry.Input) > 100 {
			entry.Input = entry.Input[:100] + "... [truncated]"
		}
		if len(entry.Sanitized) > 100 {
			entry.Sanitized = entry.Sanitized[:100] + "... [truncated]"
		}
	}

	if l.level == AuditLogLevelMinimal {
		entry.Input = "[redacted]"
		entry.Sanitized = "[redacted]"
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	n, err := fmt.Fprintln(l.writer, string(data))
	if err != nil {
		return fmt.Errorf("failed to write to log: %w", err)
	}

	l.currentSize += int64(n)

	return nil
}

// LogEvent appends an audit event to the default logger in JSONL format
func LogEvent(entry AuditLog) error {
	return GetAuditLogger().LogEvent(entry)
}

// LogDetectorEvent is a helper to log detector-side diagnostics such as
// language fallbacks and malformed entities
func LogDetectorEvent(detector, eventType string, severity AuditLogSeverity, metadata map[string]string) error {
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadata["detector"] = detector

	return GetAuditLogger().LogEvent(AuditLog{
		RequestID: uuid.NewString(),
		Timestamp: time.Now().Format(time.RFC3339Nano),
		EventType: eventType,
		Severity:  severity,
		Metadata:  metadata,
	})
}
