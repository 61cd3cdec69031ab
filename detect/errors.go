package detect

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrorCategory defines standardized error categories for audit trails
type ErrorCategory string

const (
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryLanguage   ErrorCategory = "language"
	ErrorCategoryRateLimit  ErrorCategory = "rate_limit"
	ErrorCategoryTimeout    ErrorCategory = "timeout"
	ErrorCategoryNetwork    ErrorCategory = "network"
	ErrorCategoryModel      ErrorCategory = "model"
	ErrorCategorySystem     ErrorCategory = "system"
)

// DetectorError wraps detector failures with standardized metadata so a
// caller can tell a transport timeout from a model-side failure
type DetectorError struct {
	Category    ErrorCategory
	Detector    string
	OriginalErr error
	RequestID   string
	Timestamp   time.Time
	Details     map[string]interface{}
}

func (e DetectorError) Error() string {
	return fmt.Sprintf("[%s] %s: %s (request: %s)", e.Category, e.Detector, e.OriginalErr.Error(), e.RequestID)
}

func (e DetectorError) Unwrap() error {
	return e.OriginalErr
}

// newDetectorError creates a new DetectorError with standard fields
func newDetectorError(category ErrorCategory, detector string, err error, requestID string, details map[string]interface{}) DetectorError {
	return DetectorError{
		Category:    category,
		Detector:    detector,
		OriginalErr: err,
		RequestID:   requestID,
		Timestamp:   time.Now(),
		Details:     details,
	}
}

// ErrorReporter handles standardized structured error reporting
type ErrorReporter struct {
	logger *log.Logger
}

// NewErrorReporter creates a new error reporter
func NewErrorReporter(logger *log.Logger) *ErrorReporter {
	return &ErrorReporter{
		logger: logger,
	}
}

// ReportError logs an error in structured JSON format
func (e *ErrorReporter) ReportError(err error) {
	var detErr DetectorError
	details := map[string]interface{}{}

	if errors.As(err, &detErr) {
		details = map[string]interface{}{
			"category":   string(detErr.Category),
			"detector":   detErr.Detector,
			"request_id": detErr.RequestID,
			"timestamp":  detErr.Timestamp.Format(time.RFC3339),
		}

		for k, v := range detErr.Details {
			details[k] = v
		}
	}

	logEntry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"event":     "error",
		"error":     err.Error(),
		"details":   details,
	}

	jsonData, marshalErr := json.Marshal(logEntry)
	if marshalErr != nil {
		e.logger.Printf("Error marshaling error log: %v", marshalErr)
		return
	}

	e.logger.Println(string(jsonData))
}

// categorizeError categorizes an error based on its message
func categorizeError(err error) ErrorCategory {
	errStr := err.Error()

	if strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests") {
		return ErrorCategoryRateLimit
	} else if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline") {
		return ErrorCategoryTimeout
	} else if strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") || strings.Contains(errStr, "broken pipe") {
		return ErrorCategoryNetwork
	} else if strings.Contains(errStr, "invalid") || strings.Contains(errStr, "validation") {
		return ErrorCategoryValidation
	}

	return ErrorCategorySystem
}
