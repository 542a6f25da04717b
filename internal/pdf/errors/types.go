package errors

import (
	"errors"
	"fmt"
	"time"
)

// PDFError represents a classified failure or anomaly raised while turning a static PDF
// into a fillable one
type PDFError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	FilePath    string    `json:"file_path,omitempty"`
	FieldName   string    `json:"field_name,omitempty"`
	AreaIndex   int       `json:"area_index,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`
	Err         error     `json:"-"`
}

// ErrorType represents the categories of errors the synthesis pipeline distinguishes
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDocumentOpen
	ErrorTypeSerialization
	ErrorTypeInvalidSchema
	ErrorTypeSecurityRestriction
	ErrorTypeFileTooLarge
	ErrorTypePageOutOfRange
	ErrorTypeUnsupportedFieldType
	ErrorTypeEmptyAreas
	ErrorTypeFieldKindConflict
	ErrorTypeWidgetCreation
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
	SeverityFatal
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// Is matches any *PDFError of the same type, so callers can write
// errors.Is(err, ErrDocumentOpen)
func (e *PDFError) Is(target error) bool {
	var t *PDFError
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeDocumentOpen:
		return "DOCUMENT_OPEN"
	case ErrorTypeSerialization:
		return "SERIALIZATION"
	case ErrorTypeInvalidSchema:
		return "INVALID_SCHEMA"
	case ErrorTypeSecurityRestriction:
		return "SECURITY_RESTRICTION"
	case ErrorTypeFileTooLarge:
		return "FILE_TOO_LARGE"
	case ErrorTypePageOutOfRange:
		return "PAGE_OUT_OF_RANGE"
	case ErrorTypeUnsupportedFieldType:
		return "UNSUPPORTED_FIELD_TYPE"
	case ErrorTypeEmptyAreas:
		return "EMPTY_AREAS"
	case ErrorTypeFieldKindConflict:
		return "FIELD_KIND_CONFLICT"
	case ErrorTypeWidgetCreation:
		return "WIDGET_CREATION"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeDocumentOpen, ErrorTypeSerialization:
		return SeverityFatal
	case ErrorTypeNotFound, ErrorTypeInvalidSchema, ErrorTypeSecurityRestriction, ErrorTypeFileTooLarge:
		return SeverityError
	case ErrorTypePageOutOfRange, ErrorTypeFieldKindConflict, ErrorTypeWidgetCreation:
		return SeverityWarning
	case ErrorTypeUnsupportedFieldType, ErrorTypeEmptyAreas:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// IsRecoverable reports whether synthesis continues past an error of this type.
// Only per-field and per-area anomalies are absorbed.
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypePageOutOfRange, ErrorTypeUnsupportedFieldType, ErrorTypeEmptyAreas,
		ErrorTypeFieldKindConflict, ErrorTypeWidgetCreation:
		return true
	default:
		return false
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound      = &PDFError{Type: ErrorTypeNotFound, Message: "source document not found"}
	ErrDocumentOpen  = &PDFError{Type: ErrorTypeDocumentOpen, Message: "document could not be opened"}
	ErrSerialization = &PDFError{Type: ErrorTypeSerialization, Message: "document could not be written"}
	ErrInvalidSchema = &PDFError{Type: ErrorTypeInvalidSchema, Message: "invalid field schema"}
)

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// NewPDFErrorWithContext creates a new PDFError with additional context
func NewPDFErrorWithContext(errorType ErrorType, message, context string) *PDFError {
	e := NewPDFError(errorType, message)
	e.Context = context
	return e
}

// WrapError wraps a standard error as a PDFError, keeping it reachable through Unwrap
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	e := NewPDFError(errorType, message)
	e.Err = err
	return e
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithField records which schema field and area the error belongs to
func (e *PDFError) WithField(name string, areaIndex int) *PDFError {
	e.FieldName = name
	e.AreaIndex = areaIndex
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// GetSeverity returns the severity of this specific error
func (e *PDFError) GetSeverity() ErrorSeverity {
	return e.Type.GetSeverity()
}

// IsCritical returns true if this error is critical or fatal
func (e *PDFError) IsCritical() bool {
	severity := e.GetSeverity()
	return severity == SeverityCritical || severity == SeverityFatal
}

// IsType reports whether err carries a PDFError of the given type anywhere in its chain
func IsType(err error, errorType ErrorType) bool {
	var pdfErr *PDFError
	if !errors.As(err, &pdfErr) {
		return false
	}
	return pdfErr.Type == errorType
}

// ErrorCollection manages multiple PDF errors
type ErrorCollection struct {
	Errors   []*PDFError `json:"errors"`
	Warnings []*PDFError `json:"warnings"`
	FilePath string      `json:"file_path,omitempty"`
}

// NewErrorCollection creates a new error collection
func NewErrorCollection(filePath string) *ErrorCollection {
	return &ErrorCollection{
		Errors:   make([]*PDFError, 0),
		Warnings: make([]*PDFError, 0),
		FilePath: filePath,
	}
}

// Add adds an error to the appropriate collection based on severity
func (ec *ErrorCollection) Add(err *PDFError) {
	if err.FilePath == "" && ec.FilePath != "" {
		err.FilePath = ec.FilePath
	}

	severity := err.GetSeverity()
	if severity == SeverityWarning || severity == SeverityInfo {
		ec.Warnings = append(ec.Warnings, err)
	} else {
		ec.Errors = append(ec.Errors, err)
	}
}

// All returns errors followed by warnings
func (ec *ErrorCollection) All() []*PDFError {
	all := make([]*PDFError, 0, len(ec.Errors)+len(ec.Warnings))
	all = append(all, ec.Errors...)
	return append(all, ec.Warnings...)
}

// CountType returns how many collected entries have the given type
func (ec *ErrorCollection) CountType(errorType ErrorType) int {
	n := 0
	for _, e := range ec.All() {
		if e.Type == errorType {
			n++
		}
	}
	return n
}

// HasCriticalErrors returns true if any critical errors exist
func (ec *ErrorCollection) HasCriticalErrors() bool {
	for _, err := range ec.Errors {
		if err.IsCritical() {
			return true
		}
	}
	return false
}

// Count returns the total number of errors and warnings
func (ec *ErrorCollection) Count() (errors, warnings int) {
	return len(ec.Errors), len(ec.Warnings)
}

// Summary returns a text summary of all errors and warnings
func (ec *ErrorCollection) Summary() string {
	errorCount, warningCount := ec.Count()
	if errorCount == 0 && warningCount == 0 {
		return "No errors or warnings"
	}

	summary := fmt.Sprintf("Found %d error(s) and %d warning(s)", errorCount, warningCount)

	if ec.HasCriticalErrors() {
		summary += " (including critical errors)"
	}

	return summary
}
