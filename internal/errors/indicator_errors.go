package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Invalid static parameters: periods, multipliers, lengths, indices
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Input that does not fit the expected schema (wrong column type, unknown function)
	ErrorCategoryValidation ErrorCategory = "VALIDATION"

	// Problems reading or writing data files
	ErrorCategoryData ErrorCategory = "DATA"
)

// Sentinels for errors.Is checks against a category
var (
	ErrConfiguration = stderrors.New("configuration error")
	ErrValidation    = stderrors.New("validation error")
	ErrData          = stderrors.New("data error")
)

// IndicatorError represents a categorized error with context
type IndicatorError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *IndicatorError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error for error unwrapping
func (e *IndicatorError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is the sentinel of this error's category
func (e *IndicatorError) Is(target error) bool {
	return target != nil && target == e.Category.sentinel()
}

func (c ErrorCategory) sentinel() error {
	switch c {
	case ErrorCategoryConfiguration:
		return ErrConfiguration
	case ErrorCategoryValidation:
		return ErrValidation
	case ErrorCategoryData:
		return ErrData
	default:
		return nil
	}
}

// NewIndicatorError creates a new categorized error
func NewIndicatorError(category ErrorCategory, component, operation, message string) *IndicatorError {
	return &IndicatorError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with indicator error context
func WrapError(err error, category ErrorCategory, component, operation string) *IndicatorError {
	if err == nil {
		return nil
	}

	return &IndicatorError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *IndicatorError) WithContext(key string, value interface{}) *IndicatorError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Common error constructors
func NewConfigurationError(component, operation, message string) *IndicatorError {
	return NewIndicatorError(ErrorCategoryConfiguration, component, operation, message)
}

func NewValidationError(component, operation, message string) *IndicatorError {
	return NewIndicatorError(ErrorCategoryValidation, component, operation, message)
}

func NewDataError(component, operation string, err error) *IndicatorError {
	return WrapError(err, ErrorCategoryData, component, operation)
}

// CategoryOf returns the category of err, or "UNKNOWN" for foreign errors
func CategoryOf(err error) ErrorCategory {
	var indErr *IndicatorError
	if stderrors.As(err, &indErr) {
		return indErr.Category
	}
	return "UNKNOWN"
}

// IsConfiguration reports whether err is a configuration error
func IsConfiguration(err error) bool {
	return stderrors.Is(err, ErrConfiguration)
}
