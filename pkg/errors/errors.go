package errors

import (
	"encoding/json"
	"fmt"
)

// Error is a structured application error carrying a code, a short title and optional context
type Error struct {
	// Code is an application-specific error code
	Code ErrorCode `json:"code"`

	// Category groups related codes (credentials, operation, state, config, ...)
	Category string `json:"category"`

	// Title is a short, human-readable summary of the error
	Title string `json:"title"`

	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail,omitempty"`

	// ExitCode is the process exit status to use when this error reaches main
	ExitCode int `json:"exit_code"`

	// Cause is the underlying error that caused this error
	Cause error `json:"-"`

	// Fields contains additional context
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Format prints the cause chain with %+v so stack traces carried by the cause are kept
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') && e.Cause != nil {
			fmt.Fprintf(s, "%s\ncaused by: %+v", e.Error(), e.Cause)
			return
		}
		fmt.Fprint(s, e.Error())
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// WithDetail adds detail to the error
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// WithCause adds a cause to the error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	if e.Detail == "" && cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

// WithField adds a field to the error context
func (e *Error) WithField(key string, value interface{}) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithFields adds multiple fields to the error context
func (e *Error) WithFields(fields map[string]interface{}) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// MarshalJSON implements json.Marshaler
func (e *Error) MarshalJSON() ([]byte, error) {
	type Alias Error
	return json.Marshal(&struct {
		*Alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		Alias:    (*Alias)(e),
		CauseMsg: e.causeMessage(),
	})
}

func (e *Error) causeMessage() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return ""
}

// New creates a new Error
func New(code ErrorCode, title string) *Error {
	info := GetErrorInfo(code)
	return &Error{
		Code:     code,
		Category: info.Category,
		Title:    title,
		ExitCode: info.ExitCode,
		Fields:   make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(code ErrorCode, cause error, title string) *Error {
	return New(code, title).WithCause(cause)
}

// Is checks if the error is of a specific code
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As checks if the error is an application Error
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			err = unwrapper.Unwrap()
		} else {
			break
		}
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *Error
	if As(err, &appErr) {
		return appErr.Code
	}
	return ErrUnknown
}

// GetExitCode extracts the process exit status from an error
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *Error
	if As(err, &appErr) {
		return appErr.ExitCode
	}
	return 1
}

// Redact creates a sanitized copy of the error that is safe to print or log
func (e *Error) Redact() *Error {
	redacted := &Error{
		Code:     e.Code,
		Category: e.Category,
		Title:    e.Title,
		ExitCode: e.ExitCode,
		Fields:   make(map[string]interface{}),
	}

	for k, v := range e.Fields {
		if !isSensitiveField(k) {
			redacted.Fields[k] = v
		}
	}

	return redacted
}

func isSensitiveField(field string) bool {
	sensitiveFields := []string{
		"password", "secret", "token", "key", "credential",
		"api_key", "api_token", "access_key", "secret_access_key",
	}

	for _, sensitive := range sensitiveFields {
		if field == sensitive {
			return true
		}
	}
	return false
}
