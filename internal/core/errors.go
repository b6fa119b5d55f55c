package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Artifact errors
	ErrDataCorruption = &Error{Code: "DATA_CORRUPTION", Message: "artifact is unparsable"}
	ErrArtifactSave   = &Error{Code: "ARTIFACT_SAVE", Message: "artifact save failed"}

	// Market data errors
	ErrNoData         = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrProviderFailed = &Error{Code: "PROVIDER_FAILED", Message: "market data provider failed"}
	ErrAnomalousValue = &Error{Code: "ANOMALOUS_VALUE", Message: "implausible portfolio value"}

	// Ledger errors
	ErrInsufficientCapital = &Error{Code: "INSUFFICIENT_CAPITAL", Message: "insufficient capital for trade"}
	ErrNoPosition          = &Error{Code: "NO_POSITION", Message: "no position held in symbol"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
