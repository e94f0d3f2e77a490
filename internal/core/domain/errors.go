package domain

import (
	"errors"
	"fmt"
)

// DomainError is an error carrying a stable code.
//
// Codes follow HO-<AREA>-<NNNN>. Most of these never leave the
// subsystem: storage and recovery failures are logged or recorded in
// state, not returned to callers.
type DomainError struct {
	Code    string // Error code (e.g., "HO-STOR-5001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Storage Errors (STOR)
// ============================================================================

var (
	// ErrStorageUnavailable indicates the durable store faulted (disabled,
	// full, closed or corrupt). Callers degrade to "absent".
	ErrStorageUnavailable = NewDomainError("HO-STOR-5001", "storage unavailable")

	// ErrRecordCorrupt indicates a stored record could not be decoded.
	ErrRecordCorrupt = NewDomainError("HO-STOR-5002", "stored record corrupt")
)

// ============================================================================
// Marker Errors (MARK)
// ============================================================================

var (
	// ErrMarkerExpired is the lazy-expiry outcome. Informational only.
	ErrMarkerExpired = NewDomainError("HO-MARK-4041", "marker expired")

	// ErrMarkerNotFound indicates no marker of the requested kind exists.
	ErrMarkerNotFound = NewDomainError("HO-MARK-4040", "marker not found")

	// ErrSnapshotNotFound indicates no live wallet snapshot is cached.
	ErrSnapshotNotFound = NewDomainError("HO-WLT-4040", "wallet snapshot not found")
)

// ============================================================================
// Recovery Errors (RCVR)
// ============================================================================

var (
	// ErrRecoveryFailed indicates the secondary provider's silent refresh
	// failed or returned no token.
	ErrRecoveryFailed = NewDomainError("HO-RCVR-5002", "secondary session recovery failed")

	// ErrRecoveryEmptyToken indicates the provider resolved without a token.
	ErrRecoveryEmptyToken = NewDomainError("HO-RCVR-5003", "secondary provider returned empty token")
)

// ============================================================================
// Primary Auth Errors (AUTH)
// ============================================================================

var (
	// ErrPrimaryRefreshFailed indicates the primary-session refresh failed.
	ErrPrimaryRefreshFailed = NewDomainError("HO-AUTH-5003", "primary session refresh failed")

	// ErrPrimaryQueryFailed indicates the primary-session query failed.
	ErrPrimaryQueryFailed = NewDomainError("HO-AUTH-5004", "primary session query failed")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("HO-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("HO-ARG-1002", "missing required argument")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal indicates an unexpected failure in the host bridge.
	ErrInternal = NewDomainError("HO-SYS-5000", "internal error")

	// ErrComponentDisabled indicates the requested component is not configured.
	ErrComponentDisabled = NewDomainError("HO-SYS-5030", "component not configured")
)
