// Package errors provides structured error types for foliosync.
package errors

import (
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for foliosync.
const (
	// Configuration errors abort before any network call.
	CodeConfigMissing Code = "CONFIG_MISSING"
	CodeConfigInvalid Code = "CONFIG_INVALID"

	// Source-file errors
	CodeSourceInvalid Code = "SOURCE_INVALID"

	// Remote errors
	CodeRemoteReadFailed  Code = "REMOTE_READ_FAILED"
	CodeRemoteWriteFailed Code = "REMOTE_WRITE_FAILED"

	// Enrichment errors (only fatal when a whole provider cannot be built)
	CodeEnrichFailed Code = "ENRICH_FAILED"
)

// exitCodes maps error codes to process exit statuses. Configuration
// problems get a distinct code so calling automation can tell "fix your
// environment" apart from "the run failed".
var exitCodes = map[Code]int{
	CodeConfigMissing:     2,
	CodeConfigInvalid:     2,
	CodeSourceInvalid:     1,
	CodeRemoteReadFailed:  1,
	CodeRemoteWriteFailed: 1,
	CodeEnrichFailed:      1,
}

// SyncError is the structured error type for foliosync.
type SyncError struct {
	Code  Code
	What  string
	Why   string
	Fix   string
	Cause error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *SyncError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly message for CLI output.
func (e *SyncError) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString("\n\nCause: ")
		b.WriteString(e.Cause.Error())
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// ExitCode returns the process exit status for this error.
func (e *SyncError) ExitCode() int {
	if code, ok := exitCodes[e.Code]; ok {
		return code
	}
	return 1
}

// Is reports whether target is a SyncError with the same code.
func (e *SyncError) Is(target error) bool {
	t, ok := target.(*SyncError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *SyncError) WithCause(err error) *SyncError {
	return &SyncError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrConfigMissing returns an error for a required setting that is not set.
func ErrConfigMissing(field, envVar string) *SyncError {
	return &SyncError{
		Code: CodeConfigMissing,
		What: fmt.Sprintf("missing required configuration: %s", field),
		Why:  "This setting is required but was not found in flags, environment, or the config file",
		Fix:  fmt.Sprintf("Set the %s environment variable or add '%s' to the config file", envVar, field),
	}
}

// ErrConfigInvalid returns an error for a setting with an unusable value.
func ErrConfigInvalid(field, reason string) *SyncError {
	return &SyncError{
		Code: CodeConfigInvalid,
		What: fmt.Sprintf("invalid configuration: %s", field),
		Why:  reason,
		Fix:  "Fix the value in the config file or the corresponding flag",
	}
}

// ErrSourceInvalid returns an error for a malformed project source file.
func ErrSourceInvalid(path, reason string) *SyncError {
	return &SyncError{
		Code: CodeSourceInvalid,
		What: fmt.Sprintf("project source file %s is invalid", path),
		Why:  reason,
		Fix:  "Fix the offending record in the source file and rerun",
	}
}

// ErrRemoteReadFailed returns an error for a failed remote item listing.
// Without authoritative remote state, no safe reconciliation decision exists.
func ErrRemoteReadFailed(collectionID string) *SyncError {
	return &SyncError{
		Code: CodeRemoteReadFailed,
		What: fmt.Sprintf("failed to list items in collection %s", collectionID),
		Why:  "Reconciliation needs the full current remote state before it can classify any record",
		Fix:  "Check the collection ID and API token, then rerun; no writes were made",
	}
}

// ErrRemoteWriteFailed returns an error for a failed create, update, or
// publish call. Reruns are safe because reconciliation is idempotent.
func ErrRemoteWriteFailed(call string) *SyncError {
	return &SyncError{
		Code: CodeRemoteWriteFailed,
		What: fmt.Sprintf("remote %s call failed", call),
		Why:  "The run aborted to avoid publishing items that were never written",
		Fix:  "Rerun the sync; already-converged records reconcile to no-ops",
	}
}

// AsSyncError attempts to convert an error to a SyncError.
// Returns nil if the error is not a SyncError anywhere in its chain.
func AsSyncError(err error) *SyncError {
	for err != nil {
		if se, ok := err.(*SyncError); ok {
			return se
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = unwrapper.Unwrap()
	}
	return nil
}
