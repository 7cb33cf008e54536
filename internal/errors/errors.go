// Package errors defines stable error codes and the SpecterError type.
//
// Expected "no data" conditions (missing graph, unavailable repo, partial
// history) are represented as absent/empty results by their packages and
// never surface through this type. SpecterError is reserved for conditions
// a caller must act on: disk failures, invalid explicit targets.
package errors

import "fmt"

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NotAGitRepo indicates the root directory has no version control history
	NotAGitRepo ErrorCode = "NOT_A_GIT_REPO"
	// NoGraphFound indicates no persisted graph exists for the root
	NoGraphFound ErrorCode = "NO_GRAPH_FOUND"
	// CorruptedArtifact indicates a persisted artifact failed to parse or verify
	CorruptedArtifact ErrorCode = "CORRUPTED_ARTIFACT"
	// Timeout indicates an external command exceeded its deadline
	Timeout ErrorCode = "TIMEOUT"
	// PartialHistory indicates some history queries failed and were skipped
	PartialHistory ErrorCode = "PARTIAL_HISTORY"
	// UnresolvedImport indicates an import specifier could not be resolved
	UnresolvedImport ErrorCode = "UNRESOLVED_IMPORT"
	// InvalidExportTarget indicates an explicit export target is unusable
	InvalidExportTarget ErrorCode = "INVALID_EXPORT_TARGET"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Safe        bool   `json:"safe,omitempty"`
	Description string `json:"description,omitempty"`
}

// SpecterError carries a stable code, message, and suggested fixes
type SpecterError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a new SpecterError
func New(code ErrorCode, message string, cause error) *SpecterError {
	return &SpecterError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *SpecterError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SpecterError) Unwrap() error {
	return e.cause
}

// WithFixes attaches suggested fixes to the error
func (e *SpecterError) WithFixes(fixes ...FixAction) *SpecterError {
	e.SuggestedFixes = append(e.SuggestedFixes, fixes...)
	return e
}

// WithDetails adds details to the error
func (e *SpecterError) WithDetails(details interface{}) *SpecterError {
	e.Details = details
	return e
}

// CodeOf returns the error code if err is a SpecterError, or InternalError.
func CodeOf(err error) ErrorCode {
	if se, ok := err.(*SpecterError); ok {
		return se.Code
	}
	return InternalError
}

// SuggestedFixes returns canned fixes for common codes.
func SuggestedFixes(code ErrorCode) []FixAction {
	switch code {
	case NoGraphFound:
		return []FixAction{{
			Command:     "specter scan",
			Safe:        true,
			Description: "Build the knowledge graph for this repository",
		}}
	case NotAGitRepo:
		return []FixAction{{
			Command:     "git init",
			Safe:        false,
			Description: "Initialize a git repository to enable history analytics",
		}}
	default:
		return nil
	}
}
