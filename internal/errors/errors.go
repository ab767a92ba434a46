package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// GraphMissing indicates a rustdoc graph file was not found
	GraphMissing ErrorCode = "GRAPH_MISSING"
	// GraphMalformed indicates a rustdoc graph file could not be decoded
	GraphMalformed ErrorCode = "GRAPH_MALFORMED"
	// ItemNotFound indicates an item id is absent from the loaded graph
	ItemNotFound ErrorCode = "ITEM_NOT_FOUND"
	// AliasCycle indicates a re-export chain that loops back on itself
	AliasCycle ErrorCode = "ALIAS_CYCLE"
	// AliasChainTooDeep indicates a re-export chain longer than the trace limit
	AliasChainTooDeep ErrorCode = "ALIAS_CHAIN_TOO_DEEP"
	// ProfileInvalid indicates an analysis profile that failed validation
	ProfileInvalid ErrorCode = "PROFILE_INVALID"
	// CacheCorrupt indicates the record cache is unreadable or inconsistent
	CacheCorrupt ErrorCode = "CACHE_CORRUPT"
	// ExportFailed indicates an export could not be produced
	ExportFailed ErrorCode = "EXPORT_FAILED"
	// SnapshotIncompatible indicates a snapshot with an unsupported schema version
	SnapshotIncompatible ErrorCode = "SNAPSHOT_INCOMPATIBLE"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// RdxError represents a rustdex error with code, message, and suggestions
type RdxError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new RdxError
func New(code ErrorCode, message string, cause error) *RdxError {
	return &RdxError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: SuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *RdxError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *RdxError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *RdxError) WithDetails(details interface{}) *RdxError {
	e.Details = details
	return e
}

// fixActions maps error codes to suggested fix actions
var fixActions = map[ErrorCode][]FixAction{
	GraphMissing: {
		{
			Type:        RunCommand,
			Command:     "rustdex doctor",
			Safe:        true,
			Description: "Check configured graph paths",
		},
		{
			Type:        RunCommand,
			Command:     "cargo +nightly rustdoc -- -Z unstable-options --output-format json",
			Safe:        true,
			Description: "Generate a rustdoc JSON graph for the crate",
		},
	},
	GraphMalformed: {
		{
			Type:        RunCommand,
			Command:     "rustdex doctor",
			Safe:        true,
			Description: "Validate configured graphs and report the first decode failure",
		},
	},
	CacheCorrupt: {
		{
			Type:        RunCommand,
			Command:     "rm -r .rustdex/rustdex.db",
			Safe:        false,
			Description: "Remove the record cache; it is rebuilt on the next run",
		},
	},
	SnapshotIncompatible: {
		{
			Type:        RunCommand,
			Command:     "rustdex export --format snapshot",
			Safe:        true,
			Description: "Re-export the snapshot with the current schema",
		},
	},
}

// SuggestedFixes returns suggested fixes for an error code
func SuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := fixActions[code]; ok {
		return fixes
	}
	return nil
}

// CodeOf extracts the ErrorCode from err if it is an RdxError, or
// InternalError otherwise.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*RdxError); ok {
		return e.Code
	}
	return InternalError
}
