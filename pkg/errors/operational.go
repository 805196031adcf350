package errors

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// OperationalError represents enhanced error information for diagnostics.
//
// It wraps errors with the context of a scene operation: which diagram and
// which cell were involved, and when. History replay uses it to describe
// commands it had to skip.
type OperationalError struct {
	Operation  string         // What operation was being performed
	DiagramID  string         // Which diagram
	CellID     string         // Which cell (if applicable)
	Timestamp  time.Time      // When error occurred
	Attributes map[string]any // Additional context (optional)
	Cause      error          // Underlying error
}

// NewOperationalError creates an OperationalError wrapping an error.
//
// Returns nil if cause is nil (no error to wrap).
//
// Example:
//
//	if err != nil {
//	    return NewOperationalError("undo", diagramID, cellID, err)
//	}
func NewOperationalError(operation, diagramID, cellID string, cause error) *OperationalError {
	if cause == nil {
		return nil
	}

	return &OperationalError{
		Operation: operation,
		DiagramID: diagramID,
		CellID:    cellID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// NewOperationalErrorWithAttrs creates an OperationalError with additional attributes.
//
// Returns nil if cause is nil (no error to wrap).
func NewOperationalErrorWithAttrs(operation, diagramID, cellID string, cause error, attrs map[string]any) *OperationalError {
	err := NewOperationalError(operation, diagramID, cellID, cause)
	if err != nil {
		err.Attributes = attrs
	}
	return err
}

// Error implements the error interface.
//
// Format: "operation: diagram={id} cell={id} [k=v ...]: {cause}"
// Empty IDs are omitted from the message.
func (e *OperationalError) Error() string {
	if e == nil {
		return "<nil OperationalError>"
	}

	var b strings.Builder
	b.WriteString(e.Operation)
	b.WriteString(":")
	if e.DiagramID != "" {
		fmt.Fprintf(&b, " diagram=%s", e.DiagramID)
	}
	if e.CellID != "" {
		fmt.Fprintf(&b, " cell=%s", e.CellID)
	}

	keys := make([]string, 0, len(e.Attributes))
	for k := range e.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attributes[k])
	}

	fmt.Fprintf(&b, ": %v", e.Cause)
	return b.String()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
