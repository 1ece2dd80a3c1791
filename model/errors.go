package model

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotReady is returned when the LLM backend is not configured.
// The message text is matched by callers and must keep "Agent not ready".
var ErrNotReady = errors.New("Agent not ready yet.")

// ErrEmptyQuestion is returned for empty or whitespace-only questions.
var ErrEmptyQuestion = errors.New("question must not be empty")

// ErrWriteStatement marks a query rejected by the read-only guard.
var ErrWriteStatement = errors.New("only read-only SELECT statements are allowed")

// QueryGenerationError means no valid read-only query could be derived.
type QueryGenerationError struct {
	Query string // attempted query, may be empty
	Err   error
}

func (e *QueryGenerationError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("query generation failed: %v", e.Err)
	}
	return fmt.Sprintf("query generation failed for %q: %v", e.Query, e.Err)
}

func (e *QueryGenerationError) Unwrap() error { return e.Err }

// ExecutionError means the store rejected the generated query.
type ExecutionError struct {
	Query string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed for %q: %v", e.Query, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IndexUnavailableError means the vector index could not be opened or searched.
type IndexUnavailableError struct {
	Err error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("document index unavailable: %v", e.Err)
}

func (e *IndexUnavailableError) Unwrap() error { return e.Err }

// SynthesisError means an LLM completion failed or timed out.
type SynthesisError struct {
	Stage string // "routing" or "synthesis"
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Stage, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Timeout reports whether the completion failed because of a deadline.
func (e *SynthesisError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// AttemptedQuery returns the query text carried by a SQL-path error.
func AttemptedQuery(err error) (string, bool) {
	var genErr *QueryGenerationError
	if errors.As(err, &genErr) {
		return genErr.Query, true
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Query, true
	}
	return "", false
}
