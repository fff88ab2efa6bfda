package models

import (
	"fmt"
	"strings"
)

// IngestionError reports a fatal problem with the input file before any
// classification takes place.
type IngestionError struct {
	Reason string
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest: %s", e.Reason)
}

// MissingColumnsError lists every required contract feature absent from the
// input header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ServiceUnavailableError signals the model service reported itself not ready
// or could not be reached. Fatal for the batch; never retried automatically.
type ServiceUnavailableError struct {
	Reason string
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("model service unavailable: %s", e.Reason)
}

// ServiceResponseError carries the model service's own error message verbatim.
type ServiceResponseError struct {
	Message string
}

func (e *ServiceResponseError) Error() string {
	return fmt.Sprintf("model service error: %s", e.Message)
}

// EmptyBatchError is raised when a summary is requested for zero predictions.
type EmptyBatchError struct{}

func (e *EmptyBatchError) Error() string {
	return "empty batch: no predictions to summarize"
}
