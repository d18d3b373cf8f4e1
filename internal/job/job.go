// Package job owns the job records and their lifecycle state machine.
package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle stage of a transcription job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions can leave this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Job is a single transcription request. Records are mutated only through
// the Store; everything handed out is a snapshot copy.
type Job struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Filename  string    `json:"filename,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	DoneAt    time.Time `json:"doneAt,omitzero"`
	Error     string    `json:"error,omitempty"`
	Segments  int       `json:"segments"`
	Completed int       `json:"completed"`
}

// NewID generates an opaque hex job identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// validTransition enforces the allowed state machine edges.
func validTransition(from, to Status) bool {
	switch from {
	case StatusQueued:
		return to == StatusRunning || to == StatusCancelled || to == StatusFailed
	case StatusRunning:
		return to == StatusSucceeded || to == StatusFailed || to == StatusCancelled
	default:
		return false
	}
}

// ErrInvalidTransition wraps a rejected state machine edge.
func errInvalidTransition(from, to Status) error {
	return fmt.Errorf("invalid transition: %s -> %s", from, to)
}
