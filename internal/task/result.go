package task

import (
	"time"
)

// Error codes carried by failed results. Machine-readable, in the style of
// structured error responses.
const (
	// CodeWorkerUnavailable: the worker's channel was already closed or
	// the worker was not in a state to accept a task.
	CodeWorkerUnavailable = "WORKER_UNAVAILABLE"

	// CodeConversion: the conversion collaborator rejected the input.
	CodeConversion = "CONVERSION_ERROR"

	// CodeRead: the input could not be read from storage.
	CodeRead = "READ_ERROR"

	// CodeWrite: the converted output could not be written.
	CodeWrite = "WRITE_ERROR"

	// CodeChannel: the worker terminated abnormally mid-task.
	CodeChannel = "CHANNEL_ERROR"

	// CodeTimeout: no response arrived within the dispatch deadline.
	CodeTimeout = "TIMEOUT"
)

// Error is the structured failure attached to a Result.
type Error struct {
	// Code is one of the Code* constants.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Result is the tagged outcome of processing one Task. Either Success is
// true and the output fields are set, or Success is false and Err carries
// the failure.
type Result struct {
	// TaskID correlates the result with its originating task.
	TaskID string `json:"task_id"`

	// Success indicates whether the task completed.
	Success bool `json:"success"`

	// OutputPath is where the converted image was written.
	OutputPath string `json:"output_path,omitempty"`

	// Bytes is the size of the written output.
	Bytes int64 `json:"bytes,omitempty"`

	// Duration is the task round-trip time as observed by the dispatcher.
	Duration time.Duration `json:"duration,omitempty"`

	// Err holds failure details when Success is false.
	Err *Error `json:"error,omitempty"`
}

// NewSuccess builds a success result for the given task.
func NewSuccess(taskID, outputPath string, bytes int64) Result {
	return Result{
		TaskID:     taskID,
		Success:    true,
		OutputPath: outputPath,
		Bytes:      bytes,
	}
}

// NewFailure builds a failure result with the given error code and message.
func NewFailure(taskID, code, message string) Result {
	return Result{
		TaskID:  taskID,
		Success: false,
		Err:     &Error{Code: code, Message: message},
	}
}

// Failed reports whether the result carries the given error code.
func (r Result) Failed(code string) bool {
	return !r.Success && r.Err != nil && r.Err.Code == code
}
