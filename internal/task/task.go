// Package task defines the unit of conversion work and its outcome.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Task is one immutable unit of conversion work: an input reference and an
// output destination. A task is created by the caller and consumed exactly
// once by a worker.
type Task struct {
	// ID uniquely identifies the task so that results can be
	// re-associated with their originating task regardless of arrival
	// order.
	ID string `json:"id"`

	// InputPath references the source image.
	InputPath string `json:"input_path"`

	// OutputPath is the destination for the converted image. Callers must
	// ensure distinct output paths per task to avoid write collisions.
	OutputPath string `json:"output_path"`

	// CreatedAt is when the task was built.
	CreatedAt time.Time `json:"created_at"`
}

// New creates a Task with a generated ID.
func New(inputPath, outputPath string) Task {
	return Task{
		ID:         uuid.New().String(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		CreatedAt:  time.Now().UTC(),
	}
}
