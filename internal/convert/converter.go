// Package convert holds the image conversion collaborator and the
// read-convert-write pipeline executed for each task.
//
// The Converter interface keeps the codec swappable: the harness treats
// conversion as an opaque capability injected into the worker.
package convert

import (
	"context"
	"errors"
	"fmt"
)

// ErrConversion tags failures originating in the codec itself, as opposed to
// storage failures around it.
var ErrConversion = errors.New("conversion failed")

// Options configure the target encoding.
type Options struct {
	// Format is the output encoding: "jpeg" or "png".
	Format string

	// Quality is the JPEG encoder quality (1-100). Ignored for PNG.
	Quality int
}

// Converter transcodes image bytes. Implementations must be safe for
// concurrent use.
type Converter interface {
	// Convert decodes input and re-encodes it per opts. A malformed or
	// unsupported input yields an error wrapping ErrConversion.
	Convert(ctx context.Context, input []byte, opts Options) ([]byte, error)
}

// Stage identifies where in the pipeline a failure occurred.
type Stage string

const (
	StageRead    Stage = "read"
	StageConvert Stage = "convert"
	StageWrite   Stage = "write"
)

// StageError wraps a pipeline failure with the stage it occurred in, so that
// callers can classify it without string matching.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
