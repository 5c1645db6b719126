package convert

import (
	"context"
	"time"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/storage"
)

// Pipeline executes one unit of conversion work: read the input from
// storage, convert it, write the output. It is the body of every worker,
// in-process or subprocess.
type Pipeline struct {
	store   storage.Store
	conv    Converter
	opts    Options
	logger  types.Logger
	metrics types.Metrics
}

// NewPipeline assembles a pipeline from its collaborators.
func NewPipeline(store storage.Store, conv Converter, opts Options, logger types.Logger, metrics types.Metrics) *Pipeline {
	return &Pipeline{
		store:   store,
		conv:    conv,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Run converts inputPath into outputPath and returns the number of bytes
// written. Failures are returned as *StageError so callers can classify
// them into read, convert and write errors.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string) (int64, error) {
	start := time.Now()
	p.metrics.StartOperation("pipeline")
	defer p.metrics.EndOperation("pipeline")

	input, err := p.store.Read(ctx, inputPath)
	if err != nil {
		p.metrics.RecordError("pipeline", "read")
		return 0, &StageError{Stage: StageRead, Err: err}
	}

	output, err := p.conv.Convert(ctx, input, p.opts)
	if err != nil {
		p.metrics.RecordError("pipeline", "convert")
		return 0, &StageError{Stage: StageConvert, Err: err}
	}

	if err := p.store.Write(ctx, outputPath, output); err != nil {
		p.metrics.RecordError("pipeline", "write")
		return 0, &StageError{Stage: StageWrite, Err: err}
	}

	p.logger.Debug(ctx, "Conversion complete", types.Fields{
		"input":       inputPath,
		"output":      outputPath,
		"bytes_in":    len(input),
		"bytes_out":   len(output),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	p.metrics.RecordSuccess("pipeline")
	p.metrics.RecordDuration("pipeline", time.Since(start).Seconds())

	return int64(len(output)), nil
}
