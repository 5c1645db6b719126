package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/convert"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
)

// Serve runs the worker side of the channel protocol: decode one request at
// a time, execute it, answer with exactly one response. A task failure is
// answered and the loop continues; only the exit message (or input channel
// closure) ends the loop. This is the entry point of the subprocess worker
// mode, reading stdin and writing stdout.
func Serve(ctx context.Context, in io.Reader, out io.Writer, exec Executor, logger types.Logger) error {
	dec := json.NewDecoder(in)
	enc := json.NewEncoder(out)

	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				// Parent closed the channel without an exit
				// message; treat as shutdown.
				return nil
			}
			return err
		}

		if req.Exit {
			logger.Debug(ctx, "Exit requested", nil)
			return enc.Encode(Response{Exited: true})
		}

		bytes, err := exec.Run(ctx, req.InputPath, req.OutputPath)
		if err != nil {
			logger.Warn(ctx, "Task failed", types.Fields{
				"input": req.InputPath,
				"code":  Classify(err),
				"error": err.Error(),
			})
			if encErr := enc.Encode(Response{Code: Classify(err), Error: err.Error()}); encErr != nil {
				return encErr
			}
			continue
		}

		if err := enc.Encode(Response{OK: true, OutputPath: req.OutputPath, Bytes: bytes}); err != nil {
			return err
		}
	}
}

// Classify maps a pipeline error onto the result error taxonomy.
func Classify(err error) string {
	var stageErr *convert.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case convert.StageRead:
			return task.CodeRead
		case convert.StageWrite:
			return task.CodeWrite
		case convert.StageConvert:
			return task.CodeConversion
		}
	}
	return task.CodeConversion
}
