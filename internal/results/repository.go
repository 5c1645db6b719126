package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/bench"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
)

// ErrRunNotFound is returned when no run exists for the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is one persisted benchmark run.
type RunRecord struct {
	RunID        string    `db:"run_id"`
	Strategy     string    `db:"strategy"`
	TaskCount    int       `db:"task_count"`
	Succeeded    int       `db:"succeeded"`
	Failed       int       `db:"failed"`
	BytesWritten int64     `db:"bytes_written"`
	ElapsedMs    int64     `db:"elapsed_ms"`
	StartedAt    time.Time `db:"started_at"`
}

// ResultRecord is one persisted per-task outcome.
type ResultRecord struct {
	RunID      string `db:"run_id"`
	TaskID     string `db:"task_id"`
	Success    bool   `db:"success"`
	OutputPath string `db:"output_path"`
	Bytes      int64  `db:"bytes"`
	DurationMs int64  `db:"duration_ms"`
	ErrorCode  string `db:"error_code"`
	ErrorMsg   string `db:"error_message"`
}

const schema = `
CREATE TABLE IF NOT EXISTS bench_runs (
	run_id        TEXT PRIMARY KEY,
	strategy      TEXT NOT NULL,
	task_count    INTEGER NOT NULL,
	succeeded     INTEGER NOT NULL,
	failed        INTEGER NOT NULL,
	bytes_written BIGINT NOT NULL,
	elapsed_ms    BIGINT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS bench_results (
	run_id        TEXT NOT NULL REFERENCES bench_runs(run_id) ON DELETE CASCADE,
	task_id       TEXT NOT NULL,
	success       BOOLEAN NOT NULL,
	output_path   TEXT NOT NULL DEFAULT '',
	bytes         BIGINT NOT NULL DEFAULT 0,
	duration_ms   BIGINT NOT NULL DEFAULT 0,
	error_code    TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, task_id)
);
`

// Repository stores benchmark runs and results.
type Repository struct {
	db      *sqlx.DB
	logger  types.Logger
	metrics types.Metrics
	qb      squirrel.StatementBuilderType
}

// NewRepository creates the repository.
func NewRepository(db *sqlx.DB, logger types.Logger, metrics types.Metrics) *Repository {
	return &Repository{
		db:      db,
		logger:  logger,
		metrics: metrics,
		qb:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// EnsureSchema creates the tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveReport persists one run and all of its task results in a single
// transaction.
func (r *Repository) SaveReport(ctx context.Context, report bench.Report, results []task.Result) error {
	start := time.Now()
	defer func() {
		r.metrics.RecordDuration("results_save", time.Since(start).Seconds())
	}()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.metrics.RecordError("results_save", "begin_failed")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runSQL, runArgs, err := r.qb.
		Insert("bench_runs").
		Columns("run_id", "strategy", "task_count", "succeeded", "failed",
			"bytes_written", "elapsed_ms", "started_at").
		Values(report.RunID, report.Strategy, report.TaskCount, report.Succeeded,
			report.Failed, report.BytesWritten, report.Elapsed.Milliseconds(),
			report.StartedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, runSQL, runArgs...); err != nil {
		r.metrics.RecordError("results_save", "insert_run_failed")
		return fmt.Errorf("insert run: %w", err)
	}

	if len(results) > 0 {
		insert := r.qb.
			Insert("bench_results").
			Columns("run_id", "task_id", "success", "output_path", "bytes",
				"duration_ms", "error_code", "error_message")
		for _, res := range results {
			var code, msg string
			if res.Err != nil {
				code = res.Err.Code
				msg = res.Err.Message
			}
			insert = insert.Values(report.RunID, res.TaskID, res.Success,
				res.OutputPath, res.Bytes, res.Duration.Milliseconds(), code, msg)
		}

		resSQL, resArgs, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build results insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, resSQL, resArgs...); err != nil {
			r.metrics.RecordError("results_save", "insert_results_failed")
			return fmt.Errorf("insert results: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.metrics.RecordError("results_save", "commit_failed")
		return fmt.Errorf("commit: %w", err)
	}

	r.metrics.RecordSuccess("results_save")
	r.logger.Info(ctx, "Run persisted", types.Fields{
		"run_id":   report.RunID,
		"strategy": report.Strategy,
		"results":  len(results),
	})

	return nil
}

// GetRun loads one run by ID.
func (r *Repository) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	query, args, err := r.qb.
		Select("*").
		From("bench_runs").
		Where(squirrel.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var run RunRecord
	err = r.db.GetContext(ctx, &run, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs for a strategy, newest first. An
// empty strategy lists runs for all strategies.
func (r *Repository) ListRuns(ctx context.Context, strategy string, limit uint64) ([]RunRecord, error) {
	query := r.qb.
		Select("*").
		From("bench_runs").
		OrderBy("started_at DESC").
		Limit(limit)
	if strategy != "" {
		query = query.Where(squirrel.Eq{"strategy": strategy})
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var runs []RunRecord
	if err := r.db.SelectContext(ctx, &runs, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ResultsForRun returns the per-task results of one run.
func (r *Repository) ResultsForRun(ctx context.Context, runID string) ([]ResultRecord, error) {
	query, args, err := r.qb.
		Select("*").
		From("bench_results").
		Where(squirrel.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []ResultRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return records, nil
}
