package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/bench"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/config"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/convert"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/dispatch"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/pool"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/queue"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/results"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/storage"
	fsstore "github.com/glmaljkovich/heic-to-jpeg-middleware/internal/storage/fs"
	s3store "github.com/glmaljkovich/heic-to-jpeg-middleware/internal/storage/s3"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/worker"
)

// workerArg is the hidden mode under which the same binary re-executes
// itself as a subprocess worker speaking the channel protocol on
// stdin/stdout.
const workerArg = "worker"

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %s <strategy>

strategies:
  1  convert in-process, all tasks at once
  2  convert in-process, one task at a time
  3  one worker per task, sequential
  4  one persistent worker, sequential
  5  one worker per task, bounded fan-out
`, os.Args[0])
}

func main() {
	if len(os.Args) != 2 {
		usage()
		return
	}
	mode := os.Args[1]

	cfg := loadConfiguration()

	if mode == workerArg {
		runWorker(cfg)
		return
	}

	switch mode {
	case pool.SelectorInProcessParallel,
		pool.SelectorInProcessSequential,
		pool.SelectorOneShotSequential,
		pool.SelectorPersistent,
		pool.SelectorOneShotFanOut:
		runBench(cfg, mode)
	default:
		usage()
	}
}

func loadConfiguration() *config.Config {
	config.MustLoad()
	return config.MustGet()
}

// newProvider builds the observability provider. Worker mode logs to
// stderr: stdout belongs to the message channel.
func newProvider(cfg *config.Config, workerMode bool) observability.Provider {
	obsCfg := &observability.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	}
	if workerMode {
		obsCfg.LogOutput = os.Stderr
	}
	return observability.NewProvider(obsCfg)
}

func newStore(cfg *config.Config, provider observability.Provider) (storage.Store, error) {
	switch cfg.Storage.Adapter {
	case "fs":
		return fsstore.New(cfg.Storage.BasePath,
			provider.Logger("storage.fs"), provider.Metrics("storage.fs"))
	case "s3":
		return s3store.New(&cfg.Storage.S3,
			provider.Logger("storage.s3"), provider.Metrics("storage.s3"))
	default:
		return nil, fmt.Errorf("unknown storage adapter %q", cfg.Storage.Adapter)
	}
}

func newPipeline(cfg *config.Config, provider observability.Provider) (*convert.Pipeline, storage.Store, error) {
	store, err := newStore(cfg, provider)
	if err != nil {
		return nil, nil, err
	}

	opts := convert.Options{
		Format:  cfg.Bench.Format,
		Quality: cfg.Bench.Quality,
	}

	pipeline := convert.NewPipeline(store, convert.NewImageConverter(), opts,
		provider.Logger("pipeline"), provider.Metrics("pipeline"))
	return pipeline, store, nil
}

// runWorker is the subprocess side: serve the channel protocol until the
// exit message arrives or stdin closes.
func runWorker(cfg *config.Config) {
	provider := newProvider(cfg, true)
	defer provider.Close()
	logger := provider.Logger("worker")

	pipeline, _, err := newPipeline(cfg, provider)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}

	if err := worker.Serve(context.Background(), os.Stdin, os.Stdout, pipeline, logger); err != nil {
		logger.Error(context.Background(), "Worker loop failed", err, nil)
		os.Exit(1)
	}
}

func newSpawner(cfg *config.Config, pipeline *convert.Pipeline, provider observability.Provider) (worker.Spawner, error) {
	switch cfg.Worker.Mode {
	case "proc":
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate own binary: %w", err)
		}
		return worker.NewProcSpawner(self, []string{workerArg}, provider.Logger("worker.proc")), nil
	case "inproc":
		return worker.NewInprocSpawner(pipeline, provider.Logger("worker.inproc")), nil
	default:
		return nil, fmt.Errorf("unknown worker mode %q", cfg.Worker.Mode)
	}
}

func runBench(cfg *config.Config, selector string) {
	ctx := context.Background()

	provider := newProvider(cfg, false)
	defer provider.Close()
	logger := provider.Logger("main")

	pipeline, store, err := newPipeline(cfg, provider)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}

	spawner, err := newSpawner(cfg, pipeline, provider)
	if err != nil {
		log.Fatalf("failed to build spawner: %v", err)
	}

	deps := pool.Deps{
		Exec:    pipeline,
		Spawner: spawner,
		Dispatcher: dispatch.New(cfg.Worker.DispatchTimeout,
			provider.Logger("dispatch"), provider.Metrics("dispatch")),
		ShutdownTimeout: cfg.Worker.ShutdownTimeout,
		MaxConcurrent:   cfg.Bench.MaxConcurrent,
		Logger:          provider.Logger("pool"),
		Metrics:         provider.Metrics("pool"),
	}

	strategy, err := pool.ForSelector(selector, deps)
	if err != nil {
		usage()
		return
	}

	tasks, err := bench.BuildTasks(ctx, store, cfg.Bench.InputDir, cfg.Bench.OutputDir, cfg.Bench.Format)
	if err != nil {
		log.Fatalf("failed to list input corpus: %v", err)
	}
	if len(tasks) == 0 {
		logger.Warn(ctx, "No input images found", observability.Fields{
			"input_dir": cfg.Bench.InputDir,
		})
		return
	}

	runner := bench.NewRunner(provider.Logger("bench"), provider.Metrics("bench"))
	report, taskResults := runner.Run(ctx, strategy, tasks)

	fmt.Printf("strategy %s: %d tasks, %d succeeded, %d failed in %s\n",
		report.Strategy, report.TaskCount, report.Succeeded, report.Failed, report.Elapsed)

	persistReport(ctx, cfg, provider, report, taskResults)
	publishReport(ctx, cfg, provider, report)
}

// persistReport stores the run in PostgreSQL when the results database is
// enabled. A storage failure is logged, never fatal: the measurement
// already happened.
func persistReport(ctx context.Context, cfg *config.Config, provider observability.Provider, report bench.Report, taskResults []task.Result) {
	if !cfg.Database.Enabled {
		return
	}
	logger := provider.Logger("results")

	db, err := results.Connect(cfg.Database, logger)
	if err != nil {
		logger.Error(ctx, "Results database unavailable", err, nil)
		return
	}
	defer db.Close()

	repo := results.NewRepository(db, logger, provider.Metrics("results"))
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error(ctx, "Failed to ensure schema", err, nil)
		return
	}
	if err := repo.SaveReport(ctx, report, taskResults); err != nil {
		logger.Error(ctx, "Failed to persist run", err, observability.Fields{
			"run_id": report.RunID,
		})
	}
}

// publishReport pushes the report onto the queue when publishing is
// enabled.
func publishReport(ctx context.Context, cfg *config.Config, provider observability.Provider, report bench.Report) {
	if !cfg.Queue.Enabled {
		return
	}
	logger := provider.Logger("queue")

	pub, err := queue.NewAMQPPublisher(cfg.Queue.URL, cfg.Queue.Target,
		logger, provider.Metrics("queue"))
	if err != nil {
		logger.Error(ctx, "Report queue unavailable", err, nil)
		return
	}
	defer pub.Close()

	pubCtx, cancel := context.WithTimeout(ctx, cfg.Queue.Timeout)
	defer cancel()
	if err := pub.PublishReport(pubCtx, report); err != nil {
		logger.Error(ctx, "Failed to publish report", err, observability.Fields{
			"run_id": report.RunID,
		})
	}
}
