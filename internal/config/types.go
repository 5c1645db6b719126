package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	LogLevel    string
	Version     string

	// Component configurations
	Bench    BenchConfig
	Worker   WorkerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Queue    QueueConfig
}

// BenchConfig holds the benchmark harness configuration.
type BenchConfig struct {
	// InputDir is scanned for source images; one task is created per file.
	InputDir string

	// OutputDir receives converted images. Output paths are unique per
	// task, so concurrent strategies never collide on writes.
	OutputDir string

	// Format is the target encoding: "jpeg" or "png".
	Format string

	// Quality is the JPEG encoder quality (1-100).
	Quality int

	// MaxConcurrent caps the number of simultaneously live workers in the
	// fan-out strategy.
	MaxConcurrent int
}

// WorkerConfig holds worker lifecycle configuration.
type WorkerConfig struct {
	// Mode selects the worker execution context: "proc" spawns real
	// subprocesses, "inproc" runs the same protocol over goroutines.
	Mode string

	// DispatchTimeout bounds a single task round trip. On expiry the task
	// fails with a timeout and the owning worker is force-terminated.
	DispatchTimeout time.Duration

	// ShutdownTimeout bounds the wait for a worker to exit after the
	// shutdown message. Stragglers are killed.
	ShutdownTimeout time.Duration
}

// StorageConfig selects and configures the object store backing the
// conversion pipeline.
type StorageConfig struct {
	// Adapter is "fs" or "s3".
	Adapter string

	// BasePath is the filesystem root for the fs adapter.
	BasePath string

	// S3 holds S3-specific configuration for the s3 adapter.
	S3 S3Config
}

// S3Config holds S3-specific configuration.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // for MinIO or other S3-compatible services
}

// DatabaseConfig holds the optional results database configuration.
type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Database     string
	Username     string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// QueueConfig holds the optional report-publishing queue configuration.
type QueueConfig struct {
	Enabled bool
	URL     string
	Target  string
	Timeout time.Duration
}
