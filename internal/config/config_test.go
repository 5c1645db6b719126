package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse()
	require.NoError(t, err)

	assert.Equal(t, "heic-converter", cfg.ServiceName)
	assert.Equal(t, "fs", cfg.Storage.Adapter)
	assert.Equal(t, "proc", cfg.Worker.Mode)
	assert.Equal(t, "jpeg", cfg.Bench.Format)
	assert.Equal(t, 80, cfg.Bench.Quality)
	assert.Equal(t, 8, cfg.Bench.MaxConcurrent)
	assert.Equal(t, 60*time.Second, cfg.Worker.DispatchTimeout)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Queue.Enabled)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("WORKER_MODE", "inproc")
	t.Setenv("BENCH_MAX_CONCURRENT", "3")
	t.Setenv("WORKER_DISPATCH_TIMEOUT", "250ms")
	t.Setenv("BENCH_FORMAT", "png")

	cfg, err := parse()
	require.NoError(t, err)

	assert.Equal(t, "inproc", cfg.Worker.Mode)
	assert.Equal(t, 3, cfg.Bench.MaxConcurrent)
	assert.Equal(t, 250*time.Millisecond, cfg.Worker.DispatchTimeout)
	assert.Equal(t, "png", cfg.Bench.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "s3 requires a bucket",
			mutate:  func(c *Config) { c.Storage.Adapter = "s3"; c.Storage.S3.Bucket = "" },
			wantErr: "S3_BUCKET",
		},
		{
			name:    "unknown storage adapter",
			mutate:  func(c *Config) { c.Storage.Adapter = "tape" },
			wantErr: "unknown storage adapter",
		},
		{
			name:    "unknown worker mode",
			mutate:  func(c *Config) { c.Worker.Mode = "thread" },
			wantErr: "unknown worker mode",
		},
		{
			name:    "quality out of range",
			mutate:  func(c *Config) { c.Bench.Quality = 0 },
			wantErr: "quality",
		},
		{
			name:    "zero concurrency cap",
			mutate:  func(c *Config) { c.Bench.MaxConcurrent = 0 },
			wantErr: "max concurrent",
		},
		{
			name:    "non-positive dispatch timeout",
			mutate:  func(c *Config) { c.Worker.DispatchTimeout = 0 },
			wantErr: "dispatch timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSingleton(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	_, err := Get()
	assert.Error(t, err)

	require.NoError(t, Load())
	assert.True(t, IsLoaded())

	cfg, err := Get()
	require.NoError(t, err)
	assert.Same(t, cfg, MustGet())
}
