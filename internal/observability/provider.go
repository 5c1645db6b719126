// Package observability provides a centralized provider for the logging and
// metrics components used throughout the conversion harness.
package observability

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/logger"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/metrics"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
)

// Aliases so that callers only need to import this package.
type (
	Logger   = types.Logger
	Metrics  = types.Metrics
	Fields   = types.Fields
	Config   = types.Config
	Provider = types.Provider
)

// DefaultProvider implements the Provider interface. It manages Logger and
// Metrics instances per component with lazy, thread-safe initialization.
type DefaultProvider struct {
	config  *Config
	loggers map[string]Logger
	metrics map[string]Metrics
	mu      sync.RWMutex
}

// NewProvider creates an observability provider with the given configuration.
// If LogOutput is not set it defaults to os.Stdout.
func NewProvider(config *Config) Provider {
	if config.LogOutput == nil {
		config.LogOutput = os.Stdout
	}

	return &DefaultProvider{
		config:  config,
		loggers: make(map[string]Logger),
		metrics: make(map[string]Metrics),
	}
}

// Logger returns the Logger for the named component, creating it on first
// access. The logger carries the provider's additional fields plus a
// "component" field, and a service name of the form "{service}.{component}".
func (p *DefaultProvider) Logger(component string) Logger {
	p.mu.RLock()
	if l, exists := p.loggers[component]; exists {
		p.mu.RUnlock()
		return l
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if l, exists := p.loggers[component]; exists {
		return l
	}

	fields := make(Fields)
	for k, v := range p.config.AdditionalFields {
		fields[k] = v
	}
	fields["component"] = component

	serviceName := fmt.Sprintf("%s.%s", p.config.ServiceName, component)

	l := logger.New(
		serviceName,
		p.config.Environment,
		p.config.LogLevel,
		p.config.LogOutput,
		fields,
	)

	p.loggers[component] = l
	return l
}

// Metrics returns the Metrics collector for the named component, creating it
// on first access. Memoization matters here: the Prometheus adapter panics on
// duplicate registration.
func (p *DefaultProvider) Metrics(component string) Metrics {
	p.mu.RLock()
	if m, exists := p.metrics[component]; exists {
		p.mu.RUnlock()
		return m
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if m, exists := p.metrics[component]; exists {
		return m
	}

	m := metrics.New(component)
	p.metrics[component] = m
	return m
}

// Close shuts down the provider. It closes the LogOutput if it implements
// io.Closer, except for os.Stdout and os.Stderr.
func (p *DefaultProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if closer, ok := p.config.LogOutput.(io.Closer); ok {
		if closer != os.Stdout && closer != os.Stderr {
			return closer.Close()
		}
	}

	return nil
}
