// Package di provides dependency injection container
package di

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ssargent/fwledger/pkg/api"     //nolint:depguard
	"github.com/ssargent/fwledger/pkg/config"  //nolint:depguard
	"github.com/ssargent/fwledger/pkg/journal" //nolint:depguard
	"github.com/ssargent/fwledger/pkg/ledger"  //nolint:depguard
	"github.com/ssargent/fwledger/pkg/logging" //nolint:depguard
	"github.com/ssargent/fwledger/pkg/metrics" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	config        *config.Config
	logger        *slog.Logger
	registry      *prometheus.Registry
	metrics       *metrics.Metrics
	journal       *journal.PebbleJournal
	reporter      journal.Reporter
	serverFactory api.ServerFactory
	closers       []io.Closer
}

// NewContainer creates a new dependency injection container from cfg. The
// logger and, when enabled, the journal are opened here and released by Close.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	logger, logCloser, err := logging.New(logging.Options{Level: cfg.Logging.Level, File: cfg.Logging.File})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{
		config:        cfg,
		logger:        logger,
		registry:      prometheus.NewRegistry(),
		serverFactory: api.NewServerFactory(),
		closers:       []io.Closer{logCloser},
	}
	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.metrics = metrics.NewMetrics(c.registry)

	reporters := []journal.Reporter{journal.NewLogReporter(logger)}
	if cfg.Journal.Enabled {
		j, err := journal.OpenPebbleJournal(cfg.Journal.Dir, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.journal = j
		c.closers = append(c.closers, j)
		reporters = append(reporters, j)
	}
	c.reporter = journal.Multi(reporters...)

	return c, nil
}

// GetConfig returns the configuration the container was built from
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the application logger
func (c *Container) GetLogger() *slog.Logger {
	return c.logger
}

// GetRegistry returns the Prometheus registry metrics are registered on
func (c *Container) GetRegistry() *prometheus.Registry {
	return c.registry
}

// GetMetrics returns the ledger metrics
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetReporter returns the reporter every operation outcome goes to
func (c *Container) GetReporter() journal.Reporter {
	return c.reporter
}

// GetJournal returns the persistent journal, nil when disabled
func (c *Container) GetJournal() *journal.PebbleJournal {
	return c.journal
}

// GetLedgerService returns a ledger service over the file at path, wired to
// the container's reporter and metrics
func (c *Container) GetLedgerService(path string) *ledger.Service {
	return ledger.Open(path, ledger.WithReporter(c.reporter), ledger.WithMetrics(c.metrics))
}

// GetServer returns an API server over the ledger at path
func (c *Container) GetServer(path string) *api.Server {
	cfg := api.ServerConfig{
		Bind:   c.config.Server.Bind,
		Port:   c.config.Server.Port,
		APIKey: c.config.Server.APIKey,
	}
	return api.NewServer(c.GetLedgerService(path), cfg, c.metrics, c.registry, c.logger)
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// Close releases the journal and the log file
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
