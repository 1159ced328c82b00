package health

import (
	"context"
	"sync"
	"time"

	"github.com/orion-edge/orion-cli/pkg/logger"
	"github.com/orion-edge/orion-cli/pkg/metrics"
)

// Result is the outcome of one named check
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// OK reports whether the check passed
func (r Result) OK() bool {
	return r.Err == nil
}

// Report collects the results of a Run in registration order
type Report struct {
	Results []Result
}

// Healthy reports whether every check passed
func (r Report) Healthy() bool {
	for _, res := range r.Results {
		if !res.OK() {
			return false
		}
	}
	return true
}

// Failed returns only the failing results
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Config holds runner configuration
type Config struct {
	// Timeout bounds each individual check
	Timeout time.Duration

	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// DefaultConfig returns default runner configuration
func DefaultConfig() Config {
	return Config{
		Timeout: 10 * time.Second,
	}
}

type namedCheck struct {
	name  string
	check Check
}

// Runner executes registered preflight checks
type Runner struct {
	timeout time.Duration
	logger  logger.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	checks []namedCheck
}

// NewRunner creates a new check runner
func NewRunner(config Config) *Runner {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Runner{
		timeout: config.Timeout,
		logger:  config.Logger,
		metrics: config.Metrics,
	}
}

// RegisterCheck adds a named check. Registering an existing name replaces it in place.
func (r *Runner) RegisterCheck(name string, check Check) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.checks {
		if r.checks[i].name == name {
			r.checks[i].check = check
			return
		}
	}
	r.checks = append(r.checks, namedCheck{name: name, check: check})
	r.logger.Debug("Registered preflight check", logger.String("check", name))
}

// Run executes every check sequentially and returns the report
func (r *Runner) Run(ctx context.Context) Report {
	r.mu.RLock()
	checks := make([]namedCheck, len(r.checks))
	copy(checks, r.checks)
	r.mu.RUnlock()

	report := Report{Results: make([]Result, 0, len(checks))}
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
		timer := metrics.NewTimer()
		err := c.check(checkCtx)
		cancel()
		elapsed := timer.ObserveDuration()

		r.metrics.RecordPreflightCheck(c.name, elapsed, err)
		if err != nil {
			r.logger.Warn("Preflight check failed",
				logger.String("check", c.name),
				logger.Error(err),
			)
		} else {
			r.logger.Debug("Preflight check passed",
				logger.String("check", c.name),
				logger.Duration("duration_ms", elapsed),
			)
		}

		report.Results = append(report.Results, Result{Name: c.name, Err: err, Duration: elapsed})
	}
	return report
}
