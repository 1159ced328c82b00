package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a CLI run.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Credential validation metrics
	CredentialValidationsTotal   *prometheus.CounterVec
	CredentialValidationDuration *prometheus.HistogramVec
	CredentialValidationErrors   *prometheus.CounterVec

	// Credential resolution metrics
	ResolutionAttemptsTotal *prometheus.CounterVec
	ResolutionsTotal        *prometheus.CounterVec

	// Deploy/destroy metrics
	OperationRunsTotal *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	OperationRetries   *prometheus.CounterVec

	// Preflight check metrics
	PreflightCheckDuration *prometheus.HistogramVec
	PreflightCheckErrors   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// Config holds configuration for metrics
type Config struct {
	// Namespace for metrics (default: "orion")
	Namespace string

	// Subsystem for metrics (default: "")
	Subsystem string

	// Registry to use (default: a fresh registry per run)
	Registry *prometheus.Registry
}

// DefaultConfig returns default metrics configuration
func DefaultConfig() Config {
	return Config{
		Namespace: "orion",
		Subsystem: "",
		Registry:  prometheus.NewRegistry(),
	}
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(config Config) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "orion"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		CredentialValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "credential_validations_total",
				Help:      "Total number of credential validation checks",
			},
			[]string{"provider", "result"},
		),

		CredentialValidationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "credential_validation_duration_seconds",
				Help:      "Credential validation duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		),

		CredentialValidationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "credential_validation_errors_total",
				Help:      "Total number of credential validation errors",
			},
			[]string{"provider"},
		),

		ResolutionAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "credential_resolution_attempts_total",
				Help:      "Total number of credential source selections",
			},
			[]string{"purpose", "source"},
		),

		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "credential_resolutions_total",
				Help:      "Total number of finished credential resolutions",
			},
			[]string{"purpose", "outcome"},
		),

		OperationRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "operation_runs_total",
				Help:      "Total number of provisioner invocations",
			},
			[]string{"operation", "result"},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "operation_duration_seconds",
				Help:      "Provisioner invocation duration in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800},
			},
			[]string{"operation"},
		),

		OperationRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "operation_retries_total",
				Help:      "Total number of operator-requested retries",
			},
			[]string{"operation"},
		),

		PreflightCheckDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "preflight_check_duration_seconds",
				Help:      "Preflight check duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
			},
			[]string{"check_name"},
		),

		PreflightCheckErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "preflight_check_errors_total",
				Help:      "Total number of failed preflight checks",
			},
			[]string{"check_name"},
		),

		gatherer: config.Registry,
	}
}

// RecordCredentialValidation records the result and duration of one provider check
func (m *Metrics) RecordCredentialValidation(provider string, valid bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "invalid"
		m.CredentialValidationErrors.WithLabelValues(provider).Inc()
	}
	m.CredentialValidationsTotal.WithLabelValues(provider, result).Inc()
	m.CredentialValidationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordResolutionAttempt records the source picked in one resolution iteration
func (m *Metrics) RecordResolutionAttempt(purpose, source string) {
	if m == nil {
		return
	}
	m.ResolutionAttemptsTotal.WithLabelValues(purpose, source).Inc()
}

// RecordResolution records how a resolution ended (succeeded or cancelled)
func (m *Metrics) RecordResolution(purpose, outcome string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(purpose, outcome).Inc()
}

// RecordOperationRun records one provisioner invocation
func (m *Metrics) RecordOperationRun(operation string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.OperationRunsTotal.WithLabelValues(operation, result).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordOperationRetry records an operator-requested retry
func (m *Metrics) RecordOperationRetry(operation string) {
	if m == nil {
		return
	}
	m.OperationRetries.WithLabelValues(operation).Inc()
}

// RecordPreflightCheck records the duration and outcome of a preflight check
func (m *Metrics) RecordPreflightCheck(checkName string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.PreflightCheckDuration.WithLabelValues(checkName).Observe(duration.Seconds())
	if err != nil {
		m.PreflightCheckErrors.WithLabelValues(checkName).Inc()
	}
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, m.gatherer)
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration returns the duration since the timer was created
func (t *Timer) ObserveDuration() time.Duration {
	return time.Since(t.start)
}
