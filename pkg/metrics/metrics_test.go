package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	return NewMetrics(Config{Namespace: "test", Registry: registry}), registry
}

func TestNewMetrics(t *testing.T) {
	m, _ := newTestMetrics(t)
	require.NotNil(t, m)
	assert.NotNil(t, m.CredentialValidationsTotal)
	assert.NotNil(t, m.CredentialValidationDuration)
	assert.NotNil(t, m.CredentialValidationErrors)
	assert.NotNil(t, m.ResolutionAttemptsTotal)
	assert.NotNil(t, m.ResolutionsTotal)
	assert.NotNil(t, m.OperationRunsTotal)
	assert.NotNil(t, m.OperationDuration)
	assert.NotNil(t, m.OperationRetries)
	assert.NotNil(t, m.PreflightCheckDuration)
	assert.NotNil(t, m.PreflightCheckErrors)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "orion", config.Namespace)
	assert.Equal(t, "", config.Subsystem)
	assert.NotNil(t, config.Registry)
}

func TestRecordCredentialValidation(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordCredentialValidation("aws", true, 100*time.Millisecond)
	m.RecordCredentialValidation("fastly", false, 200*time.Millisecond)
	m.RecordCredentialValidation("fastly", false, 200*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CredentialValidationsTotal.WithLabelValues("aws", "valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CredentialValidationsTotal.WithLabelValues("fastly", "invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CredentialValidationErrors.WithLabelValues("fastly")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CredentialValidationErrors.WithLabelValues("aws")))
}

func TestRecordResolution(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordResolutionAttempt("deploy", "saved")
	m.RecordResolutionAttempt("deploy", "manual")
	m.RecordResolution("deploy", "succeeded")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolutionAttemptsTotal.WithLabelValues("deploy", "saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolutionAttemptsTotal.WithLabelValues("deploy", "manual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolutionsTotal.WithLabelValues("deploy", "succeeded")))
}

func TestRecordOperation(t *testing.T) {
	m, registry := newTestMetrics(t)

	m.RecordOperationRun("deploy", false, 2*time.Second)
	m.RecordOperationRetry("deploy")
	m.RecordOperationRun("deploy", true, 3*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationRunsTotal.WithLabelValues("deploy", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationRunsTotal.WithLabelValues("deploy", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationRetries.WithLabelValues("deploy")))

	count, err := testutil.GatherAndCount(registry, "test_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordPreflightCheck(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordPreflightCheck("terraform_binary", 10*time.Millisecond, nil)
	m.RecordPreflightCheck("config_dir", 5*time.Millisecond, errors.New("not writable"))

	assert.Equal(t, 0.0, testutil.ToFloat64(m.PreflightCheckErrors.WithLabelValues("terraform_binary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PreflightCheckErrors.WithLabelValues("config_dir")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordCredentialValidation("aws", true, time.Second)
		m.RecordResolutionAttempt("deploy", "env")
		m.RecordResolution("deploy", "cancelled")
		m.RecordOperationRun("destroy", true, time.Second)
		m.RecordOperationRetry("destroy")
		m.RecordPreflightCheck("x", time.Second, nil)
	})
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "metrics.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m, _ := newTestMetrics(t)
	m.RecordOperationRun("destroy", true, time.Second)

	path := filepath.Join(t.TempDir(), "textfile", "orion.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `test_operation_runs_total{operation="destroy",result="success"} 1`))
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(10 * time.Millisecond)
	assert.GreaterOrEqual(t, timer.ObserveDuration(), 10*time.Millisecond)
}
