package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orion-edge/orion-cli/internal/testutil"
	"github.com/orion-edge/orion-cli/pkg/metrics"
)

func completeSet(source Source) CredentialSet {
	return CredentialSet{
		CloudCompute: &CloudComputeCredentials{AccessKeyID: "AKIA", SecretAccessKey: "secret", Region: "us-east-1"},
		CDN:          &CDNCredentials{APIToken: "token"},
		Source:       source,
	}
}

func TestValidateAll(t *testing.T) {
	tests := []struct {
		name       string
		awsErr     error
		fastlyErr  error
		wantCloud  bool
		wantCDN    bool
		wantErrors []string
	}{
		{
			name:      "both valid",
			wantCloud: true,
			wantCDN:   true,
		},
		{
			name:       "aws invalid still checks fastly",
			awsErr:     errors.New("InvalidClientTokenId"),
			wantCDN:    true,
			wantErrors: []string{"AWS: InvalidClientTokenId"},
		},
		{
			name:       "fastly invalid",
			fastlyErr:  errors.New("API returned 401"),
			wantCloud:  true,
			wantErrors: []string{"Fastly: API returned 401"},
		},
		{
			name:       "both invalid keep aws first",
			awsErr:     errors.New("expired"),
			fastlyErr:  errors.New("timeout"),
			wantErrors: []string{"AWS: expired", "Fastly: timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkers := testutil.NewMockCheckers().
				WithAWSErrors(tt.awsErr).
				WithFastlyErrors(tt.fastlyErr)
			progress := testutil.NewRecordingProgress()

			v := NewValidator(ValidatorConfig{
				Identity:    checkers.Identity,
				CurrentUser: checkers.CurrentUser,
				Progress:    progress,
			})

			result := v.ValidateAll(context.Background(), completeSet(SourceSaved))

			assert.Equal(t, tt.wantCloud, result.CloudCompute)
			assert.Equal(t, tt.wantCDN, result.CDN)
			assert.Equal(t, tt.wantCloud && tt.wantCDN, result.Valid())
			assert.Equal(t, tt.wantErrors, result.Errors)

			assert.Len(t, checkers.Identity.Calls(), 1)
			assert.Len(t, checkers.CurrentUser.Calls(), 1)
			assert.Equal(t, []string{
				"Validating AWS credentials...",
				"Validating Fastly credentials...",
			}, progress.Messages("start"))
		})
	}
}

func TestValidateAllProgressMessages(t *testing.T) {
	checkers := testutil.NewMockCheckers().WithAWSErrors(errors.New("denied"))
	progress := testutil.NewRecordingProgress()

	v := NewValidator(ValidatorConfig{
		Identity:    checkers.Identity,
		CurrentUser: checkers.CurrentUser,
		Progress:    progress,
	})
	v.ValidateAll(context.Background(), completeSet(SourceEnv))

	assert.Equal(t, []testutil.ProgressEvent{
		{Kind: "start", Message: "Validating AWS credentials..."},
		{Kind: "fail", Message: "AWS credentials invalid"},
		{Kind: "start", Message: "Validating Fastly credentials..."},
		{Kind: "success", Message: "Fastly credentials valid"},
	}, progress.Events())
}

func TestValidateAllPassesCredentials(t *testing.T) {
	checkers := testutil.NewMockCheckers()
	v := NewValidator(ValidatorConfig{Identity: checkers.Identity, CurrentUser: checkers.CurrentUser})

	v.ValidateAll(context.Background(), completeSet(SourceManual))

	calls := checkers.Identity.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "AKIA", calls[0].AccessKeyID)
	assert.Equal(t, "secret", calls[0].SecretAccessKey)
	assert.Equal(t, "us-east-1", calls[0].Region)
	assert.Equal(t, []string{"token"}, checkers.CurrentUser.Calls())
}

func TestValidateAllIncompleteSet(t *testing.T) {
	checkers := testutil.NewMockCheckers()
	v := NewValidator(ValidatorConfig{Identity: checkers.Identity, CurrentUser: checkers.CurrentUser})

	result := v.ValidateAll(context.Background(), CredentialSet{
		CDN:    &CDNCredentials{APIToken: "token"},
		Source: SourceEnv,
	})

	assert.False(t, result.CloudCompute)
	assert.True(t, result.CDN)
	assert.Equal(t, []string{"AWS: credentials not provided"}, result.Errors)
	assert.Empty(t, checkers.Identity.Calls(), "no network call without keys")
}

func TestValidateAllRecordsMetrics(t *testing.T) {
	m := metrics.NewMetrics(metrics.Config{
		Namespace: "test",
		Registry:  prometheus.NewRegistry(),
	})
	checkers := testutil.NewMockCheckers().WithFastlyErrors(errors.New("bad token"))
	v := NewValidator(ValidatorConfig{
		Identity:    checkers.Identity,
		CurrentUser: checkers.CurrentUser,
		Metrics:     m,
	})

	v.ValidateAll(context.Background(), completeSet(SourceSaved))

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.CredentialValidationsTotal.WithLabelValues("aws", "valid")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.CredentialValidationsTotal.WithLabelValues("fastly", "invalid")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.CredentialValidationErrors.WithLabelValues("fastly")))
}
