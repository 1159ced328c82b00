package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCredentialNotFound, "credential file not found")

	assert.NotNil(t, err)
	assert.Equal(t, ErrCredentialNotFound, err.Code)
	assert.Equal(t, "credential file not found", err.Title)
	assert.Equal(t, "credentials", err.Category)
	assert.Equal(t, 1, err.ExitCode)
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCredentialSaveFailed, cause, "failed to write credentials file")

	assert.Equal(t, ErrCredentialSaveFailed, err.Code)
	assert.Equal(t, "failed to write credentials file", err.Title)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, cause.Error(), err.Detail)
}

func TestErrorWithDetail(t *testing.T) {
	err := New(ErrInvalidArgument, "invalid backend URL").
		WithDetail("host must not be empty")

	assert.Equal(t, "host must not be empty", err.Detail)
	assert.Contains(t, err.Error(), "invalid backend URL")
	assert.Contains(t, err.Error(), "host must not be empty")
}

func TestErrorWithFields(t *testing.T) {
	err := New(ErrStateWriteFailed, "failed to write backend URL").
		WithField("path", "/tmp/state/backend-url.txt").
		WithFields(map[string]interface{}{"operation": "deploy"})

	assert.Equal(t, "/tmp/state/backend-url.txt", err.Fields["path"])
	assert.Equal(t, "deploy", err.Fields["operation"])
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(ErrInternal, "internal error").WithCause(cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrCredentialInvalid, "invalid credential"))

	assert.True(t, Is(err, ErrCredentialInvalid))
	assert.False(t, Is(err, ErrOperationFailed))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{
			name:     "application error",
			err:      New(ErrOperationAborted, "aborted"),
			wantCode: ErrOperationAborted,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			wantCode: ErrUnknown,
		},
		{
			name:     "wrapped application error",
			err:      fmt.Errorf("context: %w", Wrap(ErrStateReadFailed, errors.New("cause"), "read failed")),
			wantCode: ErrStateReadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, GetCode(tt.err))
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "config error", err: New(ErrConfigInvalid, "bad config"), want: 2},
		{name: "operation error", err: New(ErrOperationFailed, "apply failed"), want: 1},
		{name: "plain error", err: errors.New("boom"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestRedact(t *testing.T) {
	err := New(ErrCredentialInvalid, "invalid credential").
		WithField("region", "us-east-1").
		WithField("secret_access_key", "wJalrXUtnFEMI").
		WithField("api_token", "abc123")

	redacted := err.Redact()

	assert.Equal(t, "us-east-1", redacted.Fields["region"])
	assert.NotContains(t, redacted.Fields, "secret_access_key")
	assert.NotContains(t, redacted.Fields, "api_token")
	assert.Equal(t, err.Code, redacted.Code)
	assert.Equal(t, err.Title, redacted.Title)
}

func TestFormatPlusV(t *testing.T) {
	cause := errors.New("terraform exited with status 1")
	err := Wrap(ErrOperationFailed, cause, "deploy failed")

	assert.Equal(t, "deploy failed: terraform exited with status 1", fmt.Sprintf("%v", err))
	assert.Contains(t, fmt.Sprintf("%+v", err), "caused by: terraform exited with status 1")
}

func TestGetErrorInfo(t *testing.T) {
	info := GetErrorInfo(ErrorCode("NOPE"))
	assert.Equal(t, "Unknown Error", info.Title)

	info = GetErrorInfo(ErrCancelled)
	assert.Equal(t, 0, info.ExitCode)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrNetworkTimeout))
	assert.True(t, IsTransient(ErrNetworkUnreachable))
	assert.False(t, IsTransient(ErrCredentialInvalid))
	assert.False(t, IsTransient(ErrOperationFailed))
}

func TestErrorMarshalJSON(t *testing.T) {
	err := New(ErrOperationFailed, "destroy failed").
		WithCause(errors.New("state locked")).
		WithField("operation", "destroy")

	data, jsonErr := err.MarshalJSON()
	require.NoError(t, jsonErr)

	jsonStr := string(data)
	assert.Contains(t, jsonStr, "ERR_OPERATION_FAILED")
	assert.Contains(t, jsonStr, "destroy failed")
	assert.Contains(t, jsonStr, "state locked")
	assert.Contains(t, jsonStr, "destroy")
}
