package errors

// ErrorCode identifies a class of failure inside the CLI
type ErrorCode string

const (
	// Generic errors
	ErrUnknown         ErrorCode = "ERR_UNKNOWN"
	ErrInternal        ErrorCode = "ERR_INTERNAL"
	ErrInvalidArgument ErrorCode = "ERR_INVALID_ARGUMENT"
	ErrCancelled       ErrorCode = "ERR_CANCELLED"

	// Credential errors
	ErrCredentialNotFound         ErrorCode = "ERR_CREDENTIAL_NOT_FOUND"
	ErrCredentialInvalid          ErrorCode = "ERR_CREDENTIAL_INVALID"
	ErrCredentialMalformed        ErrorCode = "ERR_CREDENTIAL_MALFORMED"
	ErrCredentialLoadFailed       ErrorCode = "ERR_CREDENTIAL_LOAD_FAILED"
	ErrCredentialSaveFailed       ErrorCode = "ERR_CREDENTIAL_SAVE_FAILED"
	ErrCredentialValidationFailed ErrorCode = "ERR_CREDENTIAL_VALIDATION_FAILED"

	// Infrastructure operation errors
	ErrOperationFailed  ErrorCode = "ERR_OPERATION_FAILED"
	ErrOperationAborted ErrorCode = "ERR_OPERATION_ABORTED"
	ErrProvisionerSetup ErrorCode = "ERR_PROVISIONER_SETUP"

	// Local working-state errors
	ErrStateReadFailed  ErrorCode = "ERR_STATE_READ_FAILED"
	ErrStateWriteFailed ErrorCode = "ERR_STATE_WRITE_FAILED"

	// Configuration errors
	ErrConfigInvalid      ErrorCode = "ERR_CONFIG_INVALID"
	ErrConfigLoadFailed   ErrorCode = "ERR_CONFIG_LOAD_FAILED"
	ErrConfigMissingField ErrorCode = "ERR_CONFIG_MISSING_FIELD"

	// Network errors
	ErrNetworkTimeout     ErrorCode = "ERR_NETWORK_TIMEOUT"
	ErrNetworkUnreachable ErrorCode = "ERR_NETWORK_UNREACHABLE"

	// Validation errors
	ErrValidationFailed ErrorCode = "ERR_VALIDATION_FAILED"
	ErrMissingRequired  ErrorCode = "ERR_MISSING_REQUIRED"
)

// ErrorInfo contains metadata about an error code
type ErrorInfo struct {
	Code     ErrorCode
	Category string
	ExitCode int
	Title    string
}

// errorInfoMap maps error codes to their metadata
var errorInfoMap = map[ErrorCode]ErrorInfo{
	ErrUnknown: {
		Code:     ErrUnknown,
		Category: "internal",
		ExitCode: 1,
		Title:    "Unknown Error",
	},
	ErrInternal: {
		Code:     ErrInternal,
		Category: "internal",
		ExitCode: 1,
		Title:    "Internal Error",
	},
	ErrInvalidArgument: {
		Code:     ErrInvalidArgument,
		Category: "usage",
		ExitCode: 2,
		Title:    "Invalid Argument",
	},
	ErrCancelled: {
		Code:     ErrCancelled,
		Category: "operator",
		ExitCode: 0,
		Title:    "Cancelled",
	},

	ErrCredentialNotFound: {
		Code:     ErrCredentialNotFound,
		Category: "credentials",
		ExitCode: 1,
		Title:    "Credential Not Found",
	},
	ErrCredentialInvalid: {
		Code:     ErrCredentialInvalid,
		Category: "credentials",
		ExitCode: 1,
		Title:    "Invalid Credential",
	},
	ErrCredentialMalformed: {
		Code:     ErrCredentialMalformed,
		Category: "credentials",
		ExitCode: 1,
		Title:    "Malformed Credential",
	},
	ErrCredentialLoadFailed: {
		Code:     ErrCredentialLoadFailed,
		Category: "credentials",
		ExitCode: 1,
		Title:    "Credential Load Failed",
	},
	ErrCredentialSaveFailed: {
		Code:     ErrCredentialSaveFailed,
		Category: "credentials",
		ExitCode: 1,
		Title:    "Credential Save Failed",
	},
	ErrCredentialValidationFailed: {
		Code:     ErrCredentialValidationFailed,
		Category: "credentials",
		ExitCode: 1,
		Title:    "Credential Validation Failed",
	},

	ErrOperationFailed: {
		Code:     ErrOperationFailed,
		Category: "operation",
		ExitCode: 1,
		Title:    "Operation Failed",
	},
	ErrOperationAborted: {
		Code:     ErrOperationAborted,
		Category: "operation",
		ExitCode: 1,
		Title:    "Operation Aborted",
	},
	ErrProvisionerSetup: {
		Code:     ErrProvisionerSetup,
		Category: "operation",
		ExitCode: 1,
		Title:    "Provisioner Setup Failed",
	},

	ErrStateReadFailed: {
		Code:     ErrStateReadFailed,
		Category: "state",
		ExitCode: 1,
		Title:    "State Read Failed",
	},
	ErrStateWriteFailed: {
		Code:     ErrStateWriteFailed,
		Category: "state",
		ExitCode: 1,
		Title:    "State Write Failed",
	},

	ErrConfigInvalid: {
		Code:     ErrConfigInvalid,
		Category: "config",
		ExitCode: 2,
		Title:    "Invalid Configuration",
	},
	ErrConfigLoadFailed: {
		Code:     ErrConfigLoadFailed,
		Category: "config",
		ExitCode: 2,
		Title:    "Configuration Load Failed",
	},
	ErrConfigMissingField: {
		Code:     ErrConfigMissingField,
		Category: "config",
		ExitCode: 2,
		Title:    "Missing Configuration Field",
	},

	ErrNetworkTimeout: {
		Code:     ErrNetworkTimeout,
		Category: "network",
		ExitCode: 1,
		Title:    "Network Timeout",
	},
	ErrNetworkUnreachable: {
		Code:     ErrNetworkUnreachable,
		Category: "network",
		ExitCode: 1,
		Title:    "Network Unreachable",
	},

	ErrValidationFailed: {
		Code:     ErrValidationFailed,
		Category: "usage",
		ExitCode: 2,
		Title:    "Validation Failed",
	},
	ErrMissingRequired: {
		Code:     ErrMissingRequired,
		Category: "usage",
		ExitCode: 2,
		Title:    "Missing Required Field",
	},
}

// GetErrorInfo returns metadata for an error code
func GetErrorInfo(code ErrorCode) ErrorInfo {
	if info, ok := errorInfoMap[code]; ok {
		return info
	}
	return errorInfoMap[ErrUnknown]
}

// IsTransient reports whether a failure with this code is likely to clear up on its own.
// It is informational only: retry decisions belong to the operator.
func IsTransient(code ErrorCode) bool {
	switch code {
	case ErrNetworkTimeout, ErrNetworkUnreachable:
		return true
	default:
		return false
	}
}
