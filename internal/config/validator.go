package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/orion-edge/orion-cli/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config == nil {
		return errors.New(errors.ErrConfigInvalid, "configuration is nil")
	}

	if err := validate.Struct(config); err != nil {
		return formatValidationError(err)
	}

	if config.Paths.ConfigDir == "" {
		return errors.New(
			errors.ErrConfigMissingField,
			"paths.config_dir is required",
		)
	}

	if config.Tracing.Enabled && config.Tracing.Endpoint == "" {
		return errors.New(
			errors.ErrConfigMissingField,
			"tracing.endpoint is required when tracing is enabled",
		)
	}

	if strings.TrimSpace(config.Terraform.Binary) != config.Terraform.Binary {
		return errors.New(
			errors.ErrConfigInvalid,
			"terraform.binary must not contain surrounding whitespace",
		).WithField("binary", config.Terraform.Binary)
	}

	return nil
}

// formatValidationError formats validator errors into application errors
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(
			errors.ErrValidationFailed,
			err,
			"validation failed",
		)
	}

	if len(validationErrs) > 0 {
		fieldErr := validationErrs[0]
		return errors.New(
			errors.ErrValidationFailed,
			fmt.Sprintf("validation failed for field '%s'", fieldErr.Namespace()),
		).WithFields(map[string]interface{}{
			"field": fieldErr.Field(),
			"tag":   fieldErr.Tag(),
			"value": fieldErr.Value(),
		})
	}

	return errors.New(errors.ErrValidationFailed, "validation failed")
}
