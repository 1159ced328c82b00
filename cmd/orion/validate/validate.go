package validate

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/orion-edge/orion-cli/cmd/orion/common"
	"github.com/orion-edge/orion-cli/internal/credentials"
	"github.com/orion-edge/orion-cli/pkg/errors"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

// SourceDetector reports the saved and env credential sources
type SourceDetector interface {
	DetectAvailableSources(ctx context.Context) credentials.Sources
}

// CredentialValidator checks a credential set against both providers
type CredentialValidator interface {
	ValidateAll(ctx context.Context, set credentials.CredentialSet) credentials.FullValidationResult
}

// SourceReport is the validation outcome of one credential source
type SourceReport struct {
	Source credentials.Source
	Status credentials.SourceStatus

	// Checked is false when the source was incomplete and no call was made
	Checked bool
	Result  credentials.FullValidationResult
}

// Valid reports whether the source passed both provider checks
func (r SourceReport) Valid() bool {
	return r.Checked && r.Result.Valid()
}

func NewCommand(flags *common.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-credentials",
		Short: "Validate the saved and environment credentials",
		Long: `Detect the saved and environment credential sources and validate every
complete one against AWS and Fastly. No prompts are shown.

Exits non-zero when no source holds valid credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}
}

func run(cmd *cobra.Command, flags *common.Flags) error {
	ctx, cancel := common.SetupSignalHandler()
	defer cancel()

	app, err := common.BuildApp(ctx, flags, common.Streams{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer app.Close()

	sources := app.Detector.DetectAvailableSources(ctx)
	reports := Check(ctx, sources, app.Validator)
	Print(cmd.OutOrStdout(), sources.SavedPath, reports)

	valid := 0
	for _, r := range reports {
		if r.Valid() {
			valid++
		}
	}
	app.Logger.Info("Credential validation finished", logger.Int("valid_sources", valid))
	if valid == 0 {
		return errors.New(errors.ErrCredentialInvalid, "no valid credentials found")
	}
	return nil
}

// Check validates every complete source, saved first
func Check(ctx context.Context, sources credentials.Sources, validator CredentialValidator) []SourceReport {
	candidates := []struct {
		source credentials.Source
		status credentials.SourceStatus
		set    credentials.CredentialSet
	}{
		{credentials.SourceSaved, sources.Saved, sources.SavedSet()},
		{credentials.SourceEnv, sources.Env, sources.EnvSet()},
	}

	reports := make([]SourceReport, 0, len(candidates))
	for _, c := range candidates {
		report := SourceReport{Source: c.source, Status: c.status}
		if c.status.Complete {
			report.Checked = true
			report.Result = validator.ValidateAll(ctx, c.set)
		}
		reports = append(reports, report)
	}
	return reports
}

// Print writes one block per source
func Print(out io.Writer, savedPath string, reports []SourceReport) {
	for _, r := range reports {
		label := "Environment variables"
		if r.Source == credentials.SourceSaved {
			label = fmt.Sprintf("Saved credentials (%s)", savedPath)
		}

		switch {
		case !r.Status.Available:
			fmt.Fprintf(out, "%s: not found\n", label)
		case !r.Status.Complete:
			fmt.Fprintf(out, "%s: incomplete (%s)\n", label, missing(r.Status))
		case r.Result.Valid():
			fmt.Fprintf(out, "%s: valid\n", label)
		default:
			fmt.Fprintf(out, "%s: invalid\n", label)
			for _, e := range r.Result.Errors {
				fmt.Fprintf(out, "  %s\n", e)
			}
		}
	}
}

func missing(status credentials.SourceStatus) string {
	if !status.HasCloudCompute {
		return "missing AWS keys"
	}
	return "missing Fastly API key"
}
