package doctor

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/orion-edge/orion-cli/cmd/orion/common"
	"github.com/orion-edge/orion-cli/internal/config"
	"github.com/orion-edge/orion-cli/pkg/errors"
	"github.com/orion-edge/orion-cli/pkg/health"
	"github.com/orion-edge/orion-cli/pkg/logger"
	"github.com/orion-edge/orion-cli/pkg/metrics"
)

const (
	CheckTerraformBinary = "terraform-binary"
	CheckTerraformDir    = "terraform-dir"
	CheckStateDir        = "state-dir"
	CheckFastlyAPI       = "fastly-api"
)

func NewCommand(flags *common.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run preflight checks",
		Long: `Check that everything a deploy needs is in place: the terraform binary,
the infrastructure sources, a writable state directory and a reachable Fastly API.`,
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

	report := NewRunner(app.Config, app.Logger, app.Metrics).Run(ctx)
	Print(cmd.OutOrStdout(), report)

	if !report.Healthy() {
		return errors.New(errors.ErrValidationFailed, "preflight checks failed").
			WithField("failed", len(report.Failed()))
	}
	return nil
}

// NewRunner registers the preflight checks for cfg
func NewRunner(cfg *config.Config, log logger.Logger, m *metrics.Metrics) *health.Runner {
	runner := health.NewRunner(health.Config{Logger: log, Metrics: m})
	runner.RegisterCheck(CheckTerraformBinary, health.BinaryCheck(cfg.Terraform.Binary))
	runner.RegisterCheck(CheckTerraformDir, health.DirCheck(cfg.Terraform.Dir))
	runner.RegisterCheck(CheckStateDir, health.WritableDirCheck(cfg.Paths.StateDir))
	runner.RegisterCheck(CheckFastlyAPI, health.HTTPCheck(cfg.Fastly.APIURL, cfg.Fastly.Timeout))
	return runner
}

// Print writes one line per check
func Print(out io.Writer, report health.Report) {
	for _, r := range report.Results {
		if r.OK() {
			fmt.Fprintf(out, "ok    %-18s %s\n", r.Name, r.Duration.Round(time.Millisecond))
			continue
		}
		fmt.Fprintf(out, "FAIL  %-18s %v\n", r.Name, r.Err)
	}
}
