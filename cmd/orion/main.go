package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orion-edge/orion-cli/cmd/orion/common"
	"github.com/orion-edge/orion-cli/cmd/orion/doctor"
	"github.com/orion-edge/orion-cli/cmd/orion/validate"
	"github.com/orion-edge/orion-cli/cmd/orion/version"
	"github.com/orion-edge/orion-cli/pkg/errors"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

func main() {
	flags := &common.Flags{}
	rootCmd := newRootCommand(flags)

	if err := rootCmd.Execute(); err != nil {
		code := errors.GetExitCode(err)
		if code == 0 {
			return
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(code)
	}
}

func newRootCommand(flags *common.Flags) *cobra.Command {
	common.InitViper()

	rootCmd := &cobra.Command{
		Use:   "orion",
		Short: "Deploy a GraphQL edge cache",
		Long: `Orion deploys and manages an edge cache in front of a GraphQL API.

Running orion without a subcommand starts the interactive setup: it finds
AWS and Fastly credentials (saved file, environment or manual entry),
validates them and drives terraform to deploy or destroy the cache.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, flags)
		},
	}

	common.AddPersistentFlags(rootCmd, flags)
	common.BindPersistentFlags(rootCmd)

	rootCmd.AddCommand(version.NewCommand())
	rootCmd.AddCommand(validate.NewCommand(flags))
	rootCmd.AddCommand(doctor.NewCommand(flags))

	return rootCmd
}

func runInteractive(cmd *cobra.Command, flags *common.Flags) error {
	ctx, cancel := common.SetupSignalHandler()
	defer cancel()

	app, err := common.BuildApp(ctx, flags, common.Streams{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer app.Close()

	app.Logger.Info("Starting interactive session",
		logger.String("version", version.Version),
		logger.String("state_dir", app.Config.Paths.StateDir),
	)

	if err := app.Workflow.Run(ctx); err != nil {
		if ctx.Err() != nil {
			app.Console.Cancelled()
			return nil
		}
		app.Logger.Error("Interactive session failed", logger.Error(err))
		return err
	}
	return nil
}
