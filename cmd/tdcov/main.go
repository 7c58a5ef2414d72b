package main

import (
	"fmt"
	"io"
	"os"

	"tdcov/internal"
	"tdcov/internal/config"
	"tdcov/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cli carries what every subcommand needs once the root has run
type cli struct {
	configPath string
	cfg        *config.Config
	logger     *internal.Logger
}

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "tdcov",
		Short: "Time-delay covariance estimation from mock light curves",
		Long: `tdcov estimates the covariance of pairwise time-delay errors from the
mock light curve runs of the spline fitting stage, and relabels stored delay
and covariance tables when image names change.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// arguments are valid by now, later failures are not usage errors
			cmd.SilenceUsage = true
			return c.init(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a YAML configuration file")

	rootCmd.AddCommand(
		newCovarianceCmd(c),
		newRemapCmd(c),
	)
	return rootCmd
}

func (c *cli) init(logOut io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = internal.NewLoggerTo(logOut, internal.ParseLogLevel(cfg.LogLevel))
	c.logger.Debug("Configuration loaded, simulation dir %s", cfg.Paths.SimulationDir)
	return nil
}
