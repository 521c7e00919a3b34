// Package probe checks a running payscout service from the outside.
package probe

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/payscout/pkg/logger"
)

// Defaults for the probe command.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTimeout = 30 * time.Second
	defaultWorkers = 2 // multiplier for runtime.NumCPU()
)

// ErrViolations is returned when the service breaks a checked invariant.
var ErrViolations = errors.New("invariant violations found")

// NewCommand builds the probe command tree.
func NewCommand() *cobra.Command {
	config := &Config{}

	root := &cobra.Command{
		Use:   "payscout-probe",
		Short: "Check a running payscout service",
		Long: `payscout-probe talks to a running payscout service over HTTP and checks
the catalog invariants and the shape of matchmaker answers.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logger.Init(logger.WithOutput(cmd.ErrOrStderr()))
		},
	}

	root.PersistentFlags().StringVar(&config.BaseURL, "url", DefaultBaseURL, "base URL of the service")
	root.PersistentFlags().DurationVar(&config.Timeout, "timeout", DefaultTimeout, "HTTP request timeout")
	root.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", false, "verbose output")

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Verify ordering and filter invariants of every category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := CheckCatalog(cmd.Context(), config)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "categories: %d\nplatforms: %d\nduration: %s\n",
				report.Categories, report.Platforms, report.Duration.Round(time.Millisecond))
			for _, v := range report.Violations {
				fmt.Fprintf(out, "violation: %s\n", v)
			}
			if !report.OK() {
				return fmt.Errorf("%w: %d", ErrViolations, len(report.Violations))
			}
			return nil
		},
	}
	catalogCmd.Flags().IntVar(&config.Workers, "workers", runtime.NumCPU()*defaultWorkers, "number of concurrent category fetchers")

	matchCmd := &cobra.Command{
		Use:   "match <request>",
		Short: "Send one matchmaker request and check the answer",
		Example: `  payscout-probe match "I speak Spanish and want flexible evening work"
  payscout-probe match --session demo "surveys that pay by PayPal"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := RunMatch(cmd.Context(), config, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report.Outcome); err != nil {
				return err
			}
			for _, v := range report.Violations {
				fmt.Fprintf(cmd.OutOrStdout(), "violation: %s\n", v)
			}
			if len(report.Violations) > 0 {
				return fmt.Errorf("%w: %d", ErrViolations, len(report.Violations))
			}
			return nil
		},
	}
	matchCmd.Flags().StringVar(&config.Session, "session", "", "session id; a newer request in the same session supersedes older ones")

	root.AddCommand(catalogCmd, matchCmd)
	return root
}
