// Package commands holds the financas-report command tree.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"financas/internal/backend"
	"financas/internal/cli"
)

// StoreOpener opens the configured store. The caller closes the result.
type StoreOpener func(ctx context.Context) (*backend.BackendResult, error)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(open StoreOpener) *cobra.Command {
	var indent bool

	rootCmd := &cobra.Command{
		Use:   "financas-report",
		Short: "Print income and expense summaries",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&indent, "indent", false, "indent the JSON output")

	rootCmd.AddCommand(newTotalCommand(open, &indent))
	rootCmd.AddCommand(newMonthlyCommand(open, &indent))

	return rootCmd
}

// EnvStoreOpener opens the backend selected by the environment. Logs go to
// logOut so that command output stays machine-readable.
func EnvStoreOpener(logOut io.Writer) StoreOpener {
	return func(ctx context.Context) (*backend.BackendResult, error) {
		cfg, err := cli.LoadAndValidateConfig()
		if err != nil {
			return nil, err
		}
		logger := cli.SetupLogger(cfg.LogLevel, logOut)
		return cli.OpenBackend(ctx, logger, cfg)
	}
}
