// Package commands implements the moviesearch CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/moviesearch/internal/version"
)

// NewRootCmd builds the root command with every subcommand registered.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "moviesearch",
		Short: "Hybrid full-text and vector movie search over Redis",
		Long: `moviesearch answers free-text movie queries by combining Redis full-text
search with vector similarity over plot embeddings.

Examples:
  moviesearch schema
  moviesearch backfill
  moviesearch search "Back to the Future" --mode raw
  moviesearch serve --env prod`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newBackfillCmd(),
		newSearchCmd(),
		newSchemaCmd(),
		newVersionCmd(),
	)

	rootCmd.PersistentFlags().String("env", "", "environment profile (local, dev, docker, prod); defaults to $ENV or local")
	rootCmd.PersistentFlags().StringP("config", "c", "", "explicit config file path; overrides --env lookup")
	rootCmd.PersistentFlags().String("dotenv", ".env", "dotenv file loaded before config; missing file is ignored")

	return rootCmd
}
