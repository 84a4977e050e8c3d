package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "0.1.0"

var (
	configFile string
	envDir     string
)

var rootCmd = &cobra.Command{
	Use:   "volleyball-live-system",
	Short: "Live volleyball match tracking service",
	Long: `volleyball-live-system records volleyball matches as they are played:
match and set lifecycle, point by point scoring with undo, timeouts
and per-player performance.

Commands:
  - serve    run the HTTP API, background workers and scheduler
  - migrate  create or update the database schema`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("volleyball-live-system version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&envDir, "env-dir", ".", "directory holding the .env files")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
