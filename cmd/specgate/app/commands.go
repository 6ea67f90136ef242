// Package app provides the specgate command line entry points.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specgate/specgate"
	"github.com/specgate/specgate/internal/config"
)

var rootCmd = &cobra.Command{
	Use:               "specgate",
	DisableAutoGenTag: true,
	Short:             "OpenAPI aggregation gateway",
	Long: `specgate aggregates OpenAPI documents from configured upstream services
into one merged specification: it probes each source, fetches the available
documents, stamps per-source server origins, optionally namespaces tags, and
resolves naming collisions deterministically.`,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := cmd.Help(); err != nil {
			slog.Error("error displaying help", "error", err)
		}
	},
}

var buildRootOnce sync.Once

// NewRootCmd returns the specgate root command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	buildRootOnce.Do(func() {
		rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
		if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
			slog.Error("error binding debug flag", "error", err)
		}

		rootCmd.AddCommand(serveCmd)
		rootCmd.AddCommand(mcpCmd)
		rootCmd.AddCommand(mergeCmd)
		rootCmd.AddCommand(versionCmd)
	})
	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("specgate v%s\n", specgate.Version())
	},
}

// setupLogging installs a text slog handler at the level selected by
// the debug flag.
func setupLogging() {
	level := slog.LevelInfo
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the configuration file named by the command's
// config flag. The flag is read per command; serve and mcp each carry
// their own.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("configuration loaded", "path", path, "sources", len(cfg.Sources))
	return cfg, nil
}
