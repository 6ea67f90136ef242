package app

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/specgate/specgate/aggregator"
	"github.com/specgate/specgate/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long: `Run a Model Context Protocol server over stdio exposing the aggregation
pipeline as tools: aggregate, list_sources and get_merged_spec.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	if err := mcpCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("error marking config flag required", "error", err)
	}
}

func runMCP(cmd *cobra.Command, _ []string) error {
	setupLogging()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	agg := aggregator.New(cfg.AggregatorConfig())
	return mcpserver.Run(cmd.Context(), agg)
}
