package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"

	"github.com/specgate/specgate/aggregator"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Run one aggregation pass and print the merged document",
	Long: `Run the aggregation pipeline once and write the merged OpenAPI document
as JSON or YAML to stdout or to a file. Collision and source warnings go
to stderr.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	mergeCmd.Flags().String("output", "", "File path to write the merged document (default stdout)")
	mergeCmd.Flags().String("format", "json", "Output format: json or yaml")
	mergeCmd.Flags().Bool("compact", false, "Emit compact JSON instead of indented")
	if err := mergeCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("error marking config flag required", "error", err)
	}
}

func runMerge(cmd *cobra.Command, _ []string) error {
	setupLogging()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	agg := aggregator.New(cfg.AggregatorConfig())
	res, err := agg.Run(cmd.Context())
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	compact, _ := cmd.Flags().GetBool("compact")
	var data []byte
	switch format {
	case "json":
		if compact {
			data, err = json.Marshal(res.Merged.Document)
		} else {
			data, err = json.MarshalIndent(res.Merged.Document, "", "  ")
		}
	case "yaml":
		data, err = yaml.Marshal(res.Merged.Document)
	default:
		return fmt.Errorf("unknown output format %q (expected json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize merged document: %w", err)
	}
	if format == "json" {
		data = append(data, '\n')
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	slog.Info("merged document written",
		"path", output, "sources", res.Stats.Fetched, "collisions", res.Stats.Collisions)
	return nil
}
