package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/maximuthking/csv-viewer/internal/catalog"
	"github.com/maximuthking/csv-viewer/internal/config"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

// NewFilesCommand creates the files command.
func NewFilesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List datasets in the data directory",
		Long:  `List the CSV and Parquet files available for exploration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			datasets, err := catalog.New(cfg.DataDir, logger).List()
			if err != nil {
				return fmt.Errorf("failed to list datasets: %w", err)
			}

			return renderDatasets(cmd.OutOrStdout(), format, datasets)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table|json)")

	return cmd
}

func renderDatasets(w io.Writer, format string, datasets []core.DatasetDescriptor) error {
	if format == "json" {
		if datasets == nil {
			datasets = []core.DatasetDescriptor{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(datasets)
	}

	if len(datasets) == 0 {
		_, _ = fmt.Fprintln(w, "(no datasets)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Size", "Modified"})
	for _, d := range datasets {
		t.AppendRow(table.Row{d.Name, fmt.Sprintf("%d", d.SizeBytes), d.ModifiedAt})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d datasets)\n", len(datasets))
	return nil
}
