package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/maximuthking/csv-viewer/internal/config"
	"github.com/maximuthking/csv-viewer/internal/engine"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	var (
		columns string
		filters []string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "summary <dataset>",
		Short: "Show per-column statistics for a dataset",
		Long: `Compute counts, distinct counts, min/max and (for numeric columns)
mean and standard deviation for every column of a dataset.`,
		Example: `  csvviewer summary sales.csv
  csvviewer summary sales.csv --columns amount,region
  csvviewer summary sales.csv --filter region:eq:EMEA`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			filterSpecs, err := parseFilterSpecs(filters)
			if err != nil {
				return err
			}

			eng, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			summaries, err := eng.Summarize(cmd.Context(), engine.SummaryQuery{
				Path:    args[0],
				Columns: splitList(columns),
				Filters: filterSpecs,
			})
			if err != nil {
				return fmt.Errorf("summary failed: %w", err)
			}

			return renderSummaries(cmd.OutOrStdout(), format, summaries)
		},
	}

	cmd.Flags().StringVar(&columns, "columns", "", "Comma-separated subset of columns (default: all)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter spec column:operator:value (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table|json)")

	return cmd
}

func renderSummaries(w io.Writer, format string, summaries []core.ColumnSummary) error {
	if format == "json" {
		if summaries == nil {
			summaries = []core.ColumnSummary{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Rows", "Nulls", "Distinct", "Min", "Max", "Mean", "Stddev"})
	for _, s := range summaries {
		t.AppendRow(table.Row{
			s.Column, s.Dtype, s.TotalRows, s.NullCount, s.DistinctCount,
			formatValue(s.MinValue), formatValue(s.MaxValue),
			formatFloatPtr(s.MeanValue), formatFloatPtr(s.StddevValue),
		})
	}
	t.Render()
	return nil
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return "NULL"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
