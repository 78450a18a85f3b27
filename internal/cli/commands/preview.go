package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maximuthking/csv-viewer/internal/config"
	"github.com/maximuthking/csv-viewer/internal/engine"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	var (
		limit   int
		offset  int
		sorts   []string
		filters []string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "preview <dataset>",
		Short: "Preview rows of a dataset",
		Long: `Print one page of a dataset, with optional sorting and filtering.

Sort specs are column:direction, e.g. --sort price:desc. Filter specs
are column:operator:value, e.g. --filter status:eq:active. Operators:
eq, ne, lt, lte, gt, gte, contains.`,
		Example: `  csvviewer preview sales.csv
  csvviewer preview sales.csv --limit 50 --sort amount:desc
  csvviewer preview sales.csv --filter region:eq:EMEA --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			orderBy, err := parseSortSpecs(sorts)
			if err != nil {
				return err
			}
			filterSpecs, err := parseFilterSpecs(filters)
			if err != nil {
				return err
			}

			eng, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			result, err := eng.Preview(cmd.Context(), engine.PreviewQuery{
				Path:    args[0],
				Limit:   limit,
				Offset:  offset,
				OrderBy: orderBy,
				Filters: filterSpecs,
			})
			if err != nil {
				return fmt.Errorf("preview failed: %w", err)
			}

			if err := renderRows(cmd.OutOrStdout(), format, result.Columns, result.Rows); err != nil {
				return err
			}
			if format == "" || format == "table" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d total rows\n", result.TotalRows)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", engine.DefaultPreviewLimit, "Rows per page (max 500)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Row offset")
	cmd.Flags().StringArrayVar(&sorts, "sort", nil, "Sort spec column:direction (repeatable)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter spec column:operator:value (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table|json|csv|md)")

	return cmd
}

// parseSortSpecs parses column:direction specs. A bare column sorts
// ascending.
func parseSortSpecs(raw []string) ([]core.SortSpec, error) {
	var specs []core.SortSpec
	for _, s := range raw {
		column, direction, found := strings.Cut(s, ":")
		if column == "" {
			return nil, fmt.Errorf("invalid sort spec %q: expected column:direction", s)
		}
		dir := core.SortAsc
		if found {
			switch core.SortDirection(direction) {
			case core.SortAsc, core.SortDesc:
				dir = core.SortDirection(direction)
			default:
				return nil, fmt.Errorf("invalid sort direction %q: expected asc or desc", direction)
			}
		}
		specs = append(specs, core.SortSpec{Column: column, Direction: dir})
	}
	return specs, nil
}

// parseFilterSpecs parses column:operator:value specs. The value may contain
// further colons.
func parseFilterSpecs(raw []string) ([]core.FilterSpec, error) {
	var specs []core.FilterSpec
	for _, s := range raw {
		parts := strings.SplitN(s, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return nil, fmt.Errorf("invalid filter spec %q: expected column:operator:value", s)
		}
		op := core.FilterOperator(parts[1])
		switch op {
		case core.FilterEq, core.FilterNe, core.FilterLt, core.FilterLte,
			core.FilterGt, core.FilterGte, core.FilterContains:
		default:
			return nil, fmt.Errorf("invalid filter operator %q", parts[1])
		}
		specs = append(specs, core.FilterSpec{Column: parts[0], Operator: op, Value: parts[2]})
	}
	return specs, nil
}
