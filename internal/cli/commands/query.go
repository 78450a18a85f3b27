package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maximuthking/csv-viewer/internal/config"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "query <dataset> <sql>",
		Short: "Run a SELECT query against a dataset",
		Long: `Run a read-only SQL query against a dataset. The dataset is exposed
as the view csv_view, so queries look like:

  SELECT region, SUM(amount) FROM csv_view GROUP BY region`,
		Example: `  csvviewer query sales.csv "SELECT * FROM csv_view LIMIT 10"
  csvviewer query sales.csv "SELECT COUNT(*) FROM csv_view" --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			eng, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			result, err := eng.Query(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}

			return renderRows(cmd.OutOrStdout(), format, result.Columns, result.Rows)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table|json|csv|md)")

	return cmd
}
