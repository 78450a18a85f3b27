package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maximuthking/csv-viewer/internal/config"
)

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <dataset.csv>",
		Short: "Convert a CSV dataset to Parquet",
		Long: `Write a Parquet copy of a CSV dataset. The copy is skipped when it
already exists and is newer than the source.`,
		Example: `  csvviewer convert sales.csv
  csvviewer convert sales.csv --output archive/sales.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			target := output
			if target == "" {
				target = strings.TrimSuffix(args[0], ".csv") + ".parquet"
			}

			eng, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			converted, err := eng.EnsureParquet(cmd.Context(), args[0], target)
			if err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}

			if converted {
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s\n", args[0], target)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already up to date\n", target)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Parquet output path (default: dataset name with .parquet)")

	return cmd
}
