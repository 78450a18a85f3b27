// Command csvviewer explores CSV and Parquet datasets with DuckDB.
package main

import (
	"os"

	"github.com/maximuthking/csv-viewer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
