package core

import "strings"

// numericPrefixes are the DuckDB type names treated as numeric for summary
// statistics and chart value columns. Parameterized types such as
// DECIMAL(18,3) match by prefix.
var numericPrefixes = []string{
	"TINYINT",
	"SMALLINT",
	"INTEGER",
	"BIGINT",
	"UTINYINT",
	"USMALLINT",
	"UINTEGER",
	"UBIGINT",
	"HUGEINT",
	"DOUBLE",
	"FLOAT",
	"REAL",
	"DECIMAL",
	"NUMERIC",
}

// temporalPrefixes are the DuckDB type names usable as a chart time axis.
var temporalPrefixes = []string{
	"TIMESTAMP",
	"DATE",
	"TIME",
}

func hasAnyPrefix(dtype string, prefixes []string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(dtype))
	for _, prefix := range prefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}

// IsNumericDtype reports whether the dtype tag names a numeric column type.
func IsNumericDtype(dtype string) bool {
	return hasAnyPrefix(dtype, numericPrefixes)
}

// IsTemporalDtype reports whether the dtype tag names a timestamp-like
// column type.
func IsTemporalDtype(dtype string) bool {
	return hasAnyPrefix(dtype, temporalPrefixes)
}
