package engine

import (
	"fmt"
	"strings"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// quoteIdent quotes a SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// buildFilterClause renders a WHERE clause for the given filters, appending
// bound values to params. Returns an empty string when no filters apply.
func buildFilterClause(filters []core.FilterSpec, params *[]any) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(filters))
	for _, spec := range filters {
		column := quoteIdent(spec.Column)
		switch spec.Operator {
		case core.FilterEq:
			clauses = append(clauses, column+" = ?")
			*params = append(*params, spec.Value)
		case core.FilterNe:
			clauses = append(clauses, column+" <> ?")
			*params = append(*params, spec.Value)
		case core.FilterLt:
			clauses = append(clauses, column+" < ?")
			*params = append(*params, spec.Value)
		case core.FilterLte:
			clauses = append(clauses, column+" <= ?")
			*params = append(*params, spec.Value)
		case core.FilterGt:
			clauses = append(clauses, column+" > ?")
			*params = append(*params, spec.Value)
		case core.FilterGte:
			clauses = append(clauses, column+" >= ?")
			*params = append(*params, spec.Value)
		case core.FilterContains:
			clauses = append(clauses, column+" ILIKE ?")
			*params = append(*params, fmt.Sprintf("%%%v%%", spec.Value))
		default:
			return "", fmt.Errorf("%w: unsupported filter operator %q", ErrInvalid, spec.Operator)
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), nil
}

// buildOrderClause renders an ORDER BY clause, or an empty string for
// natural order.
func buildOrderClause(order []core.SortSpec) string {
	if len(order) == 0 {
		return ""
	}
	parts := make([]string, 0, len(order))
	for _, spec := range order {
		direction := "ASC"
		if spec.Direction == core.SortDesc {
			direction = "DESC"
		}
		parts = append(parts, quoteIdent(spec.Column)+" "+direction)
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// buildWindowOrderClause renders the ORDER BY portion of an OVER () clause.
func buildWindowOrderClause(order []core.SortSpec) string {
	clause := buildOrderClause(order)
	return strings.TrimPrefix(clause, " ")
}
