package engine

import (
	"fmt"
	"strings"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// ResultSet holds the materialized result of a query execution. It is never
// mutated after creation.
type ResultSet struct {
	SQL     string
	Columns []string
	Rows    []Row
	Count   int
}

// maxFormattedRows bounds how many rows are rendered into prompt context.
const maxFormattedRows = 50

// Format renders the result set as plain text suitable for prompt context.
func (rs *ResultSet) Format() string {
	if rs.Count == 0 {
		return "Query returned no results."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(rs.Columns, ", ")))
	sb.WriteString(fmt.Sprintf("Rows (%d total):\n", rs.Count))

	displayRows := rs.Count
	if displayRows > maxFormattedRows {
		displayRows = maxFormattedRows
	}

	for i := 0; i < displayRows && i < len(rs.Rows); i++ {
		values := make([]string, len(rs.Columns))
		for j, col := range rs.Columns {
			values[j] = formatValue(rs.Rows[i][col])
		}
		sb.WriteString(strings.Join(values, " | ") + "\n")
	}

	if rs.Count > maxFormattedRows {
		sb.WriteString(fmt.Sprintf("... and %d more rows\n", rs.Count-maxFormattedRows))
	}

	return sb.String()
}

// formatValue formats a single value for prompt display. Floats are rounded
// to 2 decimal places so long decimals don't read like encoded values.
func formatValue(v any) string {
	switch val := v.(type) {
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f", val)
		}
		return fmt.Sprintf("%.2f", val)
	case float32:
		if val == float32(int32(val)) {
			return fmt.Sprintf("%.0f", val)
		}
		return fmt.Sprintf("%.2f", val)
	case nil:
		return ""
	default:
		s := fmt.Sprintf("%v", v)
		if len(s) > 100 {
			s = s[:97] + "..."
		}
		return s
	}
}
