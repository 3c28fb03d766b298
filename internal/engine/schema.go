package engine

import (
	"context"
	"fmt"
	"strings"
)

// DescribeSchema returns a flattened listing of every registered table and
// its typed columns, one line per table:
//
//	Table 'sales_data': Date (DATE), SKU (VARCHAR), Amount (DOUBLE)
//
// The string is prompt context for the resolver, not parsed structure.
// An empty database yields an empty string, not an error; only a broken
// introspection query is an error.
func (e *Engine) DescribeSchema(ctx context.Context) (string, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'main'
		ORDER BY table_name, ordinal_position
	`)
	if err != nil {
		return "", fmt.Errorf("failed to query schema: %w", err)
	}
	defer rows.Close()

	tableColumns := make(map[string][]string)
	var tableOrder []string
	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return "", fmt.Errorf("failed to scan schema row: %w", err)
		}
		if _, ok := tableColumns[tableName]; !ok {
			tableOrder = append(tableOrder, tableName)
		}
		tableColumns[tableName] = append(tableColumns[tableName], fmt.Sprintf("%s (%s)", columnName, dataType))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating schema rows: %w", err)
	}

	lines := make([]string, 0, len(tableOrder))
	for _, table := range tableOrder {
		lines = append(lines, fmt.Sprintf("Table '%s': %s", table, strings.Join(tableColumns[table], ", ")))
	}

	return strings.Join(lines, "\n\n"), nil
}
