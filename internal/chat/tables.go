package chat

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/saleslens/saleslens/internal/engine"
)

// tableQueries are the fixed aggregates rendered by /tables. Like the
// report queries they are hand-authored and bypass the resolver, but they
// are display-only and belong to the harness, not the pipeline.
var tableQueries = []struct {
	Title string
	SQL   string
}{
	{"Sales by Year", "SELECT Year, SUM(Amount) AS Total_Sales FROM sales_data GROUP BY Year ORDER BY Year"},
	{"Top 10 Categories", "SELECT Category, SUM(Amount) AS Total_Sales FROM sales_data GROUP BY Category ORDER BY Total_Sales DESC LIMIT 10"},
	{"Sales by Source", "SELECT Source, SUM(Amount) AS Total_Sales FROM sales_data GROUP BY Source"},
}

func (s *Session) runTables(ctx context.Context) {
	for _, q := range tableQueries {
		result, err := s.cfg.Engine.Execute(ctx, q.SQL)
		if err != nil {
			s.log.Warn("chat: table query failed", "title", q.Title, "error", err)
			continue
		}
		if result.Count == 0 {
			continue
		}
		fmt.Fprintf(s.cfg.Out, "\n%s\n", q.Title)
		RenderResultSet(s.cfg.Out, result)
	}
}

// RenderResultSet renders a result set as an ASCII table.
func RenderResultSet(w io.Writer, rs *engine.ResultSet) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(rs.Columns)
	for _, row := range rs.Rows {
		values := make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			values[i] = fmt.Sprintf("%v", row[col])
		}
		table.Append(values)
	}
	table.Render()
}
