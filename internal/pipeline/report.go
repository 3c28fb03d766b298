package pipeline

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
	"github.com/saleslens/saleslens/internal/engine"
)

// ReportEntry is one named aggregate in the batch summary: either a result
// set or the error text the query failed with, never both.
type ReportEntry struct {
	Title  string
	SQL    string
	Result *engine.ResultSet
	Err    string
}

// reportQueries are hand-authored aggregates over the known sales schema.
// They bypass the resolver and the retry loop entirely.
var reportQueries = []struct {
	Title string
	SQL   string
}{
	{"Total Sales", "SELECT SUM(Amount) AS Total_Sales FROM sales_data"},
	{"Sales by Year", "SELECT Year, SUM(Amount) AS Total_Sales FROM sales_data GROUP BY Year ORDER BY Year"},
	{"Top 5 Categories", "SELECT Category, SUM(Amount) AS Total_Sales FROM sales_data GROUP BY Category ORDER BY 2 DESC LIMIT 5"},
	{"Sales by Source", "SELECT Source, SUM(Amount) AS Total_Sales FROM sales_data GROUP BY Source"},
}

// GenerateSummary produces a prose executive summary of the dataset from a
// fixed set of named aggregate queries. The queries have no inter-query
// dependency and run concurrently; each query's failure is isolated as an
// error placeholder in its entry and never aborts the batch.
func (p *Pipeline) GenerateSummary(ctx context.Context) string {
	entries := p.runReportQueries(ctx)

	answer, err := p.cfg.Summarizer.SummarizeReport(ctx, entries)
	if err != nil {
		p.log.Error("pipeline: report summarization failed", "error", err)
		return fmt.Sprintf("I couldn't generate the summary: %v", err)
	}
	return answer
}

func (p *Pipeline) runReportQueries(ctx context.Context) []ReportEntry {
	pool := pond.NewResultPool[ReportEntry](len(reportQueries))
	group := pool.NewGroupContext(ctx)

	for _, q := range reportQueries {
		group.SubmitErr(func() (ReportEntry, error) {
			result, err := p.cfg.Engine.Execute(ctx, q.SQL)
			if err != nil {
				p.log.Info("pipeline: report query failed", "title", q.Title, "error", err)
				return ReportEntry{Title: q.Title, SQL: q.SQL, Err: err.Error()}, nil
			}
			return ReportEntry{Title: q.Title, SQL: q.SQL, Result: result}, nil
		})
	}

	// Tasks never return errors; failures are captured per entry.
	entries, _ := group.Wait()
	pool.StopAndWait()
	return entries
}
