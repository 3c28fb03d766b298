package summarizer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saleslens/saleslens/internal/engine"
	"github.com/saleslens/saleslens/internal/pipeline"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

type fakeCompleter struct {
	response string
	err      error

	gotSystem string
	gotUser   string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	return f.response, f.err
}

func TestSummarizer_New(t *testing.T) {
	t.Parallel()

	t.Run("returns error when LLM client missing", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Logger: newTestLogger()})
		require.Error(t, err)
		require.Nil(t, s)
		require.Contains(t, err.Error(), "LLM client is required")
	})

	t.Run("loads embedded prompts", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Logger: newTestLogger(), LLM: &fakeCompleter{}})
		require.NoError(t, err)
		require.NotEmpty(t, s.summarizePrompt)
		require.NotEmpty(t, s.reportPrompt)
	})
}

func TestSummarizer_Summarize(t *testing.T) {
	t.Parallel()

	result := &engine.ResultSet{
		SQL:     "SELECT SUM(Amount) AS Total_Sales FROM sales_data",
		Columns: []string{"Total_Sales"},
		Rows:    []engine.Row{{"Total_Sales": 2026.83}},
		Count:   1,
	}

	t.Run("prompt carries question, query, and formatted data", func(t *testing.T) {
		t.Parallel()
		llm := &fakeCompleter{response: "  Total sales were 2026.83.  "}
		s, err := New(Config{Logger: newTestLogger(), LLM: llm})
		require.NoError(t, err)

		answer, err := s.Summarize(context.Background(), "total sales?", result, result.SQL)
		require.NoError(t, err)
		require.Equal(t, "Total sales were 2026.83.", answer)
		require.Contains(t, llm.gotUser, "total sales?")
		require.Contains(t, llm.gotUser, "SELECT SUM(Amount) AS Total_Sales FROM sales_data")
		require.Contains(t, llm.gotUser, "Columns: Total_Sales")
		require.Contains(t, llm.gotUser, "2026.83")
	})

	t.Run("propagates LLM failure", func(t *testing.T) {
		t.Parallel()
		llm := &fakeCompleter{err: errors.New("model overloaded")}
		s, err := New(Config{Logger: newTestLogger(), LLM: llm})
		require.NoError(t, err)

		_, err = s.Summarize(context.Background(), "total sales?", result, result.SQL)
		require.Error(t, err)
		require.Contains(t, err.Error(), "model overloaded")
	})
}

func TestSummarizer_SummarizeReport(t *testing.T) {
	t.Parallel()

	t.Run("renders results and error placeholders side by side", func(t *testing.T) {
		t.Parallel()
		llm := &fakeCompleter{response: "## Executive Summary\nSales grew."}
		s, err := New(Config{Logger: newTestLogger(), LLM: llm})
		require.NoError(t, err)

		entries := []pipeline.ReportEntry{
			{
				Title: "Total Sales",
				SQL:   "SELECT SUM(Amount) AS Total_Sales FROM sales_data",
				Result: &engine.ResultSet{
					Columns: []string{"Total_Sales"},
					Rows:    []engine.Row{{"Total_Sales": 78592678.0}},
					Count:   1,
				},
			},
			{
				Title: "Sales by Year",
				SQL:   "SELECT Year, SUM(Amount) AS Total_Sales FROM sales_data GROUP BY Year ORDER BY Year",
				Err:   "Binder Error: column Year not found",
			},
		}

		answer, err := s.SummarizeReport(context.Background(), entries)
		require.NoError(t, err)
		require.Equal(t, "## Executive Summary\nSales grew.", answer)
		require.Contains(t, llm.gotUser, "## Total Sales")
		require.Contains(t, llm.gotUser, "78592678")
		require.Contains(t, llm.gotUser, "## Sales by Year")
		require.Contains(t, llm.gotUser, "Error: Binder Error: column Year not found")
	})
}
