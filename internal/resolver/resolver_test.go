package resolver

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
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

func TestResolver_New(t *testing.T) {
	t.Parallel()

	t.Run("returns error when logger missing", func(t *testing.T) {
		t.Parallel()
		r, err := New(Config{LLM: &fakeCompleter{}})
		require.Error(t, err)
		require.Nil(t, r)
		require.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when LLM client missing", func(t *testing.T) {
		t.Parallel()
		r, err := New(Config{Logger: newTestLogger()})
		require.Error(t, err)
		require.Nil(t, r)
		require.Contains(t, err.Error(), "LLM client is required")
	})

	t.Run("loads embedded prompts", func(t *testing.T) {
		t.Parallel()
		r, err := New(Config{Logger: newTestLogger(), LLM: &fakeCompleter{}})
		require.NoError(t, err)
		require.NotEmpty(t, r.resolvePrompt)
		require.NotEmpty(t, r.correctPrompt)
	})
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("includes the schema in the system prompt and the question in the user prompt", func(t *testing.T) {
		t.Parallel()
		llm := &fakeCompleter{response: "SELECT SUM(Amount) FROM sales_data"}
		r, err := New(Config{Logger: newTestLogger(), LLM: llm})
		require.NoError(t, err)

		sqlText, err := r.Resolve(context.Background(), "total sales?", "Table 'sales_data': Amount (DOUBLE)")
		require.NoError(t, err)
		require.Equal(t, "SELECT SUM(Amount) FROM sales_data", sqlText)
		require.Contains(t, llm.gotSystem, "## Database Schema")
		require.Contains(t, llm.gotSystem, "Table 'sales_data': Amount (DOUBLE)")
		require.Contains(t, llm.gotUser, "total sales?")
	})

	t.Run("propagates LLM failure", func(t *testing.T) {
		t.Parallel()
		llm := &fakeCompleter{err: errors.New("connection refused")}
		r, err := New(Config{Logger: newTestLogger(), LLM: llm})
		require.NoError(t, err)

		_, err = r.Resolve(context.Background(), "total sales?", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "connection refused")
	})
}

func TestResolver_Correct(t *testing.T) {
	t.Parallel()

	t.Run("user prompt carries the failed query and the diagnostic verbatim", func(t *testing.T) {
		t.Parallel()
		llm := &fakeCompleter{response: "SELECT SUM(Amount) FROM sales_data"}
		r, err := New(Config{Logger: newTestLogger(), LLM: llm})
		require.NoError(t, err)

		sqlText, err := r.Correct(context.Background(),
			"total sales?",
			"Table 'sales_data': Amount (DOUBLE)",
			"SELECT SUM(Amt) FROM sales_data",
			`Binder Error: column "Amt" not found`)
		require.NoError(t, err)
		require.Equal(t, "SELECT SUM(Amount) FROM sales_data", sqlText)
		require.Contains(t, llm.gotUser, "SELECT SUM(Amt) FROM sales_data")
		require.Contains(t, llm.gotUser, `Binder Error: column "Amt" not found`)
		require.Contains(t, llm.gotSystem, "## Database Schema")
	})
}

func TestExtractSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "bare query",
			response: "SELECT * FROM sales_data",
			want:     "SELECT * FROM sales_data",
		},
		{
			name:     "trailing semicolon stripped",
			response: "SELECT * FROM sales_data;",
			want:     "SELECT * FROM sales_data",
		},
		{
			name:     "sql fence",
			response: "```sql\nSELECT * FROM sales_data\n```",
			want:     "SELECT * FROM sales_data",
		},
		{
			name:     "sql fence with prose around it",
			response: "Here is the query:\n```sql\nSELECT Year, SUM(Amount) FROM sales_data GROUP BY Year\n```\nLet me know if you need more.",
			want:     "SELECT Year, SUM(Amount) FROM sales_data GROUP BY Year",
		},
		{
			name:     "generic fence with SQL content",
			response: "```\nWITH t AS (SELECT 1) SELECT * FROM t\n```",
			want:     "WITH t AS (SELECT 1) SELECT * FROM t",
		},
		{
			name:     "dangling fence markers",
			response: "```sql\nSELECT * FROM sales_data",
			want:     "SELECT * FROM sales_data",
		},
		{
			name:     "whitespace only",
			response: "   \n\t  ",
			wantErr:  true,
		},
		{
			name:     "empty fence",
			response: "```sql\n```",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractSQL(tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
