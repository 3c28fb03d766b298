// Package pipeline implements the query resolution loop: a bounded
// execute-then-correct protocol that turns an unreliable natural-language to
// SQL step into either a validated answer or a well-defined failure after a
// fixed number of attempts. Collaborators are injected; their failures never
// escape the two entry points as errors, only as response text.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saleslens/saleslens/internal/engine"
)

// maxAttempts is the default ceiling of query execution attempts per
// question. The ceiling is an attempt count, not a time budget: each attempt
// costs one LLM round trip plus one query execution, so counting attempts
// gives a deterministic worst-case number of external calls.
const maxAttempts = 3

// Engine executes SQL queries and describes the registered tables.
type Engine interface {
	Execute(ctx context.Context, sqlText string) (*engine.ResultSet, error)
	DescribeSchema(ctx context.Context) (string, error)
}

// Resolver produces candidate SQL for a question, and corrected SQL given a
// failed query and its diagnostic.
type Resolver interface {
	Resolve(ctx context.Context, question, schema string) (string, error)
	Correct(ctx context.Context, question, schema, failedSQL, diagnostic string) (string, error)
}

// Summarizer turns validated results into prose.
type Summarizer interface {
	Summarize(ctx context.Context, question string, result *engine.ResultSet, sqlText string) (string, error)
	SummarizeReport(ctx context.Context, entries []ReportEntry) (string, error)
}

// Config holds the configuration for the pipeline.
type Config struct {
	Logger     *slog.Logger
	Engine     Engine
	Resolver   Resolver
	Summarizer Summarizer

	// MaxAttempts is the execution attempt ceiling per question (default 3).
	MaxAttempts int
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if cfg.Engine == nil {
		return fmt.Errorf("engine is required")
	}
	if cfg.Resolver == nil {
		return fmt.Errorf("resolver is required")
	}
	if cfg.Summarizer == nil {
		return fmt.Errorf("summarizer is required")
	}
	return nil
}

// Pipeline orchestrates resolver, engine, and summarizer through the
// bounded retry protocol. It holds no per-question state; everything a call
// needs lives on the stack of that call.
type Pipeline struct {
	log *slog.Logger
	cfg Config
}

// New creates a new Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate pipeline config: %w", err)
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = maxAttempts
	}
	return &Pipeline{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

// attempt is one round of the resolution loop. A failure produces a new
// attempt with the corrected query; finished attempts are never mutated.
type attempt struct {
	index      int
	sql        string
	diagnostic string
}

const noDataResponse = "No data found matching your query."

// ProcessQuery answers a natural-language question about the registered
// data. It always returns response text; every collaborator failure is
// converted into loop state or a terminal message at the boundary where it
// occurs.
func (p *Pipeline) ProcessQuery(ctx context.Context, question string) string {
	// A missing or broken data source is not a transient error; no retries.
	schema, err := p.cfg.Engine.DescribeSchema(ctx)
	if err != nil {
		p.log.Error("pipeline: schema introspection failed", "error", err)
		return fmt.Sprintf("I couldn't read the data source schema: %v", err)
	}

	sqlText, err := p.cfg.Resolver.Resolve(ctx, question, schema)
	if err != nil {
		p.log.Error("pipeline: query resolution failed", "error", err)
		return fmt.Sprintf("I couldn't translate that question into a query: %v", err)
	}

	cur := attempt{index: 0, sql: sqlText}
	var result *engine.ResultSet

	for {
		result, err = p.cfg.Engine.Execute(ctx, cur.sql)
		if err == nil {
			p.log.Info("pipeline: query executed", "attempt", cur.index+1, "rows", result.Count)
			break
		}

		cur.diagnostic = err.Error()
		p.log.Info("pipeline: query failed", "attempt", cur.index+1, "error", cur.diagnostic)

		if cur.index+1 >= p.cfg.MaxAttempts {
			p.log.Info("pipeline: attempt budget exhausted", "attempts", p.cfg.MaxAttempts)
			return fmt.Sprintf("I couldn't answer that after %d attempts. Error: %s", p.cfg.MaxAttempts, cur.diagnostic)
		}

		// Self-correction: the next candidate is conditioned on exactly why
		// this one failed, not a generic "try again".
		fixed, err := p.cfg.Resolver.Correct(ctx, question, schema, cur.sql, cur.diagnostic)
		if err != nil {
			p.log.Error("pipeline: query correction failed", "attempt", cur.index+1, "error", err)
			return fmt.Sprintf("I couldn't produce a corrected query: %v", err)
		}
		cur = attempt{index: cur.index + 1, sql: fixed}
	}

	if !validate(result) {
		p.log.Info("pipeline: query returned no rows", "sql", cur.sql)
		return noDataResponse
	}

	answer, err := p.cfg.Summarizer.Summarize(ctx, question, result, cur.sql)
	if err != nil {
		p.log.Error("pipeline: summarization failed", "error", err)
		return fmt.Sprintf("I found the data but couldn't summarize it: %v", err)
	}
	return answer
}
