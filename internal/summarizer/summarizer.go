// Package summarizer turns validated query results into natural-language
// answers, and labeled batch results into an executive summary.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/saleslens/saleslens/internal/engine"
	"github.com/saleslens/saleslens/internal/llm"
	"github.com/saleslens/saleslens/internal/pipeline"
	"github.com/saleslens/saleslens/internal/summarizer/prompts"
)

// Config holds the configuration for the summarizer.
type Config struct {
	Logger *slog.Logger
	LLM    llm.Completer
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if cfg.LLM == nil {
		return fmt.Errorf("LLM client is required")
	}
	return nil
}

// Summarizer generates prose answers from query results.
type Summarizer struct {
	log *slog.Logger
	cfg Config

	summarizePrompt string
	reportPrompt    string
}

// New creates a new Summarizer with its embedded prompt templates.
func New(cfg Config) (*Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate summarizer config: %w", err)
	}

	summarizePrompt, err := loadPrompt("SUMMARIZE.md")
	if err != nil {
		return nil, err
	}
	reportPrompt, err := loadPrompt("REPORT.md")
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		log:             cfg.Logger,
		cfg:             cfg,
		summarizePrompt: summarizePrompt,
		reportPrompt:    reportPrompt,
	}, nil
}

func loadPrompt(path string) (string, error) {
	data, err := prompts.FS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Summarize answers the question from a single validated result set.
func (s *Summarizer) Summarize(ctx context.Context, question string, result *engine.ResultSet, sqlText string) (string, error) {
	userPrompt := fmt.Sprintf(`User question: %q

SQL query used:
%s

Data retrieved:
%s`, question, sqlText, result.Format())

	response, err := s.cfg.LLM.Complete(ctx, s.summarizePrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("LLM completion failed: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// SummarizeReport produces the executive summary from the labeled batch
// results. Entries carrying an error are passed through as such; isolation
// happened upstream.
func (s *Summarizer) SummarizeReport(ctx context.Context, entries []pipeline.ReportEntry) (string, error) {
	var sb strings.Builder
	for _, entry := range entries {
		sb.WriteString("## " + entry.Title + "\n")
		sb.WriteString("SQL: " + entry.SQL + "\n")
		if entry.Err != "" {
			sb.WriteString("Error: " + entry.Err + "\n\n")
			continue
		}
		sb.WriteString(entry.Result.Format() + "\n\n")
	}

	userPrompt := fmt.Sprintf("Query results:\n\n%s", sb.String())

	response, err := s.cfg.LLM.Complete(ctx, s.reportPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("LLM completion failed: %w", err)
	}
	return strings.TrimSpace(response), nil
}
