// Package resolver turns natural-language questions into candidate SQL
// queries. It is a thin contract over an LLM: build the prompt, call the
// model, strip whatever decoration the model wrapped the query in.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/saleslens/saleslens/internal/llm"
	"github.com/saleslens/saleslens/internal/resolver/prompts"
)

// Config holds the configuration for the resolver.
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

// Resolver generates and corrects SQL queries for natural-language questions.
type Resolver struct {
	log *slog.Logger
	cfg Config

	resolvePrompt string
	correctPrompt string
}

// New creates a new Resolver with its embedded prompt templates.
func New(cfg Config) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate resolver config: %w", err)
	}

	resolvePrompt, err := loadPrompt("RESOLVE.md")
	if err != nil {
		return nil, err
	}
	correctPrompt, err := loadPrompt("CORRECT.md")
	if err != nil {
		return nil, err
	}

	return &Resolver{
		log:           cfg.Logger,
		cfg:           cfg,
		resolvePrompt: resolvePrompt,
		correctPrompt: correctPrompt,
	}, nil
}

func loadPrompt(path string) (string, error) {
	data, err := prompts.FS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Resolve produces a candidate SQL query for the question.
func (r *Resolver) Resolve(ctx context.Context, question, schema string) (string, error) {
	systemPrompt := buildSystemPrompt(r.resolvePrompt, schema)
	userPrompt := fmt.Sprintf("User question: %q", question)

	response, err := r.cfg.LLM.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("LLM completion failed: %w", err)
	}

	sqlText, err := ExtractSQL(response)
	if err != nil {
		return "", err
	}
	r.log.Debug("resolver: query resolved", "sql", sqlText)
	return sqlText, nil
}

// Correct produces a fixed SQL query given the exact failed query and the
// engine diagnostic it failed with.
func (r *Resolver) Correct(ctx context.Context, question, schema, failedSQL, diagnostic string) (string, error) {
	systemPrompt := buildSystemPrompt(r.correctPrompt, schema)
	userPrompt := fmt.Sprintf(`User question: %q

Failed SQL:
%s

Error message:
%s`, question, failedSQL, diagnostic)

	response, err := r.cfg.LLM.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("LLM completion failed: %w", err)
	}

	sqlText, err := ExtractSQL(response)
	if err != nil {
		return "", err
	}
	r.log.Debug("resolver: query corrected", "sql", sqlText)
	return sqlText, nil
}

func buildSystemPrompt(staticPrompt, schema string) string {
	return staticPrompt + "\n\n## Database Schema\n\n```\n" + schema + "\n```"
}

// ExtractSQL strips code-fence and markdown decoration from an LLM response
// and returns the bare query. Models are told not to fence their output, but
// they do anyway often enough that this is part of the resolver contract.
func ExtractSQL(response string) (string, error) {
	response = strings.TrimSpace(response)

	// Fenced ```sql block first.
	if start := strings.Index(response, "```sql"); start != -1 {
		start += len("```sql")
		if end := strings.Index(response[start:], "```"); end != -1 {
			if sqlText := cleanSQL(response[start : start+end]); sqlText != "" {
				return sqlText, nil
			}
		}
	}

	// Generic fenced block, if the content looks like SQL.
	if start := strings.Index(response, "```"); start != -1 {
		start += len("```")
		if end := strings.Index(response[start:], "```"); end != -1 {
			content := strings.TrimSpace(response[start : start+end])
			if looksLikeSQL(content) {
				return cleanSQL(content), nil
			}
		}
	}

	// Bare response, possibly with dangling fence markers.
	sqlText := cleanSQL(strings.ReplaceAll(strings.ReplaceAll(response, "```sql", ""), "```", ""))
	if sqlText == "" {
		return "", fmt.Errorf("could not extract SQL from response")
	}
	return sqlText, nil
}

func looksLikeSQL(text string) bool {
	upper := strings.ToUpper(strings.TrimSpace(text))
	sqlKeywords := []string{"SELECT", "WITH", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER", "DROP"}
	for _, kw := range sqlKeywords {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

func cleanSQL(sqlText string) string {
	sqlText = strings.TrimSpace(sqlText)
	sqlText = strings.TrimSuffix(sqlText, ";")
	return sqlText
}
