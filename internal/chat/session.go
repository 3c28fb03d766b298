// Package chat is the interactive front-end: a terminal REPL that keeps
// per-session conversation history and calls the pipeline's two entry
// points. All answering logic lives behind those entry points; this package
// only reads questions and displays responses.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"github.com/saleslens/saleslens/internal/engine"
	"github.com/saleslens/saleslens/internal/pipeline"
)

// Message is one turn of the conversation.
type Message struct {
	ID      uuid.UUID
	Role    string // "user" or "assistant"
	Content string
	At      time.Time
}

// Config holds the configuration for a chat session.
type Config struct {
	Logger   *slog.Logger
	Pipeline *pipeline.Pipeline
	Engine   *engine.Engine

	In  io.Reader // defaults to os.Stdin via the caller
	Out io.Writer
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if cfg.Pipeline == nil {
		return fmt.Errorf("pipeline is required")
	}
	if cfg.Engine == nil {
		return fmt.Errorf("engine is required")
	}
	if cfg.In == nil {
		return fmt.Errorf("input reader is required")
	}
	if cfg.Out == nil {
		return fmt.Errorf("output writer is required")
	}
	return nil
}

// Session is a single interactive conversation.
type Session struct {
	log     *slog.Logger
	cfg     Config
	history []Message
}

// NewSession creates a new chat session.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate session config: %w", err)
	}
	return &Session{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

// History returns the conversation so far.
func (s *Session) History() []Message {
	return s.history
}

func (s *Session) record(role, content string) {
	s.history = append(s.history, Message{
		ID:      uuid.New(),
		Role:    role,
		Content: content,
		At:      time.Now(),
	})
}

// Run reads questions until EOF, /quit, or context cancellation.
func (s *Session) Run(ctx context.Context) error {
	pterm.DefaultHeader.Println("saleslens")
	fmt.Fprintln(s.cfg.Out, "Ask questions about your sales data. Commands: /summary /tables /history /quit")
	fmt.Fprintln(s.cfg.Out, `Try: "What is the total revenue by year?" or "Which city has the highest sales?"`)

	scanner := bufio.NewScanner(s.cfg.In)
	for {
		fmt.Fprint(s.cfg.Out, "\n> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/history":
			s.printHistory()
			continue
		case "/summary":
			s.runSummary(ctx)
			continue
		case "/tables":
			s.runTables(ctx)
			continue
		}

		s.record("user", line)
		spinner, _ := pterm.DefaultSpinner.Start("Analyzing...")
		answer := s.cfg.Pipeline.ProcessQuery(ctx, line)
		if spinner != nil {
			_ = spinner.Stop()
		}
		s.record("assistant", answer)
		fmt.Fprintln(s.cfg.Out, answer)
	}
}

func (s *Session) printHistory() {
	if len(s.history) == 0 {
		fmt.Fprintln(s.cfg.Out, "No messages yet.")
		return
	}
	for _, msg := range s.history {
		fmt.Fprintf(s.cfg.Out, "[%s] %s: %s\n", msg.At.Format("15:04:05"), msg.Role, msg.Content)
	}
}

func (s *Session) runSummary(ctx context.Context) {
	spinner, _ := pterm.DefaultSpinner.Start("Generating summary...")
	summary := s.cfg.Pipeline.GenerateSummary(ctx)
	if spinner != nil {
		_ = spinner.Stop()
	}
	s.record("assistant", summary)
	fmt.Fprintln(s.cfg.Out, summary)
}
