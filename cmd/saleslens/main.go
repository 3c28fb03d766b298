// saleslens answers natural-language questions about sales CSV exports by
// translating them to SQL against an embedded DuckDB database and
// summarizing the results.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/saleslens/saleslens/internal/chat"
	"github.com/saleslens/saleslens/internal/engine"
	"github.com/saleslens/saleslens/internal/etl"
	"github.com/saleslens/saleslens/internal/llm"
	"github.com/saleslens/saleslens/internal/pipeline"
	"github.com/saleslens/saleslens/internal/resolver"
	"github.com/saleslens/saleslens/internal/summarizer"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultModel     = string(anthropic.ModelClaudeSonnet4_5_20250929)
	defaultMaxTokens = 4096
)

var (
	verboseFlag        bool
	dataFlag           []string
	dbPathFlag         string
	modelFlag          string
	maxTokensFlag      int64
	intlDateFormatFlag string
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; the SDK reads ANTHROPIC_API_KEY from the environment.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "saleslens",
		Short:         "Natural-language analytics over sales CSV exports",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var pf *flag.FlagSet = root.PersistentFlags()
	pf.BoolVar(&verboseFlag, "verbose", false, "enable verbose (debug) logging")
	pf.StringSliceVar(&dataFlag, "data", nil, "sales CSV file(s) to load")
	pf.StringVar(&dbPathFlag, "db", "", "DuckDB database file (default in-memory)")
	pf.StringVar(&modelFlag, "model", defaultModel, "Anthropic model id")
	pf.Int64Var(&maxTokensFlag, "max-tokens", defaultMaxTokens, "max tokens per LLM completion")
	pf.StringVar(&intlDateFormatFlag, "intl-date-format", etl.DateFormatMMDDYY,
		fmt.Sprintf("date interpretation for international sales files (%s or %s)", etl.DateFormatMMDDYY, etl.DateFormatDDMMYY))

	root.AddCommand(newAskCmd(), newChatCmd(), newReportCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return root.ExecuteContext(ctx)
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			answer := app.pipeline.ProcessQuery(cmd.Context(), strings.Join(args, " "))
			fmt.Println(answer)
			return nil
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question-answering session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			session, err := chat.NewSession(chat.Config{
				Logger:   app.log,
				Pipeline: app.pipeline,
				Engine:   app.engine,
				In:       os.Stdin,
				Out:      os.Stdout,
			})
			if err != nil {
				return err
			}
			return session.Run(cmd.Context())
		},
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Generate an executive summary of the loaded data",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Println(app.pipeline.GenerateSummary(cmd.Context()))
			return nil
		},
	}
}

type app struct {
	log      *slog.Logger
	engine   *engine.Engine
	pipeline *pipeline.Pipeline
}

func (a *app) Close() {
	if err := a.engine.Close(); err != nil {
		a.log.Error("failed to close engine", "error", err)
	}
}

func buildApp(ctx context.Context) (*app, error) {
	log := newLogger(verboseFlag)

	if len(dataFlag) == 0 {
		return nil, fmt.Errorf("no data files provided (use --data)")
	}

	eng, err := engine.New(engine.Config{Logger: log, Path: dbPathFlag})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	loader, err := etl.New(etl.Config{
		Logger:         log,
		DB:             eng.DB(),
		IntlDateFormat: intlDateFormatFlag,
	})
	if err != nil {
		eng.Close()
		return nil, fmt.Errorf("failed to create loader: %w", err)
	}
	if err := loader.Load(ctx, dataFlag...); err != nil {
		eng.Close()
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	completer := llm.NewAnthropicClient(log, anthropic.Model(modelFlag), maxTokensFlag)

	res, err := resolver.New(resolver.Config{Logger: log, LLM: completer})
	if err != nil {
		eng.Close()
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}
	summ, err := summarizer.New(summarizer.Config{Logger: log, LLM: completer})
	if err != nil {
		eng.Close()
		return nil, fmt.Errorf("failed to create summarizer: %w", err)
	}

	pipe, err := pipeline.New(pipeline.Config{
		Logger:     log,
		Engine:     eng,
		Resolver:   res,
		Summarizer: summ,
	})
	if err != nil {
		eng.Close()
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return &app{log: log, engine: eng, pipeline: pipe}, nil
}

func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				t := a.Value.Time().UTC()
				a.Value = slog.StringValue(formatRFC3339Millis(t))
			}
			if s, ok := a.Value.Any().(string); ok && s == "" {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func formatRFC3339Millis(t time.Time) string {
	t = t.UTC()
	base := t.Format("2006-01-02T15:04:05")
	ms := t.Nanosecond() / 1_000_000
	return fmt.Sprintf("%s.%03dZ", base, ms)
}
