// cmd/reviewagent/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/config"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/output"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/provider"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/resolve"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/review"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/store"

	// Register providers via init() side effects.
	_ "github.com/Jatin-Roopchandani/agent-service-code-review/internal/provider/anthropic"
	_ "github.com/Jatin-Roopchandani/agent-service-code-review/internal/provider/openai"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath   string
	modelFlag    string
	providerFlag string
	outputFlag   string
	envFileFlag  string
	timeoutFlag  time.Duration
	noStoreFlag  bool
	verboseFlag  bool

	prURLFlag    string
	issueURLFlag string
	limitFlag    int
)

func versionString() string {
	return fmt.Sprintf("reviewagent %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "reviewagent",
		Short:         "LLM-driven PR review and issue resolution",
		Long:          "reviewagent — automates GitHub PR code review and issue resolution using LLM-driven workflows.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "override model name")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "override provider name")
	rootCmd.PersistentFlags().StringVar(&outputFlag, "output", "json", "output format: json, markdown")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "path to .env file")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "run timeout (0 = config default)")
	rootCmd.PersistentFlags().BoolVar(&noStoreFlag, "no-store", false, "do not record the run in the history store")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "enable debug logging")

	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Review a GitHub pull request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkflow(cmd.Context(), "review", prURLFlag)
		},
	}
	reviewCmd.Flags().StringVar(&prURLFlag, "pr-url", "", "GitHub PR URL to review")
	reviewCmd.MarkFlagRequired("pr-url")

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a GitHub issue and open a PR",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkflow(cmd.Context(), "resolve", issueURLFlag)
		},
	}
	resolveCmd.Flags().StringVar(&issueURLFlag, "issue-url", "", "GitHub issue URL to resolve")
	resolveCmd.MarkFlagRequired("issue-url")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		RunE: func(_ *cobra.Command, _ []string) error {
			return listRuns()
		},
	}
	runsCmd.Flags().IntVar(&limitFlag, "limit", 20, "maximum number of runs to list")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(versionString())
		},
	}

	rootCmd.AddCommand(reviewCmd, resolveCmd, runsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger configures the process-wide structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig resolves the config path, loads the config, and applies flag
// overrides.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(envFileFlag); err != nil {
		return nil, err
	}

	cfgPath := configPath
	if cfgPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgPath = filepath.Join(home, ".config", "reviewagent", "config.toml")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if modelFlag != "" {
		cfg.Provider.Model = modelFlag
	}
	if providerFlag != "" {
		cfg.Provider.Default = providerFlag
	}
	if noStoreFlag {
		cfg.Store.Disabled = true
	}
	return cfg, nil
}

// newFormatter returns the output formatter selected by --output.
func newFormatter() (output.Formatter, error) {
	switch outputFlag {
	case "json":
		return output.NewJSONFormatter(), nil
	case "markdown":
		return output.NewMarkdownFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", outputFlag)
	}
}

// storePath returns the history database location, defaulting to the
// user config directory.
func storePath(cfg *config.Config) (string, error) {
	if cfg.Store.Path != "" {
		return cfg.Store.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "reviewagent")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return filepath.Join(dir, "runs.db"), nil
}

// runWorkflow executes one workflow run end to end: build the provider,
// run the pipeline, print the terminal record, and record it in history.
// A logically failed run still prints its record and exits 0; only
// configuration and plumbing errors return an error.
func runWorkflow(ctx context.Context, name, entryURL string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	p, err := provider.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	timeout := timeoutFlag
	if timeout == 0 && cfg.Agent.TimeoutSec > 0 {
		timeout = time.Duration(cfg.Agent.TimeoutSec) * time.Second
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var result *output.RunResult
	switch name {
	case "review":
		result = review.New(p, cfg, workDir, logger).Run(ctx, entryURL)
	case "resolve":
		result = resolve.New(p, cfg, workDir, logger).Run(ctx, entryURL)
	default:
		return fmt.Errorf("unknown workflow: %q", name)
	}

	recordRun(cfg, logger, result)

	formatted, err := formatter.Format(result)
	if err != nil {
		return fmt.Errorf("formatting result: %w", err)
	}
	fmt.Println(string(formatted))
	return nil
}

// recordRun persists the terminal record. History is best effort: a store
// failure is logged, never surfaced as a run failure.
func recordRun(cfg *config.Config, logger *slog.Logger, result *output.RunResult) {
	if cfg.Store.Disabled {
		return
	}
	path, err := storePath(cfg)
	if err != nil {
		logger.Warn("run not recorded", "error", err)
		return
	}
	st, err := store.NewStore(path)
	if err != nil {
		logger.Warn("run not recorded", "error", err)
		return
	}
	defer st.Close()
	if err := st.RecordRun(result); err != nil {
		logger.Warn("run not recorded", "error", err)
	}
}

// listRuns prints recent run history, most recent first.
func listRuns() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := storePath(cfg)
	if err != nil {
		return err
	}
	st, err := store.NewStore(path)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer st.Close()

	records, err := st.ListRuns(limitFlag)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		line := fmt.Sprintf("%s  %s  %-7s  %-6s  %s",
			r.CreatedAt.Format(time.RFC3339), r.ID, r.Workflow, status, r.EntryURL)
		if !r.Success && r.Error != "" {
			line += "  (" + r.Error + ")"
		}
		fmt.Println(line)
	}
	return nil
}
