package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/agent"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/config"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/output"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/provider"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/tools"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/workflow"
)

// State keys committed by the resolve stages. The implement_changes stage
// declares no output key: its result is the edited working tree.
const (
	keyIssueDetails workflow.Key = "issue_details"
	keyAnalysis     workflow.Key = "analysis"
	keyPROutput     workflow.Key = "pr_output"
)

// branchPrefix is prepended to the branch name of every generated fix.
const branchPrefix = "patchwork-resolve-issue-"

// editPrograms is the allowlist for the implementation stage: read,
// search, and file manipulation commands only.
var editPrograms = []string{"sed", "cat", "grep", "find", "ls", "wc", "cp", "mv", "rm", "mkdir", "touch"}

// Workflow runs the four-stage issue resolution pipeline: fetch the issue,
// analyze the repository, implement the fix, and open a PR.
type Workflow struct {
	provider provider.LLMProvider
	cfg      *config.Config
	workDir  string
	limiter  *rate.Limiter
	logger   *slog.Logger

	// checkAuth runs the GitHub CLI preflight. Defaults to CheckGHAuth.
	checkAuth func(ctx context.Context) error
}

// New creates a resolve workflow rooted at workDir, which must be the
// checkout the fix is applied to.
func New(p provider.LLMProvider, cfg *config.Config, workDir string, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.NewLimiter(rate.Inf, 1)
	if cfg.Agent.RequestsPerMin > 0 {
		limit = rate.NewLimiter(rate.Limit(cfg.Agent.RequestsPerMin/60), 1)
	}
	return &Workflow{
		provider:  p,
		cfg:       cfg,
		workDir:   workDir,
		limiter:   limit,
		logger:    logger,
		checkAuth: CheckGHAuth,
	}
}

// ValidateIssueURL reports whether the URL points at github.com. The
// issue number and repo path are handed to gh as-is; only the host is
// checked up front.
func ValidateIssueURL(issueURL string) bool {
	return strings.HasPrefix(issueURL, "https://github.com/")
}

// CheckGHAuth verifies that the GitHub CLI is authenticated before any
// stage runs. Resolution cannot get past stage one without it, and failing
// early gives a clearer message than a mid-run gh error.
func CheckGHAuth(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "gh", "auth", "status")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("GitHub is not authenticated, run `gh auth login` or set the GH_TOKEN environment variable")
	}
	return nil
}

// Run executes the resolution pipeline against the issue and returns its
// terminal record.
func (w *Workflow) Run(ctx context.Context, issueURL string) *output.RunResult {
	start := time.Now()
	res := &output.RunResult{RunID: uuid.New().String(), Workflow: "resolve", EntryURL: issueURL}

	if !ValidateIssueURL(issueURL) {
		return w.fail(res, "issue_url must start with https://github.com/", start)
	}
	if err := w.checkAuth(ctx); err != nil {
		return w.fail(res, err.Error(), start)
	}

	state := workflow.NewState()
	state.RunID = res.RunID
	w.logger.Info("resolve run starting", "run_id", state.RunID, "issue_url", issueURL)

	stages := []workflow.Stage{
		w.issueDetailsStage(issueURL),
		w.analyzeIssueStage(issueURL),
		w.implementChangesStage(issueURL),
		w.createPRStage(issueURL),
	}

	orch := workflow.NewOrchestrator(stages, w.logger)
	if err := orch.Execute(ctx, state); err != nil {
		return w.fail(res, err.Error(), start)
	}

	summary, err := workflow.Decode[string](state, keyPROutput)
	if err != nil {
		return w.fail(res, err.Error(), start)
	}

	res.Success = true
	res.Summary = summary
	res.DurationMs = time.Since(start).Milliseconds()
	w.logger.Info("resolve run complete", "run_id", state.RunID)
	return res
}

func (w *Workflow) fail(res *output.RunResult, msg string, start time.Time) *output.RunResult {
	res.Success = false
	res.Error = msg
	res.Summary = ""
	res.DurationMs = time.Since(start).Milliseconds()
	w.logger.Error("resolve run failed", "run_id", res.RunID, "error", msg)
	return res
}

func (w *Workflow) newAgent(toolset []tools.Tool) (*agent.Agent, error) {
	registry := tools.NewRegistry()
	for _, t := range toolset {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("registering tool: %w", err)
		}
	}
	return agent.New(w.provider, registry, w.cfg,
		agent.WithLimiter(w.limiter),
		agent.WithLogger(w.logger)), nil
}

// runStage runs one agent task and commits its text output under key.
// Empty output leaves the key unset so the orchestrator postcondition
// reports the failure.
func (w *Workflow) runStage(ctx context.Context, state *workflow.State, toolset []tools.Tool, key workflow.Key, system, instruction string) error {
	ag, err := w.newAgent(toolset)
	if err != nil {
		return err
	}
	text, err := ag.Run(ctx, system, instruction)
	if err != nil {
		return err
	}
	if key == "" || strings.TrimSpace(text) == "" {
		return nil
	}
	return state.Set(key, text)
}

func (w *Workflow) issueDetailsStage(issueURL string) workflow.Stage {
	return workflow.Stage{
		Name:   "get_issue_details",
		Output: keyIssueDetails,
		Run: func(ctx context.Context, state *workflow.State) error {
			ghTools := tools.NewCommandTools(w.workDir, []string{"gh"}, w.cfg.Tools.OutputBudget)
			return w.runStage(ctx, state, ghTools, keyIssueDetails,
				issueDetailsSystem, issueDetailsInstruction(issueURL))
		},
	}
}

func (w *Workflow) analyzeIssueStage(issueURL string) workflow.Stage {
	return workflow.Stage{
		Name:   "analyze_issue",
		Output: keyAnalysis,
		Run: func(ctx context.Context, state *workflow.State) error {
			details, err := workflow.Decode[string](state, keyIssueDetails)
			if err != nil {
				return err
			}
			return w.runStage(ctx, state, tools.NewSearchTools(w.workDir), keyAnalysis,
				analyzeIssueSystem, analyzeIssueInstruction(issueURL, details))
		},
	}
}

func (w *Workflow) implementChangesStage(issueURL string) workflow.Stage {
	return workflow.Stage{
		Name: "implement_changes",
		Run: func(ctx context.Context, state *workflow.State) error {
			details, err := workflow.Decode[string](state, keyIssueDetails)
			if err != nil {
				return err
			}
			analysis, err := workflow.Decode[string](state, keyAnalysis)
			if err != nil {
				return err
			}
			editTools := tools.NewCommandTools(w.workDir, editPrograms, w.cfg.Tools.OutputBudget)
			return w.runStage(ctx, state, editTools, "",
				implementChangesSystem, implementChangesInstruction(issueURL, details, analysis))
		},
	}
}

func (w *Workflow) createPRStage(issueURL string) workflow.Stage {
	return workflow.Stage{
		Name:   "create_pr",
		Output: keyPROutput,
		Run: func(ctx context.Context, state *workflow.State) error {
			details, err := workflow.Decode[string](state, keyIssueDetails)
			if err != nil {
				return err
			}
			vcsTools := tools.NewCommandTools(w.workDir, []string{"gh", "git"}, w.cfg.Tools.OutputBudget)
			return w.runStage(ctx, state, vcsTools, keyPROutput,
				createPRSystem, createPRInstruction(issueURL, details))
		},
	}
}
