package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
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

// State keys committed by the review stages.
const (
	keyBaseClusters   workflow.Key = "base_clusters"
	keyFilteredReview workflow.Key = "reviewed_review"
	keyOutput         workflow.Key = "output"
)

// reviewKey returns the state key for the i-th cluster review.
func reviewKey(i int) workflow.Key {
	return workflow.Key(fmt.Sprintf("review_%d", i))
}

// Workflow runs the four-stage code review pipeline: fetch and cluster the
// PR diffs, review each cluster in order, filter the findings into a
// summary, and post the summary back to the PR.
type Workflow struct {
	provider provider.LLMProvider
	cfg      *config.Config
	workDir  string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New creates a review workflow. All LLM calls made by the run share one
// rate limiter sized from the configured requests-per-minute budget.
func New(p provider.LLMProvider, cfg *config.Config, workDir string, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		provider: p,
		cfg:      cfg,
		workDir:  workDir,
		limiter:  newLimiter(cfg.Agent.RequestsPerMin),
		logger:   logger,
	}
}

func newLimiter(requestsPerMin float64) *rate.Limiter {
	if requestsPerMin <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(requestsPerMin/60), 1)
}

// ValidatePRURL reports whether the URL is a well-formed GitHub pull
// request URL: https://github.com/{owner}/{repo}/pull/{number}.
func ValidatePRURL(prURL string) bool {
	if prURL == "" {
		return false
	}
	parsed, err := url.Parse(prURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "https" || parsed.Host != "github.com" {
		return false
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) != 4 || parts[2] != "pull" {
		return false
	}
	if _, err := strconv.Atoi(parts[3]); err != nil {
		return false
	}
	return true
}

// Run executes the review pipeline against the PR and returns its terminal
// record. The returned result is never nil; a failed run carries the error
// message and no payload.
func (w *Workflow) Run(ctx context.Context, prURL string) *output.RunResult {
	start := time.Now()
	res := &output.RunResult{RunID: uuid.New().String(), Workflow: "review", EntryURL: prURL}

	if !ValidatePRURL(prURL) {
		return w.fail(res, "invalid pr_url format", start)
	}

	state := workflow.NewState()
	state.RunID = res.RunID
	w.logger.Info("review run starting", "run_id", state.RunID, "pr_url", prURL)

	// Stage 1: fetch and cluster the diffs.
	orch := workflow.NewOrchestrator([]workflow.Stage{w.fetchClusterStage(prURL)}, w.logger)
	if err := orch.Execute(ctx, state); err != nil {
		return w.fail(res, err.Error(), start)
	}

	clusters, err := decodeClusters(state)
	if err != nil {
		return w.fail(res, "no clusters found", start)
	}

	// Stages 2..n+1: review each cluster in index order, then filter and post.
	stages := make([]workflow.Stage, 0, len(clusters.Clusters)+2)
	for i, cluster := range clusters.Clusters {
		stages = append(stages, w.reviewClusterStage(i, cluster))
	}
	stages = append(stages, w.filterReviewsStage(len(clusters.Clusters)))
	stages = append(stages, w.postCommentStage(prURL))

	orch = workflow.NewOrchestrator(stages, w.logger)
	if err := orch.Execute(ctx, state); err != nil {
		return w.fail(res, err.Error(), start)
	}

	reviews, err := collectReviews(state, len(clusters.Clusters))
	if err != nil {
		return w.fail(res, err.Error(), start)
	}
	summary, err := workflow.Decode[string](state, keyFilteredReview)
	if err != nil {
		return w.fail(res, "review filtering failed", start)
	}

	res.Success = true
	res.Summary = summary
	res.Clusters, _ = json.Marshal(clusters)
	res.Reviews, _ = json.Marshal(reviews)
	res.DurationMs = time.Since(start).Milliseconds()
	w.logger.Info("review run complete", "run_id", state.RunID, "clusters", len(clusters.Clusters))
	return res
}

// fail finalizes a failed run: error message set, payload fields nil.
func (w *Workflow) fail(res *output.RunResult, msg string, start time.Time) *output.RunResult {
	res.Success = false
	res.Error = msg
	res.Clusters = nil
	res.Reviews = nil
	res.Summary = ""
	res.DurationMs = time.Since(start).Milliseconds()
	w.logger.Error("review run failed", "run_id", res.RunID, "error", msg)
	return res
}

// newAgent builds an agent over the given toolset. An empty toolset yields
// a reason-only agent.
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

func (w *Workflow) fetchClusterStage(prURL string) workflow.Stage {
	return workflow.Stage{
		Name:   "fetch_cluster",
		Output: keyBaseClusters,
		Run: func(ctx context.Context, state *workflow.State) error {
			ag, err := w.newAgent(tools.NewCommandTools(w.workDir, []string{"gh"}, w.cfg.Tools.OutputBudget))
			if err != nil {
				return err
			}
			text, err := ag.Run(ctx, fetchClusterSystem, fetchClusterInstruction(prURL))
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return nil // postcondition check reports the missing key
			}
			return state.Set(keyBaseClusters, text)
		},
	}
}

func (w *Workflow) reviewClusterStage(index int, cluster Cluster) workflow.Stage {
	return workflow.Stage{
		Name:   fmt.Sprintf("review_cluster_%d", index),
		Output: reviewKey(index),
		Run: func(ctx context.Context, state *workflow.State) error {
			ag, err := w.newAgent(tools.NewSearchTools(w.workDir))
			if err != nil {
				return err
			}
			text, err := ag.Run(ctx, reviewClusterSystem, reviewClusterInstruction(index, cluster))
			if err != nil {
				return fmt.Errorf("review failed for cluster %d: %w", index, err)
			}

			var parsed ClusterReview
			if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
				return fmt.Errorf("review failed for cluster %d: %w", index, err)
			}
			return state.Set(reviewKey(index), parsed)
		},
	}
}

func (w *Workflow) filterReviewsStage(clusterCount int) workflow.Stage {
	return workflow.Stage{
		Name:   "filter_reviews",
		Output: keyFilteredReview,
		Run: func(ctx context.Context, state *workflow.State) error {
			reviews, err := collectReviews(state, clusterCount)
			if err != nil {
				return err
			}
			// Curation is pure reasoning over prior state; no tools.
			ag, err := w.newAgent(nil)
			if err != nil {
				return err
			}
			text, err := ag.Run(ctx, filterReviewsSystem, filterReviewsInstruction(reviews))
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return nil
			}
			return state.Set(keyFilteredReview, text)
		},
	}
}

func (w *Workflow) postCommentStage(prURL string) workflow.Stage {
	return workflow.Stage{
		Name:   "post_comment",
		Output: keyOutput,
		Run: func(ctx context.Context, state *workflow.State) error {
			summary, err := workflow.Decode[string](state, keyFilteredReview)
			if err != nil {
				return err
			}
			ag, err := w.newAgent(tools.NewCommandTools(w.workDir, []string{"gh"}, w.cfg.Tools.OutputBudget))
			if err != nil {
				return err
			}
			text, err := ag.Run(ctx, postCommentSystem, postCommentInstruction(prURL, summary))
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return nil
			}
			return state.Set(keyOutput, text)
		},
	}
}

// decodeClusters reads and parses the clustering stage output. The stage
// stores the model's raw text; an unparsable payload is treated the same
// as a missing one.
func decodeClusters(state *workflow.State) (ClusterSet, error) {
	text, err := workflow.Decode[string](state, keyBaseClusters)
	if err != nil {
		return ClusterSet{}, err
	}

	var set ClusterSet
	if err := json.Unmarshal([]byte(extractJSON(text)), &set); err != nil {
		return ClusterSet{}, fmt.Errorf("parsing clusters: %w", err)
	}
	if len(set.Clusters) == 0 {
		return ClusterSet{}, fmt.Errorf("no clusters found")
	}
	return set, nil
}

// collectReviews gathers the per-cluster reviews committed by the fan-out
// stages, in cluster index order.
func collectReviews(state *workflow.State, clusterCount int) ([]ClusterReview, error) {
	reviews := make([]ClusterReview, 0, clusterCount)
	for i := 0; i < clusterCount; i++ {
		r, err := workflow.Decode[ClusterReview](state, reviewKey(i))
		if err != nil {
			return nil, fmt.Errorf("review failed for cluster %d: %w", i, err)
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}

// extractJSON strips a surrounding markdown code fence, if present, from
// model output expected to be JSON.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
