package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Stage is a single step of a workflow. Run reads its inputs from the state
// and writes its result under Output. A stage with an empty Output key makes
// its effects externally (for example through version control) and the
// engine skips the postcondition check.
type Stage struct {
	Name   string
	Output Key
	Run    func(ctx context.Context, state *State) error
}

// Orchestrator executes stages strictly in order. The first failure stops
// the run; there are no retries and no partial results.
type Orchestrator struct {
	stages []Stage
	logger *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given stages.
func NewOrchestrator(stages []Stage, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{stages: stages, logger: logger}
}

// Execute runs each stage in sequence against the state. After a stage
// returns, its declared output key must be present; a stage that completed
// without producing its output is as much a failure as one that returned
// an error. A panic inside a stage is captured and reported as that
// stage's failure.
func (o *Orchestrator) Execute(ctx context.Context, state *State) error {
	for _, stage := range o.stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}

		start := time.Now()
		o.logger.Info("stage starting", "run_id", state.RunID, "stage", stage.Name)

		if err := o.runStage(ctx, stage, state); err != nil {
			o.logger.Error("stage failed",
				"run_id", state.RunID,
				"stage", stage.Name,
				"duration", time.Since(start),
				"error", err)
			return err
		}

		if stage.Output != "" && !state.Has(stage.Output) {
			err := fmt.Errorf("stage %s completed without producing %q", stage.Name, stage.Output)
			o.logger.Error("stage failed", "run_id", state.RunID, "stage", stage.Name, "error", err)
			return err
		}

		o.logger.Info("stage complete",
			"run_id", state.RunID,
			"stage", stage.Name,
			"duration", time.Since(start))
	}
	return nil
}

// runStage invokes the stage function with panic capture.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage, state *State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage %s panicked: %v", stage.Name, r)
		}
	}()

	if err := stage.Run(ctx, state); err != nil {
		return fmt.Errorf("stage %s: %w", stage.Name, err)
	}
	return nil
}
