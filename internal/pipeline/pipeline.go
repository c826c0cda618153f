package pipeline

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// Step is one stage of the anonymization pipeline. Steps run in sequence;
// each receives the result accumulated by earlier steps.
type Step interface {
	// Do executes the step. A returned error aborts the pipeline; steps
	// recover internally from everything the design treats as
	// non-fatal and record degradation in the result instead.
	Do(ctx context.Context, result *model.ProcessResult) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline. Steps are added with AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps in execution order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Execute runs all steps in sequence. Cancellation is checked between
// steps only: once a stage starts it runs to completion, which keeps the
// result deterministic for a given input.
func (p *Pipeline) Execute(ctx context.Context, result *model.ProcessResult) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"session", result.SessionID,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"session", result.SessionID,
		)

		if err := step.Do(ctx, result); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"session", result.SessionID,
				"error", err,
			)
			return err
		}

		result.CompletedSteps = append(result.CompletedSteps, step.Name())
	}

	return nil
}
