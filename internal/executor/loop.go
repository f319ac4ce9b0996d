// Package executor implements the Execution Loop (§4.G): it classifies a
// request, builds Workflow Memory, and drives step execution to completion,
// handling command chaining, per-item expansion, and escalation to the
// Dynamic Workflow Generation Manager. Grounded on the teacher's
// internal/engine/runner.go Run-loop shape (construct state, iterate,
// dispatch, record, advance).
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soochol/agentcli/internal/memory"
	"github.com/soochol/agentcli/internal/planner"
	"github.com/soochol/agentcli/internal/workflow"
)

// defaultMaxExpansionDepth bounds how many times a single plan step may be
// expanded before it is executed literally as a fallback (§4.G termination
// rule b).
const defaultMaxExpansionDepth = 3

// memoryView narrows *memory.Memory to what identifier substitution needs,
// so it can be exercised with a fake in tests.
type memoryView interface {
	NextUnusedIdentifier(key string) (string, bool)
}

// stepPlanner is the slice of *planner.Planner the loop depends on.
type stepPlanner interface {
	Classify(ctx context.Context, request string) (*planner.Classification, error)
	PlanStep(ctx context.Context, step string, mem *memory.Memory) (*planner.StepPlan, error)
}

// dispatcher is the slice of *workflow.Registry the loop depends on.
type dispatcher interface {
	Execute(ctx context.Context, rawCommand string, extras map[string]any) (*workflow.Result, error)
}

// GenerationOutcome is the result of one generation-manager escalation.
type GenerationOutcome struct {
	Success bool
	Output  string
	Errors  []string
}

// GenerationRecipe names the workflow the generation manager should attempt
// to produce (§4.H).
type GenerationRecipe struct {
	Namespace   string
	Action      string
	Description string
	PromptHint  string
	Command     string
}

// generationManager is the slice of *generate.Manager the loop depends on.
type generationManager interface {
	CanAttempt(key string) bool
	EnsureWorkflow(ctx context.Context, recipe GenerationRecipe, extras map[string]any) (*GenerationOutcome, error)
}

// Loop drives one request from classification to completion.
type Loop struct {
	planner           stepPlanner
	registry          dispatcher
	generator         generationManager
	maxExpansionDepth int
}

// New constructs a Loop. generator may be nil if dynamic generation is
// disabled; NEEDS_NEW_WORKFLOW steps then fail immediately and advance.
func New(p stepPlanner, registry dispatcher, generator generationManager) *Loop {
	return &Loop{planner: p, registry: registry, generator: generator, maxExpansionDepth: defaultMaxExpansionDepth}
}

// Run executes one user request end to end and returns the concatenated
// step outputs (§4.G).
func (l *Loop) Run(ctx context.Context, request string) (string, error) {
	classification, err := l.planner.Classify(ctx, request)
	if err != nil {
		return "", fmt.Errorf("classify request: %w", err)
	}
	if classification.ActionType == planner.ActionLocalAnswer {
		slog.Info("executor: classified as local answer")
		return classification.LocalAnswer, nil
	}
	slog.Info("executor: run starting", "steps", len(classification.StepsPlan))

	mem := memory.New(request, classification.StepsPlan, classification.Categories)

	var outputs []string
	lastStepNumber := -1
	depth := 0

	for !mem.IsComplete() {
		step, ok := mem.CurrentStep()
		if !ok {
			break
		}

		stepNumber := mem.CurrentStepNumber()
		if stepNumber != lastStepNumber {
			depth = 0
			lastStepNumber = stepNumber
		}

		plan, err := l.planner.PlanStep(ctx, step, mem)
		if err != nil {
			return "", fmt.Errorf("plan step %q: %w", step, err)
		}

		switch plan.Kind {
		case planner.StepLocalAnswer:
			mem.AddCompletedStep(step, "(local-answer)", plan.Text)
			outputs = append(outputs, plan.Text)

		case planner.StepExecuteCommand:
			slog.Info("executor: dispatching step", "step_number", stepNumber, "command", plan.Command)
			output := l.runChain(ctx, plan.Command, mem)
			mem.AddCompletedStep(step, plan.Command, output)
			outputs = append(outputs, output)

		case planner.StepNeedsExpansion:
			if len(plan.SubSteps) == 0 {
				mem.AddCompletedStep(step, "(expansion-empty)", step)
				outputs = append(outputs, step)
				continue
			}
			depth++
			if depth > l.maxExpansionDepth {
				slog.Warn("executor: expansion depth exceeded", "step_number", stepNumber, "depth", depth)
				mem.AddCompletedStep(step, "(expansion-depth-exceeded)", step)
				outputs = append(outputs, step)
				continue
			}
			if err := mem.ExpandCurrentStep(plan.SubSteps); err != nil {
				slog.Warn("executor: step expansion failed", "step_number", stepNumber, "err", err)
				mem.AddCompletedStep(step, "(expansion-failed)", err.Error())
				outputs = append(outputs, err.Error())
			}
			// pointer does not advance; loop re-plans the (now different) current step

		case planner.StepNeedsNewWorkflow:
			slog.Info("executor: step needs new workflow", "step_number", stepNumber, "namespace", plan.TargetNamespace, "action", plan.TargetAction)
			succeeded, output := l.escalate(ctx, plan, mem)
			if succeeded {
				// re-plan the same step on the next iteration now that the
				// target workflow is registered; pointer does not advance.
				continue
			}
			slog.Warn("executor: step generation escalation failed", "step_number", stepNumber, "output", output)
			mem.AddCompletedStep(step, "(generation:"+plan.TargetNamespace+":"+plan.TargetAction+")", output)
			outputs = append(outputs, output)

		default:
			slog.Warn("executor: unknown step kind", "step_number", stepNumber)
			mem.AddCompletedStep(step, "(unknown-step-kind)", step)
			outputs = append(outputs, step)
		}
	}

	slog.Info("executor: run complete", "steps_completed", len(outputs))
	return strings.Join(outputs, "\n"), nil
}

// runChain splits command on "&&", substitutes identifier sentinels, and
// dispatches each piece in order against the registry, merging any extras
// the handlers write back into memory context (§4.G).
func (l *Loop) runChain(ctx context.Context, command string, mem *memory.Memory) string {
	parts := strings.Split(command, "&&")
	var results []string

	for _, part := range parts {
		cmd := strings.TrimSpace(part)
		if cmd == "" {
			continue
		}
		cmd = substituteIdentifiers(cmd, mem)

		extras := mem.ContextSnapshot()
		res, err := l.registry.Execute(ctx, cmd, extras)
		if err != nil {
			var notFound *workflow.NotFoundError
			if errors.As(err, &notFound) {
				slog.Warn("executor: command not found, escalating", "command", cmd)
				results = append(results, l.escalateNotFound(ctx, cmd, notFound, mem))
				break
			}
			// execution error: record and stop the chain (§4.G — "do not retry by default")
			slog.Warn("executor: command execution failed", "command", cmd, "err", err)
			results = append(results, err.Error())
			break
		}

		for k, v := range extras {
			mem.SetContext(k, v)
		}
		results = append(results, res.Output)
	}

	return strings.Join(results, "\n")
}

// escalateNotFound routes an unmatched command to the generation manager
// with a best-effort recipe derived from the command's own namespace:name.
func (l *Loop) escalateNotFound(ctx context.Context, command string, notFound *workflow.NotFoundError, mem *memory.Memory) string {
	if l.generator == nil {
		return notFound.Error()
	}
	key := notFound.Namespace + ":" + notFound.Name
	if !l.generator.CanAttempt(key) {
		return "generation attempts exhausted for " + key
	}
	recipe := GenerationRecipe{
		Namespace:   notFound.Namespace,
		Action:      notFound.Name,
		Description: "satisfy command: " + command,
		Command:     command,
	}
	outcome, err := l.generator.EnsureWorkflow(ctx, recipe, mem.ContextSnapshot())
	if err != nil {
		return err.Error()
	}
	if !outcome.Success {
		return strings.Join(outcome.Errors, "; ")
	}
	return outcome.Output
}

// escalate handles a StepNeedsNewWorkflow plan by invoking the generation
// manager with a synthesised target key (§4.G). On success the new workflow
// is registered but not yet dispatched: the caller re-plans the same step on
// its next iteration instead of advancing. On failure it returns the
// collected error text to record as the step's output.
func (l *Loop) escalate(ctx context.Context, plan *planner.StepPlan, mem *memory.Memory) (succeeded bool, output string) {
	if l.generator == nil {
		return false, "dynamic workflow generation is disabled"
	}
	key := plan.TargetNamespace + ":" + plan.TargetAction
	if !l.generator.CanAttempt(key) {
		return false, "generation attempts exhausted for " + key
	}

	recipe := GenerationRecipe{
		Namespace:   plan.TargetNamespace,
		Action:      plan.TargetAction,
		Description: plan.Description,
		PromptHint:  plan.PromptHint,
		Command:     key,
	}
	outcome, err := l.generator.EnsureWorkflow(ctx, recipe, mem.ContextSnapshot())
	if err != nil {
		return false, err.Error()
	}
	if !outcome.Success {
		return false, strings.Join(outcome.Errors, "; ")
	}
	return true, outcome.Output
}
