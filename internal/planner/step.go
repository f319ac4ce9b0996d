package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soochol/agentcli/internal/llm"
	"github.com/soochol/agentcli/internal/memory"
)

type stepJSON struct {
	Kind            string   `json:"kind"`
	Text            string   `json:"text"`
	Command         string   `json:"command"`
	SubSteps        []string `json:"sub_steps"`
	TargetNamespace string   `json:"target_namespace"`
	TargetAction    string   `json:"target_action"`
	Description     string   `json:"description"`
	PromptHint      string   `json:"prompt_hint"`
}

// PlanStep decides how to carry out one step of an already-classified plan
// (§4.F.2): prompts with the step instruction, the category-scoped command
// reference (cached per registry generation), and the memory summary.
func (p *Planner) PlanStep(ctx context.Context, step string, mem *memory.Memory) (*StepPlan, error) {
	commands := p.cache.render(p.registry, mem.Categories())

	prompt := stepPrompt
	prompt = strings.ReplaceAll(prompt, "{{step}}", step)
	prompt = strings.ReplaceAll(prompt, "{{commands}}", commands)
	prompt = strings.ReplaceAll(prompt, "{{memory}}", mem.SummaryText())

	rawText, ok := p.local.Generate(ctx, prompt, p.plannerProfile, "")
	if !ok {
		return nil, &llm.TransportError{Transport: "cli", Err: fmt.Errorf("step executor produced no output")}
	}

	jsonText, err := stripAndExtract(rawText)
	if err != nil {
		return nil, fmt.Errorf("plan step %q: %w", step, err)
	}

	var parsed stepJSON
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, fmt.Errorf("plan step %q: decode step JSON: %w", step, err)
	}

	return &StepPlan{
		Kind:            StepKind(parsed.Kind),
		Text:            parsed.Text,
		Command:         parsed.Command,
		SubSteps:        parsed.SubSteps,
		TargetNamespace: parsed.TargetNamespace,
		TargetAction:    parsed.TargetAction,
		Description:     parsed.Description,
		PromptHint:      parsed.PromptHint,
	}, nil
}
