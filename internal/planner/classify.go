package planner

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/soochol/agentcli/internal/llm"
	"github.com/soochol/agentcli/internal/workflow"
)

//go:embed prompts/classify-fast.md
var classifyFastPrompt string

//go:embed prompts/classify-full.md
var classifyFullPrompt string

//go:embed prompts/step.md
var stepPrompt string

// localGenerator is the slice of *llm.LocalClient the planner depends on,
// narrowed to an interface so classifier/step-executor behaviour can be
// tested without a real CLI or HTTP backend.
type localGenerator interface {
	Generate(ctx context.Context, prompt string, profile llm.Profile, model string) (string, bool)
}

// Planner implements the Tiered Planner (§4.F) over a local model.
type Planner struct {
	local             localGenerator
	classifierProfile llm.Profile
	plannerProfile    llm.Profile
	registry          *workflow.Registry
	cache             *commandCache
}

// New constructs a Planner. classifierProfile is used for both classifier
// stages; plannerProfile is used for the per-step executor prompt.
func New(local localGenerator, classifierProfile, plannerProfile llm.Profile, registry *workflow.Registry) *Planner {
	return &Planner{
		local:             local,
		classifierProfile: classifierProfile,
		plannerProfile:    plannerProfile,
		registry:          registry,
		cache:             newCommandCache(),
	}
}

type fullClassifyJSON struct {
	ActionType      string   `json:"action_type"`
	Categories      []string `json:"categories"`
	StepsPlan       []string `json:"steps_plan"`
	NeedsSequential bool     `json:"needs_sequential"`
	Reasoning       string   `json:"reasoning"`
}

// Classify decides what to do with a whole request (§4.F.1): a fast
// reasoning-only check first, then — only if that check declines — a full
// JSON classifier naming categories and a steps plan.
func (p *Planner) Classify(ctx context.Context, request string) (*Classification, error) {
	fastText, ok := p.local.Generate(ctx, classifyFastPrompt+"\n\nUser request:\n"+request, p.classifierProfile, "")
	if ok {
		if answer, isLocal := parseFastCheck(fastText); isLocal {
			return &Classification{ActionType: ActionLocalAnswer, LocalAnswer: answer}, nil
		}
	}

	namespaces := p.registry.Namespaces()
	prompt := strings.ReplaceAll(classifyFullPrompt, "{{namespaces}}", strings.Join(namespaces, ", "))

	rawText, ok := p.local.Generate(ctx, prompt+"\n\nUser request:\n"+request, p.classifierProfile, "")
	if !ok {
		return nil, &llm.TransportError{Transport: "cli", Err: fmt.Errorf("classifier produced no output")}
	}

	jsonText, err := stripAndExtract(rawText)
	if err != nil {
		return nil, fmt.Errorf("classify %q: %w", request, err)
	}

	var parsed fullClassifyJSON
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, fmt.Errorf("classify %q: decode classifier JSON: %w", request, err)
	}

	result := &Classification{
		ActionType:      ActionType(parsed.ActionType),
		Categories:      parsed.Categories,
		StepsPlan:       parsed.StepsPlan,
		NeedsSequential: parsed.NeedsSequential,
		Reasoning:       parsed.Reasoning,
	}
	if result.ActionType != ActionWorkflowExecution {
		result.ActionType = ActionLocalAnswer
	}
	sort.Strings(result.Categories)
	return result, nil
}

type fastCheckJSON struct {
	NeedsHelp bool   `json:"needs_help"`
	Answer    string `json:"answer"`
}

// parseFastCheck decodes the fast-check prompt's {"needs_help", "answer"}
// contract. A malformed or non-JSON response is treated as "needs help" so
// the request safely falls through to the full classifier.
func parseFastCheck(text string) (answer string, isLocal bool) {
	jsonText, err := stripAndExtract(text)
	if err != nil {
		return "", false
	}
	var parsed fastCheckJSON
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return "", false
	}
	if parsed.NeedsHelp {
		return "", false
	}
	return parsed.Answer, true
}
