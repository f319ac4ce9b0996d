// Package generate implements the Dynamic Workflow Generation Manager
// (§4.H): on demand, produce and install a new workflow satisfying a
// command no registered workflow can handle. Directly grounded on the
// teacher's internal/generate/workflow.go and generate.go — the same
// generate-then-validate-then-strip-hallucinations pipeline, retargeted from
// "produce a WorkflowDefinition DAG JSON" to "produce Go source plus a
// structured op-list for one workflow module", since Go has no safe runtime
// eval or dynamic import (see Open Question 3 in DESIGN.md).
package generate

import (
	_ "embed"
	"context"
	"encoding/json"
	"fmt"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/soochol/agentcli/internal/executor"
	"github.com/soochol/agentcli/internal/safety"
	"github.com/soochol/agentcli/internal/workflow"
)

//go:embed prompts/generate-workflow.md
var generationPromptTemplate string

// remoteGenerator is the slice of *llm.RemoteClient the manager depends on.
type remoteGenerator interface {
	IsConfigured() bool
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GenResult is the JSON document a remote model returns for one generation
// attempt (§4.B).
type GenResult struct {
	ModuleCode string      `json:"module_code"`
	Summary    string      `json:"summary"`
	Notes      []string    `json:"notes"`
	Tests      []string    `json:"tests"`
	OpList     []Operation `json:"op_list"`
}

type attemptRecord struct {
	count  int
	errors []string
}

type generationMeta struct {
	Key     string   `yaml:"key"`
	Attempt int      `yaml:"attempt"`
	Summary string   `yaml:"summary"`
	Notes   []string `yaml:"notes"`
	Tests   []string `yaml:"tests"`
}

// Manager bounds generation attempts per target key and hot-loads
// successful results into the registry (§3 "Generation attempt record").
type Manager struct {
	remote       remoteGenerator
	registry     *workflow.Registry
	generatedDir string
	maxAttempts  int

	mu       sync.Mutex
	attempts map[string]*attemptRecord
}

// New constructs a Manager. maxAttempts bounds retries per target key
// (spec default: small, e.g. 1-3).
func New(remote remoteGenerator, registry *workflow.Registry, generatedDir string, maxAttempts int) *Manager {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Manager{
		remote:       remote,
		registry:     registry,
		generatedDir: generatedDir,
		maxAttempts:  maxAttempts,
		attempts:     make(map[string]*attemptRecord),
	}
}

// CanAttempt reports whether key has attempts remaining.
func (m *Manager) CanAttempt(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.attempts[key]
	return !ok || rec.count < m.maxAttempts
}

func (m *Manager) recordAttempt(key, errMsg string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.attempts[key]
	if !ok {
		rec = &attemptRecord{}
		m.attempts[key] = rec
	}
	rec.count++
	if errMsg != "" {
		rec.errors = append(rec.errors, errMsg)
	}
	return rec.count
}

// EnsureWorkflow runs the bounded generation loop of §4.H and satisfies
// executor's generationManager interface.
func (m *Manager) EnsureWorkflow(ctx context.Context, recipe executor.GenerationRecipe, extras map[string]any) (*executor.GenerationOutcome, error) {
	key := recipe.Namespace + ":" + recipe.Action
	if !m.remote.IsConfigured() {
		slog.Warn("generate: remote generation not configured", "key", key)
		return &executor.GenerationOutcome{Success: false, Errors: []string{"remote generation is not configured"}}, nil
	}

	var previousErrors []string

	for m.CanAttempt(key) {
		attempt := m.recordAttempt(key, "")
		slog.Info("generate: attempt starting", "key", key, "attempt", attempt, "max_attempts", m.maxAttempts)

		genCtx := buildGenerationContext(m.registry, recipe.Namespace)
		prompt := strings.ReplaceAll(generationPromptTemplate, "{{key}}", key)
		prompt = strings.ReplaceAll(prompt, "{{description}}", recipe.Description)
		prompt = strings.ReplaceAll(prompt, "{{hint}}", recipe.PromptHint)
		if len(previousErrors) > 0 {
			genCtx += "\n\n## Previous attempt errors\n" + strings.Join(previousErrors, "\n")
		}
		prompt = strings.ReplaceAll(prompt, "{{context}}", genCtx)

		raw, err := m.remote.GenerateJSON(ctx, "You generate workflow modules.", prompt)
		if err != nil {
			slog.Warn("generate: attempt failed, remote call error", "key", key, "attempt", attempt, "err", err)
			previousErrors = append(previousErrors, err.Error())
			continue
		}

		if err := validateResponseShape([]byte(raw)); err != nil {
			slog.Warn("generate: attempt failed, response schema invalid", "key", key, "attempt", attempt, "err", err)
			previousErrors = append(previousErrors, "malformed generation response for "+key+": "+err.Error())
			continue
		}

		var result GenResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil || result.ModuleCode == "" {
			slog.Warn("generate: attempt failed, malformed response", "key", key, "attempt", attempt, "err", err)
			previousErrors = append(previousErrors, "malformed generation response for "+key)
			continue
		}

		safe, issues := safety.Screen(result.ModuleCode)
		if !safe {
			slog.Warn("generate: attempt failed, safety screener rejected", "key", key, "attempt", attempt, "issues", issues)
			previousErrors = append(previousErrors, strings.Join(issues, "; "))
			continue
		}

		if _, err := parser.ParseFile(token.NewFileSet(), "", result.ModuleCode, parser.AllErrors); err != nil {
			slog.Warn("generate: attempt failed, static parse error", "key", key, "attempt", attempt, "err", err)
			previousErrors = append(previousErrors, "static parse failed: "+err.Error())
			continue
		}

		path, metaPath, err := m.persist(recipe, result, attempt)
		if err != nil {
			slog.Warn("generate: attempt failed, persist error", "key", key, "attempt", attempt, "err", err)
			previousErrors = append(previousErrors, err.Error())
			continue
		}

		spec := &workflow.Spec{
			Namespace: recipe.Namespace,
			Name:      recipe.Action,
			Summary:   result.Summary,
			Category:  recipe.Namespace,
			Metadata:  map[string]any{"generated": true},
			Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
				return interpret(ctx, result.OpList, args)
			},
		}
		if err := m.registry.Register(spec); err != nil {
			os.Remove(path)
			os.Remove(metaPath)
			slog.Warn("generate: attempt failed, registry rejected", "key", key, "attempt", attempt, "err", err)
			previousErrors = append(previousErrors, err.Error())
			continue
		}

		slog.Info("generate: attempt succeeded", "key", key, "attempt", attempt, "path", path)

		output := "[generated] registered " + key
		if recipe.Command != "" && recipe.Command != key {
			res, err := m.registry.Execute(ctx, recipe.Command, extras)
			if err != nil {
				slog.Warn("generate: hot-load dispatch failed", "key", key, "command", recipe.Command, "err", err)
				return &executor.GenerationOutcome{Success: false, Errors: append(previousErrors, err.Error())}, nil
			}
			output = res.Output + "\n[generated and hot-loaded: " + key + "]"
		}

		return &executor.GenerationOutcome{Success: true, Output: output}, nil
	}

	slog.Error("generate: attempts exhausted", "key", key, "max_attempts", m.maxAttempts, "errors", previousErrors)
	return &executor.GenerationOutcome{Success: false, Errors: previousErrors}, nil
}

// persist writes the generated module source (human-readable provenance
// artifact) and its YAML metadata sidecar to GENERATED_DIR.
func (m *Manager) persist(recipe executor.GenerationRecipe, result GenResult, attempt int) (path, metaPath string, err error) {
	if err := os.MkdirAll(m.generatedDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create generated dir: %w", err)
	}
	filename := recipe.Namespace + "_" + recipe.Action + ".go"
	path = filepath.Join(m.generatedDir, filename)
	if err := os.WriteFile(path, []byte(result.ModuleCode), 0o644); err != nil {
		return "", "", fmt.Errorf("write generated module: %w", err)
	}

	meta := generationMeta{
		Key:     recipe.Namespace + ":" + recipe.Action,
		Attempt: attempt,
		Summary: result.Summary,
		Notes:   result.Notes,
		Tests:   result.Tests,
	}
	metaBytes, err := yaml.Marshal(meta)
	if err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("marshal generation metadata: %w", err)
	}
	metaPath = path + ".meta.yaml"
	if err := os.WriteFile(metaPath, metaBytes, 0o644); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write generation metadata: %w", err)
	}
	return path, metaPath, nil
}
