// Package memory implements per-request Workflow Memory (§3, §4.E): the
// ordered plan, the append-only completed-step ledger, and the shared
// key/value context map threaded through every step of one user request.
// Grounded on the mutex-guarded per-session state map of the teacher's
// engine.SessionManager (GetStateCopy), generalised to the plan/ledger/
// context triple the spec requires.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// CompletedStep is one append-only ledger entry.
type CompletedStep struct {
	Instruction string
	Command     string
	Output      string
	Timestamp   time.Time
}

// Memory holds the planning state for the lifetime of one user request.
type Memory struct {
	mu sync.Mutex

	request    string
	stepsPlan  []string
	completed  []CompletedStep
	context    map[string]any
	categories map[string]bool

	// usedIdentifiers tracks, per context key, which identifiers from an
	// identifier-list value have already been substituted into a dispatched
	// command (invariant 8 — each identifier substituted at most once).
	usedIdentifiers map[string]map[string]bool
}

// New creates Memory for one request with its initial classification plan.
func New(request string, stepsPlan []string, categories []string) *Memory {
	cats := make(map[string]bool, len(categories))
	for _, c := range categories {
		cats[c] = true
	}
	plan := make([]string, len(stepsPlan))
	copy(plan, stepsPlan)
	return &Memory{
		request:         request,
		stepsPlan:       plan,
		context:         make(map[string]any),
		categories:      cats,
		usedIdentifiers: make(map[string]map[string]bool),
	}
}

// Request returns the original user request string.
func (m *Memory) Request() string { return m.request }

// Categories returns the active category set as a sorted slice.
func (m *Memory) Categories() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.categories))
	for c := range m.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// StepsPlan returns a snapshot of the current plan.
func (m *Memory) StepsPlan() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.stepsPlan))
	copy(out, m.stepsPlan)
	return out
}

// CompletedSteps returns a snapshot of the ledger.
func (m *Memory) CompletedSteps() []CompletedStep {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletedStep, len(m.completed))
	copy(out, m.completed)
	return out
}

// CurrentStepNumber is the 1-based index of the next step to execute.
func (m *Memory) CurrentStepNumber() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completed) + 1
}

// CurrentStep returns the NL instruction of the step about to run, and false
// if the plan is already complete.
func (m *Memory) CurrentStep() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.completed) >= len(m.stepsPlan) {
		return "", false
	}
	return m.stepsPlan[len(m.completed)], true
}

// RemainingSteps returns the not-yet-started portion of the plan.
func (m *Memory) RemainingSteps() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.completed) >= len(m.stepsPlan) {
		return nil
	}
	out := make([]string, len(m.stepsPlan)-len(m.completed))
	copy(out, m.stepsPlan[len(m.completed):])
	return out
}

// IsComplete reports whether every planned step has been executed.
func (m *Memory) IsComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completed) >= len(m.stepsPlan)
}

// AddCompletedStep appends one ledger entry. A completed step, once
// recorded, is never modified or removed for the life of the request
// (invariant 4).
func (m *Memory) AddCompletedStep(instruction, command, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, CompletedStep{
		Instruction: instruction,
		Command:     command,
		Output:      output,
		Timestamp:   time.Now(),
	})
}

// ExpandCurrentStep replaces the current (not-yet-started) plan entry with
// the given atomic sub-steps, preserving relative order and without
// advancing the step pointer (invariant 5). substeps must be non-empty.
func (m *Memory) ExpandCurrentStep(substeps []string) error {
	if len(substeps) == 0 {
		return fmt.Errorf("expansion must produce at least one sub-step")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := len(m.completed)
	if k >= len(m.stepsPlan) {
		return fmt.Errorf("no pending step to expand")
	}
	next := make([]string, 0, len(m.stepsPlan)+len(substeps)-1)
	next = append(next, m.stepsPlan[:k]...)
	next = append(next, substeps...)
	next = append(next, m.stepsPlan[k+1:]...)
	m.stepsPlan = next
	return nil
}

// SetContext is a last-write-wins update to the shared context map. Keys are
// namespaced by the producing workflow (e.g. "mail:last_message_ids").
func (m *Memory) SetContext(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.context[key] = value
}

// GetContext reads one context value.
func (m *Memory) GetContext(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.context[key]
	return v, ok
}

// ContextSnapshot returns a shallow copy of the context map.
func (m *Memory) ContextSnapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(m.context))
	for k, v := range m.context {
		out[k] = v
	}
	return out
}

// NextUnusedIdentifier returns the next not-yet-substituted string from a
// []string context value, and marks it used. Used by the execution loop to
// resolve "id:MESSAGE_ID" sentinels against e.g. "mail:last_message_ids"
// (§4.G, invariant 8).
func (m *Memory) NextUnusedIdentifier(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.context[key]
	if !ok {
		return "", false
	}
	ids, ok := raw.([]string)
	if !ok {
		return "", false
	}
	used := m.usedIdentifiers[key]
	if used == nil {
		used = make(map[string]bool)
		m.usedIdentifiers[key] = used
	}
	for _, id := range ids {
		if !used[id] {
			used[id] = true
			return id, true
		}
	}
	return "", false
}

// SummaryText renders the planner-facing projection: completed steps
// checked, remaining steps unchecked, and context keys with either a value
// preview or a collection cardinality. Identifier-list keys list up to 10
// items individually so the planner can reference them by position (§4.E).
func (m *Memory) SummaryText() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", m.request)
	b.WriteString("Plan:\n")
	for i, step := range m.stepsPlan {
		if i < len(m.completed) {
			fmt.Fprintf(&b, "  [x] %d. %s\n", i+1, step)
		} else {
			fmt.Fprintf(&b, "  [ ] %d. %s\n", i+1, step)
		}
	}

	if len(m.context) > 0 {
		b.WriteString("Context:\n")
		keys := make([]string, 0, len(m.context))
		for k := range m.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, summarizeValue(m.context[k]))
		}
	}

	return b.String()
}

func summarizeValue(v any) string {
	switch val := v.(type) {
	case []string:
		if len(val) <= 10 {
			return fmt.Sprintf("%d item(s): %s", len(val), strings.Join(val, ", "))
		}
		return fmt.Sprintf("%d item(s): %s, ... (+%d more)", len(val), strings.Join(val[:10], ", "), len(val)-10)
	case []any:
		return fmt.Sprintf("%d item(s)", len(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}
