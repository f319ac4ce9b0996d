package workflow

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Registry is the thread-safe catalogue mapping namespace:name keys to
// workflow specs. A single mutex guards the map; it is not reentrant, so no
// method calls another while holding it;
// iteration returns a snapshot copy so handler execution never runs while
// the lock is held (§4.D, §5).
type Registry struct {
	mu         sync.Mutex
	specs      map[string]*Spec
	generation int // bumped on every successful Register; drives the planner's cache
}

// LegacyCommand describes a non-registry command surfaced only in the
// command reference text (§6.2).
type LegacyCommand struct {
	Usage   string
	Summary string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

// Register adds a workflow spec. Fails with *RegistrationError if the key
// already exists.
func (r *Registry) Register(spec *Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := spec.Key()
	if _, exists := r.specs[key]; exists {
		slog.Warn("registry: register rejected, key already exists", "key", key)
		return &RegistrationError{Key: key}
	}
	r.specs[key] = spec
	r.generation++
	slog.Info("registry: registered workflow", "key", key, "generation", r.generation)
	return nil
}

// Get looks up a spec by namespace and name. Fails with *NotFoundError if absent.
func (r *Registry) Get(namespace, name string) (*Spec, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spec, ok := r.specs[namespace+":"+name]
	if !ok {
		return nil, &NotFoundError{Namespace: namespace, Name: name}
	}
	return spec, nil
}

// List returns a snapshot of registered specs, optionally filtered to one
// namespace (empty string returns all).
func (r *Registry) List(namespace string) []*Spec {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Spec, 0, len(r.specs))
	for _, s := range r.specs {
		if namespace == "" || s.Namespace == namespace {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Generation returns the current registry generation number, bumped on
// every successful registration. The planner uses this to invalidate its
// per-category command-reference cache (§4.F).
func (r *Registry) Generation() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Namespaces returns the sorted set of distinct namespaces with at least one
// registered spec.
func (r *Registry) Namespaces() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	for _, s := range r.specs {
		seen[s.Namespace] = true
	}
	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// splitCommand parses "namespace:name tail" into its three parts.
func splitCommand(raw string) (namespace, name, tail string, ok bool) {
	raw = strings.TrimSpace(raw)
	head := raw
	if sp := strings.IndexAny(raw, " \t"); sp >= 0 {
		head = raw[:sp]
		tail = strings.TrimSpace(raw[sp+1:])
	}
	colon := strings.Index(head, ":")
	if colon <= 0 || colon == len(head)-1 {
		return "", "", "", false
	}
	return head[:colon], head[colon+1:], tail, true
}

// Execute parses "namespace:name tail", looks up the spec, parses arguments,
// and calls the handler with a fresh Context. Handler errors are wrapped as
// *ExecutionError, preserving the underlying message (§4.D, §7).
func (r *Registry) Execute(ctx context.Context, rawCommand string, extras map[string]any) (*Result, error) {
	namespace, name, tail, ok := splitCommand(rawCommand)
	if !ok {
		return nil, &ValidationError{Message: "malformed command: expected \"namespace:name [tail]\""}
	}

	spec, err := r.Get(namespace, name)
	if err != nil {
		return nil, err
	}

	args, err := ParseArgs(tail, spec)
	if err != nil {
		return nil, err
	}

	if extras == nil {
		extras = make(map[string]any)
	}
	wctx := &Context{Raw: rawCommand, Registry: r, Extras: extras}

	output, err := spec.Handler(ctx, wctx, args)
	if err != nil {
		return nil, &ExecutionError{Key: spec.Key(), Err: err}
	}

	return &Result{Spec: spec, Args: args, Output: output}, nil
}

// CommandInfo is one record of the command reference text (§6.2).
type CommandInfo struct {
	Category string
	Usage    string
	Summary  string
}

// ExportCommandInfo emits one record per registered spec, for reference-text
// assembly and as prompt material for the planner.
func (r *Registry) ExportCommandInfo() []CommandInfo {
	specs := r.List("")
	out := make([]CommandInfo, 0, len(specs))
	for _, s := range specs {
		category := s.Category
		if category == "" {
			category = s.Namespace
		}
		out = append(out, CommandInfo{Category: category, Usage: s.Usage(), Summary: s.Summary})
	}
	return out
}

// BuildCommandReference renders the deterministic command-reference text of
// §6.2: grouped by category (sorted by name), entries sorted by usage within
// a category, one line each ("- <usage>           # <summary>"). Legacy
// commands are appended after registry entries, skipping any usage already
// present in the registry output.
func BuildCommandReference(infos []CommandInfo, legacy []LegacyCommand) string {
	byCategory := make(map[string][]CommandInfo)
	for _, info := range infos {
		byCategory[info.Category] = append(byCategory[info.Category], info)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	seenUsage := make(map[string]bool, len(infos))
	var b strings.Builder
	for _, cat := range categories {
		entries := byCategory[cat]
		sort.Slice(entries, func(i, j int) bool { return entries[i].Usage < entries[j].Usage })
		b.WriteString(cat)
		b.WriteString(":\n")
		for _, e := range entries {
			seenUsage[e.Usage] = true
			writeEntry(&b, e.Usage, e.Summary)
		}
	}

	if len(legacy) > 0 {
		var extra []LegacyCommand
		for _, l := range legacy {
			if !seenUsage[l.Usage] {
				extra = append(extra, l)
			}
		}
		if len(extra) > 0 {
			sort.Slice(extra, func(i, j int) bool { return extra[i].Usage < extra[j].Usage })
			b.WriteString("legacy:\n")
			for _, l := range extra {
				writeEntry(&b, l.Usage, l.Summary)
			}
		}
	}

	return b.String()
}

func writeEntry(b *strings.Builder, usage, summary string) {
	b.WriteString("- ")
	b.WriteString(usage)
	b.WriteString("           # ")
	b.WriteString(summary)
	b.WriteString("\n")
}
