// Package workflow implements the Workflow Registry: a thread-safe catalogue
// mapping namespace:name keys to typed handlers, plus the parameter parser
// that turns a command tail into a validated argument map.
package workflow

import "context"

// ParamType is the value type a Parameter specification accepts.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInt     ParamType = "integer"
	TypeFloat   ParamType = "float"
	TypeBoolean ParamType = "boolean"
)

// ParamParser lets a workflow override default value conversion for one
// parameter (e.g. a comma-separated list, a custom enum).
type ParamParser func(raw string) (any, error)

// ParamSpec describes one parameter of a workflow.
type ParamSpec struct {
	Name        string
	Description string
	Type        ParamType
	Required    bool
	Default     any
	Aliases     []string
	Positional  bool
	Index       int // meaningful only when Positional is true
	Parser      ParamParser
}

// CustomParser lets a workflow replace the default key:value/positional
// assignment algorithm entirely. It receives the raw command tail and the
// spec, and must return the same map[string]any shape ParseArgs returns.
type CustomParser func(tail string, spec *Spec) (map[string]any, error)

// Handler is the function a workflow runs when dispatched.
type Handler func(ctx context.Context, wctx *Context, args map[string]any) (string, error)

// Spec is an immutable workflow specification. Keys are unique across the
// registry; registration fails on collision (see Registry.Register).
type Spec struct {
	Namespace   string
	Name        string
	Summary     string
	Description string
	Params      []ParamSpec
	CustomParse CustomParser
	Handler     Handler
	Metadata    map[string]any // includes "usage" string and optional "examples"/"aliases"
	Category    string         // grouping used by the command reference text
}

// Key returns the fully-qualified "namespace:name" registry key.
func (s *Spec) Key() string { return s.Namespace + ":" + s.Name }

// Usage returns the spec's canonical usage string, falling back to a
// synthesized one built from the parameter list.
func (s *Spec) Usage() string {
	if u, ok := s.Metadata["usage"].(string); ok && u != "" {
		return u
	}
	usage := s.Key()
	for _, p := range s.Params {
		token := p.Name + ":<" + string(p.Type) + ">"
		if !p.Required {
			token = "[" + token + "]"
		}
		usage += " " + token
	}
	return usage
}

// Context is the per-invocation execution context passed to a handler.
type Context struct {
	Raw      string         // the raw command string as received
	Registry *Registry      // back-pointer for handlers that need to dispatch sub-commands
	Extras   map[string]any // shared key/value side-channel; last-write-wins
}

// Result is the outcome of one successful Registry.Execute call.
type Result struct {
	Spec   *Spec
	Args   map[string]any
	Output string
}
