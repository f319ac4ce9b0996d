// Package llm implements the Local-Model Client (§4.A) and Remote-Model
// Client (§4.B): deterministic one-shot prompt generation over a CLI
// subprocess or local HTTP server, and single-shot JSON generation against a
// hosted large model. Grounded on the teacher's internal/model/claudecode.go
// (subprocess invocation) and internal/provider/openai.go (HTTP transport),
// and on the distilled source's agent/core/llm/ollama.py which this
// component reproduces most directly: CLI-by-default, HTTP opt-in, fallback
// on transport failure.
package llm

// Profile is an immutable sampling configuration shared by all call sites
// that use a given purpose (classifier, planner, ...). Defaults are
// zero-temperature and a fixed seed so classification and planning stay
// reproducible (invariant 3, Planner monotonicity).
type Profile struct {
	Model          string
	TimeoutSeconds int

	Temperature   *float64
	TopP          *float64
	TopK          *int
	RepeatPenalty *float64
	Seed          *int64
}

// options renders the profile's sampling fields into the map shape the local
// model's --options flag / HTTP "options" field expects.
func (p Profile) options() map[string]any {
	out := map[string]any{}
	if p.Temperature != nil {
		out["temperature"] = *p.Temperature
	}
	if p.TopP != nil {
		out["top_p"] = *p.TopP
	}
	if p.TopK != nil {
		out["top_k"] = *p.TopK
	}
	if p.RepeatPenalty != nil {
		out["repeat_penalty"] = *p.RepeatPenalty
	}
	if p.Seed != nil {
		out["seed"] = *p.Seed
	}
	return out
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func seedPtr(i int64) *int64      { return &i }
