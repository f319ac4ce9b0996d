package workflow

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// tokenize splits a command tail using POSIX-style double-quote preservation:
// a double-quoted run becomes (the contents of) a single token, quotes are
// stripped, and whitespace outside quotes separates tokens.
func tokenize(tail string) ([]string, error) {
	var tokens []string
	var buf strings.Builder
	inQuotes := false
	hasContent := false

	flush := func() {
		if hasContent {
			tokens = append(tokens, buf.String())
			buf.Reset()
			hasContent = false
		}
	}

	for _, r := range tail {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasContent = true
		case r == ' ' || r == '\t':
			if inQuotes {
				buf.WriteRune(r)
			} else {
				flush()
			}
		default:
			buf.WriteRune(r)
			hasContent = true
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote in command tail")
	}
	flush()
	return tokens, nil
}

func containsSeparator(tok string) bool {
	return strings.ContainsAny(tok, ":=")
}

// splitKV splits "key:value" or "key=value" on the first separator.
func splitKV(tok string) (string, string) {
	idx := strings.IndexAny(tok, ":=")
	if idx < 0 {
		return tok, ""
	}
	return tok[:idx], tok[idx+1:]
}

var trueWords = map[string]bool{"true": true, "1": true, "yes": true, "y": true, "on": true}
var falseWords = map[string]bool{"false": true, "0": true, "no": true, "n": true, "off": true}

func parseBoolValue(raw string) (bool, error) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if trueWords[lower] {
		return true, nil
	}
	if falseWords[lower] {
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value %q", raw)
}

func convertValue(raw string, p *ParamSpec) (any, error) {
	if p.Parser != nil {
		return p.Parser(raw)
	}
	switch p.Type {
	case TypeString, "":
		return raw, nil
	case TypeInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return int(v), nil
	case TypeFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return v, nil
	case TypeBoolean:
		return parseBoolValue(raw)
	default:
		return nil, fmt.Errorf("unknown parameter type %q", p.Type)
	}
}

// paramIndex is a lookup table built once per ParseArgs call: resolves a
// parameter by its name or any of its aliases, and holds the positional
// parameters ordered by declared index.
type paramIndex struct {
	byName     map[string]*ParamSpec
	positional []*ParamSpec
}

func buildParamIndex(spec *Spec) (*paramIndex, error) {
	idx := &paramIndex{byName: make(map[string]*ParamSpec, len(spec.Params))}
	seenPositional := map[int]bool{}
	for i := range spec.Params {
		p := &spec.Params[i]
		idx.byName[p.Name] = p
		for _, a := range p.Aliases {
			idx.byName[a] = p
		}
		if p.Positional {
			if seenPositional[p.Index] {
				return nil, fmt.Errorf("duplicate positional index %d in spec %s", p.Index, spec.Key())
			}
			seenPositional[p.Index] = true
			idx.positional = append(idx.positional, p)
		}
	}
	sort.Slice(idx.positional, func(i, j int) bool { return idx.positional[i].Index < idx.positional[j].Index })
	return idx, nil
}

// ParseArgs converts a command tail into a typed argument map against spec's
// parameter list, per the algorithm in §4.C: key:value/key=value tokens
// resolve through name+aliases; remaining tokens assign positionally in
// index order; unset optional parameters receive their default; all missing
// required parameters are reported together in one error. A spec with a
// CustomParse callback delegates to it instead.
func ParseArgs(tail string, spec *Spec) (map[string]any, error) {
	if spec.CustomParse != nil {
		return spec.CustomParse(tail, spec)
	}

	idx, err := buildParamIndex(spec)
	if err != nil {
		return nil, err
	}

	tokens, err := tokenize(tail)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	result := make(map[string]any, len(spec.Params))
	assigned := make(map[string]bool, len(spec.Params))
	posPos := 0
	lastKeyParam := ""

	for _, tok := range tokens {
		if tok == "" {
			continue
		}

		if !containsSeparator(tok) {
			if p, ok := idx.byName[tok]; ok && p.Type == TypeBoolean {
				result[p.Name] = true
				assigned[p.Name] = true
				lastKeyParam = p.Name
				continue
			}
			if posPos < len(idx.positional) {
				p := idx.positional[posPos]
				v, err := convertValue(tok, p)
				if err != nil {
					return nil, &ValidationError{Param: p.Name, Message: err.Error()}
				}
				result[p.Name] = v
				assigned[p.Name] = true
				posPos++
				continue
			}
			if lastKeyParam != "" {
				return nil, &ValidationError{Param: lastKeyParam, Message: "value contains unquoted whitespace; quote values that contain spaces"}
			}
			return nil, &ValidationError{Message: fmt.Sprintf("unexpected argument %q", tok)}
		}

		key, val := splitKV(tok)
		p, ok := idx.byName[key]
		if !ok {
			return nil, &ValidationError{Param: key, Message: "unknown parameter"}
		}
		if val == "" && p.Type == TypeBoolean {
			result[p.Name] = true
		} else {
			v, err := convertValue(val, p)
			if err != nil {
				return nil, &ValidationError{Param: p.Name, Message: err.Error()}
			}
			result[p.Name] = v
		}
		assigned[p.Name] = true
		lastKeyParam = p.Name
	}

	var missing []string
	for i := range spec.Params {
		p := &spec.Params[i]
		if assigned[p.Name] {
			continue
		}
		if p.Default != nil {
			result[p.Name] = p.Default
			continue
		}
		if p.Required {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("missing required parameter(s): %s", strings.Join(missing, ", "))}
	}

	return result, nil
}

// Render renders an argument map back into canonical key:value tokens,
// double-quoting any value whose string form contains whitespace. It is the
// inverse of ParseArgs for the default (non-custom) parsing algorithm, used
// by the parameter roundtrip property test.
func Render(spec *Spec, args map[string]any) string {
	var parts []string
	for i := range spec.Params {
		p := &spec.Params[i]
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		s := fmt.Sprintf("%v", v)
		if strings.ContainsAny(s, " \t") {
			s = `"` + s + `"`
		}
		parts = append(parts, p.Name+":"+s)
	}
	return strings.Join(parts, " ")
}
