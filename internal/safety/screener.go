// Package safety implements the Safety Screener (§4.I): cheap static
// rejection of unsafe generated Go source before it is parsed, persisted, or
// hot-loaded. Grounded on the teacher's internal/tools/python_exec.go — the
// one place the teacher itself runs untrusted-ish code, and therefore the
// clearest statement of the project's own risk posture toward exec — and on
// stdlib go/parser + go/ast (no example repo ships a third-party Go AST
// linter narrow enough for this check; justified in DESIGN.md).
package safety

import (
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
)

// forbiddenImports names packages a generated workflow module must never
// import: process execution, unsafe memory, raw sockets, and encoding/gob
// (this codebase's closest analogue to an unsafe pickle-style deserialiser).
var forbiddenImports = map[string]string{
	"os/exec":                        "spawns external processes",
	"syscall":                        "direct syscall access",
	"unsafe":                         "unsafe pointer arithmetic",
	"encoding/gob":                   "arbitrary deserialisation",
	"golang.org/x/sys/windows/registry": "Windows registry access",
	"plugin":                         "dynamic native code loading",
}

// forbiddenCalls names selector expressions (package.Func) that are unsafe
// even if reached through an otherwise-permitted import, such as raw socket
// construction via the net package.
var forbiddenCalls = map[string]string{
	"net.Listen":   "raw network listener",
	"net.Dial":     "raw outbound network connection",
	"net.ListenUDP": "raw network listener",
}

// destructivePatterns match shell-destructive string literals that might
// appear embedded in generated source as arguments to a command the module
// intends to shell out to (forbidden imports already block os/exec itself,
// this is a second line of defence against string literals alone).
var destructivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`rm\s+-rf\s+/`),
	regexp.MustCompile(`mkfs\.`),
	regexp.MustCompile(`/etc/shadow`),
	regexp.MustCompile(`\bsudo\b`),
	regexp.MustCompile(`chmod\s+777`),
}

// Screen applies the checks of §4.I to Go source text and reports whether it
// is safe to proceed to the static-parse step. A non-empty issue list
// rejects the code; a parse error counts as an issue.
func Screen(source string) (isSafe bool, issues []string) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "generated.go", source, parser.ImportsOnly|parser.ParseComments)
	if err != nil {
		return false, []string{"parse error: " + err.Error()}
	}

	for _, imp := range file.Imports {
		path := trimQuotes(imp.Path.Value)
		if reason, forbidden := forbiddenImports[path]; forbidden {
			issues = append(issues, "forbidden import \""+path+"\": "+reason)
		}
	}

	// Re-parse fully (not ImportsOnly) to walk call expressions.
	full, err := parser.ParseFile(fset, "generated.go", source, parser.AllErrors)
	if err != nil {
		return false, []string{"parse error: " + err.Error()}
	}
	ast.Inspect(full, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		name := ident.Name + "." + sel.Sel.Name
		if reason, forbidden := forbiddenCalls[name]; forbidden {
			issues = append(issues, "forbidden call \""+name+"\": "+reason)
		}
		return true
	})

	for _, pattern := range destructivePatterns {
		if pattern.MatchString(source) {
			issues = append(issues, "destructive pattern matched: "+pattern.String())
		}
	}

	return len(issues) == 0, issues
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
