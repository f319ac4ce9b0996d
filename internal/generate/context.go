package generate

import (
	"strings"

	"github.com/soochol/agentcli/internal/workflow"
)

// maxSectionChars bounds every textual section assembled into the
// generation prompt (§4.B: "all textual sections are truncated to bounded
// sizes").
const maxSectionChars = 4000

// buildGenerationContext assembles the input context passed to the remote
// client (§4.B): the current command reference, a shallow project tree, a
// sample of sibling built-in workflows, and existing workflows already in
// the target namespace (to avoid duplication).
func buildGenerationContext(reg *workflow.Registry, targetNamespace string) string {
	var b strings.Builder

	b.WriteString("## Command reference\n")
	infos := reg.ExportCommandInfo()
	b.WriteString(truncate(workflow.BuildCommandReference(infos, nil), maxSectionChars))

	b.WriteString("\n\n## Project layout\n")
	b.WriteString(truncate(projectTree, maxSectionChars))

	b.WriteString("\n\n## Sibling workflow sample\n")
	b.WriteString(truncate(siblingSample, maxSectionChars))

	b.WriteString("\n\n## Existing workflows in target namespace \"" + targetNamespace + "\"\n")
	existing := reg.List(targetNamespace)
	if len(existing) == 0 {
		b.WriteString("(none)\n")
	} else {
		for _, s := range existing {
			b.WriteString("- " + s.Key() + ": " + s.Summary + "\n")
		}
	}

	return b.String()
}

// projectTree is a fixed, shallow listing of this module's package layout,
// grounding the generator's idea of where a new workflow module belongs.
const projectTree = `internal/workflow/   registry, parameter parser, spec types
internal/memory/     workflow memory
internal/llm/        local and remote model clients
internal/planner/    tiered planner
internal/executor/   execution loop
internal/generate/   dynamic workflow generation manager
internal/safety/     safety screener
internal/workflows/  built-in workflow packages (mail, calendar, docs, search)`

// siblingSample is a trimmed example of a built-in workflow registration,
// shown to the generator so it imitates the registry's real idiom instead
// of inventing one.
const siblingSample = `workflow.Spec{
	Namespace: "mail",
	Name:      "list",
	Summary:   "list recent emails",
	Category:  "mail",
	Params: []workflow.ParamSpec{
		{Name: "count", Type: workflow.TypeInt, Positional: true, Index: 0, Default: 10},
	},
	Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
		...
	},
}`

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n... (truncated)"
}
