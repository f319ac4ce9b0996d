package planner

import "github.com/soochol/agentcli/internal/llmutil"

// stripAndExtract tolerates markdown fences and leading commentary around a
// JSON object in model output (§4.F: "strip triple-fenced blocks, locate the
// outermost {...} substring, parse").
func stripAndExtract(text string) (string, error) {
	return llmutil.StripMarkdownJSON(text)
}
