package generate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soochol/agentcli/internal/executor"
	"github.com/soochol/agentcli/internal/workflow"
)

const validModule = `package generated

func Run() string {
	return "ok"
}
`

const destructiveModule = `package generated

// Command is documentation only: "rm -rf /" must never reach a shell here.
const Command = "rm -rf /"
`

// scriptedRemote returns its responses (or errors) in order, one per call,
// and records how many times it was called.
type scriptedRemote struct {
	configured bool
	responses  []string
	errs       []error
	calls      int
}

func (r *scriptedRemote) IsConfigured() bool { return r.configured }

func (r *scriptedRemote) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	i := r.calls
	r.calls++
	var err error
	if i < len(r.errs) {
		err = r.errs[i]
	}
	if i < len(r.responses) {
		return r.responses[i], err
	}
	return "", err
}

func TestEnsureWorkflow_S5_FirstAttemptSucceedsAndHotLoads(t *testing.T) {
	dir := t.TempDir()
	reg := workflow.NewRegistry()
	remote := &scriptedRemote{
		configured: true,
		responses: []string{
			`{"module_code": ` + goQuote(validModule) + `, "summary": "fetches a URL", "op_list": [{"op":"literal","params":{"value":"fetched"}}]}`,
		},
	}
	mgr := New(remote, reg, dir, 3)

	outcome, err := mgr.EnsureWorkflow(context.Background(), executor.GenerationRecipe{
		Namespace:   "system",
		Action:      "fetch_html_from_url",
		Description: "fetch a page by URL",
		Command:     "system:fetch_html_from_url",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	require.True(t, outcome.Success)

	require.Equal(t, 1, remote.calls)

	_, getErr := reg.Get("system", "fetch_html_from_url")
	require.NoError(t, getErr)

	path := filepath.Join(dir, "system_fetch_html_from_url.go")
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
	_, metaStatErr := os.Stat(path + ".meta.yaml")
	require.NoError(t, metaStatErr)

	res, execErr := reg.Execute(context.Background(), "system:fetch_html_from_url", nil)
	require.NoError(t, execErr)
	require.Equal(t, "fetched", res.Output)
}

func TestEnsureWorkflow_S6_RetryExhaustionAggregatesErrorsAndLeavesRegistryUnchanged(t *testing.T) {
	dir := t.TempDir()
	reg := workflow.NewRegistry()
	remote := &scriptedRemote{
		configured: true,
		responses: []string{
			"not json at all",
			`{"module_code": ` + goQuote(destructiveModule) + `, "summary": "bad", "op_list": [{"op":"literal","params":{"value":"x"}}]}`,
		},
	}
	mgr := New(remote, reg, dir, 2)

	outcome, err := mgr.EnsureWorkflow(context.Background(), executor.GenerationRecipe{
		Namespace: "system",
		Action:    "wipe",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	require.False(t, outcome.Success)

	require.Equal(t, 2, remote.calls)
	require.Len(t, outcome.Errors, 2)
	require.Contains(t, outcome.Errors[0], "malformed generation response")
	require.Contains(t, outcome.Errors[1], "destructive pattern matched")

	require.Empty(t, reg.List(""))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	require.Empty(t, entries)

	require.False(t, mgr.CanAttempt("system:wipe"))
}

func TestEnsureWorkflow_NotConfiguredFailsWithoutCallingRemote(t *testing.T) {
	dir := t.TempDir()
	reg := workflow.NewRegistry()
	remote := &scriptedRemote{configured: false}
	mgr := New(remote, reg, dir, 3)

	outcome, err := mgr.EnsureWorkflow(context.Background(), executor.GenerationRecipe{
		Namespace: "system",
		Action:    "noop",
	}, nil)
	require.NoError(t, err)
	require.False(t, outcome.Success)
	require.Equal(t, 0, remote.calls)
}

// goQuote renders s as a Go double-quoted string literal suitable for
// embedding in the scripted JSON responses above.
func goQuote(s string) string {
	quoted := ""
	for _, r := range s {
		switch r {
		case '"':
			quoted += `\"`
		case '\\':
			quoted += `\\`
		case '\n':
			quoted += `\n`
		case '\t':
			quoted += `\t`
		default:
			quoted += string(r)
		}
	}
	return `"` + quoted + `"`
}
