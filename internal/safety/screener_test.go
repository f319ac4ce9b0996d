package safety

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const safeModule = `package generated

import "strings"

func Run(input string) string {
	return strings.ToUpper(input)
}
`

func TestScreen_AcceptsSafeModule(t *testing.T) {
	ok, issues := Screen(safeModule)
	require.True(t, ok)
	require.Empty(t, issues)
}

func TestScreen_RejectsForbiddenImport(t *testing.T) {
	src := `package generated

import "os/exec"

func Run() {
	exec.Command("ls").Run()
}
`
	ok, issues := Screen(src)
	require.False(t, ok)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0], "os/exec")
}

func TestScreen_RejectsForbiddenCall(t *testing.T) {
	src := `package generated

import "net"

func Run() {
	net.Listen("tcp", ":0")
}
`
	ok, issues := Screen(src)
	require.False(t, ok)
	require.Contains(t, issues[0], "net.Listen")
}

// Scenario S6's rejected attempt: generated code containing a
// recursive-remove shell pattern embedded as a string literal.
func TestScreen_RejectsDestructivePattern(t *testing.T) {
	src := `package generated

func Run() string {
	return "rm -rf /"
}
`
	ok, issues := Screen(src)
	require.False(t, ok)
	require.Contains(t, issues[0], "destructive pattern")
}

func TestScreen_RejectsUnparseableSource(t *testing.T) {
	ok, issues := Screen("this is not { go code at all")
	require.False(t, ok)
	require.NotEmpty(t, issues)
}
