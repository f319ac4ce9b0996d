package workflow

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func addSpec() *Spec {
	return &Spec{
		Namespace: "math",
		Name:      "add",
		Summary:   "add two integers",
		Params: []ParamSpec{
			{Name: "a", Type: TypeInt, Required: true, Positional: true, Index: 0},
			{Name: "b", Type: TypeInt, Required: true, Positional: true, Index: 1},
		},
		Handler: func(_ context.Context, _ *Context, args map[string]any) (string, error) {
			return "sum=" + strconv.Itoa(args["a"].(int)+args["b"].(int)), nil
		},
	}
}

func TestRegistry_RegisterDuplicateFails(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(addSpec()))
	err := r.Register(addSpec())
	require.Error(t, err)
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	require.Equal(t, "math:add", regErr.Key)
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("math", "add")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

// S2 — Single-workflow dispatch.
func TestRegistry_Execute_S2(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(addSpec()))

	res, err := r.Execute(context.Background(), "math:add a:2 b:5", nil)
	require.NoError(t, err)
	require.Equal(t, "sum=7", res.Output)
	require.Equal(t, 2, res.Args["a"])
	require.Equal(t, 5, res.Args["b"])
}

func TestRegistry_Execute_NotFoundRoutesAsTypedError(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "system:unknown_thing", nil)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestRegistry_Execute_HandlerErrorWrapped(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Spec{
		Namespace: "system",
		Name:      "fail",
		Handler: func(_ context.Context, _ *Context, _ map[string]any) (string, error) {
			return "", errBoom
		},
	}))

	_, err := r.Execute(context.Background(), "system:fail", nil)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.ErrorIs(t, execErr, errBoom)
}

func TestRegistry_ListSnapshotIsIndependent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(addSpec()))
	snap := r.List("")
	require.Len(t, snap, 1)

	require.NoError(t, r.Register(&Spec{Namespace: "math", Name: "sub", Handler: addSpec().Handler}))
	require.Len(t, snap, 1, "prior snapshot must not observe later registrations")
	require.Len(t, r.List(""), 2)
}

func TestBuildCommandReference_GroupsByCategorySorted(t *testing.T) {
	infos := []CommandInfo{
		{Category: "mail", Usage: "mail:send to:<string>", Summary: "send an email"},
		{Category: "mail", Usage: "mail:list", Summary: "list emails"},
		{Category: "calendar", Usage: "calendar:create", Summary: "create an event"},
	}
	text := BuildCommandReference(infos, nil)
	require.Contains(t, text, "calendar:\n- calendar:create")
	require.Contains(t, text, "mail:\n- mail:list")
	require.True(t, indexOf(text, "calendar:") < indexOf(text, "mail:"))
	require.True(t, indexOf(text, "mail:list") < indexOf(text, "mail:send"))
}

func TestBuildCommandReference_LegacyAppendedWithoutDuplicates(t *testing.T) {
	infos := []CommandInfo{{Category: "mail", Usage: "mail:list", Summary: "list emails"}}
	legacy := []LegacyCommand{
		{Usage: "mail:list", Summary: "old duplicate, should be dropped"},
		{Usage: "old:thing", Summary: "a legacy-only command"},
	}
	text := BuildCommandReference(infos, legacy)
	require.Contains(t, text, "legacy:\n- old:thing")
	require.Equal(t, 1, countOccurrences(text, "mail:list"))
}

var errBoom = boomErr{}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
			i += len(substr) - 1
		}
	}
	return count
}
