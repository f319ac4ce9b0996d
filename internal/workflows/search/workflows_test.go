package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soochol/agentcli/internal/workflow"
)

func TestSearchWeb_MatchesAndLimits(t *testing.T) {
	reg := workflow.NewRegistry()
	client := NewFakeClient([]Result{
		{Title: "Go concurrency patterns", URL: "https://go.dev/a"},
		{Title: "Go generics guide", URL: "https://go.dev/b"},
		{Title: "Python basics", URL: "https://python.org/c"},
	})
	require.NoError(t, Register(reg, client))

	res, err := reg.Execute(context.Background(), "search:web go limit:1", nil)
	require.NoError(t, err)
	require.Contains(t, res.Output, "Go concurrency patterns")
	require.NotContains(t, res.Output, "Go generics guide")
}

func TestSearchWeb_NoResults(t *testing.T) {
	reg := workflow.NewRegistry()
	client := NewFakeClient(nil)
	require.NoError(t, Register(reg, client))

	res, err := reg.Execute(context.Background(), "search:web nothing-matches-this", nil)
	require.NoError(t, err)
	require.Equal(t, "no results", res.Output)
}
