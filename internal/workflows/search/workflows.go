package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/soochol/agentcli/internal/workflow"
)

// Register installs the search:* workflows into reg, dispatching through
// client for every effect.
func Register(reg *workflow.Registry, client Client) error {
	return reg.Register(&workflow.Spec{
		Namespace: "search",
		Name:      "web",
		Summary:   "search the web for a query",
		Category:  "search",
		Params: []workflow.ParamSpec{
			{Name: "query", Type: workflow.TypeString, Required: true, Positional: true, Index: 0},
			{Name: "limit", Type: workflow.TypeInt, Default: 5},
		},
		Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			limit, _ := args["limit"].(int)
			results, err := client.Search(ctx, query, limit)
			if err != nil {
				return "", err
			}
			if len(results) == 0 {
				return "no results", nil
			}
			lines := make([]string, len(results))
			for i, r := range results {
				lines[i] = fmt.Sprintf("%d. %s - %s", i+1, r.Title, r.URL)
			}
			return strings.Join(lines, "\n"), nil
		},
	})
}
