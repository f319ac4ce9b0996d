package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/soochol/agentcli/internal/workflow"
)

func parseRFC3339(raw string) (any, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	return t, nil
}

// Register installs the calendar:* workflows into reg, dispatching through
// client for every effect.
func Register(reg *workflow.Registry, client Client) error {
	specs := []*workflow.Spec{createSpec(client), listSpec(client)}
	for _, s := range specs {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

func createSpec(client Client) *workflow.Spec {
	return &workflow.Spec{
		Namespace: "calendar",
		Name:      "create",
		Summary:   "create a calendar event",
		Category:  "calendar",
		Params: []workflow.ParamSpec{
			{Name: "title", Type: workflow.TypeString, Required: true},
			{Name: "start", Type: workflow.TypeString, Required: true, Parser: parseRFC3339},
			{Name: "end", Type: workflow.TypeString, Required: true, Parser: parseRFC3339},
		},
		Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
			title, _ := args["title"].(string)
			start, _ := args["start"].(time.Time)
			end, _ := args["end"].(time.Time)
			ev, err := client.Create(ctx, title, start, end)
			if err != nil {
				return "", err
			}
			return "created " + ev.ID, nil
		},
	}
}

func listSpec(client Client) *workflow.Spec {
	return &workflow.Spec{
		Namespace: "calendar",
		Name:      "list",
		Summary:   "list calendar events in a time window",
		Category:  "calendar",
		Params: []workflow.ParamSpec{
			{Name: "from", Type: workflow.TypeString, Required: true, Parser: parseRFC3339},
			{Name: "to", Type: workflow.TypeString, Required: true, Parser: parseRFC3339},
		},
		Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
			from, _ := args["from"].(time.Time)
			to, _ := args["to"].(time.Time)
			events, err := client.List(ctx, from, to)
			if err != nil {
				return "", err
			}
			out := ""
			for i, e := range events {
				if i > 0 {
					out += "\n"
				}
				out += fmt.Sprintf("%s | %s | %s", e.ID, e.Title, e.Start.Format(time.RFC3339))
			}
			return out, nil
		},
	}
}
