package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/soochol/agentcli/internal/workflow"
)

// lastMessageIDsKey is the context key mail:list publishes and mail:reply
// consumes through the execution loop's identifier-substitution rule
// (§4.G, invariant 8).
const lastMessageIDsKey = "mail:last_message_ids"

// Register installs the mail:* workflows into reg, dispatching through
// client for every effect.
func Register(reg *workflow.Registry, client Client) error {
	specs := []*workflow.Spec{
		listSpec(client),
		getSpec(client),
		replySpec(client),
		sendSpec(client),
		downloadSpec(client),
	}
	for _, s := range specs {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

func listSpec(client Client) *workflow.Spec {
	return &workflow.Spec{
		Namespace: "mail",
		Name:      "list",
		Summary:   "list recent emails",
		Category:  "mail",
		Params: []workflow.ParamSpec{
			{Name: "count", Type: workflow.TypeInt, Positional: true, Index: 0, Default: 10},
		},
		Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
			count, _ := args["count"].(int)
			msgs, err := client.List(ctx, count)
			if err != nil {
				return "", err
			}
			ids := make([]string, len(msgs))
			lines := make([]string, len(msgs))
			for i, m := range msgs {
				ids[i] = m.ID
				lines[i] = fmt.Sprintf("%s | %s | %s", m.ID, m.From, m.Subject)
			}
			wctx.Extras[lastMessageIDsKey] = ids
			return strings.Join(lines, "\n"), nil
		},
	}
}

func getSpec(client Client) *workflow.Spec {
	return &workflow.Spec{
		Namespace: "mail",
		Name:      "get",
		Summary:   "read one email by id",
		Category:  "mail",
		Params: []workflow.ParamSpec{
			{Name: "id", Type: workflow.TypeString, Required: true, Positional: true, Index: 0},
		},
		Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
			id, _ := args["id"].(string)
			msg, err := client.Get(ctx, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("From: %s\nSubject: %s\n\n%s", msg.From, msg.Subject, msg.Body), nil
		},
	}
}

func replySpec(client Client) *workflow.Spec {
	return &workflow.Spec{
		Namespace: "mail",
		Name:      "reply",
		Summary:   "reply to an email by id",
		Category:  "mail",
		Params: []workflow.ParamSpec{
			{Name: "id", Type: workflow.TypeString, Required: true},
			{Name: "body", Type: workflow.TypeString, Required: true},
		},
		Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
			id, _ := args["id"].(string)
			body, _ := args["body"].(string)
			if err := client.Reply(ctx, id, body); err != nil {
				return "", err
			}
			return "replied to " + id, nil
		},
	}
}

func sendSpec(client Client) *workflow.Spec {
	return &workflow.Spec{
		Namespace: "mail",
		Name:      "send",
		Summary:   "send a new email",
		Category:  "mail",
		Params: []workflow.ParamSpec{
			{Name: "to", Type: workflow.TypeString, Required: true},
			{Name: "subject", Type: workflow.TypeString, Required: true},
			{Name: "body", Type: workflow.TypeString, Required: true},
		},
		Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
			to, _ := args["to"].(string)
			subject, _ := args["subject"].(string)
			body, _ := args["body"].(string)
			if err := client.Send(ctx, to, subject, body); err != nil {
				return "", err
			}
			return "sent to " + to, nil
		},
	}
}

func downloadSpec(client Client) *workflow.Spec {
	return &workflow.Spec{
		Namespace: "mail",
		Name:      "download",
		Summary:   "download an email by id as a local file",
		Category:  "mail",
		Params: []workflow.ParamSpec{
			{Name: "id", Type: workflow.TypeString, Required: true, Positional: true, Index: 0},
		},
		Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
			id, _ := args["id"].(string)
			path, err := client.Download(ctx, id)
			if err != nil {
				return "", err
			}
			return path, nil
		},
	}
}
