package llm

import (
	"context"
	"fmt"

	"github.com/soochol/agentcli/internal/llmutil"

	adkmodel "google.golang.org/adk/model"
	"google.golang.org/genai"
)

// RemoteClient wraps a hosted large model behind the ADK model.LLM interface
// (§4.B). Unlike LocalClient it never falls back silently: callers that need
// retry/backoff (the Generation Manager) own that policy themselves.
type RemoteClient struct {
	llm   adkmodel.LLM
	model string
}

// NewRemoteClient wraps llm. A nil llm produces a RemoteClient that reports
// IsConfigured() == false, matching "remote generation unavailable" (§7).
func NewRemoteClient(llm adkmodel.LLM, model string) *RemoteClient {
	return &RemoteClient{llm: llm, model: model}
}

// IsConfigured reports whether a remote model backend is available at all.
func (c *RemoteClient) IsConfigured() bool {
	return c.llm != nil && c.model != ""
}

// Generate issues one synchronous request with the given system and user
// prompts and returns the concatenated text of the response.
func (c *RemoteClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.IsConfigured() {
		return "", &TransportError{Transport: "remote", Err: fmt.Errorf("no remote model configured")}
	}

	req := &adkmodel.LLMRequest{
		Model: c.model,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		},
		Contents: []*genai.Content{
			genai.NewContentFromText(userPrompt, genai.RoleUser),
		},
	}

	var resp *adkmodel.LLMResponse
	for r, err := range c.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", &TransportError{Transport: "remote", Err: err}
		}
		resp = r
	}

	text := llmutil.ExtractText(resp)
	if text == "" {
		return "", &TransportError{Transport: "remote", Err: fmt.Errorf("empty response")}
	}
	return text, nil
}

// GenerateJSON is a convenience wrapper for call sites that expect the model
// to return a single JSON object, tolerating markdown fences or leading
// commentary around it (§4.B, §7).
func (c *RemoteClient) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	raw, err := c.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	return llmutil.StripMarkdownJSON(raw)
}
