package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"

	adkmodel "google.golang.org/adk/model"
	"google.golang.org/genai"
)

var _ adkmodel.LLM = (*OpenAICompatibleLLM)(nil)

const openaiDefaultBaseURL = "https://api.openai.com/v1"

// OpenAICompatibleLLM implements the ADK model.LLM interface against the
// OpenAI chat-completions wire format (also served by most self-hosted
// OpenAI-compatible endpoints). Grounded on the teacher's
// internal/model/openai.go, trimmed to the text-only system+user exchange
// the Dynamic Workflow Generation Manager's remote client actually sends —
// this codebase never dispatches tool calls through the remote model, so
// the teacher's function-calling conversion is not carried over.
type OpenAICompatibleLLM struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAICompatibleLLM creates an adapter for AGENTCLI_REMOTE_MODEL /
// AGENTCLI_REMOTE_API_KEY (§6.4). baseURL defaults to the OpenAI API.
func NewOpenAICompatibleLLM(apiKey, baseURL string) *OpenAICompatibleLLM {
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}
	return &OpenAICompatibleLLM{apiKey: apiKey, baseURL: baseURL, client: http.DefaultClient}
}

// GenerateContent sends one non-streaming chat-completion request and
// yields exactly one response.
func (o *OpenAICompatibleLLM) GenerateContent(ctx context.Context, req *adkmodel.LLMRequest, stream bool) iter.Seq2[*adkmodel.LLMResponse, error] {
	return func(yield func(*adkmodel.LLMResponse, error) bool) {
		body := o.buildRequestBody(req)

		encoded, err := json.Marshal(body)
		if err != nil {
			yield(nil, fmt.Errorf("openai-compatible: marshal request: %w", err))
			return
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(encoded))
		if err != nil {
			yield(nil, fmt.Errorf("openai-compatible: create request: %w", err))
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if o.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
		}

		httpResp, err := o.client.Do(httpReq)
		if err != nil {
			yield(nil, fmt.Errorf("openai-compatible: request failed: %w", err))
			return
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			yield(nil, fmt.Errorf("openai-compatible: read response: %w", err))
			return
		}
		if httpResp.StatusCode != http.StatusOK {
			yield(nil, fmt.Errorf("openai-compatible: status %d: %s", httpResp.StatusCode, string(respBody)))
			return
		}

		var apiResp chatCompletionResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			yield(nil, fmt.Errorf("openai-compatible: unmarshal response: %w", err))
			return
		}
		if len(apiResp.Choices) == 0 {
			yield(nil, fmt.Errorf("openai-compatible: no choices in response"))
			return
		}

		yield(&adkmodel.LLMResponse{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{genai.NewPartFromText(apiResp.Choices[0].Message.Content)},
			},
			TurnComplete: true,
		}, nil)
	}
}

func (o *OpenAICompatibleLLM) buildRequestBody(req *adkmodel.LLMRequest) map[string]any {
	var messages []map[string]any
	if req.Config != nil && req.Config.SystemInstruction != nil {
		if text := extractFirstText(req.Config.SystemInstruction); text != "" {
			messages = append(messages, map[string]any{"role": "system", "content": text})
		}
	}
	for _, content := range req.Contents {
		if text := extractFirstText(content); text != "" {
			messages = append(messages, map[string]any{"role": openaiRole(content.Role), "content": text})
		}
	}
	return map[string]any{
		"model":    req.Model,
		"stream":   false,
		"messages": messages,
	}
}

func extractFirstText(content *genai.Content) string {
	var text string
	for i, part := range content.Parts {
		if part.Text == "" {
			continue
		}
		if i > 0 && text != "" {
			text += "\n"
		}
		text += part.Text
	}
	return text
}

func openaiRole(role string) string {
	switch role {
	case genai.RoleModel:
		return "assistant"
	case genai.RoleUser:
		return "user"
	default:
		return role
	}
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
