package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	adkmodel "google.golang.org/adk/model"
	"google.golang.org/genai"
)

func TestOpenAICompatibleLLM_GenerateContent_SendsMessagesAndParsesResponse(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi there"}}]}`))
	}))
	defer server.Close()

	adapter := NewOpenAICompatibleLLM("test-key", server.URL)
	req := &adkmodel.LLMRequest{
		Model: "gpt-4o-mini",
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("be terse", genai.RoleUser),
		},
		Contents: []*genai.Content{
			genai.NewContentFromText("hello", genai.RoleUser),
		},
	}

	var resp *adkmodel.LLMResponse
	var gotErr error
	for r, err := range adapter.GenerateContent(context.Background(), req, false) {
		resp, gotErr = r, err
	}

	require.NoError(t, gotErr)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "gpt-4o-mini", gotBody["model"])
	require.Len(t, resp.Content.Parts, 1)
	require.Equal(t, "hi there", resp.Content.Parts[0].Text)
}

func TestOpenAICompatibleLLM_GenerateContent_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	adapter := NewOpenAICompatibleLLM("bad-key", server.URL)
	req := &adkmodel.LLMRequest{
		Model:    "gpt-4o-mini",
		Contents: []*genai.Content{genai.NewContentFromText("hello", genai.RoleUser)},
	}

	var gotErr error
	for _, err := range adapter.GenerateContent(context.Background(), req, false) {
		gotErr = err
	}
	require.Error(t, gotErr)
}
