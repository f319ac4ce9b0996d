package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// LocalClient generates deterministic one-shot completions from a small
// local model, either over HTTP (a long-lived local server, lower latency)
// or by shelling out to the model's CLI (no persistent process required).
type LocalClient struct {
	HTTPEnable bool
	HTTPURL    string
	Binary     string // CLI binary name or path, e.g. "ollama"

	httpClient *http.Client

	probeOnce    sync.Once
	probeSupport bool

	warmedMu sync.Mutex
	warmed   map[string]bool
}

// NewLocalClient constructs a LocalClient. binary defaults to "ollama" when empty.
func NewLocalClient(httpEnable bool, httpURL, binary string) *LocalClient {
	if binary == "" {
		binary = "ollama"
	}
	return &LocalClient{
		HTTPEnable: httpEnable,
		HTTPURL:    httpURL,
		Binary:     binary,
		httpClient: &http.Client{},
		warmed:     make(map[string]bool),
	}
}

// Generate produces a single textual completion from prompt, or (  "", false)
// if both transports fail or time out — matching spec's "return none"
// behaviour (§4.A). model, when empty, falls back to profile.Model.
func (c *LocalClient) Generate(ctx context.Context, prompt string, profile Profile, model string) (string, bool) {
	resolvedModel := model
	if resolvedModel == "" {
		resolvedModel = profile.Model
	}
	timeout := time.Duration(profile.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if c.HTTPEnable {
		text, err := c.generateHTTP(ctx, prompt, resolvedModel, profile, timeout)
		if err == nil {
			return text, true
		}
		slog.Warn("local model: HTTP transport failed, falling back to CLI", "err", err)
	}

	text, err := c.generateCLI(ctx, prompt, resolvedModel, profile, timeout)
	if err != nil {
		slog.Error("local model: CLI transport failed", "err", err)
		return "", false
	}
	return text, true
}

// WarmUp launches a non-blocking warm-up request for model, at most once per
// process per model id (§4.A). Safe to call from multiple goroutines.
func (c *LocalClient) WarmUp(profile Profile, model string) {
	resolvedModel := model
	if resolvedModel == "" {
		resolvedModel = profile.Model
	}

	c.warmedMu.Lock()
	if c.warmed[resolvedModel] {
		c.warmedMu.Unlock()
		return
	}
	c.warmed[resolvedModel] = true
	c.warmedMu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		c.Generate(ctx, "", profile, resolvedModel)
	}()
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *LocalClient) generateHTTP(ctx context.Context, prompt, model string, profile Profile, timeout time.Duration) (string, error) {
	if c.HTTPURL == "" {
		return "", &TransportError{Transport: "http", Err: errors.New("no HTTP URL configured")}
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: true, Options: profile.options()})
	if err != nil {
		return "", &TransportError{Transport: "http", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.HTTPURL, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Transport: "http", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Transport: "http", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{Transport: "http", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var out strings.Builder
	dec := json.NewDecoder(resp.Body)
	for dec.More() {
		var chunk generateChunk
		if err := dec.Decode(&chunk); err != nil {
			break
		}
		out.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", &TransportError{Transport: "http", Err: errors.New("empty response")}
	}
	return text, nil
}

// probeOptionsSupport checks, once per process, whether the local CLI
// advertises an options flag. The result is cached (§4.A).
func (c *LocalClient) probeOptionsSupport() bool {
	c.probeOnce.Do(func() {
		out, err := exec.Command(c.Binary, "run", "--help").CombinedOutput()
		if err != nil {
			c.probeSupport = false // a failed probe advertises nothing
			return
		}
		c.probeSupport = strings.Contains(string(out), "--options")
	})
	return c.probeSupport
}

func (c *LocalClient) generateCLI(ctx context.Context, prompt, model string, profile Profile, timeout time.Duration) (string, error) {
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"run", model}
	opts := profile.options()
	if len(opts) > 0 && c.probeOptionsSupport() {
		optsJSON, err := json.Marshal(opts)
		if err == nil {
			args = append(args, "--options", string(optsJSON))
		}
	}

	cmd := exec.CommandContext(execCtx, c.Binary, args...)
	cmd.Stdin = strings.NewReader(prompt)
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", &TransportError{Transport: "cli", Err: errors.New(msg)}
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", &TransportError{Transport: "cli", Err: errors.New("empty response")}
	}
	return text, nil
}
