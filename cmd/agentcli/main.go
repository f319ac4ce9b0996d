package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/soochol/agentcli/internal/artifacts"
	"github.com/soochol/agentcli/internal/config"
	"github.com/soochol/agentcli/internal/executor"
	"github.com/soochol/agentcli/internal/generate"
	"github.com/soochol/agentcli/internal/llm"
	"github.com/soochol/agentcli/internal/planner"
	"github.com/soochol/agentcli/internal/workflow"
	"github.com/soochol/agentcli/internal/workflows/calendar"
	"github.com/soochol/agentcli/internal/workflows/docs"
	"github.com/soochol/agentcli/internal/workflows/mail"
	"github.com/soochol/agentcli/internal/workflows/search"

	adkmodel "google.golang.org/adk/model"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("agentcli v0.1.0")
		fmt.Println("Usage: agentcli <request...>")
		return
	}
	request := strings.Join(os.Args[1:], " ")

	cfg := config.Load()

	artifactsDir := filepath.Join(filepath.Dir(cfg.GeneratedDir), "artifacts")
	if _, err := artifacts.New(artifactsDir); err != nil {
		slog.Error("artifacts store init failed", "err", err)
		os.Exit(1)
	}

	reg := workflow.NewRegistry()
	if err := registerBuiltins(reg, filepath.Join(artifactsDir, "documents")); err != nil {
		slog.Error("workflow registration failed", "err", err)
		os.Exit(1)
	}

	local := llm.NewLocalClient(cfg.LocalModel.HTTPEnable, cfg.LocalModel.HTTPURL, cfg.LocalModel.Binary)
	plan := planner.New(local, cfg.Classifier, cfg.Planner, reg)

	var generationMgr *generate.Manager
	if cfg.Remote.APIKey != "" && cfg.Remote.Model != "" {
		var backend adkmodel.LLM = llm.NewOpenAICompatibleLLM(cfg.Remote.APIKey, "")
		remote := llm.NewRemoteClient(backend, cfg.Remote.Model)
		if err := os.MkdirAll(cfg.GeneratedDir, 0o755); err != nil {
			slog.Error("generated dir init failed", "err", err)
			os.Exit(1)
		}
		generationMgr = generate.New(remote, reg, cfg.GeneratedDir, cfg.Remote.MaxAttempts)
	}

	var loop *executor.Loop
	if generationMgr != nil {
		loop = executor.New(plan, reg, generationMgr)
	} else {
		loop = executor.New(plan, reg, nil)
	}

	output, err := loop.Run(context.Background(), request)
	if err != nil {
		slog.Error("request failed", "err", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

// registerBuiltins installs the built-in mail:*, calendar:*, docs:*, and
// search:* workflows (§4.K). mail, calendar and search use in-memory fake
// clients, since the spec treats each of these as an opaque effect port with
// no concrete provider named; docs shells out to external merge/convert
// binaries (pdftk and pandoc by default).
func registerBuiltins(reg *workflow.Registry, documentsDir string) error {
	if err := mail.Register(reg, mail.NewFakeClient(nil)); err != nil {
		return fmt.Errorf("register mail workflows: %w", err)
	}
	if err := calendar.Register(reg, calendar.NewFakeClient()); err != nil {
		return fmt.Errorf("register calendar workflows: %w", err)
	}
	if err := docs.Register(reg, docs.NewExternalMerger(""), docs.NewExternalConverter(""), documentsDir); err != nil {
		return fmt.Errorf("register docs workflows: %w", err)
	}
	if err := search.Register(reg, search.NewFakeClient(nil)); err != nil {
		return fmt.Errorf("register search workflows: %w", err)
	}
	return nil
}
