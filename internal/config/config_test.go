package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.LocalModel.HTTPEnable {
		t.Errorf("LocalModel.HTTPEnable = true, want false")
	}
	if cfg.LocalModel.Binary != "ollama" {
		t.Errorf("LocalModel.Binary = %q, want %q", cfg.LocalModel.Binary, "ollama")
	}
	if cfg.Classifier.TimeoutSeconds != 30 {
		t.Errorf("Classifier.TimeoutSeconds = %d, want 30", cfg.Classifier.TimeoutSeconds)
	}
	if cfg.Remote.MaxAttempts != 1 {
		t.Errorf("Remote.MaxAttempts = %d, want 1", cfg.Remote.MaxAttempts)
	}
	if cfg.GeneratedDir != "./generated" {
		t.Errorf("GeneratedDir = %q, want %q", cfg.GeneratedDir, "./generated")
	}
	if cfg.Debug {
		t.Errorf("Debug = true, want false")
	}
}

func TestLoad_OverlaysEnvironment(t *testing.T) {
	t.Setenv("AGENTCLI_LOCAL_MODEL_HTTP_ENABLE", "true")
	t.Setenv("AGENTCLI_LOCAL_MODEL_URL", "http://localhost:11434")
	t.Setenv("AGENTCLI_CLASSIFIER_MODEL", "llama3")
	t.Setenv("AGENTCLI_PLANNER_MODEL", "llama3:planner")
	t.Setenv("AGENTCLI_CLASSIFIER_TIMEOUT", "5")
	t.Setenv("AGENTCLI_PLANNER_TIMEOUT", "45")
	t.Setenv("AGENTCLI_CLASSIFIER_SEED", "7")
	t.Setenv("AGENTCLI_REMOTE_MODEL", "gemini-pro")
	t.Setenv("AGENTCLI_REMOTE_API_KEY", "secret")
	t.Setenv("AGENTCLI_REMOTE_MAX_ATTEMPTS", "3")
	t.Setenv("AGENTCLI_GENERATED_DIR", "/tmp/generated")
	t.Setenv("AGENTCLI_DEBUG", "1")

	cfg := Load()

	if !cfg.LocalModel.HTTPEnable {
		t.Error("LocalModel.HTTPEnable = false, want true")
	}
	if cfg.LocalModel.HTTPURL != "http://localhost:11434" {
		t.Errorf("LocalModel.HTTPURL = %q, want %q", cfg.LocalModel.HTTPURL, "http://localhost:11434")
	}
	if cfg.Classifier.Model != "llama3" {
		t.Errorf("Classifier.Model = %q, want %q", cfg.Classifier.Model, "llama3")
	}
	if cfg.Planner.Model != "llama3:planner" {
		t.Errorf("Planner.Model = %q, want %q", cfg.Planner.Model, "llama3:planner")
	}
	if cfg.Classifier.TimeoutSeconds != 5 {
		t.Errorf("Classifier.TimeoutSeconds = %d, want 5", cfg.Classifier.TimeoutSeconds)
	}
	if cfg.Planner.TimeoutSeconds != 45 {
		t.Errorf("Planner.TimeoutSeconds = %d, want 45", cfg.Planner.TimeoutSeconds)
	}
	if cfg.Classifier.Seed == nil || *cfg.Classifier.Seed != 7 {
		t.Errorf("Classifier.Seed = %v, want 7", cfg.Classifier.Seed)
	}
	if cfg.Remote.Model != "gemini-pro" {
		t.Errorf("Remote.Model = %q, want %q", cfg.Remote.Model, "gemini-pro")
	}
	if cfg.Remote.APIKey != "secret" {
		t.Errorf("Remote.APIKey = %q, want %q", cfg.Remote.APIKey, "secret")
	}
	if cfg.Remote.MaxAttempts != 3 {
		t.Errorf("Remote.MaxAttempts = %d, want 3", cfg.Remote.MaxAttempts)
	}
	if cfg.GeneratedDir != "/tmp/generated" {
		t.Errorf("GeneratedDir = %q, want %q", cfg.GeneratedDir, "/tmp/generated")
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestLoad_MalformedNumericFallsBackToDefault(t *testing.T) {
	t.Setenv("AGENTCLI_CLASSIFIER_TIMEOUT", "not-a-number")
	t.Setenv("AGENTCLI_REMOTE_MAX_ATTEMPTS", "also-not-a-number")

	cfg := Load()

	if cfg.Classifier.TimeoutSeconds != 30 {
		t.Errorf("Classifier.TimeoutSeconds = %d, want default 30", cfg.Classifier.TimeoutSeconds)
	}
	if cfg.Remote.MaxAttempts != 1 {
		t.Errorf("Remote.MaxAttempts = %d, want default 1", cfg.Remote.MaxAttempts)
	}
}
