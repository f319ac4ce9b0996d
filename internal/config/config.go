// Package config loads the agent's configuration from the process
// environment. Grounded on the teacher's internal/config/config.go shape (a
// defaults() function, a Load that overlays parsed values onto defaults,
// typed sub-structs) but sourced from os.Getenv rather than a YAML file,
// since the environment-variable keys are part of the external interface.
package config

import (
	"os"
	"strconv"

	"github.com/soochol/agentcli/internal/llm"
)

// LocalModelConfig controls the local model transport (§4.A).
type LocalModelConfig struct {
	HTTPEnable bool
	HTTPURL    string
	Binary     string
}

// RemoteConfig controls the remote generation client (§4.B, §4.H).
type RemoteConfig struct {
	Model       string
	APIKey      string
	MaxAttempts int
}

// Config holds the full set of AGENTCLI_-prefixed environment keys (§6.4).
type Config struct {
	LocalModel   LocalModelConfig
	Classifier   llm.Profile
	Planner      llm.Profile
	Remote       RemoteConfig
	GeneratedDir string
	Debug        bool
}

// defaults returns a Config populated with sensible default values. Both
// model profiles default to zero temperature and a fixed seed.
func defaults() *Config {
	classifierTemp, plannerTemp := 0.0, 0.0
	classifierSeed, plannerSeed := int64(42), int64(42)
	return &Config{
		LocalModel: LocalModelConfig{
			Binary: "ollama",
		},
		Classifier: llm.Profile{
			TimeoutSeconds: 30,
			Temperature:    &classifierTemp,
			Seed:           &classifierSeed,
		},
		Planner: llm.Profile{
			TimeoutSeconds: 30,
			Temperature:    &plannerTemp,
			Seed:           &plannerSeed,
		},
		Remote: RemoteConfig{
			MaxAttempts: 1,
		},
		GeneratedDir: "./generated",
	}
}

// Load reads AGENTCLI_-prefixed environment variables and overlays them onto
// defaults(). Unset keys keep their default; malformed numeric/boolean
// values are ignored and the default is kept (§7: config loading is
// best-effort, never fatal).
func Load() *Config {
	cfg := defaults()

	if v, ok := os.LookupEnv("AGENTCLI_LOCAL_MODEL_HTTP_ENABLE"); ok {
		cfg.LocalModel.HTTPEnable = parseBool(v, cfg.LocalModel.HTTPEnable)
	}
	if v, ok := os.LookupEnv("AGENTCLI_LOCAL_MODEL_URL"); ok {
		cfg.LocalModel.HTTPURL = v
	}

	if v, ok := os.LookupEnv("AGENTCLI_CLASSIFIER_MODEL"); ok {
		cfg.Classifier.Model = v
	}
	if v, ok := os.LookupEnv("AGENTCLI_PLANNER_MODEL"); ok {
		cfg.Planner.Model = v
	}
	if v, ok := os.LookupEnv("AGENTCLI_CLASSIFIER_TIMEOUT"); ok {
		cfg.Classifier.TimeoutSeconds = parseInt(v, cfg.Classifier.TimeoutSeconds)
	}
	if v, ok := os.LookupEnv("AGENTCLI_PLANNER_TIMEOUT"); ok {
		cfg.Planner.TimeoutSeconds = parseInt(v, cfg.Planner.TimeoutSeconds)
	}
	if v, ok := os.LookupEnv("AGENTCLI_CLASSIFIER_SEED"); ok {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Classifier.Seed = &seed
		}
	}
	if v, ok := os.LookupEnv("AGENTCLI_PLANNER_SEED"); ok {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Planner.Seed = &seed
		}
	}

	if v, ok := os.LookupEnv("AGENTCLI_REMOTE_MODEL"); ok {
		cfg.Remote.Model = v
	}
	if v, ok := os.LookupEnv("AGENTCLI_REMOTE_API_KEY"); ok {
		cfg.Remote.APIKey = v
	}
	if v, ok := os.LookupEnv("AGENTCLI_REMOTE_MAX_ATTEMPTS"); ok {
		cfg.Remote.MaxAttempts = parseInt(v, cfg.Remote.MaxAttempts)
	}

	if v, ok := os.LookupEnv("AGENTCLI_GENERATED_DIR"); ok {
		cfg.GeneratedDir = v
	}
	if v, ok := os.LookupEnv("AGENTCLI_DEBUG"); ok {
		cfg.Debug = parseBool(v, cfg.Debug)
	}

	return cfg
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func parseInt(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
