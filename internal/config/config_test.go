package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
}

func TestLoadAppliesDefaults(t *testing.T) {
	resetViper()
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPPort != 8787 {
		t.Errorf("HTTPPort = %d, want 8787", cfg.HTTPPort)
	}
	if cfg.StallCheckInterval != 60*time.Second {
		t.Errorf("StallCheckInterval = %v, want 60s", cfg.StallCheckInterval)
	}
	if cfg.StallThreshold != 180*time.Second {
		t.Errorf("StallThreshold = %v, want 180s", cfg.StallThreshold)
	}
	for _, name := range []string{"claude", "gemini", "codex", "opencode", "cursor", "droid", "qwen"} {
		if _, ok := cfg.LookupCLI(name); !ok {
			t.Errorf("expected default CLI registry to contain %q", name)
		}
	}
}

func TestLoadHonorsExplicitHTTPPort(t *testing.T) {
	resetViper()
	viper.Set("http_port", 9999)
	defer resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != 9999 {
		t.Errorf("HTTPPort = %d, want 9999", cfg.HTTPPort)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.HTTPPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range http_port")
	}
}

func TestValidateRejectsEmptyRegistry(t *testing.T) {
	cfg := &Config{HTTPPort: 8787, StallCheckInterval: time.Second, StallThreshold: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty cli_registry")
	}
}

func TestValidateRejectsBadPromptArgStyle(t *testing.T) {
	cfg := &Config{
		HTTPPort:           8787,
		StallCheckInterval: time.Second,
		StallThreshold:     time.Second,
		CLIRegistry: map[string]CLIEntry{
			"weird": {Command: "weird", PromptArgStyle: "not-a-style"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid prompt_arg_style")
	}
}

func TestValidatePassesWithDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with defaults returned error: %v", err)
	}
}

func TestLookupCLIUnknown(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	if _, ok := cfg.LookupCLI("not-a-real-cli"); ok {
		t.Error("expected LookupCLI to reject a name outside the allowlist")
	}
}

func TestRoleDefaultUnknownRoleIsZeroValue(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	if got := cfg.RoleDefault("not-a-role"); got != (RoleDefaults{}) {
		t.Errorf("RoleDefault for unknown role = %+v, want zero value", got)
	}
}
