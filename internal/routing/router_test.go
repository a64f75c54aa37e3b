package routing

import (
	"sort"
	"testing"
)

func TestNilRouter(t *testing.T) {
	r := NewRouter(nil)

	if r.IsConfigured() {
		t.Error("nil router should not be configured")
	}

	cfg := r.ForRole("worker")
	if cfg.CLI != "" || cfg.Model != "" {
		t.Errorf("nil router ForRole should return empty, got %+v", cfg)
	}

	if clis := r.CLIs(); clis != nil {
		t.Errorf("nil router CLIs should return nil, got %v", clis)
	}
}

func TestDefaultOnly(t *testing.T) {
	r := NewRouter(&RoleRouting{
		Default: CLIConfig{CLI: "claude", Model: "opus"},
	})

	if !r.IsConfigured() {
		t.Error("router with default should be configured")
	}

	for _, role := range []string{"queen", "worker", "planner", "judge"} {
		cfg := r.ForRole(role)
		if cfg.CLI != "claude" || cfg.Model != "opus" {
			t.Errorf("role %s: expected default, got %+v", role, cfg)
		}
	}
}

func TestOverrideExists(t *testing.T) {
	r := NewRouter(&RoleRouting{
		Default: CLIConfig{CLI: "claude", Model: "opus"},
		Overrides: map[string]CLIConfig{
			"worker": {CLI: "claude", Model: "sonnet"},
		},
	})

	cfg := r.ForRole("worker")
	if cfg.CLI != "claude" || cfg.Model != "sonnet" {
		t.Errorf("worker role should use override, got %+v", cfg)
	}
}

func TestOverrideMissing(t *testing.T) {
	r := NewRouter(&RoleRouting{
		Default: CLIConfig{CLI: "claude", Model: "opus"},
		Overrides: map[string]CLIConfig{
			"worker": {CLI: "claude", Model: "sonnet"},
		},
	})

	cfg := r.ForRole("queen")
	if cfg.CLI != "claude" || cfg.Model != "opus" {
		t.Errorf("queen role should fall back to default, got %+v", cfg)
	}
}

func TestCLIsUnique(t *testing.T) {
	r := NewRouter(&RoleRouting{
		Default: CLIConfig{CLI: "claude", Model: "opus"},
		Overrides: map[string]CLIConfig{
			"worker": {CLI: "claude", Model: "sonnet"},
			"judge":  {CLI: "codex", Model: "o4-mini"},
		},
	})

	clis := r.CLIs()
	sort.Strings(clis)

	if len(clis) != 2 {
		t.Fatalf("expected 2 unique CLIs, got %d: %v", len(clis), clis)
	}
	if clis[0] != "claude" || clis[1] != "codex" {
		t.Errorf("unexpected CLIs: %v", clis)
	}
}

func TestCLIsEmptyCLI(t *testing.T) {
	r := NewRouter(&RoleRouting{
		Default: CLIConfig{Model: "opus"},
		Overrides: map[string]CLIConfig{
			"worker": {Model: "sonnet"},
		},
	})

	clis := r.CLIs()
	if len(clis) != 0 {
		t.Errorf("expected no CLIs when all have empty CLI field, got %v", clis)
	}
}

func TestIsConfiguredOverridesOnly(t *testing.T) {
	r := NewRouter(&RoleRouting{
		Overrides: map[string]CLIConfig{
			"worker": {CLI: "claude", Model: "sonnet"},
		},
	})

	if !r.IsConfigured() {
		t.Error("router with overrides should be configured")
	}
}

func TestIsConfiguredEmpty(t *testing.T) {
	r := NewRouter(&RoleRouting{})

	if r.IsConfigured() {
		t.Error("router with empty config should not be configured")
	}
}

func TestParseCLISpecWithColon(t *testing.T) {
	cfg := ParseCLISpec("claude:opus")
	if cfg.CLI != "claude" || cfg.Model != "opus" {
		t.Errorf("expected {claude, opus}, got %+v", cfg)
	}
}

func TestParseCLISpecWithoutColon(t *testing.T) {
	cfg := ParseCLISpec("opus")
	if cfg.CLI != "" || cfg.Model != "opus" {
		t.Errorf("expected {'', opus}, got %+v", cfg)
	}
}

func TestParseCLISpecMultipleColons(t *testing.T) {
	cfg := ParseCLISpec("claude:claude-opus-4-20250514")
	if cfg.CLI != "claude" || cfg.Model != "claude-opus-4-20250514" {
		t.Errorf("expected {claude, claude-opus-4-20250514}, got %+v", cfg)
	}
}

func TestParseCLISpecEmpty(t *testing.T) {
	cfg := ParseCLISpec("")
	if cfg.CLI != "" || cfg.Model != "" {
		t.Errorf("expected empty, got %+v", cfg)
	}
}
