// Package config loads hive-manager's daemon configuration: the HTTP
// listen port, the on-disk session store root, the static CLI registry
// (§6's allowlist), and per-role spawn defaults. Layered the way agentium
// layers its own config — viper reads a YAML file, then `HIVE_`-prefixed
// environment variables, then explicit flags, in that precedence order.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/rdfitted/hive-manager/internal/routing"
)

// PromptArgStyle names how a CLI expects the prompt document referenced on
// its command line, per §4.E's "prompt-reference argument whose syntax is
// CLI-specific".
type PromptArgStyle string

const (
	PromptArgFlagP    PromptArgStyle = "flag-p"     // -p <path>
	PromptArgFlagI    PromptArgStyle = "flag-i"     // -i <path>
	PromptArgPositional PromptArgStyle = "positional" // <path> with no flag
)

// CLIEntry describes one entry in the static coding-assistant CLI registry.
type CLIEntry struct {
	Command          string         `mapstructure:"command"`
	AutoApproveFlag  string         `mapstructure:"auto_approve_flag"`
	ModelFlag        string         `mapstructure:"model_flag"`
	DefaultModel     string         `mapstructure:"default_model"`
	PromptArgStyle   PromptArgStyle `mapstructure:"prompt_arg_style"`
	ToleranceProfile string         `mapstructure:"tolerance_profile"` // one of the §6 polling-protocol variant names
}

// RoleDefaults captures the default effective configuration for one agent
// role, used when a launch request does not override it.
type RoleDefaults struct {
	CLI   string `mapstructure:"cli"`
	Model string `mapstructure:"model"`
	Cols  int    `mapstructure:"cols"`
	Rows  int    `mapstructure:"rows"`
}

// Config is hive-manager's daemon configuration.
type Config struct {
	HTTPPort  int    `mapstructure:"http_port"`
	StoreRoot string `mapstructure:"store_root"` // defaults to the project path supplied at launch if empty

	StallCheckInterval time.Duration `mapstructure:"stall_check_interval"`
	StallThreshold     time.Duration `mapstructure:"stall_threshold"`

	CLIRegistry  map[string]CLIEntry     `mapstructure:"cli_registry"`
	RoleDefaults map[string]RoleDefaults `mapstructure:"role_defaults"`

	// RoleRouting optionally overrides a role's CLI+model beyond what
	// RoleDefaults states, e.g. to route every judge to a specific model
	// without touching the rest of RoleDefaults. Empty by default, which
	// makes internal/routing.Router a no-op.
	RoleRouting routing.RoleRouting `mapstructure:"role_routing"`
}

// Load reads configuration from whatever viper has already been configured
// to read (file + env + flags, wired by cmd/hivectl's root command) and
// fills in any field left unset with hive-manager's defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// defaultCLIRegistry is the static allowlist named by §6: "CLI must be in
// the static allowlist (claude, gemini, codex, opencode, cursor, droid,
// qwen)". Each entry's prompt_arg_style and tolerance_profile are decided
// here because spec.md leaves the per-CLI detail to "the CLI registry's
// static table", which is an external collaborator — this is
// hive-manager's best-effort seed of that table, overridable via YAML.
func defaultCLIRegistry() map[string]CLIEntry {
	return map[string]CLIEntry{
		"claude": {
			Command: "claude", AutoApproveFlag: "--dangerously-skip-permissions",
			ModelFlag: "--model", DefaultModel: "sonnet",
			PromptArgStyle: PromptArgFlagP, ToleranceProfile: "ExplicitPolling",
		},
		"gemini": {
			Command: "gemini", AutoApproveFlag: "--yolo",
			ModelFlag: "--model", DefaultModel: "gemini-2.5-pro",
			PromptArgStyle: PromptArgFlagI, ToleranceProfile: "InstructionFollowing",
		},
		"codex": {
			Command: "codex", AutoApproveFlag: "--full-auto",
			ModelFlag: "--model", DefaultModel: "o4-mini",
			PromptArgStyle: PromptArgPositional, ToleranceProfile: "ActionProne",
		},
		"opencode": {
			Command: "opencode", AutoApproveFlag: "--auto-approve",
			ModelFlag: "--model", DefaultModel: "",
			PromptArgStyle: PromptArgPositional, ToleranceProfile: "ExplicitPolling",
		},
		"cursor": {
			Command: "cursor-agent", AutoApproveFlag: "--force",
			ModelFlag: "--model", DefaultModel: "",
			PromptArgStyle: PromptArgFlagP, ToleranceProfile: "Interactive",
		},
		"droid": {
			Command: "droid", AutoApproveFlag: "--auto",
			ModelFlag: "--model", DefaultModel: "",
			PromptArgStyle: PromptArgPositional, ToleranceProfile: "InstructionFollowing",
		},
		"qwen": {
			Command: "qwen", AutoApproveFlag: "--yolo",
			ModelFlag: "--model", DefaultModel: "",
			PromptArgStyle: PromptArgPositional, ToleranceProfile: "ActionProne",
		},
	}
}

func defaultRoleDefaults() map[string]RoleDefaults {
	return map[string]RoleDefaults{
		"queen":          {CLI: "claude", Cols: 120, Rows: 40},
		"master_planner": {CLI: "claude", Cols: 120, Rows: 40},
		"planner":        {CLI: "claude", Cols: 120, Rows: 40},
		"worker":         {CLI: "claude", Cols: 120, Rows: 40},
		"variant":        {CLI: "claude", Cols: 120, Rows: 40},
		"judge":          {CLI: "claude", Cols: 120, Rows: 40},
	}
}

// applyDefaults fills unset fields, mirroring agentium's applyDefaults.
func applyDefaults(cfg *Config) {
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = 8787
	}
	if cfg.StallCheckInterval == 0 {
		cfg.StallCheckInterval = 60 * time.Second
	}
	if cfg.StallThreshold == 0 {
		cfg.StallThreshold = 180 * time.Second
	}
	if len(cfg.CLIRegistry) == 0 {
		cfg.CLIRegistry = defaultCLIRegistry()
	}
	if len(cfg.RoleDefaults) == 0 {
		cfg.RoleDefaults = defaultRoleDefaults()
	}
}

// Validate checks invariants the daemon depends on before it starts.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("config: http_port %d out of range", c.HTTPPort)
	}
	if len(c.CLIRegistry) == 0 {
		return fmt.Errorf("config: cli_registry must not be empty")
	}
	for name, entry := range c.CLIRegistry {
		if entry.Command == "" {
			return fmt.Errorf("config: cli_registry[%s].command is required", name)
		}
		switch entry.PromptArgStyle {
		case PromptArgFlagP, PromptArgFlagI, PromptArgPositional:
		default:
			return fmt.Errorf("config: cli_registry[%s].prompt_arg_style %q is invalid", name, entry.PromptArgStyle)
		}
	}
	if c.StallCheckInterval <= 0 {
		return fmt.Errorf("config: stall_check_interval must be positive")
	}
	if c.StallThreshold <= 0 {
		return fmt.Errorf("config: stall_threshold must be positive")
	}
	return nil
}

// LookupCLI returns the registry entry for name, or false if name is not in
// the allowlist — the same check §6 requires at the HTTP boundary.
func (c *Config) LookupCLI(name string) (CLIEntry, bool) {
	entry, ok := c.CLIRegistry[name]
	return entry, ok
}

// RoleDefault returns the default effective configuration for role, or the
// zero value if none is configured.
func (c *Config) RoleDefault(role string) RoleDefaults {
	return c.RoleDefaults[role]
}
