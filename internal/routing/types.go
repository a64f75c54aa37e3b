// Package routing resolves the effective CLI+model configuration for an
// agent role, generalizing agentium's phase→adapter routing (which phase of
// a code-review loop uses which LLM adapter) into hive-manager's
// role→CLI routing (which agent role uses which coding-assistant CLI and
// model), per §4.E's "effective configuration (which coding-assistant
// command, model, flag list...)".
package routing

import "strings"

// CLIConfig names the coding-assistant CLI and model an agent role should
// use. CLI must be validated against the registry allowlist by the caller;
// this package only carries the value.
type CLIConfig struct {
	CLI   string `json:"cli" yaml:"cli" mapstructure:"cli"`
	Model string `json:"model" yaml:"model" mapstructure:"model"`
}

// RoleRouting maps agent roles ("queen", "worker", "planner", ...) to their
// effective CLIConfig, with a fallback Default for roles not named in
// Overrides.
type RoleRouting struct {
	Default   CLIConfig            `json:"default" yaml:"default" mapstructure:"default"`
	Overrides map[string]CLIConfig `json:"overrides,omitempty" yaml:"overrides,omitempty" mapstructure:"overrides"`
}

// ParseCLISpec parses a "cli:model" colon-separated string into a
// CLIConfig. Without a colon the whole string is treated as the model,
// leaving CLI empty so the caller falls back to its own default.
func ParseCLISpec(spec string) CLIConfig {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) == 2 {
		return CLIConfig{CLI: parts[0], Model: parts[1]}
	}
	return CLIConfig{Model: spec}
}
