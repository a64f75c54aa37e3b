package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .hive-manager.yaml in the current directory",
	Long: `init writes a starter .hive-manager.yaml configuration file for hived:
the HTTP port, the on-disk session store root, stall-detection thresholds,
and the coding-assistant CLI registry, all set to hive-manager's built-in
defaults and ready to be hand-edited.

Example:
  hivectl init
  hivectl init --store-root ~/.hive-manager --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("store-root", "", "session store root (default: the project directory at daemon launch)")
	initCmd.Flags().Bool("force", false, "overwrite an existing .hive-manager.yaml")
	rootCmd.AddCommand(initCmd)
}

// fileConfig mirrors the on-disk shape of internal/config.Config, expressed
// with yaml tags for Marshal rather than the runtime type's mapstructure
// tags, the way agentium's own `init` keeps its written-config struct
// separate from any struct it loads back at runtime.
type fileConfig struct {
	HTTPPort           int                        `yaml:"http_port"`
	StoreRoot          string                     `yaml:"store_root,omitempty"`
	StallCheckInterval string                     `yaml:"stall_check_interval"`
	StallThreshold     string                     `yaml:"stall_threshold"`
	CLIRegistry        map[string]fileCLIEntry    `yaml:"cli_registry"`
	RoleDefaults       map[string]fileRoleDefault `yaml:"role_defaults"`
}

type fileCLIEntry struct {
	Command          string `yaml:"command"`
	AutoApproveFlag  string `yaml:"auto_approve_flag,omitempty"`
	ModelFlag        string `yaml:"model_flag,omitempty"`
	DefaultModel     string `yaml:"default_model,omitempty"`
	PromptArgStyle   string `yaml:"prompt_arg_style"`
	ToleranceProfile string `yaml:"tolerance_profile"`
}

type fileRoleDefault struct {
	CLI   string `yaml:"cli"`
	Model string `yaml:"model,omitempty"`
	Cols  int    `yaml:"cols"`
	Rows  int    `yaml:"rows"`
}

func runInit(cmd *cobra.Command, args []string) error {
	const configPath = ".hive-manager.yaml"

	force, _ := cmd.Flags().GetBool("force")
	storeRoot, _ := cmd.Flags().GetString("store-root")

	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	cfg := defaultFileConfig(storeRoot)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	header := "# hive-manager daemon configuration\n" +
		"# loaded by hived / hivectl serve; HIVE_-prefixed env vars override these values\n\n"

	if err := os.WriteFile(configPath, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}

	abs, _ := filepath.Abs(configPath)
	fmt.Printf("Created %s\n", abs)
	return nil
}

func defaultFileConfig(storeRoot string) fileConfig {
	return fileConfig{
		HTTPPort:           8787,
		StoreRoot:          storeRoot,
		StallCheckInterval: "60s",
		StallThreshold:     "180s",
		CLIRegistry: map[string]fileCLIEntry{
			"claude": {
				Command: "claude", AutoApproveFlag: "--dangerously-skip-permissions",
				ModelFlag: "--model", DefaultModel: "sonnet",
				PromptArgStyle: "flag-p", ToleranceProfile: "ExplicitPolling",
			},
			"gemini": {
				Command: "gemini", AutoApproveFlag: "--yolo",
				ModelFlag: "--model", DefaultModel: "gemini-2.5-pro",
				PromptArgStyle: "flag-i", ToleranceProfile: "InstructionFollowing",
			},
			"codex": {
				Command: "codex", AutoApproveFlag: "--full-auto",
				ModelFlag: "--model", DefaultModel: "o4-mini",
				PromptArgStyle: "positional", ToleranceProfile: "ActionProne",
			},
		},
		RoleDefaults: map[string]fileRoleDefault{
			"queen":          {CLI: "claude", Cols: 120, Rows: 40},
			"master_planner": {CLI: "claude", Cols: 120, Rows: 40},
			"planner":        {CLI: "claude", Cols: 120, Rows: 40},
			"worker":         {CLI: "claude", Cols: 120, Rows: 40},
			"variant":        {CLI: "claude", Cols: 120, Rows: 40},
			"judge":          {CLI: "claude", Cols: 120, Rows: 40},
		},
	}
}
