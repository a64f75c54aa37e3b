package cli

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultFileConfigRoundTripsThroughYAML(t *testing.T) {
	cfg := defaultFileConfig("/tmp/store")
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got fileConfig
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.HTTPPort != 8787 {
		t.Errorf("HTTPPort = %d, want 8787", got.HTTPPort)
	}
	if got.StoreRoot != "/tmp/store" {
		t.Errorf("StoreRoot = %q, want /tmp/store", got.StoreRoot)
	}
	if _, ok := got.CLIRegistry["claude"]; !ok {
		t.Error("expected claude in the default CLI registry")
	}
	if _, ok := got.RoleDefaults["queen"]; !ok {
		t.Error("expected queen in the default role defaults")
	}
}

func TestRunInitRefusesToOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(cwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".hive-manager.yaml"), []byte("http_port: 1\n"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	initCmd.Flags().Set("force", "false")
	if err := runInit(initCmd, nil); err == nil {
		t.Fatal("expected an error when .hive-manager.yaml already exists and --force is not set")
	}
}

func TestRunInitWritesFileWhenForced(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(cwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	initCmd.Flags().Set("force", "true")
	defer initCmd.Flags().Set("force", "false")

	if err := runInit(initCmd, nil); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".hive-manager.yaml")); err != nil {
		t.Fatalf("expected .hive-manager.yaml to be written: %v", err)
	}
}
