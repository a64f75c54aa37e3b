package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCLIValidatorValidateCLI(t *testing.T) {
	v := NewCLIValidator([]string{"claude", "gemini", "codex", "opencode", "cursor", "droid", "qwen"})

	tests := []struct {
		name    string
		cli     string
		wantErr bool
	}{
		{"allowed cli", "claude", false},
		{"another allowed cli", "codex", false},
		{"disallowed cli", "rm", true},
		{"empty cli", "", true},
		{"case mismatch", "Claude", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCLI(tt.cli)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCLI(%q) error = %v, wantErr %v", tt.cli, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGitRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"valid branch", "main", false},
		{"valid feature branch", "feature/add-login", false},
		{"valid tag", "v1.0.0", false},
		{"valid commit", "abc123def456", false},
		{"command injection", "main;rm -rf /", true},
		{"space injection", "main test", true},
		{"newline injection", "main\nrm -rf /", true},
		{"traversal sequence", "feature/../../etc", true},
		{"empty ref", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGitRef(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGitRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProjectPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing directory", dir, false},
		{"traversal sequence", dir + "/../..", true},
		{"nonexistent path", filepath.Join(dir, "missing"), true},
		{"path to a file, not a directory", file, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid dash-stripped uuid", "123e4567e89b12d3a456426614174000", false},
		{"empty id", "", true},
		{"path separator", "abc/def", true},
		{"traversal sequence", "abc..def", true},
		{"command injection", "abc;rm -rf /", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSessionID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePathWithinDir(t *testing.T) {
	root := "/workspace/project"

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"within root", "/workspace/project/tasks/001.md", false},
		{"root itself", "/workspace/project", false},
		{"escapes root", "/workspace/other/tasks/001.md", true},
		{"traversal escapes root", "/workspace/project/../other", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDir(root, tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathWithinDir(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
