package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rdfitted/hive-manager/internal/sessionid"
)

// CLIValidator enforces the static CLI allowlist named by §6 and the
// path/session-id validation rules the HTTP boundary must apply before
// calling into the Session Controller.
type CLIValidator struct {
	allowed map[string]bool
}

// NewCLIValidator creates a validator whose allowlist is names.
func NewCLIValidator(names []string) *CLIValidator {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	return &CLIValidator{allowed: allowed}
}

// ValidateCLI rejects any name not in the static allowlist.
func (v *CLIValidator) ValidateCLI(name string) error {
	if !v.allowed[name] {
		return fmt.Errorf("cli %q is not in the allowlist", name)
	}
	return nil
}

// ValidateProjectPath enforces §6's rule: "project path must exist, be a
// directory, and not contain `..`".
func ValidateProjectPath(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("project path %q contains a traversal sequence", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("project path %q is not accessible: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project path %q is not a directory", path)
	}
	return nil
}

// ValidateSessionID enforces §6's rule: "session id must not contain `..`,
// `/`, or `\\`". Delegates to internal/sessionid so the core's own
// invariant and the HTTP boundary's validation never drift apart.
func ValidateSessionID(id string) error {
	return sessionid.ValidateSessionID(id)
}

// ValidateGitRef validates a git branch/tag/ref name, used before
// queen_switch_branch fans a `git switch <branch>` command out to workers.
func ValidateGitRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("git ref must not be empty")
	}
	for _, r := range ref {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '/' || r == '_' || r == '.' || r == '-':
		default:
			return fmt.Errorf("git ref %q contains an invalid character", ref)
		}
	}
	if strings.Contains(ref, "..") {
		return fmt.Errorf("git ref %q contains a traversal sequence", ref)
	}
	return nil
}

// ValidatePathWithinDir confirms path (after cleaning) stays within root;
// used when resolving a task-file or prompt-file path built from operator
// input.
func ValidatePathWithinDir(root, path string) error {
	clean := filepath.Clean(path)
	rel, err := filepath.Rel(root, clean)
	if err != nil {
		return fmt.Errorf("path %q is not relative to %q: %w", path, root, err)
	}
	if strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path %q escapes %q", path, root)
	}
	return nil
}
