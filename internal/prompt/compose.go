// Package prompt composes the per-agent prompt documents written to
// prompts/<agent>-prompt.md before spawn (§4.E), selecting the
// polling-protocol instruction block that matches the target CLI's
// tolerance profile (§6) and substituting session-specific variables with
// internal/template.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rdfitted/hive-manager/internal/sessionid"
	"github.com/rdfitted/hive-manager/internal/template"
)

//go:embed roles/queen.md
var queenBase string

//go:embed roles/master_planner.md
var masterPlannerBase string

//go:embed roles/planner.md
var plannerBase string

//go:embed roles/worker.md
var workerBase string

//go:embed roles/variant.md
var variantBase string

//go:embed roles/judge.md
var judgeBase string

var roleBases = map[sessionid.Role]string{
	sessionid.RoleQueen:         queenBase,
	sessionid.RoleMasterPlanner: masterPlannerBase,
	sessionid.RolePlanner:       plannerBase,
	sessionid.RoleWorker:        workerBase,
	sessionid.RolePlannerWorker: workerBase,
	sessionid.RoleFusionVariant: variantBase,
	sessionid.RoleJudge:         judgeBase,
}

// roleHasTaskFile reports whether role waits on a task file and therefore
// needs a polling-protocol instruction block appended. The Master Planner
// and Judge roles have no task file of their own to poll: the planner
// works until it announces "PLAN READY FOR REVIEW", and the judge is
// spawned only once every variant has already signaled completion.
func roleHasTaskFile(role sessionid.Role) bool {
	switch role {
	case sessionid.RoleQueen, sessionid.RoleMasterPlanner, sessionid.RoleJudge:
		return false
	default:
		return true
	}
}

// Context carries the variables substituted into a role's base template
// and, where applicable, its polling-protocol block.
type Context struct {
	SessionID           string
	ProjectPath         string
	CoordinationLogPath string
	TasksDir            string
	TaskFile            string
	PlanPath            string
	WorkerIndex         string
	VariantName         string
}

func (c Context) variables() map[string]string {
	return map[string]string{
		"session_id":            c.SessionID,
		"project_path":          c.ProjectPath,
		"coordination_log_path": c.CoordinationLogPath,
		"tasks_dir":             c.TasksDir,
		"task_file":             c.TaskFile,
		"plan_path":             c.PlanPath,
		"worker_index":          c.WorkerIndex,
		"variant_name":          c.VariantName,
	}
}

// Compose builds the full prompt text for role, using cli's tolerance
// profile to select the polling-protocol variant when role waits on a
// task file.
func Compose(role sessionid.Role, variant Variant, ctx Context) (string, error) {
	base, ok := roleBases[role]
	if !ok {
		return "", fmt.Errorf("prompt: no base template for role %d", role)
	}

	vars := ctx.variables()
	rendered := template.RenderPrompt(base, vars)

	if !roleHasTaskFile(role) {
		return rendered, nil
	}

	block, err := VariantBlock(variant)
	if err != nil {
		return "", err
	}
	rendered = rendered + "\n\n" + template.RenderPrompt(block, vars)
	return rendered, nil
}

// WriteFile composes the prompt for role and writes it to
// <sessionDir>/prompts/<agentName>-prompt.md, creating the prompts
// directory if needed. It returns the path written.
func WriteFile(sessionDir, agentName string, role sessionid.Role, variant Variant, ctx Context) (string, error) {
	content, err := Compose(role, variant, ctx)
	if err != nil {
		return "", err
	}

	promptsDir := filepath.Join(sessionDir, "prompts")
	if err := os.MkdirAll(promptsDir, 0o755); err != nil {
		return "", fmt.Errorf("prompt: creating prompts dir: %w", err)
	}

	path := filepath.Join(promptsDir, agentName+"-prompt.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("prompt: writing %s: %w", path, err)
	}
	return path, nil
}
