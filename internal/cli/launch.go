package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rdfitted/hive-manager/internal/routing"
)

// launchRequest mirrors internal/httpapi's launch request JSON shape; kept
// as hivectl's own type since the server package's is unexported.
type launchRequest struct {
	ProjectPath     string   `json:"project_path"`
	WorkerCount     int      `json:"worker_count,omitempty"`
	PlannerCount    int      `json:"planner_count,omitempty"`
	WorkersPerPlan  int      `json:"workers_per_planner,omitempty"`
	VariantNames    []string `json:"variant_names,omitempty"`
	TaskDescription string   `json:"task_description,omitempty"`
	CLI             string   `json:"cli,omitempty"`
	Model           string   `json:"model,omitempty"`
	WithPlanning    bool     `json:"with_planning,omitempty"`
}

type launchResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func newLaunchCommand(use, short, route string, fill func(cmd *cobra.Command, req *launchRequest)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _ := cmd.Flags().GetString("project")
			task, _ := cmd.Flags().GetString("task")
			cli, _ := cmd.Flags().GetString("cli")
			model, _ := cmd.Flags().GetString("model")
			withPlanning, _ := cmd.Flags().GetBool("with-planning")

			// --cli accepts either a bare CLI name or a "cli:model" spec, so an
			// operator can pin both in one flag without also passing --model.
			if strings.Contains(cli, ":") {
				spec := routing.ParseCLISpec(cli)
				cli = spec.CLI
				if model == "" {
					model = spec.Model
				}
			}

			req := launchRequest{
				ProjectPath:     project,
				TaskDescription: task,
				CLI:             cli,
				Model:           model,
				WithPlanning:    withPlanning,
			}
			fill(cmd, &req)

			var resp launchResponse
			if err := clientFromFlags(cmd).post(route, req, &resp); err != nil {
				return fmt.Errorf("launch failed: %w", err)
			}
			fmt.Printf("Session %s launched: %s\n", resp.SessionID, resp.Message)
			return nil
		},
	}
	cmd.Flags().String("project", ".", "project directory the team operates in")
	cmd.Flags().String("task", "", "task description handed to the team")
	cmd.Flags().String("cli", "", "coding-assistant CLI override (default: role's configured default)")
	cmd.Flags().String("model", "", "model override")
	cmd.Flags().Bool("with-planning", false, "start with a Master Planner phase before spawning the team")
	return cmd
}

var hiveCmd = newLaunchCommand(
	"hive",
	"Launch a Hive session: a queen plus sequential workers",
	"/api/sessions/hive",
	func(cmd *cobra.Command, req *launchRequest) {
		count, _ := cmd.Flags().GetInt("workers")
		req.WorkerCount = count
	},
)

var swarmCmd = newLaunchCommand(
	"swarm",
	"Launch a Swarm session: a queen plus one or more planner-led worker layers",
	"/api/sessions/swarm",
	func(cmd *cobra.Command, req *launchRequest) {
		planners, _ := cmd.Flags().GetInt("planners")
		perPlan, _ := cmd.Flags().GetInt("workers-per-planner")
		req.PlannerCount = planners
		req.WorkersPerPlan = perPlan
	},
)

var fusionCmd = newLaunchCommand(
	"fusion",
	"Launch a Fusion session: independent variants of the same task, judged once all complete",
	"/api/sessions/fusion",
	func(cmd *cobra.Command, req *launchRequest) {
		variants, _ := cmd.Flags().GetStringSlice("variant")
		req.VariantNames = variants
	},
)

var soloCmd = newLaunchCommand(
	"solo",
	"Launch a Solo session: a single agent with no team around it",
	"/api/sessions/solo",
	func(cmd *cobra.Command, req *launchRequest) {},
)

func init() {
	hiveCmd.Flags().Int("workers", 1, "total worker count, spawned one at a time")
	swarmCmd.Flags().Int("planners", 1, "number of planners")
	swarmCmd.Flags().Int("workers-per-planner", 1, "workers spawned under each planner")
	fusionCmd.Flags().StringSlice("variant", []string{"a", "b"}, "variant names to spawn as peer agents")

	rootCmd.AddCommand(hiveCmd, swarmCmd, fusionCmd, soloCmd)
}
