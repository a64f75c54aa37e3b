package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type workerSummary struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	CLI         string `json:"cli"`
	Model       string `json:"model,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	WorkerIndex int    `json:"worker_index"`
}

type plannerSummary struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	CLI          string `json:"cli"`
	Model        string `json:"model,omitempty"`
	PlannerIndex int    `json:"planner_index"`
}

var workersCmd = &cobra.Command{
	Use:   "workers <session-id>",
	Short: "List a session's worker agents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var workers []workerSummary
		if err := clientFromFlags(cmd).get("/api/sessions/"+args[0]+"/workers", &workers); err != nil {
			return fmt.Errorf("listing workers: %w", err)
		}
		if len(workers) == 0 {
			fmt.Println("No workers found.")
			return nil
		}
		fmt.Printf("%-28s %-12s %-10s %-10s %s\n", "ID", "STATUS", "CLI", "INDEX", "PARENT")
		fmt.Println(strings.Repeat("-", 80))
		for _, w := range workers {
			fmt.Printf("%-28s %-12s %-10s %-10d %s\n", w.ID, w.Status, w.CLI, w.WorkerIndex, w.ParentID)
		}
		return nil
	},
}

var addWorkerCmd = &cobra.Command{
	Use:   "add-worker <session-id>",
	Short: "Spawn an additional worker in a running session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cliName, _ := cmd.Flags().GetString("cli")
		model, _ := cmd.Flags().GetString("model")
		task, _ := cmd.Flags().GetString("task")
		parent, _ := cmd.Flags().GetString("parent")

		req := struct {
			CLI         string `json:"cli"`
			Model       string `json:"model"`
			InitialTask string `json:"initial_task"`
			ParentID    string `json:"parent_id"`
		}{CLI: cliName, Model: model, InitialTask: task, ParentID: parent}

		var resp struct {
			WorkerID string `json:"worker_id"`
			TaskFile string `json:"task_file"`
		}
		if err := clientFromFlags(cmd).post("/api/sessions/"+args[0]+"/workers", req, &resp); err != nil {
			return fmt.Errorf("adding worker: %w", err)
		}
		fmt.Printf("worker %s spawned, task file %s\n", resp.WorkerID, resp.TaskFile)
		return nil
	},
}

var plannersCmd = &cobra.Command{
	Use:   "planners <session-id>",
	Short: "List a session's planner agents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var planners []plannerSummary
		if err := clientFromFlags(cmd).get("/api/sessions/"+args[0]+"/planners", &planners); err != nil {
			return fmt.Errorf("listing planners: %w", err)
		}
		if len(planners) == 0 {
			fmt.Println("No planners found.")
			return nil
		}
		fmt.Printf("%-28s %-12s %-10s %s\n", "ID", "STATUS", "CLI", "INDEX")
		fmt.Println(strings.Repeat("-", 80))
		for _, p := range planners {
			fmt.Printf("%-28s %-12s %-10s %d\n", p.ID, p.Status, p.CLI, p.PlannerIndex)
		}
		return nil
	},
}

var addPlannerCmd = &cobra.Command{
	Use:   "add-planner <session-id>",
	Short: "Spawn an additional planner in a running Swarm session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cliName, _ := cmd.Flags().GetString("cli")
		model, _ := cmd.Flags().GetString("model")
		domain, _ := cmd.Flags().GetString("domain")
		workerCount, _ := cmd.Flags().GetInt("workers")

		req := struct {
			Domain      string `json:"domain"`
			CLI         string `json:"cli"`
			Model       string `json:"model"`
			WorkerCount int    `json:"worker_count"`
		}{Domain: domain, CLI: cliName, Model: model, WorkerCount: workerCount}

		var resp struct {
			PlannerID  string `json:"planner_id"`
			PromptFile string `json:"prompt_file"`
		}
		if err := clientFromFlags(cmd).post("/api/sessions/"+args[0]+"/planners", req, &resp); err != nil {
			return fmt.Errorf("adding planner: %w", err)
		}
		fmt.Printf("planner %s spawned, prompt file %s\n", resp.PlannerID, resp.PromptFile)
		return nil
	},
}

func init() {
	addWorkerCmd.Flags().String("cli", "", "coding-assistant CLI override")
	addWorkerCmd.Flags().String("model", "", "model override")
	addWorkerCmd.Flags().String("task", "", "initial task description")
	addWorkerCmd.Flags().String("parent", "", "parent planner agent id, for a planner-led worker")

	addPlannerCmd.Flags().String("cli", "", "coding-assistant CLI override")
	addPlannerCmd.Flags().String("model", "", "model override")
	addPlannerCmd.Flags().String("domain", "", "domain description handed to the planner")
	addPlannerCmd.Flags().Int("workers", 1, "workers this planner should spawn")

	rootCmd.AddCommand(workersCmd, addWorkerCmd, plannersCmd, addPlannerCmd)
}
