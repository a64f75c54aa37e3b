package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var injectCmd = &cobra.Command{
	Use:   "inject <session-id>",
	Short: "Inject a message into a running agent as the operator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")
		message, _ := cmd.Flags().GetString("message")
		if target == "" || message == "" {
			return fmt.Errorf("--target and --message are both required")
		}
		req := struct {
			TargetAgentID string `json:"target_agent_id"`
			Message       string `json:"message"`
		}{TargetAgentID: target, Message: message}

		if err := clientFromFlags(cmd).post("/api/sessions/"+args[0]+"/inject", req, nil); err != nil {
			return fmt.Errorf("inject failed: %w", err)
		}
		fmt.Println("message injected")
		return nil
	},
}

var queenInjectCmd = &cobra.Command{
	Use:   "queen-inject <session-id>",
	Short: "Inject a message into a worker on behalf of its queen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		queen, _ := cmd.Flags().GetString("queen")
		target, _ := cmd.Flags().GetString("target")
		message, _ := cmd.Flags().GetString("message")
		if queen == "" || target == "" || message == "" {
			return fmt.Errorf("--queen, --target, and --message are all required")
		}
		req := struct {
			QueenID        string `json:"queen_id"`
			TargetWorkerID string `json:"target_worker_id"`
			Message        string `json:"message"`
		}{QueenID: queen, TargetWorkerID: target, Message: message}

		if err := clientFromFlags(cmd).post("/api/sessions/"+args[0]+"/inject/queen", req, nil); err != nil {
			return fmt.Errorf("queen-inject failed: %w", err)
		}
		fmt.Println("message injected")
		return nil
	},
}

var planReadyCmd = &cobra.Command{
	Use:   "plan-ready <session-id>",
	Short: "Mark a Planning session's plan.md as reviewed and ready",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp sessionSummary
		if err := clientFromFlags(cmd).post("/api/sessions/"+args[0]+"/plan-ready", nil, &resp); err != nil {
			return fmt.Errorf("plan-ready failed: %w", err)
		}
		fmt.Printf("session %s is now %s\n", resp.ID, resp.State)
		return nil
	},
}

var continueCmd = &cobra.Command{
	Use:   "continue <session-id>",
	Short: "Kill the Master Planner and spawn the real team from its plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp sessionSummary
		if err := clientFromFlags(cmd).post("/api/sessions/"+args[0]+"/continue", nil, &resp); err != nil {
			return fmt.Errorf("continue failed: %w", err)
		}
		fmt.Printf("session %s is now %s\n", resp.ID, resp.State)
		return nil
	},
}

func init() {
	injectCmd.Flags().String("target", "", "agent id to inject into")
	injectCmd.Flags().String("message", "", "message to inject")

	queenInjectCmd.Flags().String("queen", "", "queen agent id making the injection")
	queenInjectCmd.Flags().String("target", "", "worker agent id to inject into")
	queenInjectCmd.Flags().String("message", "", "message to inject")

	rootCmd.AddCommand(injectCmd, queenInjectCmd, planReadyCmd, continueCmd)
}
