package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// sessionSummary mirrors internal/httpapi's GET /api/sessions(/{id}) shape.
type sessionSummary struct {
	ID          string `json:"id"`
	Shape       string `json:"shape"`
	State       string `json:"state"`
	ProjectPath string `json:"project_path"`
	AgentCount  int    `json:"agent_count"`
}

var statusCmd = &cobra.Command{
	Use:   "status [session-id]",
	Short: "Check hive-manager session status",
	Long: `Check the status of hive-manager sessions via the hived HTTP API.

Without arguments, lists all sessions known to the running daemon.
With a session ID, shows detailed status for that session.

Examples:
  hivectl status                # List all sessions
  hivectl status hv-abc12345     # Show one session`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return listSessions(cmd)
		}
		return showSessionStatus(cmd, args[0])
	},
}

func init() {
	statusCmd.Flags().Bool("watch", false, "poll for status changes")
	statusCmd.Flags().Duration("interval", 5*time.Second, "watch interval")
	rootCmd.AddCommand(statusCmd)
}

func listSessions(cmd *cobra.Command) error {
	var sessions []sessionSummary
	if err := clientFromFlags(cmd).get("/api/sessions", &sessions); err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	fmt.Printf("%-22s %-8s %-12s %-8s %s\n", "SESSION", "SHAPE", "STATE", "AGENTS", "PROJECT")
	fmt.Println(strings.Repeat("-", 80))
	for _, s := range sessions {
		fmt.Printf("%-22s %-8s %-12s %-8d %s\n", s.ID, s.Shape, s.State, s.AgentCount, s.ProjectPath)
	}
	fmt.Printf("\n%d session(s) found.\n", len(sessions))
	return nil
}

func showSessionStatus(cmd *cobra.Command, id string) error {
	watch, _ := cmd.Flags().GetBool("watch")
	interval, _ := cmd.Flags().GetDuration("interval")
	client := clientFromFlags(cmd)

	for {
		var s sessionSummary
		if err := client.get("/api/sessions/"+id, &s); err != nil {
			return fmt.Errorf("getting session %s: %w", id, err)
		}

		fmt.Printf("Session: %s\n", s.ID)
		fmt.Printf("Shape: %s\n", s.Shape)
		fmt.Printf("State: %s\n", s.State)
		fmt.Printf("Project: %s\n", s.ProjectPath)
		fmt.Printf("Agents: %d\n", s.AgentCount)

		if !watch {
			break
		}
		if s.State == "Completed" || s.State == "Failed" {
			break
		}

		fmt.Println("---")
		time.Sleep(interval)
	}

	return nil
}
