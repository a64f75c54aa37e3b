package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop <session-id>",
	Short: "Stop a session and terminate its agents' PTYs",
	Long: `Stop a hive-manager session: every running agent's PTY is killed and
the session is marked Completed. Work already committed by an agent is
untouched; anything still in its terminal buffer is lost.

Example:
  hivectl stop hv-abc12345`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		force, _ := cmd.Flags().GetBool("force")

		if !force {
			fmt.Printf("This will stop session %s and kill its agents.\n\n", sessionID)
			fmt.Print("Are you sure? [y/N]: ")

			var confirm string
			fmt.Scanln(&confirm)
			if confirm != "y" && confirm != "Y" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		var resp map[string]string
		if err := clientFromFlags(cmd).post("/api/sessions/"+sessionID+"/stop", nil, &resp); err != nil {
			return fmt.Errorf("stopping session: %w", err)
		}
		fmt.Println(resp["message"])
		return nil
	},
}

func init() {
	stopCmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")
	rootCmd.AddCommand(stopCmd)
}
