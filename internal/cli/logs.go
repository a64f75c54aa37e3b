package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type logRecord struct {
	Timestamp string `json:"timestamp"`
	From      string `json:"from"`
	To        string `json:"to"`
	Content   string `json:"content"`
}

var logsCmd = &cobra.Command{
	Use:   "logs <session-id>",
	Short: "Show a session's coordination log",
	Long: `Show the coordination log a session's agents write queen↔worker
messages, stall warnings, and lifecycle events to.

Example:
  hivectl logs hv-abc12345
  hivectl logs hv-abc12345 --follow`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		follow, _ := cmd.Flags().GetBool("follow")
		tail, _ := cmd.Flags().GetInt("tail")
		interval, _ := cmd.Flags().GetDuration("interval")
		client := clientFromFlags(cmd)

		records, err := fetchLog(client, sessionID, tail)
		if err != nil {
			return err
		}
		for _, rec := range records {
			printLogRecord(rec)
		}
		if !follow {
			return nil
		}

		seen := len(records)
		for {
			time.Sleep(interval)
			all, err := fetchLog(client, sessionID, 0)
			if err != nil {
				return err
			}
			if len(all) > seen {
				for _, rec := range all[seen:] {
					printLogRecord(rec)
				}
				seen = len(all)
			}
		}
	},
}

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "keep polling hived for new log lines")
	logsCmd.Flags().Int("tail", 50, "number of trailing records to print before following")
	logsCmd.Flags().Duration("interval", time.Second, "poll interval while following")
	rootCmd.AddCommand(logsCmd)
}

func fetchLog(client *apiClient, sessionID string, tail int) ([]logRecord, error) {
	var records []logRecord
	path := fmt.Sprintf("/api/sessions/%s/log?tail=%d", sessionID, tail)
	if err := client.get(path, &records); err != nil {
		return nil, fmt.Errorf("reading log for session %s: %w", sessionID, err)
	}
	return records, nil
}

func printLogRecord(rec logRecord) {
	fmt.Printf("[%s] %s -> %s: %s\n", rec.Timestamp, rec.From, rec.To, rec.Content)
}
