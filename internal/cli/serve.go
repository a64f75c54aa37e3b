package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rdfitted/hive-manager/internal/config"
	"github.com/rdfitted/hive-manager/internal/daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hived daemon in-process (embedded HTTP server bootstrap)",
	Long: `serve wires up the same store/PTY/session/HTTP stack cmd/hived runs as
a standalone binary, but in-process under hivectl — useful for a single
"hivectl serve" desktop launch with no separate daemon to manage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if port != 0 {
			cfg.HTTPPort = port
		} else {
			cfg.HTTPPort = viper.GetInt("http_port")
		}

		logger := log.Default()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		return daemon.Run(ctx, cfg, project, logger)
	},
}

func init() {
	serveCmd.Flags().String("project", ".", "project directory sessions are rooted under")
	rootCmd.AddCommand(serveCmd)
}
