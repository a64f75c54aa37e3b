package cli

import (
	"fmt"
	"os"

	"github.com/rdfitted/hive-manager/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hivectl",
	Short: "hivectl - operator CLI for the hive-manager desktop orchestrator",
	Long: `hivectl drives a running hived daemon over its loopback HTTP API: it
launches Hive/Swarm/Fusion/Solo agent-fleet sessions, injects messages into
running agents, and reports on session state.

Example:
  hivectl hive --project . --workers 3 --task "migrate the auth middleware"`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .hive-manager.yaml)")
	rootCmd.PersistentFlags().Int("port", 8787, "hived daemon HTTP port")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	_ = viper.BindPFlag("http_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}
		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hive-manager")
	}

	viper.SetEnvPrefix("HIVE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// clientFromFlags builds an apiClient targeting the --port configured on
// cmd (or one of its ancestors, since --port is a persistent flag).
func clientFromFlags(cmd *cobra.Command) *apiClient {
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = viper.GetInt("http_port")
	}
	return newAPIClient(port)
}
