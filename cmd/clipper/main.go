package main

import (
	"fmt"
	"os"

	"clipper/internal/platform"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

type rootFlags struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "clipper",
		Short:        "CLIpper - simulated cross-platform system management terminal",
		Long:         "CLIpper serves an install page and a browser terminal that simulates a system management tool. The same terminal runs locally with \"clipper repl\".",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before CLIPPER_* overrides")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newReplCmd(flags))
	cmd.AddCommand(newExecCmd(flags))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipper %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func (f *rootFlags) load() (*platform.AppConfig, error) {
	return platform.LoadAppConfig(f.configPath, f.envFile)
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
