package main

import (
	"fmt"
	"strings"

	"clipper/internal/platform"

	"github.com/spf13/cobra"
)

func newExecCmd(flags *rootFlags) *cobra.Command {
	var platformName string

	cmd := &cobra.Command{
		Use:   "exec <line...>",
		Short: "Run a single terminal line and print its output",
		Example: `  clipper exec help
  clipper exec --platform windows -- clipper --scan`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			p, err := resolvePlatform(platformName)
			if err != nil {
				return err
			}
			svc := platform.NewServices(cfg.Terminal)

			out := svc.Dispatcher.Dispatch(strings.Join(args, " "), p)
			for _, l := range out.Lines {
				fmt.Fprintln(cmd.OutOrStdout(), l.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "windows, macos or linux (default: this machine)")
	return cmd
}
