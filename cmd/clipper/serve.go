package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"clipper/internal/platform"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		headless bool
		port     int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the install page, the browser terminal and the terminal engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("headless") {
				cfg.Flags.Headless = headless
			}
			if cmd.Flags().Changed("port") {
				cfg.HTTPSrvCfg.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "run the engine without the HTTP server")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	return cmd
}

func runServe(parent context.Context, cfg *platform.AppConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	platform.InitMetrics()
	platform.InitLogger(os.Stdout, cfg.Log)

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// --- Run embedded NATS server ---
	nc, ns, natsErrCh, err := platform.RunEmbeddedServer(ctx, *cfg.NatsCfg)
	if err != nil {
		slog.Error("Failed to start embedded server", "err", err)
		return err
	}
	defer ns.Shutdown()
	defer nc.Close()

	svc := platform.NewServices(cfg.Terminal)

	var httpErrCh <-chan error
	if !cfg.Flags.Headless {
		httpErrCh, err = platform.RunHTTPServer(ctx, nc, svc, *cfg.HTTPSrvCfg)
		if err != nil {
			return err
		}
	} else {
		// never fires
		httpErrCh = make(chan error)
	}

	go func() {
		select {
		case err := <-natsErrCh:
			if ctx.Err() == nil {
				slog.Error("Embedded server error", "err", err)
			}
			cancel()
		case err := <-httpErrCh:
			if ctx.Err() == nil {
				slog.Error("HTTP server error", "err", err)
			}
			cancel()
		}
	}()

	return platform.Run(ctx, nc, svc, cfg.Terminal)
}
