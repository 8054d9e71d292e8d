package platform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clipper/internal/clipper"
	"clipper/internal/messages"
	"clipper/internal/runtime"
	"clipper/internal/terminal"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/robfig/cron/v3"
)

// pendingMaxAge bounds how long the engine keeps the events of a submission
// whose publish failed, waiting for its redelivery.
const pendingMaxAge = 5 * time.Minute

// Services bundles the long-lived objects shared by the HTTP handlers, the
// terminal engine and the UI stream.
type Services struct {
	Dispatcher *clipper.Dispatcher
	Sessions   *terminal.Manager
	// Notices drives the update announcements on page and terminal open.
	Notices clipper.Source
}

// NewServices builds the dispatcher and session manager described by cfg.
func NewServices(cfg *TerminalConfig) *Services {
	src := clipper.NewTimeSource()
	if cfg.Seed != 0 {
		src = clipper.NewSource(cfg.Seed)
	}
	src = clipper.NewLockedSource(src)

	d := clipper.New(clipper.Options{
		Source:   src,
		BaseURL:  cfg.BaseURL,
		Cores:    cfg.Cores,
		MemoryGB: cfg.MemoryGB,
	})
	return &Services{
		Dispatcher: d,
		Sessions: terminal.NewManager(terminal.ManagerOptions{
			Dispatcher:  d,
			MaxSessions: cfg.MaxSessions,
			Notices:     src,
		}),
		Notices: src,
	}
}

// EnsureStreams creates the EVENT stream the engine publishes to and the UI
// stream consumes from.
func EnsureStreams(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       runtime.EventStream,
		Subjects:   []string{messages.TerminalEventsSubjectPattern},
		Storage:    jetstream.MemoryStorage,
		MaxAge:     15 * time.Minute,
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("create %s stream: %w", runtime.EventStream, err)
	}
	return nil
}

// Run starts the terminal engine and the idle session sweeper, then blocks
// until ctx is done.
func Run(ctx context.Context, nc *nats.Conn, svc *Services, cfg *TerminalConfig) error {
	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstream context: %w", err)
	}
	if err := EnsureStreams(ctx, js); err != nil {
		return err
	}

	RegisterSessionGauge(svc.Sessions)
	te := runtime.NewTerminalEngine(js, svc.Sessions,
		runtime.WithObserver(commandObserver(svc.Dispatcher.Commands())))
	go func() {
		if err := te.Start(ctx); err != nil {
			slog.Error("TerminalEngine error", "err", err)
		}
	}()

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SweepSchedule, func() {
		svc.Sessions.Sweep(cfg.IdleTimeout)
		te.PrunePending(pendingMaxAge)
	}); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	slog.Info("🚀 clipper is up", "sweep", cfg.SweepSchedule, "idle_timeout", cfg.IdleTimeout)
	<-ctx.Done()
	slog.Info("Run: shutdown requested")
	return nil
}
