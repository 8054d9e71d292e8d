package platform

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"clipper/internal/messages"
	"clipper/internal/runtime"
	components "clipper/ui/components"

	"github.com/nats-io/nats.go/jetstream"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// uiConsumerIdle lets the server reap a view's consumer if the stream dies
// without a clean shutdown.
const uiConsumerIdle = 30 * time.Second

// ConsumerFactory is the part of jetstream.JetStream the UI stream needs.
type ConsumerFactory interface {
	CreateConsumer(ctx context.Context, stream string, cfg jetstream.ConsumerConfig) (jetstream.Consumer, error)
}

// UIStream is the SSE handler for /ui. Opening it starts a fresh terminal
// session; the session lives as long as the stream that opened it.
func UIStream(js ConsumerFactory, svc *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := SessionID(r)
		if sid == "" {
			http.Error(w, "missing session ID", http.StatusBadRequest)
			return
		}
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		subs := []string{messages.TerminalLineSubject(sid), messages.TerminalClearedSubject(sid)}
		cons, err := js.CreateConsumer(ctx, runtime.EventStream, jetstream.ConsumerConfig{
			AckPolicy:         jetstream.AckNonePolicy,
			FilterSubjects:    subs,
			DeliverPolicy:     jetstream.DeliverNewPolicy,
			InactiveThreshold: uiConsumerIdle,
		})
		if err != nil {
			slog.Error("UIStream: create consumer", "sid", sid, "err", err)
			http.Error(w, "event stream unavailable", http.StatusServiceUnavailable)
			return
		}

		platform := SessionPlatform(r)
		snap := svc.Sessions.Open(sid, platform)
		defer svc.Sessions.Release(sid, snap.Generation)

		sse := datastar.NewSSE(w, r)
		if err := sse.MergeFragmentTempl(components.Transcript(snap.Transcript)); err != nil {
			slog.Warn("UIStream: initial transcript", "sid", sid, "err", err)
			return
		}
		_ = sse.MarshalAndMergeSignals(map[string]any{"cmd": "", "platform": platform.String()})

		if UIStreamsOpen != nil {
			UIStreamsOpen.Inc()
			defer UIStreamsOpen.Dec()
		}

		renderers := runtime.ForSubjects(subs)
		cc, err := cons.Consume(func(msg jetstream.Msg) {
			runtime.Render(ctx, renderers, msg, sse)
		})
		if err != nil {
			slog.Error("UIStream: consume", "sid", sid, "err", err)
			return
		}
		defer cc.Stop()

		slog.Info("UIStream: connected", "sid", sid, "generation", snap.Generation)
		<-ctx.Done()
		slog.Info("UIStream: disconnected", "sid", sid)
	}
}
