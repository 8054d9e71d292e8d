package runtime

import (
	"context"

	"clipper/internal/clipper"
	"clipper/internal/messages"
	components "clipper/ui/components"

	"github.com/nats-io/nats.go/jetstream"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// TranscriptID is the DOM id of the element holding transcript lines.
const TranscriptID = components.TranscriptID

// ─────────────────── TERMINAL EVENTS ───────────────────

func renderLine(ctx context.Context, msg jetstream.Msg, sse SSE, evt messages.TerminalLineEvent) error {
	if err := sse.MergeFragmentTempl(
		components.TerminalLine(evt.EntryID, evt.Kind, evt.Text),
		datastar.WithSelectorID(TranscriptID),
		datastar.WithMergeAppend(),
	); err != nil {
		return err
	}
	// the echoed input line marks a new submission; the prompt starts empty again
	if evt.Kind == clipper.KindInput {
		return sse.MarshalAndMergeSignals(map[string]any{"cmd": ""})
	}
	return nil
}

func renderCleared(ctx context.Context, msg jetstream.Msg, sse SSE, _ messages.TerminalClearedEvent) error {
	if err := sse.MergeFragmentTempl(components.Transcript(nil)); err != nil {
		return err
	}
	return sse.MarshalAndMergeSignals(map[string]any{"cmd": ""})
}

// ─────────────────── REGISTRY ──────────────────────────

func init() {
	Specs = []RendererSpec{
		{Pattern: messages.TerminalLineSubjectPattern, Build: func(subj string) Renderer {
			return newTypedRenderer(subj, renderLine)
		}},
		{Pattern: messages.TerminalClearedSubjectPattern, Build: func(subj string) Renderer {
			return newTypedRenderer(subj, renderCleared)
		}},
	}
}
