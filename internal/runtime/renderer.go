package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"clipper/util"

	"github.com/a-h/templ"
	"github.com/nats-io/nats.go/jetstream"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// SSE is the part of the datastar generator renderers write to.
type SSE interface {
	MergeFragmentTempl(c templ.Component, opts ...datastar.MergeFragmentOption) error
	MarshalAndMergeSignals(signals any, opts ...datastar.MergeSignalsOption) error
}

// RenderFuncB: minimal signature – render given message into the SSE stream.
type RenderFuncB func(ctx context.Context, msg jetstream.Msg, sse SSE) error

type Renderer struct {
	Pattern    string
	MatchFunc  func(string) bool
	RenderFunc RenderFuncB
}

// RendererSpec is a catalogue entry: a wildcard pattern and a factory that
// can build a concrete Renderer for a given subscription subject that matches
// the pattern.
type RendererSpec struct {
	Pattern string
	Build   func(subj string) Renderer
}

// Specs is filled by renderers.go during init and treated as read-only.
var Specs []RendererSpec

// ForSubjects returns a slice of Renderers suited for the exact subjects the
// UI stream is subscribing to. It materialises a renderer for every
// (subject, catalogue entry) pair where the subject matches the entry's wildcard pattern.
// The fallback renderer is always appended as last element.
func ForSubjects(subjects []string) []Renderer {
	out := make([]Renderer, 0)
	seen := make(map[string]struct{})
	for _, s := range subjects {
		for _, spec := range Specs {
			if util.SubjectMatches(spec.Pattern, s) {
				key := spec.Pattern + "|" + s
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, spec.Build(s))
			}
		}
	}
	// Ensure fallback renderer is last
	out = append(out, fallback)
	return out
}

// Render hands msg to the first renderer that matches its subject.
func Render(ctx context.Context, renderers []Renderer, msg jetstream.Msg, sse SSE) {
	for _, r := range renderers {
		if !r.MatchFunc(msg.Subject()) {
			continue
		}
		if err := r.RenderFunc(ctx, msg, sse); err != nil {
			slog.Warn("render", "subj", msg.Subject(), "err", err)
		}
		return
	}
}

// newRenderer creates a renderer matching a specific subject pattern (with wildcards).
func newRenderer(pattern string, fn RenderFuncB) Renderer {
	return Renderer{
		Pattern:    pattern,
		MatchFunc:  func(subj string) bool { return util.SubjectMatches(pattern, subj) },
		RenderFunc: fn,
	}
}

// newTypedRenderer decodes the JSON payload into T and invokes handler.
func newTypedRenderer[T any](pattern string, handler func(context.Context, jetstream.Msg, SSE, T) error) Renderer {
	return newRenderer(pattern, func(ctx context.Context, msg jetstream.Msg, sse SSE) error {
		var p T
		dec := json.NewDecoder(bytes.NewReader(msg.Data()))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("decode %T: %w", p, err)
		}
		return handler(ctx, msg, sse, p)
	})
}

// fallback renderer appends any unrecognised message to the transcript as <pre>.
var fallback = newRenderer(
	">",
	func(ctx context.Context, msg jetstream.Msg, sse SSE) error {
		frag := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, "<pre class=\"line line-debug\">%s\n%s</pre>",
				templ.EscapeString(msg.Subject()), templ.EscapeString(string(msg.Data())))
			return err
		})
		return sse.MergeFragmentTempl(
			frag,
			datastar.WithSelectorID(TranscriptID),
			datastar.WithMergeAppend(),
		)
	},
)
