package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"clipper/internal/clipper"
	"clipper/internal/messages"
	"clipper/internal/terminal"

	"github.com/a-h/templ"
	"github.com/nats-io/nats.go/jetstream"
	datastar "github.com/starfederation/datastar/sdk/go"
)

type fakeMsg struct {
	jetstream.Msg
	subject string
	data    []byte
}

func (m fakeMsg) Subject() string { return m.subject }
func (m fakeMsg) Data() []byte    { return m.data }

type fakeSSE struct {
	fragments []string
	signals   []map[string]any
}

func (f *fakeSSE) MergeFragmentTempl(c templ.Component, _ ...datastar.MergeFragmentOption) error {
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		return err
	}
	f.fragments = append(f.fragments, buf.String())
	return nil
}

func (f *fakeSSE) MarshalAndMergeSignals(signals any, _ ...datastar.MergeSignalsOption) error {
	f.signals = append(f.signals, signals.(map[string]any))
	return nil
}

func newEngine(t *testing.T, observe Observer) (*TerminalEngine, *terminal.Manager) {
	t.Helper()
	mgr := terminal.NewManager(terminal.ManagerOptions{
		Dispatcher: clipper.New(clipper.Options{Source: clipper.NewSource(7)}),
	})
	var opts []EngineOption
	if observe != nil {
		opts = append(opts, WithObserver(observe))
	}
	return NewTerminalEngine(nil, mgr, opts...), mgr
}

func TestApply_EmitsLineEvents(t *testing.T) {
	var seen []string
	te, mgr := newEngine(t, func(in messages.TerminalCommandMessage, res terminal.Result) {
		seen = append(seen, in.Cmd)
	})
	mgr.Open("sid", clipper.Linux)

	in := *messages.NewTerminalCommandMessage("sid", "bogus").WithSubmission("sub1")
	events := te.Apply(in)
	if len(events) != 2 {
		t.Fatalf("got %d events", len(events))
	}
	echo := events[0].(*messages.TerminalLineEvent)
	if echo.Kind != clipper.KindInput || echo.Text != "$ bogus" || echo.SubmissionID != "sub1" {
		t.Errorf("echo = %+v", echo)
	}
	errLine := events[1].(*messages.TerminalLineEvent)
	if errLine.Kind != clipper.KindError || !strings.Contains(errLine.Text, "Unknown command 'bogus'") {
		t.Errorf("error line = %+v", errLine)
	}
	if errLine.EntryID <= echo.EntryID {
		t.Errorf("entry ids not increasing: %d then %d", echo.EntryID, errLine.EntryID)
	}
	if len(seen) != 1 || seen[0] != "bogus" {
		t.Errorf("observer saw %q", seen)
	}
}

func TestApply_Clear(t *testing.T) {
	te, mgr := newEngine(t, nil)
	mgr.Open("sid", clipper.Linux)
	te.Apply(*messages.NewTerminalCommandMessage("sid", "help"))

	events := te.Apply(*messages.NewTerminalCommandMessage("sid", "clear"))
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	if _, ok := events[0].(*messages.TerminalClearedEvent); !ok {
		t.Fatalf("event = %T", events[0])
	}
	snap, _ := mgr.Snapshot("sid")
	if len(snap.Transcript) != 0 || len(snap.History) != 2 {
		t.Errorf("snapshot after clear: %d entries, %d history", len(snap.Transcript), len(snap.History))
	}
}

func TestApply_SwitchesPlatform(t *testing.T) {
	te, mgr := newEngine(t, nil)
	mgr.Open("sid", clipper.Linux)
	events := te.Apply(*messages.NewTerminalCommandMessage("sid", "uninstall").WithPlatform(clipper.Windows))

	var text []string
	for _, e := range events {
		text = append(text, e.(*messages.TerminalLineEvent).Text)
	}
	if !strings.Contains(strings.Join(text, "\n"), "Windows") {
		t.Errorf("uninstall output not rendered for Windows:\n%s", strings.Join(text, "\n"))
	}
	snap, _ := mgr.Snapshot("sid")
	if snap.Platform != clipper.Windows {
		t.Errorf("platform = %v", snap.Platform)
	}
}

func TestApply_BlankProducesNothing(t *testing.T) {
	te, mgr := newEngine(t, nil)
	mgr.Open("sid", clipper.Linux)
	if events := te.Apply(messages.TerminalCommandMessage{SessionID: "sid", Cmd: "   "}); len(events) != 0 {
		t.Errorf("got %d events for blank input", len(events))
	}
}

func TestCommandName(t *testing.T) {
	known := []string{"scan", "clipper", "--scan"}
	tests := map[string]string{
		"scan":            "scan",
		"  SCAN  --fast ": "scan",
		"clipper --scan":  "clipper",
		"--scan":          "--scan",
		"rm -rf /":        "unknown",
		"":                "blank",
	}
	for line, want := range tests {
		if got := CommandName(line, known); got != want {
			t.Errorf("CommandName(%q) = %q, want %q", line, got, want)
		}
	}
}

func TestForSubjects(t *testing.T) {
	subs := []string{messages.TerminalLineSubject("sid"), messages.TerminalClearedSubject("sid")}
	rs := ForSubjects(subs)
	if len(rs) != 3 {
		t.Fatalf("got %d renderers, want 2 plus fallback", len(rs))
	}
	if rs[len(rs)-1].Pattern != ">" {
		t.Errorf("fallback not last: %q", rs[len(rs)-1].Pattern)
	}
	if !rs[0].MatchFunc("event.terminal.session.sid.line") || rs[0].MatchFunc("event.terminal.session.other.line") {
		t.Error("line renderer matches the wrong subjects")
	}
}

func TestRender_Line(t *testing.T) {
	evt := messages.NewTerminalLineEvent("sid", 12, clipper.KindInput, "$ <scan>", time.Unix(0, 0).UTC())
	data, _ := json.Marshal(evt)
	sse := &fakeSSE{}

	Render(context.Background(), ForSubjects([]string{evt.Subject()}), fakeMsg{subject: evt.Subject(), data: data}, sse)

	if len(sse.fragments) != 1 {
		t.Fatalf("fragments = %q", sse.fragments)
	}
	want := `<div id="line-12" class="line line-input">$ &lt;scan&gt;</div>`
	if sse.fragments[0] != want {
		t.Errorf("fragment = %s\nwant       %s", sse.fragments[0], want)
	}
	if len(sse.signals) != 1 || sse.signals[0]["cmd"] != "" {
		t.Errorf("signals = %v", sse.signals)
	}
}

func TestRender_OutputLineKeepsPrompt(t *testing.T) {
	evt := messages.NewTerminalLineEvent("sid", 13, clipper.KindWarning, "careful", time.Unix(0, 0).UTC())
	data, _ := json.Marshal(evt)
	sse := &fakeSSE{}
	Render(context.Background(), ForSubjects([]string{evt.Subject()}), fakeMsg{subject: evt.Subject(), data: data}, sse)

	if len(sse.signals) != 0 {
		t.Errorf("output line touched signals: %v", sse.signals)
	}
	if !strings.Contains(sse.fragments[0], "line-warning") {
		t.Errorf("fragment = %s", sse.fragments[0])
	}
}

func TestRender_Cleared(t *testing.T) {
	evt := messages.NewTerminalClearedEvent("sid")
	data, _ := json.Marshal(evt)
	sse := &fakeSSE{}
	Render(context.Background(), ForSubjects([]string{evt.Subject()}), fakeMsg{subject: evt.Subject(), data: data}, sse)

	if len(sse.fragments) != 1 || sse.fragments[0] != `<div id="terminal-lines" class="terminal-lines"></div>` {
		t.Errorf("fragments = %q", sse.fragments)
	}
}

func TestRender_Fallback(t *testing.T) {
	sse := &fakeSSE{}
	Render(context.Background(), ForSubjects(nil), fakeMsg{subject: "event.other", data: []byte(`{"x":"<y>"}`)}, sse)
	if len(sse.fragments) != 1 || !strings.Contains(sse.fragments[0], "&lt;y&gt;") {
		t.Errorf("fragments = %q", sse.fragments)
	}
}

// ackMsg records how handleCommand settled the message.
type ackMsg struct {
	fakeMsg
	acks, naks, terms int
}

func (m *ackMsg) Ack() error  { m.acks++; return nil }
func (m *ackMsg) Nak() error  { m.naks++; return nil }
func (m *ackMsg) Term() error { m.terms++; return nil }

type flakySink struct {
	err       error
	published []string
}

func (f *flakySink) Publish(_ context.Context, subject string, _ []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.published = append(f.published, subject)
	return &jetstream.PubAck{Stream: EventStream}, nil
}

func newWiredEngine(t *testing.T, opts ...EngineOption) (*TerminalEngine, *terminal.Manager, *flakySink) {
	t.Helper()
	mgr := terminal.NewManager(terminal.ManagerOptions{
		Dispatcher: clipper.New(clipper.Options{Source: clipper.NewSource(7)}),
	})
	sink := &flakySink{}
	te := NewTerminalEngine(nil, mgr, opts...)
	te.publisher = messages.NewPublisher(sink)
	return te, mgr, sink
}

func commandMsg(t *testing.T, cmd *messages.TerminalCommandMessage) *ackMsg {
	t.Helper()
	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatal(err)
	}
	return &ackMsg{fakeMsg: fakeMsg{subject: cmd.Subject(), data: data}}
}

func pendingCount(te *TerminalEngine) int {
	n := 0
	te.pending.Range(func(_, _ any) bool { n++; return true })
	return n
}

func TestHandleCommand_TermsBadPayload(t *testing.T) {
	te, _, sink := newWiredEngine(t)
	tests := map[string][]byte{
		"not json":   []byte("not json"),
		"no session": []byte(`{"cmd":"help"}`),
		"empty cmd":  []byte(`{"session_id":"sid","cmd":""}`),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			msg := &ackMsg{fakeMsg: fakeMsg{subject: messages.TerminalCommandSubject("sid"), data: data}}
			te.handleCommand(context.Background(), msg)
			if msg.terms != 1 || msg.acks != 0 || msg.naks != 0 {
				t.Errorf("acks=%d naks=%d terms=%d", msg.acks, msg.naks, msg.terms)
			}
		})
	}
	if len(sink.published) != 0 {
		t.Errorf("published %v", sink.published)
	}
}

func TestHandleCommand_AcksAfterPublish(t *testing.T) {
	te, mgr, sink := newWiredEngine(t)
	mgr.Open("sid", clipper.Linux)

	msg := commandMsg(t, messages.NewTerminalCommandMessage("sid", "bogus"))
	te.handleCommand(context.Background(), msg)

	if msg.acks != 1 || msg.naks != 0 {
		t.Fatalf("acks=%d naks=%d", msg.acks, msg.naks)
	}
	if len(sink.published) != 2 || sink.published[0] != messages.TerminalLineSubject("sid") {
		t.Errorf("published %v", sink.published)
	}
	if n := pendingCount(te); n != 0 {
		t.Errorf("%d pending submissions after success", n)
	}
}

func TestHandleCommand_RedeliveryReplaysWithoutReapplying(t *testing.T) {
	te, mgr, sink := newWiredEngine(t)
	mgr.Open("sid", clipper.Linux)
	msg := commandMsg(t, messages.NewTerminalCommandMessage("sid", "version").WithSubmission("sub1"))

	sink.err = errors.New("no responders")
	te.handleCommand(context.Background(), msg)
	if msg.naks != 1 || msg.acks != 0 {
		t.Fatalf("first delivery: acks=%d naks=%d", msg.acks, msg.naks)
	}
	if n := pendingCount(te); n != 1 {
		t.Fatalf("%d pending submissions, want 1", n)
	}
	first, _ := mgr.Snapshot("sid")

	sink.err = nil
	te.handleCommand(context.Background(), msg)
	if msg.acks != 1 {
		t.Fatalf("redelivery not acked: acks=%d naks=%d", msg.acks, msg.naks)
	}
	again, _ := mgr.Snapshot("sid")
	if len(again.History) != 1 || len(again.Transcript) != len(first.Transcript) {
		t.Errorf("command re-applied: history %d, transcript %d -> %d",
			len(again.History), len(first.Transcript), len(again.Transcript))
	}
	// one event per line the command appended: everything after the banner
	if want := len(first.Transcript) - len(clipper.Banner); len(sink.published) != want {
		t.Errorf("republished %d events, want %d", len(sink.published), want)
	}
	if n := pendingCount(te); n != 0 {
		t.Errorf("%d pending submissions after replay", n)
	}
}

func TestPrunePending(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	te, mgr, sink := newWiredEngine(t, WithEngineClock(func() time.Time { return now }))
	mgr.Open("sid", clipper.Linux)
	sink.err = errors.New("no responders")

	te.handleCommand(context.Background(), commandMsg(t, messages.NewTerminalCommandMessage("sid", "help").WithSubmission("old")))
	now = now.Add(10 * time.Minute)
	te.handleCommand(context.Background(), commandMsg(t, messages.NewTerminalCommandMessage("sid", "help").WithSubmission("new")))

	if n := te.PrunePending(5 * time.Minute); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
	if _, ok := te.pendingEvents("old"); ok {
		t.Error("old submission kept")
	}
	if _, ok := te.pendingEvents("new"); !ok {
		t.Error("recent submission pruned")
	}
}
