package terminal

import (
	"strings"
	"testing"
	"time"

	"clipper/internal/clipper"
)

var epoch = time.Date(2024, 1, 15, 14, 30, 5, 0, time.UTC)

func fixedNow() time.Time { return epoch }

// stubDispatcher echoes the line back and understands "clear" and "boom".
type stubDispatcher struct {
	calls []string
}

func (d *stubDispatcher) Dispatch(line string, p clipper.Platform) clipper.Outcome {
	d.calls = append(d.calls, line)
	switch line {
	case "clear":
		return clipper.Outcome{Clear: true, Lines: []clipper.Line{{Text: "Terminal cleared."}}}
	case "boom":
		return clipper.Outcome{Lines: []clipper.Line{{Text: "Command not found: boom", Kind: clipper.KindError}}}
	}
	return clipper.Outcome{Lines: []clipper.Line{
		{Text: "echo " + line + " on " + p.String()},
		{Text: "careful", Kind: clipper.KindWarning},
	}}
}

func newTestSession(d Dispatcher) *Session {
	return NewSession(d, clipper.Linux, WithClock(fixedNow))
}

func texts(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func TestNewSession_Banner(t *testing.T) {
	s := newTestSession(&stubDispatcher{})
	got := s.Transcript()
	if len(got) != len(clipper.Banner) {
		t.Fatalf("banner has %d entries, want %d", len(got), len(clipper.Banner))
	}
	for i, e := range got {
		if e.Text != clipper.Banner[i] || e.Kind != KindOutput {
			t.Errorf("entry %d = %+v", i, e)
		}
		if !e.CreatedAt.Equal(epoch) {
			t.Errorf("entry %d timestamp %v", i, e.CreatedAt)
		}
	}
	if s.Cursor() != -1 || s.Draft() != "" || len(s.History()) != 0 {
		t.Errorf("unexpected initial state cursor=%d draft=%q", s.Cursor(), s.Draft())
	}
}

func TestSubmit_TagsEntries(t *testing.T) {
	d := &stubDispatcher{}
	s := newTestSession(d)
	before := len(s.Transcript())

	res := s.Submit("  scan  ")
	if res.Cleared {
		t.Fatal("unexpected clear")
	}
	wantKinds := []Kind{KindInput, KindOutput, KindWarning}
	if len(res.Entries) != len(wantKinds) {
		t.Fatalf("got %d entries: %v", len(res.Entries), texts(res.Entries))
	}
	for i, k := range wantKinds {
		if res.Entries[i].Kind != k {
			t.Errorf("entry %d kind = %v, want %v", i, res.Entries[i].Kind, k)
		}
	}
	if res.Entries[0].Text != "$   scan  " {
		t.Errorf("input echo = %q", res.Entries[0].Text)
	}
	if d.calls[0] != "scan" {
		t.Errorf("dispatcher saw %q, want trimmed line", d.calls[0])
	}
	if len(s.Transcript()) != before+3 {
		t.Errorf("transcript grew to %d", len(s.Transcript()))
	}
	if h := s.History(); len(h) != 1 || h[0] != "  scan  " {
		t.Errorf("history = %q", h)
	}
}

func TestSubmit_BlankIgnored(t *testing.T) {
	d := &stubDispatcher{}
	s := newTestSession(d)
	before := s.Transcript()
	for _, line := range []string{"", "   ", "\t"} {
		if res := s.Submit(line); len(res.Entries) != 0 || res.Cleared {
			t.Errorf("Submit(%q) = %+v", line, res)
		}
	}
	if len(s.Transcript()) != len(before) || len(s.History()) != 0 || len(d.calls) != 0 {
		t.Error("blank input changed state")
	}
}

func TestSubmit_ErrorKind(t *testing.T) {
	s := newTestSession(&stubDispatcher{})
	res := s.Submit("boom")
	last := res.Entries[len(res.Entries)-1]
	if last.Kind != KindError {
		t.Errorf("kind = %v, want error", last.Kind)
	}
}

func TestSubmit_ClearKeepsHistory(t *testing.T) {
	s := newTestSession(&stubDispatcher{})
	s.Submit("one")
	s.Submit("two")
	s.RecallPrevious()

	res := s.Submit("clear")
	if !res.Cleared || len(res.Entries) != 0 {
		t.Fatalf("res = %+v", res)
	}
	if n := len(s.Transcript()); n != 0 {
		t.Errorf("transcript has %d entries after clear", n)
	}
	if h := s.History(); strings.Join(h, ",") != "one,two,clear" {
		t.Errorf("history = %q", h)
	}
	if s.Cursor() != -1 {
		t.Errorf("cursor = %d", s.Cursor())
	}
}

func TestEntryIDsStayMonotonicAcrossClear(t *testing.T) {
	s := newTestSession(&stubDispatcher{})
	s.Submit("a")
	last := s.Transcript()
	maxID := last[len(last)-1].ID
	s.Submit("clear")
	res := s.Submit("b")
	if res.Entries[0].ID <= maxID {
		t.Errorf("id %d reused after clear (max was %d)", res.Entries[0].ID, maxID)
	}
}

func TestRecall_WalksHistory(t *testing.T) {
	s := newTestSession(&stubDispatcher{})
	for _, l := range []string{"first", "second", "third"} {
		s.Submit(l)
	}

	steps := []struct {
		prev      bool
		moved     bool
		wantDraft string
		wantCur   int
	}{
		{true, true, "third", 0},
		{true, true, "second", 1},
		{true, true, "first", 2},
		{true, false, "first", 2},
		{false, true, "second", 1},
		{false, true, "third", 0},
		{false, true, "", -1},
		{false, false, "", -1},
	}
	for i, st := range steps {
		var moved bool
		if st.prev {
			moved = s.RecallPrevious()
		} else {
			moved = s.RecallNext()
		}
		if moved != st.moved || s.Draft() != st.wantDraft || s.Cursor() != st.wantCur {
			t.Errorf("step %d: moved=%t draft=%q cursor=%d", i, moved, s.Draft(), s.Cursor())
		}
	}
}

func TestRecall_EmptyHistory(t *testing.T) {
	s := newTestSession(&stubDispatcher{})
	s.SetDraft("typing")
	if s.RecallPrevious() || s.RecallNext() {
		t.Error("recall moved with no history")
	}
	if s.Draft() != "typing" {
		t.Errorf("draft = %q", s.Draft())
	}
}

func TestSubmit_ResetsRecall(t *testing.T) {
	s := newTestSession(&stubDispatcher{})
	s.Submit("a")
	s.Submit("b")
	s.RecallPrevious()
	s.RecallPrevious()
	s.Submit(s.Draft())
	if s.Cursor() != -1 || s.Draft() != "" {
		t.Errorf("cursor=%d draft=%q", s.Cursor(), s.Draft())
	}
	if h := s.History(); h[len(h)-1] != "a" {
		t.Errorf("history = %q", h)
	}
}

func TestAppendAndPlatform(t *testing.T) {
	d := &stubDispatcher{}
	s := newTestSession(d)
	e := s.Append(KindWarning, "notice")
	if e.Kind != KindWarning || e.Text != "notice" {
		t.Errorf("entry = %+v", e)
	}

	s.SetPlatform(clipper.Windows)
	res := s.Submit("x")
	if res.Entries[1].Text != "echo x on windows" {
		t.Errorf("got %q", res.Entries[1].Text)
	}
}

func TestTranscriptIsACopy(t *testing.T) {
	s := newTestSession(&stubDispatcher{})
	tr := s.Transcript()
	tr[0].Text = "mutated"
	if s.Transcript()[0].Text == "mutated" {
		t.Error("Transcript leaked internal slice")
	}
}
