// Package terminal holds the state of one simulated terminal view: its
// transcript, its input history and the recall cursor over that history.
package terminal

import (
	"strings"
	"time"

	"clipper/internal/clipper"
)

// Kind is the display category of a transcript entry.
type Kind = clipper.Kind

const (
	KindInput   = clipper.KindInput
	KindOutput  = clipper.KindOutput
	KindError   = clipper.KindError
	KindWarning = clipper.KindWarning
)

// noRecall is the cursor value while the draft is live.
const noRecall = -1

// Entry is one immutable transcript line.
type Entry struct {
	ID        uint64    `json:"id"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Dispatcher is what a Session feeds submitted lines to.
type Dispatcher interface {
	Dispatch(line string, p clipper.Platform) clipper.Outcome
}

// Result describes what a Submit added to the transcript.
type Result struct {
	Entries []Entry
	Cleared bool
}

// Session is one terminal view. It is not safe for concurrent use; the
// Manager serialises access when sessions are shared between goroutines.
type Session struct {
	dispatcher Dispatcher
	platform   clipper.Platform
	now        func() time.Time

	transcript []Entry
	history    []string
	cursor     int
	draft      string
	nextID     uint64
}

// Option customises a new Session.
type Option func(*Session)

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession returns a session seeded with the banner lines.
func NewSession(d Dispatcher, p clipper.Platform, opts ...Option) *Session {
	s := &Session{
		dispatcher: d,
		platform:   p,
		now:        time.Now,
		cursor:     noRecall,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, line := range clipper.Banner {
		s.append(KindOutput, line)
	}
	return s
}

// Submit records line, dispatches it and appends the tagged output.
// Blank input is ignored and returns a zero Result.
func (s *Session) Submit(line string) Result {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Result{}
	}

	start := len(s.transcript)
	s.append(KindInput, "$ "+line)
	s.history = append(s.history, line)
	s.cursor = noRecall
	s.draft = ""

	out := s.dispatcher.Dispatch(trimmed, s.platform)
	if out.Clear {
		s.Clear()
		return Result{Cleared: true}
	}
	for _, l := range out.Lines {
		s.append(l.Kind, l.Text)
	}
	return Result{Entries: s.copyFrom(start)}
}

// Append adds a host-originated line, such as a startup notice.
func (s *Session) Append(kind Kind, text string) Entry {
	return s.append(kind, text)
}

// RecallPrevious steps the cursor towards older history and loads it into
// the draft. It reports whether the cursor moved.
func (s *Session) RecallPrevious() bool {
	if s.cursor >= len(s.history)-1 {
		return false
	}
	s.cursor++
	s.draft = s.history[len(s.history)-1-s.cursor]
	return true
}

// RecallNext steps the cursor towards newer history. Moving past the newest
// entry ends the recall and empties the draft.
func (s *Session) RecallNext() bool {
	switch {
	case s.cursor == noRecall:
		return false
	case s.cursor == 0:
		s.cursor = noRecall
		s.draft = ""
	default:
		s.cursor--
		s.draft = s.history[len(s.history)-1-s.cursor]
	}
	return true
}

// SetDraft replaces the uncommitted input text.
func (s *Session) SetDraft(text string) { s.draft = text }

// Draft returns the uncommitted input text.
func (s *Session) Draft() string { return s.draft }

// Cursor returns the recall offset: -1 when no recall is in progress,
// otherwise the distance back from the newest history entry.
func (s *Session) Cursor() int { return s.cursor }

// Clear empties the transcript. History and the recall cursor survive.
func (s *Session) Clear() {
	s.transcript = nil
}

// Platform reports the platform the session renders for.
func (s *Session) Platform() clipper.Platform { return s.platform }

// SetPlatform switches the template set used by later commands.
func (s *Session) SetPlatform(p clipper.Platform) { s.platform = p }

// Transcript returns a copy of all entries in append order.
func (s *Session) Transcript() []Entry { return s.copyFrom(0) }

// History returns a copy of submitted lines in submission order.
func (s *Session) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) append(kind Kind, text string) Entry {
	e := Entry{ID: s.nextID, Kind: kind, Text: text, CreatedAt: s.now()}
	s.nextID++
	s.transcript = append(s.transcript, e)
	return e
}

func (s *Session) copyFrom(i int) []Entry {
	if i >= len(s.transcript) {
		return nil
	}
	out := make([]Entry, len(s.transcript)-i)
	copy(out, s.transcript[i:])
	return out
}
