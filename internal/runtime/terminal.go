package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"clipper/internal/clipper"
	"clipper/internal/messages"
	"clipper/internal/terminal"

	"github.com/nats-io/nats.go/jetstream"
)

// Stream and consumer names owned by the engine.
const (
	TerminalStream   = "TERMINAL"
	EventStream      = "EVENT"
	terminalConsumer = "TERMINAL_CMD"
	maxDeliver       = 10
)

// Observer is told about every command the engine applies.
type Observer func(in messages.TerminalCommandMessage, res terminal.Result)

// TerminalEngine interprets terminal.session.*.command messages.
// Each line is submitted to the owning session and the resulting transcript
// changes are published as event.terminal.session.*.line / .clear events.
type TerminalEngine struct {
	js        jetstream.JetStream
	sessions  *terminal.Manager
	publisher *messages.Publisher
	observe   Observer
	now       func() time.Time

	// events of submissions whose publish failed, replayed on redelivery
	pending sync.Map // map[string]pendingSubmission
}

type pendingSubmission struct {
	events   []messages.Event
	storedAt time.Time
}

// EngineOption customises a TerminalEngine.
type EngineOption func(*TerminalEngine)

// WithObserver registers fn to be called after each applied command.
func WithObserver(fn Observer) EngineOption {
	return func(te *TerminalEngine) { te.observe = fn }
}

// WithEngineClock overrides the clock used to age pending submissions.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(te *TerminalEngine) { te.now = now }
}

func NewTerminalEngine(js jetstream.JetStream, sessions *terminal.Manager, opts ...EngineOption) *TerminalEngine {
	te := &TerminalEngine{
		js:        js,
		sessions:  sessions,
		publisher: messages.NewPublisher(js),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(te)
	}
	return te
}

// Start ensures the TERMINAL stream and its durable consumer exist, then
// consumes until ctx is done.
func (te *TerminalEngine) Start(ctx context.Context) error {
	if _, err := te.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      TerminalStream,
		Subjects:  []string{messages.TerminalCommandSubjectPattern},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.MemoryStorage,
	}); err != nil {
		return fmt.Errorf("create %s stream: %w", TerminalStream, err)
	}

	cons, err := te.js.CreateOrUpdateConsumer(ctx, TerminalStream, jetstream.ConsumerConfig{
		Durable:        terminalConsumer,
		AckPolicy:      jetstream.AckExplicitPolicy,
		FilterSubjects: []string{messages.TerminalCommandSubjectPattern},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
		MaxDeliver:     maxDeliver,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		te.handleCommand(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	<-ctx.Done()
	cc.Stop()
	return nil
}

func (te *TerminalEngine) handleCommand(ctx context.Context, msg jetstream.Msg) {
	var in messages.TerminalCommandMessage
	if err := json.Unmarshal(msg.Data(), &in); err != nil {
		slog.Warn("terminal: bad cmd payload", "err", err)
		_ = msg.Term()
		return
	}
	if err := in.Validate(); err != nil {
		slog.Warn("terminal: invalid cmd", "subject", msg.Subject(), "err", err)
		_ = msg.Term()
		return
	}

	events, replay := te.pendingEvents(in.SubmissionID)
	if !replay {
		events = te.Apply(in)
	}
	if err := te.publishAll(ctx, events); err != nil {
		slog.Warn("terminal: publish feedback", "sid", in.SessionID, "submission", in.SubmissionID, "err", err)
		if in.SubmissionID != "" {
			te.pending.Store(in.SubmissionID, pendingSubmission{events: events, storedAt: te.now()})
		}
		_ = msg.Nak()
		return
	}
	if in.SubmissionID != "" {
		te.pending.Delete(in.SubmissionID)
	}
	_ = msg.Ack()
}

// Apply submits the command to its session and returns the events that
// describe the change. It does not publish anything.
func (te *TerminalEngine) Apply(in messages.TerminalCommandMessage) []messages.Event {
	var res terminal.Result
	te.sessions.Do(in.SessionID, func(s *terminal.Session) {
		if in.Platform != clipper.Unknown && in.Platform != s.Platform() {
			s.SetPlatform(in.Platform)
		}
		res = s.Submit(in.Cmd)
	})
	if te.observe != nil {
		te.observe(in, res)
	}

	if res.Cleared {
		return []messages.Event{
			messages.NewTerminalClearedEvent(in.SessionID).WithSubmission(in.SubmissionID),
		}
	}
	events := make([]messages.Event, 0, len(res.Entries))
	for _, e := range res.Entries {
		events = append(events,
			messages.NewTerminalLineEvent(in.SessionID, e.ID, e.Kind, e.Text, e.CreatedAt).
				WithSubmission(in.SubmissionID))
	}
	return events
}

func (te *TerminalEngine) pendingEvents(submissionID string) ([]messages.Event, bool) {
	if submissionID == "" {
		return nil, false
	}
	v, ok := te.pending.Load(submissionID)
	if !ok {
		return nil, false
	}
	return v.(pendingSubmission).events, true
}

// PrunePending forgets submissions whose publish failed more than maxAge ago
// and were never redelivered, and returns how many were dropped.
func (te *TerminalEngine) PrunePending(maxAge time.Duration) int {
	cutoff := te.now().Add(-maxAge)
	n := 0
	te.pending.Range(func(k, v any) bool {
		if v.(pendingSubmission).storedAt.Before(cutoff) {
			te.pending.Delete(k)
			n++
		}
		return true
	})
	if n > 0 {
		slog.Info("terminal: pending submissions pruned", "count", n, "max_age", maxAge)
	}
	return n
}

func (te *TerminalEngine) publishAll(ctx context.Context, events []messages.Event) error {
	var errs []error
	for _, evt := range events {
		if err := te.publisher.PublishEvent(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CommandName reduces a submitted line to a label with bounded cardinality:
// the first token when the dispatcher knows it, "unknown" otherwise.
func CommandName(line string, known []string) string {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return "blank"
	}
	for _, k := range known {
		if fields[0] == k {
			return k
		}
	}
	return "unknown"
}
