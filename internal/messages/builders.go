package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clipper/internal/clipper"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"
)

// =============================================================================
// CONSTRUCTORS - Easy message creation
// =============================================================================

// NewTerminalCommandMessage creates a terminal command message stamped with
// a fresh submission id
func NewTerminalCommandMessage(sessionID, cmd string) *TerminalCommandMessage {
	return &TerminalCommandMessage{
		SessionID:    sessionID,
		Cmd:          cmd,
		SubmissionID: xid.New().String(),
	}
}

// WithPlatform sets the platform the command is rendered for
func (c *TerminalCommandMessage) WithPlatform(p clipper.Platform) *TerminalCommandMessage {
	c.Platform = p
	return c
}

// WithSubmission overrides the submission id
func (c *TerminalCommandMessage) WithSubmission(id string) *TerminalCommandMessage {
	c.SubmissionID = id
	return c
}

// NewTerminalLineEvent creates a line event for one transcript entry
func NewTerminalLineEvent(sessionID string, entryID uint64, kind clipper.Kind, text string, at time.Time) *TerminalLineEvent {
	return &TerminalLineEvent{
		SessionID: sessionID,
		EntryID:   entryID,
		Kind:      kind,
		Text:      text,
		CreatedAt: at,
	}
}

// WithSubmission ties the line to the command that produced it
func (e *TerminalLineEvent) WithSubmission(id string) *TerminalLineEvent {
	e.SubmissionID = id
	return e
}

// NewTerminalClearedEvent creates a cleared event
func NewTerminalClearedEvent(sessionID string) *TerminalClearedEvent {
	return &TerminalClearedEvent{
		SessionID: sessionID,
		ClearedAt: time.Now(),
	}
}

// WithSubmission ties the clear to the command that produced it
func (e *TerminalClearedEvent) WithSubmission(id string) *TerminalClearedEvent {
	e.SubmissionID = id
	return e
}

// =============================================================================
// PUBLISHER - Type-safe message publishing
// =============================================================================

// Sink is the part of jetstream.JetStream the Publisher needs
type Sink interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// deduplicated events carry a stable id so a republished event is dropped
// by the stream's duplicate window
type deduplicated interface {
	MsgID() string
}

// Publisher provides type-safe message publishing
type Publisher struct {
	js Sink
}

// NewPublisher creates a new type-safe publisher
func NewPublisher(js Sink) *Publisher {
	return &Publisher{js: js}
}

// PublishCommand publishes a command with validation
func (p *Publisher) PublishCommand(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	_, err = p.js.Publish(ctx, cmd.Subject(), data)
	if err != nil {
		return fmt.Errorf("publish command: %w", err)
	}

	return nil
}

// PublishEvent publishes an event with validation
func (p *Publisher) PublishEvent(ctx context.Context, evt Event) error {
	if err := evt.Validate(); err != nil {
		return fmt.Errorf("event validation failed: %w", err)
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var opts []jetstream.PublishOpt
	if d, ok := evt.(deduplicated); ok && d.MsgID() != "" {
		opts = append(opts, jetstream.WithMsgID(d.MsgID()))
	}
	_, err = p.js.Publish(ctx, evt.Subject(), data, opts...)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
