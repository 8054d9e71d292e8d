package messages

import (
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"clipper/internal/clipper"
)

// =============================================================================
// CORE INTERFACES
// =============================================================================

// Message represents any message in the system
type Message interface {
	Subject() string
	Validate() error
}

// Command represents an input that requests something to happen
type Command interface {
	Message
	IsCommand()
}

// Event represents something that has happened
type Event interface {
	Message
	IsEvent()
	Timestamp() time.Time
}

// =============================================================================
// SUBJECT CONSTANTS - Single source of truth for all subjects
// =============================================================================

const (
	// Commands
	TerminalCommandSubjectPattern = "terminal.session.*.command" // * = session id

	// Events
	TerminalEventsSubjectPattern  = "event.terminal.session.>"
	TerminalLineSubjectPattern    = "event.terminal.session.*.line"
	TerminalClearedSubjectPattern = "event.terminal.session.*.clear"
)

// MaxCommandLength bounds the text of a single submitted line.
const MaxCommandLength = 1024

// Session ids become a subject token, so they must not contain '.', '*' or '>'.
var sessionIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// =============================================================================
// COMMANDS
// =============================================================================

// TerminalCommandMessage represents a line submitted in a terminal view
type TerminalCommandMessage struct {
	SessionID    string           `json:"session_id"`
	Cmd          string           `json:"cmd"`
	Platform     clipper.Platform `json:"platform"`
	SubmissionID string           `json:"submission_id,omitempty"`
}

func (c TerminalCommandMessage) Subject() string { return TerminalCommandSubject(c.SessionID) }
func (c TerminalCommandMessage) IsCommand()      {}
func (c TerminalCommandMessage) Validate() error {
	if err := validateSessionID(c.SessionID); err != nil {
		return err
	}
	if c.Cmd == "" {
		return fmt.Errorf("cmd is required")
	}
	if utf8.RuneCountInString(c.Cmd) > MaxCommandLength {
		return fmt.Errorf("cmd exceeds %d characters", MaxCommandLength)
	}
	return nil
}

// =============================================================================
// EVENTS
// =============================================================================

// TerminalLineEvent carries one transcript entry appended by a submission
type TerminalLineEvent struct {
	SessionID    string       `json:"session_id"`
	SubmissionID string       `json:"submission_id,omitempty"`
	EntryID      uint64       `json:"entry_id"`
	Kind         clipper.Kind `json:"kind"`
	Text         string       `json:"text"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (e TerminalLineEvent) Subject() string      { return TerminalLineSubject(e.SessionID) }
func (e TerminalLineEvent) IsEvent()             {}
func (e TerminalLineEvent) Timestamp() time.Time { return e.CreatedAt }
func (e TerminalLineEvent) Validate() error      { return validateSessionID(e.SessionID) }
func (e TerminalLineEvent) MsgID() string {
	if e.SubmissionID == "" {
		return ""
	}
	return fmt.Sprintf("%s-%d", e.SubmissionID, e.EntryID)
}

// TerminalClearedEvent signals that a session's transcript was emptied
type TerminalClearedEvent struct {
	SessionID    string    `json:"session_id"`
	SubmissionID string    `json:"submission_id,omitempty"`
	ClearedAt    time.Time `json:"cleared_at"`
}

func (e TerminalClearedEvent) Subject() string      { return TerminalClearedSubject(e.SessionID) }
func (e TerminalClearedEvent) IsEvent()             {}
func (e TerminalClearedEvent) Timestamp() time.Time { return e.ClearedAt }
func (e TerminalClearedEvent) Validate() error      { return validateSessionID(e.SessionID) }
func (e TerminalClearedEvent) MsgID() string {
	if e.SubmissionID == "" {
		return ""
	}
	return e.SubmissionID + "-clear"
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Subject builder functions for dynamic subjects
func TerminalCommandSubject(sessionID string) string {
	return fmt.Sprintf("terminal.session.%s.command", sessionID)
}

func TerminalLineSubject(sessionID string) string {
	return fmt.Sprintf("event.terminal.session.%s.line", sessionID)
}

func TerminalClearedSubject(sessionID string) string {
	return fmt.Sprintf("event.terminal.session.%s.clear", sessionID)
}

func validateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session_id is required")
	}
	if !sessionIDRegex.MatchString(id) {
		return fmt.Errorf("session_id must contain only alphanumeric characters, hyphens, and underscores")
	}
	return nil
}
