// Package messages holds the NATS messaging contracts between the HTTP layer,
// the terminal engine and the UI stream.
//
// It consolidates message types, subject patterns and validation into a single
// place:
//
//   - Commands: input that requests something to happen (TerminalCommandMessage)
//   - Events: output describing what happened (TerminalLineEvent, TerminalClearedEvent)
//
// # Subject Patterns
//
// Pattern constants are used for consumer subscriptions and builder functions
// generate concrete subjects for publishers:
//
//   - TerminalCommandSubjectPattern: "terminal.session.*.command"
//   - TerminalLineSubject("abc") → "event.terminal.session.abc.line"
//
// # Usage Example
//
//	cmd := messages.NewTerminalCommandMessage(sid, "scan").
//	    WithPlatform(clipper.Linux)
//
//	publisher := messages.NewPublisher(js)
//	if err := publisher.PublishCommand(ctx, cmd); err != nil {
//	    return err
//	}
//
// HTTP request bodies are checked against the embedded JSON schemas with
// ValidateJSON before they are turned into commands.
package messages
