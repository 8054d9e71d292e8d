package components

import (
	"context"
	"fmt"
	"io"

	"clipper/internal/clipper"
	"clipper/internal/terminal"

	"github.com/a-h/templ"
)

// DOM ids the SSE stream targets.
const (
	TranscriptID = "terminal-lines"
	PromptID     = "live-prompt"
)

// TerminalLine renders one transcript entry, styled by its kind.
func TerminalLine(id uint64, kind clipper.Kind, text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<div id=\"line-%d\" class=\"line line-%s\">%s</div>",
			id, kind, templ.EscapeString(text))
		return err
	})
}

// Transcript renders the whole transcript container. A nil slice renders it empty.
func Transcript(entries []terminal.Entry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<div id=\"%s\" class=\"terminal-lines\">", TranscriptID); err != nil {
			return err
		}
		for _, e := range entries {
			if err := TerminalLine(e.ID, e.Kind, e.Text).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>")
		return err
	})
}

// TerminalPrompt renders the live input line. Arrow keys walk the history on
// the server; Enter submits the cmd signal.
func TerminalPrompt() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<form id="%s" class="prompt" data-on-submit="@post('/terminal')">`+
			`<span class="prompt-sigil">$</span>`+
			`<input class="prompt-input" data-bind-cmd autocomplete="off" spellcheck="false" autofocus `+
			`data-on-keydown="evt.key === 'ArrowUp' &amp;&amp; (evt.preventDefault(), @post('/terminal/recall/prev')); `+
			`evt.key === 'ArrowDown' &amp;&amp; (evt.preventDefault(), @post('/terminal/recall/next'))">`+
			`</form>`, PromptID)
		return err
	})
}

// PlatformPicker renders the platform selector bound to the prefs endpoint.
func PlatformPicker(current clipper.Platform) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<select id="platform-picker" data-bind-platform `+
			`data-on-change="@patch('/session/prefs')">`); err != nil {
			return err
		}
		for _, p := range []clipper.Platform{clipper.Windows, clipper.MacOS, clipper.Linux} {
			sel := ""
			if p == current {
				sel = " selected"
			}
			if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, p, sel, p.DisplayName()); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</select>")
		return err
	})
}
