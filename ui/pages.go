// Package ui holds the HTML pages and static assets served by the HTTP layer.
package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"

	"clipper/internal/clipper"
	components "clipper/ui/components"

	"github.com/a-h/templ"
)

//go:embed static
var StaticFS embed.FS

//go:embed static/favicon.svg
var FaviconSVG []byte

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-beta.11/bundles/datastar.js"

// page wraps body in the shared document shell.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>%s</title>`+
			`<link rel="icon" href="/favicon.svg" type="image/svg+xml">`+
			`<link rel="stylesheet" href="/static/terminal.css">`+
			`<script type="module" src="%s"></script>`+
			`</head><body>`, templ.EscapeString(title), datastarScript); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

// InstallPage is the landing page: install instructions for the visitor's
// platform, rendered from markdown.
type InstallPage struct {
	Guide clipper.Guide
	// Instructions is the rendered markdown body.
	Instructions templ.Component
	// UpdateNotice shows the "new version" banner.
	UpdateNotice bool
}

// Index renders the install page.
func Index(p InstallPage) templ.Component {
	return page("CLIpper - Install", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<main class="install"><header><h1>CLIpper</h1>`+
			`<p>Cross-platform system management and security tool</p></header>`); err != nil {
			return err
		}
		if p.UpdateNotice {
			if _, err := fmt.Fprintf(w, `<aside class="notice line-warning">🔄 Update Available: `+
				`CLIpper v%s is now available! <a href="/terminal">Open terminal and run "clipper --upgrade"</a></aside>`,
				clipper.LatestVersion); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<nav class="actions"><a class="button" href="/terminal">Launch Terminal Interface</a>`+
			`<a class="button" href="%s">Download CLIpper</a></nav><article class="markdown">`,
			templ.EscapeString(p.Guide.DownloadURL)); err != nil {
			return err
		}
		if err := p.Instructions.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</article></main>")
		return err
	}))
}

// InstallMarkdown is the markdown source of the install instructions for g.
func InstallMarkdown(g clipper.Guide) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "## Quick Install\n\nOne-click installation for %s. Copy and paste in terminal:\n\n", g.Name)
	fmt.Fprintf(&b, "```%s\n%s\n```\n\n", g.Shell, g.QuickInstall)
	fmt.Fprintf(&b, "Or download the executable: [%s](%s)\n\n", g.DownloadURL, g.DownloadURL)
	fmt.Fprintf(&b, "Then run `%s` to check your system.\n\n", g.RunCommand)
	b.WriteString("## Requirements\n\n")
	for _, r := range g.Requirements {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\n## Try it first\n\nThe [web terminal](/terminal) runs every command in your browser.\n")
	return b.Bytes()
}

// TerminalPage renders the browser terminal. The transcript is filled in by
// the /ui stream once it connects.
func TerminalPage(p clipper.Platform) templ.Component {
	return page("CLIpper Terminal", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<main id="terminal" class="terminal" data-signals="{cmd: '', platform: '%s'}" data-on-load="@get('/ui')">`+
			`<header class="terminal-bar"><span class="title">clipper@%s</span>`, p, p); err != nil {
			return err
		}
		if err := components.PlatformPicker(p).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</header>"); err != nil {
			return err
		}
		if err := components.Transcript(nil).Render(ctx, w); err != nil {
			return err
		}
		if err := components.TerminalPrompt().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>")
		return err
	}))
}
