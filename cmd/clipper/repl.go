package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	goruntime "runtime"
	"strings"

	"clipper/internal/clipper"
	"clipper/internal/platform"
	"clipper/internal/terminal"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	clearANSI  = "\033[2J\033[H"
)

func newReplCmd(flags *rootFlags) *cobra.Command {
	var platformName string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Open the simulated terminal in this shell",
		Long:  "Runs the CLIpper terminal locally. Lines are read from stdin; on a TTY the prompt supports line editing and colour.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			p, err := resolvePlatform(platformName)
			if err != nil {
				return err
			}
			platform.InitLogger(cmd.ErrOrStderr(), &platform.LogConfig{Level: "warn"})
			svc := platform.NewServices(cfg.Terminal)

			s := terminal.NewSession(svc.Dispatcher, p)
			for _, l := range clipper.StartupNotice(svc.Notices) {
				s.Append(l.Kind, l.Text)
			}

			if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				return runTTY(f, cmd.OutOrStdout(), s)
			}
			return runREPL(newScannerReader(cmd.InOrStdin()), cmd.OutOrStdout(), s, false)
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "windows, macos or linux (default: this machine)")
	return cmd
}

// resolvePlatform parses name, or maps the host OS when name is empty.
func resolvePlatform(name string) (clipper.Platform, error) {
	if name == "" {
		p, _ := clipper.ParsePlatform(goruntime.GOOS)
		return p, nil
	}
	return clipper.ParsePlatform(name)
}

type lineReader interface {
	ReadLine() (string, error)
}

type scannerReader struct {
	sc *bufio.Scanner
}

func newScannerReader(r io.Reader) *scannerReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 64<<10)
	return &scannerReader{sc: sc}
}

func (s *scannerReader) ReadLine() (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func runTTY(f *os.File, out io.Writer, s *terminal.Session) error {
	state, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(int(f.Fd()), state)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, out}, "$ ")
	if w, h, err := term.GetSize(int(f.Fd())); err == nil {
		_ = t.SetSize(w, h)
	}
	return runREPL(t, t, s, true)
}

// runREPL feeds lines from r to s until EOF. interactive sessions get colour
// and a real screen clear; piped sessions get the echoed input lines instead.
func runREPL(r lineReader, w io.Writer, s *terminal.Session, interactive bool) error {
	for _, e := range s.Transcript() {
		writeEntry(w, e, interactive)
	}
	for {
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return nil
		}

		res := s.Submit(line)
		if res.Cleared {
			if interactive {
				fmt.Fprint(w, clearANSI)
			}
			continue
		}
		for _, e := range res.Entries {
			if interactive && e.Kind == terminal.KindInput {
				// the prompt already shows what was typed
				continue
			}
			writeEntry(w, e, interactive)
		}
	}
}

func writeEntry(w io.Writer, e terminal.Entry, color bool) {
	if !color {
		fmt.Fprintln(w, e.Text)
		return
	}
	switch e.Kind {
	case terminal.KindError:
		fmt.Fprintln(w, ansiRed+e.Text+ansiReset)
	case terminal.KindWarning:
		fmt.Fprintln(w, ansiYellow+e.Text+ansiReset)
	case terminal.KindInput:
		fmt.Fprintln(w, ansiBold+e.Text+ansiReset)
	default:
		fmt.Fprintln(w, e.Text)
	}
}
