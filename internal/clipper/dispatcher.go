package clipper

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Build metadata reported by the version command.
const (
	CurrentVersion = "1.0.0"
	LatestVersion  = "1.0.2"
	BuildDate      = "2024-01-15"
	GitCommit      = "a7b3c9d"
)

// DefaultBaseURL is where download and install links point unless configured otherwise.
const DefaultBaseURL = "https://clipper.tools"

// Options configures a Dispatcher. Zero values fall back to sane defaults.
type Options struct {
	// Source feeds every random draw. Defaults to a time-seeded source.
	Source Source
	// Now stamps report headers. Defaults to time.Now.
	Now func() time.Time
	// BaseURL is substituted into install, upgrade and update links.
	BaseURL string
	// Cores and MemoryGB describe the simulated host in scan headers.
	Cores    int
	MemoryGB int
}

// Dispatcher maps a command line to an Outcome. It holds no session state;
// the only thing a call mutates is the position of its random source, so a
// Dispatcher is safe for concurrent use when its Source is.
type Dispatcher struct {
	src      Source
	now      func() time.Time
	baseURL  string
	cores    int
	memoryGB int
	printer  *message.Printer
	commands map[string]handler
	flags    map[string]handler
}

// handler renders one command. args are the tokens after the command or flag.
type handler func(d *Dispatcher, p Platform, args []string) Outcome

// New builds a Dispatcher from opts.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		src:      opts.Source,
		now:      opts.Now,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		cores:    opts.Cores,
		memoryGB: opts.MemoryGB,
		printer:  message.NewPrinter(language.English),
	}
	if d.src == nil {
		d.src = NewTimeSource()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.baseURL == "" {
		d.baseURL = DefaultBaseURL
	}
	if d.cores <= 0 {
		d.cores = 4
	}
	if d.memoryGB <= 0 {
		d.memoryGB = 8
	}

	// Flags accepted after "clipper". Every flag is also a top-level alias.
	d.flags = map[string]handler{
		"--scan":      (*Dispatcher).scan,
		"--optimize":  (*Dispatcher).optimize,
		"--security":  (*Dispatcher).security,
		"--install":   (*Dispatcher).install,
		"--update":    (*Dispatcher).update,
		"--upgrade":   (*Dispatcher).upgrade,
		"--uninstall": (*Dispatcher).uninstall,
		"--help":      (*Dispatcher).help,
		"--version":   (*Dispatcher).version,
	}
	d.commands = map[string]handler{
		"help":      (*Dispatcher).help,
		"scan":      (*Dispatcher).scan,
		"optimize":  (*Dispatcher).optimize,
		"security":  (*Dispatcher).security,
		"install":   (*Dispatcher).install,
		"setup":     (*Dispatcher).setup,
		"update":    (*Dispatcher).update,
		"upgrade":   (*Dispatcher).upgrade,
		"uninstall": (*Dispatcher).uninstall,
		"version":   (*Dispatcher).version,
		"clipper":   (*Dispatcher).clipper,
		"clear":     (*Dispatcher).clear,
	}
	for flag, h := range d.flags {
		d.commands[flag] = h
	}
	return d
}

// Dispatch lower-cases and tokenizes line, then runs the matching handler.
// It never fails: an unrecognised command comes back as a single KindError line.
func (d *Dispatcher) Dispatch(line string, p Platform) Outcome {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return single(KindError, "Error: Unknown command ''. Type 'help' for available commands.")
	}
	cmd, args := fields[0], fields[1:]
	h, ok := d.commands[cmd]
	if !ok {
		return single(KindError, "Error: Unknown command '%s'. Type 'help' for available commands.", cmd)
	}
	return h(d, p, args)
}

// Commands lists every top-level name Dispatch recognises.
func (d *Dispatcher) Commands() []string {
	out := make([]string, 0, len(d.commands))
	for name := range d.commands {
		out = append(out, name)
	}
	return out
}

func (d *Dispatcher) clipper(p Platform, args []string) Outcome {
	if len(args) == 0 {
		return (&report{}).add(
			"CLIpper - Cross-platform System Management Tool",
			`Type "clipper --help" for usage information.`,
		).outcome()
	}
	h, ok := d.flags[args[0]]
	if !ok {
		return single(KindError, "Error: Unknown flag '%s'. Use 'clipper --help' for available options.", args[0])
	}
	return h(d, p, args[1:])
}

func (d *Dispatcher) clear(Platform, []string) Outcome {
	return Outcome{
		Lines: []Line{{Text: "Terminal cleared."}},
		Clear: true,
	}
}

// clock renders the current time the way report headers show it.
func (d *Dispatcher) clock() string {
	return d.now().Format("3:04:05 PM")
}

// count formats n with thousands separators.
func (d *Dispatcher) count(n int) string {
	return d.printer.Sprintf("%d", n)
}
