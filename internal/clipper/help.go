package clipper

// Banner lines every fresh terminal session opens with.
var Banner = []string{
	"CLIpper v" + CurrentVersion + " - Cross-platform System Management Tool",
	`Type "help" to see available commands.`,
}

var helpText = []string{
	"CLIpper - Available Commands:",
	"",
	"System Analysis:",
	"  clipper --scan          Run comprehensive system scan",
	"  scan                    Alias for system scan",
	"",
	"System Optimization:",
	"  clipper --optimize      Optimize system performance",
	"  optimize                Alias for optimization",
	"",
	"Security Assessment:",
	"  clipper --security      Run security assessment",
	"  security                Alias for security check",
	"",
	"Installation & Updates:",
	"  clipper --install       Show system data collection script",
	"  install                 Alias for install script",
	"  setup                   Show setup instructions",
	"  clipper --update        Check for updates",
	"  update                  Alias for update check",
	"    --force               Always report the latest release",
	"    --verbose             Show diagnostic output",
	"    --channel <name>      Release channel: stable, beta or dev",
	"  clipper --upgrade       Upgrade to latest version",
	"  upgrade                 Alias for upgrade",
	"  clipper --uninstall     Remove CLIpper from system",
	"  uninstall               Alias for uninstall",
	"",
	"Utility Commands:",
	"  help                    Show this help message",
	"  version                 Show CLIpper version and update status",
	"  clear                   Clear terminal screen",
	"",
	"Usage Examples:",
	"  clipper --scan",
	"  clipper --update",
	"  clipper --upgrade",
	"  clipper --uninstall",
	"",
}

func (d *Dispatcher) help(Platform, []string) Outcome {
	return (&report{}).add(helpText...).outcome()
}

func (d *Dispatcher) version(p Platform, _ []string) Outcome {
	r := &report{}
	r.addf("CLIpper v%s", CurrentVersion).
		addf("Build: %s (%s)", BuildDate, GitCommit).
		addf("Platform: %s", templatesFor(p).name).
		add("", "Checking for updates...")
	if d.src.Float64() > 0.7 {
		r.warn(`🔄 Update available! Run "clipper --upgrade" to update.`)
	} else {
		r.add("✅ You are running the latest version.")
	}
	r.add("", "For update check: clipper --update", "To upgrade: clipper --upgrade")
	return r.outcome()
}

// StartupNotice is the announcement a terminal view shows when it opens.
// It consumes one draw and returns no lines roughly 60% of the time.
func StartupNotice(src Source) []Line {
	if src.Float64() <= 0.6 {
		return nil
	}
	return []Line{
		{Text: "🔄 Update available! CLIpper v" + LatestVersion + " is ready to install.", Kind: KindWarning},
		{Text: `Run "clipper --update" for details or "clipper --upgrade" to update now.`, Kind: KindWarning},
		{Text: ""},
	}
}
