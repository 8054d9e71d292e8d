package clipper

import "strings"

// Channel is a release channel the update command can report on.
type Channel string

const (
	ChannelStable Channel = "stable"
	ChannelBeta   Channel = "beta"
	ChannelDev    Channel = "dev"
)

type channelInfo struct {
	version  string
	title    string
	whatsNew []string
}

var channels = map[Channel]channelInfo{
	ChannelStable: {
		version: LatestVersion,
		title:   "Stable",
		whatsNew: []string{
			"• Improved system scanning performance",
			"• Added real-time malware protection",
			"• Fixed registry optimization bugs",
			"• Enhanced security vulnerability detection",
			"• Better cross-platform compatibility",
		},
	},
	ChannelBeta: {
		version: "1.1.0-beta.2",
		title:   "Beta",
		whatsNew: []string{
			"• New scheduled scan profiles",
			"• Experimental startup impact analyzer",
			"• Reworked security score breakdown",
		},
	},
	ChannelDev: {
		version: "1.2.0-dev.7",
		title:   "Dev",
		whatsNew: []string{
			"• Nightly build from main branch",
			"• Plugin API preview",
			"• Unstable: report formats may change without notice",
		},
	},
}

// updateFlags are the options the update command understands.
type updateFlags struct {
	force   bool
	verbose bool
	channel Channel
}

// parseUpdateFlags is deliberately lenient: unknown tokens are ignored and a
// missing or unrecognised --channel value falls back to stable.
func parseUpdateFlags(args []string) updateFlags {
	f := updateFlags{channel: ChannelStable}
	for i := 0; i < len(args); i++ {
		switch a := args[i]; {
		case a == "--force":
			f.force = true
		case a == "--verbose":
			f.verbose = true
		case a == "--channel":
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
				f.channel = lookupChannel(args[i+1])
				i++
			}
		case strings.HasPrefix(a, "--channel="):
			f.channel = lookupChannel(strings.TrimPrefix(a, "--channel="))
		}
	}
	return f
}

func lookupChannel(name string) Channel {
	if _, ok := channels[Channel(name)]; ok {
		return Channel(name)
	}
	return ChannelStable
}

func (d *Dispatcher) update(p Platform, args []string) Outcome {
	f := parseUpdateFlags(args)
	ch := channels[f.channel]

	// Draw order is fixed so --force never shifts the cosmetic values.
	hasUpdate := d.src.Float64() > 0.5
	releaseDay := between(d.src, 1, 28)
	sizeMB := 12.0 + d.src.Float64()*6
	latency := between(d.src, 40, 260)
	if f.force {
		hasUpdate = true
	}

	r := &report{}
	r.add("Checking for updates...", "")
	if f.verbose {
		r.addf("[debug] channel: %s", f.channel).
			addf("[debug] endpoint: %s/releases/%s/latest.json", d.baseURL, f.channel).
			addf("[debug] platform: %s", p).
			addf("[debug] force: %t", f.force).
			addf("[debug] response time: %dms", latency).
			add("")
	}

	if !hasUpdate {
		r.add("✅ You are up to date!").
			addf("Current version: v%s", CurrentVersion).
			addf("Latest version:  v%s", CurrentVersion).
			add("", "📊 Update Statistics:", "• Last checked: Just now").
			addf("• Update channel: %s", ch.title).
			add("• Auto-update: Disabled",
				"",
				"🔔 Enable auto-updates:",
				"clipper config --auto-update on",
				"",
				"🔍 Force check: clipper --update --force",
				"")
		return r.outcome()
	}

	r.warn("🔄 Update Available!").
		addf("Current version: v%s", CurrentVersion).
		addf("Latest version:  v%s", ch.version).
		addf("Channel: %s | Released: 2024-02-%02d | Size: %s MB", ch.title, releaseDay, d.printer.Sprintf("%.1f", sizeMB)).
		add("").
		addf("📋 What's New in v%s:", ch.version).
		add(ch.whatsNew...).
		add("", "⚡ Quick Update:", "Run: clipper --upgrade", "", "📱 Or download manually:").
		addf("• Windows: %s/download/windows", d.baseURL).
		addf("• macOS: %s/download/macos", d.baseURL).
		addf("• Linux: %s/download/linux", d.baseURL).
		add("", "🔔 Auto-update available: clipper config --auto-update on", "")
	return r.outcome()
}
