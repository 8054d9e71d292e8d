package clipper

// The three report handlers draw every number from d.src in a fixed order,
// so a replayed source reproduces a report exactly.

func (d *Dispatcher) scan(p Platform, _ []string) Outcome {
	t := templatesFor(p)
	totalFiles := between(d.src, 100000, 50000)
	tempFiles := between(d.src, 50, 500)
	configIssues := between(d.src, 100, 200)
	startupPrograms := between(d.src, 8, 15)
	fragmentation := between(d.src, 5, 15)
	duration := between(d.src, 15, 30)

	const cookies = 23
	r := &report{}
	r.addf("Starting comprehensive system scan... [%s]", d.clock()).
		addf("System: %s | CPU: %d cores | RAM: %dGB", t.osName, d.cores, d.memoryGB).
		add("", "🔍 Scanning system files...").
		addf("✓ System files: %s files scanned", d.count(totalFiles)).
		addf("⚠ Found %d temporary files (%.1f MB)", tempFiles, float64(tempFiles)*2.3).
		addf("⚠ Found %d cache files (%.1f MB)", tempFiles*3/10, float64(tempFiles)*0.8).
		add("", "🔍 Checking for malware...").
		addf("✓ %s: Active and up-to-date", t.antivirus).
		add("✓ Real-time protection: Enabled", "✓ Malware scan: No threats detected").
		addf("✓ Scanned %s executable files", d.count(totalFiles*8/10)).
		add("", "🔍 Analyzing performance...").
		addf("⚠ Found %d startup programs affecting boot time", startupPrograms).
		add(t.startup...).
		addf("⚠ %s has %d invalid entries", t.configStore, configIssues).
		addf("⚠ Disk fragmentation: %d%% fragmented", fragmentation).
		add("", "🔍 Privacy assessment...", "✓ Browser tracking protection: Enabled").
		addf("⚠ Found %d tracking cookies", cookies).
		add("⚠ Recent files history: 156 entries", t.telemetry, "").
		addf("Scan completed! Found %d issues that can be optimized.", tempFiles+configIssues+startupPrograms+cookies).
		add(`Run "clipper --optimize" to fix these issues.`).
		addf("Scan duration: %d seconds", duration).
		add("")
	return r.outcome()
}

func (d *Dispatcher) optimize(p Platform, _ []string) Outcome {
	t := templatesFor(p)
	tempSize := between(d.src, 200, 500)
	configFixed := between(d.src, 100, 200)
	diskFreed := d.src.Float64()*2 + 0.5
	bootGain := between(d.src, 15, 30)
	logFiles := between(d.src, 20, 50)
	perfGain := between(d.src, 15, 20)
	duration := between(d.src, 30, 45)

	// Match the one-decimal figure shown to the user when totalling.
	freed := float64(int(diskFreed*10+0.5)) / 10

	r := &report{}
	r.addf("Starting system optimization... [%s]", d.clock()).
		addf("Target System: %s", t.osName).
		add("", "🧹 Cleaning temporary files...").
		addf("✓ Removed %d MB from %s directory", tempSize, t.tempDir).
		addf("✓ Cleared %d MB browser cache", tempSize*3/10).
		addf("✓ Cleaned %d MB system cache", tempSize*2/10).
		addf("✓ Removed %d log files", logFiles).
		add("").
		addf("🧹 Cleaning %s...", lowerFirst(t.configStore)).
		addf("✓ Fixed %d invalid %s entries", configFixed, lowerFirst(t.configStore)).
		add("✓ Removed orphaned components", "✓ Cleaned invalid file associations").
		addf("✓ Optimized %s structure", lowerFirst(t.configStore)).
		add("", "🚀 Optimizing startup programs...").
		add(t.startupFix...).
		addf("✓ Boot time improved by ~%d seconds", bootGain).
		add("", "💾 Optimizing disk usage...", "✓ Defragmented system files", "✓ Optimized page file settings", "✓ Cleaned update cache").
		addf("✓ Freed up %.1f GB of disk space", freed).
		add("", "🔧 System optimization completed!").
		addf("Total space recovered: %.2f GB", freed+float64(tempSize)/1000).
		addf("Performance improvement: %d%%", perfGain).
		addf("Optimization duration: %d seconds", duration).
		add("")
	return r.outcome()
}

func (d *Dispatcher) security(p Platform, _ []string) Outcome {
	t := templatesFor(p)
	outdated := between(d.src, 1, 5)
	openPorts := between(d.src, 1, 3)
	scanned := between(d.src, 50000, 10000)
	score := between(d.src, 80, 15)
	duration := between(d.src, 20, 25)

	r := &report{}
	r.addf("Running security assessment... [%s]", d.clock()).
		addf("System: %s", t.osName).
		add("", "🔒 Checking system vulnerabilities...", "✓ Operating system: Up to date (Last update: 3 days ago)").
		addf("✓ %s: Active and monitoring", t.securityHub).
		addf("⚠ Found %d outdated software packages:", outdated).
		add("  • Google Chrome (Version 118.0 → 120.0 available)",
			"  • Adobe Reader (Version 2023.006 → 2023.008 available)").
		addIf(outdated > 2, t.extraApp).
		add("", "🔒 Analyzing network security...").
		addf("✓ %s: Active and configured", t.firewall).
		add("✓ Network profile: Private (Secure)").
		addf("⚠ Found %d potentially unnecessary open ports:", openPorts).
		add(t.ports[0]).
		addIf(openPorts > 1, t.ports[1]).
		add("✓ Wi-Fi security: WPA3 encryption",
			"",
			"🔒 Checking user account security...",
			"✓ Administrator account: Properly configured",
			"⚠ Password policy: No complexity requirements",
			"⚠ Last password change: 127 days ago",
			t.accounts).
		addf("✓ %s: Active on system drive", t.encryption).
		add("", "🔒 Scanning for security threats...",
			"✓ Real-time protection: Active",
			"✓ No malware detected in recent scan",
			"✓ No suspicious network activity",
			"✓ Browser security: Enhanced protection enabled").
		addf("✓ Scanned %d files", scanned).
		add("", "Security assessment completed!").
		addf("Security Score: %d/100", score).
		add("", "Recommendations:").
		addf("• Update %d outdated software packages", outdated).
		add("• Enable password complexity requirements",
			"• Consider changing password (last changed 127 days ago)").
		addIf(openPorts > 1, "• Review and close unnecessary network ports").
		addf("Assessment duration: %d seconds", duration).
		add("")
	return r.outcome()
}

func lowerFirst(s string) string {
	b := []byte(s)
	if len(b) > 0 && b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
