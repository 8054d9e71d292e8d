package clipper

import "strings"

// templateSet holds everything that differs between platforms. Blocks may
// contain {base}, {version}, {size} and {user} placeholders, filled by expand.
type templateSet struct {
	name   string // short display name
	osName string // name reported in scan headers

	antivirus   string
	telemetry   string
	tempDir     string
	configStore string
	startup     []string
	startupFix  []string
	firewall    string
	encryption  string
	accounts    string
	securityHub string
	extraApp    string
	ports       []string

	install   []string
	upgrade   []string
	uninstall []string
	guide     Guide
}

// Guide is the install page summary for one platform.
type Guide struct {
	Platform     Platform
	Name         string
	QuickInstall string
	Shell        string // syntax used to highlight QuickInstall
	DownloadURL  string
	RunCommand   string
	Requirements []string
}

var templates = map[Platform]*templateSet{
	Windows: {
		name:        "Windows",
		osName:      "Windows 11",
		antivirus:   "Windows Defender",
		telemetry:   "✓ Windows telemetry: Minimal level",
		tempDir:     "%TEMP%",
		configStore: "Registry",
		startup: []string{
			"  • Microsoft Teams (Impact: High)",
			"  • Adobe Updater (Impact: Medium)",
			"  • Spotify (Impact: Medium)",
			"  • Steam Client (Impact: Low)",
		},
		startupFix: []string{
			"✓ Disabled Microsoft Teams auto-start",
			"✓ Delayed Adobe Updater startup",
			"✓ Optimized Windows Search indexing",
		},
		firewall:    "Windows Firewall",
		encryption:  "BitLocker encryption",
		accounts:    "✓ User Account Control (UAC): Enabled",
		securityHub: "Windows Security",
		extraApp:    "  • VLC Media Player (Version 3.0.18 → 3.0.20 available)",
		ports: []string{
			"  • Port 5357 (Web Services on Devices)",
			"  • Port 1900 (Universal Plug and Play)",
		},
		install: []string{
			"CLIpper Easy Install - Windows",
			"==============================",
			"",
			"🚀 ONE-CLICK INSTALL:",
			"Copy this command and paste in PowerShell (Run as Administrator):",
			"",
			"irm {base}/install.ps1 | iex",
			"",
			"📋 OR MANUAL INSTALL:",
			`Copy and save the following as "clipper-install.ps1":`,
			"",
			"# CLIpper Auto-Install Script for Windows",
			`Write-Host "Installing CLIpper..." -ForegroundColor Green`,
			"",
			"# Create CLIpper directory",
			`$clipperDir = "$env:USERPROFILE\CLIpper"`,
			"New-Item -ItemType Directory -Force -Path $clipperDir",
			"",
			"# Download CLIpper executable",
			`$url = "{base}/clipper-windows.exe"`,
			`$output = "$clipperDir\clipper.exe"`,
			"Invoke-WebRequest -Uri $url -OutFile $output",
			"",
			"# Add to PATH",
			`$currentPath = [Environment]::GetEnvironmentVariable("PATH", "User")`,
			`if ($currentPath -notlike "*$clipperDir*") {`,
			`    [Environment]::SetEnvironmentVariable("PATH", "$currentPath;$clipperDir", "User")`,
			"}",
			"",
			"# Create desktop shortcut",
			"$shell = New-Object -ComObject WScript.Shell",
			`$shortcut = $shell.CreateShortcut("$env:USERPROFILE\Desktop\CLIpper.lnk")`,
			"$shortcut.TargetPath = $output",
			"$shortcut.Save()",
			"",
			`Write-Host "✅ CLIpper installed successfully!" -ForegroundColor Green`,
			`Write-Host "Run: clipper --help" -ForegroundColor Yellow`,
			"",
			"⚡ QUICK INSTALL STEPS:",
			`1. Right-click PowerShell → "Run as Administrator"`,
			"2. Paste: irm {base}/install.ps1 | iex",
			"3. Press Enter and wait for installation",
			"4. Type: clipper --help",
			"",
			"📱 Alternative: Download CLIpper.exe directly",
			"   {base}/clipper-windows.exe",
			"",
		},
		upgrade: []string{
			"Starting CLIpper upgrade for Windows...",
			"",
			"📥 Downloading latest version...",
			"✓ Downloaded CLIpper v{version} ({size} MB)",
			"✓ Verified digital signature",
			`✓ Backup created: C:\Users\%USERNAME%\CLIpper\backup\`,
			"",
			"🔄 Installing update...",
			"✓ Stopped CLIpper services",
			"✓ Updated core executable",
			"✓ Updated system integration",
			"✓ Restored user settings",
			"✓ Started CLIpper services",
			"",
			"🎉 Upgrade completed successfully!",
			"CLIpper v{version} is now installed.",
			"",
			"📋 What's New:",
			"• 40% faster system scans",
			"• Real-time threat protection",
			"• Enhanced registry cleaner",
			"• New security hardening options",
			"",
			"Restart recommended for full functionality.",
		},
		uninstall: []string{
			"CLIpper Uninstall - Windows",
			"===========================",
			"",
			"⚠️  WARNING: This will completely remove CLIpper from your system.",
			"",
			"📋 Manual Uninstall Steps:",
			"",
			"1. Remove CLIpper Directory:",
			"   • Open File Explorer",
			`   • Navigate to: %USERPROFILE%\CLIpper`,
			"   • Delete the entire CLIpper folder",
			`   • Or run: rmdir /s "%USERPROFILE%\CLIpper"`,
			"",
			"2. Remove from PATH:",
			"   • Press Win+R, type: sysdm.cpl",
			`   • Click "Environment Variables"`,
			`   • In User Variables, select "Path" and click "Edit"`,
			"   • Remove the CLIpper path entry",
			"   • Click OK to save",
			"",
			"3. Remove Desktop Shortcut:",
			`   • Delete "CLIpper.lnk" from Desktop`,
			"",
			"4. Remove Start Menu Entry:",
			`   • Delete from: %APPDATA%\Microsoft\Windows\Start Menu\Programs\`,
			"",
			"🔧 PowerShell Uninstall Script:",
			"Copy and run in PowerShell (Admin):",
			"",
			"# Remove CLIpper directory",
			`Remove-Item -Recurse -Force "$env:USERPROFILE\CLIpper" -ErrorAction SilentlyContinue`,
			"",
			"# Remove from PATH",
			`$currentPath = [Environment]::GetEnvironmentVariable("PATH", "User")`,
			`$newPath = $currentPath -replace ";?[^;]*CLIpper[^;]*", ""`,
			`[Environment]::SetEnvironmentVariable("PATH", $newPath, "User")`,
			"",
			"# Remove shortcuts",
			`Remove-Item "$env:USERPROFILE\Desktop\CLIpper.lnk" -ErrorAction SilentlyContinue`,
			`Remove-Item "$env:APPDATA\Microsoft\Windows\Start Menu\Programs\CLIpper.lnk" -ErrorAction SilentlyContinue`,
			"",
			`Write-Host "CLIpper has been uninstalled" -ForegroundColor Green`,
			"",
			"✅ After uninstall:",
			"• Restart your terminal/command prompt",
			"• CLIpper commands will no longer work",
			"• All system data and settings are removed",
			"",
		},
		guide: Guide{
			Platform:     Windows,
			Name:         "Windows",
			QuickInstall: "irm {base}/install.ps1 | iex",
			Shell:        "powershell",
			DownloadURL:  "{base}/clipper-windows.exe",
			RunCommand:   "clipper --scan",
			Requirements: []string{"PowerShell 5.1+", "Administrator privileges", "Windows 10/11"},
		},
	},
	MacOS: {
		name:        "macOS",
		osName:      "macOS Sonoma 14.2",
		antivirus:   "XProtect",
		telemetry:   "✓ Analytics sharing: Disabled",
		tempDir:     "~/Library/Caches",
		configStore: "Preference database",
		startup: []string{
			"  • Microsoft Teams (Impact: High)",
			"  • Adobe Creative Cloud (Impact: Medium)",
			"  • Spotify (Impact: Medium)",
			"  • Dropbox (Impact: Low)",
		},
		startupFix: []string{
			"✓ Removed Microsoft Teams login item",
			"✓ Delayed Adobe Creative Cloud launch agent",
			"✓ Rebuilt Spotlight index",
		},
		firewall:    "Application Firewall",
		encryption:  "FileVault encryption",
		accounts:    "✓ System Integrity Protection: Enabled",
		securityHub: "Gatekeeper",
		extraApp:    "  • VLC Media Player (Version 3.0.18 → 3.0.20 available)",
		ports: []string{
			"  • Port 5000 (AirPlay Receiver)",
			"  • Port 7000 (AirPlay Streaming)",
		},
		install: []string{
			"CLIpper Easy Install - macOS",
			"============================",
			"",
			"🚀 ONE-CLICK INSTALL (Homebrew):",
			"Copy and paste in Terminal:",
			"",
			"brew install clipper-tools/tap/clipper",
			"",
			"🔧 OR CURL INSTALL:",
			"curl -fsSL {base}/install.sh | bash",
			"",
			"📋 OR MANUAL INSTALL:",
			`Copy and save as "install-clipper.sh":`,
			"",
			"#!/bin/bash",
			`echo "Installing CLIpper for macOS..."`,
			"",
			"# Create installation directory",
			"mkdir -p ~/Applications/CLIpper",
			"",
			"# Download CLIpper",
			"curl -L {base}/clipper-macos.tar.gz -o /tmp/clipper.tar.gz",
			"",
			"# Extract",
			"tar -xzf /tmp/clipper.tar.gz -C ~/Applications/CLIpper",
			"",
			"# Make executable",
			"chmod +x ~/Applications/CLIpper/clipper",
			"",
			"# Add to PATH",
			`echo 'export PATH="$HOME/Applications/CLIpper:$PATH"' >> ~/.zshrc`,
			`echo 'export PATH="$HOME/Applications/CLIpper:$PATH"' >> ~/.bash_profile`,
			"",
			"# Create alias",
			"ln -sf ~/Applications/CLIpper/clipper /usr/local/bin/clipper 2>/dev/null || true",
			"",
			`echo "✅ CLIpper installed successfully!"`,
			`echo "Restart terminal or run: source ~/.zshrc"`,
			`echo "Then type: clipper --help"`,
			"",
			"⚡ QUICK INSTALL OPTIONS:",
			"1. Homebrew: brew install clipper-tools/tap/clipper",
			"2. Curl: curl -fsSL {base}/install.sh | bash",
			"3. Direct download: {base}/clipper-macos.tar.gz",
			"",
			"🍺 After install, run: clipper --help",
			"",
		},
		upgrade: []string{
			"Starting CLIpper upgrade for macOS...",
			"",
			"📥 Downloading from Homebrew...",
			"✓ brew update completed",
			"✓ Downloaded CLIpper v{version} ({size} MB)",
			"✓ Verified package signature",
			"",
			"🔄 Installing update...",
			"✓ Unlinked old version",
			"✓ Installed new binaries",
			"✓ Updated symlinks",
			"✓ Refreshed launch services",
			"",
			"🎉 Upgrade completed successfully!",
			"CLIpper v{version} is now active.",
			"",
			"📋 What's New:",
			"• Native Apple Silicon optimization",
			"• Improved Gatekeeper integration",
			"• Enhanced privacy scanning",
			"• Better macOS Sonoma support",
		},
		uninstall: []string{
			"CLIpper Uninstall - macOS",
			"=========================",
			"",
			"⚠️  WARNING: This will completely remove CLIpper from your system.",
			"",
			"📋 Manual Uninstall Steps:",
			"",
			"1. Remove CLIpper Directory:",
			"   rm -rf ~/Applications/CLIpper",
			"",
			"2. Remove from PATH:",
			"   • Edit ~/.zshrc or ~/.bash_profile",
			`   • Remove the line: export PATH="$HOME/Applications/CLIpper:$PATH"`,
			"   • Save and restart terminal",
			"",
			"3. Remove Symlink (if exists):",
			"   sudo rm -f /usr/local/bin/clipper",
			"",
			"🔧 One-Command Uninstall:",
			"Copy and run in Terminal:",
			"",
			"#!/bin/bash",
			`echo "Uninstalling CLIpper..."`,
			"",
			"# Remove CLIpper directory",
			"rm -rf ~/Applications/CLIpper",
			"",
			"# Remove from shell configuration",
			"sed -i.bak '/CLIpper/d' ~/.zshrc 2>/dev/null || true",
			"sed -i.bak '/CLIpper/d' ~/.bash_profile 2>/dev/null || true",
			"",
			"# Remove symlink",
			"sudo rm -f /usr/local/bin/clipper 2>/dev/null || true",
			"",
			"# Remove from Homebrew (if installed via brew)",
			"brew uninstall clipper 2>/dev/null || true",
			"",
			`echo "✅ CLIpper has been uninstalled"`,
			`echo "Please restart your terminal"`,
			"",
			"✅ After uninstall:",
			"• Restart your terminal",
			"• CLIpper commands will no longer work",
			"• All system data and settings are removed",
			"",
		},
		guide: Guide{
			Platform:     MacOS,
			Name:         "macOS",
			QuickInstall: "curl -fsSL {base}/install.sh | bash",
			Shell:        "bash",
			DownloadURL:  "{base}/clipper-macos.tar.gz",
			RunCommand:   "clipper --scan",
			Requirements: []string{"Homebrew", "macOS 10.15+", "Xcode Command Line Tools"},
		},
	},
	Linux: {
		name:        "Linux",
		osName:      "Ubuntu 22.04 LTS",
		antivirus:   "ClamAV",
		telemetry:   "✓ Popularity contest: Not enrolled",
		tempDir:     "/tmp",
		configStore: "Package database",
		startup: []string{
			"  • snapd (Impact: High)",
			"  • tracker-miner-fs (Impact: Medium)",
			"  • Spotify (Impact: Medium)",
			"  • Steam Client (Impact: Low)",
		},
		startupFix: []string{
			"✓ Masked snapd.seeded.service",
			"✓ Delayed tracker-miner-fs indexing",
			"✓ Trimmed systemd journal",
		},
		firewall:    "UFW firewall",
		encryption:  "LUKS encryption",
		accounts:    "✓ sudo access: Restricted to admin group",
		securityHub: "AppArmor",
		extraApp:    "  • VLC Media Player (Version 3.0.16 → 3.0.20 available)",
		ports: []string{
			"  • Port 631 (CUPS printing)",
			"  • Port 5353 (Avahi mDNS)",
		},
		install: []string{
			"CLIpper Easy Install - Linux",
			"============================",
			"",
			"🚀 ONE-CLICK INSTALL:",
			"Copy and paste in Terminal:",
			"",
			"curl -fsSL {base}/install.sh | sudo bash",
			"",
			"📦 OR PACKAGE MANAGER:",
			"",
			"# Ubuntu/Debian:",
			"wget -qO- {base}/keys/gpg | sudo apt-key add -",
			`echo "deb {base}/apt stable main" | sudo tee /etc/apt/sources.list.d/clipper.list`,
			"sudo apt update && sudo apt install clipper",
			"",
			"# CentOS/RHEL/Fedora:",
			"sudo yum-config-manager --add-repo {base}/rpm/clipper.repo",
			"sudo yum install clipper",
			"",
			"# Arch Linux:",
			"yay -S clipper-bin",
			"",
			"📋 OR MANUAL INSTALL:",
			`Copy and save as "install-clipper.sh":`,
			"",
			"#!/bin/bash",
			`echo "Installing CLIpper for Linux..."`,
			"",
			"# Detect architecture",
			"ARCH=$(uname -m)",
			"case $ARCH in",
			`    x86_64) ARCH="amd64" ;;`,
			`    aarch64) ARCH="arm64" ;;`,
			`    armv7l) ARCH="armv7" ;;`,
			"esac",
			"",
			"# Download CLIpper",
			`curl -L "{base}/clipper-linux-${ARCH}.tar.gz" -o /tmp/clipper.tar.gz`,
			"",
			"# Install to /usr/local/bin",
			"sudo tar -xzf /tmp/clipper.tar.gz -C /usr/local/bin",
			"sudo chmod +x /usr/local/bin/clipper",
			"",
			"# Create desktop entry",
			"cat > ~/.local/share/applications/clipper.desktop << EOF",
			"[Desktop Entry]",
			"Name=CLIpper",
			"Comment=System Management Tool",
			"Exec=/usr/local/bin/clipper",
			"Icon=utilities-system-monitor",
			"Terminal=true",
			"Type=Application",
			"Categories=System;",
			"EOF",
			"",
			`echo "✅ CLIpper installed successfully!"`,
			`echo "Run: clipper --help"`,
			"",
			"⚡ QUICK INSTALL OPTIONS:",
			"1. One-click: curl -fsSL {base}/install.sh | sudo bash",
			"2. Package manager: See commands above for your distro",
			"3. Direct download: {base}/clipper-linux.tar.gz",
			"",
			"🐧 After install, run: clipper --help",
			"",
		},
		upgrade: []string{
			"Starting CLIpper upgrade for Linux...",
			"",
			"📥 Downloading latest package...",
			"✓ Downloaded CLIpper v{version} ({size} MB)",
			"✓ Verified GPG signature",
			"✓ Checked dependencies",
			"",
			"🔄 Installing update...",
			"✓ Stopped clipper daemon",
			"✓ Updated /usr/local/bin/clipper",
			"✓ Updated man pages",
			"✓ Refreshed desktop entries",
			"✓ Started clipper daemon",
			"",
			"🎉 Upgrade completed successfully!",
			"CLIpper v{version} is now installed.",
			"",
			"📋 What's New:",
			"• Support for more Linux distros",
			"• Improved systemd integration",
			"• Enhanced package manager detection",
			"• Better container environment support",
		},
		uninstall: []string{
			"CLIpper Uninstall - Linux",
			"=========================",
			"",
			"⚠️  WARNING: This will completely remove CLIpper from your system.",
			"",
			"📋 Manual Uninstall Steps:",
			"",
			"1. Remove CLIpper Executable:",
			"   sudo rm -f /usr/local/bin/clipper",
			"",
			"2. Remove Desktop Entry:",
			"   rm -f ~/.local/share/applications/clipper.desktop",
			"",
			"3. Remove Package (if installed via package manager):",
			"   # Ubuntu/Debian:",
			"   sudo apt remove clipper",
			"",
			"   # CentOS/RHEL/Fedora:",
			"   sudo yum remove clipper",
			"",
			"   # Arch Linux:",
			"   yay -R clipper-bin",
			"",
			"🔧 One-Command Uninstall:",
			"Copy and run in Terminal:",
			"",
			"#!/bin/bash",
			`echo "Uninstalling CLIpper..."`,
			"",
			"# Remove executable",
			"sudo rm -f /usr/local/bin/clipper",
			"",
			"# Remove desktop entry",
			"rm -f ~/.local/share/applications/clipper.desktop",
			"",
			"# Remove from package managers",
			"sudo apt remove clipper 2>/dev/null || true",
			"sudo yum remove clipper 2>/dev/null || true",
			"yay -R clipper-bin 2>/dev/null || true",
			"",
			"# Remove any remaining config files",
			"rm -rf ~/.config/clipper 2>/dev/null || true",
			"rm -rf ~/.local/share/clipper 2>/dev/null || true",
			"",
			`echo "✅ CLIpper has been uninstalled"`,
			"",
			"✅ After uninstall:",
			"• CLIpper commands will no longer work",
			"• All system data and settings are removed",
			"• No restart required",
			"",
		},
		guide: Guide{
			Platform:     Linux,
			Name:         "Linux",
			QuickInstall: "curl -fsSL {base}/install.sh | sudo bash",
			Shell:        "bash",
			DownloadURL:  "{base}/clipper-linux.tar.gz",
			RunCommand:   "clipper --scan",
			Requirements: []string{"Ubuntu/Debian based", "sudo privileges", "curl/wget"},
		},
	},
}

func init() {
	// Unknown hosts get the Linux instructions under an honest name.
	unknown := *templates[Linux]
	unknown.name = "Unknown"
	unknown.osName = "Unknown OS"
	templates[Unknown] = &unknown
}

func templatesFor(p Platform) *templateSet {
	if t, ok := templates[p]; ok {
		return t
	}
	return templates[Unknown]
}

// expand fills placeholders in every line of block.
func (d *Dispatcher) expand(block []string, extra ...string) []string {
	pairs := append([]string{"{base}", d.baseURL, "{version}", LatestVersion}, extra...)
	rep := strings.NewReplacer(pairs...)
	out := make([]string, len(block))
	for i, l := range block {
		out[i] = rep.Replace(l)
	}
	return out
}

// Guide returns the install page summary for p with links resolved.
func (d *Dispatcher) Guide(p Platform) Guide {
	g := templatesFor(p).guide
	rep := strings.NewReplacer("{base}", d.baseURL)
	g.QuickInstall = rep.Replace(g.QuickInstall)
	g.DownloadURL = rep.Replace(g.DownloadURL)
	if p == Unknown {
		g.Platform = Unknown
	}
	return g
}

func (d *Dispatcher) install(p Platform, _ []string) Outcome {
	return (&report{}).add(d.expand(templatesFor(p).install)...).outcome()
}

func (d *Dispatcher) uninstall(p Platform, _ []string) Outcome {
	return (&report{}).add(d.expand(templatesFor(p).uninstall)...).outcome()
}

func (d *Dispatcher) upgrade(p Platform, _ []string) Outcome {
	size := 12.0 + d.src.Float64()*6
	elapsed := between(d.src, 8, 20)
	r := &report{}
	r.add(d.expand(templatesFor(p).upgrade, "{size}", d.printer.Sprintf("%.1f", size))...)
	r.add("").
		addf("Upgrade finished in %d seconds.", elapsed).
		add("Run: clipper --version to verify update", "")
	return r.outcome()
}

func (d *Dispatcher) setup(Platform, []string) Outcome {
	return (&report{}).add(d.expand(setupText)...).outcome()
}

var setupText = []string{
	"CLIpper Easy Setup Guide",
	"========================",
	"",
	"🎯 FASTEST INSTALL METHODS:",
	"",
	"💻 Windows:",
	"   PowerShell (Admin): irm {base}/install.ps1 | iex",
	"   Or download: {base}/clipper-windows.exe",
	"",
	"🍎 macOS:",
	"   Homebrew: brew install clipper-tools/tap/clipper",
	"   Or curl: curl -fsSL {base}/install.sh | bash",
	"",
	"🐧 Linux:",
	"   One-click: curl -fsSL {base}/install.sh | sudo bash",
	"   Or package manager (apt/yum/pacman)",
	"",
	"⚡ AFTER INSTALLATION:",
	"1. Open new terminal/command prompt",
	"2. Type: clipper --help",
	"3. Run: clipper --scan (for system analysis)",
	"4. Run: clipper --optimize (to improve performance)",
	"",
	"🔧 WHAT GETS INSTALLED:",
	"• CLIpper executable added to system PATH",
	"• Desktop shortcut (Windows/Linux)",
	"• System integration for easy access",
	"• Automatic updates capability",
	"",
	"🛡️ SECURITY FEATURES:",
	"• Code-signed binaries",
	"• SHA256 checksums verified",
	"• No admin rights needed after install",
	"• Open source and auditable",
	"",
	"📱 MOBILE/WEB VERSION:",
	"   Access CLIpper online: {base}/",
	"",
	"❓ NEED HELP?",
	"   Documentation: {base}/docs",
	"   Support: {base}/support",
	"",
	"For detailed install: clipper --install",
	"",
}
