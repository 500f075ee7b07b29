// Package hostenv inspects the host so commands can be adapted to it: which
// platform the agent is on and which package manager installs software.
package hostenv

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/tara-vision/nexus/internal/logger"
)

// termuxPrefix is where Termux installs its userland.
const termuxPrefix = "/data/data/com.termux/files/usr"

// KnownManagers lists the package managers the probe looks for
var KnownManagers = []ManagerInfo{
	{Name: "pkg", Binary: "pkg", Priority: 10, InstallYes: true}, // Termux only, see Probe
	{Name: "apt", Binary: "apt-get", Priority: 8, InstallYes: true},
	{Name: "dnf", Binary: "dnf", Priority: 7, InstallYes: true},
	{Name: "pacman", Binary: "pacman", Priority: 7},
	{Name: "zypper", Binary: "zypper", Priority: 6, InstallYes: true},
	{Name: "apk", Binary: "apk", Priority: 6},
	{Name: "brew", Binary: "brew", Priority: 5},
	{Name: "yum", Binary: "yum", Priority: 4, InstallYes: true},
}

// Prober gathers facts about the host. The zero value probes the real
// system.
type Prober struct {
	// Root is prepended to absolute paths read from disk (os-release, the
	// Termux prefix). Tests point it at a temp directory.
	Root     string
	Getenv   func(string) string
	LookPath func(string) (string, error)
	GOOS     string
}

// Probe inspects the current host.
func Probe() *Environment {
	return (&Prober{}).Probe()
}

// Probe inspects the host described by p.
func (p *Prober) Probe() *Environment {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	goos := p.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	env := &Environment{OS: goos}
	env.WorkingDir, _ = os.Getwd()

	env.Termux = strings.Contains(getenv("PREFIX"), "com.termux") || p.exists(termuxPrefix)
	if env.Termux {
		env.OS = "android"
	}

	env.Shell = filepath.Base(getenv("SHELL"))
	if env.Shell == "." || env.Shell == "" {
		env.Shell = "sh"
	}

	if goos == "linux" && !env.Termux {
		env.Distro = p.readOSRelease()["PRETTY_NAME"]
	}
	env.PackageManager = p.detectManager(env.Termux)

	logger.Debug("host probed", "os", env.OS, "termux", env.Termux, "package_manager", env.PackageManager)
	return env
}

func (p *Prober) detectManager(termux bool) string {
	if termux {
		return "pkg"
	}

	lookPath := p.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	var found []ManagerInfo
	for _, m := range KnownManagers {
		// FreeBSD also ships a pkg; only Termux's is the canonical one here
		if m.Name == "pkg" {
			continue
		}
		if _, err := lookPath(m.Binary); err == nil {
			found = append(found, m)
		}
	}
	if len(found) == 0 {
		return ""
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Priority > found[j].Priority
	})
	return found[0].Name
}

func (p *Prober) path(abs string) string {
	if p.Root == "" {
		return abs
	}
	return filepath.Join(p.Root, abs)
}

func (p *Prober) exists(abs string) bool {
	_, err := os.Stat(p.path(abs))
	return err == nil
}

// readOSRelease parses KEY=value lines from /etc/os-release
func (p *Prober) readOSRelease() map[string]string {
	values := make(map[string]string)

	file, err := os.Open(p.path("/etc/os-release"))
	if err != nil {
		return values
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[key] = strings.Trim(value, `"'`)
	}
	return values
}

// CanonicalManager resolves the safety.package_manager setting. "auto" (or
// empty) uses the detected manager when apt-style installs can be rewritten
// to it. "none" disables installer rewriting. Anything else is used as is.
func CanonicalManager(setting string, env *Environment) string {
	switch strings.ToLower(strings.TrimSpace(setting)) {
	case "", "auto":
		if env == nil {
			return ""
		}
		for _, m := range KnownManagers {
			if m.Name == env.PackageManager && m.InstallYes {
				return m.Name
			}
		}
		return ""
	case "none":
		return ""
	default:
		return strings.TrimSpace(setting)
	}
}
