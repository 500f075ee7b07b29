package hostenv

import (
	"fmt"
	"strings"
)

// Environment describes the machine the agent runs commands on. OS is a
// GOOS value, or "android" under Termux; Distro is PRETTY_NAME from
// os-release.
type Environment struct {
	OS             string `json:"os"`
	Distro         string `json:"distro,omitempty"`
	Termux         bool   `json:"termux"`
	Shell          string `json:"shell"`
	PackageManager string `json:"package_manager,omitempty"`
	WorkingDir     string `json:"working_dir"`
}

// ManagerInfo defines how a package manager is recognized
type ManagerInfo struct {
	Name       string
	Binary     string
	Priority   int // higher wins when several are installed
	// InstallYes is set when "<Name> install -y <pkg>" is valid syntax, so
	// apt-style install commands can be rewritten to it.
	InstallYes bool
}

// Summary renders the environment as a few lines for the system prompt.
func (e *Environment) Summary() string {
	if e == nil {
		return ""
	}

	var sb strings.Builder
	platform := e.OS
	if e.Termux {
		platform = "Termux on Android"
	} else if e.Distro != "" {
		platform = fmt.Sprintf("%s (%s)", e.Distro, e.OS)
	}
	fmt.Fprintf(&sb, "- Platform: %s\n", platform)
	if e.Shell != "" {
		fmt.Fprintf(&sb, "- Shell: %s\n", e.Shell)
	}
	if e.PackageManager != "" {
		fmt.Fprintf(&sb, "- Package manager: %s\n", e.PackageManager)
	}
	if e.WorkingDir != "" {
		fmt.Fprintf(&sb, "- Working directory: %s\n", e.WorkingDir)
	}
	return sb.String()
}
