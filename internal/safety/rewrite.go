package safety

import (
	"regexp"
	"strings"
)

var (
	sudoPrefix   = regexp.MustCompile(`(^|[;&|]\s*)sudo\s+`)
	installVerb  = regexp.MustCompile(`\b(pkg|apt-get|apt)(\s+)install\b`)
	altInstaller = regexp.MustCompile(`\b(apt-get|apt)\s+install\b`)
)

var assumeYesFlags = []string{"-y", "--yes", "--assume-yes"}

// Rewriter turns commands into forms that do not stall on a prompt.
type Rewriter struct {
	// PackageManager is the canonical installer for the host, e.g. "pkg" on
	// Termux. Empty disables installer normalization.
	PackageManager string
}

// Rewrite returns the adjusted command and whether anything changed.
// Applying it twice gives the same result as applying it once.
func (r Rewriter) Rewrite(command string) (string, bool) {
	original := command
	out := strings.TrimSpace(command)

	out = sudoPrefix.ReplaceAllString(out, "$1")

	if installVerb.MatchString(out) && !hasAssumeYes(out) {
		out = installVerb.ReplaceAllString(out, "$1${2}install -y")
	}

	if r.PackageManager != "" {
		out = altInstaller.ReplaceAllString(out, r.PackageManager+" install")
	}

	return out, out != strings.TrimSpace(original)
}

func hasAssumeYes(command string) bool {
	for _, field := range strings.Fields(command) {
		for _, flag := range assumeYesFlags {
			if field == flag {
				return true
			}
		}
	}
	return false
}
