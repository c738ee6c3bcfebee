package doctor

import (
	"os/exec"
	"strings"

	"forksync.dev/forksync/internal/tui"
)

// checkEnvironment performs environment-related checks
func checkEnvironment(splog *tui.Splog, warnings []string, errors []string) ([]string, []string) {
	gitVersion, err := exec.Command("git", "version").Output()
	if err != nil {
		errors = append(errors, "git is not installed or not in PATH")
		splog.Error("  git is not installed or not in PATH")
	} else {
		version := strings.TrimSpace(string(gitVersion))
		splog.Info("  ✅ %s", version)
	}

	return warnings, errors
}
