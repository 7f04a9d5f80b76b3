// Package ttyguard stops terminal capability probing for machine-readable runs.
//
// Importing it for side effects sets CI=1 before Bubble Tea and Lipgloss
// initialize when pw is asked for JSON output, version or help. Termenv skips
// its OSC/DSR background queries under CI, so nothing but the requested
// output reaches stdout.
package ttyguard

import (
	"os"
	"strings"
)

func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args[1:], os.Getenv("PW_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

func shouldSuppressTTYQueries(args []string, envTest bool) bool {
	if envTest {
		return true
	}
	for i, arg := range args {
		switch {
		case arg == "--json", arg == "--version", arg == "--help", arg == "-h":
			return true
		case arg == "--format=json", arg == "-f=json":
			return true
		case (arg == "--format" || arg == "-f") && i+1 < len(args) && args[i+1] == "json":
			return true
		case strings.HasPrefix(arg, "--json="):
			return arg != "--json=false"
		}
	}
	return len(args) > 0 && args[0] == "version"
}
