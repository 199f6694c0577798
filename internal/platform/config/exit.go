package config

import (
	"fmt"
	"os"

	"github.com/louisbranch/deliberate.thinking/internal/platform/branding"
)

// Exitf writes a formatted error message prefixed with the application name
// to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", branding.AppName, fmt.Sprintf(format, args...))
	os.Exit(1)
}
