package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted error to stderr and exits with code 1. The
// savectl entrypoint routes all fatal failures through it so operators see
// a single plain line rather than a log-prefixed message or a stack trace.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
