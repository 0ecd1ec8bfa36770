// pio is the launcher: it validates the backend runtime and execs the
// requested command with the computed library path.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/IndianOnRun/PredictionIO/launcher"
)

// minRuntimeVersion is the oldest backend runtime the engine supports.
const minRuntimeVersion = "1.3.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	opts := launcher.Options{
		Home:       os.Getenv(launcher.HomeEnv),
		Runtime:    envOr("PIO_RUNTIME", "pio-runtime"),
		MinVersion: minRuntimeVersion,
	}

	err := launcher.Run(opts, os.Args[1], os.Args[2:])
	if errors.Is(err, launcher.ErrUsage) {
		usage()
		os.Exit(1)
	}
	// Run only returns on failure; a successful launch replaces this process.
	fmt.Fprintf(os.Stderr, "pio: %v\n", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: pio <command> [args...]")
	fmt.Fprintln(os.Stderr, "Commands are resolved by the backend runtime, e.g. train, deploy, import.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
