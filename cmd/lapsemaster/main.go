// Command lapsemaster batch-converts numbered JPEG frame sequences into
// time-lapse MP4 videos via ffmpeg, optionally overlaying per-frame capture
// timestamps read with exiftool.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Optional project-local .env for LAPSEMASTER_* tool-path overrides.
	_ = godotenv.Load()

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lapsemaster: %v\n", err)
		os.Exit(1)
	}
}
