// Package logging configures the process-wide zerolog logger used by
// every CLI subcommand.
//
// Grounded on the rs/zerolog global-logger idiom shown across the
// retrieval pack (e.g. other_examples' beam-cloud-clip indexer, which
// logs via the package-level github.com/rs/zerolog/log helpers).
package logging

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the process-wide logger at the requested verbosity: a
// human-readable ConsoleWriter on a TTY, or plain JSON lines otherwise
// (e.g. when stderr is redirected to a file or piped into another tool).
// verbose enables debug-level output; otherwise the logger stays at info.
func Setup(verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
