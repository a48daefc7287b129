// Where: cli/internal/infra/logging/logging.go
// What: Diagnostic logger setup.
// Why: Route logrus output to stderr and pick the level from --debug.
package logging

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger. Diagnostics never share a
// stream with function output, so out is normally stderr.
func Setup(out io.Writer, debug bool) {
	log.SetOutput(out)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp:       !debug,
		FullTimestamp:          debug,
		DisableLevelTruncation: true,
	})
	log.SetLevel(Level(debug))
}

// Level returns the logrus level for the debug flag.
func Level(debug bool) log.Level {
	if debug {
		return log.DebugLevel
	}
	return log.InfoLevel
}
