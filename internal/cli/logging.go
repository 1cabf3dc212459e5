package cli

import (
	"io"

	"moodify/internal/logging"
)

// enableDebugLogging switches the default logger to debug level.
//
// It is a no-op unless the user passes --debug.
func enableDebugLogging(format string, w io.Writer) {
	logging.Init(logging.Config{Level: "debug", Format: format, Output: w})
}
