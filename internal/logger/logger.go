package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. Init swaps it to the configured format;
// the zero value writes JSON to stdout so packages can log before Init.
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the global logger. Development gets human-readable
// console output, everything else stays JSON.
func Init(environment string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if environment == "development" {
		Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
		Log = Log.Level(zerolog.DebugLevel)
		return
	}
	Log = Log.Level(zerolog.InfoLevel)
}
