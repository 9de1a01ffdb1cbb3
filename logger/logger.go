package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Call Init before use.
var Log = logrus.New()

// Init configures Log with a JSON formatter writing to stdout at info level.
func Init() {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{})
	Log.SetLevel(logrus.InfoLevel)
}

// SetLevel parses level and applies it, keeping the current level when the
// value is not recognised.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Log.WithField("level", level).Warn("Unknown log level, keeping current")
		return
	}
	Log.SetLevel(lvl)
}
