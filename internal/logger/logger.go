// Package logger configures the process-wide logrus logger.
package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger from the LOG_LEVEL
// environment variable and returns it. Unknown or missing levels
// default to info.
func Init() *logrus.Logger {
	log := logrus.StandardLogger()

	var level logrus.Level
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG":
		level = logrus.DebugLevel
	case "INFO":
		level = logrus.InfoLevel
	case "WARN":
		level = logrus.WarnLevel
	case "ERROR":
		level = logrus.ErrorLevel
	default:
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return log
}
