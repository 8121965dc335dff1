// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Setup points the standard logger at out with the prefixed text formatter
// and returns it. Entries carrying a "prefix" field are tagged with it.
func Setup(out io.Writer, level logrus.Level) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	})
	logger.SetOutput(out)
	logger.SetLevel(level)
	return logger
}
