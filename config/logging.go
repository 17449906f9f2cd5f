package config

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Log is the application logger. JSON output goes to stdout and, when the
// log file can be opened, to logs/receipt-api.log as well.
var Log = logrus.New()

// LogWriter backs both the standard logger and the gorm SQL logger.
var LogWriter io.Writer = os.Stdout

// LogFilePath returns the path to the backend log file.
func LogFilePath() string {
	return filepath.Join("logs", "receipt-api.log")
}

// InitLogging prepares the log file and wires every logger to it.
func InitLogging() *os.File {
	Log.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("LOG_LEVEL") == "debug" {
		Log.SetLevel(logrus.DebugLevel)
	}

	logDir := filepath.Dir(LogFilePath())
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		Log.Warnf("Failed to create logs directory: %v", err)
	}

	logFile, err := os.OpenFile(LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		Log.Warnf("Failed to open log file: %v", err)
		LogWriter = os.Stdout
	} else {
		LogWriter = io.MultiWriter(os.Stdout, logFile)
	}

	Log.SetOutput(LogWriter)
	log.SetOutput(LogWriter)
	return logFile
}
