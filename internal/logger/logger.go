package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()
	InfoLogger.SetOutput(os.Stdout)
	ErrorLogger.SetOutput(os.Stderr)
}

// InitLoggers switches both loggers to rotated files plus the console.
// Safe to skip in tests; the init defaults keep everything on std streams.
func InitLoggers(dir string) {
	if dir == "" {
		dir = "logs"
	}

	InfoLogger.SetFormatter(&logrus.JSONFormatter{})
	InfoLogger.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   dir + "/info.log",
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}))

	ErrorLogger.SetFormatter(&logrus.JSONFormatter{})
	ErrorLogger.SetLevel(logrus.ErrorLevel)
	ErrorLogger.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   dir + "/error.log",
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}))
}
