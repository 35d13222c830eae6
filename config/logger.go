package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is usable before InitializeConfig so library code and tests can
// log without wiring the full service set.
var Logger = logrus.New()

func NewLoggerService() {
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}

	Logger.SetLevel(level)
}
