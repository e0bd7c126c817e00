package config

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const LogLevelEnv = "XCALL_LOG_LEVEL"
const LogFormatEnv = "XCALL_LOG_FORMAT"

const defaultLogFormat = "color-text"

var logFormatters = map[string]func() logrus.Formatter{
	"json": func() logrus.Formatter {
		return &logrus.JSONFormatter{}
	},
	"text": func() logrus.Formatter {
		return &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	},
	"color-text": func() logrus.Formatter {
		return &logrus.TextFormatter{ForceColors: true}
	},
}

// ConfigureLogger sets up logrus from XCALL_LOG_LEVEL and XCALL_LOG_FORMAT.
// An explicit level takes precedence over the environment.
func ConfigureLogger(levelMaybe ...string) {
	time.Local = time.UTC

	level := os.Getenv(LogLevelEnv)
	if len(levelMaybe) > 0 && levelMaybe[0] != "" {
		level = levelMaybe[0]
	}
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil || level == "" {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	format := strings.ToLower(os.Getenv(LogFormatEnv))
	if format == "" {
		format = defaultLogFormat
	}
	newFormatter, ok := logFormatters[format]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"format":  format,
			"options": []string{"json", "text", defaultLogFormat},
		}).Warn("unknown log format")
		return
	}
	logrus.SetFormatter(newFormatter())
}
