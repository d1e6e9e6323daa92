// Package logger wraps logrus behind a small process-wide API.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = build("development")

// Init configures the global logger.
// env: "development" gives colored text at debug level, anything else JSON at info level.
func Init(env string) {
	log = build(env)
}

func build(env string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if env == "development" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}

// Get returns the global logger. It logs like development until Init is called.
func Get() *logrus.Logger {
	return log
}

// With returns an entry carrying the given fields.
// Example: logger.With(logrus.Fields{"user_id": uid}).Warn("unknown user")
func With(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}

// WithError returns an entry carrying err under the "error" key.
func WithError(err error) *logrus.Entry {
	return Get().WithError(err)
}

func Debugf(format string, args ...any) { Get().Debugf(format, args...) }
func Infof(format string, args ...any)  { Get().Infof(format, args...) }
func Warnf(format string, args ...any)  { Get().Warnf(format, args...) }
func Errorf(format string, args ...any) { Get().Errorf(format, args...) }

// Fatalf logs at fatal level and exits the process.
func Fatalf(format string, args ...any) { Get().Fatalf(format, args...) }
