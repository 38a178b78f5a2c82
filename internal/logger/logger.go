package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus and stamps every entry with the service name.
type Logger struct {
	*logrus.Logger
	serviceName string
}

// New returns a JSON logger writing to stdout at the given level.
func New(serviceName, level string) *Logger {
	return NewWithOutput(serviceName, level, os.Stdout)
}

func NewWithOutput(serviceName, level string, out io.Writer) *Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	switch strings.ToUpper(level) {
	case "DEBUG":
		log.SetLevel(logrus.DebugLevel)
	case "WARN":
		log.SetLevel(logrus.WarnLevel)
	case "ERROR":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	log.SetOutput(out)

	return &Logger{
		Logger:      log,
		serviceName: serviceName,
	}
}

// WithRequestID adds the request id to the entry.
func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"service":    l.serviceName,
		"request_id": requestID,
	})
}

// WithAuthor adds the looked up author address to the entry.
func (l *Logger) WithAuthor(author string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"service": l.serviceName,
		"author":  author,
	})
}

func (l *Logger) WithError(err error) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"service": l.serviceName,
		"error":   err.Error(),
	})
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return NewWithOutput("test", "ERROR", io.Discard)
}
