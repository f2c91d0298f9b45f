// Package alog is the ambient logging layer: an application logger
// (free-form, structured-or-plain) and an access logger (one line per
// request), both built on github.com/sirupsen/logrus the way the
// teacher's logging package does (logging/log_test.go), generalised
// from skipper's route/proxy vocabulary to this router's own request
// lifecycle.
package alog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures Init, mirroring the teacher's logging.Options
// shape (separate knobs for the application log and the access log).
type Options struct {
	ApplicationLogOutput      io.Writer
	ApplicationLogPrefix      string
	ApplicationLogJSONEnabled bool
	ApplicationLogFormatter   logrus.Formatter

	AccessLogOutput      io.Writer
	AccessLogJSONEnabled bool
	AccessLogFormatter   logrus.Formatter
}

var accessLog = logrus.New()

// Init (re)configures both loggers. Safe to call more than once — each
// call replaces the prior configuration outright, as in the teacher's
// package, which tests rely on calling Init per test case.
func Init(o Options) {
	out := o.ApplicationLogOutput
	if out == nil {
		out = os.Stderr
	}
	logrus.SetOutput(out)

	switch {
	case o.ApplicationLogFormatter != nil:
		logrus.SetFormatter(o.ApplicationLogFormatter)
	case o.ApplicationLogJSONEnabled:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&prefixFormatter{prefix: o.ApplicationLogPrefix, inner: &logrus.TextFormatter{DisableColors: true}})
	}

	accessOut := o.AccessLogOutput
	if accessOut == nil {
		accessOut = os.Stderr
	}
	accessLog.SetOutput(accessOut)

	switch {
	case o.AccessLogFormatter != nil:
		accessLog.SetFormatter(o.AccessLogFormatter)
	case o.AccessLogJSONEnabled:
		accessLog.SetFormatter(&logrus.JSONFormatter{DisableTimestamp: true})
	default:
		accessLog.SetFormatter(&accessLineFormatter{})
	}
}

// prefixFormatter prepends a static prefix to every non-JSON
// application log line, per the teacher's ApplicationLogPrefix option.
type prefixFormatter struct {
	prefix string
	inner  logrus.Formatter
}

func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	rendered, err := f.inner.Format(e)
	if err != nil {
		return nil, err
	}
	if f.prefix == "" {
		return rendered, nil
	}
	return append([]byte(f.prefix), rendered...), nil
}

// Logger adapts logrus to the small logging capabilities this module's
// packages consume (router.Logger, and any caller wanting a leveled
// sink without importing logrus directly).
type Logger struct{}

// Default is the package-level Logger instance; Init reconfigures the
// underlying logrus state it reads from.
var Default = Logger{}

func (Logger) Infof(format string, args ...any)  { logrus.Infof(format, args...) }
func (Logger) Warnf(format string, args ...any)  { logrus.Warnf(format, args...) }
func (Logger) Errorf(format string, args ...any) { logrus.Errorf(format, args...) }
