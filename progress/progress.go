// Package progress reports search progress to stderr: one line per
// prefix-2 group entered, plus leveled diagnostic messages, in the style
// of the original implementation's eprintln! progress markers
// (original_source/src/enumeration.rs, forward1.rs, forward2.rs all emit a
// line like "<prefix> (<timestamp>)" as each unit of work starts).
package progress

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Reporter wraps a logrus.Logger configured for the search's progress
// output: plain text to stderr, with an optional verbose (debug) level.
type Reporter struct {
	log *logrus.Logger
}

// New returns a Reporter writing to stderr. verbose enables debug-level
// messages in addition to info and above.
func New(verbose bool) *Reporter {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return &Reporter{log: log}
}

// GroupStarted reports that the DFS has begun exploring every candidate
// under a given 2-character prefix, mirroring the original's
// "<prefix> (<timestamp>)" progress line.
func (r *Reporter) GroupStarted(prefix string) {
	r.log.WithField("prefix", prefix).Info("search group started")
}

// StageStarted reports the start of a long-running one-time setup stage:
// backward table construction, or DP1/DP2 tensor construction.
func (r *Reporter) StageStarted(name string) {
	r.log.WithField("stage", name).Info("stage started")
}

// StageFinished reports that a setup stage completed, with a size figure
// (the backward table's node count, or a DP tensor's maximum depth) for
// visibility into the work ahead.
func (r *Reporter) StageFinished(name string, size int) {
	r.log.WithFields(logrus.Fields{"stage": name, "size": size}).Info("stage finished")
}

// PasswordFound reports a recovered password.
func (r *Reporter) PasswordFound(password string) {
	r.log.WithField("password", password).Info("password found")
}

// Debugf reports a verbose-only diagnostic message.
func (r *Reporter) Debugf(format string, args ...interface{}) {
	r.log.Debugf(format, args...)
}

// Errorf reports an error-level diagnostic message.
func (r *Reporter) Errorf(format string, args ...interface{}) {
	r.log.Errorf(format, args...)
}
