// Package logging builds the diagnostic logger shared by the CLI and the
// engine. The result log of found candidates lives in internal/resultlog.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects how chatty the logger is.
type Options struct {
	Verbose bool
	Quiet   bool
	NoColor bool
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// Level maps the CLI switches onto a zap level. Verbose wins over quiet.
func Level(o Options) zapcore.Level {
	switch {
	case o.Verbose:
		return zapcore.DebugLevel
	case o.Quiet:
		return zapcore.ErrorLevel
	}
	return zapcore.WarnLevel
}

// New returns a console logger writing to o.Writer.
func New(o Options) *zap.Logger {
	w := o.Writer
	if w == nil {
		w = os.Stderr
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if o.NoColor {
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(Level(o)),
	)
	return zap.New(core).Named("steghunt")
}
