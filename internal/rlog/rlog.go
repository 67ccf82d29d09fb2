// Package rlog provides the structured logger used across remem's
// core packages. It keeps the teacher's multi-level Logger shape
// (SetLogLevel, Fatalf/Errorf/Warnf/Infof/Debugf) but backs it with
// zap instead of a hand rolled io.Writer printf loop.
package rlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the interface every remem subsystem logs through. Code in
// this module can install its own implementation via SetLogger;
// remem.New always installs the zap-backed default.
type Logger interface {
	SetLogLevel(level string)
	Fatalf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

var log Logger = newZapLogger("info")

// SetLogger installs a caller-supplied logger, or falls back to the
// default zap-backed logger at the given level when logger is nil.
func SetLogger(logger Logger, level string) Logger {
	if logger != nil {
		log = logger
		return log
	}
	log = newZapLogger(level)
	return log
}

// Get returns the process-wide logger.
func Get() Logger { return log }

type zapLogger struct {
	atom zap.AtomicLevel
	s    *zap.SugaredLogger
}

func newZapLogger(level string) *zapLogger {
	atom := zap.NewAtomicLevelAt(string2level(level))

	zcfg := zap.Config{
		Level:            atom,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	zl, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	return &zapLogger{atom: atom, s: zl.Sugar()}
}

func (l *zapLogger) SetLogLevel(level string) { l.atom.SetLevel(string2level(level)) }

func (l *zapLogger) Fatalf(format string, v ...interface{}) { l.s.Fatalf(format, v...) }
func (l *zapLogger) Errorf(format string, v ...interface{}) { l.s.Errorf(format, v...) }
func (l *zapLogger) Warnf(format string, v ...interface{})  { l.s.Warnf(format, v...) }
func (l *zapLogger) Infof(format string, v ...interface{})  { l.s.Infof(format, v...) }
func (l *zapLogger) Debugf(format string, v ...interface{}) { l.s.Debugf(format, v...) }

func string2level(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
