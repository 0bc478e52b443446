package monitor

import (
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents severity.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]LogLevel{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var zapLevels = map[LogLevel]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
}

var (
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	baseLogger  atomic.Pointer[zap.Logger]
)

func init() {
	baseLogger.Store(newConsoleLogger())
}

func newConsoleLogger() *zap.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	cfg.EncodeCaller = nil
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(zapcore.AddSync(os.Stderr)), atomicLevel)
	return zap.New(core)
}

// SetLogLevel parses and sets global log level. Unknown names are ignored.
func SetLogLevel(s string) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return
	}
	atomicLevel.SetLevel(zapLevels[l])
}

// GetLogLevel returns current global log level.
func GetLogLevel() LogLevel {
	switch atomicLevel.Level() {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.WarnLevel:
		return LevelWarn
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return LevelError
	}
	return LevelInfo
}

// L returns the shared structured logger.
func L() *zap.Logger { return baseLogger.Load() }

// SetLogger swaps the shared logger and returns a func restoring the previous one.
// The new logger is not filtered by SetLogLevel unless it was built on AtomicLevel().
func SetLogger(l *zap.Logger) (restore func()) {
	prev := baseLogger.Swap(l)
	return func() { baseLogger.Store(prev) }
}

// AtomicLevel exposes the level SetLogLevel controls, for callers building their own cores.
func AtomicLevel() zap.AtomicLevel { return atomicLevel }

func logf(l LogLevel, format string, args ...interface{}) {
	s := L().Sugar()
	// Without args the input is a plain message; fmt would mangle literal % characters.
	if len(args) == 0 {
		switch l {
		case LevelDebug:
			s.Debug(format)
		case LevelWarn:
			s.Warn(format)
		case LevelError:
			s.Error(format)
		default:
			s.Info(format)
		}
		return
	}
	switch l {
	case LevelDebug:
		s.Debugf(format, args...)
	case LevelWarn:
		s.Warnf(format, args...)
	case LevelError:
		s.Errorf(format, args...)
	default:
		s.Infof(format, args...)
	}
}

// Public helpers
func Debugf(format string, a ...interface{}) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, format, a...) }

// Timing helper for phases.
func TimeTrack(start time.Time, label string) {
	L().Debug(label, zap.Duration("took", time.Since(start)))
}

// Sync flushes buffered log entries.
func Sync() { _ = L().Sync() }
