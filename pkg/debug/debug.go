// Package debug provides conditional debug logging for pw.
//
// Debug logging is enabled by setting the PW_DEBUG environment variable or
// passing --verbose:
//
//	PW_DEBUG=1 pw play
//
// Messages go to stderr, or to the file named by PW_DEBUG_FILE so the TUI
// screen stays clean. When disabled (default), all debug functions are no-ops.
//
// Usage:
//
//	import "github.com/vanderheijden86/pitchwalk/pkg/debug"
//
//	func myFunc() {
//	    debug.Log("processing %d records", count)
//	    // ...
//	    debug.LogTiming("myFunc", elapsed)
//	}
package debug

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  *zap.SugaredLogger
	closer  func()
)

func init() {
	if os.Getenv("PW_DEBUG") != "" {
		SetEnabled(true)
	}
}

// newLogger builds the development logger writing to PW_DEBUG_FILE or stderr.
func newLogger() (*zap.SugaredLogger, func()) {
	sink := zapcore.Lock(os.Stderr)
	closeFn := func() {}
	if path := os.Getenv("PW_DEBUG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			sink = zapcore.Lock(f)
			closeFn = func() { _ = f.Close() }
		}
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, zapcore.DebugLevel)
	return zap.New(core).Named("PW_DEBUG").Sugar(), closeFn
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger, closer = newLogger()
	}
}

// Sync flushes buffered output and releases the log file, if any.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		return
	}
	_ = logger.Sync()
	if closer != nil {
		closer()
	}
	logger, closer = nil, nil
	enabled = false
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled {
		return nil
	}
	return logger
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if l := current(); l != nil {
		l.Debugf(format, args...)
	}
}

// Logw writes a debug message with structured key/value pairs.
func Logw(msg string, keysAndValues ...any) {
	if l := current(); l != nil {
		l.Debugw(msg, keysAndValues...)
	}
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if l := current(); l != nil {
		l.Debugw("timing", "op", name, "took", d)
	}
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
// Usage:
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    // ...
//	}
func LogEnterExit(name string) func() {
	l := current()
	if l == nil {
		return func() {}
	}
	l.Debugf("-> %s", name)
	start := time.Now()
	return func() {
		l.Debugf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if l := current(); l != nil {
		l.Debugf("%s: %T = %+v", name, v, v)
	}
}

// AssertNoError logs and panics if err is not nil.
// Only active when debug is enabled.
func AssertNoError(err error, context string) {
	l := current()
	if l == nil || err == nil {
		return
	}
	l.Errorf("ASSERTION FAILED: %s: %v", context, err)
	panic(fmt.Sprintf("debug assertion failed: %s: %v", context, err))
}
