// MIT License
//
// Copyright (c) 2024 sphinx-core
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// go/src/log/logger.go
package logger

import (
	"bytes"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the severity level of the log message.
type LogLevel int

// Log level constants starting from 0 with iota.
const (
	DEBUG LogLevel = iota // Detailed debug information.
	INFO                  // General informational messages.
	WARN                  // Warnings about potential issues.
	ERROR                 // Error messages.
)

// levelNames associates LogLevel constants with string labels.
var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// zapLevels maps LogLevel onto zap's levels.
var zapLevels = [...]zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}

// Global variables for the logger state:

// level is the minimum level written, shared by every logger handed out.
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// buffer holds the in-memory copy of the most recent log lines.
var buffer = &LogBuffer{}

// maxBufferedLogs caps the in-memory log copy in bytes.
var maxBufferedLogs = 256 << 10

// mu guards base and sugar when the output is swapped.
var mu sync.RWMutex

var (
	base  *zap.Logger
	sugar *zap.SugaredLogger
)

func init() {
	SetOutput(os.Stdout)
}

// LogBuffer is a thread-safe bytes.Buffer to store logs in memory.
type LogBuffer struct {
	mu  sync.Mutex   // protects buf
	buf bytes.Buffer // underlying buffer
}

// Write implements io.Writer interface for LogBuffer. Once the buffer holds
// more than maxBufferedLogs bytes the oldest whole lines are dropped.
func (l *LogBuffer) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, err = l.buf.Write(p)
	if excess := l.buf.Len() - maxBufferedLogs; excess > 0 {
		l.buf.Next(excess)
		if i := bytes.IndexByte(l.buf.Bytes(), '\n'); i >= 0 {
			l.buf.Next(i + 1)
		}
	}
	return n, err
}

// String returns the current contents of the buffer as a string.
func (l *LogBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

// Reset empties the buffer.
func (l *LogBuffer) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Reset()
}

// SetOutput rebuilds the logger so that lines go to w and the in-memory
// buffer. The CLI points it at stderr to keep stdout for command output.
func SetOutput(w io.Writer) {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(io.MultiWriter(w, buffer)),
		level,
	)

	mu.Lock()
	defer mu.Unlock()
	base = zap.New(core)
	sugar = base.Sugar()
}

// Logger returns the shared structured logger for components that take a
// *zap.Logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// SetLevel sets the global logging level.
// Messages below this level will be ignored.
func SetLevel(lvl LogLevel) {
	if lvl < DEBUG || lvl > ERROR {
		return
	}
	level.SetLevel(zapLevels[lvl])
}

// ParseLevel maps a level name such as "debug" or "WARN" to a LogLevel.
func ParseLevel(name string) (LogLevel, bool) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return INFO, false
	}
	for i, zl := range zapLevels {
		if zl == l {
			return LogLevel(i), true
		}
	}
	return INFO, false
}

// String returns the level label.
func (l LogLevel) String() string {
	if l < DEBUG || l > ERROR {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// GetLogs returns everything logged since start or the last ResetLogs.
func GetLogs() string {
	return buffer.String()
}

// ResetLogs empties the in-memory log buffer.
func ResetLogs() {
	buffer.Reset()
}

func logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Infof logs a formatted message at INFO level.
func Infof(format string, args ...any) { logger().Infof(format, args...) }

// Errorf logs a formatted message at ERROR level.
func Errorf(format string, args ...any) { logger().Errorf(format, args...) }

// Fatalf logs a formatted message at ERROR level and then terminates the program.
func Fatalf(format string, args ...any) {
	logger().Errorf(format, args...)
	_ = logger().Sync()
	os.Exit(1)
}

// Debugf logs a formatted message at DEBUG level.
func Debugf(format string, args ...any) { logger().Debugf(format, args...) }

// Warnf logs a formatted message at WARN level.
func Warnf(format string, args ...any) { logger().Warnf(format, args...) }

// Convenience exported functions to log with simpler names:

// Debug logs a DEBUG level message.
func Debug(format string, args ...any) { logger().Debugf(format, args...) }

// Info logs an INFO level message.
func Info(format string, args ...any) { logger().Infof(format, args...) }

// Warn logs a WARN level message.
func Warn(format string, args ...any) { logger().Warnf(format, args...) }

// Error logs an ERROR level message.
func Error(format string, args ...any) { logger().Errorf(format, args...) }
