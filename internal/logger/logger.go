package logger

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

var (
	mu  sync.RWMutex
	std = newLogger(os.Stdout)
)

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           log.InfoLevel,
	})
}

func get() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

// Init applies the verbose setting. Call after config.InitConfig.
func Init() {
	if viper.GetBool("verbose") {
		get().SetLevel(log.DebugLevel)
	} else {
		get().SetLevel(log.InfoLevel)
	}
}

// SetOutput redirects all status lines, e.g. to io.Discard in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	level := std.GetLevel()
	std = newLogger(w)
	std.SetLevel(level)
}

// With returns a child logger carrying key/value pairs, e.g. the run ID.
func With(keyvals ...interface{}) *log.Logger {
	return get().With(keyvals...)
}

// Debug prints only if verbose mode is enabled
func Debug(format string, args ...interface{}) {
	get().Debugf(format, args...)
}

// Info always prints
func Info(format string, args ...interface{}) {
	get().Infof(format, args...)
}

// Warn always prints with a warning icon
func Warn(format string, args ...interface{}) {
	get().Warnf("⚠️  "+format, args...)
}

// Error always prints
func Error(format string, args ...interface{}) {
	get().Errorf("❌ "+format, args...)
}
