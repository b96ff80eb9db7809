// Package datalog holds the process-wide diagnostic logger. It is resolved
// exactly once: either by an explicit SetLogger before anything logs, or
// lazily from the environment on the first call to Logger.
package datalog

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

// VerboseEnv enables a development logger when set to anything but "" or "0".
const VerboseEnv = "WATCHPARTY_VERBOSE"

var (
	once   sync.Once
	logger *zap.Logger
)

// Logger returns the process-wide logger, initialising it on first use.
func Logger() *zap.Logger {
	once.Do(func() {
		logger = fromEnv()
	})
	return logger
}

// SetLogger installs l as the process-wide logger. It only takes effect when
// called before the first Logger call and reports whether it did. A nil l
// installs a no-op logger.
func SetLogger(l *zap.Logger) (installed bool) {
	once.Do(func() {
		if l == nil {
			l = zap.NewNop()
		}
		logger = l
		installed = true
	})
	return installed
}

func fromEnv() *zap.Logger {
	if v := os.Getenv(VerboseEnv); v != "" && v != "0" {
		if l, err := zap.NewDevelopment(); err == nil {
			return l
		}
	}
	return zap.NewNop()
}
