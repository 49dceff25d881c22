package logger

import (
	"log"
	"strings"
	"sync/atomic"
)

const (
	levelDebug int32 = 1
	levelInfo  int32 = 2
	levelWarn  int32 = 3
)

var logLevel atomic.Int32

func init() {
	logLevel.Store(levelInfo)
}

func SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		logLevel.Store(levelDebug)
	case "warn":
		logLevel.Store(levelWarn)
	default:
		logLevel.Store(levelInfo)
	}
}

func IsDebugEnabled() bool {
	return logLevel.Load() == levelDebug
}

func Debugf(format string, v ...any) {
	if !IsDebugEnabled() {
		return
	}

	log.Printf("[DEBUG] "+format, v...)
}

func Infof(format string, v ...any) {
	if logLevel.Load() > levelInfo {
		return
	}

	log.Printf("[INFO] "+format, v...)
}

func Warnf(format string, v ...any) {
	log.Printf("[WARN] "+format, v...)
}
