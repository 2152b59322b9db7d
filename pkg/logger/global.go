// pkg/logger/global.go
package logger

import (
	"log"
	"sync/atomic"
	"time"
)

var global atomic.Pointer[Logger]

// InitGlobal создает процессный логгер
func InitGlobal(logPath, logLevel string, debug bool) error {
	l, err := NewLogger(logPath, logLevel, debug)
	if err != nil {
		return err
	}
	SetGlobal(l)
	return nil
}

// SetGlobal подменяет глобальный логгер; nil отключает вывод
func SetGlobal(l *Logger) {
	global.Store(l)
}

// GetLogger возвращает глобальный логгер или nil
func GetLogger() *Logger {
	return global.Load()
}

func Debug(format string, v ...interface{}) {
	if l := global.Load(); l != nil {
		l.Debug(format, v...)
	}
}

func Info(format string, v ...interface{}) {
	if l := global.Load(); l != nil {
		l.Info(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if l := global.Load(); l != nil {
		l.Warn(format, v...)
	}
}

func Error(format string, v ...interface{}) {
	if l := global.Load(); l != nil {
		l.Error(format, v...)
	}
}

// Fatal без инициализированного логгера падает через стандартный log
func Fatal(format string, v ...interface{}) {
	if l := global.Load(); l != nil {
		l.Fatal(format, v...)
	}
	log.Fatalf(format, v...)
}

func Status(title string, stats map[string]string) {
	if l := global.Load(); l != nil {
		l.Status(title, stats)
	}
}

func ScanSummary(scanID string, symbols, failures, excluded int, elapsed time.Duration) {
	if l := global.Load(); l != nil {
		l.ScanSummary(scanID, symbols, failures, excluded, elapsed)
	}
}
