// pkg/logger/logger.go

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level - уровень важности сообщения
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// ANSI цвета уровней в режиме отладки
var levelColors = [...]string{"\033[36m", "\033[32m", "\033[33m", "\033[31m", "\033[35m"}

const colorReset = "\033[0m"

func (lv Level) String() string {
	if lv < LevelDebug || lv > LevelFatal {
		return fmt.Sprintf("LEVEL(%d)", int(lv))
	}
	return levelNames[lv]
}

// ParseLevel разбирает имя уровня без учета регистра.
// Неизвестное имя дает LevelDebug и false: такой логгер пишет все.
func ParseLevel(name string) (Level, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		name = "WARN"
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), true
		}
	}
	return LevelDebug, false
}

// Logger пишет строки вида "[LEVEL] 2006-01-02 15:04:05 сообщение"
type Logger struct {
	mu      sync.Mutex
	logFile *os.File
	w       io.Writer
	out     *log.Logger
	level   Level
	color   bool
}

// NewLogger создает логгер, пишущий в stdout и, если задан logPath, в файл
func NewLogger(logPath string, logLevel string, debug bool) (*Logger, error) {
	if logPath == "" {
		return NewWithWriter(os.Stdout, logLevel, debug), nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := NewWithWriter(io.MultiWriter(os.Stdout, f), logLevel, debug)
	l.logFile = f
	return l, nil
}

// NewWithWriter создает логгер поверх произвольного writer.
// Цвета включаются только в режиме отладки.
func NewWithWriter(w io.Writer, logLevel string, debug bool) *Logger {
	level, _ := ParseLevel(logLevel)
	return &Logger{
		w:     w,
		out:   log.New(w, "", 0),
		level: level,
		color: debug,
	}
}

// Enabled сообщает, будет ли записано сообщение уровня lv
func (l *Logger) Enabled(lv Level) bool {
	return lv >= l.level
}

func (l *Logger) logf(lv Level, format string, v ...interface{}) {
	if !l.Enabled(lv) {
		return
	}

	line := fmt.Sprintf("[%s] %s %s", lv, time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, v...))
	if l.color {
		line = levelColors[lv] + line + colorReset
	}
	l.out.Print(line)
}

func (l *Logger) Debug(format string, v ...interface{}) { l.logf(LevelDebug, format, v...) }
func (l *Logger) Info(format string, v ...interface{}) { l.logf(LevelInfo, format, v...) }
func (l *Logger) Warn(format string, v ...interface{}) { l.logf(LevelWarn, format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.logf(LevelError, format, v...) }

// Fatal пишет сообщение и завершает процесс с кодом 1
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.logf(LevelFatal, format, v...)
	l.Close()
	os.Exit(1)
}

// Status печатает блок "ключ: значение" с заголовком, ключи по алфавиту
func (l *Logger) Status(title string, stats map[string]string) {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintln(&b, strings.Repeat("─", 50))
	fmt.Fprintf(&b, "📊 %s\n", title)
	for _, k := range keys {
		fmt.Fprintf(&b, "   %-20s: %s\n", k, stats[k])
	}
	fmt.Fprintln(&b, strings.Repeat("─", 50))

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, b.String())
}

// ScanSummary пишет однострочную сводку по завершенному скану
func (l *Logger) ScanSummary(scanID string, symbols, failures, excluded int, elapsed time.Duration) {
	icon := "✅"
	if failures > 0 {
		icon = "⚠️"
	}

	l.Info("%s Скан %s: символов %d, ошибок загрузки %d, исключено %d, за %v",
		icon, scanID, symbols, failures, excluded, elapsed.Round(time.Millisecond))
}

// Close закрывает файл лога, если он открыт
func (l *Logger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
}
