package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Retention for rotated log files, in days.
const logRetentionDays = 7

// Config captures logging configuration options.
type Config struct {
	Level    string
	Dir      string
	Filename string
}

var (
	colorReset = "\x1b[0m"
	colorTime  = "\x1b[90m"
	colorDebug = "\x1b[36m"
	colorInfo  = "\x1b[32m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"
)

// Tag colors for the console handler. Messages starting with one of these
// bracket tags are rendered in the tag's color instead of the level color.
var tagColors = map[string]string{
	"[BOOT]":   "\x1b[96m",
	"[HTTP]":   "\x1b[95m",
	"[WS]":     "\x1b[92m",
	"[AUTH]":   "\x1b[94m",
	"[STORE]":  "\x1b[36m",
	"[ITEMS]":  "\x1b[34m",
	"[EVENTS]": "\x1b[90m",
}

// consoleHandler renders colored single-line output for terminals.
type consoleHandler struct {
	writer io.Writer
	level  slog.Level
	mu     sync.Mutex
}

func (h *consoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timeStr := r.Time.Format("2006-01-02 15:04:05.000")

	var levelStr, levelColor string
	switch r.Level {
	case slog.LevelDebug:
		levelStr, levelColor = "DEBUG", colorDebug
	case slog.LevelInfo:
		levelStr, levelColor = "INFO", colorInfo
	case slog.LevelWarn:
		levelStr, levelColor = "WARN", colorWarn
	case slog.LevelError:
		levelStr, levelColor = "ERROR", colorError
	default:
		levelStr, levelColor = "INFO", colorReset
	}

	msg := r.Message
	var tagColor string
	for tag, color := range tagColors {
		if strings.HasPrefix(msg, tag) {
			tagColor = color
			break
		}
	}

	var output string
	if tagColor != "" {
		output = fmt.Sprintf("%s[%s]%s %s%s%s",
			colorTime, timeStr, colorReset,
			tagColor, msg, colorReset)
	} else {
		output = fmt.Sprintf("%s[%s]%s %s[%s]%s %s",
			colorTime, timeStr, colorReset,
			levelColor, levelStr, colorReset,
			msg)
	}

	if r.NumAttrs() > 0 {
		output += " {"
		r.Attrs(func(a slog.Attr) bool {
			output += fmt.Sprintf(" %s=%v", a.Key, a.Value)
			return true
		})
		output += " }"
	}
	output += "\n"

	_, err := h.writer.Write([]byte(output))
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	return h
}

// Logger writes every record twice: JSON lines into a dated, rotated file and
// colored text to stdout.
type Logger struct {
	config      Config
	jsonLogger  *slog.Logger
	textLogger  *slog.Logger
	logFile     *os.File
	currentDate string
	mu          sync.RWMutex
	ticker      *time.Ticker
	stopCh      chan struct{}
}

func parseLevel(configLevel string) slog.Level {
	switch strings.ToLower(configLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to cfg.Dir/cfg.Filename and stdout.
func New(cfg Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(cfg.Dir, cfg.Filename)
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := parseLevel(cfg.Level)

	jsonHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: level,
	})
	console := &consoleHandler{
		writer: os.Stdout,
		level:  level,
	}

	logger := &Logger{
		config:      cfg,
		jsonLogger:  slog.New(jsonHandler),
		textLogger:  slog.New(console),
		logFile:     file,
		currentDate: time.Now().Format("2006-01-02"),
		stopCh:      make(chan struct{}),
	}

	logger.startRotationChecker()

	return logger, nil
}

func (l *Logger) startRotationChecker() {
	l.ticker = time.NewTicker(1 * time.Minute)
	go func() {
		for {
			select {
			case <-l.ticker.C:
				l.checkAndRotate()
			case <-l.stopCh:
				return
			}
		}
	}()
}

func (l *Logger) checkAndRotate() {
	today := time.Now().Format("2006-01-02")
	if today != l.currentDate {
		l.rotateLogFile(today)
		l.cleanOldLogs()
	}
}

func (l *Logger) rotateLogFile(newDate string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		l.logFile.Close()
	}

	logDir := l.config.Dir
	currentLogPath := filepath.Join(logDir, l.config.Filename)

	baseFileName := strings.TrimSuffix(l.config.Filename, filepath.Ext(l.config.Filename))
	ext := filepath.Ext(l.config.Filename)
	archivedLogPath := filepath.Join(logDir, fmt.Sprintf("%s-%s%s", baseFileName, l.currentDate, ext))

	if _, err := os.Stat(currentLogPath); err == nil {
		if err := os.Rename(currentLogPath, archivedLogPath); err != nil {
			l.textLogger.Error("failed to archive log file", slog.String("error", err.Error()))
		}
	}

	file, err := os.OpenFile(currentLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.textLogger.Error("failed to create new log file", slog.String("error", err.Error()))
		return
	}

	l.logFile = file
	l.currentDate = newDate

	jsonHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: parseLevel(l.config.Level),
	})
	l.jsonLogger = slog.New(jsonHandler)

	l.textLogger.Info("log file rotated", slog.String("new_date", newDate))
}

func (l *Logger) cleanOldLogs() {
	logDir := l.config.Dir

	entries, err := os.ReadDir(logDir)
	if err != nil {
		l.textLogger.Error("failed to read log directory", slog.String("error", err.Error()))
		return
	}

	cutoffDate := time.Now().AddDate(0, 0, -logRetentionDays)
	baseFileName := strings.TrimSuffix(l.config.Filename, filepath.Ext(l.config.Filename))
	ext := filepath.Ext(l.config.Filename)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		if !strings.HasPrefix(fileName, baseFileName+"-") || !strings.HasSuffix(fileName, ext) {
			continue
		}

		dateStr := strings.TrimPrefix(fileName, baseFileName+"-")
		dateStr = strings.TrimSuffix(dateStr, ext)

		fileDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		if fileDate.Before(cutoffDate) {
			if err := os.Remove(filepath.Join(logDir, fileName)); err != nil {
				l.textLogger.Error("failed to remove old log file",
					slog.String("file", fileName),
					slog.String("error", err.Error()))
			}
		}
	}
}

// Close stops the rotation checker and closes the log file.
func (l *Logger) Close() error {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	close(l.stopCh)
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

func (l *Logger) log(level slog.Level, msg string, fields ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var attrs []slog.Attr
	if len(fields) > 0 && fields[0] != nil {
		if fieldsMap, ok := fields[0].(map[string]interface{}); ok {
			keys := make([]string, 0, len(fieldsMap))
			for k := range fieldsMap {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				attrs = append(attrs, slog.Any(k, fieldsMap[k]))
			}
		} else {
			attrs = append(attrs, slog.Any("fields", fields[0]))
		}
	}

	ctx := context.Background()
	l.jsonLogger.LogAttrs(ctx, level, msg, attrs...)
	l.textLogger.LogAttrs(ctx, level, msg, attrs...)
}

func containsFormatPlaceholders(s string) bool {
	return strings.Contains(s, "%")
}

func (l *Logger) emit(level slog.Level, msg string, args ...interface{}) {
	if len(args) > 0 && containsFormatPlaceholders(msg) {
		l.log(level, fmt.Sprintf(msg, args...))
	} else {
		l.log(level, msg, args...)
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.emit(slog.LevelDebug, msg, args...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.emit(slog.LevelInfo, msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.emit(slog.LevelWarn, msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.emit(slog.LevelError, msg, args...)
}

// FormatLog builds a message with a single category tag, for example
// FormatLog("BOOT", "server started") -> "[BOOT] server started". Messages
// that already start with "[" are returned untouched.
func FormatLog(tag, message string) string {
	tag = strings.TrimSpace(tag)
	message = strings.TrimSpace(message)
	if tag == "" {
		return message
	}
	if strings.HasPrefix(message, "[") {
		return message
	}
	return fmt.Sprintf("[%s] %s", tag, message)
}

func (l *Logger) logWithTag(level slog.Level, tag, msg string, args ...interface{}) {
	l.emit(level, FormatLog(tag, msg), args...)
}

func (l *Logger) DebugTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelDebug, tag, msg, args...)
}

func (l *Logger) InfoTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelInfo, tag, msg, args...)
}

func (l *Logger) WarnTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelWarn, tag, msg, args...)
}

func (l *Logger) ErrorTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelError, tag, msg, args...)
}

// Slog exposes the console logger for integrations that want slog directly.
func (l *Logger) Slog() *slog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textLogger
}
