package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// CustomFormatter adds caller, pid and goroutine id to the JSON entry.
type CustomFormatter struct {
	logrus.JSONFormatter
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if _, ok := entry.Data["file"]; !ok {
		if entry.HasCaller() {
			entry.Data["file"] = filepath.Base(entry.Caller.File)
			entry.Data["line"] = entry.Caller.Line
			entry.Data["func"] = filepath.Base(entry.Caller.Function)
		}
	}

	entry.Data["pid"] = os.Getpid()
	entry.Data["goroutine_id"] = getGoroutineID()

	return f.JSONFormatter.Format(entry)
}

// Log is the global logger instance
var (
	Log  *logrus.Logger
	once sync.Once
	mu   sync.RWMutex
)

// initLogger builds the process logger. Output goes to stdout and, when
// logFilePath is set, to a rotating file as well.
func initLogger(logFilePath string, level string) *logrus.Logger {
	l := logrus.New()

	l.SetFormatter(&CustomFormatter{
		JSONFormatter: logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "@timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		},
	})

	var out io.Writer = os.Stdout
	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
			panic(fmt.Sprintf("failed to create log directory: %v", err))
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.DebugLevel
	}
	l.SetLevel(lvl)
	l.SetReportCaller(true)
	return l
}

// GetLogger returns the singleton logger instance, configured from
// LOG_FILE and LOG_LEVEL on first use.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		l := initLogger(os.Getenv("LOG_FILE"), os.Getenv("LOG_LEVEL"))
		mu.Lock()
		if Log == nil {
			Log = l
		}
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return Log
}

// SetLogger replaces the global logger, e.g. with a test hook logger.
func SetLogger(l *logrus.Logger) {
	once.Do(func() {})
	mu.Lock()
	Log = l
	mu.Unlock()
}

// getGoroutineID parses the id out of the stack header
func getGoroutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	var id uint64
	fmt.Sscanf(string(b), "goroutine %d", &id)
	return id
}
