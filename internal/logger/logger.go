package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

const (
	appDir      = ".blackjack-sim"
	logFile     = "sim.log"
	maxLogBytes = 10 * 1024 * 1024
)

var (
	simLog  *os.File
	logPath string
)

// Init opens the log file under dir, or ~/.blackjack-sim when dir is empty,
// and routes the standard logger to it.
func Init(dir string) error {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, appDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath = filepath.Join(dir, logFile)
	f, err := openLog(dir)
	if err != nil {
		return err
	}
	simLog = f

	SetOutput(simLog)
	LogInfo("Logger initialized, log file: %s", logPath)
	return nil
}

// openLog opens sim.log for appending, rotating it once it passes 10MB.
func openLog(dir string) (*os.File, error) {
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if info, err := f.Stat(); err == nil && info.Size() > maxLogBytes {
		_ = f.Close()
		backupPath := filepath.Join(dir, fmt.Sprintf("%s.%d", logFile, time.Now().Unix()))
		_ = os.Rename(logPath, backupPath)
		f, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to create new log file: %w", err)
		}
	}
	return f, nil
}

// SetOutput sends log lines to w, e.g. os.Stderr for the server.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
}

// Close closes the log file
func Close() {
	if simLog != nil {
		_ = simLog.Close()
		simLog = nil
	}
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	_ = log.Output(2, fmt.Sprintf("[INFO] "+format, args...))
}

// LogWarn logs a warning
func LogWarn(format string, args ...any) {
	_ = log.Output(2, fmt.Sprintf("[WARN] "+format, args...))
}

// LogError logs an error message
func LogError(format string, args ...any) {
	_ = log.Output(2, fmt.Sprintf("[ERROR] "+format, args...))
}

// LogPanic logs a panic with stack trace
func LogPanic(r any) {
	_ = log.Output(2, fmt.Sprintf("[PANIC] %v\n%s", r, debug.Stack()))
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	return logPath
}
