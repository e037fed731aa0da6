package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sjsage522/newsworker/logger"
)

// ErrorJournal records work item failures for operators
type ErrorJournal interface {
	LogError(itemID string, err error)
}

// ErrorLog appends failures to a plain text file
type ErrorLog struct {
	mu        sync.Mutex
	errorFile string
}

// NewErrorLog creates a new error log writing to errorFile
func NewErrorLog(errorFile string) *ErrorLog {
	return &ErrorLog{
		errorFile: errorFile,
	}
}

// LogError logs an error to a file with the work item id and timestamp
func (l *ErrorLog) LogError(itemID string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.errorFile); dir != "" {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			logger.LogError("journal", mkErr, "Failed to create error log directory %s", dir)
			return
		}
	}

	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		logger.LogError("journal", fileErr, "Failed to open error log %s", l.errorFile)
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, itemID, err.Error())
}
