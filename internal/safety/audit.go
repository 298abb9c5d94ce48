package safety

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNilWriter is returned by AuditLogger.Log when the logger was constructed
// with a nil writer.
var ErrNilWriter = errors.New("audit logger: writer is nil")

// AuditEntry captures a single tool invocation for the audit log.
type AuditEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Tool      string         `json:"tool"`
	Params    map[string]any `json:"params"`
	Result    string         `json:"result"`
	Duration  time.Duration  `json:"duration_ns"`
}

// AuditLogger writes AuditEntry records as newline-delimited JSON to an
// io.Writer. It is safe for concurrent use.
type AuditLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewAuditLogger returns an AuditLogger that writes to w. If w is nil the
// returned logger is also nil.
func NewAuditLogger(w io.Writer) *AuditLogger {
	if w == nil {
		return nil
	}
	return &AuditLogger{w: w}
}

// OpenAuditLog opens (or creates) path in append mode and returns a logger
// writing to it together with the file, which the caller must close.
func OpenAuditLog(path string) (*AuditLogger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("audit logger: open %q: %w", path, err)
	}
	return NewAuditLogger(f), f, nil
}

// Log serialises entry as a single JSON line and writes it to the underlying
// writer. An entry without an ID is assigned a random UUID.
func (l *AuditLogger) Log(entry AuditEntry) error {
	if l == nil || l.w == nil {
		return ErrNilWriter
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	data = append(data, '\n')

	l.mu.Lock()
	_, err = l.w.Write(data)
	l.mu.Unlock()

	return err
}
