package contact

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Record is one human-handoff contact capture. Fields are stored as
// given; format enforcement belongs to the assistant's argument
// schema, not this log.
type Record struct {
	FullName string
	Email    string
	Phone    string
}

// Log is the append-only contact record sink. Duplicates are allowed.
type Log interface {
	Append(ctx context.Context, rec Record) error
}

var header = []string{"full_name", "email", "phone"}

type Config struct {
	Path string `envconfig:"PATH" split_words:"true" default:"contact_info.csv"`
}

// CSVLog appends records to a CSV file with a fixed column schema.
// Writes are mutex-serialized; the underlying file has no concurrent
// write protection of its own.
type CSVLog struct {
	mu   sync.Mutex
	path string
}

func NewCSVLog(cfg Config) (*CSVLog, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("contact log path is required")
	}
	return &CSVLog{path: path}, nil
}

func (l *CSVLog) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	writeHeader := false
	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		writeHeader = true
	} else if err != nil {
		return fmt.Errorf("stat contact log: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open contact log: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write contact log header: %w", err)
		}
	}
	if err := w.Write([]string{rec.FullName, rec.Email, rec.Phone}); err != nil {
		return fmt.Errorf("write contact record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush contact log: %w", err)
	}
	return nil
}
