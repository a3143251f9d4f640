// Package file implements the ledger interface on an append-only CSV file. One line per entry, no header row.
package file

import (
	"fmt"
	"os"
	"sync"

	"github.com/LianD-09/discord-faucet-bot/lib/ledger"
)

// File appends ledger entries to a single file. The mutex keeps concurrent appends from interleaving: every entry
// reaches the file as exactly one write.
type File struct {
	mu sync.Mutex
	f  *os.File
}

// New opens (or creates) the ledger file at path for appending.
func New(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger file %s: %w", path, err)
	}

	return &File{f: f}, nil
}

// CloseFile closes the underlying file. Must be called at termination time.
func (l *File) CloseFile() error {
	return l.f.Close()
}

// Append writes one entry as a single line and syncs so a completed disbursement survives a crash.
func (l *File) Append(e ledger.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.f.WriteString(e.Line()); err != nil {
		return fmt.Errorf("cannot append ledger entry: %w", err)
	}

	return l.f.Sync()
}
