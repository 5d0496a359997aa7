// Package history keeps a bounded, persisted log of handled commands.
package history

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/talon-assistant/talent-catalog/pkg/store"
)

// Entry is one command and the reply it got.
type Entry struct {
	ID       string    `json:"id"`
	Platform string    `json:"platform"`
	ChatID   string    `json:"chat_id,omitempty"`
	From     string    `json:"from,omitempty"`
	Text     string    `json:"text"`
	Talent   string    `json:"talent,omitempty"`
	Reply    string    `json:"reply"`
	Success  bool      `json:"success"`
	At       time.Time `json:"at"`
}

// Log is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries *store.JSON[Entry]
	limit   int
}

// Open loads the log at path, keeping at most limit entries.
func Open(path string, limit int, logger *log.Logger) *Log {
	l := &Log{entries: store.Open[Entry](path, logger), limit: max(limit, 1)}
	l.trim()
	return l
}

// Add appends e, dropping the oldest entries past the limit. The file is
// written once.
func (l *Log) Add(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries.Len() < l.limit {
		l.entries.Append(e)
		return
	}
	items := append(l.entries.Items(), e)
	l.entries.Replace(items[len(items)-l.limit:])
}

func (l *Log) trim() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trimLocked()
}

func (l *Log) trimLocked() {
	if items := l.entries.Items(); len(items) > l.limit {
		l.entries.Replace(items[len(items)-l.limit:])
	}
}

// Recent returns up to n entries, oldest first. n <= 0 returns all.
func (l *Log) Recent(n int) []Entry {
	items := l.entries.Items()
	if n > 0 && len(items) > n {
		items = items[len(items)-n:]
	}
	return items
}

// Search returns entries whose command or reply contains query, oldest first.
func (l *Log) Search(query string) []Entry {
	q := strings.ToLower(query)
	var out []Entry
	for _, e := range l.entries.Items() {
		if strings.Contains(strings.ToLower(e.Text), q) || strings.Contains(strings.ToLower(e.Reply), q) {
			out = append(out, e)
		}
	}
	return out
}

// Clear removes every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries.Replace(nil)
}

func (l *Log) Len() int { return l.entries.Len() }
