// Package clip wraps the system clipboard behind a small interface so talents
// can be exercised with an in-memory board.
package clip

import (
	"sync"

	"github.com/atotto/clipboard"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

// Board reads and writes clipboard text.
type Board interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// System is the OS clipboard.
type System struct{}

func (System) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (System) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Detect reports whether the OS clipboard can be used on this machine.
func Detect() talent.Capability {
	if clipboard.Unsupported {
		return talent.Missing("Clipboard access", "Install xclip, xsel or wl-clipboard and restart.")
	}
	return talent.Available("Clipboard access")
}

// Memory is an in-process board.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory returns a board holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}
