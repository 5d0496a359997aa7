package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
data_dir: /tmp/talon-data
log:
  level: debug
llm:
  model: llama3
channels:
  websocket:
    addr: ":8765"
  telegram:
    allow: [ana, "12345"]
talents:
  todo:
    show_completed: true
    default_priority: high
  clipboard:
    max_entries: 20
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	s, err := Load(NewViper(path))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/talon-data", s.DataDir)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
	assert.Equal(t, "llama3", s.LLM.Model)
	assert.Equal(t, "http://localhost:11434", s.LLM.BaseURL)
	assert.Equal(t, ":8765", s.Channels.Websocket.Addr)
	assert.Equal(t, []string{"ana", "12345"}, s.Channels.Telegram.Allow)
	assert.Empty(t, s.Channels.Discord.Allow)
	assert.Equal(t, 200, s.History.Limit)
	assert.Equal(t, true, s.TalentOverrides("todo")["show_completed"])
	assert.Equal(t, "high", s.TalentOverrides("todo")["default_priority"])
	assert.Equal(t, 20, s.TalentOverrides("clipboard")["max_entries"])
	assert.Empty(t, s.TalentOverrides("crypto"))
	assert.Equal(t, "/tmp/talon-data/todo.json", s.StorePath("todo"))
}

func TestEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	t.Setenv("TALON_LOG_LEVEL", "warn")

	s, err := Load(NewViper(path))
	require.NoError(t, err)
	assert.Equal(t, "warn", s.Log.Level)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Downloads"), ExpandHome("~/Downloads"))
	assert.Equal(t, "/abs", ExpandHome("/abs"))
	assert.Equal(t, "~user", ExpandHome("~user"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "warn", "json")
	assert.Equal(t, log.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)

	assert.Equal(t, log.InfoLevel, NewLogger(&buf, "loud", "text").GetLevel())
}
