// Package clipboard keeps a rolling history of clipboard contents and copies
// old entries back on request.
package clipboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/talon-assistant/talent-catalog/pkg/clip"
	"github.com/talon-assistant/talent-catalog/pkg/monitor"
	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

const (
	showLimit      = 15
	previewRunes   = 60
	copiedPreview  = 80
	searchShowLast = 10

	minEntries         = 10
	maxEntries         = 500
	minIntervalSeconds = 0.5
	maxIntervalSeconds = 10.0
)

var info = talent.Info{
	Name:        "clipboard_history",
	Description: "Track clipboard history and paste from previous entries",
	Keywords: []string{
		"clipboard", "clipboard history", "paste history", "copy history",
		"last copied", "previous copy", "clear clipboard",
		"search clipboard", "show clipboard",
	},
	Exclusions: []string{
		"remind", "timer", "email", "note", "weather", "hue",
		"light", "search", "news", "todo", "task", "pomodoro",
		"organize", "file",
	},
	Priority: 43,
}

var schema = talent.Schema{Fields: []talent.Field{
	talent.Int("max_entries", "Max History Entries", 50, minEntries, maxEntries),
	talent.Bool("auto_monitor", "Auto-Monitor Clipboard", true),
	talent.Float("monitor_interval", "Monitor Interval (seconds)", 1.0, minIntervalSeconds, maxIntervalSeconds, 0.5),
}}

// Entry is one remembered clipboard value, newest first in History.
type Entry struct {
	Text string
	At   time.Time
}

// Talent tracks clipboard history.
type Talent struct {
	talent.Base
	board     clip.Board
	available talent.Capability
	monitor   *monitor.Slot
	logger    *log.Logger
	now       func() time.Time

	mu          sync.Mutex
	history     []Entry
	last        string
	maxEntries  int
	autoMonitor bool
	interval    time.Duration
}

// New returns a talent reading board. available is the startup result of
// clipboard detection.
func New(board clip.Board, available talent.Capability, logger *log.Logger) *Talent {
	if logger == nil {
		logger = log.Default()
	}
	t := &Talent{
		Base:      talent.NewBase(info),
		board:     board,
		available: available,
		monitor:   monitor.New("clipboard", logger),
		logger:    logger.With("talent", info.Name),
		now:       time.Now,
	}
	t.setConfig(schema.Defaults())
	return t
}

func (t *Talent) ConfigSchema() talent.Schema { return schema }

// Initialize applies cfg and starts polling when auto_monitor is set.
func (t *Talent) Initialize(cfg talent.Config) error {
	t.setConfig(cfg)
	t.syncMonitor(false)
	return nil
}

// UpdateConfig applies cfg and starts, restarts or stops polling to match.
func (t *Talent) UpdateConfig(cfg talent.Config) error {
	changed := t.setConfig(cfg)
	t.syncMonitor(changed)
	return nil
}

// Stop ends background polling.
func (t *Talent) Stop() { t.monitor.Stop() }

// Monitoring reports whether background polling is running.
func (t *Talent) Monitoring() bool { return t.monitor.Active() }

// setConfig stores cfg and reports whether the poll interval changed.
func (t *Talent) setConfig(cfg talent.Config) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	secs := min(max(cfg.Float("monitor_interval"), minIntervalSeconds), maxIntervalSeconds)
	interval := time.Duration(secs * float64(time.Second))
	changed := interval != t.interval
	t.maxEntries = min(max(cfg.Int("max_entries"), minEntries), maxEntries)
	t.autoMonitor = cfg.Bool("auto_monitor")
	t.interval = interval
	t.trim()
	return changed
}

func (t *Talent) syncMonitor(restart bool) {
	t.mu.Lock()
	auto, interval := t.autoMonitor, t.interval
	t.mu.Unlock()

	if !auto || !t.available.Available {
		t.monitor.Stop()
		return
	}
	if restart || !t.monitor.Active() {
		t.monitor.Every(interval, func(context.Context) { t.check() })
	}
}

// check records the current clipboard value if it changed.
func (t *Talent) check() {
	if !t.available.Available {
		return
	}
	content, err := t.board.ReadAll()
	if err != nil {
		t.logger.Debug("clipboard read failed", "err", err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if content == "" || content == t.last {
		return
	}
	t.last = content
	t.history = append([]Entry{{Text: content, At: t.now()}}, t.history...)
	t.trim()
}

// trim must be called with mu held.
func (t *Talent) trim() {
	if t.maxEntries > 0 && len(t.history) > t.maxEntries {
		t.history = t.history[:t.maxEntries]
	}
}

// History returns a snapshot, newest first.
func (t *Talent) History() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.history...)
}

func (t *Talent) Execute(_ context.Context, cmd talent.Command) talent.Result {
	if err := t.available.Err(); err != nil {
		return talent.FailErr(err)
	}
	in := parse(cmd.Text)
	switch in.kind {
	case intentClear:
		return t.clear()
	case intentSearch:
		return t.search(in.query)
	case intentPaste:
		return t.paste(in.index)
	default:
		return t.show()
	}
}

func (t *Talent) show() talent.Result {
	t.check()
	history := t.History()
	action := talent.Action{Action: "clipboard_show", Count: len(history)}
	if len(history) == 0 {
		return talent.OK("Clipboard history is empty.", action)
	}

	lines := []string{fmt.Sprintf("Clipboard History (%d entries):\n", len(history))}
	for i, e := range history {
		if i >= showLimit {
			break
		}
		lines = append(lines, fmt.Sprintf("  %d. %s  (%s)", i+1, preview(e.Text, previewRunes), e.At.Format("15:04:05")))
	}
	if len(history) > showLimit {
		lines = append(lines, fmt.Sprintf("\n  ...and %d older entries", len(history)-showLimit))
	}
	lines = append(lines, "\nSay 'paste item N' to copy an entry back to clipboard.")
	return talent.OK(strings.Join(lines, "\n"), action)
}

func (t *Talent) paste(index int) talent.Result {
	t.check()
	history := t.History()
	if index < 0 || index >= len(history) {
		return talent.FailErr(talent.NotFound(fmt.Sprintf("No clipboard entry at position %d.", index+1)))
	}
	text := history[index].Text
	if err := t.board.WriteAll(text); err != nil {
		return talent.Failf("Failed to copy to clipboard: %v", err)
	}
	// Do not record our own write as a new entry.
	t.mu.Lock()
	t.last = text
	t.mu.Unlock()

	return talent.OK("Copied to clipboard: "+preview(text, copiedPreview), talent.Action{Action: "clipboard_paste", Count: index + 1})
}

func (t *Talent) search(query string) talent.Result {
	if query == "" {
		return talent.Fail("What should I search for in clipboard history?")
	}
	q := strings.ToLower(query)
	var lines []string
	matches := 0
	for i, e := range t.History() {
		if !strings.Contains(strings.ToLower(e.Text), q) {
			continue
		}
		matches++
		if matches <= searchShowLast {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, preview(e.Text, previewRunes)))
		}
	}

	action := talent.Action{Action: "clipboard_search", Text: query, Count: matches}
	if matches == 0 {
		return talent.OK(fmt.Sprintf("No clipboard entries matching %q.", query), action)
	}
	header := fmt.Sprintf("Found %d match(es) for %q:\n", matches, query)
	return talent.OK(header+"\n"+strings.Join(lines, "\n"), action)
}

func (t *Talent) clear() talent.Result {
	t.mu.Lock()
	count := len(t.history)
	t.history = nil
	t.mu.Unlock()
	return talent.OK(fmt.Sprintf("Cleared %d clipboard entries.", count), talent.Action{Action: "clipboard_clear", Count: count})
}

// preview flattens newlines and cuts text to n runes with an ellipsis.
func preview(text string, n int) string {
	r := []rune(text)
	cut := len(r) > n
	if cut {
		r = r[:n]
	}
	p := strings.ReplaceAll(string(r), "\n", " ")
	if cut {
		p += "..."
	}
	return p
}
