// Package pomodoro runs a focus timer with work and break cycles.
package pomodoro

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/talon-assistant/talent-catalog/pkg/monitor"
	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

// State is the timer phase.
type State string

const (
	Idle       State = "idle"
	Working    State = "working"
	ShortBreak State = "short_break"
	LongBreak  State = "long_break"
)

var labels = map[State]string{
	Working:    "Focused work",
	ShortBreak: "Short break",
	LongBreak:  "Long break",
}

var info = talent.Info{
	Name:        "pomodoro",
	Description: "Pomodoro technique timer with work/break cycles",
	Keywords: []string{
		"pomodoro", "focus", "focus session", "focus timer",
		"work timer", "take a break", "start timer",
	},
	Exclusions: []string{
		"remind", "alarm", "email", "note", "weather", "hue",
		"light", "search", "todo", "task",
	},
	Priority: 44,
}

var schema = talent.Schema{Fields: []talent.Field{
	talent.Int("work_minutes", "Work Duration (minutes)", 25, 5, 120),
	talent.Int("short_break_minutes", "Short Break (minutes)", 5, 1, 30),
	talent.Int("long_break_minutes", "Long Break (minutes)", 15, 5, 60),
	talent.Int("sessions_before_long_break", "Sessions Before Long Break", 4, 2, 10),
}}

var (
	stopPhrases   = []string{"stop pomodoro", "cancel pomodoro", "stop timer", "cancel timer", "end session", "stop focus"}
	statusPhrases = []string{"pomodoro status", "timer status", "how much time", "time left", "time remaining"}
	startWords    = []string{"start", "begin", "pomodoro", "focus"}
)

// Talent is a single pomodoro timer.
type Talent struct {
	talent.Base
	timer  *monitor.Slot
	logger *log.Logger
	now    func() time.Time
	// minute is the length of one configured minute.
	minute time.Duration

	mu        sync.Mutex
	cfg       talent.Config
	state     State
	sessions  int
	startedAt time.Time
	duration  time.Duration
	notify    func(title, message string)
}

func New(logger *log.Logger) *Talent {
	if logger == nil {
		logger = log.Default()
	}
	return &Talent{
		Base:   talent.NewBase(info),
		timer:  monitor.New("pomodoro", logger),
		logger: logger.With("talent", info.Name),
		now:    time.Now,
		minute: time.Minute,
		cfg:    schema.Defaults(),
		state:  Idle,
	}
}

func (t *Talent) ConfigSchema() talent.Schema { return schema }

func (t *Talent) Initialize(cfg talent.Config) error   { return t.UpdateConfig(cfg) }
func (t *Talent) UpdateConfig(cfg talent.Config) error {
	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()
	return nil
}

// Stop cancels any running phase without touching the session count.
func (t *Talent) Stop() {
	t.timer.Stop()
	t.mu.Lock()
	t.state = Idle
	t.mu.Unlock()
}

// State returns the current phase and completed work session count.
func (t *Talent) State() (State, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.sessions
}

func (t *Talent) Execute(_ context.Context, cmd talent.Command) talent.Result {
	text := strings.TrimSpace(strings.ToLower(cmd.Text))

	t.mu.Lock()
	defer t.mu.Unlock()
	if cmd.Env.Notify != nil {
		t.notify = cmd.Env.Notify
	}

	switch {
	case containsAny(text, stopPhrases):
		return t.stop()
	case containsAny(text, statusPhrases):
		return t.status()
	case strings.Contains(text, "take a break") || strings.Contains(text, "start break"):
		return t.startBreak()
	case containsAny(text, startWords):
		return t.startWork()
	default:
		return t.status()
	}
}

func (t *Talent) startWork() talent.Result {
	if t.state == Working {
		return ok(fmt.Sprintf("Already in a work session! %s remaining.", clock(t.remaining())))
	}
	minutes := t.cfg.Int("work_minutes")
	t.begin(Working, minutes, "Pomodoro Complete!", "Time for a break. Great work!")
	t.sessions++
	t.logger.Info("work session started", "session", t.sessions, "minutes", minutes)
	return ok(fmt.Sprintf("Pomodoro #%d started! Focus for %d minutes.", t.sessions, minutes))
}

func (t *Talent) startBreak() talent.Result {
	if t.state == ShortBreak || t.state == LongBreak {
		return ok(fmt.Sprintf("Already on a break! %s remaining.", clock(t.remaining())))
	}

	state, key := ShortBreak, "short_break_minutes"
	if every := t.cfg.Int("sessions_before_long_break"); t.sessions > 0 && every > 0 && t.sessions%every == 0 {
		state, key = LongBreak, "long_break_minutes"
	}
	minutes := t.cfg.Int(key)
	t.begin(state, minutes, "Break Over!", "Ready to start another focus session?")
	return ok(fmt.Sprintf("%s started! Relax for %d minutes.", labels[state], minutes))
}

// begin must be called with mu held.
func (t *Talent) begin(state State, minutes int, title, message string) {
	t.state = state
	t.duration = time.Duration(minutes) * t.minute
	t.startedAt = t.now()
	t.timer.After(t.duration, func(context.Context) { t.complete(state, title, message) })
}

func (t *Talent) complete(state State, title, message string) {
	t.mu.Lock()
	if t.state != state {
		t.mu.Unlock()
		return
	}
	t.state = Idle
	notify := t.notify
	sessions := t.sessions
	t.mu.Unlock()

	t.logger.Info("phase complete", "phase", state, "sessions", sessions)
	if notify != nil {
		notify(title, message)
	}
}

func (t *Talent) stop() talent.Result {
	if t.state == Idle {
		return ok("No active pomodoro session.")
	}
	prev := t.state
	t.timer.Stop()
	t.state = Idle
	if prev == Working {
		return ok(fmt.Sprintf("Work session stopped. Completed %d session(s) total.", t.sessions))
	}
	return ok("Break stopped.")
}

func (t *Talent) status() talent.Result {
	if t.state == Idle {
		return ok(fmt.Sprintf("No active session. %d session(s) completed today.", t.sessions))
	}
	return ok(fmt.Sprintf("%s in progress — %s remaining.\nSessions completed: %d",
		labels[t.state], clock(t.remaining()), t.sessions))
}

// remaining must be called with mu held. It is expressed in configured
// minutes so the clock reads the same whatever t.minute is.
func (t *Talent) remaining() int {
	elapsed := t.now().Sub(t.startedAt)
	left := t.duration - elapsed
	if left < 0 {
		left = 0
	}
	return int(left * 60 / t.minute)
}

func clock(seconds int) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

func containsAny(s string, subs []string) bool {
	for _, p := range subs {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func ok(msg string) talent.Result {
	return talent.OK(msg, talent.Action{Action: "pomodoro"})
}
