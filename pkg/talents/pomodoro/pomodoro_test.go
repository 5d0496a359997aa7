package pomodoro

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

type clockStub struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clockStub) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clockStub) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTalent(t *testing.T) (*Talent, *clockStub) {
	t.Helper()
	c := &clockStub{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	tl := New(nil)
	tl.now = c.Now
	t.Cleanup(tl.Stop)
	return tl, c
}

func run(tl *Talent, text string) talent.Result {
	return tl.Execute(context.Background(), talent.NewCommand(text))
}

func TestWorkSessionLifecycle(t *testing.T) {
	tl, c := newTalent(t)

	res := run(tl, "pomodoro status")
	assert.Equal(t, "No active session. 0 session(s) completed today.", res.Response)

	res = run(tl, "start pomodoro")
	require.True(t, res.Success)
	assert.Equal(t, "Pomodoro #1 started! Focus for 25 minutes.", res.Response)
	assert.Equal(t, []talent.Action{{Action: "pomodoro"}}, res.Actions)

	c.Advance(90 * time.Second)
	res = run(tl, "how much time is left")
	assert.Equal(t, "Focused work in progress — 23m 30s remaining.\nSessions completed: 1", res.Response)

	res = run(tl, "start a focus session")
	assert.Equal(t, "Already in a work session! 23m 30s remaining.", res.Response)

	res = run(tl, "stop pomodoro")
	assert.Equal(t, "Work session stopped. Completed 1 session(s) total.", res.Response)
	state, sessions := tl.State()
	assert.Equal(t, Idle, state)
	assert.Equal(t, 1, sessions)

	res = run(tl, "stop pomodoro")
	assert.Equal(t, "No active pomodoro session.", res.Response)
}

func TestBreaks(t *testing.T) {
	tl, _ := newTalent(t)
	require.NoError(t, tl.Initialize(schema.Resolve(map[string]any{"sessions_before_long_break": 2})))

	res := run(tl, "take a break")
	assert.Equal(t, "Short break started! Relax for 5 minutes.", res.Response)
	res = run(tl, "take a break")
	assert.Equal(t, "Already on a break! 5m 0s remaining.", res.Response)
	res = run(tl, "stop timer")
	assert.Equal(t, "Break stopped.", res.Response)

	run(tl, "start pomodoro")
	run(tl, "stop pomodoro")
	run(tl, "start pomodoro")
	res = run(tl, "take a break")
	assert.Equal(t, "Long break started! Relax for 15 minutes.", res.Response)
	state, _ := tl.State()
	assert.Equal(t, LongBreak, state)
}

func TestCompletionNotifies(t *testing.T) {
	tl, _ := newTalent(t)
	tl.minute = time.Millisecond

	var mu sync.Mutex
	var got []string
	cmd := talent.Command{Text: "start pomodoro", Env: talent.Env{Notify: func(title, _ string) {
		mu.Lock()
		got = append(got, title)
		mu.Unlock()
	}}}
	res := tl.Execute(context.Background(), cmd)
	require.True(t, res.Success)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == "Pomodoro Complete!"
	}, time.Second, 5*time.Millisecond)

	state, sessions := tl.State()
	assert.Equal(t, Idle, state)
	assert.Equal(t, 1, sessions)
}

func TestStopIsIdempotent(t *testing.T) {
	tl, _ := newTalent(t)
	run(tl, "start pomodoro")
	tl.Stop()
	tl.Stop()
	state, _ := tl.State()
	assert.Equal(t, Idle, state)
	assert.False(t, tl.timer.Active())
}

func TestCanHandle(t *testing.T) {
	tl, _ := newTalent(t)
	assert.True(t, tl.CanHandle("start a focus session"))
	assert.True(t, tl.CanHandle("take a break"))
	assert.False(t, tl.CanHandle("add task focus on report"))
	assert.False(t, tl.CanHandle("set an alarm for pomodoro"))
}
