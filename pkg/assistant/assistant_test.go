package assistant

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talon-assistant/talent-catalog/pkg/clip"
	"github.com/talon-assistant/talent-catalog/pkg/config"
	"github.com/talon-assistant/talent-catalog/pkg/connect"
	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

type fakeTalent struct {
	talent.Base

	mu      sync.Mutex
	configs []talent.Config
	stops   int
}

func newFake(name string, priority int, keywords ...string) *fakeTalent {
	return &fakeTalent{Base: talent.NewBase(talent.Info{Name: name, Keywords: keywords, Priority: priority})}
}

func (f *fakeTalent) ConfigSchema() talent.Schema {
	return talent.Schema{Fields: []talent.Field{
		talent.Password("token", "Token"),
		talent.Int("limit", "Limit", 10, 1, 50),
	}}
}

func (f *fakeTalent) Execute(_ context.Context, cmd talent.Command) talent.Result {
	return talent.OK(f.Info().Name+" got "+cmd.Text, talent.Action{Action: f.Info().Name})
}

func (f *fakeTalent) Initialize(cfg talent.Config) error   { return f.record(cfg) }
func (f *fakeTalent) UpdateConfig(cfg talent.Config) error { return f.record(cfg) }

func (f *fakeTalent) record(cfg talent.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, cfg)
	return nil
}

func (f *fakeTalent) last() talent.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configs[len(f.configs)-1]
}

func (f *fakeTalent) Stop() { f.stops++ }

type fakeLLM struct {
	reply  string
	err    error
	prompt string
}

func (l *fakeLLM) Generate(_ context.Context, prompt, _ string, _ float64) (string, error) {
	l.prompt = prompt
	return l.reply, l.err
}

type mapSecrets map[string]string

func (m mapSecrets) Lookup(key string) string { return m[key] }

func quiet() *log.Logger { return log.New(io.Discard) }

func build(opts Options) *Assistant {
	if opts.Logger == nil {
		opts.Logger = quiet()
	}
	if opts.Board == nil {
		opts.Board = clip.NewMemory("")
	}
	if opts.Channels == nil {
		opts.Channels = []connect.Channel{}
	}
	return New(opts)
}

func TestHandleRoutesToTalent(t *testing.T) {
	alpha := newFake("alpha", 40, "alpha")
	beta := newFake("beta", 50, "beta")
	a := build(Options{Talents: []talent.Talent{alpha, beta}})

	r := a.Handle(context.Background(), "  alpha and beta  ")
	assert.Equal(t, "beta", r.Talent)
	assert.Equal(t, "beta got alpha and beta", r.Text)
	assert.True(t, r.Success)
	assert.Equal(t, []talent.Action{{Action: "beta"}}, r.Actions)
	_, err := uuid.Parse(r.ID)
	assert.NoError(t, err)

	assert.NotEqual(t, r.ID, a.Handle(context.Background(), "alpha").ID)
}

func TestHandleFallback(t *testing.T) {
	talents := []talent.Talent{newFake("alpha", 40, "alpha")}

	r := build(Options{Talents: talents}).Handle(context.Background(), "what is the meaning of life")
	assert.Equal(t, Reply{ID: r.ID, Text: NoTalentReply}, r)

	gen := &fakeLLM{reply: " 42. \n"}
	r = build(Options{Talents: talents, LLM: gen}).Handle(context.Background(), "what is the meaning of life")
	assert.True(t, r.Success)
	assert.Empty(t, r.Talent)
	assert.Equal(t, "42.", r.Text)
	assert.Equal(t, "what is the meaning of life", gen.prompt)

	r = build(Options{Talents: talents, LLM: &fakeLLM{err: errors.New("refused")}}).Handle(context.Background(), "hi")
	assert.False(t, r.Success)
	assert.Equal(t, LLMErrorReply, r.Text)

	r = build(Options{Talents: talents}).Handle(context.Background(), "   ")
	assert.Equal(t, EmptyReply, r.Text)
}

func TestConfigResolution(t *testing.T) {
	alpha := newFake("alpha", 40, "alpha")
	beta := newFake("beta", 40, "beta")
	s := &config.Settings{Talents: map[string]map[string]any{
		"alpha": {"limit": 500},
		"beta":  {"token": "from-file", "limit": "7"},
	}}
	secrets := mapSecrets{
		SecretKey("alpha", "token"): "from-vault",
		SecretKey("beta", "token"):  "ignored",
	}
	a := build(Options{Talents: []talent.Talent{alpha, beta}, Settings: s, Secrets: secrets})

	assert.Equal(t, "from-vault", alpha.last().String("token"))
	assert.Equal(t, 50, alpha.last().Int("limit"))
	assert.Equal(t, "from-file", beta.last().String("token"))
	assert.Equal(t, 7, beta.last().Int("limit"))

	cfg, ok := a.Config("alpha")
	require.True(t, ok)
	assert.Equal(t, "from-vault", cfg.String("token"))
	_, ok = a.Config("nope")
	assert.False(t, ok)

	// The settings map itself is never written to.
	assert.Equal(t, map[string]any{"limit": 500}, s.Talents["alpha"])
}

func TestApplySettings(t *testing.T) {
	alpha := newFake("alpha", 40, "alpha")
	a := build(Options{Talents: []talent.Talent{alpha}})
	assert.Equal(t, 10, alpha.last().Int("limit"))

	require.NoError(t, a.ApplySettings(&config.Settings{Talents: map[string]map[string]any{
		"alpha": {"limit": 3},
	}}))
	assert.Equal(t, 3, alpha.last().Int("limit"))
	cfg, _ := a.Config("alpha")
	assert.Equal(t, 3, cfg.Int("limit"))
}

func TestCloseStopsOnce(t *testing.T) {
	alpha := newFake("alpha", 40, "alpha")
	a := build(Options{Talents: []talent.Talent{alpha}})
	a.Close()
	a.Close()
	assert.Equal(t, 1, alpha.stops)
}

type fakeChannel struct {
	text  string
	reply chan connect.Response
}

func (c *fakeChannel) Name() string { return "fake" }

func (c *fakeChannel) Run(ctx context.Context, handle connect.Handler) error {
	c.reply <- handle(ctx, connect.Message{Platform: "fake", Text: c.text})
	<-ctx.Done()
	return nil
}

func TestServeRunsChannels(t *testing.T) {
	ch := &fakeChannel{text: "alpha please", reply: make(chan connect.Response, 1)}
	a := build(Options{
		Talents:  []talent.Talent{newFake("alpha", 40, "alpha")},
		Channels: []connect.Channel{ch},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	select {
	case resp := <-ch.reply:
		assert.Equal(t, "alpha", resp.Talent)
		assert.Equal(t, "alpha got alpha please", resp.Text)
		assert.True(t, resp.Success)
	case <-time.After(2 * time.Second):
		t.Fatal("channel never received a reply")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestCatalogOrder(t *testing.T) {
	s := &config.Settings{DataDir: t.TempDir()}
	talents := Catalog(s, clip.NewMemory(""), talent.Missing("Clipboard access", ""), quiet())

	var names []string
	for _, tl := range talents {
		names = append(names, tl.Info().Name)
	}
	assert.Equal(t, []string{
		"crypto", "stock", "github_talent", "docker_talent", "todo", "pomodoro",
		"code_snippet", "clipboard_history", "file_organizer", "regex_talent",
		"json_formatter", "unit_converter",
	}, names)
}

func TestCatalogRouting(t *testing.T) {
	s := &config.Settings{DataDir: t.TempDir(), Talents: map[string]map[string]any{}}
	a := build(Options{Settings: s, Talents: Catalog(s, clip.NewMemory(""), talent.Capability{}, quiet())})
	defer a.Close()

	r := a.Handle(context.Background(), "convert 100 miles to kilometers")
	assert.Equal(t, "unit_converter", r.Talent)
	assert.Equal(t, "100 miles = 160.9344 kilometers", r.Text)

	r = a.Handle(context.Background(), "add task buy milk")
	assert.Equal(t, "todo", r.Talent)
	assert.True(t, r.Success, r.Text)

	r = a.Handle(context.Background(), `validate json {"a": 1}`)
	assert.Equal(t, "json_formatter", r.Talent)
	assert.True(t, r.Success, r.Text)
}

func TestHistoryRecordsCommands(t *testing.T) {
	s := &config.Settings{DataDir: t.TempDir(), Talents: map[string]map[string]any{}}
	s.History.Limit = 5
	a := build(Options{Settings: s, Talents: []talent.Talent{newFake("weather", 10, "weather")}})
	require.NotNil(t, a.History())

	a.Handle(context.Background(), "weather today")
	a.Handle(context.Background(), "   ")
	a.Respond(context.Background(), connect.Message{Platform: "telegram", ChatID: "42", From: "@ana", Text: "sing a song"})

	got := a.History().Recent(0)
	require.Len(t, got, 2)
	assert.Equal(t, "local", got[0].Platform)
	assert.Equal(t, "weather", got[0].Talent)
	assert.True(t, got[0].Success)
	assert.Equal(t, "telegram", got[1].Platform)
	assert.Equal(t, "@ana", got[1].From)
	assert.Empty(t, got[1].Talent)
	assert.Equal(t, NoTalentReply, got[1].Reply)
	assert.False(t, got[1].At.IsZero())
}

func TestHistoryDisabled(t *testing.T) {
	a := build(Options{Settings: &config.Settings{DataDir: t.TempDir()}, Talents: []talent.Talent{}})
	assert.Nil(t, a.History())
}
