// Package assistant hosts the talent catalog: it resolves configuration,
// routes commands, falls back to the language model and serves the
// configured channels.
package assistant

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"github.com/talon-assistant/talent-catalog/pkg/clip"
	"github.com/talon-assistant/talent-catalog/pkg/config"
	"github.com/talon-assistant/talent-catalog/pkg/connect"
	"github.com/talon-assistant/talent-catalog/pkg/history"
	"github.com/talon-assistant/talent-catalog/pkg/llm"
	"github.com/talon-assistant/talent-catalog/pkg/notify"
	"github.com/talon-assistant/talent-catalog/pkg/router"
	"github.com/talon-assistant/talent-catalog/pkg/talent"
	"github.com/talon-assistant/talent-catalog/pkg/watcher"
)

const (
	fallbackSystemPrompt = "You are Talon, a concise voice and text assistant. " +
		"Answer the user directly in a few sentences."

	NoTalentReply = "I don't have a talent for that yet."
	EmptyReply    = "Say something and I'll route it to the right talent."
	LLMErrorReply = "I couldn't reach the language model. Try again in a moment."
)

// Options configures an Assistant. Zero values select the production
// collaborators derived from Settings.
type Options struct {
	Settings *config.Settings
	Secrets  connect.Secrets
	LLM      talent.Generator
	Notifier notify.Notifier

	// Board and Clipboard override the OS clipboard and its detected
	// capability.
	Board     clip.Board
	Clipboard talent.Capability

	// Talents replaces the built-in catalog.
	Talents  []talent.Talent
	Channels []connect.Channel

	// History records handled commands. When nil a log under DataDir is
	// opened if Settings.History.Limit is positive.
	History *history.Log

	// SettingsFile is watched while serving; Reload re-reads it.
	SettingsFile string
	Reload       func() (*config.Settings, error)

	Logger *log.Logger
}

// Reply is the outcome of one command.
type Reply struct {
	ID string
	// Talent is empty when no talent handled the command.
	Talent  string
	Text    string
	Success bool
	Actions []talent.Action
}

// Assistant owns the talents for the life of the process.
type Assistant struct {
	router   *router.Router
	secrets  connect.Secrets
	llm      talent.Generator
	notify   func(title, message string)
	channels []connect.Channel
	history  *history.Log
	caps     []talent.Capability
	logger   *log.Logger

	settingsFile string
	reload       func() (*config.Settings, error)

	mu       sync.RWMutex
	settings *config.Settings

	closeOnce sync.Once
}

// New builds the assistant and initializes every talent with its resolved
// configuration. A talent that fails to initialize keeps its defaults.
func New(opts Options) *Assistant {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := opts.Settings
	if s == nil {
		s = &config.Settings{Talents: map[string]map[string]any{}}
	}

	a := &Assistant{
		secrets:      opts.Secrets,
		llm:          opts.LLM,
		settings:     s,
		settingsFile: opts.SettingsFile,
		reload:       opts.Reload,
		history:      opts.History,
		logger:       logger,
	}
	if a.history == nil && s.History.Limit > 0 {
		a.history = history.Open(s.StorePath("history"), s.History.Limit, logger)
	}
	if a.llm == nil && s.LLM.Model != "" {
		a.llm = llm.NewClient(s.LLM.BaseURL, s.LLM.Model)
	}

	board, clipCap := opts.Board, opts.Clipboard
	if board == nil {
		board, clipCap = clip.System{}, clip.Detect()
	}
	a.caps = []talent.Capability{clipCap}

	a.channels = opts.Channels
	if a.channels == nil {
		a.channels = connect.FromSettings(s, opts.Secrets, logger)
	}
	a.notify = notify.Callback(a.notifier(opts.Notifier, s), logger)

	talents := opts.Talents
	if talents == nil {
		talents = Catalog(s, board, clipCap, logger)
	}
	a.router = router.New(talents, router.WithLogger(logger))

	for _, t := range talents {
		in, ok := t.(talent.Initializer)
		if !ok {
			continue
		}
		if err := in.Initialize(a.resolve(t, s)); err != nil {
			logger.Warn("talent initialization failed", "talent", t.Info().Name, "err", err)
		}
	}
	logger.Debug("assistant ready", "talents", len(talents), "channels", len(a.channels), "llm", a.llm != nil)
	return a
}

// notifier fans out to the desktop and to every channel that can push.
func (a *Assistant) notifier(explicit notify.Notifier, s *config.Settings) notify.Notifier {
	if explicit != nil {
		return explicit
	}
	var sinks []notify.Notifier
	if s.Notifications.Desktop {
		sinks = append(sinks, notify.Desktop{})
	}
	for _, ch := range a.channels {
		if n, ok := ch.(notify.Notifier); ok {
			sinks = append(sinks, n)
		}
	}
	if len(sinks) == 0 {
		return nil
	}
	return notify.Multi{Sinks: sinks, Logger: a.logger}
}

// SecretKey is the vault key holding a talent's password field.
func SecretKey(talentName, field string) string {
	return "talents." + talentName + "." + field
}

func (a *Assistant) resolve(t talent.Talent, s *config.Settings) talent.Config {
	name := t.Info().Name
	schema := t.ConfigSchema()
	overrides := maps.Clone(s.TalentOverrides(name))
	for _, f := range schema.Fields {
		if f.Type != talent.TypePassword || cast.ToString(overrides[f.Key]) != "" || a.secrets == nil {
			continue
		}
		if v := a.secrets.Lookup(SecretKey(name, f.Key)); v != "" {
			overrides[f.Key] = v
		}
	}
	return schema.Resolve(overrides)
}

// Config returns the resolved configuration of the named talent.
func (a *Assistant) Config(name string) (talent.Config, bool) {
	t, ok := a.router.Lookup(name)
	if !ok {
		return nil, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.resolve(t, a.settings), true
}

// History returns the command log, or nil when it is disabled.
func (a *Assistant) History() *history.Log { return a.history }

// Talents returns the catalog in registration order.
func (a *Assistant) Talents() []talent.Talent { return a.router.Talents() }

// Capabilities returns the optional system dependencies detected at startup.
func (a *Assistant) Capabilities() []talent.Capability {
	return append([]talent.Capability(nil), a.caps...)
}

// Handle routes text to a talent. Unmatched commands go to the language
// model when one is configured.
func (a *Assistant) Handle(ctx context.Context, text string) Reply {
	return a.handle(ctx, connect.Message{Platform: "local", Text: text})
}

func (a *Assistant) handle(ctx context.Context, msg connect.Message) Reply {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return Reply{ID: uuid.NewString(), Text: EmptyReply}
	}
	r := a.route(ctx, text)
	if a.history != nil {
		a.history.Add(history.Entry{
			ID:       r.ID,
			Platform: msg.Platform,
			ChatID:   msg.ChatID,
			From:     msg.From,
			Text:     text,
			Talent:   r.Talent,
			Reply:    r.Text,
			Success:  r.Success,
			At:       time.Now(),
		})
	}
	return r
}

func (a *Assistant) route(ctx context.Context, text string) Reply {
	id := uuid.NewString()
	logger := a.logger.With("request", id)

	cmd := talent.Command{Text: text, Env: talent.Env{Notify: a.notify, LLM: a.llm}}
	t, res, err := a.router.Dispatch(ctx, cmd)
	if errors.Is(err, router.ErrNoMatch) {
		return a.fallback(ctx, id, text, logger)
	}
	name := t.Info().Name

	logger.Info("command handled", "talent", name, "success", res.Success)
	return Reply{ID: id, Talent: name, Text: res.Response, Success: res.Success, Actions: res.Actions}
}

func (a *Assistant) fallback(ctx context.Context, id, text string, logger *log.Logger) Reply {
	if a.llm == nil {
		logger.Info("no talent matched")
		return Reply{ID: id, Text: NoTalentReply}
	}
	out, err := a.llm.Generate(ctx, text, fallbackSystemPrompt, 0.7)
	if err != nil {
		logger.Warn("language model fallback failed", "err", err)
		return Reply{ID: id, Text: LLMErrorReply}
	}
	logger.Info("answered by language model")
	return Reply{ID: id, Text: strings.TrimSpace(out), Success: true}
}

// Respond adapts Handle to connect.Handler.
func (a *Assistant) Respond(ctx context.Context, msg connect.Message) connect.Response {
	a.logger.Debug("channel message", "platform", msg.Platform, "from", msg.From)
	r := a.handle(ctx, msg)
	return connect.Response{ID: r.ID, Talent: r.Talent, Text: r.Text, Success: r.Success}
}

// ApplySettings swaps in new settings and pushes every talent's resolved
// configuration through UpdateConfig. All talents are updated even when one
// fails; the first failure is returned.
func (a *Assistant) ApplySettings(s *config.Settings) error {
	a.mu.Lock()
	a.settings = s
	a.mu.Unlock()

	var first error
	for _, t := range a.router.Talents() {
		u, ok := t.(talent.ConfigUpdater)
		if !ok {
			continue
		}
		if err := u.UpdateConfig(a.resolve(t, s)); err != nil {
			a.logger.Warn("config update failed", "talent", t.Info().Name, "err", err)
			if first == nil {
				first = errors.Wrapf(err, "update %s", t.Info().Name)
			}
		}
	}
	return first
}

func (a *Assistant) reloadSettings() {
	s, err := a.reload()
	if err != nil {
		a.logger.Error("settings reload failed", "err", err)
		return
	}
	if err := a.ApplySettings(s); err == nil {
		a.logger.Info("settings reloaded")
	}
}

// Serve runs every channel and the settings watcher until ctx is done. A
// channel that fails is logged and the others keep running.
func (a *Assistant) Serve(ctx context.Context) error {
	if a.settingsFile != "" && a.reload != nil {
		w, err := watcher.New(func(string) { a.reloadSettings() }, 0, a.logger)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := w.Start(ctx, a.settingsFile); err != nil {
			return err
		}
	}

	if len(a.channels) == 0 {
		a.logger.Warn("no channels configured")
	}
	var g errgroup.Group
	for _, ch := range a.channels {
		g.Go(func() error {
			a.logger.Info("channel starting", "channel", ch.Name())
			if err := ch.Run(ctx, a.Respond); err != nil {
				a.logger.Error("channel stopped", "channel", ch.Name(), "err", err)
			}
			return nil
		})
	}
	<-ctx.Done()
	return g.Wait()
}

// Close stops background work owned by talents. It is safe to call twice.
func (a *Assistant) Close() {
	a.closeOnce.Do(func() {
		for _, t := range a.router.Talents() {
			if s, ok := t.(talent.Stopper); ok {
				s.Stop()
			}
		}
	})
}
