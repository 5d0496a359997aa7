// Package docker lists and controls local containers and images.
package docker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

var info = talent.Info{
	Name:        "docker_talent",
	Description: "List, start, stop, and inspect Docker containers and images",
	Keywords: []string{
		"docker", "container", "containers", "image", "images",
		"docker logs", "docker start", "docker stop", "docker restart",
	},
	Exclusions: []string{
		"remind", "timer", "email", "note", "weather", "hue",
		"light", "search", "news", "todo", "task", "pomodoro",
		"github", "repo", "pull request",
	},
	Priority: 47,
}

var schema = talent.Schema{Fields: []talent.Field{
	talent.String("docker_host", "Docker Host (leave empty for default)", ""),
	talent.Int("log_lines", "Log Lines to Show", 30, 5, 200),
}}

const (
	maxLogChars   = 3000
	maxImageLines = 20
	maxMountLines = 3
)

var secretMarkers = []string{"KEY", "SECRET", "PASSWORD", "TOKEN"}

// Talent manages containers through an Engine that is connected lazily and
// dropped whenever the settings change.
type Talent struct {
	talent.Base
	connect Connector
	logger  *log.Logger

	mu       sync.Mutex
	host     string
	logLines int
	engine   Engine
}

func New(connect Connector, logger *log.Logger) *Talent {
	if connect == nil {
		connect = Connect
	}
	if logger == nil {
		logger = log.Default()
	}
	t := &Talent{Base: talent.NewBase(info), connect: connect, logger: logger.With("talent", info.Name)}
	t.apply(schema.Defaults())
	return t
}

func (t *Talent) ConfigSchema() talent.Schema { return schema }

func (t *Talent) Initialize(cfg talent.Config) error   { t.apply(cfg); return nil }
func (t *Talent) UpdateConfig(cfg talent.Config) error { t.apply(cfg); return nil }

func (t *Talent) apply(cfg talent.Config) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.host = strings.TrimSpace(cfg.String("docker_host"))
	t.logLines = cfg.Int("log_lines")
	t.closeEngine()
}

// Stop releases the daemon connection.
func (t *Talent) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeEngine()
}

func (t *Talent) closeEngine() {
	if t.engine == nil {
		return
	}
	if err := t.engine.Close(); err != nil {
		t.logger.Debug("closing docker client", "err", err)
	}
	t.engine = nil
}

func (t *Talent) session(ctx context.Context) (Engine, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.engine == nil {
		e, err := t.connect(ctx, t.host)
		if err != nil {
			t.logger.Warn("docker connection failed", "host", t.host, "err", err)
			return nil, 0, talent.NewError(talent.KindUnavailable, "Cannot connect to Docker. Is Docker running?", err)
		}
		t.engine = e
	}
	return t.engine, t.logLines, nil
}

func (t *Talent) Execute(ctx context.Context, cmd talent.Command) talent.Result {
	engine, logLines, err := t.session(ctx)
	if err != nil {
		return talent.FailErr(err)
	}

	req := parse(strings.ToLower(strings.TrimSpace(cmd.Text)))
	var msg string
	switch req.kind {
	case intentLogs:
		if req.container == "" {
			return talent.FailErr(talent.InvalidInput("Which container? e.g., 'docker logs for myapp'"))
		}
		msg, err = logs(ctx, engine, req.container, logLines)
	case intentStart:
		msg, err = start(ctx, engine, req.container)
	case intentStop:
		msg, err = stop(ctx, engine, req.container)
	case intentRestart:
		if err = engine.Restart(ctx, req.container); err == nil {
			msg = fmt.Sprintf("Restarted container '%s'.", req.container)
		}
	case intentInspect:
		msg, err = inspect(ctx, engine, req.container)
	case intentImages:
		msg, err = images(ctx, engine)
	default:
		msg, err = containers(ctx, engine)
	}
	if err != nil {
		return talent.FailErr(classify(err, req.container))
	}
	return talent.OK(msg, talent.Action{Action: "docker", Target: req.container})
}

func classify(err error, name string) error {
	if errors.Is(err, ErrNoSuchContainer) {
		return talent.NewError(talent.KindNotFound, fmt.Sprintf("Container '%s' not found.", name), err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return talent.Remote("Docker API error: "+errors.Cause(err).Error(), err)
}

func containers(ctx context.Context, e Engine) (string, error) {
	list, err := e.Containers(ctx)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "No Docker containers found.", nil
	}

	lines := []string{"Docker Containers:\n"}
	for _, c := range list {
		icon := "\U0001f7e1"
		switch c.State {
		case "running":
			icon = "\U0001f7e2"
		case "exited":
			icon = "\U0001f534"
		}
		lines = append(lines, fmt.Sprintf("  %s %s (%s) — %s", icon, c.Name, c.Image, c.State))
	}
	return strings.Join(lines, "\n"), nil
}

func start(ctx context.Context, e Engine, name string) (string, error) {
	d, err := e.Inspect(ctx, name)
	if err != nil {
		return "", err
	}
	if d.Status == "running" {
		return fmt.Sprintf("Container '%s' is already running.", name), nil
	}
	if err := e.Start(ctx, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Started container '%s'.", name), nil
}

func stop(ctx context.Context, e Engine, name string) (string, error) {
	d, err := e.Inspect(ctx, name)
	if err != nil {
		return "", err
	}
	if d.Status != "running" {
		return fmt.Sprintf("Container '%s' is not running (status: %s).", name, d.Status), nil
	}
	if err := e.Stop(ctx, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Stopped container '%s'.", name), nil
}

func logs(ctx context.Context, e Engine, name string, tail int) (string, error) {
	out, err := e.Logs(ctx, name, tail)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return fmt.Sprintf("No logs for container '%s'.", name), nil
	}
	if r := []rune(out); len(r) > maxLogChars {
		out = "...(truncated)\n" + string(r[len(r)-maxLogChars:])
	}
	return fmt.Sprintf("Logs for '%s' (last %d lines):\n\n%s", name, tail, out), nil
}

func inspect(ctx context.Context, e Engine, name string) (string, error) {
	d, err := e.Inspect(ctx, name)
	if err != nil {
		return "", err
	}

	started := orNA(d.StartedAt)
	if len(started) > 19 {
		started = started[:19]
	}
	lines := []string{
		fmt.Sprintf("Container: %s\n", name),
		"  Image: " + orNA(d.Image),
		"  Status: " + orNA(d.Status),
		"  Started: " + started,
	}
	if len(d.Ports) > 0 {
		lines = append(lines, "  Ports: "+strings.Join(d.Ports, ", "))
	}

	// Only the count is shown; values may hold credentials.
	hidden := 0
	for _, kv := range d.Env {
		upper := strings.ToUpper(kv)
		for _, s := range secretMarkers {
			if strings.Contains(upper, s) {
				hidden++
				break
			}
		}
	}
	if len(d.Env) > hidden {
		lines = append(lines, fmt.Sprintf("  Env vars: %d (%d hidden)", len(d.Env), hidden))
	}

	if len(d.Mounts) > 0 {
		lines = append(lines, fmt.Sprintf("  Volumes: %d", len(d.Mounts)))
		for i, m := range d.Mounts {
			if i == maxMountLines {
				break
			}
			lines = append(lines, fmt.Sprintf("    %s -> %s", orUnknown(m.Source), orUnknown(m.Destination)))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func images(ctx context.Context, e Engine) (string, error) {
	list, err := e.Images(ctx)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "No Docker images found.", nil
	}

	lines := []string{"Docker Images:\n"}
	for i, img := range list {
		if i == maxImageLines {
			lines = append(lines, fmt.Sprintf("\n  ...and %d more", len(list)-maxImageLines))
			break
		}
		name := strings.Join(img.Tags, ", ")
		if name == "" {
			name = shortID(img.ID)
		}
		lines = append(lines, fmt.Sprintf("  \U0001f4e6 %s (%.0f MB)", name, float64(img.Size)/(1024*1024)))
	}
	return strings.Join(lines, "\n"), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
