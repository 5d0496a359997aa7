// Package snippet saves, searches and shows code snippets.
package snippet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/talon-assistant/talent-catalog/pkg/clip"
	"github.com/talon-assistant/talent-catalog/pkg/store"
	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

// Snippet is one persisted code snippet.
type Snippet struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Tag         string    `json:"tag"`
	Created     time.Time `json:"created"`
}

var info = talent.Info{
	Name:        "code_snippet",
	Description: "Save, search, and paste code snippets by language and topic",
	Keywords: []string{
		"snippet", "code snippet", "save snippet", "save code",
		"find snippet", "search snippet", "list snippet",
		"show snippet", "delete snippet", "paste snippet",
		"my snippets",
	},
	Exclusions: []string{
		"remind", "timer", "email", "note", "weather", "hue",
		"light", "search", "news", "todo", "task", "pomodoro",
		"docker", "github", "regex", "json",
	},
	Priority: 43,
}

var schema = talent.Schema{Fields: []talent.Field{
	talent.Int("max_display", "Max Snippets to Display", 15, 5, 50),
}}

// Talent manages the snippet store.
type Talent struct {
	talent.Base
	snippets   *store.JSON[Snippet]
	board      clip.Board
	clipboard  talent.Capability
	maxDisplay atomic.Int64
}

// New opens the store at path. board is used to save the clipboard contents
// when a save command carries no code; it may be nil.
func New(path string, board clip.Board, clipboard talent.Capability, logger *log.Logger) *Talent {
	t := &Talent{
		Base:      talent.NewBase(info),
		snippets:  store.Open[Snippet](path, logger),
		board:     board,
		clipboard: clipboard,
	}
	t.apply(schema.Defaults())
	return t
}

func (t *Talent) ConfigSchema() talent.Schema { return schema }

func (t *Talent) Initialize(cfg talent.Config) error   { t.apply(cfg); return nil }
func (t *Talent) UpdateConfig(cfg talent.Config) error { t.apply(cfg); return nil }

func (t *Talent) apply(cfg talent.Config) {
	t.maxDisplay.Store(int64(cfg.Int("max_display")))
}

// Snippets returns a snapshot of the store.
func (t *Talent) Snippets() []Snippet { return t.snippets.Items() }

func (t *Talent) Execute(_ context.Context, cmd talent.Command) talent.Result {
	in := parse(cmd.Text)
	switch in.kind {
	case intentSave:
		return t.save(in.body)
	case intentDelete:
		return t.delete(in.query)
	case intentShow:
		return t.show(in.index)
	case intentFind:
		return t.find(in.query)
	default:
		return t.list(in.language)
	}
}

func (t *Talent) save(body string) talent.Result {
	if body == "" && t.board != nil && t.clipboard.Available {
		if text, err := t.board.ReadAll(); err == nil {
			body = strings.TrimSpace(text)
		}
	}
	if body == "" {
		return talent.Fail("Please provide the code to save.")
	}

	d := parseBody(body)
	t.snippets.Append(Snippet{
		ID:          store.NextID(snippetIDs(t.snippets.Items())...),
		Code:        d.code,
		Description: d.description,
		Language:    d.language,
		Tag:         d.tag,
		Created:     time.Now(),
	})

	parts := []string{fmt.Sprintf("Saved snippet: %q", d.description)}
	if d.language != "" {
		parts = append(parts, "Language: "+d.language)
	}
	if d.tag != "" {
		parts = append(parts, "Tag: "+d.tag)
	}
	return talent.OK(strings.Join(parts, " | "), talent.Action{Action: "snippet_save", Text: d.description})
}

func (t *Talent) list(language string) talent.Result {
	var snippets []Snippet
	for _, s := range t.snippets.Items() {
		if language == "" || strings.EqualFold(s.Language, language) {
			snippets = append(snippets, s)
		}
	}
	action := talent.Action{Action: "snippet_list", Count: len(snippets)}
	if len(snippets) == 0 {
		label := ""
		if language != "" {
			label = " (" + language + ")"
		}
		return talent.OK("No code snippets saved"+label+".", action)
	}

	limit := int(t.maxDisplay.Load())
	lines := []string{fmt.Sprintf("Code Snippets (%d):\n", len(snippets))}
	for i, s := range snippets {
		if i >= limit {
			break
		}
		lines = append(lines, fmt.Sprintf("  %d. %s%s%s", i+1, describe(s), langLabel(s), tagLabel(s)))
	}
	if len(snippets) > limit {
		lines = append(lines, fmt.Sprintf("\n  ...and %d more", len(snippets)-limit))
	}
	lines = append(lines, "\nSay 'show snippet N' to see full code.")
	return talent.OK(strings.Join(lines, "\n"), action)
}

func (t *Talent) show(index int) talent.Result {
	s, ok := t.snippets.At(index)
	if !ok {
		return talent.FailErr(talent.NotFound(fmt.Sprintf("No snippet at position %d.", index+1)))
	}
	var lines []string
	if s.Description != "" {
		lines = append(lines, "Description: "+s.Description)
	}
	if s.Language != "" {
		lines = append(lines, "Language: "+s.Language)
	}
	if s.Tag != "" {
		lines = append(lines, "Tag: "+s.Tag)
	}
	lines = append(lines, fmt.Sprintf("\n```%s\n%s\n```", s.Language, s.Code))
	return talent.OK(strings.Join(lines, "\n"), talent.Action{Action: "snippet_show", Text: s.Description})
}

func (t *Talent) find(query string) talent.Result {
	if query == "" {
		return talent.Fail("What should I search for?")
	}
	q := strings.ToLower(query)

	type match struct {
		index int
		s     Snippet
	}
	var matches []match
	for i, s := range t.snippets.Items() {
		searchable := strings.ToLower(strings.Join([]string{s.Code, s.Description, s.Language, s.Tag}, " "))
		if strings.Contains(searchable, q) {
			matches = append(matches, match{i, s})
		}
	}

	action := talent.Action{Action: "snippet_search", Text: query, Count: len(matches)}
	if len(matches) == 0 {
		return talent.OK(fmt.Sprintf("No snippets matching %q.", query), action)
	}
	lines := []string{fmt.Sprintf("Found %d match(es) for %q:\n", len(matches), query)}
	for i, m := range matches {
		if i >= 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("  %d. %s%s", m.index+1, describe(m.s), langLabel(m.s)))
	}
	return talent.OK(strings.Join(lines, "\n"), action)
}

func (t *Talent) delete(query string) talent.Result {
	if query == "" {
		return talent.Fail("Which snippet should I delete?")
	}

	if n, err := strconv.Atoi(query); err == nil {
		if removed, ok := t.snippets.Remove(n - 1); ok {
			return deleted(removed)
		}
	}

	q := strings.ToLower(query)
	for i, s := range t.snippets.Items() {
		if strings.Contains(strings.ToLower(s.Description), q) || strings.Contains(strings.ToLower(s.Code), q) {
			removed, _ := t.snippets.Remove(i)
			return deleted(removed)
		}
	}
	return talent.FailErr(talent.NotFound(fmt.Sprintf("No snippet matching %q.", query)))
}

func deleted(s Snippet) talent.Result {
	desc := s.Description
	if desc == "" {
		desc = "untitled"
	}
	return talent.OK(fmt.Sprintf("Deleted snippet: %q", desc), talent.Action{Action: "snippet_delete", Text: desc})
}

func describe(s Snippet) string {
	if s.Description != "" {
		return s.Description
	}
	return truncate(s.Code, 40)
}

func langLabel(s Snippet) string {
	if s.Language == "" {
		return ""
	}
	return " [" + s.Language + "]"
}

func tagLabel(s Snippet) string {
	if s.Tag == "" {
		return ""
	}
	return " #" + s.Tag
}

func snippetIDs(items []Snippet) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
