// Package jsonfmt formats, validates, minifies and queries JSON typed into
// a command or copied to the clipboard.
package jsonfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/talon-assistant/talent-catalog/pkg/clip"
	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

var info = talent.Info{
	Name:        "json_formatter",
	Description: "Format, validate, and query JSON data",
	Keywords: []string{
		"json", "format json", "prettify json", "validate json",
		"parse json", "minify json", "json get", "json query",
	},
	Exclusions: []string{
		"remind", "timer", "email", "note", "weather", "hue",
		"light", "search", "news", "todo", "task", "pomodoro",
		"docker", "github", "regex",
	},
	Priority: 41,
}

var schema = talent.Schema{Fields: []talent.Field{
	talent.Int("indent", "Indentation Spaces", 2, 1, 8),
	talent.Bool("sort_keys", "Sort Keys Alphabetically", false),
}}

var (
	inlinePattern = regexp.MustCompile(`([{\[][\s\S]*[}\]])`)
	queryPattern  = regexp.MustCompile(`(?is)(?:get|query|extract)\s+([\w.\[\]]+)\s+(?:from|in)\s+(.+)`)
	pathSplit     = regexp.MustCompile(`[.\[\]]`)

	inputPrefixes = []string{"format json", "prettify json", "validate json", "minify json", "parse json", "compact json"}
	queryPhrases  = []string{"json get", "json query", "json extract", "get from json", "extract from json"}
)

const fromClipboard = " (from clipboard)"

type settings struct {
	indent   string
	sortKeys bool
}

// Talent reads clipboard text when the command carries no JSON.
type Talent struct {
	talent.Base
	board     clip.Board
	clipboard talent.Capability
	cfg       atomic.Pointer[settings]
}

// New returns the talent. board may be nil, in which case only inline JSON
// is accepted.
func New(board clip.Board, clipboard talent.Capability) *Talent {
	t := &Talent{Base: talent.NewBase(info), board: board, clipboard: clipboard}
	t.apply(schema.Defaults())
	return t
}

func (t *Talent) ConfigSchema() talent.Schema { return schema }

func (t *Talent) Initialize(cfg talent.Config) error   { t.apply(cfg); return nil }
func (t *Talent) UpdateConfig(cfg talent.Config) error { t.apply(cfg); return nil }

func (t *Talent) apply(cfg talent.Config) {
	t.cfg.Store(&settings{
		indent:   strings.Repeat(" ", cfg.Int("indent")),
		sortKeys: cfg.Bool("sort_keys"),
	})
}

func (t *Talent) Execute(_ context.Context, cmd talent.Command) talent.Result {
	s := t.cfg.Load()
	lower := strings.ToLower(strings.TrimSpace(cmd.Text))

	switch {
	case strings.Contains(lower, "validate"):
		doc, src := t.input(cmd.Text)
		if doc == "" {
			return talent.FailErr(talent.InvalidInput("No JSON data provided."))
		}
		return validate(doc, src)
	case strings.Contains(lower, "minify") || strings.Contains(lower, "compact"):
		doc, src := t.input(cmd.Text)
		if doc == "" {
			return talent.FailErr(talent.InvalidInput("No JSON data provided."))
		}
		return minify(doc, src)
	case containsAny(lower, queryPhrases):
		return t.query(cmd.Text, s)
	default:
		doc, src := t.input(cmd.Text)
		if doc == "" {
			return talent.FailErr(talent.InvalidInput("No JSON data provided. Paste or type the JSON after the command."))
		}
		return format(doc, src, s)
	}
}

// input returns the JSON text of a command and a label naming where it came
// from. Inline JSON wins, then text after a known prefix, then the clipboard.
func (t *Talent) input(command string) (doc, source string) {
	if m := inlinePattern.FindStringSubmatch(command); m != nil {
		return m[1], ""
	}
	lower := strings.ToLower(command)
	for _, p := range inputPrefixes {
		if strings.HasPrefix(lower, p) {
			if rest := strings.TrimSpace(command[len(p):]); rest != "" {
				return rest, ""
			}
			break
		}
	}
	if text := t.readClipboard(); text != "" {
		return text, fromClipboard
	}
	return "", ""
}

func (t *Talent) readClipboard() string {
	if t.board == nil || !t.clipboard.Available {
		return ""
	}
	text, err := t.board.ReadAll()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// SyntaxError locates a JSON parse failure. Line and Column are 1-based and
// Column counts characters.
type SyntaxError struct {
	Msg          string
	Line, Column int
	Offset       int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: line %d column %d (char %d)", e.Msg, e.Line, e.Column, e.Offset)
}

// Check reports whether doc is valid JSON, locating the first error.
func Check(doc string) error {
	if gjson.Valid(doc) {
		return nil
	}
	var v any
	err := json.Unmarshal([]byte(doc), &v)
	var se *json.SyntaxError
	if !errors.As(err, &se) {
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return err
	}

	pos := int(se.Offset)
	if pos > 0 {
		pos--
	}
	if pos > len(doc) {
		pos = len(doc)
	}
	line := 1 + strings.Count(doc[:pos], "\n")
	start := strings.LastIndex(doc[:pos], "\n") + 1
	return &SyntaxError{
		Msg:    se.Error(),
		Line:   line,
		Column: utf8.RuneCountInString(doc[start:pos]) + 1,
		Offset: utf8.RuneCountInString(doc[:pos]),
	}
}

func format(doc, source string, s *settings) talent.Result {
	if err := Check(doc); err != nil {
		return talent.FailErr(talent.InvalidInput("Invalid JSON: " + err.Error()))
	}
	return ok(fmt.Sprintf("Formatted JSON%s:\n\n%s", source, indent(doc, s.indent, s.sortKeys)))
}

func validate(doc, source string) talent.Result {
	err := Check(doc)
	var se *SyntaxError
	switch {
	case errors.As(err, &se):
		return ok(fmt.Sprintf("❌ Invalid JSON%s!\n  Error: %s\n  Line %d, Column %d", source, se.Msg, se.Line, se.Column))
	case err != nil:
		return ok(fmt.Sprintf("❌ Invalid JSON%s!\n  Error: %s", source, err))
	}

	root := gjson.Parse(doc)
	return ok(fmt.Sprintf("✅ Valid JSON%s!\n  Type: %s\n  Elements: %d\n  Size: %d characters",
		source, typeName(root), countElements(root), utf8.RuneCountInString(doc)))
}

func minify(doc, source string) talent.Result {
	if err := Check(doc); err != nil {
		return talent.FailErr(talent.InvalidInput("Invalid JSON: " + err.Error()))
	}
	small := string(pretty.Ugly([]byte(doc)))
	saved := utf8.RuneCountInString(doc) - utf8.RuneCountInString(small)
	return ok(fmt.Sprintf("Minified JSON%s (%d characters saved):\n\n%s", source, saved, small))
}

func (t *Talent) query(command string, s *settings) talent.Result {
	m := queryPattern.FindStringSubmatch(command)
	if m == nil {
		return talent.FailErr(talent.InvalidInput(`Format: 'json get path.to.key from {"your": "json"}'`))
	}
	path := strings.TrimSpace(m[1])
	doc, source := strings.TrimSpace(m[2]), ""
	if strings.EqualFold(doc, "clipboard") || strings.EqualFold(doc, "the clipboard") {
		if doc, source = t.readClipboard(), fromClipboard; doc == "" {
			return talent.FailErr(talent.InvalidInput("The clipboard has no text to query."))
		}
	}
	if err := Check(doc); err != nil {
		return talent.FailErr(talent.InvalidInput("Invalid JSON: " + err.Error()))
	}

	res := gjson.Get(doc, gjsonPath(path))
	if !res.Exists() {
		return talent.FailErr(talent.NotFound(fmt.Sprintf("Path '%s' not found.", path)))
	}
	var out string
	switch {
	case res.IsObject() || res.IsArray():
		out = indent(res.Raw, s.indent, false)
	case res.Type == gjson.String:
		out = res.String()
	default:
		out = res.Raw
	}
	return ok(fmt.Sprintf("Result for '%s'%s:\n\n%s", path, source, out))
}

// gjsonPath turns "users[0].name" or "users.0.name" into a gjson path,
// escaping gjson's wildcard and modifier characters in each key.
func gjsonPath(path string) string {
	var parts []string
	for _, p := range pathSplit.Split(path, -1) {
		if p != "" {
			parts = append(parts, gjson.Escape(p))
		}
	}
	return strings.Join(parts, ".")
}

func indent(doc, indent string, sortKeys bool) string {
	out := pretty.PrettyOptions([]byte(doc), &pretty.Options{Indent: indent, SortKeys: sortKeys})
	return strings.TrimSuffix(string(out), "\n")
}

func typeName(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	}
	switch r.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	default:
		return "null"
	}
}

// countElements counts every key and array item at any depth.
func countElements(r gjson.Result) int {
	if !r.IsObject() && !r.IsArray() {
		return 0
	}
	n := 0
	r.ForEach(func(_, v gjson.Result) bool {
		n += 1 + countElements(v)
		return true
	})
	return n
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
	return talent.OK(msg, talent.Action{Action: "json_formatter"})
}
