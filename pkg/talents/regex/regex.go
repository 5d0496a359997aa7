// Package regex tests patterns against sample text and asks the language
// model to build or explain them.
package regex

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/talon-assistant/talent-catalog/pkg/llm"
	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

var info = talent.Info{
	Name:        "regex_talent",
	Description: "Test regex patterns and build them from descriptions using LLM",
	Keywords: []string{
		"regex", "regular expression", "regexp", "pattern match",
		"test regex", "build regex", "explain regex", "test pattern",
	},
	Exclusions: []string{
		"remind", "timer", "email", "note", "weather", "hue",
		"light", "search", "news", "todo", "task", "pomodoro",
		"docker", "github", "repo",
	},
	Priority: 41,
}

const (
	buildSystemPrompt = "You are a regex expert. The user will describe a pattern they want to match. " +
		"Return ONLY a JSON object with these keys:\n" +
		`  "pattern": the regex pattern string` + "\n" +
		`  "flags": any flags needed (e.g., "i" for case-insensitive, "" for none)` + "\n" +
		`  "explanation": a brief explanation of how the pattern works` + "\n" +
		`  "examples": list of 2-3 example strings that would match` + "\n" +
		"\nReturn ONLY the JSON object, no markdown code fences."

	explainSystemPrompt = "You are a regex expert. The user will give you a regex pattern. " +
		"Explain what it matches in clear, simple language. " +
		"Break down each part of the pattern. Keep it concise."

	usage = "I can test, build, or explain regex patterns.\n" +
		"  • Test: 'test regex \\d+ against text abc 123 def'\n" +
		"  • Build: 'build a regex that matches email addresses'\n" +
		"  • Explain: 'explain regex ^\\w+@\\w+\\.\\w+$'"

	maxMatches = 20
)

var (
	testPhrases    = []string{"test regex", "test pattern", "try regex"}
	buildPhrases   = []string{"build regex", "build a regex", "create regex", "make regex", "make a regex", "write regex", "regex for", "regex that match", "regex to match", "help me match"}
	explainPhrases = []string{"explain regex", "explain pattern", "what does regex", "what does this regex"}

	buildPrefixes = []string{
		"build a regex", "build regex", "create a regex", "create regex",
		"make a regex", "make regex", "write a regex", "write regex",
		"regex for", "regex that matches", "regex to match", "help me match",
	}
	explainPrefixes = []string{
		"explain regex", "explain pattern", "explain this regex",
		"what does regex", "what does this regex", "what does",
	}

	metaChars     = regexp.MustCompile(`[\\.\[\]{}()+*?^$|]`)
	textSeparator = regexp.MustCompile(`(?i)\s+(?:against|on|with|in)\s+(?:text\s+)?`)
	testPrefix    = regexp.MustCompile(`(?i)^(?:test|try)\s+(?:regex|pattern)\s*`)
)

// Talent has no settings; the model comes from the command environment.
type Talent struct {
	talent.Base
}

func New() *Talent {
	return &Talent{Base: talent.NewBase(info)}
}

func (t *Talent) ConfigSchema() talent.Schema { return talent.Schema{} }

func (t *Talent) Execute(ctx context.Context, cmd talent.Command) talent.Result {
	lower := strings.ToLower(strings.TrimSpace(cmd.Text))
	switch {
	case containsAny(lower, testPhrases):
		return test(cmd.Text)
	case containsAny(lower, buildPhrases):
		return build(ctx, cmd)
	case containsAny(lower, explainPhrases):
		return explain(ctx, cmd)
	case metaChars.MatchString(cmd.Text):
		return test(cmd.Text)
	default:
		return talent.Fail(usage)
	}
}

// Match is one hit of a tested pattern. Offsets count characters, not bytes.
type Match struct {
	Text       string
	Start, End int
	// Groups holds the 1-based index and value of each participating group.
	Groups []Group
}

type Group struct {
	Index int
	Value string
}

// Run compiles pattern and returns its matches in text.
func Run(pattern, text string) ([]Match, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	var out []Match
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		m := Match{
			Text:  text[loc[0]:loc[1]],
			Start: utf8.RuneCountInString(text[:loc[0]]),
			End:   utf8.RuneCountInString(text[:loc[1]]),
		}
		for g := 1; g*2 < len(loc); g++ {
			if loc[2*g] < 0 {
				continue
			}
			m.Groups = append(m.Groups, Group{Index: g, Value: text[loc[2*g]:loc[2*g+1]]})
		}
		out = append(out, m)
	}
	return out, nil
}

// splitTest separates "test regex PATTERN against text TEXT" into its parts.
func splitTest(command string) (pattern, text string, ok bool) {
	loc := textSeparator.FindStringIndex(command)
	if loc == nil {
		return "", "", false
	}
	pattern = strings.TrimSpace(testPrefix.ReplaceAllString(command[:loc[0]], ""))
	text = strings.TrimSpace(command[loc[1]:])
	return pattern, text, true
}

func test(command string) talent.Result {
	pattern, text, found := splitTest(command)
	switch {
	case !found:
		return talent.FailErr(talent.InvalidInput("Please provide both a pattern and text.\n" +
			"Format: 'test regex PATTERN against text YOUR TEXT'"))
	case pattern == "":
		return talent.FailErr(talent.InvalidInput("No pattern provided."))
	case text == "":
		return talent.FailErr(talent.InvalidInput("No test text provided."))
	}

	matches, err := Run(pattern, text)
	if err != nil {
		return talent.FailErr(talent.InvalidInput("Invalid regex pattern: " + err.Error()))
	}

	lines := []string{fmt.Sprintf("Pattern: `%s`", pattern), fmt.Sprintf("Text: \"%s\"\n", text)}
	if len(matches) == 0 {
		lines = append(lines, "No matches found.")
	} else {
		lines = append(lines, fmt.Sprintf("Found %d match(es):\n", len(matches)))
		for i, m := range matches {
			if i == maxMatches {
				break
			}
			groups := ""
			if len(m.Groups) > 0 {
				parts := make([]string, len(m.Groups))
				for j, g := range m.Groups {
					parts[j] = fmt.Sprintf("(%d)=%s", g.Index, g.Value)
				}
				groups = " | groups: " + strings.Join(parts, ", ")
			}
			lines = append(lines, fmt.Sprintf("  %d. \"%s\" at position %d-%d%s", i+1, m.Text, m.Start, m.End, groups))
		}
	}
	return ok(strings.Join(lines, "\n"), pattern)
}

type builtPattern struct {
	Pattern     string   `json:"pattern"`
	Flags       string   `json:"flags"`
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
}

func build(ctx context.Context, cmd talent.Command) talent.Result {
	if cmd.Env.LLM == nil {
		return talent.FailErr(talent.Unavailable("LLM not available to build regex patterns."))
	}
	description := stripPrefix(cmd.Text, buildPrefixes)

	reply, err := cmd.Env.LLM.Generate(ctx, "Build a regex pattern for: "+description, buildSystemPrompt, 0.2)
	if err != nil {
		return talent.FailErr(talent.Remote("The language model could not build a pattern.", err))
	}

	var bp builtPattern
	if err := llm.ExtractObject(reply, &bp); err != nil || bp.Pattern == "" {
		return ok(reply, "")
	}

	lines := []string{fmt.Sprintf("Pattern: `%s`", bp.Pattern)}
	if bp.Flags != "" {
		lines = append(lines, "Flags: "+bp.Flags)
	}
	if _, err := regexp.Compile(bp.Pattern); err != nil {
		lines = append(lines, "Note: not valid RE2 syntax ("+err.Error()+")")
	}
	if bp.Explanation != "" {
		lines = append(lines, "\n"+bp.Explanation)
	}
	if len(bp.Examples) > 0 {
		lines = append(lines, "\nExample matches:")
		for _, ex := range bp.Examples {
			lines = append(lines, fmt.Sprintf("  ✓ \"%s\"", ex))
		}
	}
	return ok(strings.Join(lines, "\n"), bp.Pattern)
}

func explain(ctx context.Context, cmd talent.Command) talent.Result {
	if cmd.Env.LLM == nil {
		return talent.FailErr(talent.Unavailable("LLM not available to explain regex patterns."))
	}
	pattern := strings.Trim(stripPrefix(cmd.Text, explainPrefixes), "`'\"")
	if pattern == "" {
		return talent.FailErr(talent.InvalidInput("Please provide a regex pattern to explain."))
	}

	reply, err := cmd.Env.LLM.Generate(ctx, "Explain this regex pattern: "+pattern, explainSystemPrompt, 0.3)
	if err != nil {
		return talent.FailErr(talent.Remote("The language model could not explain the pattern.", err))
	}
	return ok(fmt.Sprintf("Pattern: `%s`\n\n%s", pattern, reply), pattern)
}

func stripPrefix(command string, prefixes []string) string {
	lower := strings.ToLower(command)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(command[len(p):])
		}
	}
	return command
}

func containsAny(s string, subs []string) bool {
	for _, p := range subs {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func ok(msg, pattern string) talent.Result {
	return talent.OK(msg, talent.Action{Action: "regex", Target: pattern})
}
