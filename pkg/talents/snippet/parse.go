package snippet

import (
	"regexp"
	"strconv"
	"strings"
)

type intentKind int

const (
	intentList intentKind = iota
	intentSave
	intentDelete
	intentShow
	intentFind
)

type intent struct {
	kind     intentKind
	body     string // intentSave: original-case text after the prefix
	query    string // intentDelete, intentFind
	index    int    // intentShow, 0-based
	language string // intentList filter
}

// Languages recognised as a save prefix or list filter, in match order.
var Languages = []string{
	"python", "javascript", "typescript", "java", "cpp", "c",
	"rust", "go", "ruby", "php", "swift", "kotlin", "bash",
	"shell", "sql", "html", "css", "yaml", "json", "toml",
}

var (
	showPattern    = regexp.MustCompile(`(?:show|get|paste)\s+snippet\s+(\d+)`)
	savePhrases    = []string{"save snippet", "save code", "store snippet", "add snippet", "new snippet"}
	deletePhrases  = []string{"delete snippet", "remove snippet"}
	findTriggers   = []string{"find snippet", "search snippet"}
	findPrefixes   = []string{"find snippets", "search snippets", "find snippet", "search snippet"}
	listTriggers   = []string{"list snippet", "my snippet", "show snippet", "list code"}
	deletePrefixes = []string{"remove snippet", "delete snippet"}
)

func parse(text string) intent {
	original := strings.TrimSpace(text)
	cmd := strings.ToLower(original)

	if containsAny(cmd, savePhrases) {
		body := original
		for _, p := range savePhrases {
			if strings.HasPrefix(strings.ToLower(body), p) {
				body = strings.TrimSpace(body[len(p):])
				break
			}
		}
		return intent{kind: intentSave, body: body}
	}

	if containsAny(cmd, deletePhrases) {
		return intent{kind: intentDelete, query: stripPrefix(cmd, deletePrefixes)}
	}

	if m := showPattern.FindStringSubmatch(cmd); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = 0
		}
		return intent{kind: intentShow, index: n - 1}
	}

	if containsAny(cmd, findTriggers) {
		return intent{kind: intentFind, query: stripPrefix(cmd, findPrefixes)}
	}

	if containsAny(cmd, listTriggers) {
		in := intent{kind: intentList}
		for _, lang := range Languages {
			if strings.Contains(cmd, lang) {
				in.language = lang
				break
			}
		}
		return in
	}

	return intent{kind: intentList}
}

// stripPrefix removes the longest matching prefix. prefixes must be sorted
// longest first.
func stripPrefix(cmd string, prefixes []string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(cmd, p) {
			return strings.TrimSpace(cmd[len(p):])
		}
	}
	return cmd
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var tagPattern = regexp.MustCompile(`(?i)\btagged?\s+(\w+)`)

// draft is a parsed save body.
type draft struct {
	code        string
	description string
	language    string
	tag         string
}

// parseBody splits a save body into language, tag, description and code.
func parseBody(body string) draft {
	var d draft
	text := body
	lower := strings.ToLower(text)
	for _, lang := range Languages {
		if strings.HasPrefix(lower, lang+":") || strings.HasPrefix(lower, lang+" ") {
			d.language = lang
			text = strings.TrimSpace(strings.TrimLeft(text[len(lang):], ": "))
			break
		}
	}

	if loc := tagPattern.FindStringSubmatchIndex(text); loc != nil {
		d.tag = text[loc[2]:loc[3]]
		text = strings.TrimSpace(strings.TrimSpace(text[:loc[0]]) + " " + strings.TrimSpace(text[loc[1]:]))
	}

	if lines := strings.Split(text, "\n"); len(lines) > 1 {
		d.description = strings.TrimRight(strings.TrimSpace(lines[0]), ":")
		d.code = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	} else {
		d.description = truncate(text, 50)
		d.code = text
	}
	return d
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
