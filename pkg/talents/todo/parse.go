package todo

import (
	"regexp"
	"sort"
	"strings"
)

type intentKind int

const (
	intentList intentKind = iota
	intentAdd
	intentComplete
	intentRemove
	intentInvalid
)

// draft is a task description with its inline attributes pulled out.
// An empty priority means "use the configured default".
type draft struct {
	text     string
	priority string
	tag      string
	due      string
}

type intent struct {
	kind  intentKind
	task  draft  // intentAdd
	query string // intentComplete, intentRemove
	tag   string // intentList filter
	msg   string // intentInvalid
}

var (
	directAddPattern = regexp.MustCompile(`^(?:add|put)\s+(.+?)\s+(?:to|on)\s+(?:my\s+)?(?:todo|to-do|to do|task)?\s*list`)
	listTagPattern   = regexp.MustCompile(`(?:tagged?|category|label)\s+(\w+)`)
	taskTagPattern   = regexp.MustCompile(`(?:tag(?:ged)?|category|label)\s+(\w+)`)
	duePattern       = regexp.MustCompile(`\bby\s+(\w+)`)
	leadingNoise     = regexp.MustCompile(`^(to|that)\s+`)

	listPhrases     = []string{"show", "list", "my task", "my todo", "my to-do", "what are my", "todo list", "to do list"}
	completePhrases = []string{"complete", "check off", "finish", "done with", "mark done", "mark complete"}
	removeTriggers  = []string{"remove task", "delete task"}
	removePhrases   = []string{"remove task", "delete task", "remove", "delete"}
	addTriggers     = []string{"add task", "add a task", "new task", "create task", "add to my", "add to todo", "add to list"}
	addPrefixes     = []string{"add task", "add a task", "new task", "create task", "add to my todo list", "add to my list", "add to todo", "add to list", "todo", "task"}
)

// parse maps a command to a todo intent. Branch order matters: the natural
// "add X to my list" phrasing is tried before listing, which would otherwise
// claim anything containing "list".
func parse(text string) intent {
	cmd := strings.TrimSpace(strings.ToLower(text))

	if m := directAddPattern.FindStringSubmatch(cmd); m != nil {
		return addIntent(extractAttributes(strings.TrimSpace(m[1])))
	}

	if containsAny(cmd, listPhrases) {
		in := intent{kind: intentList}
		if m := listTagPattern.FindStringSubmatch(cmd); m != nil {
			in.tag = m[1]
		}
		return in
	}

	if containsAny(cmd, completePhrases) {
		q := extractQuery(cmd, completePhrases)
		if q == "" {
			return intent{kind: intentInvalid, msg: "Which task should I mark as complete?"}
		}
		return intent{kind: intentComplete, query: q}
	}

	if containsAny(cmd, removeTriggers) {
		q := extractQuery(cmd, removePhrases)
		if q == "" {
			return intent{kind: intentInvalid, msg: "Which task should I remove?"}
		}
		return intent{kind: intentRemove, query: q}
	}

	if containsAny(cmd, addTriggers) || strings.HasPrefix(cmd, "todo ") || strings.HasPrefix(cmd, "task ") {
		desc := cmd
		for _, p := range addPrefixes {
			if strings.HasPrefix(desc, p) {
				desc = strings.TrimSpace(desc[len(p):])
				break
			}
		}
		if desc == "" {
			return intent{kind: intentInvalid, msg: "What task would you like to add?"}
		}
		d := extractAttributes(desc)
		d.text = strings.TrimSpace(leadingNoise.ReplaceAllString(d.text, ""))
		return addIntent(d)
	}

	return intent{kind: intentList}
}

func addIntent(d draft) intent {
	if d.text == "" {
		return intent{kind: intentInvalid, msg: "I couldn't figure out the task description."}
	}
	return intent{kind: intentAdd, task: d}
}

// extractAttributes pulls "<p> priority", "tag X" and "by X" out of desc.
func extractAttributes(desc string) draft {
	d := draft{text: desc}
	for _, p := range []string{"high", "medium", "low"} {
		phrase := p + " priority"
		if strings.Contains(d.text, phrase) {
			d.priority = p
			d.text = strings.TrimSpace(strings.ReplaceAll(d.text, phrase, ""))
			break
		}
	}
	if loc := taskTagPattern.FindStringSubmatchIndex(d.text); loc != nil {
		d.tag = d.text[loc[2]:loc[3]]
		d.text = strings.TrimSpace(d.text[:loc[0]])
	}
	if loc := duePattern.FindStringSubmatchIndex(d.text); loc != nil {
		d.due = d.text[loc[2]:loc[3]]
		d.text = strings.TrimSpace(d.text[:loc[0]])
	}
	return d
}

// extractQuery returns the text after the longest phrase found in cmd.
func extractQuery(cmd string, phrases []string) string {
	sorted := append([]string(nil), phrases...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for _, p := range sorted {
		if i := strings.Index(cmd, p); i >= 0 {
			return strings.TrimSpace(cmd[i+len(p):])
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
