// Package todo keeps a local todo list with priorities, tags and due hints.
package todo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/talon-assistant/talent-catalog/pkg/store"
	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

// Task is one persisted todo item.
type Task struct {
	ID          int64      `json:"id"`
	Text        string     `json:"text"`
	Priority    string     `json:"priority"`
	Tag         string     `json:"tag,omitempty"`
	Due         string     `json:"due,omitempty"`
	Completed   bool       `json:"completed"`
	Created     time.Time  `json:"created"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

var info = talent.Info{
	Name:        "todo",
	Description: "Local todo list with priorities, due dates, and categories",
	Keywords: []string{
		"todo", "task", "add task", "to-do", "to do list",
		"check off", "complete task", "remove task", "show tasks",
		"my tasks", "my list", "todo list",
	},
	Exclusions: []string{
		"remind", "timer", "alarm", "email", "send", "note",
		"weather", "forecast", "hue", "light", "search",
	},
	Priority: 46,
}

var schema = talent.Schema{Fields: []talent.Field{
	talent.Choice("default_priority", "Default Priority", "medium", "low", "medium", "high"),
	talent.Bool("show_completed", "Show Completed Tasks in List", false),
}}

type settings struct {
	defaultPriority string
	showCompleted   bool
}

// Talent manages the todo store.
type Talent struct {
	talent.Base
	tasks    *store.JSON[Task]
	settings atomic.Pointer[settings]
	now      func() time.Time
}

// New opens the store at path.
func New(path string, logger *log.Logger) *Talent {
	t := &Talent{
		Base:  talent.NewBase(info),
		tasks: store.Open[Task](path, logger),
		now:   time.Now,
	}
	t.apply(schema.Defaults())
	return t
}

func (t *Talent) ConfigSchema() talent.Schema { return schema }

func (t *Talent) Initialize(cfg talent.Config) error   { t.apply(cfg); return nil }
func (t *Talent) UpdateConfig(cfg talent.Config) error { t.apply(cfg); return nil }

func (t *Talent) apply(cfg talent.Config) {
	t.settings.Store(&settings{
		defaultPriority: cfg.String("default_priority"),
		showCompleted:   cfg.Bool("show_completed"),
	})
}

// Tasks returns a snapshot of the store.
func (t *Talent) Tasks() []Task { return t.tasks.Items() }

func (t *Talent) Execute(_ context.Context, cmd talent.Command) talent.Result {
	in := parse(cmd.Text)
	switch in.kind {
	case intentAdd:
		return t.add(in.task)
	case intentComplete:
		return t.complete(in.query)
	case intentRemove:
		return t.remove(in.query)
	case intentInvalid:
		return talent.Fail(in.msg)
	default:
		return t.list(in.tag)
	}
}

func (t *Talent) add(d draft) talent.Result {
	if d.priority == "" {
		d.priority = t.settings.Load().defaultPriority
	}
	t.tasks.Append(Task{
		ID:       store.NextID(taskIDs(t.tasks.Items())...),
		Text:     d.text,
		Priority: d.priority,
		Tag:      d.tag,
		Due:      d.due,
		Created:  t.now(),
	})

	parts := []string{fmt.Sprintf("Added task: %q", d.text)}
	if d.priority != "medium" {
		parts = append(parts, "Priority: "+d.priority)
	}
	if d.tag != "" {
		parts = append(parts, "Tag: "+d.tag)
	}
	if d.due != "" {
		parts = append(parts, "Due: "+d.due)
	}
	return talent.OK(strings.Join(parts, " | "), talent.Action{Action: "todo_add", Text: d.text})
}

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

func rank(p string) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return 1
}

func (t *Talent) list(tag string) talent.Result {
	var tasks []Task
	showCompleted := t.settings.Load().showCompleted
	for _, task := range t.tasks.Items() {
		if task.Completed && !showCompleted {
			continue
		}
		if tag != "" && !strings.EqualFold(task.Tag, tag) {
			continue
		}
		tasks = append(tasks, task)
	}

	action := talent.Action{Action: "todo_list"}
	if len(tasks) == 0 {
		if tag != "" {
			return talent.OK(fmt.Sprintf("No tasks tagged '%s'.", tag), action)
		}
		return talent.OK("Your todo list is empty!", action)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if ri, rj := rank(tasks[i].Priority), rank(tasks[j].Priority); ri != rj {
			return ri < rj
		}
		return tasks[i].Created.Before(tasks[j].Created)
	})

	lines := []string{"Your tasks:\n"}
	for _, task := range tasks {
		check := "⬜"
		if task.Completed {
			check = "✅"
		}
		var b strings.Builder
		b.WriteString(check + " " + task.Text)
		switch task.Priority {
		case "high":
			b.WriteString(" ❗")
		case "low":
			b.WriteString(" ▽")
		}
		if task.Tag != "" {
			b.WriteString(" [" + task.Tag + "]")
		}
		if task.Due != "" {
			b.WriteString(" (by " + task.Due + ")")
		}
		lines = append(lines, b.String())
	}
	return talent.OK(strings.Join(lines, "\n"), action)
}

func (t *Talent) complete(query string) talent.Result {
	i, ok := t.find(query)
	if !ok {
		return talent.Failf("Couldn't find a task matching %q.", query)
	}
	var text string
	t.tasks.Update(i, func(task *Task) {
		now := t.now()
		task.Completed = true
		task.CompletedAt = &now
		text = task.Text
	})
	return talent.OK(fmt.Sprintf("Completed: %q ✅", text), talent.Action{Action: "todo_complete", Text: text})
}

func (t *Talent) remove(query string) talent.Result {
	i, ok := t.find(query)
	if !ok {
		return talent.Failf("Couldn't find a task matching %q.", query)
	}
	removed, _ := t.tasks.Remove(i)
	return talent.OK(fmt.Sprintf("Removed: %q", removed.Text), talent.Action{Action: "todo_remove", Text: removed.Text})
}

// find returns the index of the first task containing query, falling back
// to the task sharing the most words with it.
func (t *Talent) find(query string) (int, bool) {
	tasks := t.tasks.Items()
	q := strings.ToLower(query)
	for i, task := range tasks {
		if strings.Contains(strings.ToLower(task.Text), q) {
			return i, true
		}
	}

	queryWords := map[string]bool{}
	for _, w := range strings.Fields(q) {
		queryWords[w] = true
	}
	best, bestScore := -1, 0
	for i, task := range tasks {
		seen := map[string]bool{}
		score := 0
		for _, w := range strings.Fields(strings.ToLower(task.Text)) {
			if queryWords[w] && !seen[w] {
				seen[w] = true
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore > 0
}

func taskIDs(items []Task) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
