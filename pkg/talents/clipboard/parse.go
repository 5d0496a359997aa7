package clipboard

import (
	"regexp"
	"strconv"
	"strings"
)

type intentKind int

const (
	intentShow intentKind = iota
	intentClear
	intentSearch
	intentPaste
)

type intent struct {
	kind  intentKind
	query string // intentSearch
	index int    // intentPaste, 0-based
}

var (
	pastePattern    = regexp.MustCompile(`(?:paste|use|get)\s+(?:item\s+)?(\d+)`)
	previousPhrases = []string{"last copied", "previous copy", "copy again", "paste previous", "paste last"}
)

func parse(text string) intent {
	cmd := strings.TrimSpace(strings.ToLower(text))

	if strings.Contains(cmd, "clear") && strings.Contains(cmd, "clipboard") {
		return intent{kind: intentClear}
	}

	if strings.Contains(cmd, "search") && strings.Contains(cmd, "clipboard") {
		q := cmd
		if i := strings.Index(cmd, "search clipboard"); i >= 0 {
			q = cmd[i+len("search clipboard"):]
		}
		q = strings.TrimSpace(q)
		q = strings.TrimSpace(strings.TrimPrefix(q, "for "))
		return intent{kind: intentSearch, query: q}
	}

	if m := pastePattern.FindStringSubmatch(cmd); m != nil {
		n, _ := strconv.Atoi(m[1])
		return intent{kind: intentPaste, index: n - 1}
	}

	for _, p := range previousPhrases {
		if strings.Contains(cmd, p) {
			// Entry 1 is what is on the clipboard now; "previous" is entry 2.
			return intent{kind: intentPaste, index: 1}
		}
	}

	return intent{kind: intentShow}
}
