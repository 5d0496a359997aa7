package docker

import (
	"regexp"
	"strings"
)

var (
	namedPattern = regexp.MustCompile(`(?:container|for|named?)\s+([a-zA-Z0-9_.-]+)`)
	verbPatterns = func() []*regexp.Regexp {
		var out []*regexp.Regexp
		for _, verb := range []string{"start", "stop", "restart", "inspect", "logs"} {
			out = append(out, regexp.MustCompile(verb+`\s+([a-zA-Z0-9_.-]+)`))
		}
		return out
	}()

	notNames     = set("my", "the", "a", "all", "docker")
	notVerbNames = set("container", "docker", "the", "a", "my", "all", "for")
)

type intent int

const (
	intentList intent = iota
	intentImages
	intentLogs
	intentStart
	intentStop
	intentRestart
	intentInspect
)

type request struct {
	kind      intent
	container string
}

// parse reads a lower-cased command. Logs win over everything else; the
// lifecycle verbs apply only when a container is named, and "restart" is
// tested before "start" because it contains it.
func parse(cmd string) request {
	name := extractContainer(cmd)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(cmd, w) {
				return true
			}
		}
		return false
	}

	switch {
	case has("log"):
		return request{kind: intentLogs, container: name}
	case name != "" && has("restart"):
		return request{kind: intentRestart, container: name}
	case name != "" && has("start"):
		return request{kind: intentStart, container: name}
	case name != "" && has("stop"):
		return request{kind: intentStop, container: name}
	case name != "" && has("inspect", "info", "details"):
		return request{kind: intentInspect, container: name}
	case has("image"):
		return request{kind: intentImages}
	default:
		return request{kind: intentList}
	}
}

func extractContainer(cmd string) string {
	if m := namedPattern.FindStringSubmatch(cmd); m != nil && !notNames[m[1]] {
		return m[1]
	}
	for _, re := range verbPatterns {
		if m := re.FindStringSubmatch(cmd); m != nil && !notVerbNames[m[1]] {
			return m[1]
		}
	}
	return ""
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
