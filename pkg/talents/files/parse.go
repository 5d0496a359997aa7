package files

import (
	"path/filepath"
	"regexp"
	"strings"
)

// categories is ordered so an extension claimed by two groups resolves to
// the first.
var categories = []struct {
	name string
	exts []string
}{
	{"images", []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".ico", ".tiff"}},
	{"documents", []string{".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".xls", ".xlsx", ".csv", ".ppt", ".pptx"}},
	{"audio", []string{".mp3", ".wav", ".flac", ".ogg", ".aac", ".wma", ".m4a"}},
	{"video", []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm"}},
	{"archives", []string{".zip", ".rar", ".7z", ".tar", ".gz", ".bz2"}},
	{"code", []string{".py", ".js", ".ts", ".html", ".css", ".java", ".cpp", ".c", ".rs", ".go"}},
	{"executables", []string{".exe", ".msi", ".bat", ".sh", ".cmd"}},
}

var typeAliases = map[string]string{
	"image": "images", "photo": "images", "picture": "images",
	"music": "audio",
}

var literalAliases = map[string][]string{
	"pdf":        {".pdf"},
	"zip":        {".zip", ".rar", ".7z"},
	"python":     {".py"},
	"javascript": {".js"},
}

var knownFolders = []struct{ word, dir string }{
	{"downloads", "Downloads"},
	{"desktop", "Desktop"},
	{"documents", "Documents"},
	{"pictures", "Pictures"},
	{"music", "Music"},
	{"videos", "Videos"},
}

var (
	pathPattern = regexp.MustCompile(`(?:in|from|at|to)\s+([A-Za-z]:[/\\][^\s,]+|/[^\s,]+|~[/\\][^\s,]+)`)
	findPattern = regexp.MustCompile(`find\s+(\w+)\s+files?`)
)

type intent int

const (
	intentHelp intent = iota
	intentOrganize
	intentLarge
	intentFind
	intentList
)

type request struct {
	kind     intent
	fileType string
	preview  bool
}

func parse(command string) request {
	cmd := strings.ToLower(strings.TrimSpace(command))
	switch {
	case containsAny(cmd, "organize", "sort by type", "sort files", "sort downloads", "clean up"):
		return request{kind: intentOrganize, preview: containsAny(cmd, "preview", "dry run", "what would")}
	case containsAny(cmd, "large file", "big file"):
		return request{kind: intentLarge}
	}
	if m := findPattern.FindStringSubmatch(cmd); m != nil {
		return request{kind: intentFind, fileType: m[1]}
	}
	if containsAny(cmd, "list files", "show files", "what files", "what's in") {
		return request{kind: intentList}
	}
	return request{kind: intentHelp}
}

// extractPath finds an explicit path or a well-known folder name. It returns
// "" when the command names neither.
func extractPath(command, home string) string {
	if m := pathPattern.FindStringSubmatch(command); m != nil {
		return expandHome(m[1], home)
	}
	lower := strings.ToLower(command)
	for _, k := range knownFolders {
		if strings.Contains(lower, k.word) {
			return filepath.Join(home, k.dir)
		}
	}
	return ""
}

func expandHome(path, home string) string {
	if home != "" && (strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`)) {
		return filepath.Join(home, path[2:])
	}
	return path
}

func categoryOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, c := range categories {
		for _, e := range c.exts {
			if e == ext {
				return c.name
			}
		}
	}
	return "other"
}

// extensionsFor maps a spoken file type to the extensions it covers.
func extensionsFor(fileType string) map[string]bool {
	ft := strings.ToLower(fileType)
	if alias, ok := typeAliases[ft]; ok {
		ft = alias
	}
	var exts []string
	for _, c := range categories {
		if c.name == ft {
			exts = c.exts
		}
	}
	if exts == nil {
		exts = literalAliases[ft]
	}
	if exts == nil {
		exts = []string{"." + ft}
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[e] = true
	}
	return set
}

func containsAny(s string, subs ...string) bool {
	for _, p := range subs {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
