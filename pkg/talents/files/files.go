// Package files sorts, searches and lists directories on an afero
// filesystem.
package files

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

var info = talent.Info{
	Name:        "file_organizer",
	Description: "Search, move, and organize files on disk",
	Keywords: []string{
		"organize", "sort files", "find file", "find files", "large files",
		"list files", "file organizer", "clean up", "sort downloads",
		"find pdf", "find images", "find documents",
	},
	Exclusions: []string{
		"remind", "timer", "email", "note", "weather", "hue",
		"light", "search", "news", "todo", "task", "pomodoro",
	},
	Priority: 42,
}

var schema = talent.Schema{Fields: []talent.Field{
	talent.String("default_directory", "Default Directory", ""),
	talent.Int("large_file_mb", "Large File Threshold (MB)", 100, 1, 10000),
	talent.Int("max_results", "Max Results to Show", 20, 5, 100),
}}

const (
	mb   = 1024 * 1024
	help = "I can organize folders by type, find large files, find files by type, " +
		"or list directory contents. Please be more specific."
)

var errPermission = errors.New("permission denied")

type settings struct {
	defaultDir  string
	largeFileMB int
	maxResults  int
}

// Talent works on any afero.Fs; production uses the OS filesystem.
type Talent struct {
	talent.Base
	fs     afero.Fs
	home   string
	logger *log.Logger
	cfg    atomic.Pointer[settings]
}

// New returns the talent. A nil fsys selects the OS filesystem and an empty
// home the current user's home directory.
func New(fsys afero.Fs, home string, logger *log.Logger) *Talent {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if logger == nil {
		logger = log.Default()
	}
	t := &Talent{Base: talent.NewBase(info), fs: fsys, home: home, logger: logger.With("talent", info.Name)}
	t.apply(schema.Defaults())
	return t
}

func (t *Talent) ConfigSchema() talent.Schema { return schema }

func (t *Talent) Initialize(cfg talent.Config) error   { t.apply(cfg); return nil }
func (t *Talent) UpdateConfig(cfg talent.Config) error { t.apply(cfg); return nil }

func (t *Talent) apply(cfg talent.Config) {
	t.cfg.Store(&settings{
		defaultDir:  expandHome(strings.TrimSpace(cfg.String("default_directory")), t.home),
		largeFileMB: cfg.Int("large_file_mb"),
		maxResults:  cfg.Int("max_results"),
	})
}

func (t *Talent) Execute(_ context.Context, cmd talent.Command) talent.Result {
	s := t.cfg.Load()
	req := parse(cmd.Text)
	dir := extractPath(cmd.Text, t.home)
	if dir == "" {
		dir = s.defaultDir
	}

	var verb string
	switch req.kind {
	case intentOrganize:
		verb = "organize"
	case intentLarge, intentFind:
		verb = "search"
	case intentList:
		verb = "list"
	default:
		return talent.Fail(help)
	}
	if dir == "" {
		return talent.FailErr(talent.InvalidInput(fmt.Sprintf("Which folder should I %s? Please include a path.", verb)))
	}
	if ok, _ := afero.IsDir(t.fs, dir); !ok {
		return talent.FailErr(talent.NotFound("Directory not found: " + dir))
	}

	var (
		msg string
		err error
	)
	switch req.kind {
	case intentOrganize:
		msg, err = t.organize(dir, req.preview)
	case intentLarge:
		msg, err = t.large(dir, s)
	case intentFind:
		msg, err = t.find(dir, req.fileType, s)
	default:
		msg, err = t.list(dir, s)
	}
	if errors.Is(err, errPermission) {
		return talent.FailErr(talent.NewError(talent.KindPersistence, "Permission denied accessing "+dir, err))
	}
	if err != nil {
		return talent.FailErr(talent.NewError(talent.KindPersistence, "File error: "+err.Error(), err))
	}
	return talent.OK(msg, talent.Action{Action: "file_organizer", Target: dir})
}

// organize moves top-level files into per-category folders. Files whose
// destination already exists are left in place. With preview set nothing
// is touched.
func (t *Talent) organize(dir string, preview bool) (string, error) {
	entries, err := afero.ReadDir(t.fs, dir)
	if err != nil {
		return "", wrapPermission(err)
	}

	moved := map[string]int{}
	failed := 0
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		category := categoryOf(e.Name())
		destDir := filepath.Join(dir, category)
		dest := filepath.Join(destDir, e.Name())
		if exists, _ := afero.Exists(t.fs, dest); exists {
			continue
		}
		if preview {
			moved[category]++
			continue
		}
		if err := t.fs.MkdirAll(destDir, 0o755); err != nil {
			t.logger.Debug("create category folder", "dir", destDir, "err", err)
			failed++
			continue
		}
		if err := t.fs.Rename(filepath.Join(dir, e.Name()), dest); err != nil {
			t.logger.Debug("move file", "file", e.Name(), "err", err)
			failed++
			continue
		}
		moved[category]++
	}

	if len(moved) == 0 {
		return "No files to organize in that folder.", nil
	}

	total := 0
	names := make([]string, 0, len(moved))
	for c, n := range moved {
		names = append(names, c)
		total += n
	}
	sort.Strings(names)

	head := "Organized %d files in %s:\n"
	if preview {
		head = "Would organize %d files in %s:\n"
	}
	lines := []string{fmt.Sprintf(head, total, filepath.Base(dir))}
	for _, c := range names {
		lines = append(lines, fmt.Sprintf("  %s/  ← %d file(s)", c, moved[c]))
	}
	if failed > 0 {
		lines = append(lines, fmt.Sprintf("\n(%d file(s) could not be moved)", failed))
	}
	return strings.Join(lines, "\n"), nil
}

type found struct {
	rel  string
	size int64
}

func (t *Talent) large(dir string, s *settings) (string, error) {
	threshold := int64(s.largeFileMB) * mb
	hits, err := t.walk(dir, func(_ string, size int64) bool { return size >= threshold })
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return fmt.Sprintf("No files larger than %d MB found in %s.", s.largeFileMB, dir), nil
	}

	lines := []string{fmt.Sprintf("Files larger than %d MB in %s:\n", s.largeFileMB, filepath.Base(dir))}
	for _, f := range limit(hits, s.maxResults) {
		lines = append(lines, fmt.Sprintf("  %s MB — %s", humanize.FormatFloat("#,###.#", float64(f.size)/mb), f.rel))
	}
	return strings.Join(more(lines, len(hits), s.maxResults), "\n"), nil
}

func (t *Talent) find(dir, fileType string, s *settings) (string, error) {
	exts := extensionsFor(fileType)
	hits, err := t.walk(dir, func(name string, _ int64) bool {
		return exts[strings.ToLower(filepath.Ext(name))]
	})
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return fmt.Sprintf("No %s files found in %s.", fileType, dir), nil
	}

	lines := []string{fmt.Sprintf("Found %d %s file(s) in %s:\n", len(hits), fileType, filepath.Base(dir))}
	for _, f := range limit(hits, s.maxResults) {
		lines = append(lines, fmt.Sprintf("  %s (%s)", f.rel, size(f.size)))
	}
	return strings.Join(more(lines, len(hits), s.maxResults), "\n"), nil
}

func (t *Talent) list(dir string, s *settings) (string, error) {
	entries, err := afero.ReadDir(t.fs, dir)
	if err != nil {
		return "", wrapPermission(err)
	}
	if len(entries) == 0 {
		return dir + " is empty.", nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	lines := []string{fmt.Sprintf("Contents of %s (%d items):\n", filepath.Base(dir), len(entries))}
	for _, e := range limit(entries, s.maxResults) {
		if e.IsDir() {
			lines = append(lines, fmt.Sprintf("  \U0001f4c1 %s/", e.Name()))
		} else {
			lines = append(lines, fmt.Sprintf("  \U0001f4c4 %s (%s)", e.Name(), size(e.Size())))
		}
	}
	return strings.Join(more(lines, len(entries), s.maxResults), "\n"), nil
}

// walk collects regular files below dir accepted by keep, largest first.
// Unreadable subdirectories are skipped; an unreadable root is an error.
func (t *Talent) walk(dir string, keep func(name string, size int64) bool) ([]found, error) {
	var hits []found
	err := afero.Walk(t.fs, dir, func(path string, fi fs.FileInfo, err error) error {
		if err != nil {
			if path == dir {
				return wrapPermission(err)
			}
			t.logger.Debug("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if !fi.Mode().IsRegular() || !keep(fi.Name(), fi.Size()) {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		hits = append(hits, found{rel: rel, size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].size > hits[j].size })
	return hits, nil
}

func wrapPermission(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return errors.Wrap(errPermission, err.Error())
	}
	return err
}

func size(n int64) string {
	if n < mb {
		return fmt.Sprintf("%.0f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/mb)
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func more(lines []string, total, shown int) []string {
	if total > shown {
		lines = append(lines, fmt.Sprintf("\n  ...and %d more", total-shown))
	}
	return lines
}
