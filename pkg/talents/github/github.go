// Package github browses repositories, pull requests, issues and
// notifications through the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	gh "github.com/google/go-github/v66/github"
	"github.com/pkg/errors"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

var info = talent.Info{
	Name:        "github_talent",
	Description: "Check repository status, PRs, issues, and notifications via GitHub API",
	Keywords: []string{
		"github", "repo", "repository", "pull request", "pull requests",
		"issue", "issues", "pr", "prs", "commit", "commits",
		"github notifications", "my repos",
	},
	Exclusions: []string{
		"remind", "timer", "email", "note", "weather", "hue",
		"light", "search", "news", "todo", "task", "pomodoro",
	},
	Priority: 48,
}

var schema = talent.Schema{Fields: []talent.Field{
	talent.Password("access_token", "GitHub Personal Access Token"),
	talent.String("default_repo", "Default Repository (owner/repo)", ""),
	talent.Int("max_results", "Max Results", 10, 3, 50),
}}

const usage = "I can show notifications, list repos, PRs, issues, or commits. " +
	"Try: 'show my github repos' or 'list PRs for owner/repo'"

var (
	repoAfterWord = regexp.MustCompile(`(?:for|in|of|repo)\s+([\w.-]+/[\w.-]+)`)
	repoAnywhere  = regexp.MustCompile(`([\w.-]+/[\w.-]+)`)
)

type state struct {
	client      *gh.Client
	defaultRepo string
	maxResults  int
}

// Talent talks to GitHub with a personal access token.
type Talent struct {
	talent.Base
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
	st         atomic.Pointer[state]
}

// Option configures a Talent.
type Option func(*Talent)

// WithBaseURL targets a GitHub Enterprise or test server.
func WithBaseURL(u string) Option {
	return func(t *Talent) { t.baseURL = u }
}

// WithHTTPClient sets the transport used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(t *Talent) { t.httpClient = hc }
}

func New(logger *log.Logger, opts ...Option) *Talent {
	if logger == nil {
		logger = log.Default()
	}
	t := &Talent{Base: talent.NewBase(info), logger: logger.With("talent", info.Name)}
	for _, opt := range opts {
		opt(t)
	}
	t.apply(schema.Defaults())
	return t
}

func (t *Talent) ConfigSchema() talent.Schema { return schema }

func (t *Talent) Initialize(cfg talent.Config) error { return t.UpdateConfig(cfg) }

// UpdateConfig rebuilds the API client so a new token takes effect.
func (t *Talent) UpdateConfig(cfg talent.Config) error {
	t.apply(cfg)
	return nil
}

func (t *Talent) apply(cfg talent.Config) {
	s := &state{
		defaultRepo: strings.TrimSpace(cfg.String("default_repo")),
		maxResults:  cfg.Int("max_results"),
	}
	if token := strings.TrimSpace(cfg.String("access_token")); token != "" {
		s.client = gh.NewClient(t.httpClient).WithAuthToken(token)
		if t.baseURL != "" {
			if u, err := url.Parse(strings.TrimRight(t.baseURL, "/") + "/"); err == nil {
				s.client.BaseURL = u
			} else {
				t.logger.Warn("ignoring invalid GitHub base URL", "url", t.baseURL, "err", err)
			}
		}
	}
	t.st.Store(s)
}

func (t *Talent) Execute(ctx context.Context, cmd talent.Command) talent.Result {
	s := t.st.Load()
	if s.client == nil {
		return talent.FailErr(talent.Unavailable(
			"GitHub access token not configured. Set it in the GitHub talent settings (gear icon)."))
	}

	lower := strings.ToLower(strings.TrimSpace(cmd.Text))
	repo := extractRepo(cmd.Text, s.defaultRepo)
	needRepo := func(fn func(context.Context, *state, string) (string, error)) talent.Result {
		if repo == "" {
			return talent.FailErr(talent.InvalidInput("Which repository? Use format: owner/repo"))
		}
		return t.call(ctx, s, repo, fn)
	}

	switch {
	case strings.Contains(lower, "notification"):
		return t.call(ctx, s, "", t.notifications)
	case containsAny(lower, "my repo", "list repo", "my github repo"):
		return t.call(ctx, s, "", t.repos)
	case containsAny(lower, "pull request", "pr", "prs"):
		return needRepo(t.pulls)
	case strings.Contains(lower, "issue"):
		return needRepo(t.issues)
	case strings.Contains(lower, "commit"):
		return needRepo(t.commits)
	case repo != "":
		return t.call(ctx, s, repo, t.status)
	default:
		return talent.Fail(usage)
	}
}

func (t *Talent) call(ctx context.Context, s *state, repo string, fn func(context.Context, *state, string) (string, error)) talent.Result {
	msg, err := fn(ctx, s, repo)
	if err != nil {
		t.logger.Debug("github call failed", "repo", repo, "err", err)
		return talent.FailErr(classify(err, repo))
	}
	return talent.OK(msg, talent.Action{Action: "github", Target: repo})
}

func (t *Talent) notifications(ctx context.Context, s *state, _ string) (string, error) {
	ns, _, err := s.client.Activity.ListNotifications(ctx, &gh.NotificationListOptions{
		ListOptions: gh.ListOptions{PerPage: s.maxResults},
	})
	if err != nil {
		return "", err
	}
	ns = limit(ns, s.maxResults)
	if len(ns) == 0 {
		return "No unread GitHub notifications.", nil
	}

	lines := []string{fmt.Sprintf("GitHub Notifications (%d):\n", len(ns))}
	for _, n := range ns {
		reason := strings.ReplaceAll(n.GetReason(), "_", " ")
		lines = append(lines, fmt.Sprintf("  • [%s] %s (%s)", n.GetRepository().GetFullName(), n.GetSubject().GetTitle(), reason))
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Talent) repos(ctx context.Context, s *state, _ string) (string, error) {
	rs, _, err := s.client.Repositories.ListByAuthenticatedUser(ctx, &gh.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: s.maxResults},
	})
	if err != nil {
		return "", err
	}
	rs = limit(rs, s.maxResults)
	if len(rs) == 0 {
		return "No repositories found.", nil
	}

	lines := []string{fmt.Sprintf("Your repositories (showing %d):\n", len(rs))}
	for _, r := range rs {
		var b strings.Builder
		b.WriteString("  • " + r.GetFullName())
		if r.GetPrivate() {
			b.WriteString(" \U0001f512")
		}
		if lang := r.GetLanguage(); lang != "" {
			b.WriteString(" (" + lang + ")")
		}
		b.WriteString(" ")
		if stars := r.GetStargazersCount(); stars > 0 {
			fmt.Fprintf(&b, "\u2b50%d", stars)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Talent) pulls(ctx context.Context, s *state, repo string) (string, error) {
	owner, name := splitRepo(repo)
	prs, _, err := s.client.PullRequests.List(ctx, owner, name, &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: s.maxResults},
	})
	if err != nil {
		return "", err
	}
	prs = limit(prs, s.maxResults)
	if len(prs) == 0 {
		return fmt.Sprintf("No open pull requests in %s.", repo), nil
	}

	lines := []string{fmt.Sprintf("Open PRs in %s (%d):\n", repo, len(prs))}
	for _, pr := range prs {
		status := "\U0001f534"
		if pr.GetMergeable() {
			status = "\U0001f7e2"
		}
		lines = append(lines, fmt.Sprintf("  %s #%d: %s (by %s)", status, pr.GetNumber(), pr.GetTitle(), pr.GetUser().GetLogin()))
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Talent) issues(ctx context.Context, s *state, repo string) (string, error) {
	owner, name := splitRepo(repo)
	all, _, err := s.client.Issues.ListByRepo(ctx, owner, name, &gh.IssueListByRepoOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: s.maxResults},
	})
	if err != nil {
		return "", err
	}
	// The issues endpoint also returns pull requests.
	var issues []*gh.Issue
	for _, i := range limit(all, s.maxResults) {
		if !i.IsPullRequest() {
			issues = append(issues, i)
		}
	}
	if len(issues) == 0 {
		return fmt.Sprintf("No open issues in %s.", repo), nil
	}

	lines := []string{fmt.Sprintf("Open issues in %s (%d):\n", repo, len(issues))}
	for _, i := range issues {
		var labels []string
		for _, l := range limit(i.Labels, 3) {
			labels = append(labels, "["+l.GetName()+"]")
		}
		lines = append(lines, fmt.Sprintf("  • #%d: %s %s", i.GetNumber(), i.GetTitle(), strings.Join(labels, " ")))
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Talent) commits(ctx context.Context, s *state, repo string) (string, error) {
	owner, name := splitRepo(repo)
	cs, _, err := s.client.Repositories.ListCommits(ctx, owner, name, &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: s.maxResults},
	})
	if err != nil {
		return "", err
	}
	cs = limit(cs, s.maxResults)
	if len(cs) == 0 {
		return fmt.Sprintf("No commits found in %s.", repo), nil
	}

	lines := []string{fmt.Sprintf("Recent commits in %s:\n", repo)}
	for _, c := range cs {
		author := "unknown"
		if a := c.GetCommit().GetAuthor(); a != nil {
			author = a.GetName()
		}
		lines = append(lines, fmt.Sprintf("  %s %s (%s)", shortSHA(c.GetSHA()), firstLine(c.GetCommit().GetMessage(), 60), author))
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Talent) status(ctx context.Context, s *state, repo string) (string, error) {
	owner, name := splitRepo(repo)
	r, _, err := s.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return "", err
	}

	lines := []string{fmt.Sprintf("Repository: %s\n", r.GetFullName())}
	if d := r.GetDescription(); d != "" {
		lines = append(lines, fmt.Sprintf("  %s\n", d))
	}
	lines = append(lines,
		fmt.Sprintf("  \u2b50 Stars: %d", r.GetStargazersCount()),
		fmt.Sprintf("  \U0001f534 Open issues: %d", r.GetOpenIssuesCount()),
		fmt.Sprintf("  \U0001f501 Forks: %d", r.GetForksCount()),
	)
	if lang := r.GetLanguage(); lang != "" {
		lines = append(lines, "  \U0001f4bb Language: "+lang)
	}
	pushed := "N/A"
	if p := r.GetPushedAt(); !p.Time.IsZero() {
		pushed = p.Time.Format("2006-01-02 15:04")
	}
	lines = append(lines, "  \U0001f4c5 Last push: "+pushed)

	// Latest commit is decoration; the status is complete without it.
	if cs, _, err := s.client.Repositories.ListCommits(ctx, owner, name, &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	}); err == nil && len(cs) > 0 {
		lines = append(lines, "  \U0001f4dd Last commit: "+firstLine(cs[0].GetCommit().GetMessage(), 50))
	}
	return strings.Join(lines, "\n"), nil
}

// classify maps go-github errors onto talent errors.
func classify(err error, repo string) error {
	var rle *gh.RateLimitError
	var abuse *gh.AbuseRateLimitError
	if errors.As(err, &rle) || errors.As(err, &abuse) {
		return talent.RateLimited("GitHub")
	}
	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		switch er.Response.StatusCode {
		case http.StatusUnauthorized:
			return talent.NewError(talent.KindUnavailable, "GitHub rejected the access token. Update it in the GitHub talent settings.", err)
		case http.StatusNotFound:
			if repo != "" {
				return talent.NewError(talent.KindNotFound, "Repository not found: "+repo, err)
			}
		}
		return talent.Remote("GitHub API error: "+er.Message, err)
	}
	return talent.Remote("GitHub error: "+err.Error(), err)
}

func extractRepo(command, fallback string) string {
	if m := repoAfterWord.FindStringSubmatch(command); m != nil {
		return m[1]
	}
	if m := repoAnywhere.FindStringSubmatch(command); m != nil && len(m[1]) > 3 {
		return m[1]
	}
	return fallback
}

func splitRepo(repo string) (owner, name string) {
	owner, name, _ = strings.Cut(repo, "/")
	return owner, name
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func firstLine(msg string, n int) string {
	line, _, _ := strings.Cut(msg, "\n")
	if r := []rune(line); len(r) > n {
		return string(r[:n])
	}
	return line
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func containsAny(s string, subs ...string) bool {
	for _, p := range subs {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
