package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

func newTalent(t *testing.T, cfg map[string]any) *Talent {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/notifications", reply(`[
		{"reason":"review_requested","repository":{"full_name":"octo/app"},"subject":{"title":"Add login"}}]`))
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		reply(`[
			{"full_name":"octo/app","private":true,"language":"Go","stargazers_count":12},
			{"full_name":"octo/notes","private":false,"stargazers_count":0}]`)(w, r)
	})
	mux.HandleFunc("/repos/octo/app/pulls", reply(`[
		{"number":7,"title":"Fix crash","mergeable":true,"user":{"login":"ana"}},
		{"number":8,"title":"WIP","user":{"login":"bo"}}]`))
	mux.HandleFunc("/repos/octo/app/issues", reply(`[
		{"number":3,"title":"Broken build","labels":[{"name":"bug"},{"name":"ci"}]},
		{"number":7,"title":"Fix crash","pull_request":{"url":"x"}}]`))
	mux.HandleFunc("/repos/octo/app/commits", reply(`[
		{"sha":"abcdef1234567","commit":{"message":"Bump deps\n\nlong body","author":{"name":"Ana"}}}]`))
	mux.HandleFunc("/repos/octo/app", reply(`{"full_name":"octo/app","description":"An app",
		"stargazers_count":12,"open_issues_count":2,"forks_count":1,"language":"Go",
		"pushed_at":"2024-05-01T10:30:00Z"}`))
	mux.HandleFunc("/repos/octo/limited", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "4102444800")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tl := New(nil, WithBaseURL(srv.URL))
	if cfg == nil {
		cfg = map[string]any{}
	}
	if _, ok := cfg["access_token"]; !ok {
		cfg["access_token"] = "secret"
	}
	require.NoError(t, tl.Initialize(schema.Resolve(cfg)))
	return tl
}

func run(tl *Talent, text string) talent.Result {
	return tl.Execute(context.Background(), talent.NewCommand(text))
}

func TestMissingToken(t *testing.T) {
	tl := New(nil)
	res := run(tl, "show my github repos")
	assert.False(t, res.Success)
	assert.Empty(t, res.Actions)
	assert.Equal(t, "GitHub access token not configured. Set it in the GitHub talent settings (gear icon).", res.Response)
}

func TestNotifications(t *testing.T) {
	res := run(newTalent(t, nil), "github notifications")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, "GitHub Notifications (1):\n\n  • [octo/app] Add login (review requested)", res.Response)
}

func TestRepos(t *testing.T) {
	res := run(newTalent(t, nil), "show my repos")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, "Your repositories (showing 2):\n\n"+
		"  • octo/app \U0001f512 (Go) \u2b5012\n"+
		"  • octo/notes ", res.Response)
}

func TestPulls(t *testing.T) {
	res := run(newTalent(t, nil), "list open pull requests for octo/app")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, "Open PRs in octo/app (2):\n\n"+
		"  \U0001f7e2 #7: Fix crash (by ana)\n"+
		"  \U0001f534 #8: WIP (by bo)", res.Response)
	assert.Equal(t, talent.Action{Action: "github", Target: "octo/app"}, res.Actions[0])
}

func TestIssuesSkipPullRequests(t *testing.T) {
	res := run(newTalent(t, nil), "open issues in octo/app")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, "Open issues in octo/app (1):\n\n  • #3: Broken build [bug] [ci]", res.Response)
}

func TestCommitsUseDefaultRepo(t *testing.T) {
	res := run(newTalent(t, map[string]any{"default_repo": "octo/app"}), "recent commits")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, "Recent commits in octo/app:\n\n  abcdef1 Bump deps (Ana)", res.Response)
}

func TestRepoStatus(t *testing.T) {
	res := run(newTalent(t, nil), "how is the repo octo/app")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, strings.Join([]string{
		"Repository: octo/app\n",
		"  An app\n",
		"  \u2b50 Stars: 12",
		"  \U0001f534 Open issues: 2",
		"  \U0001f501 Forks: 1",
		"  \U0001f4bb Language: Go",
		"  \U0001f4c5 Last push: 2024-05-01 10:30",
		"  \U0001f4dd Last commit: Bump deps",
	}, "\n"), res.Response)
}

func TestRepoRequired(t *testing.T) {
	res := run(newTalent(t, nil), "show open issues")
	assert.False(t, res.Success)
	assert.Equal(t, "Which repository? Use format: owner/repo", res.Response)
}

func TestUsageHint(t *testing.T) {
	res := run(newTalent(t, nil), "github")
	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Response, "I can show notifications"))
}

func TestErrors(t *testing.T) {
	tl := newTalent(t, nil)

	res := run(tl, "repo octo/missing")
	assert.False(t, res.Success)
	assert.Equal(t, "Repository not found: octo/missing", res.Response)

	res = run(tl, "repo octo/limited")
	assert.False(t, res.Success)
	assert.Equal(t, talent.Describe(talent.RateLimited("GitHub")), res.Response)
}

func TestExtractRepo(t *testing.T) {
	tests := []struct {
		in, fallback, want string
	}{
		{"prs for octo/app please", "", "octo/app"},
		{"status of golang/go", "x/y", "golang/go"},
		{"check kubernetes/kubernetes", "", "kubernetes/kubernetes"},
		{"check a/b", "def/repo", "def/repo"},
		{"show commits", "def/repo", "def/repo"},
		{"show commits", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, extractRepo(tt.in, tt.fallback))
		})
	}
}

func TestCanHandle(t *testing.T) {
	tl := New(nil)
	for _, text := range []string{"show my github repos", "list PRs", "any new issues", "latest commits"} {
		assert.True(t, tl.CanHandle(text), text)
	}
	// Substring matching is coarse: "pr" also appears in "pretty print".
	assert.True(t, tl.CanHandle("pretty print this"))
	for _, text := range []string{"remind me about the repo", "search github", "add a todo for the issue"} {
		assert.False(t, tl.CanHandle(text), text)
	}
	assert.Equal(t, "github_talent", tl.Info().Name)
	assert.Equal(t, 48, tl.Info().Priority)
	assert.Equal(t, 10, schema.Defaults().Int("max_results"))
}
