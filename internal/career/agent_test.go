package career

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadolammi/careeragent/internal/agents"
	"github.com/muhammadolammi/careeragent/internal/tools"
	"github.com/muhammadolammi/careeragent/internal/workflow"
)

// scriptedModel answers each prompt kind with a canned response.
type scriptedModel struct {
	mu      sync.Mutex
	calls   atomic.Int32
	prompts []string
	pick    string
}

func (m *scriptedModel) Complete(_ context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	switch {
	case strings.Contains(prompt, `"search_query": string`):
		return "```json\n{\"overview\":\"Backend engineer, 5 years.\",\"search_query\":\"backend engineer jobs\"}\n```", nil
	case strings.Contains(prompt, "Job Hunt Expert"):
		return m.pick, nil
	case strings.Contains(prompt, "gap analysis"):
		return "## Match Score\n72\n\n## Gaps\nKubernetes", nil
	case strings.Contains(prompt, "cover letter"):
		return "Dear Hiring Manager,\nI am a great fit.", nil
	}
	return "", fmt.Errorf("unexpected prompt: %.40s", prompt)
}

type providerFunc func(ctx context.Context, query string, maxResults int, region string) ([]workflow.SearchResult, error)

func (f providerFunc) Search(ctx context.Context, query string, maxResults int, region string) ([]workflow.SearchResult, error) {
	return f(ctx, query, maxResults, region)
}

func fixedResults(n int) providerFunc {
	return func(_ context.Context, _ string, maxResults int, _ string) ([]workflow.SearchResult, error) {
		var out []workflow.SearchResult
		for i := 0; i < n; i++ {
			out = append(out, workflow.SearchResult{
				URL:     fmt.Sprintf("https://jobs.example/%d", i),
				Content: strings.Repeat("snippet ", 40),
			})
		}
		return out, nil
	}
}

func jobServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><main><h1>Backend Engineer</h1><p>Go, Postgres, Kubernetes.</p></main></body></html>`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAgent(t *testing.T, model agents.Model, provider tools.Searcher, opts Options) *Agent {
	t.Helper()
	a, err := NewAgent(model,
		&tools.JobSearch{Provider: provider, MaxResults: 5},
		&tools.Scraper{Loader: tools.NewHTTPLoader(2 * time.Second), MaxChars: tools.DefaultScrapeMaxChars},
		opts,
	)
	require.NoError(t, err)
	return a
}

func TestAgent_GapAnalysis(t *testing.T) {
	srv := jobServer(t)
	model := &scriptedModel{}
	a := newTestAgent(t, model, fixedResults(8), Options{Parallelism: 2})

	res, err := a.Run(context.Background(), Input{
		Mode:       ModeGapAnalysis,
		ResumeText: "Jane Doe, 5 years backend engineering",
		TargetURL:  srv.URL + "/job/42",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.GapAnalysis)
	assert.Equal(t, "backend engineer jobs", res.SearchQuery)
	assert.LessOrEqual(t, len(res.Jobs), 5)
	assert.Empty(t, res.ScrapeError)
	assert.Empty(t, res.CoverLetter)
	for _, j := range res.Jobs {
		assert.LessOrEqual(t, len([]rune(j.Snippet)), snippetChars+3)
	}

	var analysisPrompt string
	for _, p := range model.prompts {
		if strings.Contains(p, "gap analysis") {
			analysisPrompt = p
		}
	}
	assert.Contains(t, analysisPrompt, "Go, Postgres, Kubernetes.")
	assert.Contains(t, analysisPrompt, "Jane Doe")
}

func TestAgent_GapAnalysisSequentialMatchesConcurrent(t *testing.T) {
	srv := jobServer(t)
	in := Input{Mode: ModeGapAnalysis, ResumeText: "Jane Doe", TargetURL: srv.URL}

	seq, err := newTestAgent(t, &scriptedModel{}, fixedResults(3), Options{Parallelism: 1}).Run(context.Background(), in)
	require.NoError(t, err)
	par, err := newTestAgent(t, &scriptedModel{}, fixedResults(3), Options{Parallelism: 4}).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestAgent_EmptyResumeFailsBeforeAnyNode(t *testing.T) {
	model := &scriptedModel{}
	var searched atomic.Bool
	provider := providerFunc(func(context.Context, string, int, string) ([]workflow.SearchResult, error) {
		searched.Store(true)
		return nil, nil
	})
	a := newTestAgent(t, model, provider, Options{})

	_, err := a.Run(context.Background(), Input{Mode: ModeGapAnalysis, ResumeText: "  ", TargetURL: "https://example.com/job/42"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, model.calls.Load())
	assert.False(t, searched.Load())
}

func TestAgent_SearchFailureStillAnalyzes(t *testing.T) {
	srv := jobServer(t)
	failing := providerFunc(func(context.Context, string, int, string) ([]workflow.SearchResult, error) {
		return nil, errors.New("search provider down")
	})
	a := newTestAgent(t, &scriptedModel{}, failing, Options{Parallelism: 2})

	res, err := a.Run(context.Background(), Input{Mode: ModeGapAnalysis, ResumeText: "Jane Doe", TargetURL: srv.URL})
	require.NoError(t, err)
	assert.NotNil(t, res.Jobs)
	assert.Empty(t, res.Jobs)
	assert.NotEmpty(t, res.GapAnalysis)
	assert.Contains(t, res.Markdown(), "No additional similar jobs found.")
}

func TestAgent_UnreachableTargetStillAnalyzes(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	target := dead.URL + "/job/42"
	dead.Close()

	model := &scriptedModel{}
	a := newTestAgent(t, model, fixedResults(2), Options{})

	res, err := a.Run(context.Background(), Input{Mode: ModeGapAnalysis, ResumeText: "Jane Doe", TargetURL: target})
	require.NoError(t, err)
	assert.NotEmpty(t, res.GapAnalysis)
	assert.NotEmpty(t, res.ScrapeError)
	assert.Equal(t, target, res.JobPageURL)

	var analysisPrompt string
	for _, p := range model.prompts {
		if strings.Contains(p, "gap analysis") {
			analysisPrompt = p
		}
	}
	assert.Contains(t, analysisPrompt, "Error in scraping "+target)
}

func TestAgent_UnreachableTargetAbortsWhenConfigured(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	target := dead.URL
	dead.Close()

	a := newTestAgent(t, &scriptedModel{}, fixedResults(2), Options{AbortOnScrapeFailure: true})
	res, err := a.Run(context.Background(), Input{Mode: ModeGapAnalysis, ResumeText: "Jane Doe", TargetURL: target})
	require.ErrorIs(t, err, agents.ErrScrapeFailed)
	assert.Nil(t, res)

	var nodeErr *workflow.NodeExecutionError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "analyzer", nodeErr.Node)
}

func TestAgent_CoverLetterFromQuery(t *testing.T) {
	srv := jobServer(t)
	var gotQuery string
	provider := providerFunc(func(_ context.Context, q string, _ int, _ string) ([]workflow.SearchResult, error) {
		gotQuery = q
		return []workflow.SearchResult{
			{URL: "https://blog.example/top-10", Content: "listicle"},
			{URL: srv.URL + "/job/7", Content: "Backend Engineer"},
		}, nil
	})
	model := &scriptedModel{pick: srv.URL + "/job/7"}
	a := newTestAgent(t, model, provider, Options{})

	in := Input{Mode: ModeCoverLetter, ResumeText: "Jane Doe", SearchQuery: "go backend engineer berlin"}
	assert.Equal(t, "researcher", a.Workflow(in).Entry())

	res, err := a.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "go backend engineer berlin", gotQuery)
	assert.Equal(t, srv.URL+"/job/7", res.SelectedJobURL)
	assert.Equal(t, "Dear Hiring Manager,\nI am a great fit.", res.CoverLetter)
	assert.Empty(t, res.ProfileSummary)
	assert.Contains(t, res.Markdown(), srv.URL+"/job/7 (selected)")
}

func TestAgent_SearchUsesRunRegion(t *testing.T) {
	srv := jobServer(t)
	var gotRegion string
	provider := providerFunc(func(_ context.Context, _ string, _ int, region string) ([]workflow.SearchResult, error) {
		gotRegion = region
		return []workflow.SearchResult{{URL: srv.URL, Content: "Backend Engineer"}}, nil
	})
	a := newTestAgent(t, &scriptedModel{pick: srv.URL}, provider, Options{})

	_, err := a.Run(context.Background(), Input{
		Mode:        ModeCoverLetter,
		ResumeText:  "Jane Doe",
		SearchQuery: "go",
		Region:      "canada",
	})
	require.NoError(t, err)
	assert.Equal(t, "canada", gotRegion)
}

func TestAgent_CoverLetterFromResumeOnly(t *testing.T) {
	srv := jobServer(t)
	var gotQuery string
	provider := providerFunc(func(_ context.Context, q string, _ int, _ string) ([]workflow.SearchResult, error) {
		gotQuery = q
		return []workflow.SearchResult{{URL: srv.URL, Content: "Backend Engineer"}}, nil
	})
	a := newTestAgent(t, &scriptedModel{pick: srv.URL}, provider, Options{})

	in := Input{Mode: ModeCoverLetter, ResumeText: "Jane Doe"}
	assert.Equal(t, "profiler", a.Workflow(in).Entry())

	res, err := a.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "backend engineer jobs", gotQuery)
	assert.Equal(t, "Backend engineer, 5 years.", res.ProfileSummary)
	assert.NotEmpty(t, res.CoverLetter)
}

func TestAgent_CoverLetterWithoutSearchResults(t *testing.T) {
	a := newTestAgent(t, &scriptedModel{}, fixedResults(0), Options{})
	_, err := a.Run(context.Background(), Input{Mode: ModeCoverLetter, ResumeText: "Jane Doe", SearchQuery: "q"})
	require.ErrorIs(t, err, agents.ErrNoJobsFound)
}

func TestAgent_ProfileParseErrorSurfaces(t *testing.T) {
	bad := modelFunc(func(context.Context, string) (string, error) { return "I cannot help with that.", nil })
	a := newTestAgent(t, bad, fixedResults(1), Options{Parallelism: 2})

	_, err := a.Run(context.Background(), Input{Mode: ModeGapAnalysis, ResumeText: "Jane Doe", TargetURL: "https://example.com/job/42"})
	require.ErrorIs(t, err, agents.ErrProfileParse)
	var nodeErr *workflow.NodeExecutionError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "profiler", nodeErr.Node)
}

type modelFunc func(ctx context.Context, prompt string) (string, error)

func (f modelFunc) Complete(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }
