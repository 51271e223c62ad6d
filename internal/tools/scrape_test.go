package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobPage = `<!doctype html>
<html><head><title>Senior Go Engineer</title><script>var tracking = 1;</script></head>
<body>
  <nav><a href="/">Home</a><a href="/jobs">Jobs</a></nav>
  <main>
    <h1>Senior Go Engineer</h1>
    <p>We are hiring a backend engineer with 5+ years of Go experience.</p>
    <ul><li>Postgres</li><li>Kubernetes</li></ul>
  </main>
  <footer>Copyright ACME</footer>
</body></html>`

func TestHTTPLoader_ExtractsMainContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, jobPage)
	}))
	defer srv.Close()

	segments, err := NewHTTPLoader(5*time.Second).Load(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, segments, 1)

	text := segments[0]
	assert.Contains(t, text, "Senior Go Engineer")
	assert.Contains(t, text, "5+ years of Go experience")
	assert.Contains(t, text, "Kubernetes")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "Copyright ACME")
	assert.NotContains(t, text, "Home")
}

func TestHTTPLoader_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, jobPage)
	}))
	defer srv.Close()

	_, err := NewHTTPLoader(5*time.Second).Load(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, got.Get("User-Agent"), "Mozilla/")
	assert.NotEmpty(t, got.Get("Accept"))
	assert.NotEmpty(t, got.Get("Accept-Language"))
	assert.NotContains(t, got.Get("Accept-Encoding"), "br")
}

func TestHTTPLoader_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewHTTPLoader(5*time.Second).Load(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

type stubLoader struct {
	segments []string
	err      error
}

func (s stubLoader) Load(context.Context, string) ([]string, error) {
	return s.segments, s.err
}

func TestScraper_JoinsAndTrimsSegments(t *testing.T) {
	s := &Scraper{Loader: stubLoader{segments: []string{"\n  first part", "second part  \n"}}}
	got := s.Scrape(context.Background(), "https://example.com/job/42")

	require.True(t, got.OK)
	assert.Equal(t, "first part\n\nsecond part", got.Text)
	assert.Equal(t, "https://example.com/job/42", got.URL)
}

func TestScraper_Truncates(t *testing.T) {
	long := strings.Repeat("é", 40)
	s := &Scraper{Loader: stubLoader{segments: []string{long}}, MaxChars: 25}
	got := s.Scrape(context.Background(), "https://example.com")

	require.True(t, got.OK)
	assert.Equal(t, 25, utf8.RuneCountInString(got.Text))
}

func TestScraper_DefaultLimit(t *testing.T) {
	s := &Scraper{Loader: stubLoader{segments: []string{strings.Repeat("a", DefaultScrapeMaxChars+100)}}}
	got := s.Scrape(context.Background(), "https://example.com")
	assert.Len(t, got.Text, DefaultScrapeMaxChars)
}

func TestScraper_FailureNamesURL(t *testing.T) {
	s := &Scraper{Loader: stubLoader{err: errors.New("dial tcp: connection refused")}}
	got := s.Scrape(context.Background(), "https://unreachable.invalid/job")

	assert.False(t, got.OK)
	assert.Equal(t, "dial tcp: connection refused", got.Reason)
	assert.Contains(t, got.String(), "https://unreachable.invalid/job")
	assert.True(t, strings.HasPrefix(got.String(), "Error in scraping"))
}

func TestScraper_EmptyPage(t *testing.T) {
	s := &Scraper{Loader: stubLoader{segments: []string{"  ", ""}}}
	got := s.Scrape(context.Background(), "https://example.com")
	assert.False(t, got.OK)
	assert.NotEmpty(t, got.Reason)
}

func TestScraper_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/job/42"
	srv.Close()

	s := &Scraper{Loader: NewHTTPLoader(2 * time.Second), MaxChars: DefaultScrapeMaxChars}
	got := s.Scrape(context.Background(), url)
	assert.False(t, got.OK)
	assert.Contains(t, got.String(), url)
}
