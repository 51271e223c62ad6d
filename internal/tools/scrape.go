package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	stealth "github.com/anatolykoptev/go-stealth"

	"github.com/muhammadolammi/careeragent/internal/workflow"
)

const (
	DefaultScrapeMaxChars = 15000
	maxPageBytes          = 5 << 20
)

var errNoContent = errors.New("page has no text content")

// Loader fetches a page and returns its text split into segments.
type Loader interface {
	Load(ctx context.Context, url string) ([]string, error)
}

// HTTPLoader downloads HTML pages and keeps the primary content blocks.
type HTTPLoader struct {
	Client *http.Client
}

func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

var boilerplateSelectors = strings.Join([]string{
	"script", "style", "noscript", "iframe", "svg",
	"header", "footer", "nav", "aside", "form",
	".advertisement", ".ad", ".sidebar", ".cookie-banner",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
}, ", ")

// browserHeaders returns Chrome request headers with a rotating user agent.
// Accept-Encoding is left to the transport so bodies are decompressed.
func browserHeaders() map[string]string {
	headers := stealth.ChromeHeaders()
	headers["user-agent"] = stealth.RandomUserAgent()
	delete(headers, "accept-encoding")
	return headers
}

var spaceRe = regexp.MustCompile(`[ \t]+`)

func (l *HTTPLoader) Load(ctx context.Context, rawURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range browserHeaders() {
		req.Header.Set(k, v)
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find(boilerplateSelectors).Remove()

	blocks := doc.Find("article, main, [role=main]")
	if blocks.Length() == 0 {
		blocks = doc.Find("body")
	}

	var segments []string
	blocks.Each(func(_ int, s *goquery.Selection) {
		// Nested matches (an article inside main) would repeat text.
		if s.ParentsFiltered("article, main, [role=main]").Length() > 0 {
			return
		}
		if text := selectionText(s); text != "" {
			segments = append(segments, text)
		}
	})
	return segments, nil
}

// selectionText renders a block as markdown, falling back to its raw text.
func selectionText(s *goquery.Selection) string {
	markup, err := goquery.OuterHtml(s)
	if err == nil {
		if md, err := htmltomarkdown.ConvertString(markup); err == nil {
			return strings.TrimSpace(md)
		}
	}

	var lines []string
	for _, line := range strings.Split(s.Text(), "\n") {
		line = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Scraper turns a job page into a JobDescription.
type Scraper struct {
	Loader   Loader
	MaxChars int
}

// Scrape never returns an error: a failed fetch is reported through the
// OK and Reason fields. Successful text is trimmed and capped at MaxChars
// characters.
func (s *Scraper) Scrape(ctx context.Context, url string) workflow.JobDescription {
	segments, err := s.Loader.Load(ctx, url)
	if err != nil {
		return workflow.JobDescription{URL: url, Reason: err.Error()}
	}

	text := strings.TrimSpace(strings.Join(segments, "\n\n"))
	if text == "" {
		return workflow.JobDescription{URL: url, Reason: errNoContent.Error()}
	}

	limit := s.MaxChars
	if limit <= 0 {
		limit = DefaultScrapeMaxChars
	}
	return workflow.JobDescription{URL: url, OK: true, Text: truncateRunes(text, limit)}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
