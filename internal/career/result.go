package career

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/muhammadolammi/careeragent/internal/workflow"
)

const snippetChars = 150

// JobLink is a search hit as shown to the user.
type JobLink struct {
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Result is the part of the final state a caller sees.
type Result struct {
	Mode           Mode      `json:"mode"`
	GapAnalysis    string    `json:"gap_analysis,omitempty"`
	CoverLetter    string    `json:"cover_letter,omitempty"`
	ProfileSummary string    `json:"profile_summary,omitempty"`
	SearchQuery    string    `json:"search_query,omitempty"`
	Jobs           []JobLink `json:"jobs"`
	SelectedJobURL string    `json:"selected_job_url,omitempty"`
	JobPageURL     string    `json:"job_page_url,omitempty"`
	ScrapeError    string    `json:"scrape_error,omitempty"`
}

func newResult(mode Mode, s workflow.State) *Result {
	r := &Result{
		Mode:           mode,
		GapAnalysis:    s.GapAnalysis,
		CoverLetter:    s.FinalCoverLetter,
		ProfileSummary: s.ProfileSummary,
		SearchQuery:    s.SearchQuery(),
		Jobs:           make([]JobLink, 0, len(s.FoundJobResults)),
		SelectedJobURL: s.SelectedJobURL,
		JobPageURL:     s.JobDescription.URL,
	}
	if !s.JobDescription.OK {
		r.ScrapeError = s.JobDescription.Reason
	}
	for _, j := range s.FoundJobResults {
		r.Jobs = append(r.Jobs, JobLink{URL: j.URL, Snippet: snippet(j.Content)})
	}
	return r
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= snippetChars {
		return s
	}
	return string([]rune(s)[:snippetChars]) + "..."
}

// Markdown renders the result for a terminal.
func (r *Result) Markdown() string {
	var sb strings.Builder
	switch r.Mode {
	case ModeGapAnalysis:
		sb.WriteString("# Deep Dive Analysis\n\n")
		if r.ScrapeError != "" {
			fmt.Fprintf(&sb, "> Warning: the job page %s could not be read (%s).\n\n", r.JobPageURL, r.ScrapeError)
		}
		sb.WriteString(r.GapAnalysis)
		sb.WriteString("\n\n# Similar Opportunities\n\n")
		fmt.Fprintf(&sb, "**AI Search Query:** `%s`\n\n", r.SearchQuery)
		if len(r.Jobs) == 0 {
			sb.WriteString("No additional similar jobs found.\n")
		}
		for _, j := range r.Jobs {
			fmt.Fprintf(&sb, "- [Open Job Link](%s)\n  %s\n", j.URL, j.Snippet)
		}
	case ModeCoverLetter:
		sb.WriteString("# Cover Letter\n\n")
		if r.ScrapeError != "" {
			fmt.Fprintf(&sb, "> Warning: the job page %s could not be read (%s).\n\n", r.JobPageURL, r.ScrapeError)
		}
		sb.WriteString(r.CoverLetter)
		sb.WriteString("\n\n# Search Log\n\n")
		fmt.Fprintf(&sb, "**Query:** `%s`\n\n", r.SearchQuery)
		for i, j := range r.Jobs {
			marker := ""
			if j.URL == r.SelectedJobURL {
				marker = " (selected)"
			}
			fmt.Fprintf(&sb, "%d. %s%s\n", i+1, j.URL, marker)
		}
		if r.SelectedJobURL != "" {
			fmt.Fprintf(&sb, "\n**Selected:** %s\n", r.SelectedJobURL)
		}
	}
	return sb.String()
}
