package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/muhammadolammi/careeragent/internal/workflow"
)

var ErrNoJobsFound = errors.New("no jobs found")

type Selector struct {
	Model Model
}

// Select asks the model for the best listing among results. The answer is
// used as a URL without validation; an empty answer falls back to the top
// ranked result.
func (s *Selector) Select(ctx context.Context, query string, results []workflow.SearchResult) (string, error) {
	if len(results) == 0 {
		return "", ErrNoJobsFound
	}

	raw, err := s.Model.Complete(ctx, fmt.Sprintf(selectorPrompt, query, optionsText(results)))
	if err != nil {
		return "", fmt.Errorf("selector model call: %w", err)
	}

	chosen := strings.Trim(strings.TrimSpace(raw), "`<>\"'")
	if chosen == "" {
		return results[0].URL, nil
	}
	return chosen, nil
}

func optionsText(results []workflow.SearchResult) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. URL: %s\n Snippet: %s\n\n", i+1, r.URL, r.Content)
	}
	return sb.String()
}

func (s *Selector) Node() workflow.Node {
	return workflow.Node{
		Name:   "selector",
		Writes: []workflow.Field{workflow.FieldSelectedJobURL},
		Run: func(ctx context.Context, st workflow.State) (workflow.Update, error) {
			url, err := s.Select(ctx, st.SearchQuery(), st.FoundJobResults)
			if err != nil {
				return nil, err
			}
			return workflow.Update{workflow.FieldSelectedJobURL: url}, nil
		},
	}
}
