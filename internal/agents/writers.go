package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/muhammadolammi/careeragent/internal/workflow"
)

var ErrScrapeFailed = errors.New("job description could not be scraped")

// Analyzer compares a resume with a job description.
type Analyzer struct {
	Model Model
	// AbortOnScrapeFailure makes the node fail instead of analysing an
	// inline scrape error message.
	AbortOnScrapeFailure bool
}

func (a *Analyzer) Analyze(ctx context.Context, resume, jobDescription string) (string, error) {
	return complete(ctx, a.Model, fmt.Sprintf(gapAnalysisPrompt, jobDescription, resume))
}

func (a *Analyzer) Node() workflow.Node {
	return workflow.Node{
		Name:   "analyzer",
		Writes: []workflow.Field{workflow.FieldGapAnalysis},
		Run: func(ctx context.Context, s workflow.State) (workflow.Update, error) {
			if err := checkScrape(s.JobDescription, a.AbortOnScrapeFailure); err != nil {
				return nil, err
			}
			out, err := a.Analyze(ctx, s.ResumeText, s.JobDescriptionText())
			if err != nil {
				return nil, err
			}
			return workflow.Update{workflow.FieldGapAnalysis: out}, nil
		},
	}
}

// Writer drafts a cover letter for a job description.
type Writer struct {
	Model                Model
	AbortOnScrapeFailure bool
}

func (w *Writer) Write(ctx context.Context, resume, jobDescription string) (string, error) {
	return complete(ctx, w.Model, fmt.Sprintf(coverLetterPrompt, jobDescription, resume))
}

func (w *Writer) Node() workflow.Node {
	return workflow.Node{
		Name:   "writer",
		Writes: []workflow.Field{workflow.FieldFinalCoverLetter},
		Run: func(ctx context.Context, s workflow.State) (workflow.Update, error) {
			if err := checkScrape(s.JobDescription, w.AbortOnScrapeFailure); err != nil {
				return nil, err
			}
			out, err := w.Write(ctx, s.ResumeText, s.JobDescriptionText())
			if err != nil {
				return nil, err
			}
			return workflow.Update{workflow.FieldFinalCoverLetter: out}, nil
		},
	}
}

func checkScrape(d workflow.JobDescription, abort bool) error {
	if abort && !d.OK {
		return fmt.Errorf("%w: %s: %s", ErrScrapeFailed, d.URL, d.Reason)
	}
	return nil
}

func complete(ctx context.Context, m Model, prompt string) (string, error) {
	out, err := m.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
