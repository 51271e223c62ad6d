package career

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/muhammadolammi/careeragent/internal/agents"
	"github.com/muhammadolammi/careeragent/internal/tools"
	"github.com/muhammadolammi/careeragent/internal/workflow"
)

// Options tunes how runs execute.
type Options struct {
	Parallelism          int
	AbortOnScrapeFailure bool
	Logger               *slog.Logger
}

// Agent owns the compiled workflow variants and their collaborators.
type Agent struct {
	gapAnalysis        *workflow.Workflow
	coverLetter        *workflow.Workflow
	coverLetterProfile *workflow.Workflow
	parallelism        int
	logger             *slog.Logger
}

func NewAgent(model agents.Model, search *tools.JobSearch, scraper *tools.Scraper, opts Options) (*Agent, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	profiler := (&agents.Profiler{Model: model}).Node()
	selector := (&agents.Selector{Model: model}).Node()
	analyzer := (&agents.Analyzer{Model: model, AbortOnScrapeFailure: opts.AbortOnScrapeFailure}).Node()
	writer := (&agents.Writer{Model: model, AbortOnScrapeFailure: opts.AbortOnScrapeFailure}).Node()
	researcher := researcherNode(search)
	scrape := scraperNode(scraper)

	gap, err := workflow.New().
		AddNode(profiler).
		AddNode(researcher).
		AddNode(scrape).
		AddNode(analyzer).
		AddEdge("profiler", "researcher").
		AddEdge("profiler", "scraper").
		AddEdge("scraper", "analyzer").
		SetEntryPoint("profiler").
		Compile()
	if err != nil {
		return nil, fmt.Errorf("gap analysis workflow: %w", err)
	}

	letter, err := workflow.New().
		AddNode(researcher).
		AddNode(selector).
		AddNode(scrape).
		AddNode(writer).
		AddEdge("researcher", "selector").
		AddEdge("selector", "scraper").
		AddEdge("scraper", "writer").
		SetEntryPoint("researcher").
		Compile()
	if err != nil {
		return nil, fmt.Errorf("cover letter workflow: %w", err)
	}

	letterProfile, err := workflow.New().
		AddNode(profiler).
		AddNode(researcher).
		AddNode(selector).
		AddNode(scrape).
		AddNode(writer).
		AddEdge("profiler", "researcher").
		AddEdge("researcher", "selector").
		AddEdge("selector", "scraper").
		AddEdge("scraper", "writer").
		SetEntryPoint("profiler").
		Compile()
	if err != nil {
		return nil, fmt.Errorf("profiled cover letter workflow: %w", err)
	}

	return &Agent{
		gapAnalysis:        gap,
		coverLetter:        letter,
		coverLetterProfile: letterProfile,
		parallelism:        opts.Parallelism,
		logger:             logger,
	}, nil
}

// Workflow returns the variant that serves in. Cover letters start from
// the resume profile when the caller gave no search query.
func (a *Agent) Workflow(in Input) *workflow.Workflow {
	if in.Mode == ModeGapAnalysis {
		return a.gapAnalysis
	}
	if strings.TrimSpace(in.SearchQuery) == "" {
		return a.coverLetterProfile
	}
	return a.coverLetter
}

// Run validates in, executes the matching workflow and projects its state
// into a Result. Nothing is returned if any node fails.
func (a *Agent) Run(ctx context.Context, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	wf := a.Workflow(in)
	a.logger.Info("running workflow",
		slog.String("mode", string(in.Mode)),
		slog.String("entry", wf.Entry()),
	)

	final, err := wf.Run(ctx, workflow.State{
		ResumeText:     in.ResumeText,
		TargetURL:      strings.TrimSpace(in.TargetURL),
		JobSearchQuery: strings.TrimSpace(in.SearchQuery),
		Region:         in.Region,
	}, workflow.WithParallelism(a.parallelism), workflow.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return newResult(in.Mode, final), nil
}
