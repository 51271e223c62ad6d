package career

import (
	"context"

	"github.com/muhammadolammi/careeragent/internal/tools"
	"github.com/muhammadolammi/careeragent/internal/workflow"
)

func researcherNode(search *tools.JobSearch) workflow.Node {
	return workflow.Node{
		Name:   "researcher",
		Writes: []workflow.Field{workflow.FieldFoundJobResults},
		Run: func(ctx context.Context, s workflow.State) (workflow.Update, error) {
			return workflow.Update{
				workflow.FieldFoundJobResults: search.Search(ctx, s.SearchQuery(), s.Region),
			}, nil
		},
	}
}

// scraperNode reads the job the selector picked, or the caller's target
// URL when there is no selector in the graph.
func scraperNode(scraper *tools.Scraper) workflow.Node {
	return workflow.Node{
		Name:   "scraper",
		Writes: []workflow.Field{workflow.FieldJobDescription},
		Run: func(ctx context.Context, s workflow.State) (workflow.Update, error) {
			target := s.SelectedJobURL
			if target == "" {
				target = s.TargetURL
			}
			return workflow.Update{
				workflow.FieldJobDescription: scraper.Scrape(ctx, target),
			}, nil
		},
	}
}
