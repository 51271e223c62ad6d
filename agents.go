package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/muhammadolammi/careeragent/internal/agents"
	"github.com/muhammadolammi/careeragent/internal/career"
	"github.com/muhammadolammi/careeragent/internal/tools"
)

const agentName = "career_agent"

func newModel(ctx context.Context, cfg Config) (agents.Model, error) {
	switch cfg.LLMBackend {
	case backendADK:
		return agents.NewAgentModel(ctx, cfg.GoogleAPIKey, cfg.GeminiModel, agentName)
	case backendGenAI:
		return agents.NewGenAIModel(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown LLM backend %q", cfg.LLMBackend)
	}
}

// newCareerAgent builds the model, search and scrape collaborators and
// compiles the workflows.
func newCareerAgent(ctx context.Context, cfg Config, logger *slog.Logger) (*career.Agent, error) {
	model, err := newModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	search := &tools.JobSearch{
		Provider:   tools.NewTavilyClient(cfg.TavilyAPIKey),
		MaxResults: cfg.SearchMaxResults,
		Region:     cfg.SearchRegion,
		Logger:     logger,
	}
	scraper := &tools.Scraper{
		Loader:   tools.NewHTTPLoader(cfg.ScrapeTimeout),
		MaxChars: cfg.ScrapeMaxChars,
	}
	return career.NewAgent(model, search, scraper, career.Options{
		Parallelism:          cfg.Parallelism,
		AbortOnScrapeFailure: cfg.AbortOnScrapeFailure,
		Logger:               logger,
	})
}
