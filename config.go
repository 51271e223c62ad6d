package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"

	"github.com/muhammadolammi/careeragent/internal/agents"
	"github.com/muhammadolammi/careeragent/internal/tools"
)

const (
	backendGenAI = "genai"
	backendADK   = "adk"
)

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Config is read from the environment (and a .env file, when present).
type Config struct {
	GoogleAPIKey         string
	GeminiModel          string
	LLMBackend           string
	TavilyAPIKey         string
	SearchMaxResults     int
	SearchRegion         string
	ScrapeMaxChars       int
	ScrapeTimeout        time.Duration
	Parallelism          int
	AbortOnScrapeFailure bool

	DBURL       string
	RabbitMQURL string
	R2          R2Config
	WorkerCount int
}

func loadConfig() (Config, error) {
	abort, err := parseBool("ABORT_ON_SCRAPE_FAILURE", env.Str("ABORT_ON_SCRAPE_FAILURE", "false"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		GoogleAPIKey:         env.Str("GOOGLE_API_KEY", ""),
		GeminiModel:          env.Str("GEMINI_MODEL", agents.DefaultModel),
		LLMBackend:           strings.ToLower(env.Str("LLM_BACKEND", backendGenAI)),
		TavilyAPIKey:         env.Str("TAVILY_API_KEY", ""),
		SearchMaxResults:     env.Int("SEARCH_MAX_RESULTS", tools.DefaultMaxResults),
		SearchRegion:         env.Str("SEARCH_REGION", ""),
		ScrapeMaxChars:       env.Int("SCRAPE_MAX_CHARS", tools.DefaultScrapeMaxChars),
		ScrapeTimeout:        env.Duration("SCRAPE_TIMEOUT", 20*time.Second),
		Parallelism:          env.Int("WORKFLOW_PARALLELISM", 2),
		AbortOnScrapeFailure: abort,

		DBURL:       env.Str("DB_URL", ""),
		RabbitMQURL: env.Str("RABBITMQ_URL", ""),
		R2: R2Config{
			AccountID: env.Str("R2_ACCCOUNT_ID", ""),
			Bucket:    env.Str("R2_BUCKET", ""),
			AccessKey: env.Str("R2_ACCESS_KEY", ""),
			SecretKey: env.Str("R2_SECRET_KEY", ""),
		},
		WorkerCount: env.Int("WORKER_COUNT", 3),
	}
	return cfg, nil
}

func parseBool(name, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return b, nil
}

// validateAgent checks the settings every command needs.
func (c Config) validateAgent() error {
	var errs []error
	if c.GoogleAPIKey == "" {
		errs = append(errs, errors.New("empty GOOGLE_API_KEY in environment"))
	}
	if c.TavilyAPIKey == "" {
		errs = append(errs, errors.New("empty TAVILY_API_KEY in environment"))
	}
	if c.LLMBackend != backendGenAI && c.LLMBackend != backendADK {
		errs = append(errs, fmt.Errorf("LLM_BACKEND must be %q or %q, got %q", backendGenAI, backendADK, c.LLMBackend))
	}
	return errors.Join(errs...)
}

// validateWorker adds the queue, database and storage settings.
func (c Config) validateWorker() error {
	errs := []error{c.validateAgent()}
	required := map[string]string{
		"DB_URL":         c.DBURL,
		"RABBITMQ_URL":   c.RabbitMQURL,
		"R2_ACCCOUNT_ID": c.R2.AccountID,
		"R2_BUCKET":      c.R2.Bucket,
		"R2_ACCESS_KEY":  c.R2.AccessKey,
		"R2_SECRET_KEY":  c.R2.SecretKey,
	}
	for _, name := range []string{"DB_URL", "RABBITMQ_URL", "R2_ACCCOUNT_ID", "R2_BUCKET", "R2_ACCESS_KEY", "R2_SECRET_KEY"} {
		if required[name] == "" {
			errs = append(errs, fmt.Errorf("empty %s in environment", name))
		}
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount))
	}
	return errors.Join(errs...)
}
