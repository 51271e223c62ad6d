package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// Every node completes at temperature 0 so reruns stay comparable.
const temperature float32 = 0

func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{Temperature: genai.Ptr(temperature)}
}

var ErrEmptyResponse = errors.New("empty model response")

// Model completes a single prompt.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenAIModel calls Gemini directly.
type GenAIModel struct {
	client *genai.Client
	name   string
}

func NewGenAIModel(ctx context.Context, apiKey, name string) (*GenAIModel, error) {
	if name == "" {
		name = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAIModel{client: client, name: name}, nil
}

func (m *GenAIModel) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.name, genai.Text(prompt), generationConfig())
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// AgentModel runs prompts through an ADK agent. Every call gets its own
// in-memory session, so concurrent branches never share history.
type AgentModel struct {
	appName  string
	runner   *runner.Runner
	sessions session.Service
}

func NewAgentModel(ctx context.Context, apiKey, name, agentName string) (*AgentModel, error) {
	if name == "" {
		name = DefaultModel
	}
	model, err := gemini.NewModel(ctx, name, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %v", err)
	}

	careerAgent, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Career assistant for resume and job analysis",
		Instruction: agentInstruction,

		GenerateContentConfig: generationConfig(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %v", err)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        careerAgent.Name(),
		Agent:          careerAgent,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %v", err)
	}
	return &AgentModel{appName: careerAgent.Name(), runner: r, sessions: sessions}, nil
}

func (m *AgentModel) Complete(ctx context.Context, prompt string) (string, error) {
	created, err := m.sessions.Create(ctx, &session.CreateRequest{
		AppName:   m.appName,
		UserID:    "careeragent",
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	sess := created.Session
	defer func() {
		_ = m.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   sess.AppName(),
			UserID:    sess.UserID(),
			SessionID: sess.ID(),
		})
	}()

	stream := m.runner.Run(ctx, sess.UserID(), sess.ID(), &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", err
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}
	if strings.TrimSpace(output) == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}
