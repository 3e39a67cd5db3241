package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	missiondomain "ascend/internal/modules/mission/domain"
	"ascend/internal/modules/suggest/domain"
	suggestout "ascend/internal/modules/suggest/port/out"
)

const systemPrompt = "You are a disciplined coach who plans small, concrete daily missions. " +
	"Always answer with a single JSON object and nothing else."

type OpenAIConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint; empty uses the public API.
	BaseURL string
}

type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

func NewOpenAIGenerator(cfg OpenAIConfig, logger zerolog.Logger) (suggestout.Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger.With().Str("component", "generator_openai").Str("model", cfg.Model).Logger(),
	}, nil
}

func (g *OpenAIGenerator) Name() string { return "openai" }

type suggestPayload struct {
	Missions []struct {
		Title     string `json:"title"`
		Category  string `json:"category"`
		Priority  string `json:"priority"`
		Rationale string `json:"rationale"`
	} `json:"missions"`
}

type quizPayload struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

func (g *OpenAIGenerator) Suggest(ctx context.Context, req domain.Request) ([]domain.Candidate, error) {
	categories := make([]string, 0, len(req.Categories))
	for _, c := range req.Categories {
		categories = append(categories, string(c))
	}
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Suggest %d missions for today. ", req.Count)
	fmt.Fprintf(&prompt, "Allowed categories: %s. ", strings.Join(categories, ", "))
	prompt.WriteString("Allowed priorities: low, medium, high, critical. ")
	if len(req.Existing) > 0 {
		fmt.Fprintf(&prompt, "Do not repeat these planned missions: %s. ", strings.Join(req.Existing, "; "))
	}
	prompt.WriteString(`Respond as {"missions":[{"title":"","category":"","priority":"","rationale":""}]}.`)

	var payload suggestPayload
	if err := g.complete(ctx, prompt.String(), &payload); err != nil {
		return nil, err
	}
	out := make([]domain.Candidate, 0, len(payload.Missions))
	for _, m := range payload.Missions {
		out = append(out, domain.Candidate{
			Title:     m.Title,
			Category:  missiondomain.Category(m.Category),
			Priority:  missiondomain.Priority(m.Priority),
			Rationale: m.Rationale,
		})
	}
	return out, nil
}

func (g *OpenAIGenerator) Quiz(ctx context.Context, concept string) (domain.QuizItem, error) {
	prompt := fmt.Sprintf("Write one multiple-choice question that checks understanding of %q. "+
		"Give four options. "+
		`Respond as {"prompt":"","options":["","","",""],"correct_index":0,"explanation":""}.`, concept)
	var payload quizPayload
	if err := g.complete(ctx, prompt, &payload); err != nil {
		return domain.QuizItem{}, err
	}
	return domain.QuizItem{
		Concept:      concept,
		Prompt:       payload.Prompt,
		Options:      payload.Options,
		CorrectIndex: payload.CorrectIndex,
		Explanation:  payload.Explanation,
	}, nil
}

func (g *OpenAIGenerator) complete(ctx context.Context, prompt string, out any) error {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.7,
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return errors.New("chat completion returned no choices")
	}
	g.logger.Debug().Str("finish_reason", string(resp.Choices[0].FinishReason)).Int("tokens", resp.Usage.TotalTokens).Msg("completion received")
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}
