package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/prepforge/mockexam-backend/internal/model"
)

// ErrAnalysisMismatch reports an analysis response whose length does not
// match the question list. It fails the affected section only.
var ErrAnalysisMismatch = fmt.Errorf("analysis response length mismatch")

// Client wraps an OpenAI-compatible chat completion API for question
// generation and post-exam analysis.
type Client struct {
	api   *openai.Client
	model string
	log   zerolog.Logger
}

// New creates a client. baseURL may be empty for the default endpoint.
func New(baseURL, apiKey, modelName string, log zerolog.Logger) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
		log:   log.With().Str("component", "llm_client").Logger(),
	}
}

// sectionWire is the generation response shape before validation.
type sectionWire struct {
	Name  string              `json:"name"`
	Items []model.SectionItem `json:"items"`
}

// GenerateSection produces one exam section from the source material.
// The section name and time limit come from the caller; the model only
// supplies content.
func (c *Client) GenerateSection(ctx context.Context, spec model.SectionSpec, sourceText string) (model.Section, error) {
	raw, err := c.complete(ctx, buildSectionPrompt(spec, sourceText), 0.7)
	if err != nil {
		return model.Section{}, fmt.Errorf("generate section %q: %w", spec.Name, err)
	}

	text, err := ExtractJSON(raw)
	if err != nil {
		return model.Section{}, fmt.Errorf("generate section %q: %w (raw: %.200s)", spec.Name, err, raw)
	}

	var w sectionWire
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return model.Section{}, fmt.Errorf("parse section %q: %w", spec.Name, err)
	}

	section := model.Section{
		Name:             spec.Name,
		TimeLimitMinutes: spec.TimeLimitMinutes,
		Items:            w.Items,
	}
	if section.QuestionCount() == 0 {
		return model.Section{}, fmt.Errorf("generate section %q: model returned no questions", spec.Name)
	}
	return section, nil
}

// AnalyzeQuestions returns one explanation/difficulty entry per question,
// same order. A length mismatch is a hard error.
func (c *Client) AnalyzeQuestions(ctx context.Context, questions []model.FlatQuestion) ([]model.QuestionAnalysis, error) {
	raw, err := c.complete(ctx, buildAnalysisPrompt(questions), 0.3)
	if err != nil {
		return nil, fmt.Errorf("analyze questions: %w", err)
	}

	text, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("analyze questions: %w (raw: %.200s)", err, raw)
	}

	var analyses []model.QuestionAnalysis
	if err := json.Unmarshal([]byte(text), &analyses); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	if len(analyses) != len(questions) {
		return nil, fmt.Errorf("%w: got %d entries for %d questions", ErrAnalysisMismatch, len(analyses), len(questions))
	}
	return analyses, nil
}

func (c *Client) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("AI API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	c.log.Debug().Int("len", len(raw)).Msg("AI response received")
	return raw, nil
}
