package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"acordex/internal/config"
	"acordex/internal/domain"
	"acordex/internal/organizer"
	"acordex/internal/port"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

// Organizer implements port.Organizer using the OpenAI Chat Completions API.
type Organizer struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewOrganizer creates an OpenAI-backed organizer from the organizer config.
func NewOrganizer(cfg *config.OrganizerConfig) *Organizer {
	return newOrganizer(cfg, apiURL)
}

// NewOrganizerWithEndpoint creates an organizer pointing at a custom API endpoint (for testing).
func NewOrganizerWithEndpoint(cfg *config.OrganizerConfig, endpoint string) *Organizer {
	return newOrganizer(cfg, endpoint)
}

func newOrganizer(cfg *config.OrganizerConfig, endpoint string) *Organizer {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	// the per-call deadline comes from the caller's context
	return &Organizer{
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: maxTokens,
		endpoint:  endpoint,
		client:    &http.Client{},
	}
}

// Model returns the model name sent with every request.
func (o *Organizer) Model() string { return o.model }

func (o *Organizer) Organize(ctx context.Context, input port.OrganizeInput) (*domain.OrganizedResult, error) {
	if input.IsEmpty() {
		return organizer.EmptyResult(), nil
	}
	prompt := organizer.BuildPrompt(input)

	reqBody := map[string]interface{}{
		"model":                 o.model,
		"max_completion_tokens": o.maxTokens,
		"temperature":           0,
		"messages": []map[string]interface{}{
			{"role": "system", "content": organizer.SystemPrompt},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := organizer.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, organizer.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, input.Mode)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func parseResponse(body []byte, mode domain.OrganizeMode) (*domain.OrganizedResult, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	result, err := organizer.ParseResult(resp.Choices[0].Message.Content, mode)
	if err != nil {
		return nil, err
	}
	result.TokensUsed = domain.TokenUsage{
		Prompt:     resp.Usage.PromptTokens,
		Completion: resp.Usage.CompletionTokens,
		Total:      resp.Usage.TotalTokens,
	}
	return result, nil
}
