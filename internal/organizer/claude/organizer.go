package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"acordex/internal/config"
	"acordex/internal/domain"
	"acordex/internal/organizer"
	"acordex/internal/port"
)

const defaultModel = "claude-haiku-4-5-20251001"

// Organizer implements port.Organizer using the Anthropic Messages API.
type Organizer struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewOrganizer creates a Claude-backed organizer from the organizer config.
func NewOrganizer(cfg *config.OrganizerConfig) *Organizer {
	return newOrganizer(cfg)
}

// NewOrganizerWithBaseURL creates an organizer pointing at a custom API base URL (for testing).
func NewOrganizerWithBaseURL(cfg *config.OrganizerConfig, baseURL string) *Organizer {
	return newOrganizer(cfg, option.WithBaseURL(baseURL))
}

func newOrganizer(cfg *config.OrganizerConfig, extra ...option.RequestOption) *Organizer {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	opts := append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}, extra...)
	return &Organizer{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Model returns the model name sent with every request.
func (o *Organizer) Model() string { return o.model }

func (o *Organizer) Organize(ctx context.Context, input port.OrganizeInput) (*domain.OrganizedResult, error) {
	if input.IsEmpty() {
		return organizer.EmptyResult(), nil
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(o.model),
		MaxTokens:   o.maxTokens,
		System:      []sdk.TextBlockParam{{Text: organizer.SystemPrompt}},
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(organizer.BuildPrompt(input)))},
		Temperature: sdk.Float(0),
	}

	msg, err := o.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			retryAfter := 0
			if apiErr.Response != nil {
				retryAfter = organizer.ParseRetryAfterHeader(apiErr.Response.Header.Get("Retry-After"))
			}
			return nil, organizer.NewRateLimitError("claude", eris.Wrap(err, "anthropic: create message"), retryAfter)
		}
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	if string(msg.StopReason) == "max_tokens" {
		return nil, eris.New("anthropic: output truncated (stop_reason: max_tokens)")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from API: no text content")
	}

	result, err := organizer.ParseResult(text.String(), input.Mode)
	if err != nil {
		return nil, err
	}
	result.TokensUsed = domain.TokenUsage{
		Prompt:     int(msg.Usage.InputTokens),
		Completion: int(msg.Usage.OutputTokens),
		Total:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}
	return result, nil
}
