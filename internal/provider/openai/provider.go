package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"llmjobs/internal/models"
	"llmjobs/internal/provider"
)

const (
	opChat       = "chat"
	opListModels = "list_models"
)

// Config holds what the provider needs to reach an OpenAI-compatible API.
type Config struct {
	APIKey       string
	BaseURL      string
	Organization string
}

// Provider implements the Provider interface for OpenAI-compatible APIs.
type Provider struct {
	name   string
	client *goopenai.Client
}

// New creates a new OpenAI provider.
func New(name string, cfg Config, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.OrgID = cfg.Organization
	clientCfg.HTTPClient = client

	return &Provider{
		name:   name,
		client: goopenai.NewClientWithConfig(clientCfg),
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) ListModels(ctx context.Context) ([]models.UpstreamModel, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, provider.Wrap(p.name, opListModels, err)
	}

	result := make([]models.UpstreamModel, 0, len(list.Models))
	for _, m := range list.Models {
		result = append(result, models.UpstreamModel{
			ID:      m.ID,
			Object:  m.Object,
			Created: m.CreatedAt,
			OwnedBy: m.OwnedBy,
		})
	}
	return result, nil
}

func (p *Provider) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	payload, err := buildChatPayload(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, payload)
	if err != nil {
		return nil, provider.Wrap(p.name, opChat, err)
	}
	if len(resp.Choices) == 0 {
		return nil, provider.Wrap(p.name, opChat, provider.ErrEmptyResponse)
	}

	choice := resp.Choices[0]
	return &models.ChatResponse{
		ID:           resp.ID,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: models.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func buildChatPayload(req models.ChatRequest) (goopenai.ChatCompletionRequest, error) {
	if strings.TrimSpace(req.Model) == "" {
		return goopenai.ChatCompletionRequest{}, errors.New("model must not be empty")
	}
	if len(req.Messages) == 0 {
		return goopenai.ChatCompletionRequest{}, errors.New("at least one message is required")
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		converted, err := toOpenAIMessage(msg)
		if err != nil {
			return goopenai.ChatCompletionRequest{}, err
		}
		messages = append(messages, converted)
	}

	return goopenai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	}, nil
}

// toOpenAIMessage sets exactly one of Content and MultiContent; the client
// rejects messages carrying both.
func toOpenAIMessage(msg models.Message) (goopenai.ChatCompletionMessage, error) {
	role := msg.Role
	if role == "" {
		role = goopenai.ChatMessageRoleUser
	}

	if len(msg.Parts) == 0 {
		return goopenai.ChatCompletionMessage{Role: role, Content: msg.Content}, nil
	}

	parts := make([]goopenai.ChatMessagePart, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		switch part.Type {
		case models.PartTypeText:
			parts = append(parts, goopenai.ChatMessagePart{
				Type: goopenai.ChatMessagePartTypeText,
				Text: part.Text,
			})
		case models.PartTypeImageURL:
			parts = append(parts, goopenai.ChatMessagePart{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL:    part.ImageURL,
					Detail: goopenai.ImageURLDetailAuto,
				},
			})
		default:
			return goopenai.ChatCompletionMessage{}, errors.New("unsupported content part type " + string(part.Type))
		}
	}

	return goopenai.ChatCompletionMessage{Role: role, MultiContent: parts}, nil
}
