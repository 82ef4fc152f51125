// Package providertest provides an in-memory Provider for tests.
package providertest

import (
	"context"
	"sync"

	"llmjobs/internal/models"
	"llmjobs/internal/provider"
)

// Fake records chat requests and answers with canned values.
type Fake struct {
	mu sync.Mutex

	Reply     string
	ChatErr   error
	Models    []models.UpstreamModel
	ModelsErr error

	requests []models.ChatRequest
}

var _ provider.Provider = (*Fake)(nil)

func (f *Fake) Name() string {
	return "fake"
}

func (f *Fake) ListModels(ctx context.Context) ([]models.UpstreamModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ModelsErr != nil {
		return nil, provider.Wrap(f.Name(), "list_models", f.ModelsErr)
	}
	out := make([]models.UpstreamModel, len(f.Models))
	copy(out, f.Models)
	return out, nil
}

func (f *Fake) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.ChatErr != nil {
		return nil, provider.Wrap(f.Name(), "chat", f.ChatErr)
	}
	return &models.ChatResponse{ID: "fake-1", Content: f.Reply, FinishReason: "stop"}, nil
}

// Requests returns the chat requests received so far.
func (f *Fake) Requests() []models.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.ChatRequest, len(f.requests))
	copy(out, f.requests)
	return out
}
