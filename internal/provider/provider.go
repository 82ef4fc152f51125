package provider

import (
	"context"
	"errors"

	"llmjobs/internal/models"
)

// ErrEmptyResponse indicates the provider answered without any choices.
var ErrEmptyResponse = errors.New("upstream provider returned an empty response")

// Provider defines the upstream operations the service depends on.
type Provider interface {
	Name() string
	ListModels(ctx context.Context) ([]models.UpstreamModel, error)
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// UpstreamError is the single error kind for provider failures. Its message
// is the stringified cause so it can be surfaced to callers verbatim.
type UpstreamError struct {
	Provider string
	Op       string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return "upstream error"
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *UpstreamError unless it already is one.
func Wrap(providerName, op string, err error) error {
	if err == nil {
		return nil
	}
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return err
	}
	return &UpstreamError{Provider: providerName, Op: op, Err: err}
}

// IsUpstream reports whether err originated from a provider call.
func IsUpstream(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr)
}
