package models

import (
	"time"

	"llmjobs/internal/capability"
)

// JobStatusCompleted is the only status a stored job can carry.
const JobStatusCompleted = "completed"

// Job records one prompt/response exchange with the upstream provider.
type Job struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Model     string    `json:"model"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

// PartType identifies the kind of a multi-part message block.
type PartType string

const (
	PartTypeText     PartType = "text"
	PartTypeImageURL PartType = "image_url"
)

// ContentPart is a single block of a multi-part user message.
type ContentPart struct {
	Type     PartType
	Text     string
	ImageURL string
}

// Message represents a single conversational message in the unified schema.
// Parts takes precedence over Content when non-empty.
type Message struct {
	Role    string
	Content string
	Parts   []ContentPart
}

// ChatRequest is the canonical representation of an upstream chat call.
type ChatRequest struct {
	Model    string
	Messages []Message
}

// ChatResponse captures the upstream reply in the unified schema.
type ChatResponse struct {
	ID           string
	Content      string
	FinishReason string
	Usage        Usage
}

// Usage records token accounting information.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// UpstreamModel describes a model as listed by the provider.
type UpstreamModel struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelDescriptor is an upstream model decorated with static capability data.
type ModelDescriptor struct {
	UpstreamModel
	Capabilities capability.Capability `json:"capabilities"`
}
