package translator

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"llmjobs/internal/models"
)

// ErrEmptyContent is returned when the prompt text is missing or blank.
var ErrEmptyContent = errors.New("content is required")

const roleUser = "user"

// Image is one uploaded attachment.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MessageInput is a create-message request as received at the boundary.
type MessageInput struct {
	Content string
	Model   string
	Images  []Image
}

// Defaults supplies the models used when the caller does not choose one and
// when images force a vision-capable model.
type Defaults struct {
	Model       string
	VisionModel string
}

// BuildChatRequest assembles the upstream payload. With no images it is one
// plain-text user message. With images it is one user message holding the
// text part followed by one image part per attachment, and the model is
// always replaced by the vision model.
func BuildChatRequest(in MessageInput, defaults Defaults) (models.ChatRequest, error) {
	if strings.TrimSpace(in.Content) == "" {
		return models.ChatRequest{}, ErrEmptyContent
	}

	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = defaults.Model
	}

	if len(in.Images) == 0 {
		return models.ChatRequest{
			Model:    model,
			Messages: []models.Message{{Role: roleUser, Content: in.Content}},
		}, nil
	}

	parts := make([]models.ContentPart, 0, len(in.Images)+1)
	parts = append(parts, models.ContentPart{Type: models.PartTypeText, Text: in.Content})
	for _, img := range in.Images {
		parts = append(parts, models.ContentPart{Type: models.PartTypeImageURL, ImageURL: DataURL(img)})
	}

	return models.ChatRequest{
		Model:    defaults.VisionModel,
		Messages: []models.Message{{Role: roleUser, Parts: parts}},
	}, nil
}

// DataURL embeds the image as a base64 data reference.
func DataURL(img Image) string {
	return "data:" + mediaType(img) + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func mediaType(img Image) string {
	ct := strings.TrimSpace(img.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = mimetype.Detect(img.Data).String()
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
