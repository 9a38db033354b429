package llm

import (
	"context"
	"fmt"
)

// MessageRole represents the role of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ImagePart attaches a captured frame to a message for vision-capable models.
type ImagePart struct {
	Data      []byte // Raw image bytes
	MediaType string // MIME type, e.g. "image/png"
}

// ChatMessage is the provider-agnostic message we pass around.
type ChatMessage struct {
	Role    MessageRole // Role of the message sender
	Content string      // Message content
	Image   *ImagePart  // Optional image attachment (capture path only)
}

// Validate checks if the ChatMessage is valid.
func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant:
		// Valid roles
	default:
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	if m.Image != nil && m.Image.MediaType == "" {
		return fmt.Errorf("image attachments must carry a media type")
	}
	return nil
}

// Usage holds token accounting returned by providers.
type Usage struct {
	Prompt     int
	Completion int
	Total      int
}

// Response is a normalized result of one chat call.
type Response struct {
	Assistant    ChatMessage
	Usage        Usage
	FinishReason string // "stop" | "length" | "content_filter"
}

// Client abstracts the chosen SDK (OpenAI, Anthropic, etc.)
type Client interface {
	Chat(ctx context.Context, model string, messages []ChatMessage, opts ChatOptions) (Response, error)
}

// ChatOptions keeps knobs forwarded to the SDK.
type ChatOptions struct {
	Temperature     float32
	MaxOutputTokens int
}
