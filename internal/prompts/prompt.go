package prompts

// PromptVersion identifies a revision of a prompt's wording.
type PromptVersion string

const (
	// PromptV1 is the first revision family.
	PromptV1 PromptVersion = "1.0.0"
	// PromptV2 is reserved for reworked wording.
	PromptV2 PromptVersion = "2.0.0"
)

// Well-known prompt IDs registered by this package.
const (
	IDCodingAnswer  = "coding-answer"
	IDDesignAnswer  = "design-answer"
	IDChatAnswer    = "chat-answer"
	IDScreenExtract = "screen-extract"
)

// Prompt is a versioned system prompt with metadata.
type Prompt struct {
	ID          string        // Unique identifier (e.g., "coding-answer")
	Version     PromptVersion // Version of this prompt
	Content     string        // The actual prompt text
	Description string        // Human-readable description
	Tags        []string      // Tags for categorization
	Deprecated  bool          // True if this version should no longer be used
}
