// Package memory implements the bounded, time-windowed conversation
// memory: an append-only-then-pruned event log with a topic index,
// follow-up pairing and session lifecycle.
package memory

import (
	"strings"
	"time"
)

// Role identifies who produced an event.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// Action tags what kind of interaction produced an event.
type Action string

const (
	ActionVoiceInput    Action = "voice_input"
	ActionChatInput     Action = "chat_input"
	ActionModelResponse Action = "model_response"
	ActionOCRCapture    Action = "ocr_capture"
	ActionSkillInit     Action = "skill_init"
	ActionSkillChange   Action = "skill_change"
	ActionSessionStart  Action = "session_start"
)

// Category is the derived bucket used for filtering and eviction policy.
type Category string

const (
	CategoryInteraction Category = "interaction"
	CategoryAI          Category = "ai"
	CategoryCapture     Category = "capture"
	CategorySystem      Category = "system"
	CategoryGeneral     Category = "general"
)

// MaxContentLength caps event content; longer payloads are truncated
// with a marker.
const MaxContentLength = 4000

const truncationMarker = "... [truncated]"

// OCRPrefix marks event content that came from a screen capture. It is
// stripped when captures are reconstructed as follow-up questions.
const OCRPrefix = "[screen capture]"

// Metadata holds the known optional facts about an event plus an open
// extension map. It never drives event identity.
type Metadata struct {
	SkillMode      string         `json:"skill_mode,omitempty"`
	SessionMinutes float64        `json:"session_minutes,omitempty"`
	Source         string         `json:"source,omitempty"`
	ContentLength  int            `json:"content_length,omitempty"`
	Consolidated   int            `json:"consolidated,omitempty"` // >0 once merged by consolidation
	Extra          map[string]any `json:"extra,omitempty"`
}

// Event is one timestamped record of user, model or system activity.
// Events are immutable after insertion except for the consolidation merge.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Action    Action    `json:"action"`
	Category  Category  `json:"category"`
	Metadata  Metadata  `json:"metadata"`
}

// categoryFor derives the category bucket from the action, falling back
// to role-based inference when the action is unknown or omitted.
func categoryFor(action Action, role Role) Category {
	switch action {
	case ActionVoiceInput, ActionChatInput:
		return CategoryInteraction
	case ActionModelResponse:
		return CategoryAI
	case ActionOCRCapture:
		return CategoryCapture
	case ActionSkillInit, ActionSkillChange, ActionSessionStart:
		return CategorySystem
	}

	switch role {
	case RoleUser:
		return CategoryInteraction
	case RoleModel:
		return CategoryAI
	case RoleSystem:
		return CategorySystem
	}
	return CategoryGeneral
}

// capContent enforces MaxContentLength, appending the truncation marker.
func capContent(content string) string {
	if len(content) <= MaxContentLength {
		return content
	}
	return content[:MaxContentLength-len(truncationMarker)] + truncationMarker
}

// StripOCRPrefix removes the screen-capture marker from content, if present.
func StripOCRPrefix(content string) string {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) >= len(OCRPrefix) && strings.EqualFold(trimmed[:len(OCRPrefix)], OCRPrefix) {
		return strings.TrimSpace(trimmed[len(OCRPrefix):])
	}
	return trimmed
}

// truncateTo caps a string at n bytes without a marker; used for the
// bounded follow-up transcript.
func truncateTo(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
