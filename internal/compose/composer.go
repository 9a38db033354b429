// Package compose builds outbound message sequences from memory context and
// splits dual-section model replies into their labeled parts.
package compose

import (
	"strings"

	"github.com/sidecue/sidecue/internal/llm"
	"github.com/sidecue/sidecue/internal/memory"
)

// ContextLimit caps how many memory events are carried into a request
// regardless of total memory size.
const ContextLimit = 20

// Request describes one outbound message set to assemble.
type Request struct {
	System   string         // system/style prompt, always first
	Context  []memory.Event // memory snapshot, oldest first
	FollowUp string         // rendered follow-up transcript, "" when not a follow-up
	UserText string         // the new question or message
	Image    *llm.ImagePart // attached to the final user message when set
}

// Messages assembles the ordered message sequence for a model call:
// system prompt, then up to ContextLimit remapped memory events, then the
// final user message with the follow-up transcript prefixed when present.
func Messages(req Request) []llm.ChatMessage {
	ctx := req.Context
	if len(ctx) > ContextLimit {
		ctx = ctx[len(ctx)-ContextLimit:]
	}

	msgs := make([]llm.ChatMessage, 0, len(ctx)+2)
	if req.System != "" {
		msgs = append(msgs, llm.ChatMessage{Role: llm.RoleSystem, Content: req.System})
	}

	for _, ev := range ctx {
		content := strings.TrimSpace(ev.Content)
		if content == "" {
			continue
		}
		msgs = append(msgs, llm.ChatMessage{Role: remapRole(ev), Content: content})
	}

	final := req.UserText
	if req.FollowUp != "" {
		final = req.FollowUp + "\n\n" + final
	}
	msgs = append(msgs, llm.ChatMessage{
		Role:    llm.RoleUser,
		Content: final,
		Image:   req.Image,
	})
	return msgs
}

// remapRole translates a memory event into the role the backend expects.
// Screen captures read like something the user showed the model, so they go
// out as user turns; model replies become assistant turns; everything else is
// carried as system context.
func remapRole(ev memory.Event) llm.MessageRole {
	if ev.Action == memory.ActionOCRCapture || ev.Category == memory.CategoryCapture {
		return llm.RoleUser
	}
	if ev.Role == memory.RoleModel {
		return llm.RoleAssistant
	}
	return llm.RoleSystem
}
