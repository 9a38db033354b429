package assistant

import (
	"time"

	"github.com/sidecue/sidecue/internal/classify"
)

// Metadata describes how a response was produced.
type Metadata struct {
	RequestID      string
	ProcessingTime time.Duration
	ModelUsed      string // model that answered, or "canned" for the offline fallback
	UsedFallback   bool   // true when the canned fallback produced the text
	IsFollowUp     bool   // true when follow-up context was prefixed to the question
}

// Response is the uniform result returned to every caller. Failures are
// reported through Success and Error rather than Go errors so display
// layers get one shape for every path.
type Response struct {
	Success      bool
	Text         string
	PartA        string
	PartB        string
	DetectedType classify.QuestionType
	Error        string
	Metadata     Metadata
}

func failure(requestID, reason string, elapsed time.Duration) Response {
	return Response{
		Success: false,
		Error:   reason,
		Metadata: Metadata{
			RequestID:      requestID,
			ProcessingTime: elapsed,
		},
	}
}

// Canned responses for when no backend is reachable. Skill-aware: they
// at least point the user at the right checklist for their mode.
var cannedByMode = map[string]map[classify.QuestionType]string{
	"dsa": {
		classify.TypeCoding: "I can't reach a model right now. Work the problem manually: restate it, pick a data structure, write the brute force first, then optimize. State time and space complexity before you finish.",
		classify.TypeDesign: "I can't reach a model right now. Treat it like a design warm-up: clarify requirements, estimate scale, then name your core components.",
	},
	"system-design": {
		classify.TypeCoding: "I can't reach a model right now. Sketch the function signature, handle the happy path first, then edge cases.",
		classify.TypeDesign: "I can't reach a model right now. Fall back to the standard opening: clarify functional and non-functional requirements, estimate QPS and storage, draw the request path, then deep-dive the bottleneck.",
	},
	"technical-screening": {
		classify.TypeCoding: "I can't reach a model right now. Talk through your approach out loud before coding; interviewers score reasoning as much as the final answer.",
		classify.TypeDesign: "I can't reach a model right now. Lead with clarifying questions and keep your answer structured: requirements, scale, components, trade-offs.",
	},
}

const cannedDefault = "I can't reach a model right now. Take a breath, restate the question in your own words, and work through it step by step."

func cannedResponse(mode string, qt classify.QuestionType) string {
	if byType, ok := cannedByMode[mode]; ok {
		if text, ok := byType[qt]; ok {
			return text
		}
	}
	return cannedDefault
}
