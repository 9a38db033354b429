package prompts

import "fmt"

func init() {
	registry := DefaultRegistry()

	registry.Register(&Prompt{
		ID:      IDCodingAnswer,
		Version: PromptV1,
		Content: `You are Sidecue, a live assistant helping a candidate through a {{skill_mode}} session.
The question below is a CODING question.

Structure your answer in exactly two sections:

## Part A
A short spoken-style walkthrough the candidate can say out loud: restate the
problem, name the approach, and state the time and space complexity. Keep it
under 6 sentences. No code here.

## Part B
The full solution: working code with brief inline reasoning, followed by edge
cases worth mentioning. Prefer clear variable names over cleverness.

Rules:
- Do not invent constraints that were not stated; if the question is ambiguous, pick the most common interpretation and say so in Part A.
- If earlier conversation context is provided, treat the new question as a follow-up to it.
- {{length_hint}}`,
		Description: "Two-part answer prompt for coding questions",
		Tags:        []string{"answer", "coding"},
	})

	registry.Register(&Prompt{
		ID:      IDDesignAnswer,
		Version: PromptV1,
		Content: `You are Sidecue, a live assistant helping a candidate through a {{skill_mode}} session.
The question below is a SYSTEM DESIGN question.

Structure your answer in exactly two sections:

## Part A
The opening moves: clarifying questions worth asking, rough scale estimates,
and the 3-4 core components to name first. Keep it spoken-style and short.

## Part B
The deep dive: data model, API sketch, storage and caching choices, how the
design scales, and the main trade-offs. Call out the bottleneck you would
address first.

Rules:
- Ground numbers in the scale mentioned in the question; if none is given, assume a mid-size consumer product and say so.
- If earlier conversation context is provided, treat the new question as a follow-up to it.
- {{length_hint}}`,
		Description: "Two-part answer prompt for system design questions",
		Tags:        []string{"answer", "design"},
	})

	registry.Register(&Prompt{
		ID:      IDChatAnswer,
		Version: PromptV1,
		Content: `You are Sidecue, a live assistant in a {{skill_mode}} session.
Answer the user's message directly and concisely. No section headers, no
preamble. If earlier conversation context is provided, continue from it.

{{length_hint}}`,
		Description: "Plain answer prompt for side-channel chat messages",
		Tags:        []string{"answer", "chat"},
	})

	registry.Register(&Prompt{
		ID:      IDScreenExtract,
		Version: PromptV1,
		Content: `You are an OCR assistant. The attached image is a screenshot taken during a
{{skill_mode}} session. Transcribe the question or problem statement visible in
it, verbatim, as plain text. Ignore window chrome, toolbars, and any text that
is clearly not part of the question. If no question is visible, reply with
exactly: NO_QUESTION_FOUND`,
		Description: "Extraction prompt for screen captures",
		Tags:        []string{"capture", "ocr"},
	})
}

// LengthHint values passed to answer prompts via the {{length_hint}} variable.
const (
	HintConcise  = "Keep the whole answer tight; favor brevity over completeness."
	HintStandard = "Use a normal amount of detail."
	HintThorough = "Be thorough; include alternatives you considered and why you rejected them."
)

// AnswerSystem builds the system prompt for an answer request. id must be one
// of the registered answer prompt IDs.
func AnswerSystem(id, skillMode, lengthHint string) (string, error) {
	b, err := NewPromptBuilder(DefaultRegistry(), id, PromptV1)
	if err != nil {
		return "", err
	}
	if skillMode == "" {
		skillMode = "general"
	}
	if lengthHint == "" {
		lengthHint = HintStandard
	}
	return b.
		SetVariable("skill_mode", skillMode).
		SetVariable("length_hint", lengthHint).
		Build()
}

// ExtractSystem builds the system prompt for the screen text extraction call.
func ExtractSystem(skillMode string) (string, error) {
	b, err := NewPromptBuilder(DefaultRegistry(), IDScreenExtract, PromptV1)
	if err != nil {
		return "", err
	}
	if skillMode == "" {
		skillMode = "general"
	}
	return b.SetVariable("skill_mode", skillMode).Build()
}

// NoQuestionMarker is the sentinel the extraction prompt asks the model to
// return when a screenshot contains no recognizable question.
const NoQuestionMarker = "NO_QUESTION_FOUND"

// FollowUpFragment wraps recent conversation context for inclusion ahead of a
// follow-up question.
func FollowUpFragment(context string) string {
	return fmt.Sprintf("Earlier conversation context:\n\n%s", context)
}
