package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sidecue/sidecue/internal/classify"
	"github.com/sidecue/sidecue/internal/compose"
	"github.com/sidecue/sidecue/internal/llm"
	"github.com/sidecue/sidecue/internal/memory"
	"github.com/sidecue/sidecue/internal/prompts"
)

const (
	// Inputs shorter than this cannot be a real question.
	minTextLength = 3
	// Anything smaller than this is not a plausible screenshot.
	minImageBytes = 512
)

// HandleTranscript answers one transcribed speech utterance.
func (a *Assistant) HandleTranscript(ctx context.Context, text string) Response {
	return a.answer(ctx, text, memory.ActionVoiceInput, prompts.HintStandard, true)
}

// HandleChat answers one typed chat message.
func (a *Assistant) HandleChat(ctx context.Context, text string) Response {
	return a.answer(ctx, text, memory.ActionChatInput, prompts.HintStandard, true)
}

// VariantSet holds the same answer generated at three lengths.
type VariantSet struct {
	Concise  Response
	Standard Response
	Thorough Response
}

// AnswerVariants generates three lengths of the same answer in parallel.
// Only the standard variant is recorded in memory so follow-up pairing
// sees one question and one answer.
func (a *Assistant) AnswerVariants(ctx context.Context, text string) VariantSet {
	var set VariantSet
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		set.Concise = a.answer(ctx, text, memory.ActionChatInput, prompts.HintConcise, false)
	}()
	go func() {
		defer wg.Done()
		set.Standard = a.answer(ctx, text, memory.ActionChatInput, prompts.HintStandard, true)
	}()
	go func() {
		defer wg.Done()
		set.Thorough = a.answer(ctx, text, memory.ActionChatInput, prompts.HintThorough, false)
	}()
	wg.Wait()
	return set
}

// answer is the shared text pipeline: validate, snapshot memory, record
// the question, call the chain, record the reply. The memory lock is
// never held across the model call; context is read as a snapshot first.
func (a *Assistant) answer(ctx context.Context, text string, action memory.Action, hint string, record bool) Response {
	requestID := uuid.NewString()
	started := time.Now()

	text = strings.TrimSpace(text)
	if len(text) < minTextLength {
		return failure(requestID, "input too short to answer", time.Since(started))
	}

	followUp := a.FollowUpEnabled()
	mode, _ := a.store.ActiveMode()

	ctxEvents := a.store.Events()
	var followUpCtx string
	if followUp {
		followUpCtx = a.store.FollowUpContext(a.maxPairs)
	}
	if record {
		a.store.Append(memory.RoleUser, text, action, memory.Metadata{Source: sourceFor(action)})
	}

	system, err := prompts.AnswerSystem(prompts.IDChatAnswer, mode, hint)
	if err != nil {
		return failure(requestID, "prompt assembly failed: "+err.Error(), time.Since(started))
	}

	msgs := compose.Messages(compose.Request{
		System:   system,
		Context:  ctxEvents,
		FollowUp: followUpCtx,
		UserText: text,
	})
	return a.execute(ctx, requestID, msgs, "", mode, followUpCtx != "", record, started)
}

// HandleCapture answers a captured screen. Two phases: first an
// extraction call transcribes the visible question, then the classified
// answer call runs with the image still attached.
func (a *Assistant) HandleCapture(ctx context.Context, imageBytes []byte, mimeType string) Response {
	requestID := uuid.NewString()
	started := time.Now()

	if len(imageBytes) < minImageBytes {
		return failure(requestID, "image payload too small to contain a question", time.Since(started))
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return failure(requestID, "unsupported capture media type: "+mimeType, time.Since(started))
	}

	mode, _ := a.store.ActiveMode()
	img := &llm.ImagePart{Data: imageBytes, MediaType: mimeType}

	extractSystem, err := prompts.ExtractSystem(mode)
	if err != nil {
		return failure(requestID, "prompt assembly failed: "+err.Error(), time.Since(started))
	}
	extractMsgs := []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: extractSystem},
		{Role: llm.RoleUser, Content: "Transcribe the question on this screen.", Image: img},
	}

	resp, _, err := a.exec.Execute(ctx, a.candidates, extractMsgs, a.chatOpts)
	if err != nil {
		qt := a.classifier.Classify("", mode).Type
		return a.canned(requestID, mode, qt, false, err, false, started)
	}

	extracted := strings.TrimSpace(resp.Assistant.Content)
	if extracted == "" || strings.EqualFold(extracted, prompts.NoQuestionMarker) {
		return failure(requestID, "no question detected in capture", time.Since(started))
	}

	followUp := a.FollowUpEnabled()
	ctxEvents := a.store.Events()
	var followUpCtx string
	if followUp {
		followUpCtx = a.store.FollowUpContext(a.maxPairs)
	}
	a.store.Append(memory.RoleSystem, memory.OCRPrefix+" "+extracted, memory.ActionOCRCapture,
		memory.Metadata{Source: "capture"})

	result := a.classifier.Classify(extracted, mode)
	promptID := prompts.IDCodingAnswer
	if result.Type == classify.TypeDesign {
		promptID = prompts.IDDesignAnswer
	}
	system, err := prompts.AnswerSystem(promptID, mode, prompts.HintStandard)
	if err != nil {
		return failure(requestID, "prompt assembly failed: "+err.Error(), time.Since(started))
	}

	msgs := compose.Messages(compose.Request{
		System:   system,
		Context:  ctxEvents,
		FollowUp: followUpCtx,
		UserText: extracted,
		Image:    img,
	})
	return a.execute(ctx, requestID, msgs, result.Type, mode, followUpCtx != "", true, started)
}

// execute runs the fallback chain and converts the outcome into the
// uniform response shape. On total chain failure it degrades to the
// canned skill-aware fallback instead of surfacing an empty result.
func (a *Assistant) execute(
	ctx context.Context,
	requestID string,
	msgs []llm.ChatMessage,
	qt classify.QuestionType,
	mode string,
	isFollowUp bool,
	record bool,
	started time.Time,
) Response {
	resp, model, err := a.exec.Execute(ctx, a.candidates, msgs, a.chatOpts)
	if err != nil {
		a.logger.Warn("model chain exhausted", "request_id", requestID, "error", err)
		return a.canned(requestID, mode, qt, isFollowUp, err, record, started)
	}

	raw := resp.Assistant.Content
	partA, partB := compose.Split(raw)
	if record {
		a.store.Append(memory.RoleModel, raw, memory.ActionModelResponse,
			memory.Metadata{Source: model})
	}

	return Response{
		Success:      true,
		Text:         raw,
		PartA:        partA,
		PartB:        partB,
		DetectedType: qt,
		Metadata: Metadata{
			RequestID:      requestID,
			ProcessingTime: time.Since(started),
			ModelUsed:      model,
			IsFollowUp:     isFollowUp,
		},
	}
}

// canned builds the offline fallback response. The underlying failure is
// carried in Error for diagnostics while Success stays true so display
// layers still show something useful.
func (a *Assistant) canned(
	requestID, mode string,
	qt classify.QuestionType,
	isFollowUp bool,
	cause error,
	record bool,
	started time.Time,
) Response {
	text := cannedResponse(mode, qt)
	if record {
		a.store.Append(memory.RoleModel, text, memory.ActionModelResponse,
			memory.Metadata{Source: "canned"})
	}

	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return Response{
		Success:      true,
		Text:         text,
		PartB:        text,
		DetectedType: qt,
		Error:        reason,
		Metadata: Metadata{
			RequestID:      requestID,
			ProcessingTime: time.Since(started),
			ModelUsed:      "canned",
			UsedFallback:   true,
			IsFollowUp:     isFollowUp,
		},
	}
}

func sourceFor(action memory.Action) string {
	switch action {
	case memory.ActionVoiceInput:
		return "voice"
	case memory.ActionChatInput:
		return "chat"
	default:
		return string(action)
	}
}
