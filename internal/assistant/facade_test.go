package assistant

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sidecue/sidecue/internal/classify"
	"github.com/sidecue/sidecue/internal/llm"
	"github.com/sidecue/sidecue/internal/memory"
	"github.com/sidecue/sidecue/internal/vocab"
)

// fakeClient replies with canned content per call, in order. The last
// reply repeats once the script runs out. Safe for concurrent calls.
type fakeClient struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	seen    [][]llm.ChatMessage
}

func (f *fakeClient) Chat(_ context.Context, _ string, messages []llm.ChatMessage, _ llm.ChatOptions) (llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, messages)
	idx := f.calls
	f.calls++
	if f.err != nil {
		return llm.Response{}, f.err
	}
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	return llm.Response{
		Assistant:    llm.ChatMessage{Role: llm.RoleAssistant, Content: f.replies[idx]},
		FinishReason: "stop",
	}, nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestAssistant(t *testing.T, client *fakeClient) (*Assistant, *memory.Store) {
	t.Helper()
	cfg := memory.DefaultConfig()
	store := memory.NewStore(cfg, vocab.Default(), nil)

	var candidates []llm.Candidate
	if client != nil {
		candidates = []llm.Candidate{{Model: "test-model", Client: client}}
	}
	a, err := New(Options{
		Store:      store,
		Candidates: candidates,
		Policy:     llm.RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		SkillModes: cfg.SkillModes,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, store
}

func TestHandleChatSuccess(t *testing.T) {
	client := &fakeClient{replies: []string{"## Part A\nsay this\n## Part B\ncode this"}}
	a, store := newTestAssistant(t, client)
	before := store.Len()

	resp := a.HandleChat(context.Background(), "how do I reverse a linked list?")

	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if resp.PartA != "say this" || resp.PartB != "code this" {
		t.Errorf("split parts = %q / %q", resp.PartA, resp.PartB)
	}
	if resp.Metadata.ModelUsed != "test-model" {
		t.Errorf("ModelUsed = %q", resp.Metadata.ModelUsed)
	}
	if resp.Metadata.UsedFallback {
		t.Error("UsedFallback should be false on a live answer")
	}
	if resp.Metadata.RequestID == "" {
		t.Error("missing request id")
	}
	// question and answer both recorded
	if got := store.Len(); got != before+2 {
		t.Errorf("store.Len() = %d, want %d", got, before+2)
	}
}

func TestHandleChatRejectsShortInput(t *testing.T) {
	client := &fakeClient{replies: []string{"unused"}}
	a, _ := newTestAssistant(t, client)

	resp := a.HandleChat(context.Background(), "  a ")

	if resp.Success {
		t.Fatal("expected failure for near-empty input")
	}
	if resp.Error == "" {
		t.Error("failure must carry a human-readable reason")
	}
	if client.callCount() != 0 {
		t.Errorf("backend called %d times for rejected input", client.callCount())
	}
}

func TestChainFailureDegradesToCanned(t *testing.T) {
	client := &fakeClient{err: errors.New("401 unauthorized")}
	a, _ := newTestAssistant(t, client)

	resp := a.HandleTranscript(context.Background(), "design a rate limiter")

	if !resp.Success {
		t.Fatal("canned fallback should still be a success result")
	}
	if !resp.Metadata.UsedFallback || resp.Metadata.ModelUsed != "canned" {
		t.Errorf("metadata = %+v, want canned fallback", resp.Metadata)
	}
	if resp.Error == "" {
		t.Error("underlying failure should be carried in Error")
	}
	if resp.Text == "" || resp.PartB != resp.Text {
		t.Errorf("canned text should fill Text and PartB, got %q / %q", resp.Text, resp.PartB)
	}
}

func TestNoCandidatesShortCircuitsToCanned(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	resp := a.HandleChat(context.Background(), "what is consistent hashing?")

	if !resp.Success || !resp.Metadata.UsedFallback {
		t.Fatalf("expected canned fallback, got %+v", resp)
	}
}

func TestHandleCaptureTwoPhase(t *testing.T) {
	client := &fakeClient{replies: []string{
		"Reverse a linked list in place.",
		"## Part A\nwalk the list\n## Part B\nfunc reverse(head *Node) *Node { ... }",
	}}
	a, store := newTestAssistant(t, client)

	img := bytes.Repeat([]byte{0x89}, 2048)
	resp := a.HandleCapture(context.Background(), img, "image/png")

	if !resp.Success {
		t.Fatalf("capture failed: %q", resp.Error)
	}
	if resp.DetectedType != classify.TypeCoding {
		t.Errorf("DetectedType = %s, want coding", resp.DetectedType)
	}
	if resp.PartA != "walk the list" {
		t.Errorf("PartA = %q", resp.PartA)
	}
	if client.callCount() != 2 {
		t.Fatalf("expected extraction + answer calls, got %d", client.callCount())
	}

	// both phases carried the image on their final user message
	for i, msgs := range client.seen {
		final := msgs[len(msgs)-1]
		if final.Image == nil {
			t.Errorf("call %d: image missing from final user message", i)
		}
	}

	// the extracted text was recorded as an ocr_capture event
	found := false
	for _, ev := range store.Events() {
		if ev.Action == memory.ActionOCRCapture {
			found = true
			if !strings.HasPrefix(ev.Content, memory.OCRPrefix) {
				t.Errorf("ocr event content = %q, missing prefix", ev.Content)
			}
		}
	}
	if !found {
		t.Error("no ocr_capture event recorded")
	}
}

func TestHandleCaptureRejectsTinyPayload(t *testing.T) {
	client := &fakeClient{replies: []string{"unused"}}
	a, _ := newTestAssistant(t, client)

	resp := a.HandleCapture(context.Background(), []byte("tiny"), "image/png")

	if resp.Success {
		t.Fatal("expected failure for undersized payload")
	}
	if client.callCount() != 0 {
		t.Error("no backend call should happen for rejected input")
	}
}

func TestHandleCaptureNoQuestionFound(t *testing.T) {
	client := &fakeClient{replies: []string{"NO_QUESTION_FOUND"}}
	a, _ := newTestAssistant(t, client)

	img := bytes.Repeat([]byte{0x01}, 1024)
	resp := a.HandleCapture(context.Background(), img, "image/jpeg")

	if resp.Success {
		t.Fatal("expected failure when no question is visible")
	}
	if client.callCount() != 1 {
		t.Errorf("answer phase should not run, got %d calls", client.callCount())
	}
}

func TestFollowUpContextFlowsIntoRequest(t *testing.T) {
	client := &fakeClient{replies: []string{"a deeper answer"}}
	a, store := newTestAssistant(t, client)

	store.Append(memory.RoleUser, "what is sharding?", memory.ActionChatInput, memory.Metadata{})
	store.Append(memory.RoleModel, "splitting rows across nodes", memory.ActionModelResponse, memory.Metadata{})

	resp := a.HandleChat(context.Background(), "what about rebalancing?")

	if !resp.Metadata.IsFollowUp {
		t.Error("IsFollowUp should be true when prior pairs exist")
	}
	final := client.seen[0][len(client.seen[0])-1]
	if !strings.Contains(final.Content, "what is sharding?") {
		t.Errorf("follow-up transcript missing from final message: %q", final.Content)
	}
}

func TestDisablingFollowUpClearsMemory(t *testing.T) {
	client := &fakeClient{replies: []string{"ok"}}
	a, store := newTestAssistant(t, client)
	baseline := store.Len()

	store.Append(memory.RoleUser, "first question", memory.ActionChatInput, memory.Metadata{})
	store.Append(memory.RoleModel, "first answer", memory.ActionModelResponse, memory.Metadata{})

	a.SetFollowUpEnabled(false)

	if got := store.Len(); got != baseline {
		t.Errorf("store.Len() = %d after clear, want baseline %d", got, baseline)
	}

	resp := a.HandleChat(context.Background(), "second question here")
	if resp.Metadata.IsFollowUp {
		t.Error("standalone mode should never mark follow-up")
	}
}

func TestAnswerVariantsRecordsOnlyStandard(t *testing.T) {
	client := &fakeClient{replies: []string{"variant answer"}}
	a, store := newTestAssistant(t, client)
	before := store.Len()

	set := a.AnswerVariants(context.Background(), "explain consistent hashing")

	for name, r := range map[string]Response{
		"concise": set.Concise, "standard": set.Standard, "thorough": set.Thorough,
	} {
		if !r.Success {
			t.Errorf("%s variant failed: %q", name, r.Error)
		}
	}
	if client.callCount() != 3 {
		t.Errorf("expected 3 parallel calls, got %d", client.callCount())
	}
	// one question + one answer, regardless of variant count
	if got := store.Len(); got != before+2 {
		t.Errorf("store.Len() = %d, want %d", got, before+2)
	}
}

func TestSetSkillModeValidation(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	if err := a.SetSkillMode("dsa"); err != nil {
		t.Errorf("known mode rejected: %v", err)
	}
	if err := a.SetSkillMode("underwater-basket-weaving"); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestStatusSnapshotShape(t *testing.T) {
	client := &fakeClient{replies: []string{"fine"}}
	a, _ := newTestAssistant(t, client)

	a.HandleChat(context.Background(), "tell me about redis caching")
	snap := a.Status()

	if snap.EventCount == 0 {
		t.Error("EventCount should reflect recorded events")
	}
	if len(snap.Recent) == 0 {
		t.Error("Recent should include the chat exchange")
	}
}
