// Package assistant is the orchestration facade: the single entry point
// wiring classifier, composer, fallback executor, splitter and the
// conversation memory together for the transcript, chat and capture
// pipelines.
package assistant

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sidecue/sidecue/internal/classify"
	"github.com/sidecue/sidecue/internal/llm"
	"github.com/sidecue/sidecue/internal/memory"
	"github.com/sidecue/sidecue/internal/recall"
)

const defaultMaxFollowUpPairs = 3

// Options configures an Assistant.
type Options struct {
	Store      *memory.Store
	Candidates []llm.Candidate
	Policy     llm.RetryPolicy
	Observer   llm.AttemptObserver
	Logger     *slog.Logger
	SkillModes []string
	Transcript *recall.Index // optional ranked transcript search
	ChatOpts   llm.ChatOptions

	// MaxFollowUpPairs bounds the rendered follow-up transcript.
	MaxFollowUpPairs int
}

// Assistant routes every inbound request through memory, classification
// and the model fallback chain. The memory store serializes its own
// mutations; the assistant's mutex only guards the toggles and never
// spans a model call.
type Assistant struct {
	store      *memory.Store
	candidates []llm.Candidate
	exec       *llm.FallbackExecutor
	classifier *classify.Classifier
	transcript *recall.Index
	logger     *slog.Logger
	skillModes []string
	chatOpts   llm.ChatOptions
	maxPairs   int

	mu            sync.Mutex
	followUp      bool
	autoRecapture bool
}

// New wires up an assistant. The store is required; an empty candidate
// list is allowed and routes every request to the canned fallback.
func New(opts Options) (*Assistant, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("assistant requires a memory store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	policy := opts.Policy
	if policy.MaxRetries == 0 {
		policy = llm.DefaultRetryPolicy()
	}
	maxPairs := opts.MaxFollowUpPairs
	if maxPairs <= 0 {
		maxPairs = defaultMaxFollowUpPairs
	}
	chatOpts := opts.ChatOpts
	if chatOpts.MaxOutputTokens == 0 {
		chatOpts.MaxOutputTokens = 4096
	}

	return &Assistant{
		store:      opts.Store,
		candidates: opts.Candidates,
		exec:       llm.NewFallbackExecutor(policy, opts.Observer, logger),
		classifier: classify.New(),
		transcript: opts.Transcript,
		logger:     logger,
		skillModes: opts.SkillModes,
		chatOpts:   chatOpts,
		maxPairs:   maxPairs,
		followUp:   true,
	}, nil
}

// SetFollowUpEnabled flips the follow-up toggle. Disabling it clears the
// conversation memory so the next question is handled standalone.
func (a *Assistant) SetFollowUpEnabled(enabled bool) {
	a.mu.Lock()
	was := a.followUp
	a.followUp = enabled
	a.mu.Unlock()

	if was && !enabled {
		a.store.ClearEvents()
	}
}

// FollowUpEnabled reports the current follow-up toggle.
func (a *Assistant) FollowUpEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.followUp
}

// SetAutoRecapture flips the auto-recapture flag. The periodic capture
// timer lives in the caller; this core only remembers the choice.
func (a *Assistant) SetAutoRecapture(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.autoRecapture = enabled
}

// AutoRecapture reports whether the caller should re-invoke capture
// periodically.
func (a *Assistant) AutoRecapture() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.autoRecapture
}

// SetSkillMode switches the active skill mode.
func (a *Assistant) SetSkillMode(mode string) error {
	if err := a.validateMode(mode); err != nil {
		return err
	}
	a.store.SetMode(mode)
	return nil
}

func (a *Assistant) validateMode(mode string) error {
	if len(a.skillModes) == 0 {
		return nil
	}
	for _, m := range a.skillModes {
		if m == mode {
			return nil
		}
	}
	return fmt.Errorf("unknown skill mode: %s", mode)
}

// StartSession resets memory and arms the auto-end deadline.
func (a *Assistant) StartSession(mode string) (memory.TimerSnapshot, error) {
	if err := a.validateMode(mode); err != nil {
		return memory.TimerSnapshot{}, err
	}
	return a.store.StartSession(mode), nil
}

// EndSession disarms the deadline and returns the session summary.
func (a *Assistant) EndSession() memory.Summary {
	return a.store.EndSession()
}

// Timer returns the current session timer snapshot.
func (a *Assistant) Timer() memory.TimerSnapshot {
	return a.store.Timer()
}

// Status returns the memory snapshot used by status displays.
func (a *Assistant) Status() memory.HistorySnapshot {
	return a.store.OptimizedHistory(10)
}

// TranscriptDocCount reports how many events the transcript index holds,
// or zero when no index is attached.
func (a *Assistant) TranscriptDocCount() uint64 {
	if a.transcript == nil {
		return 0
	}
	n, err := a.transcript.DocCount()
	if err != nil {
		a.logger.Warn("transcript doc count failed", "error", err)
		return 0
	}
	return n
}

// Recall runs the substring-based topic recall against memory.
func (a *Assistant) Recall(query string) []memory.RecallResult {
	return a.store.RecallTopic(query)
}

// SearchTranscript runs ranked full-text search over indexed events.
// Returns nil when no transcript index is attached.
func (a *Assistant) SearchTranscript(query string, k int) ([]recall.Result, error) {
	if a.transcript == nil {
		return nil, nil
	}
	return a.transcript.Search(query, k)
}
