package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Candidate is one tier of the model fallback chain.
type Candidate struct {
	Model  string
	Client Client
}

// Attempt describes one observed call against one candidate model.
type Attempt struct {
	Model   string
	Attempt int // 1-indexed within the candidate
	Err     error
	Elapsed time.Duration
}

// AttemptObserver receives every attempt for logging/metrics. It is the
// only way to see which fallback tier served a request.
type AttemptObserver func(Attempt)

// FallbackExecutor walks an ordered candidate list, retrying each model
// independently before moving on to the next. The first non-empty
// response from any candidate wins.
type FallbackExecutor struct {
	policy   RetryPolicy
	observer AttemptObserver
	logger   *slog.Logger
}

// NewFallbackExecutor creates an executor with the given retry policy.
// A nil logger falls back to slog.Default.
func NewFallbackExecutor(policy RetryPolicy, observer AttemptObserver, logger *slog.Logger) *FallbackExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackExecutor{
		policy:   policy,
		observer: observer,
		logger:   logger,
	}
}

// Execute tries each candidate in order and returns the first successful
// response along with the model that produced it. Retries are per-model:
// a candidate exhausting its attempts carries nothing over to the next.
// When the whole chain fails the error is a FallbackExhaustedError.
func (e *FallbackExecutor) Execute(ctx context.Context, candidates []Candidate, messages []ChatMessage, opts ChatOptions) (Response, string, error) {
	if len(candidates) == 0 {
		return Response{}, "", ErrNotConfigured
	}

	var failures []error
	for _, cand := range candidates {
		if cand.Client == nil {
			failures = append(failures, &RetryExhaustedError{Model: cand.Model, Err: ErrNotConfigured, Attempts: 0})
			continue
		}

		var elapsed time.Duration
		resp, err := RetryWithPolicy(ctx, e.policy, cand.Model,
			func(ctx context.Context) (Response, error) {
				started := time.Now()
				resp, err := cand.Client.Chat(ctx, cand.Model, messages, opts)
				elapsed = time.Since(started)
				if err == nil && strings.TrimSpace(resp.Assistant.Content) == "" {
					err = ErrEmptyResponse
				}
				return resp, err
			},
			func(attempt int, err error) {
				e.observe(cand.Model, attempt, err, elapsed)
			},
		)
		if err == nil {
			e.logger.Debug("fallback chain served request", "model", cand.Model)
			return resp, cand.Model, nil
		}

		failures = append(failures, err)
		e.logger.Warn("fallback candidate exhausted", "model", cand.Model, "error", err)

		if ctx.Err() != nil {
			break
		}
	}

	return Response{}, "", &FallbackExhaustedError{Errors: failures}
}

func (e *FallbackExecutor) observe(model string, attempt int, err error, elapsed time.Duration) {
	if e.observer != nil {
		e.observer(Attempt{Model: model, Attempt: attempt, Err: err, Elapsed: elapsed})
	}
	if err != nil {
		e.logger.Debug("model attempt failed", "model", model, "attempt", attempt, "error", err)
	}
}
