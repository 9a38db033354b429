package memory

import (
	"fmt"
	"strings"
)

const (
	importantLimit    = 5
	questionCap       = 1500
	answerCap         = 2000
	followUpHeader    = "=== RECENT CONVERSATION CONTEXT ==="
	followUpFooter    = "=== END CONTEXT ==="
	defaultRecentKeep = 10
)

// HistorySnapshot is the windowed, ranked view of memory handed to the
// orchestration pipeline and to status displays.
type HistorySnapshot struct {
	Recent     []Event
	Important  []Event
	Topics     []string
	Timer      TimerSnapshot
	EventCount int
}

// FollowUpPair is a reconstructed (question, answer) tuple. It is
// derived on demand, never stored.
type FollowUpPair struct {
	Question string
	Answer   string
}

// OptimizedHistory returns the last limit conversational events, the
// last five high-signal events, every topic key, the session timer and
// the total event count. Recent and Important may overlap.
func (s *Store) OptimizedHistory(limit int) HistorySnapshot {
	if limit <= 0 {
		limit = defaultRecentKeep
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var recent []Event
	for _, ev := range s.events {
		if ev.Role == RoleUser || ev.Role == RoleModel || ev.Action == ActionOCRCapture {
			recent = append(recent, ev)
		}
	}
	if len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}

	var important []Event
	for _, ev := range s.events {
		if ev.Category == CategoryInteraction || ev.Category == CategoryAI || ev.Action == ActionOCRCapture {
			important = append(important, ev)
		}
	}
	if len(important) > importantLimit {
		important = important[len(important)-importantLimit:]
	}

	return HistorySnapshot{
		Recent:     append([]Event(nil), recent...),
		Important:  append([]Event(nil), important...),
		Topics:     s.topicKeysLocked(),
		Timer:      s.timerSnapshotLocked(),
		EventCount: len(s.events),
	}
}

// FollowUpPairs reconstructs the chronological question/answer pairing.
// A question is either a screen capture (prefix stripped) or a user
// event; the next model event answers it. Consecutive unanswered
// questions keep only the newest one; earlier ones are discarded from
// pairing, not queued.
func (s *Store) FollowUpPairs(maxPairs int) []FollowUpPair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pairs []FollowUpPair
	var currentQuestion string
	var haveQuestion bool

	for _, ev := range s.events {
		switch {
		case ev.Action == ActionOCRCapture:
			currentQuestion = StripOCRPrefix(ev.Content)
			haveQuestion = currentQuestion != ""
		case ev.Role == RoleUser:
			currentQuestion = ev.Content
			haveQuestion = currentQuestion != ""
		case ev.Role == RoleModel && haveQuestion:
			pairs = append(pairs, FollowUpPair{Question: currentQuestion, Answer: ev.Content})
			currentQuestion = ""
			haveQuestion = false
		}
	}

	if maxPairs > 0 && len(pairs) > maxPairs {
		pairs = pairs[len(pairs)-maxPairs:]
	}
	return pairs
}

// FollowUpContext renders the last maxPairs follow-up pairs as a bounded
// transcript bracketed by sentinel markers. Questions are capped at 1500
// characters and answers at 2000. Returns "" when no pairs exist.
func (s *Store) FollowUpContext(maxPairs int) string {
	pairs := s.FollowUpPairs(maxPairs)
	if len(pairs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(followUpHeader)
	b.WriteString("\n")
	for i, pair := range pairs {
		fmt.Fprintf(&b, "[Q%d]: %s\n", i+1, truncateTo(pair.Question, questionCap))
		fmt.Fprintf(&b, "[A%d]: %s\n", i+1, truncateTo(pair.Answer, answerCap))
	}
	b.WriteString(followUpFooter)
	return b.String()
}
