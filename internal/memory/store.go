package memory

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sidecue/sidecue/internal/vocab"
)

// Config holds the tunables of the conversation memory store.
type Config struct {
	MaxSessionDuration   time.Duration // Retention window and session auto-end deadline
	CompressionThreshold int           // Log length that triggers eviction + consolidation
	MaxEvents            int           // Hard cap; oldest events are truncated beyond this
	SkillModes           []string      // Configured skill modes, pre-seeded as baseline context
}

// DefaultConfig returns the memory configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MaxSessionDuration:   240 * time.Minute,
		CompressionThreshold: 150,
		MaxEvents:            200,
		SkillModes:           []string{"system-design", "technical-screening", "dsa"},
	}
}

// EventIndexer receives every appended event for full-text indexing and
// is told about pruned events. Implementations must tolerate being
// called under the store lock, so they should be fast and never block.
type EventIndexer interface {
	IndexEvent(ev Event) error
	RemoveEvent(id string) error
}

// Store is the authoritative conversation memory. All mutations are
// serialized behind one mutex; long-running model calls must read a
// snapshot first and append results afterwards under a fresh acquisition.
type Store struct {
	cfg     Config
	matcher vocab.Matcher
	logger  *slog.Logger

	mu      sync.RWMutex
	events  []Event
	topics  map[string][]TopicOccurrence
	session sessionState
	timer   *time.Timer
	epoch   int

	indexer      EventIndexer
	onSessionEnd func(Summary)

	entropy io.Reader
	now     func() time.Time
}

type sessionState struct {
	Mode      string
	StartTime time.Time // zero when inactive
	Active    bool
}

// NewStore creates an inert store pre-loaded with one skill_init event
// per configured skill mode, so recall works before a session starts.
func NewStore(cfg Config, matcher vocab.Matcher, logger *slog.Logger) *Store {
	if cfg.MaxSessionDuration <= 0 {
		cfg.MaxSessionDuration = DefaultConfig().MaxSessionDuration
	}
	if cfg.CompressionThreshold <= 0 {
		cfg.CompressionThreshold = DefaultConfig().CompressionThreshold
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = DefaultConfig().MaxEvents
	}
	if matcher == nil {
		matcher = vocab.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		cfg:     cfg,
		matcher: matcher,
		logger:  logger,
		topics:  make(map[string][]TopicOccurrence),
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
	s.seedLocked()
	return s
}

// SetIndexer attaches a full-text indexer. Pass nil to detach.
func (s *Store) SetIndexer(idx EventIndexer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexer = idx
}

// SetOnSessionEnd registers a callback invoked when a session ends,
// including timer-driven auto-end.
func (s *Store) SetOnSessionEnd(fn func(Summary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSessionEnd = fn
}

// seedLocked installs the baseline skill_init events.
func (s *Store) seedLocked() {
	for _, mode := range s.cfg.SkillModes {
		s.appendLocked(RoleSystem,
			fmt.Sprintf("Skill mode available: %s", mode),
			ActionSkillInit,
			Metadata{SkillMode: mode, Source: "bootstrap"})
	}
}

// ClearEvents drops all events and topics and reinstalls the baseline
// skill_init events. Session state and the auto-end timer are untouched.
// Used when the caller wants each question handled standalone.
func (s *Store) ClearEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.events {
		s.dropFromIndexLocked(ev.ID)
	}
	s.events = nil
	s.topics = make(map[string][]TopicOccurrence)
	s.seedLocked()
}

// Append records one interaction event: assigns id and timestamp,
// derives the category, indexes topics from the content and runs
// maintenance. It never fails for normal input.
func (s *Store) Append(role Role, content string, action Action, meta Metadata) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.appendLocked(role, content, action, meta)
	s.maintainLocked()
	return ev
}

func (s *Store) appendLocked(role Role, content string, action Action, meta Metadata) Event {
	ts := s.now()
	// Insertion order and timestamp order must agree
	if n := len(s.events); n > 0 && !ts.After(s.events[n-1].Timestamp) {
		ts = s.events[n-1].Timestamp.Add(time.Millisecond)
	}

	content = capContent(content)
	meta.ContentLength = len(content)
	if s.session.Active {
		if meta.SkillMode == "" {
			meta.SkillMode = s.session.Mode
		}
		meta.SessionMinutes = ts.Sub(s.session.StartTime).Minutes()
	}

	ev := Event{
		ID:        ulid.MustNew(ulid.Timestamp(ts), s.entropy).String(),
		Timestamp: ts,
		Role:      role,
		Content:   content,
		Action:    action,
		Category:  categoryFor(action, role),
		Metadata:  meta,
	}
	s.events = append(s.events, ev)

	s.indexTopicsLocked(ev)

	if s.indexer != nil {
		if err := s.indexer.IndexEvent(ev); err != nil {
			s.logger.Warn("event indexing failed", "id", ev.ID, "error", err)
		}
	}

	return ev
}

// EvictExpired deletes events older than the retention window, except
// skill_init system events which are retained as baseline context.
// Topic occurrences below the cutoff are pruned too; topics left with no
// occurrences disappear entirely.
func (s *Store) EvictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
}

func (s *Store) evictLocked() {
	cutoff := s.now().Add(-s.cfg.MaxSessionDuration)

	kept := s.events[:0]
	for _, ev := range s.events {
		retained := ev.Category == CategorySystem && ev.Action == ActionSkillInit
		if retained || !ev.Timestamp.Before(cutoff) {
			kept = append(kept, ev)
			continue
		}
		s.dropFromIndexLocked(ev.ID)
	}
	s.events = kept

	s.pruneTopicsLocked(cutoff)
}

// Consolidate merges adjacent identical system events in a single pass.
// Two adjacent category-system events with the same action collapse into
// one whose content carries an occurrence-count suffix. Events that were
// already merged never merge again, so a second run is a no-op.
func (s *Store) Consolidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consolidateLocked()
}

func (s *Store) consolidateLocked() {
	if len(s.events) < 2 {
		return
	}

	out := make([]Event, 0, len(s.events))
	for i := 0; i < len(s.events); {
		cur := s.events[i]
		if i+1 < len(s.events) {
			next := s.events[i+1]
			if cur.Category == CategorySystem && next.Category == CategorySystem &&
				cur.Action == next.Action &&
				cur.Metadata.Consolidated == 0 && next.Metadata.Consolidated == 0 {
				merged := cur
				merged.Metadata.Consolidated = 2
				merged.Content = capContent(fmt.Sprintf("%s (x2)", cur.Content))
				out = append(out, merged)
				s.dropFromIndexLocked(next.ID)
				i += 2
				continue
			}
		}
		out = append(out, cur)
		i++
	}
	s.events = out
}

// maintainLocked runs eviction + consolidation once the log passes the
// compression threshold, then truncates oldest-first down to the hard cap.
func (s *Store) maintainLocked() {
	if len(s.events) > s.cfg.CompressionThreshold {
		s.evictLocked()
		s.consolidateLocked()
	}
	if excess := len(s.events) - s.cfg.MaxEvents; excess > 0 {
		for _, ev := range s.events[:excess] {
			s.dropFromIndexLocked(ev.ID)
		}
		s.events = append([]Event(nil), s.events[excess:]...)
		s.logger.Debug("memory truncated", "dropped", excess, "size", len(s.events))
	}
}

func (s *Store) dropFromIndexLocked(id string) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.RemoveEvent(id); err != nil {
		s.logger.Warn("event index removal failed", "id", id, "error", err)
	}
}

// Len returns the current number of events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Events returns a copy of the full log, oldest first.
func (s *Store) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events...)
}
