package memory

import (
	"fmt"
	"time"

	units "github.com/docker/go-units"
)

// TimerSnapshot describes session progress for status displays.
type TimerSnapshot struct {
	ElapsedSeconds   int     `json:"elapsed_seconds"`
	RemainingSeconds int     `json:"remaining_seconds"`
	Formatted        string  `json:"formatted"` // "MM:SS / MM:SS"
	PercentComplete  float64 `json:"percent_complete"`
	Active           bool    `json:"active"`
}

// TranscriptLine is one line of the end-of-session transcript.
type TranscriptLine struct {
	Role    Role
	Content string
}

// Summary is the end-of-session accounting.
type Summary struct {
	SkillMode       string
	StartedAt       time.Time
	DurationMinutes float64
	DurationHuman   string
	EventCount      int
	RoleCounts      map[Role]int
	Topics          []string
	Transcript      []TranscriptLine
}

// ActiveMode returns the current skill mode and whether a session is live.
func (s *Store) ActiveMode() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Mode, s.session.Active
}

// SetMode changes the active skill mode without touching session state
// and records the change as a system event.
func (s *Store) SetMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Mode = mode
	s.appendLocked(RoleSystem,
		fmt.Sprintf("Skill mode changed to %s", mode),
		ActionSkillChange,
		Metadata{SkillMode: mode})
}

// StartSession begins a session in the given mode: memory and the topic
// index are reset (baseline skill_init events re-seeded), an auto-end
// deadline is armed, and a session_start event is recorded. Starting
// while a session is active discards the prior session without a
// summary; that is deliberate, not an accident.
func (s *Store) StartSession(mode string) TimerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Active {
		s.logger.Warn("starting new session over an active one; prior state is discarded unsummarized",
			"prior_mode", s.session.Mode)
	}
	s.disarmLocked()

	// Reset memory and topic index, then restore baseline context
	for _, ev := range s.events {
		s.dropFromIndexLocked(ev.ID)
	}
	s.events = nil
	s.topics = make(map[string][]TopicOccurrence)
	s.seedLocked()

	s.session = sessionState{Mode: mode, StartTime: s.now(), Active: true}
	s.epoch++
	s.appendLocked(RoleSystem,
		fmt.Sprintf("Session started in %s mode", mode),
		ActionSessionStart,
		Metadata{SkillMode: mode})

	// The epoch guards against a stale timer firing into a newer session
	epoch := s.epoch
	s.timer = time.AfterFunc(s.cfg.MaxSessionDuration, func() { s.autoEnd(epoch) })
	s.logger.Info("session started", "mode", mode, "max_duration", s.cfg.MaxSessionDuration)

	return s.timerSnapshotLocked()
}

// EndSession disarms the auto-end deadline, computes the summary and
// deactivates the session. Ending an inactive session returns a summary
// of whatever memory holds.
func (s *Store) EndSession() Summary {
	s.mu.Lock()
	summary := s.endLocked()
	cb := s.onSessionEnd
	s.mu.Unlock()

	if cb != nil {
		cb(summary)
	}
	return summary
}

func (s *Store) endLocked() Summary {
	s.disarmLocked()
	summary := s.summarizeLocked()
	s.session.Active = false
	s.logger.Info("session ended", "mode", summary.SkillMode, "duration_minutes", summary.DurationMinutes)
	return summary
}

// autoEnd is the timer-driven cancellation point: the session force-ends
// when the configured duration elapses even if nobody is polling.
// In-flight orchestration calls complete and still append their results.
func (s *Store) autoEnd(epoch int) {
	s.mu.Lock()
	if !s.session.Active || epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.logger.Info("session auto-ended after configured duration", "mode", s.session.Mode)
	summary := s.endLocked()
	cb := s.onSessionEnd
	s.mu.Unlock()

	if cb != nil {
		cb(summary)
	}
}

func (s *Store) disarmLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Timer returns the current session timer snapshot.
func (s *Store) Timer() TimerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timerSnapshotLocked()
}

func (s *Store) timerSnapshotLocked() TimerSnapshot {
	if !s.session.Active {
		return TimerSnapshot{Formatted: "00:00 / 00:00"}
	}

	elapsed := s.now().Sub(s.session.StartTime)
	remaining := s.cfg.MaxSessionDuration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	percent := 100 * elapsed.Seconds() / s.cfg.MaxSessionDuration.Seconds()
	if percent > 100 {
		percent = 100
	}

	return TimerSnapshot{
		ElapsedSeconds:   int(elapsed.Seconds()),
		RemainingSeconds: int(remaining.Seconds()),
		Formatted:        fmt.Sprintf("%s / %s", clockFormat(elapsed), clockFormat(remaining)),
		PercentComplete:  percent,
		Active:           true,
	}
}

func clockFormat(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Summarize computes the end-of-session accounting: counts by role, the
// topic keys, elapsed duration and the full user/model transcript.
func (s *Store) Summarize() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summarizeLocked()
}

func (s *Store) summarizeLocked() Summary {
	roleCounts := make(map[Role]int)
	var transcript []TranscriptLine
	for _, ev := range s.events {
		roleCounts[ev.Role]++
		if ev.Role == RoleUser || ev.Role == RoleModel {
			transcript = append(transcript, TranscriptLine{Role: ev.Role, Content: ev.Content})
		}
	}

	var elapsed time.Duration
	if !s.session.StartTime.IsZero() {
		elapsed = s.now().Sub(s.session.StartTime)
	}

	return Summary{
		SkillMode:       s.session.Mode,
		StartedAt:       s.session.StartTime,
		DurationMinutes: elapsed.Minutes(),
		DurationHuman:   units.HumanDuration(elapsed),
		EventCount:      len(s.events),
		RoleCounts:      roleCounts,
		Topics:          s.topicKeysLocked(),
		Transcript:      transcript,
	}
}
