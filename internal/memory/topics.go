package memory

import (
	"sort"
	"strings"
	"time"
)

// SnippetLength caps the content excerpt stored per topic occurrence.
const SnippetLength = 200

// recallLimit bounds RecallTopic results.
const recallLimit = 10

// TopicOccurrence records one sighting of a topic in event content.
type TopicOccurrence struct {
	ContentSnippet string
	Timestamp      time.Time
	Relevance      float64
}

// RecallResult is one hit from RecallTopic, either a topic-index entry
// or a raw content match.
type RecallResult struct {
	Topic     string // Topic key; empty for full-text content hits
	Snippet   string
	Timestamp time.Time
}

// indexTopicsLocked files every vocabulary match in the event content
// under its normalized topic key.
func (s *Store) indexTopicsLocked(ev Event) {
	if ev.Content == "" {
		return
	}
	for _, match := range s.matcher.Extract(ev.Content) {
		s.topics[match.Topic] = append(s.topics[match.Topic], TopicOccurrence{
			ContentSnippet: truncateTo(ev.Content, SnippetLength),
			Timestamp:      ev.Timestamp,
			Relevance:      match.Weight,
		})
	}
}

// pruneTopicsLocked drops occurrences older than cutoff and removes
// topics left without any occurrence.
func (s *Store) pruneTopicsLocked(cutoff time.Time) {
	for key, occurrences := range s.topics {
		kept := occurrences[:0]
		for _, occ := range occurrences {
			if !occ.Timestamp.Before(cutoff) {
				kept = append(kept, occ)
			}
		}
		if len(kept) == 0 {
			delete(s.topics, key)
			continue
		}
		s.topics[key] = kept
	}
}

// TopicKeys returns all indexed topic keys, sorted for stable output.
func (s *Store) TopicKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topicKeysLocked()
}

func (s *Store) topicKeysLocked() []string {
	keys := make([]string, 0, len(s.topics))
	for key := range s.topics {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// RecallTopic finds memory related to a query: case-insensitive
// substring matching against topic keys (either direction) unioned with
// a full-text substring scan of event contents. Results are merged,
// sorted by recency and capped at ten.
func (s *Store) RecallTopic(query string) []RecallResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []RecallResult

	for key, occurrences := range s.topics {
		if !strings.Contains(key, query) && !strings.Contains(query, key) {
			continue
		}
		latest := occurrences[len(occurrences)-1]
		results = append(results, RecallResult{
			Topic:     key,
			Snippet:   latest.ContentSnippet,
			Timestamp: latest.Timestamp,
		})
	}

	for _, ev := range s.events {
		if !strings.Contains(strings.ToLower(ev.Content), query) {
			continue
		}
		results = append(results, RecallResult{
			Snippet:   truncateTo(ev.Content, SnippetLength),
			Timestamp: ev.Timestamp,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})
	if len(results) > recallLimit {
		results = results[:recallLimit]
	}
	return results
}
