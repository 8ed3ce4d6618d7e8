// Package scheduler tracks per-user concept review history and computes
// spaced-repetition due dates over a fixed interval ladder.
package scheduler

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultIntervals is the review interval ladder in days. Each additional
// review pushes the next due date further out; the last value repeats.
var DefaultIntervals = []int{1, 3, 7, 14, 30}

// Scheduler holds review history in memory, keyed by user then concept.
// History is append-only and never pruned. Durability across restarts is
// out of scope.
type Scheduler struct {
	mu        sync.RWMutex
	progress  map[string]map[string][]time.Time
	intervals []int
	now       func() time.Time
	logger    *slog.Logger
}

// New creates a scheduler with the given interval ladder. A nil or empty
// ladder falls back to DefaultIntervals.
func New(intervals []int, logger *slog.Logger) *Scheduler {
	if len(intervals) == 0 {
		intervals = DefaultIntervals
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		progress:  make(map[string]map[string][]time.Time),
		intervals: intervals,
		now:       time.Now,
		logger:    logger,
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// UpdateProgress appends a review of concept for the user and returns the
// next review time. User and concept entries are created on first use.
func (s *Scheduler) UpdateProgress(userID, concept string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	concepts, ok := s.progress[userID]
	if !ok {
		concepts = make(map[string][]time.Time)
		s.progress[userID] = concepts
	}
	concepts[concept] = append(concepts[concept], s.now())
	next := s.nextDue(concepts[concept])
	s.logger.Debug("progress updated",
		"user", userID, "concept", concept,
		"reviews", len(concepts[concept]), "next_review", next)
	return next
}

// LearningContext orders candidate concepts by review priority: concepts the
// user has never reviewed, or whose next review is due, come first; ties
// break lexicographically. It is a pure query and never mutates history.
func (s *Scheduler) LearningContext(userID string, concepts []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type ranked struct {
		concept  string
		priority int
	}
	now := s.now()
	prioritized := make([]ranked, 0, len(concepts))
	for _, concept := range concepts {
		priority := 1
		if reviews, ok := s.progress[userID][concept]; ok && len(reviews) > 0 {
			if s.nextDue(reviews).After(now) {
				priority = 0
			}
		}
		prioritized = append(prioritized, ranked{concept, priority})
	}
	sort.Slice(prioritized, func(i, j int) bool {
		if prioritized[i].priority != prioritized[j].priority {
			return prioritized[i].priority > prioritized[j].priority
		}
		return prioritized[i].concept < prioritized[j].concept
	})
	out := make([]string, len(prioritized))
	for i, r := range prioritized {
		out[i] = r.concept
	}
	return out
}

// KnownConcepts returns a snapshot of every concept the user has reviewed.
func (s *Scheduler) KnownConcepts(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	concepts := s.progress[userID]
	if len(concepts) == 0 {
		return nil
	}
	out := make([]string, 0, len(concepts))
	for concept := range concepts {
		out = append(out, concept)
	}
	sort.Strings(out)
	return out
}

// ReviewCount returns how many times the user has reviewed the concept.
func (s *Scheduler) ReviewCount(userID, concept string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.progress[userID][concept])
}

// nextDue computes the next review time from an existing history. Caller
// must hold at least the read lock.
func (s *Scheduler) nextDue(reviews []time.Time) time.Time {
	idx := len(reviews) - 1
	if idx >= len(s.intervals) {
		idx = len(s.intervals) - 1
	}
	last := reviews[len(reviews)-1]
	return last.AddDate(0, 0, s.intervals[idx])
}
