package service

import (
	"sync"

	"mmprofiler/internal/domain"
)

// recentFillCap bounds how many fills the feed keeps for late joiners.
const recentFillCap = 256

// FeedService manages the state the live feed publishes: the latest
// observation, a bounded window of recent fills and finished run summaries.
type FeedService struct {
	mu          sync.RWMutex
	latest      domain.Snapshot
	hasLatest   bool
	recentFills []domain.Transaction
	results     []domain.RunResult
}

// NewFeedService creates a new FeedService instance.
func NewFeedService() *FeedService {
	return &FeedService{
		recentFills: make([]domain.Transaction, 0, recentFillCap),
	}
}

// Latest returns the most recent observation, if any arrived yet.
func (s *FeedService) Latest() (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest, s.hasLatest
}

// RecentFills returns a copy of the fill window, oldest first.
func (s *FeedService) RecentFills() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, len(s.recentFills))
	copy(out, s.recentFills)
	return out
}

// Results returns a copy of the recorded run summaries.
func (s *FeedService) Results() []domain.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RunResult, len(s.results))
	copy(out, s.results)
	return out
}

// ProcessSnapshot stores one observation as the latest state.
// It is thread-safe.
func (s *FeedService) ProcessSnapshot(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = snap
	s.hasLatest = true
}

// RecordFill appends a fill to the window, evicting the oldest past capacity.
func (s *FeedService) RecordFill(tx domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recentFills = append(s.recentFills, tx)
	if len(s.recentFills) > recentFillCap {
		s.recentFills = s.recentFills[len(s.recentFills)-recentFillCap:]
	}
}

// RecordResult appends one finished run summary.
func (s *FeedService) RecordResult(result domain.RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, result)
}
