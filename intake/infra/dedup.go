package infra

import (
	"sort"
	"sync"
	"time"
)

// DedupStore lembra fingerprints vistos há menos de window.
//
// Uma repetição dentro da janela não renova o registro: a janela conta a partir
// da primeira submissão.
type DedupStore struct {
	mu         sync.Mutex
	seen       map[string]time.Time
	window     time.Duration
	maxEntries int
}

func NewDedupStore(window time.Duration, maxEntries int) *DedupStore {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	return &DedupStore{
		seen:       make(map[string]time.Time),
		window:     window,
		maxEntries: maxEntries,
	}
}

// IsDuplicate implementa domain.DuplicateChecker.
func (s *DedupStore) IsDuplicate(fingerprint string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for fp, at := range s.seen {
		if now.Sub(at) >= s.window {
			delete(s.seen, fp)
		}
	}

	if _, ok := s.seen[fingerprint]; ok {
		return true
	}

	if len(s.seen) >= s.maxEntries {
		s.evictTo(s.maxEntries * 9 / 10)
	}
	s.seen[fingerprint] = now
	return false
}

func (s *DedupStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func (s *DedupStore) evictTo(target int) {
	type entry struct {
		fp string
		at time.Time
	}
	entries := make([]entry, 0, len(s.seen))
	for fp, at := range s.seen {
		entries = append(entries, entry{fp: fp, at: at})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	for _, e := range entries {
		if len(s.seen) <= target {
			return
		}
		delete(s.seen, e.fp)
	}
}
