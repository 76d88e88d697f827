// Package progress tracks daily-challenge completion on the local device.
// Persistence is best effort: read errors yield an empty set and write
// errors are logged, never surfaced, since losing a checkmark must not
// break a quiz session.
package progress

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultChallengeCount is the number of daily challenge ordinals.
const DefaultChallengeCount = 4

type fileFormat struct {
	Completed []int  `json:"completed"`
	Date      string `json:"date"`
}

// Store persists the set of completed challenge ordinals in one JSON file.
// The path is injected so tests and multiple profiles stay independent.
type Store struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

// NewStore creates a store backed by the given file path.
func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Completed returns the set of completed ordinals. A missing, unreadable,
// or malformed file reads as the empty set.
func (s *Store) Completed() map[int]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() map[int]struct{} {
	set := make(map[int]struct{})
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("read challenge progress failed")
		}
		return set
	}
	var data fileFormat
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("challenge progress file malformed")
		return set
	}
	for _, n := range data.Completed {
		set[n] = struct{}{}
	}
	return set
}

// MarkComplete adds an ordinal to the completed set. Adding an ordinal
// already present is a no-op. Persistence failures are logged and
// swallowed.
func (s *Store) MarkComplete(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.read()
	set[n] = struct{}{}

	completed := make([]int, 0, len(set))
	for k := range set {
		completed = append(completed, k)
	}
	sort.Ints(completed)

	raw, err := json.Marshal(fileFormat{
		Completed: completed,
		Date:      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("encode challenge progress failed")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("create progress dir failed")
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("write challenge progress failed")
	}
}

// AllComplete reports whether every ordinal in [1, total] is complete.
func (s *Store) AllComplete(total int) bool {
	set := s.Completed()
	for i := 1; i <= total; i++ {
		if _, ok := set[i]; !ok {
			return false
		}
	}
	return true
}

// Reset clears the stored entry entirely.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("reset challenge progress failed")
	}
}
