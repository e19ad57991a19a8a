package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/runbuddy/internal/pipeline"
)

var (
	// ErrNotFound is returned when no answers are stored for a city.
	ErrNotFound = errors.New("no answers for city")
)

// AnswerHistory holds a time-ordered list of answers for one city.
type AnswerHistory struct {
	Answers []pipeline.Answer
}

// MemoryStore is a concurrency-safe in-memory answer history.
type MemoryStore struct {
	mu sync.RWMutex

	// key: lowercased city, value: history
	data map[string]*AnswerHistory

	// retention configuration
	maxHistory int           // max number of answers per city
	maxAge     time.Duration // optional max age for answers

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*AnswerHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

func key(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Save appends an answer under its city and enforces retention.
func (s *MemoryStore) Save(answer pipeline.Answer) {
	k := key(answer.City)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[k]
	if !ok {
		history = &AnswerHistory{}
		s.data[k] = history
	}

	history.Answers = append(history.Answers, answer)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Answers) > s.maxHistory {
		over := len(history.Answers) - s.maxHistory
		history.Answers = history.Answers[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Answers); i++ {
			if !history.Answers[i].CreatedAt.Before(cutoff) {
				break
			}
		}
		history.Answers = history.Answers[i:]
	}
}

// Latest returns the most recent answer for a city.
func (s *MemoryStore) Latest(city string) (pipeline.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key(city)]
	if !ok || len(history.Answers) == 0 {
		return pipeline.Answer{}, ErrNotFound
	}
	return history.Answers[len(history.Answers)-1], nil
}

// Range returns all answers for a city created between from and to (inclusive).
func (s *MemoryStore) Range(city string, from, to time.Time) ([]pipeline.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key(city)]
	if !ok || len(history.Answers) == 0 {
		return nil, ErrNotFound
	}

	var result []pipeline.Answer
	for _, a := range history.Answers {
		if !a.CreatedAt.Before(from) && !a.CreatedAt.After(to) {
			result = append(result, a)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}

// Cities lists the cities that have answers, sorted.
func (s *MemoryStore) Cities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for _, h := range s.data {
		if len(h.Answers) > 0 {
			out = append(out, h.Answers[len(h.Answers)-1].City)
		}
	}
	sort.Strings(out)
	return out
}
