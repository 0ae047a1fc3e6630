package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lmsc-client/internal/domain"
)

// AttemptStore keeps quiz attempts keyed by (studentId, lessonId). The key
// carries the single-attempt invariant: a duplicate create returns the
// record already present, first write wins.
type AttemptStore struct {
	clock func() time.Time

	mu       sync.RWMutex
	attempts map[attemptKey]domain.QuizAttempt
}

type attemptKey struct {
	studentID string
	lessonID  string
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		clock:    time.Now,
		attempts: make(map[attemptKey]domain.QuizAttempt),
	}
}

// NewAttemptStoreWithClock is test-only for deterministic timestamps.
func NewAttemptStoreWithClock(now func() time.Time) *AttemptStore {
	s := NewAttemptStore()
	s.clock = now
	return s
}

func (s *AttemptStore) FindAttempt(_ context.Context, studentID, lessonID string) (domain.QuizAttempt, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.attempts[attemptKey{studentID, lessonID}]
	return at, ok, nil
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey{attempt.StudentID, attempt.LessonID}
	if existing, ok := s.attempts[key]; ok {
		return existing, nil
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.SubmittedAt.IsZero() {
		attempt.SubmittedAt = s.clock()
	}
	s.attempts[key] = attempt
	return attempt, nil
}

func (s *AttemptStore) AttemptsByLesson(_ context.Context, lessonID string) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizAttempt, 0)
	for key, at := range s.attempts {
		if key.lessonID == lessonID {
			out = append(out, at)
		}
	}
	return out, nil
}

func (s *AttemptStore) AttemptsByStudent(_ context.Context, studentID string) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizAttempt, 0)
	for key, at := range s.attempts {
		if key.studentID == studentID {
			out = append(out, at)
		}
	}
	return out, nil
}
