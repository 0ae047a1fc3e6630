package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lmsc-client/internal/domain"
)

// SubmissionStore keeps task submissions keyed by (studentId, taskId), one
// per pair. Marks may be overwritten; there is no unmark.
type SubmissionStore struct {
	clock func() time.Time

	mu    sync.RWMutex
	byKey map[submissionKey]string
	byID  map[string]domain.TaskSubmission
}

type submissionKey struct {
	studentID string
	taskID    string
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		clock: time.Now,
		byKey: make(map[submissionKey]string),
		byID:  make(map[string]domain.TaskSubmission),
	}
}

// NewSubmissionStoreWithClock is test-only for deterministic timestamps.
func NewSubmissionStoreWithClock(now func() time.Time) *SubmissionStore {
	s := NewSubmissionStore()
	s.clock = now
	return s
}

func (s *SubmissionStore) FindSubmission(_ context.Context, studentID, taskID string) (domain.TaskSubmission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[submissionKey{studentID, taskID}]
	if !ok {
		return domain.TaskSubmission{}, false, nil
	}
	return s.byID[id], true, nil
}

func (s *SubmissionStore) CreateSubmission(_ context.Context, sub domain.TaskSubmission) (domain.TaskSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := submissionKey{sub.StudentID, sub.TaskID}
	if id, ok := s.byKey[key]; ok {
		return s.byID[id], nil
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = s.clock()
	}
	sub.Mark = nil // marks are assigned by grading, never at submission time
	s.byKey[key] = sub.ID
	s.byID[sub.ID] = sub
	return sub, nil
}

func (s *SubmissionStore) SetMark(_ context.Context, submissionID string, mark int) (domain.TaskSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.byID[submissionID]
	if !ok {
		return domain.TaskSubmission{}, domain.ErrNotFound
	}
	sub.Mark = &mark
	s.byID[submissionID] = sub
	return sub, nil
}

func (s *SubmissionStore) SubmissionsByTask(_ context.Context, taskID string) ([]domain.TaskSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TaskSubmission, 0)
	for _, id := range s.byKey {
		sub := s.byID[id]
		if sub.TaskID == taskID {
			out = append(out, sub)
		}
	}
	return out, nil
}
