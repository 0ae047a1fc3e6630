package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"lmsc-client/internal/app"
	"lmsc-client/internal/domain"
)

// LessonStore is a seedable in-memory catalog. It backs the unit tests and
// the CLI's offline demo mode.
type LessonStore struct {
	mu      sync.RWMutex
	lessons []domain.LessonDetail
}

func NewLessonStore(seed []domain.LessonDetail) *LessonStore {
	lessons := make([]domain.LessonDetail, len(seed))
	copy(lessons, seed)
	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].PublishedAt.After(lessons[j].PublishedAt)
	})
	return &LessonStore{lessons: lessons}
}

// Search pages through lessons whose title or description contains the term.
// A page past the end is an empty page, not an error.
func (s *LessonStore) Search(_ context.Context, q app.Query) (app.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(q.Term))
	matched := make([]domain.Lesson, 0, len(s.lessons))
	for _, l := range s.lessons {
		if term == "" ||
			strings.Contains(strings.ToLower(l.Title), term) ||
			strings.Contains(strings.ToLower(l.Description), term) {
			matched = append(matched, l.Lesson)
		}
	}

	page := app.Page{Total: len(matched), PageNum: q.PageNum, PageSize: q.PageSize}
	start := (q.PageNum - 1) * q.PageSize
	if start >= len(matched) {
		page.Lessons = []domain.Lesson{}
		return page, nil
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	page.Lessons = matched[start:end]
	return page, nil
}

func (s *LessonStore) LoadLesson(_ context.Context, lessonID string) (domain.LessonDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lessons {
		if l.ID == lessonID {
			return l, nil
		}
	}
	return domain.LessonDetail{}, domain.ErrNotFound
}

func (s *LessonStore) CountLessons(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lessons), nil
}

func (s *LessonStore) LessonsByTeacher(_ context.Context, teacherID string) ([]domain.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owned := make([]domain.Lesson, 0)
	for _, l := range s.lessons {
		if l.TeacherID == teacherID {
			owned = append(owned, l.Lesson)
		}
	}
	return owned, nil
}
