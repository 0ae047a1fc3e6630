package app

import (
	"context"

	"lmsc-client/internal/domain"
)

// StudentLessonLoader loads a lesson detail enriched with the viewing
// student's own attempt and submission. An empty studentID loads the bare
// detail. Implemented by the REST client (the API joins server-side) and by
// LessonViewer for store-backed setups.
type StudentLessonLoader interface {
	LoadLessonFor(ctx context.Context, lessonID, studentID string) (domain.LessonDetail, error)
}

// LessonViewer assembles the student's lesson view from separate stores:
// the bare detail plus that student's attempt and primary-task submission.
type LessonViewer struct {
	lessons     LessonLoader
	attempts    AttemptStore
	submissions SubmissionStore
}

func NewLessonViewer(lessons LessonLoader, attempts AttemptStore, submissions SubmissionStore) *LessonViewer {
	return &LessonViewer{lessons: lessons, attempts: attempts, submissions: submissions}
}

func (v *LessonViewer) LoadLessonFor(ctx context.Context, lessonID, studentID string) (domain.LessonDetail, error) {
	detail, err := v.lessons.LoadLesson(ctx, lessonID)
	if err != nil {
		return domain.LessonDetail{}, err
	}
	if studentID == "" {
		return detail, nil
	}

	attempt, ok, err := v.attempts.FindAttempt(ctx, studentID, lessonID)
	if err != nil {
		return domain.LessonDetail{}, err
	}
	if ok {
		detail.Attempt = &attempt
	}

	if task, ok := detail.PrimaryTask(); ok {
		sub, ok, err := v.submissions.FindSubmission(ctx, studentID, task.ID)
		if err != nil {
			return domain.LessonDetail{}, err
		}
		if ok {
			detail.Submission = &sub
		}
	}
	return detail, nil
}
