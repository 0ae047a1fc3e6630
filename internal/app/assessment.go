package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lmsc-client/internal/domain"
	"lmsc-client/internal/logger"
)

// AttemptStore persists quiz attempts. CreateAttempt must keep the
// one-attempt-per-(student, lesson) invariant: on a duplicate it returns the
// record that won, never a second one.
type AttemptStore interface {
	FindAttempt(ctx context.Context, studentID, lessonID string) (domain.QuizAttempt, bool, error)
	CreateAttempt(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error)
}

// SubmissionStore persists task submissions and their marks.
type SubmissionStore interface {
	FindSubmission(ctx context.Context, studentID, taskID string) (domain.TaskSubmission, bool, error)
	CreateSubmission(ctx context.Context, sub domain.TaskSubmission) (domain.TaskSubmission, error)
	SetMark(ctx context.Context, submissionID string, mark int) (domain.TaskSubmission, error)
}

// AssessmentEngine holds the quiz scoring and task grading rules. All
// writes go through the stores; a failed write leaves no local state behind,
// so the user can simply retry.
type AssessmentEngine struct {
	lessons     LessonLoader
	attempts    AttemptStore
	submissions SubmissionStore
	clock       func() time.Time
	log         *logger.Logger
}

func NewAssessmentEngine(lessons LessonLoader, attempts AttemptStore, submissions SubmissionStore, log *logger.Logger) *AssessmentEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &AssessmentEngine{
		lessons:     lessons,
		attempts:    attempts,
		submissions: submissions,
		clock:       time.Now,
		log:         log.With("component", "assessment"),
	}
}

// NewAssessmentEngineWithClock is test-only for deterministic timestamps.
func NewAssessmentEngineWithClock(lessons LessonLoader, attempts AttemptStore, submissions SubmissionStore, log *logger.Logger, now func() time.Time) *AssessmentEngine {
	e := NewAssessmentEngine(lessons, attempts, submissions, log)
	e.clock = now
	return e
}

// SubmitQuiz scores and records a student's quiz attempt. A repeat
// submission for the same (student, lesson) returns the existing attempt
// instead of recomputing; retried requests never create duplicates.
// Answer keys that match no question, and questions left unanswered, score
// as incorrect.
func (e *AssessmentEngine) SubmitQuiz(ctx context.Context, studentID, lessonID string, answers map[string]domain.Option) (domain.QuizAttempt, error) {
	if existing, ok, err := e.attempts.FindAttempt(ctx, studentID, lessonID); err != nil {
		return domain.QuizAttempt{}, err
	} else if ok {
		e.log.Debug("quiz already attempted", "student", studentID, "lesson", lessonID)
		return existing, nil
	}

	normalized := make(map[string]domain.Option, len(answers))
	for qid, opt := range answers {
		parsed, err := domain.ParseOption(string(opt))
		if err != nil {
			return domain.QuizAttempt{}, fmt.Errorf("%w: answer for %s", err, qid)
		}
		normalized[qid] = parsed
	}
	answers = normalized

	detail, err := e.lessons.LoadLesson(ctx, lessonID)
	if err != nil {
		return domain.QuizAttempt{}, err
	}
	if len(detail.Questions) == 0 {
		return domain.QuizAttempt{}, fmt.Errorf("%w: %s", domain.ErrInvalidLessonState, lessonID)
	}

	correct := 0
	for _, q := range detail.Questions {
		if answers[q.ID] == q.CorrectOption {
			correct++
		}
	}
	score := scorePercent(correct, len(detail.Questions))

	attempt, err := e.attempts.CreateAttempt(ctx, domain.QuizAttempt{
		LessonID:    lessonID,
		StudentID:   studentID,
		SubmittedAt: e.clock(),
		Score:       score,
		Answers:     answers,
	})
	if err != nil {
		return domain.QuizAttempt{}, err
	}
	e.log.Info("quiz submitted", "student", studentID, "lesson", lessonID, "score", attempt.Score)
	return attempt, nil
}

// SubmitTask records a student's work for a lesson task. Content must be
// non-empty after trimming. One submission per (student, task); a repeat
// call returns the existing record untouched.
func (e *AssessmentEngine) SubmitTask(ctx context.Context, studentID, taskID, content string) (domain.TaskSubmission, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.TaskSubmission{}, fmt.Errorf("%w: task content is empty", domain.ErrValidation)
	}

	if existing, ok, err := e.submissions.FindSubmission(ctx, studentID, taskID); err != nil {
		return domain.TaskSubmission{}, err
	} else if ok {
		e.log.Debug("task already submitted", "student", studentID, "task", taskID)
		return existing, nil
	}

	sub, err := e.submissions.CreateSubmission(ctx, domain.TaskSubmission{
		TaskID:      taskID,
		StudentID:   studentID,
		SubmittedAt: e.clock(),
		Content:     content,
	})
	if err != nil {
		return domain.TaskSubmission{}, err
	}
	e.log.Info("task submitted", "student", studentID, "task", taskID)
	return sub, nil
}

// SetMark grades a submission. Marks are integers in [0, 100]; re-grading
// overwrites the previous mark, since there is no way to unmark.
func (e *AssessmentEngine) SetMark(ctx context.Context, submissionID string, mark int) (domain.TaskSubmission, error) {
	if mark < 0 || mark > 100 {
		return domain.TaskSubmission{}, fmt.Errorf("%w: mark %d out of range [0, 100]", domain.ErrValidation, mark)
	}
	sub, err := e.submissions.SetMark(ctx, submissionID, mark)
	if err != nil {
		return domain.TaskSubmission{}, err
	}
	e.log.Info("submission marked", "submission", submissionID, "mark", mark)
	return sub, nil
}

// scorePercent is round-half-up of 100*correct/total in integer math.
// Callers guarantee total > 0.
func scorePercent(correct, total int) int {
	return (200*correct + total) / (2 * total)
}
