package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lmsc-client/internal/app"
	"lmsc-client/internal/domain"
	"lmsc-client/internal/infra/memory"
)

func newViewerFixture() (*app.LessonViewer, *app.AssessmentEngine) {
	lessons := memory.NewLessonStore(testLessons())
	attempts := memory.NewAttemptStore()
	submissions := memory.NewSubmissionStore()
	now := func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	engine := app.NewAssessmentEngineWithClock(lessons, attempts, submissions, nil, now)
	return app.NewLessonViewer(lessons, attempts, submissions), engine
}

func TestLessonViewCarriesOwnWork(t *testing.T) {
	viewer, engine := newViewerFixture()
	ctx := context.Background()

	if _, err := engine.SubmitQuiz(ctx, "s1", "L1", map[string]domain.Option{"Q1": domain.OptionB, "Q2": domain.OptionC}); err != nil {
		t.Fatalf("quiz failed: %v", err)
	}
	if _, err := engine.SubmitTask(ctx, "s1", "TASK1", "my essay"); err != nil {
		t.Fatalf("task failed: %v", err)
	}

	detail, err := viewer.LoadLessonFor(ctx, "L1", "s1")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if detail.Attempt == nil || detail.Attempt.Score != 100 {
		t.Fatalf("the view must carry the student's own attempt, got %+v", detail.Attempt)
	}
	if detail.Submission == nil || detail.Submission.Content != "my essay" {
		t.Fatalf("the view must carry the student's own submission, got %+v", detail.Submission)
	}
	if detail.Submission.Mark != nil {
		t.Fatalf("an ungraded submission must show no mark, got %d", *detail.Submission.Mark)
	}
}

func TestLessonViewOtherStudentSeesNothing(t *testing.T) {
	viewer, engine := newViewerFixture()
	ctx := context.Background()

	if _, err := engine.SubmitQuiz(ctx, "s1", "L1", map[string]domain.Option{"Q1": domain.OptionB}); err != nil {
		t.Fatalf("quiz failed: %v", err)
	}

	detail, err := viewer.LoadLessonFor(ctx, "L1", "s2")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if detail.Attempt != nil || detail.Submission != nil {
		t.Fatalf("another student's work must not leak into the view: %+v", detail)
	}
}

func TestLessonViewWithoutStudentIsBare(t *testing.T) {
	viewer, engine := newViewerFixture()
	ctx := context.Background()

	if _, err := engine.SubmitQuiz(ctx, "s1", "L1", map[string]domain.Option{"Q1": domain.OptionB}); err != nil {
		t.Fatalf("quiz failed: %v", err)
	}

	detail, err := viewer.LoadLessonFor(ctx, "L1", "")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if detail.ID != "L1" || detail.Attempt != nil || detail.Submission != nil {
		t.Fatalf("an anonymous view is the bare detail, got %+v", detail)
	}
}

func TestLessonViewUnknownLesson(t *testing.T) {
	viewer, _ := newViewerFixture()
	if _, err := viewer.LoadLessonFor(context.Background(), "L-MISSING", "s1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
