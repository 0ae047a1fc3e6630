package app

import (
	"context"
	"sort"

	"lmsc-client/internal/domain"
)

// CatalogSource exposes the lesson catalog views the aggregator joins
// against.
type CatalogSource interface {
	LessonLoader
	CountLessons(ctx context.Context) (int, error)
	LessonsByTeacher(ctx context.Context, teacherID string) ([]domain.Lesson, error)
}

// AttemptSource lists quiz attempts for aggregation.
type AttemptSource interface {
	AttemptsByLesson(ctx context.Context, lessonID string) ([]domain.QuizAttempt, error)
	AttemptsByStudent(ctx context.Context, studentID string) ([]domain.QuizAttempt, error)
}

// SubmissionSource lists task submissions for aggregation.
type SubmissionSource interface {
	SubmissionsByTask(ctx context.Context, taskID string) ([]domain.TaskSubmission, error)
}

// HoursFunc supplies the externally tracked learning-hours metric. The
// aggregator only passes it through.
type HoursFunc func(ctx context.Context, studentID string) (float64, error)

// StatsProvider serves the role-specific dashboard aggregates. Implemented
// both by Aggregator (local computation) and by the REST client (server
// computation); the orchestrator does not care which.
type StatsProvider interface {
	StudentStats(ctx context.Context, studentID string) (domain.StudentStats, error)
	TeacherStats(ctx context.Context, teacherID string) (domain.TeacherStats, error)
}

// EngagementProvider serves the teacher's per-lesson engagement view.
type EngagementProvider interface {
	EngagementFor(ctx context.Context, lessonID string) ([]domain.EngagementRecord, error)
	TaskSubmissionsFor(ctx context.Context, lessonID string) ([]domain.TaskSubmission, error)
}

// Aggregator derives engagement records and dashboard stats from the current
// attempt/submission set. Nothing is cached between calls: grading can
// change the picture at any time, so every call recomputes from the sources.
type Aggregator struct {
	catalog     CatalogSource
	attempts    AttemptSource
	submissions SubmissionSource
	hours       HoursFunc
}

func NewAggregator(catalog CatalogSource, attempts AttemptSource, submissions SubmissionSource, hours HoursFunc) *Aggregator {
	return &Aggregator{catalog: catalog, attempts: attempts, submissions: submissions, hours: hours}
}

// EngagementFor joins attempts and primary-task submissions into one record
// per student who interacted with the lesson at all. A student with neither
// an attempt nor a submission does not appear.
func (a *Aggregator) EngagementFor(ctx context.Context, lessonID string) ([]domain.EngagementRecord, error) {
	attempts, err := a.attempts.AttemptsByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	detail, err := a.catalog.LoadLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	var submissions []domain.TaskSubmission
	if task, ok := detail.PrimaryTask(); ok {
		submissions, err = a.submissions.SubmissionsByTask(ctx, task.ID)
		if err != nil {
			return nil, err
		}
	}

	byStudent := make(map[string]*domain.EngagementRecord)
	record := func(studentID string) *domain.EngagementRecord {
		if r, ok := byStudent[studentID]; ok {
			return r
		}
		r := &domain.EngagementRecord{StudentID: studentID}
		byStudent[studentID] = r
		return r
	}

	for _, at := range attempts {
		r := record(at.StudentID)
		score := at.Score
		r.Viewed = true
		r.QuizSubmitted = true
		r.QuizScore = &score
	}
	for _, sub := range submissions {
		r := record(sub.StudentID)
		r.TaskSubmitted = true
		r.TaskMark = sub.Mark
		if sub.StudentName != "" {
			r.StudentName = sub.StudentName
		}
	}

	records := make([]domain.EngagementRecord, 0, len(byStudent))
	for _, r := range byStudent {
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].StudentID < records[j].StudentID })
	return records, nil
}

// TaskSubmissionsFor lists every submission for the lesson's primary task.
func (a *Aggregator) TaskSubmissionsFor(ctx context.Context, lessonID string) ([]domain.TaskSubmission, error) {
	detail, err := a.catalog.LoadLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	task, ok := detail.PrimaryTask()
	if !ok {
		return nil, nil
	}
	return a.submissions.SubmissionsByTask(ctx, task.ID)
}

// StudentStats computes the student dashboard aggregate. TotalLessons is the
// whole catalog, not just lessons the student touched.
func (a *Aggregator) StudentStats(ctx context.Context, studentID string) (domain.StudentStats, error) {
	total, err := a.catalog.CountLessons(ctx)
	if err != nil {
		return domain.StudentStats{}, err
	}
	attempts, err := a.attempts.AttemptsByStudent(ctx, studentID)
	if err != nil {
		return domain.StudentStats{}, err
	}

	completed := make(map[string]struct{}, len(attempts))
	sum := 0
	for _, at := range attempts {
		completed[at.LessonID] = struct{}{}
		sum += at.Score
	}
	avg := 0.0
	if len(attempts) > 0 {
		avg = float64(sum) / float64(len(attempts))
	}

	hours := 0.0
	if a.hours != nil {
		if h, err := a.hours(ctx, studentID); err == nil {
			hours = h
		}
	}

	return domain.StudentStats{
		TotalLessons:     total,
		CompletedLessons: len(completed),
		AvgScore:         avg,
		LearningHours:    hours,
	}, nil
}

// TeacherStats computes the teacher dashboard aggregate across the lessons
// the teacher owns. StudentsEngaged counts distinct students, not attempts.
func (a *Aggregator) TeacherStats(ctx context.Context, teacherID string) (domain.TeacherStats, error) {
	lessons, err := a.catalog.LessonsByTeacher(ctx, teacherID)
	if err != nil {
		return domain.TeacherStats{}, err
	}

	engaged := make(map[string]struct{})
	quizCount := 0
	taskCount := 0
	for _, lesson := range lessons {
		attempts, err := a.attempts.AttemptsByLesson(ctx, lesson.ID)
		if err != nil {
			return domain.TeacherStats{}, err
		}
		for _, at := range attempts {
			engaged[at.StudentID] = struct{}{}
		}
		quizCount += len(attempts)

		subs, err := a.TaskSubmissionsFor(ctx, lesson.ID)
		if err != nil {
			return domain.TeacherStats{}, err
		}
		taskCount += len(subs)
	}

	return domain.TeacherStats{
		TotalLessons:    len(lessons),
		StudentsEngaged: len(engaged),
		QuizSubmissions: quizCount,
		TaskSubmissions: taskCount,
	}, nil
}
