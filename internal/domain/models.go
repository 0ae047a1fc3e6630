package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the canonical lowercase role set. The authentication service may
// answer with any casing; ParseRole is the single normalization point.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// ParseRole normalizes a wire-format role to the canonical set.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleTeacher:
		return RoleTeacher, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, raw)
	}
}

// Identity is the authenticated user as issued by the authentication service.
// Immutable for the lifetime of a session.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Complete reports whether every field a session needs is present.
func (i Identity) Complete() bool {
	return i.ID != "" && i.Email != "" && (i.Role == RoleStudent || i.Role == RoleTeacher)
}

// Credential pairs the opaque bearer token with its decoded claims.
// Claims must agree with the Identity held by the session.
type Credential struct {
	Token  string
	Claims Identity
}

// Option identifies one of the four answer choices of a quiz question.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// ParseOption validates a wire-format answer choice.
func ParseOption(raw string) (Option, error) {
	switch Option(strings.ToUpper(strings.TrimSpace(raw))) {
	case OptionA:
		return OptionA, nil
	case OptionB:
		return OptionB, nil
	case OptionC:
		return OptionC, nil
	case OptionD:
		return OptionD, nil
	default:
		return "", fmt.Errorf("%w: invalid answer option %q", ErrValidation, raw)
	}
}

// Lesson is a published unit of content owned by a single teacher.
type Lesson struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `json:"videoUrl"`
	TeacherID   string    `json:"teacherId"`
	PublishedAt time.Time `json:"publishedAt"`
}

// QuizQuestion is a four-option MCQ belonging to exactly one lesson.
type QuizQuestion struct {
	ID            string `json:"id"`
	LessonID      string `json:"lessonId"`
	Text          string `json:"questionText"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectOption Option `json:"correctOption"`
}

// OptionText returns the display text for a choice, or "" for an unknown one.
func (q QuizQuestion) OptionText(o Option) string {
	switch o {
	case OptionA:
		return q.OptionA
	case OptionB:
		return q.OptionB
	case OptionC:
		return q.OptionC
	case OptionD:
		return q.OptionD
	}
	return ""
}

// QuizAttempt is a student's single completed try at a lesson's quiz.
// At most one attempt exists per (studentId, lessonId).
type QuizAttempt struct {
	ID          string            `json:"id"`
	LessonID    string            `json:"lessonId"`
	StudentID   string            `json:"studentId"`
	SubmittedAt time.Time         `json:"submittedAt"`
	Score       int               `json:"score"`
	Answers     map[string]Option `json:"answers"`
}

// LessonTask is gradeable work attached to a lesson.
type LessonTask struct {
	ID       string `json:"id"`
	LessonID string `json:"lessonId"`
	Text     string `json:"taskText"`
}

// TaskSubmission is a student's single delivery for a lesson task.
// Mark stays nil until a teacher grades it; once set it is within [0, 100].
type TaskSubmission struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
	Content     string    `json:"content"`
	Mark        *int      `json:"mark,omitempty"`
}

// LessonDetail is a lesson with its assessment material and, when fetched on
// behalf of a student, that student's own attempt and submission.
type LessonDetail struct {
	Lesson
	Questions  []QuizQuestion  `json:"quizQuestions"`
	Tasks      []LessonTask    `json:"lessonTasks"`
	Attempt    *QuizAttempt    `json:"quizAttempt,omitempty"`
	Submission *TaskSubmission `json:"taskSubmission,omitempty"`
}

// PrimaryTask returns the lesson's surfaced task. A lesson has zero or one
// primary task; when several exist the first in lesson order wins.
func (d LessonDetail) PrimaryTask() (LessonTask, bool) {
	if len(d.Tasks) == 0 {
		return LessonTask{}, false
	}
	return d.Tasks[0], true
}

// EngagementRecord is the per-lesson, per-student projection surfaced to
// teachers. Only students with at least one recorded interaction appear.
type EngagementRecord struct {
	StudentID     string `json:"studentId"`
	StudentName   string `json:"studentName"`
	Viewed        bool   `json:"viewed"`
	QuizSubmitted bool   `json:"quizSubmitted"`
	QuizScore     *int   `json:"quizScore,omitempty"`
	TaskSubmitted bool   `json:"taskSubmitted"`
	TaskMark      *int   `json:"taskMark,omitempty"`
}

// StudentStats is the student dashboard aggregate.
type StudentStats struct {
	TotalLessons     int     `json:"totalLessons"`
	CompletedLessons int     `json:"completedLessons"`
	AvgScore         float64 `json:"avgScore"`
	LearningHours    float64 `json:"learningHours"`
}

// TeacherStats is the teacher dashboard aggregate.
type TeacherStats struct {
	TotalLessons    int `json:"totalLessons"`
	StudentsEngaged int `json:"studentsEngaged"`
	QuizSubmissions int `json:"quizSubmissions"`
	TaskSubmissions int `json:"taskSubmissions"`
}
