package cli

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lmsc-client/internal/domain"
)

// demoAuthenticator mints a local token so the offline demo catalog can be
// used without a backend. Tokens are signed with a fixed throwaway key; the
// demo stores trust anything.
type demoAuthenticator struct{}

func (demoAuthenticator) Authenticate(_ context.Context, email string, role domain.Role) (string, error) {
	name := strings.SplitN(email, "@", 2)[0]
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    "demo-" + name,
		"name":  name,
		"email": email,
		"role":  strings.ToUpper(string(role)),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte("lmsc-demo"))
}

func day(value string) time.Time {
	ts, _ := time.Parse("2006-01-02", value)
	return ts
}

// sampleLessons seeds the offline demo catalog.
func sampleLessons() []domain.LessonDetail {
	return []domain.LessonDetail{
		{
			Lesson: domain.Lesson{
				ID:          "L1",
				Title:       "Introduction to Calculus",
				Description: "Learn the fundamentals of calculus including limits, derivatives, and integrals.",
				VideoURL:    "https://www.youtube.com/embed/WUvTyaaNkzM",
				TeacherID:   "T1",
				PublishedAt: day("2024-01-15"),
			},
			Questions: []domain.QuizQuestion{
				{
					ID: "Q1-L1", LessonID: "L1", Text: "What is the derivative of x²?",
					OptionA: "x", OptionB: "2x", OptionC: "x²", OptionD: "2",
					CorrectOption: domain.OptionB,
				},
				{
					ID: "Q2-L1", LessonID: "L1", Text: "What is the integral of 2x?",
					OptionA: "x²", OptionB: "2", OptionC: "x² + C", OptionD: "4x",
					CorrectOption: domain.OptionC,
				},
			},
			Tasks: []domain.LessonTask{
				{ID: "TASK-L1", LessonID: "L1", Text: "Differentiate three polynomial functions of your choice and show your work."},
			},
		},
		{
			Lesson: domain.Lesson{
				ID:          "L2",
				Title:       "Chemistry Basics",
				Description: "Explore the periodic table, atomic structure, and basic chemical reactions.",
				VideoURL:    "https://www.youtube.com/embed/cRnkQqUbQOU",
				TeacherID:   "T1",
				PublishedAt: day("2024-01-20"),
			},
			Questions: []domain.QuizQuestion{
				{
					ID: "Q1-L2", LessonID: "L2", Text: "What is the atomic number of Carbon?",
					OptionA: "6", OptionB: "8", OptionC: "12", OptionD: "4",
					CorrectOption: domain.OptionA,
				},
				{
					ID: "Q2-L2", LessonID: "L2", Text: `Which element has the symbol "O"?`,
					OptionA: "Gold", OptionB: "Oxygen", OptionC: "Osmium", OptionD: "Iodine",
					CorrectOption: domain.OptionB,
				},
			},
			Tasks: []domain.LessonTask{
				{ID: "TASK-L2", LessonID: "L2", Text: "Balance five chemical equations from the worksheet."},
			},
		},
		{
			Lesson: domain.Lesson{
				ID:          "L3",
				Title:       "Physics: Motion and Forces",
				Description: "Understanding Newton's laws of motion and force interactions.",
				VideoURL:    "https://www.youtube.com/embed/9u0EWekI3BA",
				TeacherID:   "T2",
				PublishedAt: day("2024-01-22"),
			},
			Questions: []domain.QuizQuestion{
				{
					ID: "Q1-L3", LessonID: "L3", Text: "What is Newton's first law about?",
					OptionA: "Gravity", OptionB: "Inertia", OptionC: "Acceleration", OptionD: "Friction",
					CorrectOption: domain.OptionB,
				},
			},
			Tasks: []domain.LessonTask{
				{ID: "TASK-L3", LessonID: "L3", Text: "Describe a real-world example for each of Newton's three laws."},
			},
		},
		{
			Lesson: domain.Lesson{
				ID:          "L4",
				Title:       "Biology: Cell Structure",
				Description: "Learn about prokaryotic and eukaryotic cells, organelles, and their functions.",
				VideoURL:    "https://www.youtube.com/embed/I04FN0pj7bQ",
				TeacherID:   "T2",
				PublishedAt: day("2024-01-25"),
			},
		},
	}
}
