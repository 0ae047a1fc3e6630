package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lmsc-client/internal/domain"
)

func newDashboardCmd() *cobra.Command {
	var lessonID string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard for the logged-in role",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			identity, ok := rt.session.Restore(cmd.Context())
			if !ok {
				return fmt.Errorf("%w: log in first", domain.ErrAuthentication)
			}

			out := cmd.OutOrStdout()
			switch identity.Role {
			case domain.RoleStudent:
				view, err := rt.orch.Student(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "welcome back, %s\n", view.Identity.Name)
				fmt.Fprintf(out, "lessons: %d total, %d completed, avg score %.0f%%, %.0fh learned\n",
					view.Stats.TotalLessons, view.Stats.CompletedLessons, view.Stats.AvgScore, view.Stats.LearningHours)
				printPage(cmd, view.Lessons)

			case domain.RoleTeacher:
				if lessonID != "" {
					return printTeacherLesson(cmd, rt, lessonID)
				}
				view, err := rt.orch.Teacher(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "teacher dashboard for %s\n", view.Identity.Name)
				fmt.Fprintf(out, "%d lessons, %d students engaged, %d quiz submissions, %d task submissions\n",
					view.Stats.TotalLessons, view.Stats.StudentsEngaged, view.Stats.QuizSubmissions, view.Stats.TaskSubmissions)
				for _, l := range view.Lessons {
					fmt.Fprintf(out, "%-6s %s\n", l.ID, l.Title)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lessonID, "lesson", "", "drill into one lesson's engagement (teacher)")
	return cmd
}

func printTeacherLesson(cmd *cobra.Command, rt *runtime, lessonID string) error {
	view, err := rt.orch.TeacherLesson(cmd.Context(), lessonID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s - %s\n\nengagement:\n", view.Lesson.ID, view.Lesson.Title)
	for _, r := range view.Engagement {
		line := fmt.Sprintf("  %-10s viewed=%v quiz=%v task=%v", r.StudentID, r.Viewed, r.QuizSubmitted, r.TaskSubmitted)
		if r.QuizScore != nil {
			line += fmt.Sprintf(" score=%d%%", *r.QuizScore)
		}
		if r.TaskMark != nil {
			line += fmt.Sprintf(" mark=%d", *r.TaskMark)
		}
		fmt.Fprintln(out, line)
	}
	if len(view.Submissions) > 0 {
		fmt.Fprintln(out, "\ntask submissions:")
		for _, s := range view.Submissions {
			status := "ungraded"
			if s.Mark != nil {
				status = fmt.Sprintf("mark %d/100", *s.Mark)
			}
			fmt.Fprintf(out, "  %-12s student %-10s %s\n", s.ID, s.StudentID, status)
		}
	}
	return nil
}
