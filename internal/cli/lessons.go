package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lmsc-client/internal/app"
	"lmsc-client/internal/config"
	"lmsc-client/internal/domain"
)

func newLessonsCmd() *cobra.Command {
	var pageNum, pageSize int

	cmd := &cobra.Command{
		Use:   "lessons [term]",
		Short: "Search the lesson catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()
			rt.session.Restore(cmd.Context())

			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			if pageSize == 0 {
				pageSize = rt.cfg.Search.PageSize
			}

			searcher := app.NewSearcher(rt.search, nil,
				app.WithSearcherLogger(rt.log),
				app.WithDebounce(config.Duration(rt.cfg.Search.Debounce, app.DefaultDebounce)))
			defer searcher.Close()
			page, err := searcher.SearchNow(cmd.Context(), app.Query{Term: term, PageNum: pageNum, PageSize: pageSize})
			if err != nil {
				return err
			}
			printPage(cmd, page)
			return nil
		},
	}
	cmd.Flags().IntVar(&pageNum, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "size", 0, "page size")
	return cmd
}

func newLessonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lesson <id>",
		Short: "Show one lesson with its quiz and task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			// Students get their own attempt and submission joined in.
			studentID := ""
			if identity, ok := rt.session.Restore(cmd.Context()); ok && identity.Role == domain.RoleStudent {
				studentID = identity.ID
			}

			detail, err := rt.viewer.LoadLessonFor(cmd.Context(), args[0], studentID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s - %s\n", detail.ID, detail.Title)
			fmt.Fprintln(out, detail.Description)
			if !detail.PublishedAt.IsZero() {
				fmt.Fprintf(out, "published %s\n", detail.PublishedAt.Format("2006-01-02"))
			}
			if len(detail.Questions) > 0 {
				fmt.Fprintf(out, "\nquiz (%d questions):\n", len(detail.Questions))
				for _, q := range detail.Questions {
					fmt.Fprintf(out, "  [%s] %s\n", q.ID, q.Text)
					fmt.Fprintf(out, "      A) %s  B) %s  C) %s  D) %s\n", q.OptionA, q.OptionB, q.OptionC, q.OptionD)
				}
			}
			if task, ok := detail.PrimaryTask(); ok {
				fmt.Fprintf(out, "\ntask [%s]: %s\n", task.ID, task.Text)
			}
			if detail.Attempt != nil {
				fmt.Fprintf(out, "\nyour quiz score: %d%%\n", detail.Attempt.Score)
			}
			if detail.Submission != nil {
				fmt.Fprintf(out, "task submitted %s", detail.Submission.SubmittedAt.Format("2006-01-02"))
				if detail.Submission.Mark != nil {
					fmt.Fprintf(out, ", mark %d/100", *detail.Submission.Mark)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func printPage(cmd *cobra.Command, page app.Page) {
	out := cmd.OutOrStdout()
	if len(page.Lessons) == 0 {
		fmt.Fprintf(out, "no lessons on page %d (%d total)\n", page.PageNum, page.Total)
		return
	}
	for _, l := range page.Lessons {
		fmt.Fprintf(out, "%-6s %-40s %s\n", l.ID, l.Title, l.PublishedAt.Format("2006-01-02"))
	}

	nav := []string{}
	if page.HasPrev() {
		nav = append(nav, fmt.Sprintf("prev: --page %d", page.PageNum-1))
	}
	if page.HasNext() {
		nav = append(nav, fmt.Sprintf("next: --page %d", page.PageNum+1))
	}
	fmt.Fprintf(out, "page %d/%d (%d lessons)", page.PageNum, page.TotalPages(), page.Total)
	if len(nav) > 0 {
		fmt.Fprintf(out, "  %s", strings.Join(nav, ", "))
	}
	fmt.Fprintln(out)
}
